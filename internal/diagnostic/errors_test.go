package diagnostic

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsKindSentinel(t *testing.T) {
	tests := []struct {
		kind Kind
		want error
	}{
		{KindMeta, ErrMeta},
		{KindType, ErrType},
		{KindName, ErrName},
		{KindShape, ErrShape},
		{KindData, ErrData},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", Newf(tt.kind, "code", "msg"))
			assert.ErrorIs(t, err, tt.want)

			for _, other := range []error{ErrMeta, ErrType, ErrName, ErrShape, ErrData} {
				if other != tt.want {
					assert.NotErrorIs(t, err, other)
				}
			}
		})
	}

	assert.False(t, errors.Is(&Error{}, ErrMeta))
}

func TestErrorString(t *testing.T) {
	err := Newf(KindData, CodeDuplicateValue, "value %q repeats", "2").
		WithField("id").
		WithRows(2, 7).
		InSheet("Item").
		InSheet("ignored")

	assert.Equal(t, `data error [Item] id: [duplicate_value] value "2" repeats`, err.Error())
	assert.Equal(t, []int{2, 7}, err.Rows)

	err.Suggestions = []string{"int32"}
	assert.Contains(t, err.Error(), "(did you mean int32?)")
}

func TestAsError(t *testing.T) {
	e, ok := AsError(errors.Join(errors.New("x"), Newf(KindShape, CodeRowTooShort, "short")))
	require.True(t, ok)
	assert.Equal(t, CodeRowTooShort, e.Code)

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
}

func TestDiagnosticsAll(t *testing.T) {
	var d Diagnostics
	d.AddInfo(CodeRoundInteger, "rounded", "Item", "id", 5)
	d.AddError("e", "bad", "", "", 0)

	var other Diagnostics
	other.AddWarning("w", "odd", "", "", 0)
	d.Merge(other)

	all := d.All()
	require.Len(t, all, 3)
	assert.Equal(t, DiagnosticError, all[0].Severity)
	assert.Equal(t, DiagnosticWarning, all[1].Severity)
	assert.Equal(t, "[Item] id row 5: [round_integer] rounded", all[2].String())
	assert.False(t, d.IsValid())
	require.Error(t, d.Error())
}
