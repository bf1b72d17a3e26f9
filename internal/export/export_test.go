package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tabgen/internal/builder"
	"tabgen/internal/schema"
)

func build(t *testing.T, rows [][]string, meta map[string]string) *schema.Struct {
	t.Helper()

	s, err := builder.New().Build(builder.Sheet{Name: "test.csv", Rows: rows, Meta: meta})
	require.NoError(t, err)

	return s
}

func itemStruct(t *testing.T) *schema.Struct {
	return build(t, [][]string{
		{"id", "name", "price", "tags", "#memo", "attrs"},
		{"int", "string", "", "int[]", "string", "map"},
		{"identifier", "display name", "", "", "", ""},
		{"1", "sword", "9.5", "1|2", "sharp", "1=2"},
		{"2.0", "shield", "12", "", "", "3=4|5=6"},
		{"3", "potion", "", "7", "", ""},
	}, map[string]string{"class_name": "item"})
}

func globalStruct(t *testing.T) *schema.Struct {
	return build(t, [][]string{
		{"Key", "Type", "Value", "Description"},
		{"level", "int", "5", "start level"},
		{"#note", "", "ignored", ""},
		{"name", "string", "Bob", ""},
		{"ratio", "double", "", ""},
	}, map[string]string{"class_name": "Global", "kv_mode": "true", "data_start_row": "2"})
}

func TestRecords(t *testing.T) {
	recs, err := Records(itemStruct(t))
	require.NoError(t, err)
	require.Len(t, recs, 3, spew.Sdump(recs))

	assert.Equal(t, map[string]any{
		"id":    int64(1),
		"name":  "sword",
		"price": 9.5,
		"tags":  []any{int64(1), int64(2)},
		"attrs": map[string]any{"1": int64(2)},
	}, recs[0])
	assert.Equal(t, []any{}, recs[1]["tags"])
	assert.Equal(t, map[string]any{}, recs[2]["attrs"])
	assert.Equal(t, float64(0), recs[2]["price"])
}

func TestRecordsGroups(t *testing.T) {
	vec := build(t, [][]string{
		{"id", "Item1", "Item2", "Item3"},
		{"int", "int", "int", "int"},
		{},
		{"1", "10", "", "30"},
	}, map[string]string{"class_name": "Drop"})

	recs, err := Records(vec)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"id": int64(1), "Item": []any{int64(10), int64(0), int64(30)}},
	}, recs)

	inner := build(t, [][]string{
		{"id", "id", "name", "value", "id", "name", "value"},
		{"int", "int", "string", "int", "int", "string", "int"},
		{},
		{"1", "7", "a", "1", "8", "b", "2"},
	}, map[string]string{"class_name": "reward_box", "skip_columns": "1"})

	recs, err = Records(inner)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"Items": []map[string]any{
			{"id": int64(7), "name": "a", "value": int64(1)},
			{"id": int64(8), "name": "b", "value": int64(2)},
		}},
	}, recs)
}

func TestKVRecord(t *testing.T) {
	rec, err := KVRecord(globalStruct(t))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"level": int64(5),
		"name":  "Bob",
		"ratio": float64(0),
	}, rec)
}

func TestTable(t *testing.T) {
	header, rows := Table(itemStruct(t), false)
	assert.Equal(t, []string{"id", "name", "price", "tags", "attrs"}, header)
	assert.Equal(t, []string{"2", "shield", "12", "", "3=4|5=6"}, rows[1])

	tests := []struct {
		name   string
		hide   bool
		header []string
		first  []string
	}{
		{
			name:   "full",
			header: []string{"key", "type", "value", "comment"},
			first:  []string{"level", "int", "5", "start level"},
		},
		{
			name:   "hidden",
			hide:   true,
			header: []string{"key", "type", "value", "comment"},
			first:  []string{"level", "", "5", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, rows := Table(globalStruct(t), tt.hide)
			assert.Equal(t, tt.header, header)
			require.Len(t, rows, 3)
			assert.Equal(t, tt.first, rows[0])
		})
	}
}

func TestValueErrors(t *testing.T) {
	s := itemStruct(t)
	tags, _ := s.Field("tags")
	attrs, _ := s.Field("attrs")

	_, err := Value(tags, "1|x", s.Delimiters)
	require.Error(t, err)

	_, err = Value(attrs, "1", s.Delimiters)
	require.Error(t, err)

	_, err = Value(attrs, "a=1", s.Delimiters)
	require.Error(t, err)
}

func TestWriteFileIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "a.txt")

	wrote, err := WriteFileIfChanged(path, []byte("x"))
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = WriteFileIfChanged(path, []byte("x"))
	require.NoError(t, err)
	assert.False(t, wrote)

	wrote, err = WriteFileIfChanged(path, []byte("y"))
	require.NoError(t, err)
	assert.True(t, wrote)
}

func TestRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, []string{"csv", "json", "sqlite", "yaml"}, r.Names())

	require.Error(t, r.Register(JSONWriter{}))

	ws, err := r.Resolve([]string{"json", "csv"})
	require.NoError(t, err)
	require.Len(t, ws, 2)
	assert.Equal(t, "json", ws[0].Name())

	_, err = r.Resolve([]string{"xml"})
	require.Error(t, err)
}

func TestFileWriters(t *testing.T) {
	dir := t.TempDir()
	opts := Options{OutDir: dir, Logger: zerolog.Nop()}
	structs := []*schema.Struct{itemStruct(t), globalStruct(t)}

	for _, w := range []Writer{CSVWriter{}, JSONWriter{}, YAMLWriter{}} {
		changed, err := w.Write(context.Background(), structs, opts)
		require.NoError(t, err, w.Name())
		assert.Len(t, changed, 2, w.Name())

		changed, err = w.Write(context.Background(), structs, opts)
		require.NoError(t, err, w.Name())
		assert.Empty(t, changed, w.Name())
	}

	data, err := os.ReadFile(filepath.Join(dir, "item.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id,name,price,tags,attrs\n1,sword,9.5,1|2,1=2\n2,shield,12,,3=4|5=6\n3,potion,0,7,\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "Global.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":5,"name":"Bob","ratio":0}`, string(data))

	data, err = os.ReadFile(filepath.Join(dir, "item.schema.yaml"))
	require.NoError(t, err)

	var d Descriptor
	require.NoError(t, yaml.Unmarshal(data, &d))
	assert.Equal(t, "table", d.Mode)
	assert.Equal(t, 3, d.Rows)
	require.Len(t, d.Fields, 5)
	assert.Equal(t, "array<int32>", d.Fields[3].Type)
	assert.Equal(t, "identifier", d.Fields[0].Comment)
}

func TestWriterHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := JSONWriter{}.Write(ctx, []*schema.Struct{itemStruct(t)}, Options{OutDir: t.TempDir()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteWriter(t *testing.T) {
	dir := t.TempDir()
	opts := Options{OutDir: dir, Database: "data.db", RunID: "run-1", Logger: zerolog.Nop()}
	structs := []*schema.Struct{itemStruct(t), globalStruct(t)}

	for range 2 {
		changed, err := SQLiteWriter{}.Write(context.Background(), structs, opts)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "data.db")}, changed)
	}

	db, err := OpenDB(filepath.Join(dir, "data.db"))
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "item"`).Scan(&n))
	assert.Equal(t, 3, n)

	var (
		name  string
		price float64
		tags  string
	)

	require.NoError(t, db.QueryRow(`SELECT name, price, tags FROM "item" WHERE id = 1`).Scan(&name, &price, &tags))
	assert.Equal(t, "sword", name)
	assert.InDelta(t, 9.5, price, 1e-9)
	assert.Equal(t, "[1,2]", tags)

	var level int64
	require.NoError(t, db.QueryRow(`SELECT value FROM "Global" WHERE key = 'level'`).Scan(&level))
	assert.Equal(t, int64(5), level)

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+buildsTable+` WHERE run_id = 'run-1'`).Scan(&n))
	assert.Equal(t, 4, n)
}

func TestSQLType(t *testing.T) {
	s := itemStruct(t)

	want := map[string]string{"id": "INTEGER", "name": "TEXT", "price": "REAL", "tags": "TEXT", "attrs": "TEXT"}
	for _, c := range s.EnabledColumns() {
		assert.Equal(t, want[c.Name], SQLType(&c), c.Name)
	}
}
