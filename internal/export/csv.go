package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"tabgen/internal/schema"
)

// CSVWriter writes the projected table of every struct to <Name>.csv.
type CSVWriter struct{}

// Name implements Writer.
func (CSVWriter) Name() string { return "csv" }

// Write implements Writer.
func (CSVWriter) Write(ctx context.Context, structs []*schema.Struct, opts Options) ([]string, error) {
	files := make(map[string][]byte, len(structs))

	for _, s := range structs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := EncodeCSV(s, opts.HideKVColumns)
		if err != nil {
			return nil, fmt.Errorf("encoding %s as csv: %w", s.Name, err)
		}

		files[s.Name+".csv"] = data
	}

	return writeAll(opts.OutDir, files, opts)
}

// EncodeCSV renders the projected table of s.
func EncodeCSV(s *schema.Struct, hideKV bool) ([]byte, error) {
	header, rows := Table(s, hideKV)

	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
