package export

import (
	"context"
	"encoding/json"
	"fmt"

	"tabgen/internal/schema"
)

// JSONWriter writes typed records to <Name>.json: an array of objects for a
// column-defined struct, a single object for a KV struct.
type JSONWriter struct{}

// Name implements Writer.
func (JSONWriter) Name() string { return "json" }

// Write implements Writer.
func (JSONWriter) Write(ctx context.Context, structs []*schema.Struct, opts Options) ([]string, error) {
	files := make(map[string][]byte, len(structs))

	for _, s := range structs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := EncodeJSON(s)
		if err != nil {
			return nil, fmt.Errorf("encoding %s as json: %w", s.Name, err)
		}

		files[s.Name+".json"] = data
	}

	return writeAll(opts.OutDir, files, opts)
}

// EncodeJSON renders the typed records of s, indented, with a trailing
// newline.
func EncodeJSON(s *schema.Struct) ([]byte, error) {
	var (
		v   any
		err error
	)

	if s.KVMode {
		v, err = KVRecord(s)
	} else {
		v, err = Records(s)
	}

	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}
