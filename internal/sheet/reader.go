package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"tabgen/internal/builder"
	"tabgen/internal/meta"
)

// Extensions recognized by Discover.
const (
	CSVExt     = ".csv"
	SidecarExt = ".meta.yaml"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a CSV file into a builder.Sheet. Directives come from the
// sidecar file <base>.meta.yaml next to it, when present; class_name
// defaults to the file base name.
func ReadCSV(path string) (builder.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return builder.Sheet{}, fmt.Errorf("failed to read sheet %s: %w", path, err)
	}

	rows, err := ParseCSV(data)
	if err != nil {
		return builder.Sheet{}, fmt.Errorf("failed to parse sheet %s: %w", path, err)
	}

	directives, err := ReadSidecar(SidecarPath(path))
	if err != nil {
		return builder.Sheet{}, err
	}

	if !meta.HasKey(directives, meta.KeyClassName) {
		directives[meta.KeyClassName] = BaseName(path)
	}

	return builder.Sheet{Name: path, Rows: rows, Meta: directives}, nil
}

// ParseCSV parses CSV content. Rows may have different lengths and a
// leading UTF-8 byte order mark is ignored.
func ParseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		rows = append(rows, rec)
	}

	return rows, nil
}

// ReadSidecar loads a directive file. A missing file yields an empty map.
// Scalar values of any YAML type are kept as their text.
func ReadSidecar(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read directives %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse directives %s: %w", path, err)
	}

	out := make(map[string]string, len(raw))

	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			out[k] = ""
		case []any:
			parts := make([]string, len(v))
			for i, p := range v {
				parts[i] = fmt.Sprint(p)
			}

			out[k] = strings.Join(parts, ",")
		case map[string]any:
			return nil, fmt.Errorf("directives %s: %s must be a scalar or a list", path, k)
		default:
			out[k] = fmt.Sprint(v)
		}
	}

	return out, nil
}

// SidecarPath returns the directive file path of a sheet.
func SidecarPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + SidecarExt
}

// BaseName returns the file name without directory and extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Discover expands paths into a sorted, de-duplicated list of CSV files.
// Directories are walked recursively; hidden entries and office lock files
// ("~$name.csv") are skipped.
func Discover(paths []string) ([]string, error) {
	seen := make(map[string]struct{})

	add := func(p string) { seen[p] = struct{}{} }

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat input %s: %w", root, err)
		}

		if !info.IsDir() {
			add(filepath.Clean(root))
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			name := d.Name()
			if p != root && strings.HasPrefix(name, ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}

			if !d.IsDir() && isSheet(name) {
				add(p)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk input %s: %w", root, err)
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}

	sort.Strings(out)

	return out, nil
}

func isSheet(name string) bool {
	return strings.EqualFold(filepath.Ext(name), CSVExt) && !strings.HasPrefix(name, "~$")
}

// ReadAll reads every sheet in paths, in order.
func ReadAll(paths []string) ([]builder.Sheet, error) {
	sheets := make([]builder.Sheet, 0, len(paths))

	for _, p := range paths {
		s, err := ReadCSV(p)
		if err != nil {
			return nil, err
		}

		sheets = append(sheets, s)
	}

	return sheets, nil
}
