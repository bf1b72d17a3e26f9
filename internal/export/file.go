package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFileIfChanged writes data to path unless the file already holds
// exactly data. It creates missing parent directories and reports whether
// the file was written.
func WriteFileIfChanged(path string, data []byte) (bool, error) {
	old, err := os.ReadFile(path)
	if err == nil && bytes.Equal(old, data) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return false, fmt.Errorf("creating output directory: %w", err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return false, fmt.Errorf("writing file %s: %w", path, err)
	}

	return true, nil
}

// writeAll writes every file under outDir and returns the changed paths.
func writeAll(outDir string, files map[string][]byte, opts Options) ([]string, error) {
	var changed []string

	for _, name := range sortedKeys(files) {
		path := filepath.Join(outDir, name)

		wrote, err := WriteFileIfChanged(path, files[name])
		if err != nil {
			return changed, err
		}

		if wrote {
			changed = append(changed, path)
			opts.Logger.Debug().Str("file", path).Msg("written")
		} else {
			opts.Logger.Debug().Str("file", path).Msg("unchanged")
		}
	}

	return changed, nil
}
