package export

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"tabgen/internal/schema"
)

// Options are shared by every writer.
type Options struct {
	OutDir string
	// HideKVColumns blanks the type and comment columns of KV tables.
	HideKVColumns bool
	// Database is the SQLite file name inside OutDir.
	Database string
	// RunID tags rows written by one run; a random one is used when empty.
	RunID  string
	Logger zerolog.Logger
}

// Writer writes built structs in one format. Write returns the paths it
// changed on disk; unchanged outputs are not rewritten.
type Writer interface {
	Name() string
	Write(ctx context.Context, structs []*schema.Struct, opts Options) ([]string, error)
}

// Registry maps format names to writers.
type Registry struct {
	writers map[string]Writer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{writers: make(map[string]Writer)}
}

// NewDefaultRegistry creates a Registry holding every built-in writer.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	for _, w := range []Writer{CSVWriter{}, JSONWriter{}, YAMLWriter{}, SQLiteWriter{}} {
		// built-in names are distinct
		_ = r.Register(w)
	}

	return r
}

// Register adds w. Registering a name twice is an error.
func (r *Registry) Register(w Writer) error {
	name := w.Name()
	if _, ok := r.writers[name]; ok {
		return fmt.Errorf("writer %q already registered", name)
	}

	r.writers[name] = w

	return nil
}

// Lookup returns the writer registered under name.
func (r *Registry) Lookup(name string) (Writer, bool) {
	w, ok := r.writers[name]
	return w, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.writers))
	for n := range r.writers {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Resolve looks up every name, failing on the first unknown one.
func (r *Registry) Resolve(names []string) ([]Writer, error) {
	out := make([]Writer, 0, len(names))

	for _, n := range names {
		w, ok := r.Lookup(n)
		if !ok {
			return nil, fmt.Errorf("unknown format %q (available: %v)", n, r.Names())
		}

		out = append(out, w)
	}

	return out, nil
}
