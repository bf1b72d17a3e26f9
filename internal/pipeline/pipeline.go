package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tabgen/internal/builder"
	"tabgen/internal/common"
	"tabgen/internal/config"
	"tabgen/internal/diagnostic"
	"tabgen/internal/export"
	"tabgen/internal/schema"
	"tabgen/internal/sheet"
	"tabgen/internal/watch"
)

// ErrNoSheets is returned when the inputs hold no CSV file.
var ErrNoSheets = errors.New("no sheets found")

// Runner builds every sheet named by a Config and hands the results to the
// configured writers.
type Runner struct {
	cfg      *config.Config
	registry *export.Registry
	logger   zerolog.Logger
}

// Report summarizes one run.
type Report struct {
	RunID   string
	Sheets  []string
	Structs []*schema.Struct
	// Written lists the output paths changed by this run.
	Written     []string
	Diagnostics diagnostic.Diagnostics
}

// New creates a Runner.
func New(cfg *config.Config, registry *export.Registry, logger zerolog.Logger) *Runner {
	return &Runner{cfg: cfg, registry: registry, logger: logger}
}

// Check builds every sheet without writing anything. The report holds the
// structs that built; the error joins the failures of the others.
func (r *Runner) Check(ctx context.Context) (*Report, error) {
	rep := &Report{RunID: uuid.NewString()}
	log := r.logger.With().Str("run_id", rep.RunID).Logger()

	paths, err := sheet.Discover(r.cfg.Inputs)
	if err != nil {
		return rep, err
	}

	paths = slices.DeleteFunc(paths, r.isOutput)

	if common.IsEmpty(paths) {
		return rep, fmt.Errorf("%w in %s", ErrNoSheets, strings.Join(r.cfg.Inputs, ", "))
	}

	rep.Sheets = paths

	sheets, err := sheet.ReadAll(paths)
	if err != nil {
		return rep, err
	}

	b := builder.New(builder.WithLogger(log), builder.WithDefaults(r.cfg.Directives))

	structs, buildErr := b.BuildAll(ctx, sheets, r.cfg.Jobs)
	for _, s := range structs {
		if s == nil {
			continue
		}

		rep.Structs = append(rep.Structs, s)
		rep.Diagnostics.Merge(s.Diagnostics)
	}

	log.Info().
		Int("sheets", len(paths)).
		Int("built", len(rep.Structs)).
		Int("notes", len(rep.Diagnostics.Infos)).
		Msg("sheets built")

	return rep, buildErr
}

// Run builds every sheet and runs the writers. Nothing is written when any
// sheet fails.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	writers, err := r.registry.Resolve(r.cfg.Formats)
	if err != nil {
		return nil, err
	}

	rep, err := r.Check(ctx)
	if err != nil {
		return rep, err
	}

	opts := export.Options{
		OutDir:        r.cfg.OutDir,
		HideKVColumns: r.cfg.HideKVColumns,
		Database:      r.cfg.Database,
		RunID:         rep.RunID,
		Logger:        r.logger.With().Str("run_id", rep.RunID).Logger(),
	}

	for _, w := range writers {
		written, err := w.Write(ctx, rep.Structs, opts)
		rep.Written = append(rep.Written, written...)

		if err != nil {
			return rep, fmt.Errorf("%s writer: %w", w.Name(), err)
		}

		opts.Logger.Info().Str("format", w.Name()).Int("changed", len(written)).Msg("outputs written")
	}

	return rep, nil
}

// Watch runs once, then again whenever a sheet or sidecar under the inputs
// changes, until ctx is done. Failed runs are logged and watching goes on.
func (r *Runner) Watch(ctx context.Context) error {
	dirs, err := r.WatchDirs()
	if err != nil {
		return err
	}

	debounce, err := r.cfg.Watch.DebounceDuration()
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context) error {
		_, err := r.Run(ctx)
		return err
	}

	if err := rebuild(ctx); err != nil {
		r.logger.Error().Err(err).Msg("initial build failed")
	}

	w := watch.New(watch.Options{
		Dirs:     dirs,
		Match:    IsInput,
		Debounce: debounce,
		Logger:   r.logger,
	}, rebuild)

	return w.Run(ctx)
}

// WatchDirs lists the directories holding inputs: every non-hidden
// directory below an input directory, and the parent of an input file.
func (r *Runner) WatchDirs() ([]string, error) {
	var dirs []string

	for _, root := range r.cfg.Inputs {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat input %s: %w", root, err)
		}

		if !info.IsDir() {
			dirs = append(dirs, filepath.Dir(root))
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !d.IsDir() {
				return nil
			}

			if p != root && (strings.HasPrefix(d.Name(), ".") || r.isOutput(p)) {
				return filepath.SkipDir
			}

			dirs = append(dirs, p)

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk input %s: %w", root, err)
		}
	}

	return watch.Dirs(dirs), nil
}

// isOutput reports whether path lies in the output directory, so written
// CSV files are never read back as sheets.
func (r *Runner) isOutput(path string) bool {
	out, err := filepath.Abs(r.cfg.OutDir)
	if err != nil {
		return false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(out, abs)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// IsInput reports whether a file name is a sheet or a sidecar.
func IsInput(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, "~$") {
		return false
	}

	return strings.HasSuffix(lower, sheet.CSVExt) || strings.HasSuffix(lower, sheet.SidecarExt)
}
