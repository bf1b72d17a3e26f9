package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"tabgen/internal/common"
	"tabgen/internal/schema"
	"tabgen/primitive"
)

// DefaultDatabase is the database file name used when Options.Database is
// empty.
const DefaultDatabase = "tabgen.db"

// buildsTable records one row per struct written by a run.
const buildsTable = "_tabgen_builds"

// SQLiteWriter loads every struct into a table of a SQLite database. Tables
// are dropped and recreated on each run; a column-defined struct becomes one
// row per data row, a KV struct a key/type/value table.
type SQLiteWriter struct{}

// Name implements Writer.
func (SQLiteWriter) Name() string { return "sqlite" }

// Write implements Writer.
func (SQLiteWriter) Write(ctx context.Context, structs []*schema.Struct, opts Options) ([]string, error) {
	name := opts.Database
	if name == "" {
		name = DefaultDatabase
	}

	path := filepath.Join(opts.OutDir, name)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	if err := loadAll(ctx, tx, structs, runID); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	opts.Logger.Debug().Str("file", path).Str("run_id", runID).Int("tables", len(structs)).Msg("written")

	return []string{path}, nil
}

// OpenDB opens the SQLite database at path.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return db, nil
}

func loadAll(ctx context.Context, tx *sql.Tx, structs []*schema.Struct, runID string) error {
	_, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+buildsTable+` (
		run_id TEXT NOT NULL,
		table_name TEXT NOT NULL,
		mode TEXT NOT NULL,
		rows INTEGER NOT NULL,
		built_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create table %s: %w", buildsTable, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)

	for _, s := range structs {
		var (
			n    int
			mode string
		)

		if s.KVMode {
			mode = "kv"
			n, err = loadKV(ctx, tx, s)
		} else {
			mode = "table"
			n, err = loadTable(ctx, tx, s)
		}

		if err != nil {
			return fmt.Errorf("table %s: %w", s.Name, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO `+buildsTable+` (run_id, table_name, mode, rows, built_at) VALUES (?, ?, ?, ?, ?)`,
			runID, s.Name, mode, n, now)
		if err != nil {
			return fmt.Errorf("record build of %s: %w", s.Name, err)
		}
	}

	return nil
}

func loadTable(ctx context.Context, tx *sql.Tx, s *schema.Struct) (int, error) {
	cols := s.EnabledColumns()

	defs := make([]string, len(cols))
	names := make([]string, len(cols))
	marks := make([]string, len(cols))

	for i := range cols {
		names[i] = quoteIdent(cols[i].Name)
		defs[i] = names[i] + " " + SQLType(&cols[i])
		marks[i] = "?"
	}

	if err := recreate(ctx, tx, s.Name, defs); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(s.Name), strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for r, row := range s.DataRows {
		args := make([]any, len(cols))

		for i := range cols {
			v, err := sqlValue(&cols[i], common.Cell(row, cols[i].ColumnIndex), s)
			if err != nil {
				return 0, fmt.Errorf("row %d column %s: %w", r+1, cols[i].Name, err)
			}

			args[i] = v
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", r+1, err)
		}
	}

	return len(s.DataRows), nil
}

func loadKV(ctx context.Context, tx *sql.Tx, s *schema.Struct) (int, error) {
	defs := []string{"key TEXT PRIMARY KEY", "type TEXT NOT NULL", "value", "comment TEXT"}
	if err := recreate(ctx, tx, s.Name, defs); err != nil {
		return 0, err
	}

	values, err := KVRecord(s)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (key, type, value, comment) VALUES (?, ?, ?, ?)", quoteIdent(s.Name)))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range s.Fields {
		f := &s.Fields[i]

		v, err := storable(values[f.Name])
		if err != nil {
			return 0, fmt.Errorf("key %s: %w", f.Name, err)
		}

		if _, err := stmt.ExecContext(ctx, f.Name, f.TypeName(), v, f.Comment); err != nil {
			return 0, fmt.Errorf("insert key %s: %w", f.Name, err)
		}
	}

	return len(s.Fields), nil
}

func recreate(ctx context.Context, tx *sql.Tx, table string, defs []string) error {
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	return nil
}

// SQLType maps a field to its SQLite column affinity. Composite fields are
// stored as JSON text.
func SQLType(f *schema.FieldSpec) string {
	switch {
	case f.Composite != nil, f.Type == primitive.KindString:
		return "TEXT"
	case f.Type.IsInteger(), f.Type == primitive.KindBool:
		return "INTEGER"
	case f.Type.IsFloat():
		return "REAL"
	default:
		return "TEXT"
	}
}

func sqlValue(f *schema.FieldSpec, cell string, s *schema.Struct) (any, error) {
	v, err := Value(f, cell, s.Delimiters)
	if err != nil {
		return nil, err
	}

	return storable(v)
}

// storable converts a typed value to a driver value.
func storable(v any) (any, error) {
	switch v := v.(type) {
	case bool:
		if v {
			return int64(1), nil
		}

		return int64(0), nil
	case uint64:
		// the driver rejects uint64 values with the high bit set
		return fmt.Sprint(v), nil
	case []any, map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}

		return string(data), nil
	default:
		return v, nil
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
