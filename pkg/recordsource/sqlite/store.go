package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-recordform/pkg/form"
	"github.com/goliatone/go-recordform/pkg/render"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

var (
	// ErrRowNotFound is returned when no row matches the key.
	ErrRowNotFound = errors.New("sqlite: row not found")
	// ErrTableNotFound is returned when the table has no columns.
	ErrTableNotFound = errors.New("sqlite: table not found")
)

// Option configures a Store.
type Option func(*Store)

// WithLogger routes debug output about reads and writes to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store wraps a database handle.
type Store struct {
	db     *sql.DB
	owned  bool
	logger *slog.Logger
}

// Open opens the database at dsn and verifies the connection.
func Open(ctx context.Context, dsn string, options ...Option) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite: dsn is required")
	}
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", dsn, err)
	}
	s := New(db, options...)
	s.owned = true
	return s, nil
}

// New wraps an existing handle. Close leaves handles passed to New open.
func New(db *sql.DB, options ...Option) *Store {
	s := &Store{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the handle when the store opened it.
func (s *Store) Close() error {
	if !s.owned || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ColumnInfo is one row of PRAGMA table_info.
type ColumnInfo struct {
	Name       string
	DataType   string
	NotNull    bool
	Default    sql.NullString
	PrimaryKey bool
}

// TableInfo lists the table's columns in declaration order.
func (s *Store) TableInfo(ctx context.Context, table string) ([]ColumnInfo, error) {
	quoted, err := quoteIdent(table)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+quoted+")")
	if err != nil {
		return nil, fmt.Errorf("sqlite: table info %s: %w", table, err)
	}
	defer rows.Close()

	var out []ColumnInfo
	for rows.Next() {
		var (
			cid     int
			info    ColumnInfo
			notNull int
			pk      int
		)
		if err := rows.Scan(&cid, &info.Name, &info.DataType, &notNull, &info.Default, &pk); err != nil {
			return nil, fmt.Errorf("sqlite: scan table info %s: %w", table, err)
		}
		info.NotNull = notNull != 0
		info.PrimaryKey = pk != 0
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: table info %s: %w", table, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return out, nil
}

// Columns reports column metadata keyed by column name, the shape renderers
// use for nullable-list hints.
func (s *Store) Columns(ctx context.Context, table string) (render.ColumnMetadata, error) {
	infos, err := s.TableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make(render.ColumnMetadata, len(infos))
	for _, info := range infos {
		out[info.Name] = render.Column{
			DataType:   strings.ToLower(info.DataType),
			IsNullable: !info.NotNull && !info.PrimaryKey,
		}
	}
	return out, nil
}

// Row loads the row whose keyColumn equals key as a column-to-value map.
func (s *Store) Row(ctx context.Context, table, keyColumn string, key any) (map[string]any, error) {
	qtable, err := quoteIdent(table)
	if err != nil {
		return nil, err
	}
	qkey, err := quoteIdent(keyColumn)
	if err != nil {
		return nil, err
	}

	query := "SELECT * FROM " + qtable + " WHERE " + qkey + " = ? LIMIT 1"
	rows, err := s.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("sqlite: select %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns %s: %w", table, err)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("sqlite: select %s: %w", table, err)
		}
		return nil, fmt.Errorf("%w: %s.%s = %v", ErrRowNotFound, table, keyColumn, key)
	}

	values := make([]any, len(columns))
	targets := make([]any, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("sqlite: scan %s: %w", table, err)
	}

	out := make(map[string]any, len(columns))
	for i, column := range columns {
		if raw, ok := values[i].([]byte); ok {
			out[column] = string(raw)
			continue
		}
		out[column] = values[i]
	}
	s.logger.Debug("sqlite row loaded", "table", table, "key", key, "columns", len(columns))
	return out, nil
}

// Update writes values into the row identified by keyColumn. Fields without a
// matching column are ignored, as are Undefined values and the key itself.
// Nullable columns store NULL for an empty string or empty list, since a form
// loaded from a NULL holds exactly those values.
func (s *Store) Update(ctx context.Context, table, keyColumn string, key any, values form.ValueSet) error {
	qtable, err := quoteIdent(table)
	if err != nil {
		return err
	}
	qkey, err := quoteIdent(keyColumn)
	if err != nil {
		return err
	}
	columns, err := s.Columns(ctx, table)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(values))
	for name, value := range values {
		if name == keyColumn || form.IsUndefined(value) {
			continue
		}
		if _, ok := columns[name]; !ok {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	assignments := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		quoted, err := quoteIdent(name)
		if err != nil {
			return err
		}
		assignments = append(assignments, quoted+" = ?")
		args = append(args, columnValue(values[name], columns[name].IsNullable))
	}
	args = append(args, key)

	query := "UPDATE " + qtable + " SET " + strings.Join(assignments, ", ") + " WHERE " + qkey + " = ?"
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: update %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update %s: %w", table, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s.%s = %v", ErrRowNotFound, table, keyColumn, key)
	}
	s.logger.Debug("sqlite row updated", "table", table, "key", key, "columns", names)
	return nil
}

// Submitter returns a form.SubmitFunc that writes into the given row.
func (s *Store) Submitter(table, keyColumn string, key any) form.SubmitFunc {
	return func(ctx context.Context, values form.ValueSet) error {
		return s.Update(ctx, table, keyColumn, key, values)
	}
}

func columnValue(value any, nullable bool) any {
	switch v := value.(type) {
	case string:
		if v == "" && nullable {
			return nil
		}
		return v
	case []string:
		if len(v) == 0 && nullable {
			return nil
		}
		return form.FormatBraceArray(v)
	case bool:
		if v {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}

func quoteIdent(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("sqlite: identifier is required")
	}
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("sqlite: invalid identifier %q", name)
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, nil
}
