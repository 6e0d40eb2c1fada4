package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Table is an untyped result set.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Value returns the cell of row i in the named column.
func (t *Table) Value(i int, column string) (any, bool) {
	if t == nil || i < 0 || i >= len(t.Rows) {
		return nil, false
	}
	for j, c := range t.Columns {
		if c == column {
			return t.Rows[i][j], true
		}
	}
	return nil, false
}

// Maps returns the rows keyed by column name.
func (t *Table) Maps() []map[string]any {
	if t == nil {
		return nil
	}
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for j, c := range t.Columns {
			m[c] = row[j]
		}
		out[i] = m
	}
	return out
}

func (t *Table) dropColumn(name string) {
	idx := -1
	for j, c := range t.Columns {
		if strings.EqualFold(c, name) {
			idx = j
			break
		}
	}
	if idx < 0 {
		return
	}
	t.Columns = append(t.Columns[:idx:idx], t.Columns[idx+1:]...)
	for i, row := range t.Rows {
		t.Rows[i] = append(row[:idx:idx], row[idx+1:]...)
	}
}

// SQL runs raw statements on a GORM handle. Statements use ? placeholders,
// which GORM rewrites for the dialect; named arguments (sql.Named) work too.
type SQL struct {
	db *gorm.DB
}

// NewSQL returns raw-SQL helpers bound to db.
func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

// Execute runs a statement and returns the affected row count.
func (s *SQL) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	res := s.db.WithContext(ctx).Exec(query, args...)
	return res.RowsAffected, res.Error
}

// QueryTable runs a query and returns its first result set.
func (s *SQL) QueryTable(ctx context.Context, query string, args ...any) (*Table, error) {
	rows, err := s.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t, err := scanTable(rows)
	if err != nil {
		return nil, err
	}
	return t, rows.Err()
}

// QueryScalar returns the first column of the first row, or nil when the
// query yields no rows.
func (s *SQL) QueryScalar(ctx context.Context, query string, args ...any) (any, error) {
	var v any
	err := s.db.WithContext(ctx).Raw(query, args...).Row().Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// QueryInt is QueryScalar for integer results such as COUNT(*).
func (s *SQL) QueryInt(ctx context.Context, query string, args ...any) (int64, error) {
	var n sql.NullInt64
	err := s.db.WithContext(ctx).Raw(query, args...).Row().Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	return n.Int64, nil
}

// QuerySets returns every result set a statement produces. Drivers that
// only return one set yield a single Table.
func (s *SQL) QuerySets(ctx context.Context, query string, args ...any) ([]*Table, error) {
	rows, err := s.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []*Table
	for {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, t)
		if !rows.NextResultSet() {
			break
		}
	}
	return sets, rows.Err()
}

// QueryInto runs a query and scans every row into R by column name.
func QueryInto[R any](ctx context.Context, s *SQL, query string, args ...any) ([]R, error) {
	out := make([]R, 0)
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// callStatement renders a routine invocation for the handle's dialect.
// Postgres functions are selected from; MySQL procedures are CALLed.
func (s *SQL) callStatement(name string, nargs int, table bool) (string, error) {
	if !ValidIdentifier(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", nargs), ", ")

	dialect := ""
	if s.db.Dialector != nil {
		dialect = s.db.Dialector.Name()
	}
	switch dialect {
	case "postgres":
		if table {
			return "SELECT * FROM " + name + "(" + placeholders + ")", nil
		}
		return "SELECT " + name + "(" + placeholders + ")", nil
	case "mysql":
		return "CALL " + name + "(" + placeholders + ")", nil
	case "sqlserver":
		return "EXEC " + name + " " + placeholders, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrProceduresUnsupported, dialect)
	}
}

// CallScalar invokes a stored routine and returns its single value.
func (s *SQL) CallScalar(ctx context.Context, name string, args ...any) (any, error) {
	stmt, err := s.callStatement(name, len(args), false)
	if err != nil {
		return nil, err
	}
	return s.QueryScalar(ctx, stmt, args...)
}

// CallTable invokes a stored routine and returns its first result set.
func (s *SQL) CallTable(ctx context.Context, name string, args ...any) (*Table, error) {
	stmt, err := s.callStatement(name, len(args), true)
	if err != nil {
		return nil, err
	}
	return s.QueryTable(ctx, stmt, args...)
}

// CallSets invokes a stored routine and returns all of its result sets.
func (s *SQL) CallSets(ctx context.Context, name string, args ...any) ([]*Table, error) {
	stmt, err := s.callStatement(name, len(args), true)
	if err != nil {
		return nil, err
	}
	return s.QuerySets(ctx, stmt, args...)
}

func scanTable(rows *sql.Rows) (*Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	t := &Table{Columns: cols, Rows: make([][]any, 0)}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			vals[i] = normalize(v)
		}
		t.Rows = append(t.Rows, vals)
	}
	return t, nil
}

// normalize turns driver byte slices into strings so tables serialize as text.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
