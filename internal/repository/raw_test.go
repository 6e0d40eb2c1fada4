package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSQL_ExecuteAndQuery(t *testing.T) {
	r, _ := newWidgetRepo(t)
	ctx := context.Background()
	seedWidgets(t, r, "a", "b", "c")
	s := r.SQL()

	n, err := s.Execute(ctx, "UPDATE widgets SET kind = ? WHERE name <> ?", "raw", "c")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	tbl, err := s.QueryTable(ctx, "SELECT name, kind FROM widgets ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "kind"}, tbl.Columns)
	require.Equal(t, 3, tbl.Len())
	v, ok := tbl.Value(2, "kind")
	require.True(t, ok)
	assert.Equal(t, "std", v)
	_, ok = tbl.Value(0, "missing")
	assert.False(t, ok)
	assert.Equal(t, map[string]any{"name": "a", "kind": "raw"}, tbl.Maps()[0])

	count, err := s.QueryInt(ctx, "SELECT COUNT(*) FROM widgets WHERE kind = ?", "raw")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	name, err := s.QueryScalar(ctx, "SELECT name FROM widgets WHERE qty = ?", 3)
	require.NoError(t, err)
	assert.Equal(t, "c", name)

	none, err := s.QueryScalar(ctx, "SELECT name FROM widgets WHERE qty = ?", 99)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSQL_QueryErrorsPassThrough(t *testing.T) {
	r, _ := newWidgetRepo(t)
	_, err := r.SQL().QueryTable(context.Background(), "SELECT * FROM no_such_table")
	assert.Error(t, err)
}

func TestQueryInto(t *testing.T) {
	r, _ := newWidgetRepo(t)
	ctx := context.Background()
	seedWidgets(t, r, "b", "a")

	rows, err := QueryInto[widgetName](ctx, r.SQL(), "SELECT name FROM widgets ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []widgetName{{"a"}, {"b"}}, rows)

	rows, err = QueryInto[widgetName](ctx, r.SQL(), "SELECT name FROM widgets WHERE 1 = 0")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSQL_QuerySets_SingleSet(t *testing.T) {
	r, _ := newWidgetRepo(t)
	seedWidgets(t, r, "a")

	sets, err := r.SQL().QuerySets(context.Background(), "SELECT name FROM widgets")
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, 1, sets[0].Len())
}

func TestSQL_ProceduresUnsupportedOnSQLite(t *testing.T) {
	r, _ := newWidgetRepo(t)
	ctx := context.Background()
	s := r.SQL()

	_, err := s.CallScalar(ctx, "next_value")
	assert.ErrorIs(t, err, ErrProceduresUnsupported)
	_, err = s.CallTable(ctx, "report", 1)
	assert.ErrorIs(t, err, ErrProceduresUnsupported)
	_, err = s.CallSets(ctx, "report", 1)
	assert.ErrorIs(t, err, ErrProceduresUnsupported)

	_, err = s.CallScalar(ctx, "bad name()")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

type namedDialector struct {
	gorm.Dialector
	name string
}

func (d namedDialector) Name() string { return d.name }

func TestSQL_CallStatement(t *testing.T) {
	tests := []struct {
		dialect string
		table   bool
		want    string
	}{
		{"postgres", false, "SELECT report(?, ?)"},
		{"postgres", true, "SELECT * FROM report(?, ?)"},
		{"mysql", true, "CALL report(?, ?)"},
		{"sqlserver", true, "EXEC report ?, ?"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			db := &gorm.DB{Config: &gorm.Config{Dialector: namedDialector{name: tt.dialect}}}
			got, err := NewSQL(db).callStatement("report", 2, tt.table)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTable_DropColumn(t *testing.T) {
	tbl := &Table{
		Columns: []string{"name", "rownumber", "qty"},
		Rows:    [][]any{{"a", int64(1), int64(5)}, {"b", int64(2), int64(6)}},
	}
	tbl.dropColumn("ROWNUMBER")
	assert.Equal(t, []string{"name", "qty"}, tbl.Columns)
	assert.Equal(t, [][]any{{"a", int64(5)}, {"b", int64(6)}}, tbl.Rows)

	var empty *Table
	assert.Zero(t, empty.Len())
}
