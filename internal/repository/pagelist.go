package repository

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/simp-lee/xboot/internal/domain"
)

// rowNumberColumn is the window column added to pages after the first.
const rowNumberColumn = "rownumber"

// SQLPage describes a string-built paged query.
//
// Table, Columns, Where and OrderBy are concatenated into the statement
// verbatim and must never carry untrusted input. Values belong in WhereArgs,
// which the driver binds against ? placeholders in Where.
type SQLPage struct {
	Table     string
	Columns   string
	Where     string
	WhereArgs []any
	OrderBy   string
	PageIndex int
	PageSize  int
	// MaxCount caps both the reported total and the reachable rows.
	// Zero means no cap.
	MaxCount int
}

func (p SQLPage) where() string {
	if strings.TrimSpace(p.Where) == "" {
		return ""
	}
	return " WHERE (" + p.Where + ")"
}

func (p SQLPage) countSQL() string {
	return "SELECT COUNT(1) FROM " + p.Table + p.where()
}

// window returns the rows (start, end] a later page covers, clamped to MaxCount.
// A start past MaxCount, or beyond the range of int, yields an empty window.
func (p SQLPage) window() (start, end int) {
	size := domain.NormalizePageSize(p.PageSize)
	start, ok := domain.Offset(p.PageIndex, size)
	if !ok {
		return math.MaxInt, 0
	}
	if start > math.MaxInt-size {
		end = math.MaxInt
	} else {
		end = start + size
	}
	if p.MaxCount > 0 {
		if start > p.MaxCount {
			end = 0
		} else if end > p.MaxCount {
			end = p.MaxCount
		}
	}
	return start, end
}

func (p SQLPage) pageSQL() string {
	cols := p.Columns
	if strings.TrimSpace(cols) == "" {
		cols = "*"
	}
	order := ""
	if strings.TrimSpace(p.OrderBy) != "" {
		order = "ORDER BY " + p.OrderBy
	}

	if p.PageIndex <= 1 {
		limit := domain.NormalizePageSize(p.PageSize)
		if p.MaxCount > 0 && limit > p.MaxCount {
			limit = p.MaxCount
		}
		q := "SELECT " + cols + " FROM " + p.Table + p.where()
		if order != "" {
			q += " " + order
		}
		return q + " LIMIT " + strconv.Itoa(limit)
	}

	start, end := p.window()
	return "SELECT * FROM (SELECT " + cols + ", ROW_NUMBER() OVER (" + order + ") AS " + rowNumberColumn +
		" FROM " + p.Table + p.where() + ") paged WHERE " + rowNumberColumn + " > " + strconv.Itoa(start) +
		" AND " + rowNumberColumn + " <= " + strconv.Itoa(end) + " ORDER BY " + rowNumberColumn
}

func (p SQLPage) total(ctx context.Context, s *SQL) (int64, error) {
	total, err := s.QueryInt(ctx, p.countSQL(), p.WhereArgs...)
	if err != nil {
		return 0, err
	}
	if p.MaxCount > 0 && total > int64(p.MaxCount) {
		total = int64(p.MaxCount)
	}
	return total, nil
}

// PageList returns one page of p.Table and the matching row count, capped at
// p.MaxCount. The first page is a plain LIMIT query; later pages number rows
// with ROW_NUMBER() and the window column is dropped from the result.
func (s *SQL) PageList(ctx context.Context, p SQLPage) (*Table, int64, error) {
	total, err := p.total(ctx, s)
	if err != nil {
		return nil, 0, err
	}
	t, err := s.QueryTable(ctx, p.pageSQL(), p.WhereArgs...)
	if err != nil {
		return nil, 0, err
	}
	if p.PageIndex > 1 {
		t.dropColumn(rowNumberColumn)
	}
	return t, total, nil
}

// PageListInto is PageList scanning rows into R.
func PageListInto[R any](ctx context.Context, s *SQL, p SQLPage) ([]R, int64, error) {
	total, err := p.total(ctx, s)
	if err != nil {
		return nil, 0, err
	}
	items, err := QueryInto[R](ctx, s, p.pageSQL(), p.WhereArgs...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
