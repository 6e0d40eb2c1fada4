package domain

import "math"

// PageResult is one page of an ordered result set plus its count metadata.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	PageIndex  int   `json:"pageIndex"`
	PageSize   int   `json:"pageSize"`
	PageCount  int   `json:"pageCount"`
}

// NewPage builds a PageResult and computes PageCount from total and size.
// A nil items slice is replaced with an empty one so it encodes as [].
func NewPage[T any](items []T, total int64, pageIndex, pageSize int) *PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PageResult[T]{
		Items:      items,
		TotalCount: total,
		PageIndex:  NormalizePageIndex(pageIndex),
		PageSize:   NormalizePageSize(pageSize),
		PageCount:  PageCount(total, pageSize),
	}
}

// PageCount returns ceil(total / pageSize). A non-positive pageSize counts as 1.
func PageCount(total int64, pageSize int) int {
	size := int64(NormalizePageSize(pageSize))
	if total <= 0 {
		return 0
	}
	return int((total + size - 1) / size)
}

// NormalizePageIndex maps every index below 1 to the first page.
func NormalizePageIndex(pageIndex int) int {
	if pageIndex < 1 {
		return 1
	}
	return pageIndex
}

// NormalizePageSize coerces a non-positive size to 1.
func NormalizePageSize(pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	return pageSize
}

// Offset returns the number of rows skipped before the requested page.
// ok is false when the offset does not fit in an int; such a page lies past
// the end of any result set.
func Offset(pageIndex, pageSize int) (offset int, ok bool) {
	skipped := NormalizePageIndex(pageIndex) - 1
	size := NormalizePageSize(pageSize)
	if skipped > math.MaxInt/size {
		return 0, false
	}
	return skipped * size, true
}
