package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/xboot/internal/domain"
)

// GroupQuery shapes a GroupedPage call. GroupBy and Select entries are
// forwarded to the store verbatim.
type GroupQuery struct {
	GroupBy   []string
	Select    []string
	Orders    []Order
	PageIndex int
	PageSize  int
}

// GroupedPage pages rows of T projected into R. Without GroupBy it behaves
// like Page scanned into R. With GroupBy the total is the number of groups,
// counted through a sub-query, and the default order is the group columns.
func GroupedPage[T, R any](ctx context.Context, r *Repository[T], pred Predicate, q GroupQuery) (*domain.PageResult[R], error) {
	size := domain.NormalizePageSize(q.PageSize)
	offset, inRange := domain.Offset(q.PageIndex, size)

	if len(q.GroupBy) == 0 {
		total, err := r.Count(ctx, pred)
		if err != nil {
			return nil, err
		}
		items := make([]R, 0)
		if inRange && total > int64(offset) {
			orders := q.Orders
			if len(orders) == 0 {
				orders = r.defaultOrders()
			}
			db, err := applyOrders(r.Query(ctx, pred), orders)
			if err != nil {
				return nil, err
			}
			if len(q.Select) > 0 {
				db = db.Select(q.Select)
			}
			if err := db.Offset(offset).Limit(size).Scan(&items).Error; err != nil {
				return nil, err
			}
		}
		return domain.NewPage(items, total, q.PageIndex, size), nil
	}

	grouped := func() *gorm.DB {
		db := r.Query(ctx, pred)
		if len(q.Select) > 0 {
			db = db.Select(q.Select)
		} else {
			db = db.Select(q.GroupBy)
		}
		for _, g := range q.GroupBy {
			db = db.Group(g)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Table("(?) AS grouped", grouped()).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]R, 0)
	if inRange && total > int64(offset) {
		db := grouped()
		if len(q.Orders) == 0 {
			for _, g := range q.GroupBy {
				db = db.Order(g)
			}
		} else {
			var err error
			if db, err = applyOrders(db, q.Orders); err != nil {
				return nil, err
			}
		}
		if err := db.Offset(offset).Limit(size).Scan(&items).Error; err != nil {
			return nil, err
		}
	}
	return domain.NewPage(items, total, q.PageIndex, size), nil
}
