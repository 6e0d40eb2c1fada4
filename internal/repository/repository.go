package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/simp-lee/xboot/internal/domain"
)

// DefaultBatchSize is the chunk size used by the bulk operations when no
// WithBatchSize option is given.
const DefaultBatchSize = 500

// Options configures a Repository.
type Options struct {
	Logger    *slog.Logger
	BatchSize int
	Now       func() time.Time
}

// Option mutates Options.
type Option func(*Options)

// WithLogger sets the logger used for transaction rollbacks.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithBatchSize sets the chunk size of the bulk operations.
func WithBatchSize(n int) Option {
	return func(o *Options) { o.BatchSize = n }
}

// WithClock replaces time.Now for audit stamping.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// Repository is a typed data-access object for records of type T.
type Repository[T any] struct {
	db       *gorm.DB
	opts     Options
	entity   bool
	unscoped bool
}

// New returns a Repository for T bound to db.
func New[T any](db *gorm.DB, opts ...Option) *Repository[T] {
	o := Options{Logger: slog.Default(), BatchSize: DefaultBatchSize, Now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Now == nil {
		o.Now = time.Now
	}

	_, entity := any(new(T)).(domain.Entity)
	return &Repository[T]{db: db, opts: o, entity: entity}
}

// WithTx returns a copy of r bound to tx.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	c := *r
	c.db = tx
	return &c
}

// Unscoped returns a copy of r whose reads and mutations also reach
// logically deleted rows.
func (r *Repository[T]) Unscoped() *Repository[T] {
	c := *r
	c.unscoped = true
	return &c
}

// DB returns the bound handle.
func (r *Repository[T]) DB() *gorm.DB {
	return r.db
}

// IsEntity reports whether T embeds domain.EntityBase.
func (r *Repository[T]) IsEntity() bool {
	return r.entity
}

// Query returns a fresh query over T with the predicate and, unless the
// repository is unscoped, the soft-delete filter applied. Callers may chain
// further GORM clauses onto it.
func (r *Repository[T]) Query(ctx context.Context, pred Predicate) *gorm.DB {
	db := r.db.WithContext(ctx).Model(new(T))
	if r.entity && !r.unscoped {
		db = db.Where("(is_deleted IS NULL OR is_deleted = ?)", false)
	}
	if pred != nil {
		db = pred(db)
	}
	return db
}

// Exists reports whether at least one row matches pred.
func (r *Repository[T]) Exists(ctx context.Context, pred Predicate) (bool, error) {
	var n int64
	if err := r.Query(ctx, pred).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get returns one row matching pred. When several rows match, which one is
// returned is unspecified.
func (r *Repository[T]) Get(ctx context.Context, pred Predicate) (*T, error) {
	var out T
	if err := r.Query(ctx, pred).Take(&out).Error; err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// GetByID returns the row with the given primary key.
func (r *Repository[T]) GetByID(ctx context.Context, id any) (*T, error) {
	return r.Get(ctx, ByID(id))
}

// List returns every row matching pred, ordered by orders.
func (r *Repository[T]) List(ctx context.Context, pred Predicate, orders ...Order) ([]T, error) {
	q, err := applyOrders(r.Query(ctx, pred), orders)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0)
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListBy is List with a single order column. An empty orderBy leaves the
// order unspecified.
func (r *Repository[T]) ListBy(ctx context.Context, pred Predicate, orderBy string, desc bool) ([]T, error) {
	if orderBy == "" {
		return r.List(ctx, pred)
	}
	return r.List(ctx, pred, Order{Column: orderBy, Desc: desc})
}

// Count returns the number of rows matching pred.
func (r *Repository[T]) Count(ctx context.Context, pred Predicate) (int64, error) {
	var n int64
	if err := r.Query(ctx, pred).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Page returns one page of rows matching pred. The total is counted before
// ordering and slicing. pageSize <= 0 is treated as 1 and pageIndex <= 1 as
// the first page; an index past the end yields no items with the true total.
func (r *Repository[T]) Page(ctx context.Context, pred Predicate, pageIndex, pageSize int, orders ...Order) (*domain.PageResult[T], error) {
	total, err := r.Count(ctx, pred)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0)
	size := domain.NormalizePageSize(pageSize)
	offset, ok := domain.Offset(pageIndex, size)
	if ok && total > int64(offset) {
		if len(orders) == 0 {
			orders = r.defaultOrders()
		}
		q, err := applyOrders(r.Query(ctx, pred), orders)
		if err != nil {
			return nil, err
		}
		if err := q.Offset(offset).Limit(size).Find(&items).Error; err != nil {
			return nil, err
		}
	}
	return domain.NewPage(items, total, pageIndex, size), nil
}

func (r *Repository[T]) defaultOrders() []Order {
	if !r.entity {
		return nil
	}
	return []Order{Desc(domain.ColumnCreatedTime), Desc(domain.ColumnID)}
}

// Insert creates entities. Entity-shaped records get a new UUID when their ID
// is unset, created_time when zero and created_by from the context actor
// when nil.
func (r *Repository[T]) Insert(ctx context.Context, entities ...*T) (int64, error) {
	entities = lo.Filter(entities, func(e *T, _ int) bool { return e != nil })
	if len(entities) == 0 {
		return 0, nil
	}
	now := r.opts.Now()
	for _, e := range entities {
		stampCreate(ctx, e, now)
	}

	db := r.db.WithContext(ctx)
	if len(entities) == 1 {
		res := db.Create(entities[0])
		return res.RowsAffected, res.Error
	}
	res := db.Create(entities)
	return res.RowsAffected, res.Error
}

// Update applies set to every row matching pred. id, created_by and
// created_time are dropped from set; for entity types modify_time and
// modify_by are stamped regardless of what set contains.
func (r *Repository[T]) Update(ctx context.Context, pred Predicate, set map[string]any) (int64, error) {
	values := make(map[string]any, len(set)+2)
	for k, v := range set {
		if !protectedColumns[k] {
			values[k] = v
		}
	}
	if r.entity {
		for k, v := range modifyValues(ctx, r.opts.Now()) {
			values[k] = v
		}
	}
	if len(values) == 0 {
		return 0, nil
	}

	res := r.Query(ctx, pred).Updates(values)
	return res.RowsAffected, res.Error
}

// UpdateEntity writes e by primary key. With columns only those columns are
// written; otherwise every updatable column is, zero values included.
// created_by and created_time are never written.
func (r *Repository[T]) UpdateEntity(ctx context.Context, e *T, columns ...string) (int64, error) {
	return updateEntity(ctx, r.db.WithContext(ctx), e, r.opts.Now(), columns)
}

// UpdateEntities calls UpdateEntity for each element and sums the affected
// rows. It stops at the first error.
func (r *Repository[T]) UpdateEntities(ctx context.Context, entities []*T, columns ...string) (int64, error) {
	var total int64
	for _, e := range entities {
		n, err := r.UpdateEntity(ctx, e, columns...)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Delete removes rows matching pred. Entity types are deleted logically by
// setting is_deleted; other types are deleted physically.
func (r *Repository[T]) Delete(ctx context.Context, pred Predicate) (int64, error) {
	if r.entity {
		return r.Update(ctx, pred, map[string]any{domain.ColumnIsDeleted: true})
	}
	res := r.Query(ctx, pred).Delete(new(T))
	return res.RowsAffected, res.Error
}

// DeleteEntity deletes e by primary key, logically for entity types.
func (r *Repository[T]) DeleteEntity(ctx context.Context, e *T) (int64, error) {
	if b, ok := baseOf(e); ok {
		return r.Delete(ctx, ByID(b.ID))
	}
	res := r.db.WithContext(ctx).Delete(e)
	return res.RowsAffected, res.Error
}

// DeleteByID deletes the row with the given primary key.
func (r *Repository[T]) DeleteByID(ctx context.Context, id any) (int64, error) {
	return r.Delete(ctx, ByID(id))
}

// DeleteByIDs deletes the rows with the given primary keys. Duplicates are
// ignored; an empty slice deletes nothing.
func (r *Repository[T]) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.Delete(ctx, ByIDs(ids))
}

// DeleteDeep physically removes rows matching pred, including rows that were
// already deleted logically.
func (r *Repository[T]) DeleteDeep(ctx context.Context, pred Predicate) (int64, error) {
	res := r.Unscoped().Query(ctx, pred).Delete(new(T))
	return res.RowsAffected, res.Error
}

// Restore clears the soft-delete flag of logically deleted rows matching pred.
func (r *Repository[T]) Restore(ctx context.Context, pred Predicate) (int64, error) {
	if !r.entity {
		return 0, ErrNotEntity
	}
	deleted := Where(domain.ColumnIsDeleted+" = ?", true)
	return r.Unscoped().Update(ctx, And(pred, deleted), map[string]any{domain.ColumnIsDeleted: false})
}

// SQL returns the raw-SQL helpers bound to the same handle.
func (r *Repository[T]) SQL() *SQL {
	return NewSQL(r.db)
}
