package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/xboot/internal/domain"
)

// BulkInsert inserts entities in batches of the configured size inside one
// transaction.
func (r *Repository[T]) BulkInsert(ctx context.Context, entities []*T) (int64, error) {
	entities = lo.Filter(entities, func(e *T, _ int) bool { return e != nil })
	if len(entities) == 0 {
		return 0, nil
	}
	now := r.opts.Now()
	for _, e := range entities {
		stampCreate(ctx, e, now)
	}

	return r.WithTransaction(ctx, func(tx *gorm.DB) (int64, error) {
		res := tx.CreateInBatches(entities, r.opts.BatchSize)
		return res.RowsAffected, res.Error
	})
}

// BulkUpdate writes entities by primary key, chunk by chunk, inside one
// transaction. It has the same effect as UpdateEntities.
func (r *Repository[T]) BulkUpdate(ctx context.Context, entities []*T, columns ...string) (int64, error) {
	entities = lo.Filter(entities, func(e *T, _ int) bool { return e != nil })
	if len(entities) == 0 {
		return 0, nil
	}

	ops := lo.Map(lo.Chunk(entities, r.opts.BatchSize), func(chunk []*T, _ int) Operation {
		return func(tx *gorm.DB) (int64, error) {
			return r.WithTx(tx).UpdateEntities(ctx, chunk, columns...)
		}
	})
	return r.WithTransaction(ctx, ops...)
}

// UpsertBulk inserts entities whose ID is not yet stored and updates the
// others, reporting both counts. Rows that exist but are logically deleted
// count as existing and stay deleted: the soft-delete flag is never
// assigned on conflict. When two entities share an ID the first one wins.
// Create audit fields are stamped on new rows only. Only entity types can be
// upserted.
func (r *Repository[T]) UpsertBulk(ctx context.Context, entities []*T) (inserted, updated int64, err error) {
	if !r.entity {
		return 0, 0, ErrNotEntity
	}
	entities = lo.Filter(entities, func(e *T, _ int) bool { return e != nil })
	if len(entities) == 0 {
		return 0, 0, nil
	}

	idOf := func(e *T) uuid.UUID {
		b, _ := baseOf(e)
		return b.ID
	}
	for _, e := range entities {
		if b, _ := baseOf(e); b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
	}
	entities = lo.UniqBy(entities, idOf)

	columns, err := r.upsertColumns(ctx)
	if err != nil {
		return 0, 0, err
	}

	now := r.opts.Now()
	_, err = r.WithTransaction(ctx, func(tx *gorm.DB) (int64, error) {
		var found []uuid.UUID
		for _, chunk := range lo.Chunk(entities, r.opts.BatchSize) {
			var ids []uuid.UUID
			q := ByIDs(lo.Map(chunk, func(e *T, _ int) uuid.UUID { return idOf(e) }))(tx.Model(new(T)))
			if err := q.Pluck(domain.ColumnID, &ids).Error; err != nil {
				return 0, err
			}
			found = append(found, ids...)
		}
		existing := lo.Associate(found, func(id uuid.UUID) (uuid.UUID, struct{}) {
			return id, struct{}{}
		})
		for _, e := range entities {
			if _, ok := existing[idOf(e)]; ok {
				stampModify(ctx, e, now)
			} else {
				stampCreate(ctx, e, now)
			}
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: domain.ColumnID}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).CreateInBatches(entities, r.opts.BatchSize)
		if res.Error != nil {
			return 0, res.Error
		}

		updated = int64(len(existing))
		inserted = int64(len(entities)) - updated
		return int64(len(entities)), nil
	})
	if err != nil {
		return 0, 0, err
	}
	return inserted, updated, nil
}

// upsertColumns are the columns an upsert overwrites on an existing row:
// the updatable columns minus is_deleted, and minus modify_by when ctx
// carries no actor.
func (r *Repository[T]) upsertColumns(ctx context.Context) ([]string, error) {
	columns, err := r.updatableColumns()
	if err != nil {
		return nil, err
	}
	_, hasActor := domain.ActorFromContext(ctx)
	return lo.Filter(columns, func(name string, _ int) bool {
		if name == domain.ColumnIsDeleted {
			return false
		}
		return hasActor || name != domain.ColumnModifyBy
	}), nil
}

// updatableColumns lists T's columns minus the primary key and create-only audit columns.
func (r *Repository[T]) updatableColumns() ([]string, error) {
	stmt := &gorm.Statement{DB: r.db}
	if err := stmt.Parse(new(T)); err != nil {
		return nil, err
	}
	return lo.Filter(stmt.Schema.DBNames, func(name string, _ int) bool {
		return !protectedColumns[name]
	}), nil
}
