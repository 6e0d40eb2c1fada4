package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/xboot/internal/domain"
)

// protectedColumns are never written by an update.
var protectedColumns = map[string]bool{
	domain.ColumnID:          true,
	domain.ColumnCreatedBy:   true,
	domain.ColumnCreatedTime: true,
	"ID":                     true,
	"CreatedBy":              true,
	"CreatedTime":            true,
}

func baseOf(v any) (*domain.EntityBase, bool) {
	e, ok := v.(domain.Entity)
	if !ok || e == nil {
		return nil, false
	}
	b := e.Base()
	return b, b != nil
}

func stampCreate(ctx context.Context, v any, now time.Time) {
	b, ok := baseOf(v)
	if !ok {
		return
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedTime.IsZero() {
		b.CreatedTime = now
	}
	if b.CreatedBy == nil {
		if actor, ok := domain.ActorFromContext(ctx); ok {
			b.CreatedBy = &actor
		}
	}
}

func stampModify(ctx context.Context, v any, now time.Time) {
	b, ok := baseOf(v)
	if !ok {
		return
	}
	b.ModifyTime = &now
	if actor, ok := domain.ActorFromContext(ctx); ok {
		b.ModifyBy = &actor
	}
}

func modifyValues(ctx context.Context, now time.Time) map[string]any {
	m := map[string]any{domain.ColumnModifyTime: now}
	if actor, ok := domain.ActorFromContext(ctx); ok {
		m[domain.ColumnModifyBy] = actor
	}
	return m
}

// updateEntity writes v by primary key through db. It is shared by
// Repository.UpdateEntity and ApplyChanges, which has no type parameter.
func updateEntity(ctx context.Context, db *gorm.DB, v any, now time.Time, columns []string) (int64, error) {
	_, entity := baseOf(v)
	if entity {
		stampModify(ctx, v, now)
	}

	q := db.Model(v)
	if len(columns) > 0 {
		cols := make([]string, 0, len(columns)+2)
		for _, c := range columns {
			if !protectedColumns[c] {
				cols = append(cols, c)
			}
		}
		if entity {
			cols = append(cols, domain.ColumnModifyTime)
			if _, ok := domain.ActorFromContext(ctx); ok {
				cols = append(cols, domain.ColumnModifyBy)
			}
		}
		if len(cols) == 0 {
			return 0, nil
		}
		q = q.Select(cols)
	} else {
		q = q.Select("*")
	}

	res := q.Omit(domain.ColumnCreatedBy, domain.ColumnCreatedTime).Updates(v)
	return res.RowsAffected, res.Error
}
