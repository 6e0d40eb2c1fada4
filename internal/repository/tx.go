package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/xboot/internal/domain"
)

// WithTx executes fn within a database transaction.
// It commits on success, rolls back on error or panic. When db is already a
// transaction handle, fn runs inside a savepoint of it instead, so the
// outer transaction decides the final outcome.
func WithTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}

// Operation is one step of a transaction. It reports the rows it affected.
type Operation func(tx *gorm.DB) (int64, error)

// WithTransaction runs ops in order inside one transaction and returns the
// summed row count. If any operation fails the whole group is rolled back,
// the count is 0 and the error wraps the operation's cause.
func WithTransaction(ctx context.Context, db *gorm.DB, ops ...Operation) (int64, error) {
	return runTransaction(ctx, db, slog.Default(), ops)
}

// WithTransaction is the package-level WithTransaction on the repository's
// handle, logging rollbacks with the repository's logger.
func (r *Repository[T]) WithTransaction(ctx context.Context, ops ...Operation) (int64, error) {
	return runTransaction(ctx, r.db, r.opts.Logger, ops)
}

func runTransaction(ctx context.Context, db *gorm.DB, logger *slog.Logger, ops []Operation) (int64, error) {
	if len(ops) == 0 {
		return 0, nil
	}

	var total int64
	err := WithTx(db.WithContext(ctx), func(tx *gorm.DB) error {
		for i, op := range ops {
			if op == nil {
				continue
			}
			n, err := op(tx)
			if err != nil {
				return fmt.Errorf("transaction operation %d: %w", i, err)
			}
			total += n
		}
		return nil
	})
	if err != nil {
		logger.WarnContext(ctx, "transaction rolled back", "operations", len(ops), "error", err)
		return 0, err
	}
	return total, nil
}

// Action selects what ApplyChanges does with a payload.
type Action int

// Action values. The numbering is part of the wire contract of clients that
// submit change sets.
const (
	ActionDelete Action = 1
	ActionModify Action = 2
	ActionAdd    Action = 3
)

func (a Action) String() string {
	switch a {
	case ActionDelete:
		return "delete"
	case ActionModify:
		return "modify"
	case ActionAdd:
		return "add"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Change pairs a record pointer with the action to apply to it.
type Change struct {
	Payload any
	Action  Action
}

// Add, Modify and Delete build a Change.
func Add(payload any) Change    { return Change{Payload: payload, Action: ActionAdd} }
func Modify(payload any) Change { return Change{Payload: payload, Action: ActionModify} }
func Delete(payload any) Change { return Change{Payload: payload, Action: ActionDelete} }

// ApplyChanges applies every change inside one transaction. Payloads must be
// pointers to GORM models. Entity payloads are stamped like the Repository
// does and deleted logically. An unknown Action fails the whole group.
func ApplyChanges(ctx context.Context, db *gorm.DB, changes ...Change) (int64, error) {
	return applyChanges(ctx, db, slog.Default(), time.Now, changes)
}

// ApplyChanges is the package-level ApplyChanges on the repository's handle,
// clock and logger. Payloads may be of any model type, not only T.
func (r *Repository[T]) ApplyChanges(ctx context.Context, changes ...Change) (int64, error) {
	return applyChanges(ctx, r.db, r.opts.Logger, r.opts.Now, changes)
}

func applyChanges(ctx context.Context, db *gorm.DB, logger *slog.Logger, now func() time.Time, changes []Change) (int64, error) {
	ops := make([]Operation, 0, len(changes))
	for _, c := range changes {
		ops = append(ops, changeOperation(ctx, c, now))
	}
	return runTransaction(ctx, db, logger, ops)
}

func changeOperation(ctx context.Context, c Change, now func() time.Time) Operation {
	return func(tx *gorm.DB) (int64, error) {
		if c.Payload == nil {
			return 0, fmt.Errorf("%s: nil payload", c.Action)
		}
		switch c.Action {
		case ActionAdd:
			stampCreate(ctx, c.Payload, now())
			res := tx.Create(c.Payload)
			return res.RowsAffected, res.Error
		case ActionModify:
			return updateEntity(ctx, tx, c.Payload, now(), nil)
		case ActionDelete:
			if _, ok := baseOf(c.Payload); !ok {
				res := tx.Delete(c.Payload)
				return res.RowsAffected, res.Error
			}
			values := modifyValues(ctx, now())
			values[domain.ColumnIsDeleted] = true
			res := tx.Model(c.Payload).Updates(values)
			return res.RowsAffected, res.Error
		default:
			return 0, fmt.Errorf("%w: %s", ErrUnknownAction, c.Action)
		}
	}
}
