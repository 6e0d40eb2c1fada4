package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/simp-lee/xboot/internal/domain"
	"github.com/simp-lee/xboot/internal/pkg"
	"github.com/simp-lee/xboot/internal/repository"
)

// Columns clients may sort and filter on.
var (
	allowedSortFields   = []string{"id", "account", "created_time", "modify_time"}
	allowedFilterFields = []string{"account", "created_by"}
)

const uniqueViolation = "23505"

// userRepository implements domain.UserRepository on the generic repository.
type userRepository struct {
	repo *repository.Repository[domain.User]
}

// NewUserRepository creates a UserRepository backed by db.
func NewUserRepository(db *gorm.DB, opts ...repository.Option) domain.UserRepository {
	return &userRepository{repo: repository.New[domain.User](db, opts...)}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.repo.Insert(ctx, user)
	return mapError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (r *userRepository) GetByAccount(ctx context.Context, account string) (*domain.User, error) {
	user, err := r.repo.Get(ctx, repository.Where("account = ?", account))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// List returns one page of non-deleted users filtered and ordered by the
// allowlisted request parameters. Without an order the newest users come first.
func (r *userRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.User], error) {
	page, err := r.repo.Page(ctx,
		pkg.Filter(req, allowedFilterFields),
		req.PageIndex, req.PageSize,
		pkg.Orders(req, allowedSortFields)...,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return page, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	n, err := r.repo.UpdateEntity(ctx, user, "account", "password")
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.repo.DeleteByID(ctx, id))
}

func (r *userRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	n, err := r.repo.DeleteByIDs(ctx, ids)
	return n, mapError(err)
}

func (r *userRepository) Purge(ctx context.Context, id uuid.UUID) error {
	return affected(r.repo.DeleteDeep(ctx, repository.ByID(id)))
}

func (r *userRepository) Restore(ctx context.Context, id uuid.UUID) error {
	return affected(r.repo.Restore(ctx, repository.ByID(id)))
}

// affected reports a zero-row mutation as not found.
func affected(n int64, err error) error {
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// mapError converts store errors to domain errors. AppErrors raised by the
// generic repository pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeConflict, "account already exists", err)
	}
	return domain.NewAppError(domain.CodeInternalServerError, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations. Postgres reports
// SQLSTATE 23505; the pure-Go SQLite driver only says so in the message.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
