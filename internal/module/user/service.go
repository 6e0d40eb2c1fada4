package user

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/xboot/internal/domain"
)

const (
	minAccountLen  = 2
	maxAccountLen  = 100
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt ignores anything longer
)

// userService implements domain.UserService.
type userService struct {
	repo domain.UserRepository
	cost int
}

// NewUserService creates a UserService storing bcrypt password hashes.
func NewUserService(repo domain.UserRepository) domain.UserService {
	return &userService{repo: repo, cost: bcrypt.DefaultCost}
}

// CreateUser validates the input, hashes the password and persists a new user.
func (s *userService) CreateUser(ctx context.Context, account, password string) (*domain.User, error) {
	account = strings.TrimSpace(account)
	if err := validateAccount(account); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Account: account, Password: hash}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.User], error) {
	return s.repo.List(ctx, req)
}

// UpdateUser renames the user and, when password is non-empty, replaces its
// password hash.
func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, account, password string) (*domain.User, error) {
	account = strings.TrimSpace(account)
	if err := validateAccount(account); err != nil {
		return nil, err
	}
	if password != "" {
		if err := validatePassword(password); err != nil {
			return nil, err
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Account = account
	if password != "" {
		if user.Password, err = s.hash(password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser marks the user deleted.
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// DeleteUsers marks every listed user deleted and returns how many were.
func (s *userService) DeleteUsers(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, domain.NewAppError(domain.CodeRequiredError, "ids are required", nil)
	}
	return s.repo.DeleteMany(ctx, ids)
}

// PurgeUser removes the user row, deleted or not.
func (s *userService) PurgeUser(ctx context.Context, id uuid.UUID) error {
	return s.repo.Purge(ctx, id)
}

// RestoreUser brings back a deleted user.
func (s *userService) RestoreUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *userService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternalServerError, "failed to hash password", err)
	}
	return string(b), nil
}

// CheckPassword reports whether password matches the stored hash of user.
func CheckPassword(user *domain.User, password string) bool {
	if user == nil || user.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

func validateAccount(account string) error {
	n := utf8.RuneCountInString(account)
	switch {
	case n == 0:
		return domain.NewAppError(domain.CodeRequiredError, "account is required", nil)
	case n < minAccountLen:
		return domain.NewAppError(domain.CodeBadRequest, "account must be at least 2 characters", nil)
	case n > maxAccountLen:
		return domain.NewAppError(domain.CodeBadRequest, "account must be at most 100 characters", nil)
	}
	return nil
}

func validatePassword(password string) error {
	switch n := len(password); {
	case n == 0:
		return domain.NewAppError(domain.CodeRequiredError, "password is required", nil)
	case n < minPasswordLen:
		return domain.NewAppError(domain.CodeBadRequest, "password must be at least 6 characters", nil)
	case n > maxPasswordLen:
		return domain.NewAppError(domain.CodeBadRequest, "password must be at most 72 bytes", nil)
	}
	return nil
}
