package domain

import (
	"context"

	"github.com/google/uuid"
)

// User is an administrative account stored in xb_users.
type User struct {
	EntityBase
	Account  string `gorm:"column:account;size:100;uniqueIndex;not null" json:"account"`
	Password string `gorm:"column:password;size:255" json:"-"`
}

// TableName binds User to the xb_users table.
func (User) TableName() string {
	return "xb_users"
}

// UserRepository defines the data access interface for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByAccount(ctx context.Context, account string) (*User, error)
	List(ctx context.Context, req PageRequest) (*PageResult[User], error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
	Purge(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
}

// UserService defines the business logic interface for users.
type UserService interface {
	CreateUser(ctx context.Context, account, password string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context, req PageRequest) (*PageResult[User], error)
	UpdateUser(ctx context.Context, id uuid.UUID, account, password string) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	DeleteUsers(ctx context.Context, ids []uuid.UUID) (int64, error)
	PurgeUser(ctx context.Context, id uuid.UUID) error
	RestoreUser(ctx context.Context, id uuid.UUID) (*User, error)
}
