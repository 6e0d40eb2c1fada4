package user

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/simp-lee/xboot/internal/domain"
	"github.com/simp-lee/xboot/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// tick returns a clock advancing one second per call so created_time
// ordering is deterministic.
func tick() func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newTestRepo(t *testing.T) domain.UserRepository {
	return NewUserRepository(setupTestDB(t), repository.WithClock(tick()))
}

func seedUsers(t *testing.T, repo domain.UserRepository, n int) []*domain.User {
	t.Helper()
	users := make([]*domain.User, 0, n)
	for i := range n {
		u := &domain.User{Account: fmt.Sprintf("user%02d", i+1), Password: "hash"}
		require.NoError(t, repo.Create(context.Background(), u))
		users = append(users, u)
	}
	return users
}

func accounts(users []domain.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Account
	}
	return out
}

func TestCreateAndGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := domain.WithActor(context.Background(), "admin")

	u := &domain.User{Account: "alice", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	require.NotEqual(t, uuid.Nil, u.ID)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Account)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, "admin", *got.CreatedBy)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestGetByAccount(t *testing.T) {
	repo := newTestRepo(t)
	seedUsers(t, repo, 2)

	got, err := repo.GetByAccount(context.Background(), "user02")
	require.NoError(t, err)
	assert.Equal(t, "user02", got.Account)

	_, err = repo.GetByAccount(context.Background(), "nobody")
	assert.True(t, domain.IsNotFound(err))
}

func TestCreate_DuplicateAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Account: "alice"}))
	err := repo.Create(ctx, &domain.User{Account: "alice"})
	assert.True(t, domain.IsConflict(err), "got %v", err)
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	u := seedUsers(t, repo, 1)[0]
	ctx := domain.WithActor(context.Background(), "editor")

	u.Account = "renamed"
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Account)
	require.NotNil(t, got.ModifyBy)
	assert.Equal(t, "editor", *got.ModifyBy)
	assert.NotNil(t, got.ModifyTime)
}

func TestUpdate_Missing(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Update(context.Background(), &domain.User{EntityBase: domain.EntityBase{ID: uuid.New()}, Account: "ghost"})
	assert.True(t, domain.IsNotFound(err))
}

func TestDeleteRestorePurge(t *testing.T) {
	repo := newTestRepo(t)
	u := seedUsers(t, repo, 1)[0]
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err := repo.GetByID(ctx, u.ID)
	assert.True(t, domain.IsNotFound(err), "deleted user is hidden")
	assert.True(t, domain.IsNotFound(repo.Delete(ctx, u.ID)), "second delete finds nothing")

	require.NoError(t, repo.Restore(ctx, u.ID))
	_, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, domain.IsNotFound(repo.Restore(ctx, u.ID)), "restoring a live user finds nothing")

	require.NoError(t, repo.Delete(ctx, u.ID))
	require.NoError(t, repo.Purge(ctx, u.ID), "purge reaches deleted rows")
	assert.True(t, domain.IsNotFound(repo.Restore(ctx, u.ID)))
	assert.True(t, domain.IsNotFound(repo.Purge(ctx, u.ID)))
}

func TestDeleteMany(t *testing.T) {
	repo := newTestRepo(t)
	users := seedUsers(t, repo, 3)

	n, err := repo.DeleteMany(context.Background(), []uuid.UUID{users[0].ID, users[2].ID, users[0].ID, uuid.New()})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	page, err := repo.List(context.Background(), domain.PageRequest{PageIndex: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"user02"}, accounts(page.Items))
}

func TestList_DefaultOrderNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	seedUsers(t, repo, 3)

	page, err := repo.List(context.Background(), domain.PageRequest{PageIndex: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"user03", "user02", "user01"}, accounts(page.Items))
	assert.EqualValues(t, 3, page.TotalCount)
	assert.Equal(t, 1, page.PageCount)
}

func TestList_Pagination(t *testing.T) {
	repo := newTestRepo(t)
	seedUsers(t, repo, 25)

	tests := []struct {
		index     int
		wantLen   int
		wantFirst string
	}{
		{1, 10, "user01"},
		{2, 10, "user11"},
		{3, 5, "user21"},
		{4, 0, ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.index), func(t *testing.T) {
			page, err := repo.List(context.Background(), domain.PageRequest{
				PageIndex: tt.index, PageSize: 10, Order: "account",
			})
			require.NoError(t, err)
			assert.EqualValues(t, 25, page.TotalCount)
			assert.Equal(t, 3, page.PageCount)
			require.Len(t, page.Items, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, page.Items[0].Account)
			}
		})
	}
}

func TestList_OrderAndFilter(t *testing.T) {
	repo := newTestRepo(t)
	seedUsers(t, repo, 3)
	ctx := context.Background()

	page, err := repo.List(ctx, domain.PageRequest{PageIndex: 1, PageSize: 10, Order: "account desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"user03", "user02", "user01"}, accounts(page.Items))

	page, err = repo.List(ctx, domain.PageRequest{PageIndex: 1, PageSize: 10, Order: "password",
		Filter: map[string]string{"account": "user02"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"user02"}, accounts(page.Items), "password is neither sortable nor a filter")

	page, err = repo.List(ctx, domain.PageRequest{PageIndex: 1, PageSize: 10, Order: "account",
		Filter: map[string]string{"account__like": "er0", "password": "hash"}})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"record not found", gorm.ErrRecordNotFound, domain.IsNotFound},
		{"gorm duplicated", gorm.ErrDuplicatedKey, domain.IsConflict},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, domain.IsConflict},
		{"postgres other", &pgconn.PgError{Code: "23503"}, domain.IsInternal},
		{"sqlite unique", fmt.Errorf("constraint failed: UNIQUE constraint failed: xb_users.account"), domain.IsConflict},
		{"app error", domain.NewAppError(domain.CodeNotFound, "not found", nil), domain.IsNotFound},
		{"other", fmt.Errorf("disk full"), domain.IsInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(mapError(tt.err)))
		})
	}
	assert.NoError(t, mapError(nil))
}
