package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/xboot/internal/domain"
)

type mockUserRepo struct {
	users   map[uuid.UUID]*domain.User
	deleted map[uuid.UUID]bool

	createErr error
	updateErr error
}

func newMockRepo() *mockUserRepo {
	return &mockUserRepo{users: map[uuid.UUID]*domain.User{}, deleted: map[uuid.UUID]bool{}}
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = uuid.New()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok || m.deleted[id] {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByAccount(_ context.Context, account string) (*domain.User, error) {
	for id, u := range m.users {
		if u.Account == account && !m.deleted[id] {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) List(_ context.Context, req domain.PageRequest) (*domain.PageResult[domain.User], error) {
	var items []domain.User
	for id, u := range m.users {
		if !m.deleted[id] {
			items = append(items, *u)
		}
	}
	return domain.NewPage(items, int64(len(items)), req.PageIndex, req.PageSize), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok || m.deleted[id] {
		return domain.ErrNotFound
	}
	m.deleted[id] = true
	return nil
}

func (m *mockUserRepo) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if m.Delete(ctx, id) == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockUserRepo) Purge(_ context.Context, id uuid.UUID) error {
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	delete(m.deleted, id)
	return nil
}

func (m *mockUserRepo) Restore(_ context.Context, id uuid.UUID) error {
	if !m.deleted[id] {
		return domain.ErrNotFound
	}
	delete(m.deleted, id)
	return nil
}

func newTestService(repo domain.UserRepository) *userService {
	return &userService{repo: repo, cost: bcrypt.MinCost}
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name     string
		account  string
		password string
		check    func(error) bool
	}{
		{"valid", "  alice  ", "secret1", nil},
		{"empty account", "   ", "secret1", domain.IsValidation},
		{"short account", "a", "secret1", domain.IsValidation},
		{"long account", strings.Repeat("a", 101), "secret1", domain.IsValidation},
		{"empty password", "alice", "", domain.IsValidation},
		{"short password", "alice", "12345", domain.IsValidation},
		{"long password", "alice", strings.Repeat("p", 73), domain.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMockRepo())

			user, err := svc.CreateUser(context.Background(), tt.account, tt.password)
			if tt.check != nil {
				assert.True(t, tt.check(err), "got %v", err)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", user.Account)
			assert.NotEqual(t, tt.password, user.Password, "password is stored hashed")
			assert.True(t, CheckPassword(user, tt.password))
			assert.False(t, CheckPassword(user, "wrong-password"))
		})
	}
}

func TestCreateUser_RequiredCode(t *testing.T) {
	svc := newTestService(newMockRepo())

	_, err := svc.CreateUser(context.Background(), "", "secret1")
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.CodeRequiredError, appErr.Code)
}

func TestCreateUser_RepoError(t *testing.T) {
	repo := newMockRepo()
	repo.createErr = domain.NewAppError(domain.CodeConflict, "account already exists", nil)
	svc := newTestService(repo)

	_, err := svc.CreateUser(context.Background(), "alice", "secret1")
	assert.True(t, domain.IsConflict(err))
}

func TestGetUser(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	created, err := svc.CreateUser(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	got, err := svc.GetUser(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Account)

	_, err = svc.GetUser(context.Background(), uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestListUsers(t *testing.T) {
	svc := newTestService(newMockRepo())
	for _, a := range []string{"alice", "bob"} {
		_, err := svc.CreateUser(context.Background(), a, "secret1")
		require.NoError(t, err)
	}

	page, err := svc.ListUsers(context.Background(), domain.PageRequest{PageIndex: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 2, page.TotalCount)
}

func TestUpdateUser(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	created, err := svc.CreateUser(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	t.Run("rename keeps password", func(t *testing.T) {
		u, err := svc.UpdateUser(context.Background(), created.ID, "alicia", "")
		require.NoError(t, err)
		assert.Equal(t, "alicia", u.Account)
		assert.True(t, CheckPassword(u, "secret1"))
	})

	t.Run("new password", func(t *testing.T) {
		u, err := svc.UpdateUser(context.Background(), created.ID, "alicia", "newsecret")
		require.NoError(t, err)
		assert.True(t, CheckPassword(u, "newsecret"))
		assert.False(t, CheckPassword(u, "secret1"))
	})

	t.Run("invalid password", func(t *testing.T) {
		_, err := svc.UpdateUser(context.Background(), created.ID, "alicia", "123")
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := svc.UpdateUser(context.Background(), uuid.New(), "alicia", "")
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("repo failure", func(t *testing.T) {
		repo.updateErr = errors.New("boom")
		defer func() { repo.updateErr = nil }()
		_, err := svc.UpdateUser(context.Background(), created.ID, "alicia", "")
		assert.EqualError(t, err, "boom")
	})
}

func TestDeleteRestorePurgeUser(t *testing.T) {
	svc := newTestService(newMockRepo())
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, "alice", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, u.ID))
	_, err = svc.GetUser(ctx, u.ID)
	assert.True(t, domain.IsNotFound(err))

	restored, err := svc.RestoreUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, restored.ID)

	_, err = svc.RestoreUser(ctx, u.ID)
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, svc.PurgeUser(ctx, u.ID))
	assert.True(t, domain.IsNotFound(svc.PurgeUser(ctx, u.ID)))
}

func TestDeleteUsers(t *testing.T) {
	svc := newTestService(newMockRepo())
	ctx := context.Background()
	a, err := svc.CreateUser(ctx, "alice", "secret1")
	require.NoError(t, err)
	b, err := svc.CreateUser(ctx, "bob", "secret1")
	require.NoError(t, err)

	n, err := svc.DeleteUsers(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = svc.DeleteUsers(ctx, nil)
	assert.True(t, domain.IsValidation(err))
}

func TestCheckPassword_NoHash(t *testing.T) {
	assert.False(t, CheckPassword(nil, "x"))
	assert.False(t, CheckPassword(&domain.User{}, "x"))
}
