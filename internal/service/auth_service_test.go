package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio-api/internal/model"
	"portfolio-api/pkg/apierror"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) Create(ctx context.Context, u model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newTestAuthService(t *testing.T, store UserStore, accessTTL time.Duration) *AuthService {
	t.Helper()

	svc, err := NewAuthService("access-secret", "refresh-secret", accessTTL, 24*time.Hour, store)
	require.NoError(t, err)
	return svc
}

func testUser(t *testing.T, password string) model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return model.User{
		ID:           "user-1",
		Email:        "owner@example.com",
		PasswordHash: string(hash),
		Role:         "admin",
	}
}

func TestAuthService_Login(t *testing.T) {
	t.Run("missing fields never touch the store", func(t *testing.T) {
		store := new(mockUserStore)
		svc := newTestAuthService(t, store, 15*time.Minute)

		for _, payload := range []model.LoginRequest{
			{},
			{Email: "owner@example.com"},
			{Password: "secret"},
			{Email: "   ", Password: "secret"},
		} {
			_, _, _, err := svc.Login(context.Background(), payload.Email, payload.Password)

			var apiErr *apierror.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, 400, apiErr.HTTPStatus)
		}

		store.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("unknown email", func(t *testing.T) {
		store := new(mockUserStore)
		store.On("FindByEmail", mock.Anything, "nobody@example.com").
			Return(model.User{}, model.ErrUserNotFound)
		svc := newTestAuthService(t, store, 15*time.Minute)

		_, _, _, err := svc.Login(context.Background(), "nobody@example.com", "secret")

		assert.ErrorIs(t, err, model.ErrUserNotFound)
		store.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		store := new(mockUserStore)
		store.On("FindByEmail", mock.Anything, "owner@example.com").
			Return(testUser(t, "correct-horse"), nil)
		svc := newTestAuthService(t, store, 15*time.Minute)

		_, _, _, err := svc.Login(context.Background(), "owner@example.com", "battery-staple")

		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})

	t.Run("success issues verifiable token pair", func(t *testing.T) {
		store := new(mockUserStore)
		store.On("FindByEmail", mock.Anything, "owner@example.com").
			Return(testUser(t, "correct-horse"), nil)
		svc := newTestAuthService(t, store, 15*time.Minute)

		accessToken, refreshToken, user, err := svc.Login(context.Background(), "owner@example.com", "correct-horse")

		require.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)
		assert.Equal(t, "user-1", user.ID)

		claims, err := svc.ValidateAccess(accessToken)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "owner@example.com", claims.Email)

		refreshClaims, err := svc.ValidateRefresh(refreshToken)
		require.NoError(t, err)
		assert.Equal(t, "user-1", refreshClaims.UserID)
	})
}

func TestAuthService_ValidateAccess(t *testing.T) {
	store := new(mockUserStore)
	store.On("FindByEmail", mock.Anything, "owner@example.com").
		Return(testUser(t, "correct-horse"), nil)

	t.Run("rejects garbage", func(t *testing.T) {
		svc := newTestAuthService(t, store, 15*time.Minute)

		_, err := svc.ValidateAccess("not-a-token")

		assert.ErrorIs(t, err, model.ErrInvalidToken)
	})

	t.Run("rejects a refresh token used as access token", func(t *testing.T) {
		svc := newTestAuthService(t, store, 15*time.Minute)
		_, refreshToken, _, err := svc.Login(context.Background(), "owner@example.com", "correct-horse")
		require.NoError(t, err)

		_, err = svc.ValidateAccess(refreshToken)

		assert.ErrorIs(t, err, model.ErrInvalidToken)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		svc := newTestAuthService(t, store, 15*time.Minute)
		other, err := NewAuthService("different-secret", "refresh-secret", 15*time.Minute, 24*time.Hour, store)
		require.NoError(t, err)

		accessToken, _, _, err := other.Login(context.Background(), "owner@example.com", "correct-horse")
		require.NoError(t, err)

		_, err = svc.ValidateAccess(accessToken)
		assert.ErrorIs(t, err, model.ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		svc := newTestAuthService(t, store, -1*time.Second)
		accessToken, _, _, err := svc.Login(context.Background(), "owner@example.com", "correct-horse")
		require.NoError(t, err)

		_, err = svc.ValidateAccess(accessToken)

		assert.ErrorIs(t, err, model.ErrInvalidToken)
	})
}

func TestAuthService_RefreshAccess(t *testing.T) {
	store := new(mockUserStore)
	store.On("FindByEmail", mock.Anything, "owner@example.com").
		Return(testUser(t, "correct-horse"), nil)
	svc := newTestAuthService(t, store, 15*time.Minute)

	_, refreshToken, _, err := svc.Login(context.Background(), "owner@example.com", "correct-horse")
	require.NoError(t, err)

	t.Run("mints a valid access token", func(t *testing.T) {
		accessToken, err := svc.RefreshAccess(refreshToken)

		require.NoError(t, err)
		claims, err := svc.ValidateAccess(accessToken)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
	})

	t.Run("is idempotent while the refresh token lives", func(t *testing.T) {
		first, err := svc.RefreshAccess(refreshToken)
		require.NoError(t, err)
		second, err := svc.RefreshAccess(refreshToken)
		require.NoError(t, err)

		_, err = svc.ValidateAccess(first)
		assert.NoError(t, err)
		_, err = svc.ValidateAccess(second)
		assert.NoError(t, err)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		accessToken, _, _, err := svc.Login(context.Background(), "owner@example.com", "correct-horse")
		require.NoError(t, err)

		_, err = svc.RefreshAccess(accessToken)

		assert.ErrorIs(t, err, model.ErrInvalidToken)
	})
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	t.Run("seeds when the table is empty", func(t *testing.T) {
		store := new(mockUserStore)
		store.On("Count", mock.Anything).Return(0, nil)
		store.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
			return u.Email == "admin@example.com" && u.Role == "admin" && u.PasswordHash != ""
		})).Return(nil)
		svc := newTestAuthService(t, store, 15*time.Minute)

		require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "secret"))
		store.AssertExpectations(t)
	})

	t.Run("skips when users exist", func(t *testing.T) {
		store := new(mockUserStore)
		store.On("Count", mock.Anything).Return(3, nil)
		svc := newTestAuthService(t, store, 15*time.Minute)

		require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "secret"))
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("skips without configured credentials", func(t *testing.T) {
		store := new(mockUserStore)
		svc := newTestAuthService(t, store, 15*time.Minute)

		require.NoError(t, svc.EnsureAdmin(context.Background(), "", ""))
		store.AssertNotCalled(t, "Count", mock.Anything)
	})
}
