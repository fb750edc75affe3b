package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio-api/internal/middleware"
	"portfolio-api/internal/model"
	"portfolio-api/internal/service"
)

type fakeUserStore struct {
	users map[string]model.User
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeUserStore) Create(_ context.Context, u model.User) error {
	s.users[u.ID] = u
	return nil
}

func (s *fakeUserStore) Count(_ context.Context) (int, error) {
	return len(s.users), nil
}

type authFixture struct {
	handler *AuthHandler
	mw      *middleware.AuthMiddleware
	service *service.AuthService
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	store := &fakeUserStore{users: map[string]model.User{
		"user-1": {
			ID:           "user-1",
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			Role:         "admin",
		},
	}}

	svc, err := service.NewAuthService("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour, store)
	require.NoError(t, err)

	return authFixture{
		handler: NewAuthHandler(svc, false),
		mw:      middleware.NewAuthMiddleware(svc, svc),
		service: svc,
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()

	var resp model.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func postLogin(t *testing.T, f authFixture, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.Login(rec, req)
	return rec
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		f := newAuthFixture(t)
		rec := postLogin(t, f, `{"email":"","password":""}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "Email and password are required", resp.Message)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newAuthFixture(t)
		rec := postLogin(t, f, `{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		rec := postLogin(t, f, `{"email":"nobody@example.com","password":"whatever"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", decodeResponse(t, rec).Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		rec := postLogin(t, f, `{"email":"admin@example.com","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeResponse(t, rec).Message)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("successful login sets both cookies", func(t *testing.T) {
		f := newAuthFixture(t)
		rec := postLogin(t, f, `{"email":"admin@example.com","password":"correct horse"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		assert.Equal(t, "Login successful", resp.Message)
		assert.NotEmpty(t, resp.Token)

		cookies := rec.Result().Cookies()
		access := cookieByName(cookies, "accessToken")
		require.NotNil(t, access)
		assert.Equal(t, resp.Token, access.Value)
		assert.Equal(t, 900, access.MaxAge)
		assert.Equal(t, "/", access.Path)
		assert.True(t, access.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, access.SameSite)

		refresh := cookieByName(cookies, "refreshToken")
		require.NotNil(t, refresh)
		assert.Equal(t, 7*24*60*60, refresh.MaxAge)
		assert.True(t, refresh.HttpOnly)

		claims, err := f.service.ValidateAccess(access.Value)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	loginCookies := func(t *testing.T, f authFixture) []*http.Cookie {
		t.Helper()
		rec := postLogin(t, f, `{"email":"admin@example.com","password":"correct horse"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		return rec.Result().Cookies()
	}

	t.Run("no refresh cookie", func(t *testing.T) {
		f := newAuthFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		rec := httptest.NewRecorder()
		f.handler.Refresh(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "No refresh token", decodeResponse(t, rec).Message)
	})

	t.Run("garbage refresh cookie", func(t *testing.T) {
		f := newAuthFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "not-a-jwt"})
		rec := httptest.NewRecorder()
		f.handler.Refresh(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired refresh token", decodeResponse(t, rec).Message)
	})

	t.Run("access token is not accepted for refresh", func(t *testing.T) {
		f := newAuthFixture(t)
		access := cookieByName(loginCookies(t, f), "accessToken")
		require.NotNil(t, access)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: access.Value})
		rec := httptest.NewRecorder()
		f.handler.Refresh(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid refresh issues a fresh access cookie", func(t *testing.T) {
		f := newAuthFixture(t)
		refresh := cookieByName(loginCookies(t, f), "refreshToken")
		require.NotNil(t, refresh)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh.Value})
		rec := httptest.NewRecorder()
		f.handler.Refresh(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Token refreshed", decodeResponse(t, rec).Message)

		cookies := rec.Result().Cookies()
		access := cookieByName(cookies, "accessToken")
		require.NotNil(t, access)
		assert.Equal(t, 900, access.MaxAge)
		assert.Nil(t, cookieByName(cookies, "refreshToken"), "refresh token must not be rotated")

		_, err := f.service.ValidateAccess(access.Value)
		assert.NoError(t, err)
	})

	t.Run("refresh is repeatable with the same token", func(t *testing.T) {
		f := newAuthFixture(t)
		refresh := cookieByName(loginCookies(t, f), "refreshToken")
		require.NotNil(t, refresh)

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
			req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh.Value})
			rec := httptest.NewRecorder()
			f.handler.Refresh(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "attempt %d", i)
		}
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		f := newAuthFixture(t)
		guarded := f.mw.RequireAuth(http.HandlerFunc(f.handler.Logout))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authenticated", decodeResponse(t, rec).Message)
		assert.Empty(t, rec.Header().Values("Set-Cookie"), "cookies must not be touched on a rejected logout")
	})

	t.Run("clears both cookies", func(t *testing.T) {
		f := newAuthFixture(t)
		login := postLogin(t, f, `{"email":"admin@example.com","password":"correct horse"}`)
		require.Equal(t, http.StatusOK, login.Code)
		access := cookieByName(login.Result().Cookies(), "accessToken")
		require.NotNil(t, access)

		guarded := f.mw.RequireAuth(http.HandlerFunc(f.handler.Logout))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: access.Value})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Logged out successfully", decodeResponse(t, rec).Message)

		raw := strings.Join(rec.Header().Values("Set-Cookie"), "\n")
		assert.Contains(t, raw, "accessToken=;")
		assert.Contains(t, raw, "refreshToken=;")
		assert.Contains(t, raw, "Max-Age=0")

		for _, name := range []string{"accessToken", "refreshToken"} {
			c := cookieByName(rec.Result().Cookies(), name)
			require.NotNil(t, c, name)
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
		}
	})
}

func TestAuthHandler_Me(t *testing.T) {
	newGuardedMe := func(f authFixture) http.Handler {
		return f.mw.RequireAuth(http.HandlerFunc(f.handler.Me))
	}

	t.Run("no token", func(t *testing.T) {
		f := newAuthFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		rec := httptest.NewRecorder()
		newGuardedMe(f).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Not authenticated", decodeResponse(t, rec).Message)
	})

	t.Run("invalid token", func(t *testing.T) {
		f := newAuthFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: "junk"})
		rec := httptest.NewRecorder()
		newGuardedMe(f).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired token", decodeResponse(t, rec).Message)
	})

	t.Run("cookie token", func(t *testing.T) {
		f := newAuthFixture(t)
		login := postLogin(t, f, `{"email":"admin@example.com","password":"correct horse"}`)
		access := cookieByName(login.Result().Cookies(), "accessToken")
		require.NotNil(t, access)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: access.Value})
		rec := httptest.NewRecorder()
		newGuardedMe(f).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		assert.Equal(t, "Authenticated", resp.Message)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "admin@example.com", data["email"])
		assert.Equal(t, "user-1", data["id"])
	})

	t.Run("bearer header fallback", func(t *testing.T) {
		f := newAuthFixture(t)
		login := postLogin(t, f, `{"email":"admin@example.com","password":"correct horse"}`)
		resp := decodeResponse(t, login)
		require.NotEmpty(t, resp.Token)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+resp.Token)
		rec := httptest.NewRecorder()
		newGuardedMe(f).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
