package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"portfolio-api/internal/model"
)

// AccessTokenCookie is the browser-facing token carrier. The Authorization
// bearer header is accepted as a fallback for non-cookie clients.
const AccessTokenCookie = "accessToken"

type tokenValidator interface {
	ValidateAccess(tokenString string) (*model.AuthClaims, error)
}

type userResolver interface {
	GetUserByID(ctx context.Context, userID string) (model.AuthUser, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	validator tokenValidator
	users     userResolver
}

func NewAuthMiddleware(validator tokenValidator, users userResolver) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, users: users}
}

// RequireAuth admits requests carrying a valid access token and stores the
// decoded claims in the request context. Verification failures are reported
// as a single pass/fail signal.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractAccessToken(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := m.validator.ValidateAccess(token)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin layers on RequireAuth and resolves the subject's role from
// the credential store. Token claims carry identity only.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		user, err := m.users.GetUserByID(r.Context(), claims.UserID)
		if err != nil || !strings.EqualFold(user.Role, "admin") {
			writeAuthError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func ClaimsFromContext(ctx context.Context) (*model.AuthClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AuthClaims)
	return claims, ok
}

func extractAccessToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value), true
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" && strings.HasPrefix(strings.ToLower(header), "bearer ") {
		if token := strings.TrimSpace(header[7:]); token != "" {
			return token, true
		}
	}
	return "", false
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Message: message,
	})
}
