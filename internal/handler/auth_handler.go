package handler

import (
	"encoding/json"
	"net/http"

	"portfolio-api/internal/middleware"
	"portfolio-api/internal/model"
	"portfolio-api/internal/service"
	"portfolio-api/pkg/apierror"
)

const refreshTokenCookie = "refreshToken"

type AuthHandler struct {
	service       *service.AuthService
	secureCookies bool
}

func NewAuthHandler(service *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{service: service, secureCookies: secureCookies}
}

// Login verifies credentials, sets both auth cookies and returns the access
// token in the body for non-cookie clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("Invalid JSON body"))
		return
	}

	accessToken, refreshToken, user, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setCookie(w, middleware.AccessTokenCookie, accessToken, int(h.service.AccessTTL().Seconds()))
	h.setCookie(w, refreshTokenCookie, refreshToken, int(h.service.RefreshTTL().Seconds()))

	writeJSON(w, http.StatusOK, model.APIResponse{
		Success: true,
		Message: "Login successful",
		Token:   accessToken,
		Data:    user,
	})
}

// Refresh exchanges a valid refresh-token cookie for a fresh access-token
// cookie. The refresh token is left untouched, so the call is repeatable.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusUnauthorized, model.APIResponse{Success: false, Message: "No refresh token"})
		return
	}

	accessToken, err := h.service.RefreshAccess(cookie.Value)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, model.APIResponse{Success: false, Message: "Invalid or expired refresh token"})
		return
	}

	h.setCookie(w, middleware.AccessTokenCookie, accessToken, int(h.service.AccessTTL().Seconds()))
	writeSuccess(w, http.StatusOK, "Token refreshed", nil)
}

// Logout clears both auth cookies. Reaching here requires a valid access
// token; previously issued tokens remain valid until they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.clearCookie(w, middleware.AccessTokenCookie)
	h.clearCookie(w, refreshTokenCookie)
	writeSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// Me is a lightweight whoami probe; identity comes from the verified claims
// without touching the credential store.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, model.APIResponse{
		Success: true,
		Message: "Authenticated",
		Data:    model.AuthUser{ID: claims.UserID, Email: claims.Email},
	})
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name string, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
