package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"portfolio-api/internal/model"
	"portfolio-api/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, resp model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, model.APIResponse{Success: true, Message: message, Data: data})
}

// writeError converts any error into the {success:false, message} shape.
// Unclassified errors become an opaque 500 and are logged with their cause.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Unexpected server error"

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		message = apiErr.Message
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found"
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid credentials"
	case errors.Is(err, model.ErrNoToken):
		status = http.StatusUnauthorized
		message = "Not authenticated"
	case errors.Is(err, model.ErrInvalidToken):
		status = http.StatusUnauthorized
		message = "Invalid or expired token"
	case errors.Is(err, model.ErrArticleNotFound):
		status = http.StatusNotFound
		message = "Article not found"
	case errors.Is(err, model.ErrProjectNotFound):
		status = http.StatusNotFound
		message = "Project not found"
	case errors.Is(err, model.ErrSlugTaken):
		status = http.StatusConflict
		message = "Slug already in use"
	case errors.Is(err, model.ErrAlreadySubscribed):
		status = http.StatusConflict
		message = "Email already subscribed"
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "Not authenticated"
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		message = "Access denied"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		message = "Invalid input"
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, model.APIResponse{Success: false, Message: message})
}
