package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrNoToken      = errors.New("no token")
	ErrInvalidToken = errors.New("invalid or expired token")

	// Content related errors
	ErrArticleNotFound = errors.New("article not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrSlugTaken       = errors.New("slug already in use")

	// Mailing list errors
	ErrAlreadySubscribed = errors.New("email already subscribed")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
