package services

import "errors"

// Common errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoteNotFound        = errors.New("note not found")
	ErrFolderNotFound      = errors.New("folder not found")
	ErrLayoutNotFound      = errors.New("layout not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInternal            = errors.New("internal server error")
	ErrResourceExists      = errors.New("resource already exists")
	ErrWebSocketConnection = errors.New("websocket connection error")
)
