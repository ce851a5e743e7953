package service

import "errors"

var (
	ErrStoreUnavailable = errors.New("code store unavailable")
	ErrAccessDenied     = errors.New("access denied")
	ErrFileNotFound     = errors.New("file not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionRequired  = errors.New("session is required")
)
