package models

import "errors"

var (
	ErrNotFound      = errors.New("file not found")
	ErrStreamOpen    = errors.New("file stream unavailable")
	ErrInvalidUpload = errors.New("invalid upload")
	ErrAlreadyExists = errors.New("file already exists")
)
