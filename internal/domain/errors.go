package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrAlreadyExists  = errors.New("already exists")
	ErrParentNotFound = errors.New("parent not found")
	ErrInvalidIndex   = errors.New("index out of range")
	ErrSelfParenting  = errors.New("node cannot be its own parent")
	ErrDuplicateChild = errors.New("duplicate child entry")
)
