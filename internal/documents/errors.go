package documents

import "errors"

var (
	ErrNotFound      = errors.New("document not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrOwnerNotFound = errors.New("owner not found")
	ErrDuplicateID   = errors.New("duplicate document id")
)
