// Package artifact stores the raw bytes and extracted text of each document,
// addressed by document id.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	rawPrefix  = "raw/"
	textPrefix = "text/"
	textSuffix = ".txt"
)

var (
	// ErrNotFound is returned by Get when the artifact does not exist.
	ErrNotFound = errors.New("artifact not found")
	// ErrInvalidID rejects ids that could escape the key namespace.
	ErrInvalidID = errors.New("invalid artifact id")
)

// Handles are the confirmed locations of a document's two artifacts.
type Handles struct {
	Raw  string
	Text string
}

// Store is the contract for id-addressed artifact storage.
type Store interface {
	// Put writes both artifacts and returns their handles only once both writes completed.
	Put(ctx context.Context, id string, raw []byte, text string) (Handles, error)
	Get(ctx context.Context, handle string) ([]byte, error)
	// Delete removes the artifact; a missing artifact is not an error.
	Delete(ctx context.Context, handle string) error
}

// StorageError wraps an underlying I/O failure.
type StorageError struct {
	Op     string
	Handle string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("artifact %s %s: %v", e.Op, e.Handle, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// RawKey is the handle of the raw bytes for id.
func RawKey(id string) string {
	return rawPrefix + id
}

// TextKey is the handle of the extracted text for id.
func TextKey(id string) string {
	return textPrefix + id + textSuffix
}

// ValidateID rejects empty ids and ids containing separators or traversal.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" || id != strings.TrimSpace(id) {
		return ErrInvalidID
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") || strings.ContainsRune(id, 0) {
		return ErrInvalidID
	}
	return nil
}

// ValidateHandle checks that handle is a key produced by RawKey or TextKey.
func ValidateHandle(handle string) error {
	switch {
	case strings.HasPrefix(handle, rawPrefix):
		return ValidateID(strings.TrimPrefix(handle, rawPrefix))
	case strings.HasPrefix(handle, textPrefix) && strings.HasSuffix(handle, textSuffix):
		return ValidateID(strings.TrimSuffix(strings.TrimPrefix(handle, textPrefix), textSuffix))
	default:
		return ErrInvalidID
	}
}
