package artifact

import (
	"errors"
	"testing"
)

func TestKeys(t *testing.T) {
	if got := RawKey("abc"); got != "raw/abc" {
		t.Fatalf("RawKey = %q", got)
	}
	if got := TextKey("abc"); got != "text/abc.txt" {
		t.Fatalf("TextKey = %q", got)
	}
}

func TestValidateID(t *testing.T) {
	for _, id := range []string{"", " ", "a/b", `a\b`, "..", "a..b", " padded"} {
		if err := ValidateID(id); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("ValidateID(%q) expected ErrInvalidID, got %v", id, err)
		}
	}
	if err := ValidateID("3f1c2a9e-0b7d-4c55-9b8e-1a2b3c4d5e6f"); err != nil {
		t.Fatalf("unexpected error for uuid: %v", err)
	}
}

func TestValidateHandle(t *testing.T) {
	valid := []string{RawKey("doc-1"), TextKey("doc-1")}
	for _, h := range valid {
		if err := ValidateHandle(h); err != nil {
			t.Fatalf("ValidateHandle(%q): %v", h, err)
		}
	}
	invalid := []string{"", "doc-1", "raw/../etc/passwd", "text/doc-1", "other/doc-1", "raw/a/b"}
	for _, h := range invalid {
		if err := ValidateHandle(h); err == nil {
			t.Fatalf("ValidateHandle(%q) expected error", h)
		}
	}
}

func TestStorageErrorUnwraps(t *testing.T) {
	base := errors.New("disk full")
	err := error(&StorageError{Op: "put", Handle: "raw/x", Err: base})
	if !errors.Is(err, base) {
		t.Fatalf("expected StorageError to unwrap")
	}
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "put" {
		t.Fatalf("expected errors.As to match")
	}
}
