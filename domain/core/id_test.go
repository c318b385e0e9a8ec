package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestParseBatchID(t *testing.T) {
	id := NewID()
	parsed, err := ParseBatchID(id.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.String() != id.String() {
		t.Errorf("expected %s, got %s", id, parsed)
	}

	if _, err := ParseBatchID("   "); err == nil {
		t.Error("expected error for blank batch ID")
	}
	if _, err := ParseBatchID("not-a-uuid"); err == nil {
		t.Error("expected error for malformed batch ID")
	}
}

func TestParameterErrorsWrapSentinel(t *testing.T) {
	errs := []error{
		NewParameterError("X", 0, ">= 1 and <= 20"),
		NewListTooLongError(100006, 65536),
		NewIndicesError(3, "not sorted"),
		NewTableTooSmallError(15, 15, 6, 16),
		ErrEmptyList,
	}
	for _, err := range errs {
		if !IsParameterError(err) {
			t.Errorf("expected %q to be a parameter error", err)
		}
	}
	if !errors.Is(NewTableTooSmallError(1, 1, 2, 2), ErrTableTooSmall) {
		t.Error("expected table error to wrap ErrTableTooSmall")
	}
	if IsParameterError(ErrInsufficientPrecision) {
		t.Error("precision errors are not parameter errors")
	}
}

func TestHashShort(t *testing.T) {
	h := NewHash([]byte("xlmhg"))
	if len(h.String()) != 64 {
		t.Fatalf("expected 64 hex digits, got %d", len(h.String()))
	}
	if h.Short(8) != h.String()[:8] {
		t.Errorf("unexpected short hash %s", h.Short(8))
	}
	if !h.Equals(NewHash([]byte("xlmhg"))) {
		t.Error("hash is not deterministic")
	}
}
