package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinels_AreDistinct(t *testing.T) {
	all := []error{
		ErrorNotFound, ErrStorageUnavailable, ErrStorageConflict, ErrStorageIO,
		ErrNetwork, ErrValidation, ErrUserExists, ErrInvalidSession,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Fatalf("%v must not match %v", a, b)
			}
		}
	}
}

func TestSentinels_SurviveWrapping(t *testing.T) {
	err := fmt.Errorf("open sqlite: %w", ErrStorageConflict)
	if !errors.Is(err, ErrStorageConflict) {
		t.Fatalf("wrapped conflict lost: %v", err)
	}
	if errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("conflict must not read as unavailable")
	}
}
