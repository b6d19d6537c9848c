package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{ErrCorruptStore, ErrUnknownWord, ErrEmptyWord}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestSentinelErrors_SurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("set learned: %w", fmt.Errorf("%w: %q", ErrUnknownWord, "ghost"))
	if !errors.Is(wrapped, ErrUnknownWord) {
		t.Errorf("errors.Is(%v, ErrUnknownWord) = false", wrapped)
	}
	if got, want := wrapped.Error(), `set learned: unknown word: "ghost"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
