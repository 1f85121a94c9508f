package validation

import (
	"testing"

	apperrors "github.com/xtxerr/amrcarve/internal/errors"
)

func TestValidatorAccumulates(t *testing.T) {
	v := New()
	v.RequireField("field", "")
	v.RequirePositive("workers", 0)
	v.RequireBand("threshold", 10, 1)

	err := v.Err()
	if err == nil {
		t.Fatal("expected accumulated errors")
	}

	var verrs *apperrors.ValidationErrors
	if !apperrors.As(err, &verrs) {
		t.Fatalf("got %T, want *ValidationErrors", err)
	}
	if len(verrs.Errors) != 3 {
		t.Fatalf("got %d errors, want 3", len(verrs.Errors))
	}
}

func TestValidatorClean(t *testing.T) {
	v := New()
	v.RequireField("field", "Density")
	v.RequirePositive("workers", 4)
	v.RequireBand("threshold", 1, 10)

	if err := v.Err(); err != nil {
		t.Fatalf("clean validator returned %v", err)
	}
}

func TestDims(t *testing.T) {
	if err := Dims([3]int{4, 4, 4}); err != nil {
		t.Fatalf("valid dims rejected: %v", err)
	}
	if err := Dims([3]int{4, 0, 4}); !apperrors.Is(err, apperrors.ErrInvalidDims) {
		t.Fatalf("got %v, want ErrInvalidDims", err)
	}
}

func TestThreshold(t *testing.T) {
	if err := Threshold(1, 10); err != nil {
		t.Fatalf("valid band rejected: %v", err)
	}
	if err := Threshold(1, 1); err != nil {
		t.Fatalf("degenerate band is legal: %v", err)
	}
	if err := Threshold(10, 1); !apperrors.Is(err, apperrors.ErrInvalidThreshold) {
		t.Fatalf("got %v, want ErrInvalidThreshold", err)
	}
}
