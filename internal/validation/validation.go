// Package validation provides input validation helpers for configuration
// and partitioning parameters. Checks accumulate into a single error so a
// bad config reports every problem at once instead of one per run.
package validation

import (
	apperrors "github.com/xtxerr/amrcarve/internal/errors"
)

// Validator accumulates validation failures.
type Validator struct {
	errs *apperrors.ValidationErrors
}

// New creates an empty validator.
func New() *Validator {
	return &Validator{errs: apperrors.NewValidationErrors()}
}

// Fail records a failure for a named field.
func (v *Validator) Fail(field, reason string) {
	v.errs.AddField(field, reason)
}

// RequireField records a failure when a string value is empty.
func (v *Validator) RequireField(field, value string) {
	if value == "" {
		v.errs.AddMissing(field)
	}
}

// RequirePositive records a failure when n is not strictly positive.
func (v *Validator) RequirePositive(field string, n int) {
	if n <= 0 {
		v.errs.AddField(field, "must be > 0")
	}
}

// RequireBand records a failure when low > high.
func (v *Validator) RequireBand(field string, low, high float64) {
	if low > high {
		v.errs.AddField(field, "low must be <= high")
	}
}

// Err returns nil when every check passed.
func (v *Validator) Err() error {
	return v.errs.Err()
}

// Dims checks a 3-vector of cell counts.
func Dims(dims [3]int) error {
	for _, d := range dims {
		if d <= 0 {
			return apperrors.Wrapf(apperrors.ErrInvalidDims, "%v", dims)
		}
	}
	return nil
}

// Threshold checks a cull band.
func Threshold(low, high float64) error {
	if low > high {
		return apperrors.Wrapf(apperrors.ErrInvalidThreshold, "[%g, %g]", low, high)
	}
	return nil
}
