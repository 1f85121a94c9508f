// Package errors consolidates error definitions for the amrcarve pipeline.
//
// The taxonomy follows the partitioning contract:
//   - Domain errors: a mathematically invalid transform on field data
//     (log10 producing NaN). Deterministic, fatal for the grid, never retried.
//   - Format errors: a malformed or inconsistent persisted partition layout.
//     Fatal on import; no best-effort reconstruction is attempted.
//   - Validation errors: bad configuration or bad caller input, rejected
//     before any work starts.
//
// Threshold culls, zero-volume boxes, non-uniform coverage boxes and fully
// covered boxes are expected control flow, not errors, and never surface here.
package errors

import (
	"errors"
	"fmt"
)

// =============================================================================
// Sentinel errors
// =============================================================================

var (
	// Domain errors (invalid field transforms)
	ErrDomain        = errors.New("domain error")
	ErrFieldNaN      = errors.New("field contains NaN samples")
	ErrFieldNotFound = errors.New("field not found")

	// Format errors (persisted layout)
	ErrFormat         = errors.New("format error")
	ErrMissingColumn  = errors.New("missing column")
	ErrRowMismatch    = errors.New("row count mismatch across columns")
	ErrDataTruncated  = errors.New("data column shorter than dims imply")
	ErrBadDims        = errors.New("non-positive partition dims")
	ErrUnknownVersion = errors.New("unknown format version")

	// Validation errors
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidThreshold = errors.New("invalid threshold band")
	ErrInvalidDims      = errors.New("invalid grid dimensions")
	ErrMissingField     = errors.New("missing required field")
)

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// =============================================================================
// Category checks
// =============================================================================

// IsDomain returns true if err is a field-domain error.
func IsDomain(err error) bool {
	return errors.Is(err, ErrDomain) ||
		errors.Is(err, ErrFieldNaN) ||
		errors.Is(err, ErrFieldNotFound)
}

// IsFormat returns true if err indicates a malformed persisted layout.
func IsFormat(err error) bool {
	return errors.Is(err, ErrFormat) ||
		errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrRowMismatch) ||
		errors.Is(err, ErrDataTruncated) ||
		errors.Is(err, ErrBadDims) ||
		errors.Is(err, ErrUnknownVersion)
}

// IsValidation returns true if err is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrInvalidThreshold) ||
		errors.Is(err, ErrInvalidDims) ||
		errors.Is(err, ErrMissingField)
}

// =============================================================================
// Wrapping utilities
// =============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// =============================================================================
// Constructors with context
// =============================================================================

// NewFieldNaN reports how many samples of a field became NaN after a
// transform. The condition is a caller contract violation (e.g. log10 of a
// non-positive sample), so the count and field name are the useful context.
func NewFieldNaN(field string, count int) error {
	return fmt.Errorf("field %q: %d samples: %w", field, count, ErrFieldNaN)
}

// NewFieldNotFound reports a field absent from a grid.
func NewFieldNotFound(field string) error {
	return fmt.Errorf("field %q: %w", field, ErrFieldNotFound)
}

// NewFormat creates a format error with context.
func NewFormat(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrFormat)
}

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// =============================================================================
// Validation Errors Collection
// =============================================================================

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddField adds a field validation error.
func (v *ValidationErrors) AddField(field, reason string) {
	v.Errors = append(v.Errors, NewValidation(field, reason))
}

// AddMissing adds a missing field error.
func (v *ValidationErrors) AddMissing(field string) {
	v.Errors = append(v.Errors, NewMissingField(field))
}

// HasErrors returns true if there are any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Unwrap returns the first error for errors.Is/As support.
func (v *ValidationErrors) Unwrap() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v.Errors[0]
}
