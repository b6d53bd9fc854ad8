package domain

import "fmt"

// ValidationError reports a malformed request: unknown identifier, missing
// required field, unit mismatch, or an inverted date range. It is always
// raised before any store access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// PermissionError reports that the store is unavailable or that a required
// permission token has not been granted.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return "permission: " + e.Reason
}

// Permissionf builds a PermissionError from a format string.
func Permissionf(format string, args ...any) error {
	return &PermissionError{Reason: fmt.Sprintf(format, args...)}
}

// PlatformError wraps a failed store operation. It is propagated verbatim
// with no retry.
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform: %s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// Platformf wraps err with the failing operation name.
func Platformf(op string, err error) error {
	return &PlatformError{Op: op, Err: err}
}
