// Package apperror defines the error taxonomy shared by every layer of the
// application. Each kind is a sentinel error wrapped by an AppError, so
// callers classify failures with errors.Is while still getting a
// human-readable message.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that a referenced template, record or user is absent.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals a rejected input value.
	ErrValidation = errors.New("validation error")
	// ErrConflict signals an operation that would duplicate work already in
	// flight, such as re-triggering an export for the same certificate.
	ErrConflict = errors.New("conflict")
	// ErrInvariant signals an operation that would break a structural
	// invariant, such as deleting the last remaining template.
	ErrInvariant = errors.New("invariant violation")

	// Export pipeline failures, one per stage.
	ErrRenderTargetMissing = errors.New("render target missing")
	ErrRasterization       = errors.New("rasterization failed")
	ErrDocumentAssembly    = errors.New("document assembly failed")

	// ErrUnsupportedPlatform signals an unrecognized share platform key.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

type AppError struct {
	Err     error  // sentinel identifying the error kind
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already in progress for id %s", resource, id),
	}
}

func InvariantViolation(message string) *AppError {
	return &AppError{
		Err:     ErrInvariant,
		Message: message,
	}
}

// RenderTargetMissing reports that the visual surface for a certificate
// could not be located before rasterization started.
func RenderTargetMissing(message string) *AppError {
	return &AppError{
		Err:     ErrRenderTargetMissing,
		Message: message,
	}
}

// RasterizationFailed wraps a drawing error from the raster stage.
func RasterizationFailed(err error) *AppError {
	return &AppError{
		Err:     ErrRasterization,
		Message: fmt.Sprintf("rasterizing certificate: %v", err),
	}
}

// DocumentAssemblyFailed wraps an error from the page assembly stage.
func DocumentAssemblyFailed(err error) *AppError {
	return &AppError{
		Err:     ErrDocumentAssembly,
		Message: fmt.Sprintf("assembling document: %v", err),
	}
}

func UnsupportedPlatform(platform string) *AppError {
	return &AppError{
		Err:     ErrUnsupportedPlatform,
		Message: fmt.Sprintf("unsupported share platform %q", platform),
	}
}
