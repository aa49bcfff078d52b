// Package errors provides the error taxonomy shared by the update checker.
//
// Sentinel errors classify a failure; wrapped types attach the context in
// which it happened. Callers test the class with the IsX helpers, which see
// through any amount of wrapping.
//
// # Error Types
//
// Base errors (sentinel errors):
//   - ErrNotFound - manifest or resource missing
//   - ErrInvalid - malformed manifest, metadata or version string
//   - ErrNetwork - endpoint unreachable or transfer failure
//   - ErrIO - local file I/O failure
//   - ErrVerification - checksum or signature mismatch
//   - ErrInstall - installer could not be started
//   - ErrCanceled - user canceled the operation
//
// Wrapped error types (add context):
//   - StageError{Stage, Err} - failure of one update stage
//   - ConfigError{Path, Err} - configuration errors
//
// # Usage
//
//	return &errors.StageError{Stage: errors.StageDownload, Err: err}
//
//	if errors.IsNetwork(err) {
//	    // retry later
//	}
package errors

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	// ErrNotFound indicates a resource was not found.
	ErrNotFound = baseError("not found")

	// ErrInvalid indicates malformed input (parse failure).
	ErrInvalid = baseError("invalid")

	// ErrNetwork indicates a remote endpoint could not be reached or a
	// transfer failed.
	ErrNetwork = baseError("network error")

	// ErrIO indicates a file I/O error.
	ErrIO = baseError("I/O error")

	// ErrVerification indicates an artifact failed integrity checks.
	ErrVerification = baseError("verification failed")

	// ErrInstall indicates the platform installer could not be invoked.
	ErrInstall = baseError("install failed")

	// ErrCanceled indicates the user canceled an operation.
	ErrCanceled = baseError("canceled")
)

// baseError is a string that implements error.
type baseError string

func (e baseError) Error() string { return string(e) }

// Stage names one step of an update cycle.
type Stage string

// Update cycle stages.
const (
	StageManifest Stage = "manifest"
	StageCheck    Stage = "check"
	StageCompare  Stage = "compare"
	StageConfirm  Stage = "confirm"
	StageDownload Stage = "download"
	StageInstall  Stage = "install"
)

// StageError represents a failure in one stage of an update cycle.
type StageError struct {
	// Stage is the step that failed.
	Stage Stage
	// Err is the underlying error.
	Err error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ConfigError represents an error related to configuration.
type ConfigError struct {
	// Path is the configuration file path (optional).
	Path string
	// Err is the underlying error.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %s", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Wrap adds context to an error by wrapping it with an operation name.
// The returned error implements Unwrap() allowing errors.Is and errors.As
// to work with the wrapped error.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{op: op, err: err}
}

// Classify wraps cause so that it matches the sentinel class as well as
// cause itself. A nil cause yields class alone.
func Classify(class error, cause error) error {
	if cause == nil {
		return class
	}
	return &classifiedError{class: class, cause: cause}
}

// wrappedError is an error with an operation context.
type wrappedError struct {
	op  string
	err error
}

func (e *wrappedError) Error() string { return fmt.Sprintf("%s: %s", e.op, e.err) }
func (e *wrappedError) Unwrap() error { return e.err }

type classifiedError struct {
	class error
	cause error
}

func (e *classifiedError) Error() string   { return fmt.Sprintf("%s: %s", e.class, e.cause) }
func (e *classifiedError) Unwrap() []error { return []error{e.class, e.cause} }

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalid reports whether err is or wraps ErrInvalid.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// IsNetwork reports whether err is or wraps ErrNetwork.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsIO reports whether err is or wraps ErrIO.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsVerification reports whether err is or wraps ErrVerification.
func IsVerification(err error) bool {
	return errors.Is(err, ErrVerification)
}

// IsInstall reports whether err is or wraps ErrInstall.
func IsInstall(err error) bool {
	return errors.Is(err, ErrInstall)
}

// IsCanceled reports whether err is or wraps ErrCanceled.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// AsStageError reports whether err can be typed as a *StageError.
func AsStageError(err error) (*StageError, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsConfigError reports whether err can be typed as a *ConfigError.
func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
