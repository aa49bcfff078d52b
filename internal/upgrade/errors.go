package upgrade

import (
	"errors"
	"fmt"

	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
)

// Exit codes for the check command.
const (
	ExitSuccess           = 0 // Success or already up-to-date
	ExitGenericError      = 1 // Generic error
	ExitNetworkError      = 2 // Endpoint unreachable or download failed
	ExitVerificationError = 3 // Checksum or signature mismatch
	ExitInstallError      = 4 // Installer could not be launched
	ExitAlreadyLatest     = 5 // Already on latest version (with --check-only)
	ExitParseError        = 6 // Malformed metadata or manifest
	ExitNotFound          = 7 // Manifest missing
)

// UpgradeError represents an update operation error.
type UpgradeError struct {
	Code    int
	Message string
	Cause   error
}

func (e *UpgradeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *UpgradeError) Unwrap() error {
	return e.Cause
}

// NewError creates a new UpgradeError.
func NewError(code int, message string, cause error) *UpgradeError {
	return &UpgradeError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func networkError(message string, cause error) *UpgradeError {
	return NewError(ExitNetworkError, message, igaerrors.Classify(igaerrors.ErrNetwork, cause))
}

func parseError(message string, cause error) *UpgradeError {
	return NewError(ExitParseError, message, igaerrors.Classify(igaerrors.ErrInvalid, cause))
}

func ioError(message string, cause error) *UpgradeError {
	return NewError(ExitGenericError, message, igaerrors.Classify(igaerrors.ErrIO, cause))
}

func verificationError(message string, cause error) *UpgradeError {
	return NewError(ExitVerificationError, message, igaerrors.Classify(igaerrors.ErrVerification, cause))
}

func installError(message string, cause error) *UpgradeError {
	return NewError(ExitInstallError, message, igaerrors.Classify(igaerrors.ErrInstall, cause))
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ue *UpgradeError
	if errors.As(err, &ue) {
		return ue.Code
	}
	switch {
	case igaerrors.IsNotFound(err):
		return ExitNotFound
	case igaerrors.IsInvalid(err):
		return ExitParseError
	case igaerrors.IsNetwork(err):
		return ExitNetworkError
	case igaerrors.IsVerification(err):
		return ExitVerificationError
	case igaerrors.IsInstall(err):
		return ExitInstallError
	}
	return ExitGenericError
}
