package errors

import (
	"fmt"
)

// UnknownDocument creates an error for an operation referencing an
// unregistered document.
func UnknownDocument(id string) *ForgeError {
	return New(ErrCodeUnknownDocument, fmt.Sprintf("document '%s' is not registered", id)).
		WithDetail("document", id)
}

// PathConflict creates an error for a path that implies a container type
// incompatible with the existing data at that location.
func PathConflict(path string, wanted string, found string) *ForgeError {
	return New(ErrCodePathConflict,
		fmt.Sprintf("path '%s' expects %s but found %s", path, wanted, found)).
		WithDetail("path", path).
		WithDetail("wanted", wanted).
		WithDetail("found", found)
}

// ParseFailed creates an error for a document that could not be decoded
func ParseFailed(id string, err error) *ForgeError {
	return Wrap(err, ErrCodeDocumentParse, fmt.Sprintf("failed to parse document '%s'", id)).
		WithDetail("document", id)
}

// ReadFailed creates an error for a failed document read
func ReadFailed(id string, err error) *ForgeError {
	return Wrap(err, ErrCodeIO, fmt.Sprintf("failed to read document '%s'", id)).
		WithDetail("document", id)
}

// WriteFailed creates an error for a failed document write
func WriteFailed(id string, err error) *ForgeError {
	return Wrap(err, ErrCodeIO, fmt.Sprintf("failed to write document '%s'", id)).
		WithDetail("document", id)
}

// EffectFailed creates an error for a command side-effect hook that failed
func EffectFailed(stage string, err error) *ForgeError {
	return Wrap(err, ErrCodeEffectFailure, fmt.Sprintf("%s effect failed", stage)).
		WithDetail("stage", stage)
}

// ObserverFailed creates an error for an observer that failed during fan-out
func ObserverFailed(id string, err error) *ForgeError {
	return Wrap(err, ErrCodeObserverFailure, fmt.Sprintf("observer failed for document '%s'", id)).
		WithDetail("document", id)
}

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *ForgeError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *ForgeError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// InvalidInput creates an error for malformed caller input
func InvalidInput(reason string) *ForgeError {
	return New(ErrCodeInvalidInput, reason)
}
