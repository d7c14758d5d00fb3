package cli

import (
	"fmt"
	"os"

	"github.com/modforge/core/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeUnknownDocument:
		if forgeErr, ok := err.(*errors.ForgeError); ok {
			fmt.Fprintf(os.Stderr, "❌ Document '%s' is not open\n", forgeErr.Details["document"])
		}
		return err

	case errors.ErrCodePathConflict:
		if forgeErr, ok := err.(*errors.ForgeError); ok {
			fmt.Fprintf(os.Stderr, "❌ Path '%s' expects %s but the document has %s there\n",
				forgeErr.Details["path"], forgeErr.Details["wanted"], forgeErr.Details["found"])
			fmt.Fprintf(os.Stderr, "Check the path against the file's structure.\n")
		}
		return err

	case errors.ErrCodeDocumentParse:
		if forgeErr, ok := err.(*errors.ForgeError); ok {
			fmt.Fprintf(os.Stderr, "❌ '%s' is not valid JSON\n", forgeErr.Details["document"])
		}
		return err

	case errors.ErrCodeIO:
		fmt.Fprintf(os.Stderr, "❌ File operation failed: %v\n", err)
		return err

	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ Configuration not found. Create a modforge.yml in your mod directory.\n")
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		// If verbose mode, show full error details
		if h.Verbose {
			if forgeErr, ok := err.(*errors.ForgeError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", forgeErr.ToJSON())
			}
		}
		return err
	}
}
