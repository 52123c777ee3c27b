package probe

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aws/smithy-go"
	openai "github.com/openai/openai-go/v3"
)

// classify maps an invocation error to a verdict and an indeterminate flag.
// Errors that mean "this model or endpoint does not implement the
// capability" classify Unsupported outright. Anything else (throttling,
// timeouts, auth or transport faults) is still Unsupported for matrix
// purposes but flagged indeterminate so it lands in the error log.
func classify(err error) (Verdict, bool) {
	if err == nil {
		return Supported, false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case strings.Contains(code, "Validation"):
			return Unsupported, false
		case code == "ResourceNotFoundException",
			code == "ResourceNotFound",
			code == "NotImplementedException",
			code == "UnsupportedOperationException":
			return Unsupported, false
		default:
			return Unsupported, true
		}
	}

	var oaiErr *openai.Error
	if errors.As(err, &oaiErr) {
		switch oaiErr.StatusCode {
		case http.StatusBadRequest, http.StatusNotFound,
			http.StatusMethodNotAllowed, http.StatusNotImplemented:
			return Unsupported, false
		default:
			return Unsupported, true
		}
	}

	// Timeouts, cancellations, and transport-level faults.
	return Unsupported, true
}

// isValidationErr reports whether an invocation failed request-shape
// validation, which gates the alternate-schema retry on the Invoke variant.
func isValidationErr(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.ErrorCode(), "Validation")
}
