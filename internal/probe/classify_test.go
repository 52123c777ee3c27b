package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	openai "github.com/openai/openai-go/v3"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		want          Verdict
		indeterminate bool
	}{
		{"clean success", nil, Supported, false},
		{"validation error", &smithy.GenericAPIError{Code: "ValidationException"}, Unsupported, false},
		{"resource not found", &smithy.GenericAPIError{Code: "ResourceNotFoundException"}, Unsupported, false},
		{"not implemented", &smithy.GenericAPIError{Code: "NotImplementedException"}, Unsupported, false},
		{"throttling", &smithy.GenericAPIError{Code: "ThrottlingException"}, Unsupported, true},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDeniedException"}, Unsupported, true},
		{"service unavailable", &smithy.GenericAPIError{Code: "ServiceUnavailableException"}, Unsupported, true},
		{"deadline exceeded", context.DeadlineExceeded, Unsupported, true},
		{"openai 404", &openai.Error{StatusCode: 404}, Unsupported, false},
		{"openai 400", &openai.Error{StatusCode: 400}, Unsupported, false},
		{"openai 501", &openai.Error{StatusCode: 501}, Unsupported, false},
		{"openai 429", &openai.Error{StatusCode: 429}, Unsupported, true},
		{"openai 500", &openai.Error{StatusCode: 500}, Unsupported, true},
		{"plain transport fault", errors.New("connection reset"), Unsupported, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, indeterminate := classify(tt.err)
			if verdict != tt.want || indeterminate != tt.indeterminate {
				t.Errorf("classify(%v) = (%v, %v), want (%v, %v)",
					tt.err, verdict, indeterminate, tt.want, tt.indeterminate)
			}
		})
	}
}

func TestClassifyUnwrapsWrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("operation error"), &smithy.GenericAPIError{Code: "ValidationException"})
	verdict, indeterminate := classify(wrapped)
	if verdict != Unsupported || indeterminate {
		t.Errorf("classify(wrapped validation) = (%v, %v), want (Unsupported, false)", verdict, indeterminate)
	}
}

func TestIsValidationErr(t *testing.T) {
	if !isValidationErr(&smithy.GenericAPIError{Code: "ValidationException"}) {
		t.Error("expected validation error to be detected")
	}
	if isValidationErr(&smithy.GenericAPIError{Code: "ThrottlingException"}) {
		t.Error("throttling is not a validation error")
	}
	if isValidationErr(errors.New("plain")) {
		t.Error("plain errors are not validation errors")
	}
}
