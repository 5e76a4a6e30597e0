package bedrock

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ErrorKind identifies where an inference failure originated
type ErrorKind int

const (
	// KindService is a structured rejection from the Bedrock service
	KindService ErrorKind = iota
	// KindSDK is a transport or protocol failure talking to Bedrock
	KindSDK
	// KindBuild means the request could not be constructed before sending
	KindBuild
	// KindNoResponse means Bedrock replied without any usable text
	KindNoResponse
)

// String returns the log name of the kind
func (k ErrorKind) String() string {
	switch k {
	case KindService:
		return "service_error"
	case KindSDK:
		return "sdk_error"
	case KindBuild:
		return "build_error"
	case KindNoResponse:
		return "no_response"
	default:
		return "unknown"
	}
}

// Error represents an inference failure tagged with its origin
type Error struct {
	Kind    ErrorKind
	Message string // Diagnostic text; empty for KindNoResponse
	Err     error  // Underlying error, if any
}

// ErrNoResponse is returned when the reply holds no text content
var ErrNoResponse = &Error{Kind: KindNoResponse}

func (e *Error) Error() string {
	switch e.Kind {
	case KindService:
		return fmt.Sprintf("Bedrock service error: %s", e.Message)
	case KindSDK:
		return fmt.Sprintf("Bedrock SDK error: %s", e.Message)
	case KindBuild:
		return fmt.Sprintf("Build error: %s", e.Message)
	case KindNoResponse:
		return "No response from Bedrock"
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewServiceError creates an error for a rejection reported by the service
func NewServiceError(message string, err error) *Error {
	return &Error{Kind: KindService, Message: message, Err: err}
}

// NewSDKError creates an error for a transport-level failure
func NewSDKError(message string, err error) *Error {
	return &Error{Kind: KindSDK, Message: message, Err: err}
}

// NewBuildError creates an error for a request that could not be constructed
func NewBuildError(message string, err error) *Error {
	return &Error{Kind: KindBuild, Message: message, Err: err}
}

// KindOf returns the kind of an inference error and whether err is one
func KindOf(err error) (ErrorKind, bool) {
	var bedrockErr *Error
	if errors.As(err, &bedrockErr) {
		return bedrockErr.Kind, true
	}
	return 0, false
}

// classifyConverseError maps an error returned by Converse onto the taxonomy.
// Parameter validation runs client-side before the request is sent, so it
// counts as a build failure.
func classifyConverseError(err error) *Error {
	var bedrockErr *Error
	if errors.As(err, &bedrockErr) {
		return bedrockErr
	}

	var invalidParams smithy.InvalidParamsError
	if errors.As(err, &invalidParams) {
		return NewBuildError(invalidParams.Error(), err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return NewServiceError(fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage()), err)
	}

	return NewSDKError(err.Error(), err)
}
