package handlers

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"
)

// DefaultPrompt is sent when the request carries no prompt
const DefaultPrompt = "Hello!"

// ConverseRequest is the accepted request body
type ConverseRequest struct {
	Prompt *string `json:"prompt" example:"Tell me a joke"`
}

// InputError reports a request body that could not be turned into a prompt
type InputError struct {
	Message string
	Err     error
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func newInputError(err error) *InputError {
	return &InputError{Message: err.Error(), Err: err}
}

// ExtractPrompt parses a request body and returns its prompt.
// A missing or null prompt yields DefaultPrompt; any other string,
// including the empty string, is returned unchanged.
func ExtractPrompt(body []byte) (string, error) {
	if len(body) == 0 {
		return "", &InputError{Message: "Request body is empty"}
	}

	if !utf8.Valid(body) {
		return "", &InputError{Message: "Request body is not valid UTF-8"}
	}

	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return "", &InputError{Message: "Request body must be a JSON object"}
	}

	// encoding/json folds field names; only the exact "prompt" key counts
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", newInputError(err)
	}

	var req ConverseRequest
	if raw, ok := fields["prompt"]; ok {
		if err := json.Unmarshal(raw, &req.Prompt); err != nil {
			return "", newInputError(err)
		}
	}

	if req.Prompt == nil {
		return DefaultPrompt, nil
	}
	return *req.Prompt, nil
}
