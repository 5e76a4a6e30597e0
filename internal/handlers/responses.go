package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"bedrock-agent-api/pkg/lambda"
)

const (
	headerContentType       = "content-type"
	headerAllowOrigin       = "access-control-allow-origin"
	headerAllowMethods      = "access-control-allow-methods"
	headerAllowHeaders      = "access-control-allow-headers"
	contentTypeJSON         = "application/json"
	inputErrorPrefix        = "Bedrock service error: "
	inferenceErrorPrefix    = "Error calling Bedrock: "
	fallbackErrorBody       = `{"error":"Internal server error"}`
	preflightAllowedMethods = "POST, OPTIONS"
	preflightAllowedHeaders = "Content-Type"
)

// ConverseResponse is the success body
type ConverseResponse struct {
	Response string `json:"response" example:"Why did the chicken cross the road?"`
}

// ErrorResponse is the failure body
type ErrorResponse struct {
	Error string `json:"error" example:"Error calling Bedrock: No response from Bedrock"`
}

// encodeJSON encodes v without HTML escaping and without a trailing newline
func encodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func successResponse(text string) *lambda.Response {
	body, err := encodeJSON(ConverseResponse{Response: text})
	if err != nil {
		return fallbackResponse()
	}

	return &lambda.Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			headerContentType: contentTypeJSON,
			headerAllowOrigin: "*",
		},
		Body: body,
	}
}

func errorResponse(status int, message string) *lambda.Response {
	body, err := encodeJSON(ErrorResponse{Error: message})
	if err != nil {
		return fallbackResponse()
	}

	return &lambda.Response{
		StatusCode: status,
		Headers:    map[string]string{headerContentType: contentTypeJSON},
		Body:       body,
	}
}

// inputErrorResponse keeps the message prefix existing clients match on
func inputErrorResponse(err error) *lambda.Response {
	return errorResponse(http.StatusBadRequest, inputErrorPrefix+err.Error())
}

func inferenceErrorResponse(err error) *lambda.Response {
	return errorResponse(http.StatusInternalServerError, inferenceErrorPrefix+err.Error())
}

func preflightResponse() *lambda.Response {
	return &lambda.Response{
		StatusCode: http.StatusNoContent,
		Headers: map[string]string{
			headerAllowOrigin:  "*",
			headerAllowMethods: preflightAllowedMethods,
			headerAllowHeaders: preflightAllowedHeaders,
		},
	}
}

func fallbackResponse() *lambda.Response {
	return &lambda.Response{
		StatusCode: http.StatusInternalServerError,
		Headers:    map[string]string{headerContentType: contentTypeJSON},
		Body:       []byte(fallbackErrorBody),
	}
}
