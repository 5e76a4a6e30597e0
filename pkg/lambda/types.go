package lambda

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Request represents a generic HTTP request for serverless functions
type Request struct {
	Method          string            `json:"method"`
	Path            string            `json:"path"`
	Headers         map[string]string `json:"headers"`
	Body            []byte            `json:"body"`
	IsBase64Encoded bool              `json:"is_base64_encoded"`
	RequestID       string            `json:"request_id"`
}

// Header returns the value of a header, matching the name case-insensitively
func (r *Request) Header(name string) string {
	if value, ok := r.Headers[name]; ok {
		return value
	}
	for key, value := range r.Headers {
		if strings.EqualFold(key, name) {
			return value
		}
	}
	return ""
}

// DecodedBody returns the body bytes, decoding base64 when the transport encoded them
func (r *Request) DecodedBody() ([]byte, error) {
	if !r.IsBase64Encoded {
		return r.Body, nil
	}

	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(r.Body)))
	n, err := base64.StdEncoding.Decode(decoded, r.Body)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 body: %w", err)
	}
	return decoded[:n], nil
}

// Response represents a generic HTTP response for serverless functions
type Response struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       []byte            `json:"body"`
}
