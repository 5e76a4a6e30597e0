package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"bedrock-agent-api/internal/adapters/bedrock"
	"bedrock-agent-api/internal/middleware"
	"bedrock-agent-api/pkg/lambda"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const testModelID = "test.model-v1:0"

// failingProvider fails every client lookup
type failingProvider struct {
	err error
}

func (p *failingProvider) Client(ctx context.Context) (bedrock.Converser, error) {
	return nil, p.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel) // Reduce noise in tests
	return logger
}

func newTestHandler(client bedrock.Converser) *AgentHandler {
	logger := quietLogger()
	return NewAgentHandler(bedrock.NewStaticProvider(client), bedrock.NewInvoker(testModelID, logger), logger)
}

func postRequest(body string) *lambda.Request {
	return &lambda.Request{
		Method:  http.MethodPost,
		Path:    "/converse",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    []byte(body),
	}
}

func decodeBody(t *testing.T, resp *lambda.Response) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		t.Fatalf("Response body is not JSON: %q: %v", string(resp.Body), err)
	}
	return body
}

func assertErrorHeaders(t *testing.T, resp *lambda.Response) {
	t.Helper()
	want := map[string]string{"content-type": "application/json"}
	if !reflect.DeepEqual(resp.Headers, want) {
		t.Errorf("Headers = %v, want %v", resp.Headers, want)
	}
}

func TestAgentHandler_HandleConverse(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		client := bedrock.NewMockConverser("Why did the gopher cross the road?")
		handler := newTestHandler(client)

		resp, err := handler.HandleConverse(ctx, postRequest(`{"prompt":"Tell me a joke"}`))
		if err != nil {
			t.Fatalf("HandleConverse returned error: %v", err)
		}

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		wantHeaders := map[string]string{
			"content-type":                "application/json",
			"access-control-allow-origin": "*",
		}
		if !reflect.DeepEqual(resp.Headers, wantHeaders) {
			t.Errorf("Headers = %v, want %v", resp.Headers, wantHeaders)
		}
		body := decodeBody(t, resp)
		if body["response"] != "Why did the gopher cross the road?" {
			t.Errorf("Unexpected body: %v", body)
		}
		if _, ok := body["error"]; ok {
			t.Error("Success body must not carry an error field")
		}

		block := client.LastInput().Messages[0].Content[0].(*types.ContentBlockMemberText)
		if block.Value != "Tell me a joke" {
			t.Errorf("Prompt sent = %q", block.Value)
		}
	})

	t.Run("DefaultPrompt", func(t *testing.T) {
		client := bedrock.NewMockConverser("Hi!")
		handler := newTestHandler(client)

		resp, _ := handler.HandleConverse(ctx, postRequest(`{}`))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}

		block := client.LastInput().Messages[0].Content[0].(*types.ContentBlockMemberText)
		if block.Value != DefaultPrompt {
			t.Errorf("Prompt sent = %q, want %q", block.Value, DefaultPrompt)
		}
	})

	t.Run("EmptyBody", func(t *testing.T) {
		client := bedrock.NewMockConverser("unused")
		handler := newTestHandler(client)

		resp, _ := handler.HandleConverse(ctx, postRequest(""))
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", resp.StatusCode)
		}
		assertErrorHeaders(t, resp)
		if got := decodeBody(t, resp)["error"]; got != "Bedrock service error: Request body is empty" {
			t.Errorf("error = %q", got)
		}
		if client.Calls() != 0 {
			t.Errorf("Expected no inference call, got %d", client.Calls())
		}
	})

	t.Run("MalformedJSONSkipsInference", func(t *testing.T) {
		for _, body := range []string{`not json`, `{"prompt":`, `{"prompt":1}`, `[]`} {
			client := bedrock.NewMockConverser("unused")
			handler := newTestHandler(client)

			resp, _ := handler.HandleConverse(ctx, postRequest(body))
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("body %q: expected 400, got %d", body, resp.StatusCode)
			}
			assertErrorHeaders(t, resp)
			if !strings.HasPrefix(decodeBody(t, resp)["error"], "Bedrock service error: ") {
				t.Errorf("body %q: unexpected error text %q", body, string(resp.Body))
			}
			if client.Calls() != 0 {
				t.Errorf("body %q: expected no inference call, got %d", body, client.Calls())
			}
		}
	})

	t.Run("Base64Body", func(t *testing.T) {
		client := bedrock.NewMockConverser("decoded")
		handler := newTestHandler(client)

		req := postRequest(base64.StdEncoding.EncodeToString([]byte(`{"prompt":"encoded"}`)))
		req.IsBase64Encoded = true

		resp, _ := handler.HandleConverse(ctx, req)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, string(resp.Body))
		}
		block := client.LastInput().Messages[0].Content[0].(*types.ContentBlockMemberText)
		if block.Value != "encoded" {
			t.Errorf("Prompt sent = %q, want encoded", block.Value)
		}
	})

	t.Run("InvalidBase64Body", func(t *testing.T) {
		client := bedrock.NewMockConverser("unused")
		handler := newTestHandler(client)

		req := postRequest("%%%")
		req.IsBase64Encoded = true

		resp, _ := handler.HandleConverse(ctx, req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", resp.StatusCode)
		}
		if client.Calls() != 0 {
			t.Errorf("Expected no inference call, got %d", client.Calls())
		}
	})

	t.Run("NoResponse", func(t *testing.T) {
		for name, client := range map[string]*bedrock.MockConverser{
			"no output":      {Output: &bedrockruntime.ConverseOutput{}},
			"empty message":  {Output: bedrock.MessageOutput()},
			"only tool call": {Output: bedrock.MessageOutput(&types.ContentBlockMemberToolUse{Value: types.ToolUseBlock{Name: aws.String("lookup")}})},
		} {
			resp, _ := newTestHandler(client).HandleConverse(ctx, postRequest(`{"prompt":"hi"}`))
			if resp.StatusCode != http.StatusInternalServerError {
				t.Errorf("%s: expected 500, got %d", name, resp.StatusCode)
			}
			assertErrorHeaders(t, resp)
			if got := decodeBody(t, resp)["error"]; got != "Error calling Bedrock: No response from Bedrock" {
				t.Errorf("%s: error = %q", name, got)
			}
		}
	})

	t.Run("FirstTextBlockWins", func(t *testing.T) {
		client := &bedrock.MockConverser{Output: bedrock.MessageOutput(
			&types.ContentBlockMemberToolUse{Value: types.ToolUseBlock{Name: aws.String("lookup")}},
			&types.ContentBlockMemberText{Value: "ok"},
		)}

		resp, _ := newTestHandler(client).HandleConverse(ctx, postRequest(`{"prompt":"hi"}`))
		if got := decodeBody(t, resp)["response"]; got != "ok" {
			t.Errorf("response = %q, want ok", got)
		}
	})

	t.Run("ServiceError", func(t *testing.T) {
		client := &bedrock.MockConverser{Err: &smithy.OperationError{
			ServiceID:     "Bedrock Runtime",
			OperationName: "Converse",
			Err:           &types.AccessDeniedException{Message: aws.String("You don't have access to the model")},
		}}

		resp, _ := newTestHandler(client).HandleConverse(ctx, postRequest(`{"prompt":"hi"}`))
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("Expected 500, got %d", resp.StatusCode)
		}
		assertErrorHeaders(t, resp)
		want := "Error calling Bedrock: Bedrock service error: AccessDeniedException: You don't have access to the model"
		if got := decodeBody(t, resp)["error"]; got != want {
			t.Errorf("error = %q, want %q", got, want)
		}
	})

	t.Run("ClientResolutionFailure", func(t *testing.T) {
		logger := quietLogger()
		handler := NewAgentHandler(
			&failingProvider{err: errors.New("no credentials")},
			bedrock.NewInvoker(testModelID, logger),
			logger,
		)

		resp, _ := handler.HandleConverse(ctx, postRequest(`{"prompt":"hi"}`))
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("Expected 500, got %d", resp.StatusCode)
		}
		if got := decodeBody(t, resp)["error"]; got != "Error calling Bedrock: Bedrock SDK error: no credentials" {
			t.Errorf("error = %q", got)
		}
	})

	t.Run("MessagesAreJSONEscaped", func(t *testing.T) {
		client := bedrock.NewMockConverser("He said \"hi\"\n<b>&</b>")

		resp, _ := newTestHandler(client).HandleConverse(ctx, postRequest(`{"prompt":"quote"}`))
		if got := decodeBody(t, resp)["response"]; got != "He said \"hi\"\n<b>&</b>" {
			t.Errorf("response = %q", got)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		handler := newTestHandler(bedrock.NewMockConverser("same"))

		first, _ := handler.HandleConverse(ctx, postRequest(`{"prompt":"hi"}`))
		second, _ := handler.HandleConverse(ctx, postRequest(`{"prompt":"hi"}`))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Responses differ: %+v vs %+v", first, second)
		}
	})

	t.Run("Preflight", func(t *testing.T) {
		client := bedrock.NewMockConverser("unused")
		req := postRequest("")
		req.Method = http.MethodOptions

		resp, _ := newTestHandler(client).HandleConverse(ctx, req)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d", resp.StatusCode)
		}
		if resp.Headers["access-control-allow-origin"] != "*" {
			t.Errorf("Missing allow-origin header: %v", resp.Headers)
		}
		if client.Calls() != 0 {
			t.Errorf("Expected no inference call, got %d", client.Calls())
		}
	})
}

func newTestRouter(client bedrock.Converser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	SetupRoutes(router, &RouterConfig{
		AgentHandler:   newTestHandler(client),
		ModelID:        testModelID,
		DeploymentMode: "server",
	})
	return router
}

func TestAgentHandler_Converse(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router := newTestRouter(bedrock.NewMockConverser("hello from gin"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/converse", bytes.NewBufferString(`{"prompt":"hi"}`))
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if got := w.Header().Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
		if w.Body.String() != `{"response":"hello from gin"}` {
			t.Errorf("Unexpected body: %s", w.Body.String())
		}
	})

	t.Run("VersionedPathAndBadRequest", func(t *testing.T) {
		client := bedrock.NewMockConverser("unused")
		router := newTestRouter(client)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/converse", bytes.NewBufferString("")))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Error responses must not carry allow-origin, got %q", got)
		}
		if w.Body.String() != `{"error":"Bedrock service error: Request body is empty"}` {
			t.Errorf("Unexpected body: %s", w.Body.String())
		}
		if client.Calls() != 0 {
			t.Errorf("Expected no inference call, got %d", client.Calls())
		}
	})

	t.Run("Preflight", func(t *testing.T) {
		router := newTestRouter(bedrock.NewMockConverser("unused"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/converse", nil))

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Methods"); got != "POST, OPTIONS" {
			t.Errorf("Access-Control-Allow-Methods = %q", got)
		}
	})

	t.Run("Health", func(t *testing.T) {
		router := newTestRouter(bedrock.NewMockConverser("unused"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Health body is not JSON: %v", err)
		}
		if body["model_id"] != testModelID || body["status"] != "healthy" {
			t.Errorf("Unexpected health body: %v", body)
		}
	})
}
