package handlers

import (
	"context"
	"io"
	"net/http"

	"bedrock-agent-api/internal/adapters/bedrock"
	"bedrock-agent-api/internal/middleware"
	"bedrock-agent-api/pkg/lambda"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AgentHandler relays prompts to Bedrock and returns the completion
type AgentHandler struct {
	provider bedrock.ClientProvider
	invoker  *bedrock.Invoker
	logger   *logrus.Logger
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(provider bedrock.ClientProvider, invoker *bedrock.Invoker, logger *logrus.Logger) *AgentHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &AgentHandler{
		provider: provider,
		invoker:  invoker,
		logger:   logger,
	}
}

// HandleConverse processes one request. Every failure becomes a JSON
// error response; the returned error is always nil.
func (h *AgentHandler) HandleConverse(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	log := h.logger.WithFields(logrus.Fields{
		"request_id": requestID(req),
		"method":     req.Method,
		"path":       req.Path,
	})
	log.WithField("body_size", len(req.Body)).Debug("Event received")

	if req.Method == http.MethodOptions {
		return preflightResponse(), nil
	}

	prompt, err := promptFromRequest(req)
	if err != nil {
		log.WithError(err).Warn("Invalid request body")
		return inputErrorResponse(err), nil
	}

	client, err := h.provider.Client(ctx)
	if err != nil {
		return h.inferenceFailure(log, err), nil
	}

	text, err := h.invoker.Invoke(ctx, client, prompt)
	if err != nil {
		return h.inferenceFailure(log, err), nil
	}

	log.WithFields(logrus.Fields{
		"model_id":        h.invoker.ModelID(),
		"prompt_length":   len(prompt),
		"response_length": len(text),
	}).Info("Converse completed")

	return successResponse(text), nil
}

func (h *AgentHandler) inferenceFailure(log *logrus.Entry, err error) *lambda.Response {
	kind, ok := bedrock.KindOf(err)
	if !ok {
		err = bedrock.NewSDKError(err.Error(), err)
		kind = bedrock.KindSDK
	}

	log.WithFields(logrus.Fields{
		"model_id":   h.invoker.ModelID(),
		"error_kind": kind.String(),
	}).WithError(err).Error("Bedrock error")

	return inferenceErrorResponse(err)
}

func promptFromRequest(req *lambda.Request) (string, error) {
	body, err := req.DecodedBody()
	if err != nil {
		return "", newInputError(err)
	}
	return ExtractPrompt(body)
}

func requestID(req *lambda.Request) string {
	if req.RequestID != "" {
		return req.RequestID
	}
	if id := req.Header("X-Request-ID"); id != "" {
		return id
	}
	return uuid.New().String()
}

// @Summary Send a prompt
// @Description Sends the prompt as a single user message to the configured Bedrock model and returns the first text block of the reply. A missing prompt defaults to "Hello!".
// @Tags agent
// @Accept json
// @Produce json
// @Param request body ConverseRequest true "Prompt"
// @Success 200 {object} ConverseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /converse [post]
func (h *AgentHandler) Converse(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.writeResponse(c, inputErrorResponse(newInputError(err)))
		return
	}

	headers := make(map[string]string, len(c.Request.Header))
	for key := range c.Request.Header {
		headers[key] = c.Request.Header.Get(key)
	}

	req := &lambda.Request{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		Headers:   headers,
		Body:      body,
		RequestID: c.GetString(middleware.RequestIDKey),
	}

	resp, _ := h.HandleConverse(c.Request.Context(), req)
	h.writeResponse(c, resp)
}

func (h *AgentHandler) writeResponse(c *gin.Context, resp *lambda.Response) {
	for key, value := range resp.Headers {
		if key == headerContentType {
			continue
		}
		c.Header(key, value)
	}

	if len(resp.Body) == 0 {
		c.Status(resp.StatusCode)
		return
	}
	c.Data(resp.StatusCode, resp.Headers[headerContentType], resp.Body)
}
