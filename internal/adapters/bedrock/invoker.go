package bedrock

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/sirupsen/logrus"
)

// Invoker sends single-turn prompts to a fixed Bedrock model
type Invoker struct {
	modelID string
	logger  *logrus.Logger
}

// NewInvoker creates a new Invoker for modelID
func NewInvoker(modelID string, logger *logrus.Logger) *Invoker {
	if logger == nil {
		logger = logrus.New()
	}
	return &Invoker{
		modelID: modelID,
		logger:  logger,
	}
}

// ModelID returns the model every request is sent to
func (i *Invoker) ModelID() string {
	return i.modelID
}

// Invoke sends prompt as one user message and returns the completion text.
// Nothing is retried; every failure is returned as an *Error.
func (i *Invoker) Invoke(ctx context.Context, client Converser, prompt string) (string, error) {
	message, err := BuildMessage(prompt)
	if err != nil {
		return "", err
	}

	if i.modelID == "" {
		return "", NewBuildError("model ID is required", nil)
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(i.modelID),
		Messages: []types.Message{message},
	}

	start := time.Now()
	output, err := client.Converse(ctx, input)
	latency := time.Since(start)
	if err != nil {
		return "", classifyConverseError(err)
	}

	text, err := ExtractText(output)
	if err != nil {
		return "", err
	}

	fields := logrus.Fields{
		"model_id":        i.modelID,
		"latency_ms":      float64(latency.Nanoseconds()) / 1000000,
		"stop_reason":     string(output.StopReason),
		"response_length": len(text),
	}
	if output.Usage != nil {
		fields["input_tokens"] = aws.ToInt32(output.Usage.InputTokens)
		fields["output_tokens"] = aws.ToInt32(output.Usage.OutputTokens)
	}
	i.logger.WithFields(fields).Debug("Bedrock converse completed")

	return text, nil
}

// BuildMessage constructs a user message holding a single text block
func BuildMessage(prompt string) (types.Message, error) {
	if !utf8.ValidString(prompt) {
		return types.Message{}, NewBuildError("prompt is not valid UTF-8", nil)
	}

	return types.Message{
		Role: types.ConversationRoleUser,
		Content: []types.ContentBlock{
			&types.ContentBlockMemberText{Value: prompt},
		},
	}, nil
}

// ExtractText returns the first text block of the reply message.
// Later blocks, including further text, are ignored.
func ExtractText(output *bedrockruntime.ConverseOutput) (string, error) {
	if output == nil || output.Output == nil {
		return "", ErrNoResponse
	}

	message, ok := output.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", ErrNoResponse
	}

	for _, block := range message.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			return text.Value, nil
		}
	}

	return "", ErrNoResponse
}
