package bedrock

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// MockConverser is an in-memory Converser for testing.
// It returns Output and Err as configured and records every input.
type MockConverser struct {
	mu     sync.Mutex
	inputs []*bedrockruntime.ConverseInput

	Output *bedrockruntime.ConverseOutput
	Err    error
}

// NewMockConverser creates a MockConverser that answers with text
func NewMockConverser(text string) *MockConverser {
	return &MockConverser{Output: TextOutput(text)}
}

// Converse implements Converser.Converse
func (m *MockConverser) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inputs = append(m.inputs, params)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Output, nil
}

// Calls returns how many times Converse was called
func (m *MockConverser) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// LastInput returns the most recent Converse input, or nil
func (m *MockConverser) LastInput() *bedrockruntime.ConverseInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputs) == 0 {
		return nil
	}
	return m.inputs[len(m.inputs)-1]
}

// TextOutput builds a reply holding a single text block
func TextOutput(text string) *bedrockruntime.ConverseOutput {
	return MessageOutput(&types.ContentBlockMemberText{Value: text})
}

// MessageOutput builds an assistant reply from content blocks
func MessageOutput(blocks ...types.ContentBlock) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{
				Role:    types.ConversationRoleAssistant,
				Content: blocks,
			},
		},
		StopReason: types.StopReasonEndTurn,
	}
}
