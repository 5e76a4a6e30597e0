package bedrock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// Converser abstracts the Bedrock Converse call for testing.
// *bedrockruntime.Client satisfies it.
type Converser interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// ClientProvider hands out a Converser for a single request
type ClientProvider interface {
	// Client resolves credentials and region and returns a ready client.
	// Implementations may build a fresh client per call or share one.
	Client(ctx context.Context) (Converser, error)
}

var _ Converser = (*bedrockruntime.Client)(nil)
