package bedrock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/sirupsen/logrus"
)

// ConfigLoader resolves AWS configuration; awsconfig.LoadDefaultConfig matches it
type ConfigLoader func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error)

// ProviderConfig configures client construction
type ProviderConfig struct {
	Region      string
	ReuseClient bool
	Logger      *logrus.Logger

	// Loader overrides AWS configuration resolution; nil uses the default chain
	Loader ConfigLoader
}

// NewClientProvider creates a ClientProvider based on the provided configuration
func NewClientProvider(cfg *ProviderConfig) ClientProvider {
	if cfg == nil {
		cfg = &ProviderConfig{}
	}

	perRequest := &PerRequestProvider{
		region: cfg.Region,
		loader: cfg.Loader,
		logger: cfg.Logger,
	}
	if perRequest.loader == nil {
		perRequest.loader = awsconfig.LoadDefaultConfig
	}
	if perRequest.logger == nil {
		perRequest.logger = logrus.New()
	}

	if cfg.ReuseClient {
		return NewSharedProvider(perRequest)
	}
	return perRequest
}

// PerRequestProvider resolves AWS configuration and builds a new client on every call
type PerRequestProvider struct {
	region string
	loader ConfigLoader
	logger *logrus.Logger
}

// Client implements ClientProvider.Client
func (p *PerRequestProvider) Client(ctx context.Context) (Converser, error) {
	start := time.Now()

	var opts []func(*awsconfig.LoadOptions) error
	if p.region != "" {
		opts = append(opts, awsconfig.WithRegion(p.region))
	}

	cfg, err := p.loader(ctx, opts...)
	if err != nil {
		return nil, NewSDKError(fmt.Sprintf("failed to load AWS configuration: %v", err), err)
	}

	p.logger.WithFields(logrus.Fields{
		"region":     cfg.Region,
		"latency_ms": float64(time.Since(start).Nanoseconds()) / 1000000,
	}).Debug("Resolved AWS configuration")

	return bedrockruntime.NewFromConfig(cfg), nil
}

// SharedProvider builds a client once and reuses it for every request.
// A failed build is not cached; the next call tries again.
type SharedProvider struct {
	source ClientProvider

	mu     sync.RWMutex
	client Converser
}

// NewSharedProvider wraps source so its client is built at most once successfully
func NewSharedProvider(source ClientProvider) *SharedProvider {
	return &SharedProvider{source: source}
}

// Client implements ClientProvider.Client
func (p *SharedProvider) Client(ctx context.Context) (Converser, error) {
	p.mu.RLock()
	if p.client != nil {
		client := p.client
		p.mu.RUnlock()
		return client, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	client, err := p.source.Client(ctx)
	if err != nil {
		return nil, err
	}

	p.client = client
	return client, nil
}

// StaticProvider always returns the same client
type StaticProvider struct {
	client Converser
}

// NewStaticProvider creates a provider around an existing client
func NewStaticProvider(client Converser) *StaticProvider {
	return &StaticProvider{client: client}
}

// Client implements ClientProvider.Client
func (p *StaticProvider) Client(ctx context.Context) (Converser, error) {
	return p.client, nil
}
