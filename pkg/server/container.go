package server

import (
	"fmt"

	"bedrock-agent-api/internal/adapters/bedrock"
	"bedrock-agent-api/internal/config"
	"bedrock-agent-api/internal/handlers"
	"bedrock-agent-api/internal/logging"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *logrus.Logger
	ClientProvider bedrock.ClientProvider
	Invoker        *bedrock.Invoker
	AgentHandler   *handlers.AgentHandler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	provider := bedrock.NewClientProvider(&bedrock.ProviderConfig{
		Region:      cfg.Bedrock.Region,
		ReuseClient: cfg.Bedrock.ReuseClient,
		Logger:      logger,
	})

	return NewContainerWithProvider(cfg, logger, provider)
}

// NewContainerWithProvider creates a container around an existing client provider
func NewContainerWithProvider(cfg *config.Config, logger *logrus.Logger, provider bedrock.ClientProvider) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("client provider is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	invoker := bedrock.NewInvoker(cfg.Bedrock.ModelID, logger)
	sc := config.GetServerlessConfig()

	logger.WithFields(logrus.Fields{
		"model_id":        cfg.Bedrock.ModelID,
		"region":          cfg.Bedrock.Region,
		"reuse_client":    cfg.Bedrock.ReuseClient,
		"environment":     cfg.Environment,
		"deployment_mode": config.GetDeploymentMode(),
		"function_name":   sc.FunctionName,
		"stage":           sc.Stage,
	}).Info("Container initialized")

	return &Container{
		Config:         cfg,
		Logger:         logger,
		ClientProvider: provider,
		Invoker:        invoker,
		AgentHandler:   handlers.NewAgentHandler(provider, invoker, logger),
	}, nil
}
