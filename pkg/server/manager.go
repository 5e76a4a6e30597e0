package server

import (
	"sync"

	"bedrock-agent-api/internal/config"
)

// ContainerManager lazily builds the container for Lambda functions.
// A failed build is not cached so a later invocation can succeed.
type ContainerManager struct {
	mu        sync.Mutex
	container *Container
	load      func() (*Container, error)
}

// NewContainerManager creates a manager that builds its container with load
func NewContainerManager(load func() (*Container, error)) *ContainerManager {
	return &ContainerManager{load: load}
}

// NewDefaultContainerManager builds the container from the environment
func NewDefaultContainerManager() *ContainerManager {
	return NewContainerManager(func() (*Container, error) {
		cfg, err := config.GetOptimizedConfig()
		if err != nil {
			return nil, err
		}
		return NewContainer(cfg)
	})
}

// GetContainer returns the container, building it on first use
func (cm *ContainerManager) GetContainer() (*Container, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		return cm.container, nil
	}

	container, err := cm.load()
	if err != nil {
		return nil, err
	}

	cm.container = container
	return container, nil
}
