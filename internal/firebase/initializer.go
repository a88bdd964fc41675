package firebase

import (
	"context"
	"sync"

	"hello-firestore/backend/internal/config"

	"go.uber.org/zap"
)

// Initializer builds the Clients once and hands the same value to every
// caller afterwards. Failed attempts are not cached.
type Initializer struct {
	cfg    config.Config
	logger *zap.Logger
	build  func(context.Context, config.Config) (*Clients, error)

	mu      sync.Mutex
	clients *Clients
}

func NewInitializer(cfg config.Config, logger *zap.Logger) *Initializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Initializer{cfg: cfg, logger: logger, build: NewClients}
}

func (i *Initializer) Clients(ctx context.Context) (*Clients, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.clients != nil {
		return i.clients, nil
	}

	c, err := i.build(ctx, i.cfg)
	if err != nil {
		return nil, err
	}
	i.logger.Info("firebase initialized",
		zap.String("project", c.ProjectID),
		zap.Bool("explicitCredentials", i.cfg.HasCredentials()),
	)
	i.clients = c
	return c, nil
}

// Close releases the handle if one was built. A later Clients call builds
// a new one.
func (i *Initializer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.clients == nil {
		return nil
	}
	err := i.clients.Close()
	i.clients = nil
	return err
}
