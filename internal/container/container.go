package container

import (
	"fmt"

	"xlmhg/adapters/api"
	"xlmhg/adapters/stats/direct"
	"xlmhg/adapters/stats/mhg"
	"xlmhg/app"
	"xlmhg/internal"
	"xlmhg/internal/config"
	"xlmhg/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	Engine ports.Engine
	Tests  *app.TestService
	Batch  *app.BatchService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(cfg.Logging.Level)
	engine, err := NewEngine(cfg.Test.Backend)
	if err != nil {
		return nil, err
	}

	tests := app.NewTestService(engine, logger, app.TestDefaults{
		Tol:       cfg.Test.Tol,
		Algorithm: cfg.Test.Algorithm,
		Policy:    cfg.Test.Policy,
	})
	c := &Container{
		Config: cfg,
		Logger: logger,
		Engine: engine,
		Tests:  tests,
		Batch:  app.NewBatchService(tests, cfg.Batch.Workers, logger),
	}

	logger.Debug("Container initialized: backend=%s algorithm=%s policy=%s workers=%d",
		engine.Name(), cfg.Test.Algorithm, cfg.Test.Policy, cfg.Batch.Workers)
	return c, nil
}

// NewEngine returns the numeric backend registered under name
func NewEngine(name string) (ports.Engine, error) {
	switch name {
	case mhg.EngineName, "":
		return mhg.NewEngine(), nil
	case direct.EngineName:
		return direct.NewEngine(), nil
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}

// Server builds the HTTP API on top of the test service
func (c *Container) Server() *api.Server {
	return api.NewServer(c.Tests, c.Logger)
}
