package cmd

import (
	"fmt"
	"time"

	"github.com/ziadkadry99/bizmate/internal/artifact"
	"github.com/ziadkadry99/bizmate/internal/changelog"
	"github.com/ziadkadry99/bizmate/internal/company"
	"github.com/ziadkadry99/bizmate/internal/config"
	"github.com/ziadkadry99/bizmate/internal/contextengine"
	"github.com/ziadkadry99/bizmate/internal/db"
	"github.com/ziadkadry99/bizmate/internal/llm"
	"github.com/ziadkadry99/bizmate/internal/recipe"
	"github.com/ziadkadry99/bizmate/internal/role"
	"github.com/ziadkadry99/bizmate/internal/runner"
	"github.com/ziadkadry99/bizmate/internal/session"
	"github.com/ziadkadry99/bizmate/internal/synthesis"
)

// app bundles the stores and engine every command needs. The LLM side
// is attached separately so read-only commands work without an API key.
type app struct {
	cfg       *config.Config
	db        *db.DB
	companies *company.Store
	roles     *role.Store
	sessions  *session.Store
	changes   *changelog.Store
	artifacts *artifact.Store
	engine    *contextengine.Engine
	registry  *recipe.Registry
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `bizmate init` to create a config file", err)
	}
	return cfg, nil
}

// openApp opens the database and wires the stores and context engine.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	d, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	companies := company.NewStore(d)
	roles := role.NewStore(d)
	sessions := session.NewStore(d)
	changes := changelog.NewStore(d)
	artifacts := artifact.NewStore(d)

	return &app{
		cfg:       cfg,
		db:        d,
		companies: companies,
		roles:     roles,
		sessions:  sessions,
		changes:   changes,
		artifacts: artifacts,
		engine:    contextengine.New(companies, roles, sessions, changes, cfg.CompanyName, cfg.OperatorID),
		registry:  recipe.DefaultRegistry(),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// buildRunner attaches the LLM pipeline and creates the recipe runner.
// The provider is wrapped in a rate limiter and a gateway that enforces
// the per-call timeout and classifies transport failures.
func (a *app) buildRunner() (*runner.Runner, error) {
	provider, err := llm.NewProvider(string(a.cfg.Provider), a.cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	limited := llm.NewRateLimitedProvider(provider, a.cfg.RateLimitRPM)
	gateway := llm.NewGateway(limited, time.Duration(a.cfg.LLMTimeoutSecs)*time.Second)
	repairer := synthesis.NewRepairer(gateway, synthesis.RetryPolicy{MaxAttempts: a.cfg.RepairAttempts})

	deps := &recipe.Deps{
		Companies: a.companies,
		Artifacts: a.artifacts,
		Changes:   a.changes,
		Synth:     repairer,
	}
	return runner.New(a.registry, a.engine, a.roles, deps), nil
}
