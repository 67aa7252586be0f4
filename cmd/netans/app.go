package main

import (
	"fmt"

	"github.com/braunma/netans-reconciler/internal/config"
	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/client"
	"github.com/braunma/netans-reconciler/pkg/inventory"
	"github.com/braunma/netans-reconciler/pkg/loader"
	"github.com/braunma/netans-reconciler/pkg/metrics"
	"github.com/braunma/netans-reconciler/pkg/provisioning"
	"github.com/braunma/netans-reconciler/pkg/reconciler"
	"github.com/braunma/netans-reconciler/pkg/utils"
)

// app is the wired reconciler shared by the commands
type app struct {
	cfg         config.Config
	logger      *utils.Logger
	loader      *loader.DataLoader
	inventory   *inventory.Inventory
	metrics     *metrics.Metrics
	tracker     *provisioning.Tracker
	coordinator *reconciler.Coordinator
}

func newApp(opts *options) (*app, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.debug {
		cfg.Debug = true
	}
	cfg.ConfigFiles = append(cfg.ConfigFiles, opts.inventory...)

	logger := utils.NewLogger(cfg.Debug)
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", err)
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dataLoader := loader.NewDataLoader("", logger)

	files := append([]string(nil), cfg.ConfigFiles...)
	if cfg.ConfigDir != "" {
		found, err := dataLoader.FindConfigFiles(cfg.ConfigDir)
		if err != nil {
			logger.Error("Failed to scan config directory", err)
			return nil, err
		}
		files = append(files, found...)
	}
	if !cfg.InventorySources() {
		logger.Warning("No inventory configured (set %s or %s, or pass --inventory)",
			constants.EnvConfigFiles, constants.EnvConfigDir)
	} else if len(files) == 0 {
		logger.Warning("No inventory files found in %s", cfg.ConfigDir)
	}

	inv := dataLoader.LoadInventory(files...)
	m := metrics.New()

	var executor client.Executor
	if opts.dryRun {
		executor = client.NewDryRun(logger)
	} else {
		executor = client.NewAnsiblePlaybook(cfg.PlaybookBinary, cfg.Timeout, logger)
	}

	dispatcher := client.NewDispatcher(executor, inv, logger,
		client.WithRole(cfg.Role),
		client.WithMetrics(m),
	)

	tracker := provisioning.NewTracker()
	coordinator := reconciler.New(inv, dispatcher, tracker, logger,
		reconciler.WithWorkers(cfg.Workers),
		reconciler.WithStrictBinding(cfg.StrictBinding),
		reconciler.WithMetrics(m),
	)

	return &app{
		cfg:         cfg,
		logger:      logger,
		loader:      dataLoader,
		inventory:   inv,
		metrics:     m,
		tracker:     tracker,
		coordinator: coordinator,
	}, nil
}
