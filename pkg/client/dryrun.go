package client

import (
	"context"

	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/utils"
)

// DryRun logs invocations instead of executing them
type DryRun struct {
	logger *utils.Logger
}

// NewDryRun creates a dry-run executor
func NewDryRun(logger *utils.Logger) *DryRun {
	return &DryRun{logger: logger}
}

// Run logs every play task and reports success
func (d *DryRun) Run(_ context.Context, inv Invocation) (*RunResult, error) {
	for _, play := range inv.Playbook {
		for _, t := range play.Tasks {
			d.logger.DryRun(t.ImportRole.TasksFrom, "%s %v", play.Hosts, t.Vars)
		}
	}
	return &RunResult{Status: constants.StatusSuccessful}, nil
}
