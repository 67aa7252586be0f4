package client

import (
	"context"

	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/inventory"
	"github.com/braunma/netans-reconciler/pkg/tasks"
)

// Settings are the runner options passed with every invocation
type Settings struct {
	// PexpectUsePoll must stay false; the engine runs without a terminal
	PexpectUsePoll bool `json:"pexpect_use_poll"`
}

// Invocation is a single automation engine run
type Invocation struct {
	Playbook  []tasks.Play
	Inventory inventory.Document
	Settings  Settings
}

// RunResult is what the automation engine reports back
type RunResult struct {
	Status   string
	Failures []string
	Stdout   []string
}

// Failed reports whether the run failed. Either signal alone is sufficient.
func (r *RunResult) Failed() bool {
	switch r.Status {
	case constants.StatusFailed, constants.StatusTimeout:
		return true
	}
	return len(r.Failures) > 0
}

// Executor runs an invocation against the automation engine
type Executor interface {
	Run(ctx context.Context, inv Invocation) (*RunResult, error)
}
