package client

import (
	"context"
	"strings"
	"time"

	"github.com/braunma/netans-reconciler/pkg/inventory"
	"github.com/braunma/netans-reconciler/pkg/metrics"
	"github.com/braunma/netans-reconciler/pkg/tasks"
	"github.com/braunma/netans-reconciler/pkg/utils"
)

// Outcome is the classified result of one dispatch
type Outcome struct {
	Succeeded  bool
	Diagnostic string
	Hosts      []string
	Kind       string
}

// Err returns nil on success, otherwise an *ExecutionError
func (o Outcome) Err() error {
	if o.Succeeded {
		return nil
	}
	return &ExecutionError{Hosts: o.Hosts, Kind: o.Kind, Diagnostic: o.Diagnostic}
}

// Dispatcher submits tasks to an Executor and classifies the result
type Dispatcher struct {
	executor  Executor
	inventory *inventory.Inventory
	role      string
	metrics   *metrics.Metrics
	logger    *utils.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithRole overrides the automation role name
func WithRole(role string) Option {
	return func(d *Dispatcher) {
		if role != "" {
			d.role = role
		}
	}
}

// WithMetrics records dispatches on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates a dispatcher bound to an inventory snapshot
func NewDispatcher(executor Executor, inv *inventory.Inventory, logger *utils.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		executor:  executor,
		inventory: inv,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Inventory returns the snapshot the dispatcher targets
func (d *Dispatcher) Inventory() *inventory.Inventory {
	return d.inventory
}

// Dispatch runs the tasks as one invocation and blocks until the engine returns
func (d *Dispatcher) Dispatch(ctx context.Context, ts ...tasks.Task) Outcome {
	hosts := targetHosts(ts)
	out := Outcome{Hosts: hosts, Kind: kindLabel(ts)}

	if len(ts) == 0 {
		out.Succeeded = true
		return out
	}

	for _, h := range hosts {
		if !d.inventory.Has(h) {
			out.Diagnostic = "host " + h + " is not in inventory"
			d.logger.Error("Cannot dispatch %s", nil, out.Kind)
			d.logger.Warning("  %s", out.Diagnostic)
			return out
		}
	}

	inv := Invocation{
		Playbook:  tasks.Render(d.role, ts...),
		Inventory: d.inventory.Subset(hosts...),
		Settings:  Settings{PexpectUsePoll: false},
	}

	d.logger.Debug("  → Dispatching %s to %s", out.Kind, strings.Join(hosts, ","))

	start := time.Now()
	result, err := d.executor.Run(ctx, inv)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		out.Diagnostic = err.Error()
	case result.Failed():
		out.Diagnostic = strings.Join(result.Stdout, " ")
	default:
		out.Succeeded = true
	}

	d.metrics.ObserveDispatch(out.Kind, out.Succeeded, elapsed)

	if out.Succeeded {
		d.logger.Debug("  ✓ %s on %s done in %s", out.Kind, strings.Join(hosts, ","), elapsed.Round(time.Millisecond))
	} else {
		d.logger.Error("%s on %s failed", nil, out.Kind, strings.Join(hosts, ","))
	}
	return out
}

func targetHosts(ts []tasks.Task) []string {
	var hosts []string
	seen := make(map[string]bool)
	for _, t := range ts {
		if !seen[t.TargetHost] {
			seen[t.TargetHost] = true
			hosts = append(hosts, t.TargetHost)
		}
	}
	return hosts
}

func kindLabel(ts []tasks.Task) string {
	var kinds []string
	seen := make(map[tasks.Kind]bool)
	for _, t := range ts {
		if !seen[t.Kind] {
			seen[t.Kind] = true
			kinds = append(kinds, t.Kind.String())
		}
	}
	return strings.Join(kinds, "+")
}
