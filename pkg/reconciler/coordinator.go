// Package reconciler turns host framework lifecycle events into switch tasks.
package reconciler

import (
	"context"
	"fmt"

	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/client"
	"github.com/braunma/netans-reconciler/pkg/inventory"
	"github.com/braunma/netans-reconciler/pkg/metrics"
	"github.com/braunma/netans-reconciler/pkg/models"
	"github.com/braunma/netans-reconciler/pkg/provisioning"
	"github.com/braunma/netans-reconciler/pkg/tasks"
	"github.com/braunma/netans-reconciler/pkg/utils"
)

// Dispatcher runs tasks against the automation engine
type Dispatcher interface {
	Dispatch(ctx context.Context, ts ...tasks.Task) client.Outcome
}

// Coordinator decides which switch tasks each lifecycle event needs
type Coordinator struct {
	inventory   *inventory.Inventory
	dispatcher  Dispatcher
	provisioner provisioning.Provisioner
	logger      *utils.Logger
	metrics     *metrics.Metrics
	workers     int
	strict      bool
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithWorkers bounds the parallelism of network fan-outs
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithStrictBinding makes missing or unresolved link information an error instead of a no-op.
// Strict is the default. With strict=false a baremetal port without link information,
// or whose switch is not in inventory, is left unbound for another driver to handle.
func WithStrictBinding(strict bool) Option {
	return func(c *Coordinator) {
		c.strict = strict
	}
}

// WithMetrics records fan-outs on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// New creates a coordinator over an inventory snapshot
func New(inv *inventory.Inventory, d Dispatcher, p provisioning.Provisioner, logger *utils.Logger, opts ...Option) *Coordinator {
	if inv == nil {
		inv = inventory.Empty()
	}
	if logger == nil {
		logger = utils.Discard()
	}

	c := &Coordinator{
		inventory:   inv,
		dispatcher:  d,
		provisioner: p,
		logger:      logger,
		workers:     constants.DefaultWorkers,
		strict:      true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Inventory returns the coordinator's inventory snapshot
func (c *Coordinator) Inventory() *inventory.Inventory {
	return c.inventory
}

// resolveForBind finds the switch for a port that is being bound.
// ok is false when the bind should be left to another driver.
func (c *Coordinator) resolveForBind(port *models.Port) (host string, link models.LinkLocation, ok bool, err error) {
	link, present := port.Link()
	if !present {
		if c.strict {
			return "", link, false, &LinkInfoMissingError{PortID: port.ID, Reason: "no local link information"}
		}
		c.logger.Debug("  = Port %s has no local link information, skipping", port.ID)
		return "", link, false, nil
	}

	if link.SwitchPort == "" {
		return "", link, false, &LinkInfoMissingError{PortID: port.ID, Reason: "no switch port in local link information"}
	}

	return c.resolveLink(port.ID, link)
}

// resolveForRemoval finds the switch a port was plugged into. Ports without link information are skipped.
func (c *Coordinator) resolveForRemoval(port *models.Port) (host string, link models.LinkLocation, ok bool, err error) {
	link, present := port.Link()
	if !present || link.SwitchPort == "" {
		c.logger.Debug("  = Port %s has no local link information, nothing to unplug", port.ID)
		return "", link, false, nil
	}

	return c.resolveLink(port.ID, link)
}

func (c *Coordinator) resolveLink(portID string, link models.LinkLocation) (string, models.LinkLocation, bool, error) {
	host, ok := c.inventory.Resolve(link)
	if ok {
		return host, link, true, nil
	}

	if c.strict {
		return "", link, false, &UnresolvedSwitchError{PortID: portID, Link: link}
	}
	c.logger.Warning("Switch for port %s (mac %s) is not in inventory, skipping", portID, link.SwitchMAC)
	return "", link, false, nil
}

// segmentationVLAN parses a segmentation ID, mapping empty values to the default VLAN
func segmentationVLAN(id models.SegmentationID) (tasks.VlanID, error) {
	vlan, err := tasks.ParseVlanID(string(id))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSegmentation, err)
	}
	return vlan, nil
}
