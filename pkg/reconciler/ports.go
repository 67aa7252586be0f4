package reconciler

import (
	"context"
	"fmt"

	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/models"
	"github.com/braunma/netans-reconciler/pkg/tasks"
)

// BindPort plugs a baremetal port into its network's VLAN on the switch.
// A nil binding with a nil error means the port is left to another driver.
func (c *Coordinator) BindPort(ctx context.Context, port models.Port, network models.Network, segments []models.Segment) (*models.Binding, error) {
	if !port.IsSupported() {
		c.logger.Debug("  = Port %s has vnic type %q, skipping", port.ID, port.VNICType)
		return nil, nil
	}

	host, link, ok, err := c.resolveForBind(&port)
	if err != nil {
		c.logger.Error("Cannot bind port %s", err, port.ID)
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	vlan, err := segmentationVLAN(network.SegmentationID)
	if err != nil {
		return nil, err
	}

	task, err := c.plugTask(&port, host, link.SwitchPort, vlan)
	if err != nil {
		return nil, err
	}

	c.provisioner.AddDependency(port.ID)
	c.logger.Debug("  → Putting port %s on %s to vlan %s", link.SwitchPort, host, vlan)

	if err := c.dispatcher.Dispatch(ctx, task).Err(); err != nil {
		c.logger.Error("Failed to plug in port %s on device %s to network %s", err, port.ID, host, network.ID)
		return nil, fmt.Errorf("failed to bind port %s: %w", port.ID, err)
	}

	segmentID := network.ID
	if len(segments) > 0 {
		segmentID = segments[0].ID
	}

	c.logger.Success("Port %s has been plugged into network %s on device %s", port.ID, network.ID, host)
	return &models.Binding{
		SegmentID:  segmentID,
		VIFType:    constants.VIFTypeOther,
		VIFDetails: map[string]string{},
	}, nil
}

// UpdatePortPostcommit completes provisioning of a bound port, or unplugs
// a port that has just been unbound using its previous link information
func (c *Coordinator) UpdatePortPostcommit(ctx context.Context, current, original models.Port, network models.Network) error {
	if current.IsBound() {
		c.provisioner.MarkComplete(current.ID)
		c.logger.Debug("  ✓ Provisioning of port %s complete", current.ID)
		return nil
	}

	if original.IsBound() {
		return c.unplug(ctx, &original, network)
	}
	return nil
}

// DeletePortPostcommit unplugs a port that is still bound when deleted
func (c *Coordinator) DeletePortPostcommit(ctx context.Context, current models.Port, network models.Network) error {
	if !current.IsBound() {
		return nil
	}
	return c.unplug(ctx, &current, network)
}

func (c *Coordinator) unplug(ctx context.Context, port *models.Port, network models.Network) error {
	host, link, ok, err := c.resolveForRemoval(port)
	if err != nil {
		c.logger.Error("Cannot unplug port %s", err, port.ID)
		return err
	}
	if !ok {
		return nil
	}

	c.logger.Debug("  → Unplugging port %s on %s from network %s", link.SwitchPort, host, network.ID)

	if err := c.dispatcher.Dispatch(ctx, tasks.DeletePortTask(host, link.SwitchPort)).Err(); err != nil {
		c.logger.Error("Failed to unplug port %s on device %s from network %s", err, port.ID, host, network.ID)
		return fmt.Errorf("failed to unplug port %s: %w", port.ID, err)
	}

	c.logger.Success("Port %s has been unplugged from network %s on device %s", port.ID, network.ID, host)
	return nil
}
