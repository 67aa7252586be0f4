package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/models"
	"github.com/braunma/netans-reconciler/pkg/tasks"
)

// TrunkUpdated pushes the current subport VLANs of a bound trunk parent to its switch port
func (c *Coordinator) TrunkUpdated(ctx context.Context, port models.Port, network models.Network) error {
	if !port.IsBound() || !port.IsTrunk() {
		c.logger.Debug("  = Port %s is not a bound trunk parent, skipping", port.ID)
		return nil
	}

	host, link, ok, err := c.resolveForRemoval(&port)
	if err != nil {
		c.logger.Error("Cannot reconfigure trunk on port %s", err, port.ID)
		return err
	}
	if !ok {
		return nil
	}

	native, err := segmentationVLAN(network.SegmentationID)
	if err != nil {
		return err
	}

	task, err := c.trunkTask(&port, host, link.SwitchPort, native)
	if err != nil {
		return err
	}

	if err := c.dispatcher.Dispatch(ctx, task).Err(); err != nil {
		c.logger.Error("Failed to reconfigure trunk on port %s on device %s", err, port.ID, host)
		return fmt.Errorf("failed to reconfigure trunk port %s: %w", port.ID, err)
	}

	c.logger.Success("Trunk port %s reconfigured on device %s", port.ID, host)
	return nil
}

// plugTask returns the task that attaches a port: a trunk for trunk parents, an access port otherwise
func (c *Coordinator) plugTask(port *models.Port, host, switchPort string, vlan tasks.VlanID) (tasks.Task, error) {
	if port.IsTrunk() {
		return c.trunkTask(port, host, switchPort, vlan)
	}
	return tasks.AccessPortTask(host, switchPort, vlan), nil
}

func (c *Coordinator) trunkTask(port *models.Port, host, switchPort string, native tasks.VlanID) (tasks.Task, error) {
	var trunked []tasks.VlanID
	seen := map[tasks.VlanID]bool{native: true}

	for _, sp := range port.Trunk.SubPorts {
		if sp.SegmentationType != "" && !strings.EqualFold(sp.SegmentationType, constants.NetworkTypeVLAN) {
			c.logger.Warning("Subport %s of port %s uses %s segmentation, skipping", sp.PortID, port.ID, sp.SegmentationType)
			continue
		}
		vlan, err := segmentationVLAN(sp.SegmentationID)
		if err != nil {
			return tasks.Task{}, fmt.Errorf("subport %s of port %s: %w", sp.PortID, port.ID, err)
		}
		if seen[vlan] {
			continue
		}
		seen[vlan] = true
		trunked = append(trunked, vlan)
	}

	return tasks.BuildTrunk(host, switchPort, native, trunked), nil
}
