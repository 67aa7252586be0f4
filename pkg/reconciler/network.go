package reconciler

import (
	"context"
	"errors"

	"github.com/sourcegraph/conc/pool"

	"github.com/braunma/netans-reconciler/pkg/client"
	"github.com/braunma/netans-reconciler/pkg/models"
	"github.com/braunma/netans-reconciler/pkg/tasks"
)

const (
	opNetworkCreated = "network_created"
	opNetworkDeleted = "network_deleted"
)

// NetworkCreated creates the network's VLAN on every managed switch.
// All hosts are attempted; any failure is reported as a *FanOutError.
func (c *Coordinator) NetworkCreated(ctx context.Context, network models.Network) error {
	vlan, ok, err := c.networkVLAN(network)
	if err != nil || !ok {
		return err
	}

	c.logger.Info("Creating VLAN %s for network %s on %d hosts...", vlan.Name(), network.ID, len(c.inventory.ManagedHosts()))

	failures := c.fanOut(ctx, opNetworkCreated, network.ID, func(host string) tasks.Task {
		return tasks.CreateVLANTask(host, vlan)
	})
	if len(failures) > 0 {
		err := &FanOutError{Operation: tasks.CreateVLAN.String(), NetworkID: network.ID, Failures: failures}
		c.logger.Error("Failed to create network %s", err, network.ID)
		return err
	}

	c.logger.Success("Network %s created on all managed hosts", network.ID)
	return nil
}

// NetworkDeleted removes the network's VLAN from every managed switch.
// Failures are logged and never returned.
func (c *Coordinator) NetworkDeleted(ctx context.Context, network models.Network) error {
	vlan, ok, err := c.networkVLAN(network)
	if err != nil || !ok {
		return err
	}

	c.logger.Info("Deleting VLAN %s for network %s on %d hosts...", vlan.Name(), network.ID, len(c.inventory.ManagedHosts()))

	failures := c.fanOut(ctx, opNetworkDeleted, network.ID, func(host string) tasks.Task {
		return tasks.DeleteVLANTask(host, vlan)
	})
	if len(failures) > 0 {
		c.logger.Warning("Network %s could not be deleted on %d host(s), leaving VLAN %s in place there",
			network.ID, len(failures), vlan.Name())
		return nil
	}

	c.logger.Success("Network %s deleted on all managed hosts", network.ID)
	return nil
}

// networkVLAN returns ok=false for networks that need no switch VLAN
func (c *Coordinator) networkVLAN(network models.Network) (tasks.VlanID, bool, error) {
	if !network.IsVLAN() || !network.SegmentationID.IsSet() {
		c.logger.Debug("  = Network %s is not a VLAN network with a segmentation id, skipping", network.ID)
		return 0, false, nil
	}

	vlan, err := segmentationVLAN(network.SegmentationID)
	if err != nil {
		return 0, false, err
	}
	return vlan, true, nil
}

// fanOut dispatches the task built for each managed host with bounded
// parallelism and returns the failures in host order
func (c *Coordinator) fanOut(ctx context.Context, op, networkID string, build func(host string) tasks.Task) []*client.ExecutionError {
	hosts := c.inventory.ManagedHosts()
	pending := make([]tasks.Task, len(hosts))
	for i, host := range hosts {
		pending[i] = build(host)
	}
	outcomes := make([]client.Outcome, len(hosts))

	p := pool.New().WithMaxGoroutines(c.workers)
	for i, task := range pending {
		i, task := i, task
		p.Go(func() {
			outcomes[i] = c.dispatcher.Dispatch(ctx, task)
		})
	}
	p.Wait()

	var failures []*client.ExecutionError
	for i, out := range outcomes {
		var execErr *client.ExecutionError
		if errors.As(out.Err(), &execErr) {
			c.logger.Error("Failed to %s for network %s on ansible host %s", execErr, pending[i].Kind, networkID, hosts[i])
			failures = append(failures, execErr)
			continue
		}
		c.logger.Debug("  ✓ %s for network %s done on ansible host %s", pending[i].Kind, networkID, hosts[i])
	}

	c.metrics.ObserveFanOut(op, len(hosts), len(failures))
	return failures
}
