package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/models"
	"github.com/braunma/netans-reconciler/pkg/server"
	"github.com/braunma/netans-reconciler/pkg/tasks"
	"github.com/braunma/netans-reconciler/pkg/utils"
)

func newServeCmd(opts *options) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lifecycle hooks over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			addr := utils.FirstNonEmpty(listen, a.cfg.Listen)

			srv := server.New(a.coordinator, a.tracker, a.metrics, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Listen(addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				a.logger.Info("Shutting down...")
				return srv.Shutdown()
			}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides NETANS_LISTEN)")
	return cmd
}

func newNetworkCmd(opts *options) *cobra.Command {
	var network models.Network
	var segmentationID string

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Run network lifecycle events",
	}

	run := func(event func(*app, context.Context, models.Network) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			network.SegmentationID = models.SegmentationID(segmentationID)
			return event(a, cmd.Context(), network)
		}
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create the network's VLAN on every managed switch",
		RunE: run(func(a *app, ctx context.Context, n models.Network) error {
			return a.coordinator.NetworkCreated(ctx, n)
		}),
	}
	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete the network's VLAN from every managed switch",
		RunE: run(func(a *app, ctx context.Context, n models.Network) error {
			return a.coordinator.NetworkDeleted(ctx, n)
		}),
	}

	for _, c := range []*cobra.Command{create, del} {
		c.Flags().StringVar(&network.ID, "id", "", "Network ID")
		c.Flags().StringVar(&network.NetworkType, "type", constants.NetworkTypeVLAN, "Provider network type")
		c.Flags().StringVar(&segmentationID, "segmentation-id", "", "Provider segmentation ID")
		_ = c.MarkFlagRequired("id")
	}

	cmd.AddCommand(create, del)
	return cmd
}

func newPortCmd(opts *options) *cobra.Command {
	var portFile, networkFile string

	cmd := &cobra.Command{
		Use:   "port",
		Short: "Run port lifecycle events from YAML descriptors",
	}

	load := func() (*app, *models.Port, *models.Network, error) {
		a, err := newApp(opts)
		if err != nil {
			return nil, nil, nil, err
		}
		port, err := a.loader.LoadPort(portFile)
		if err != nil {
			return nil, nil, nil, err
		}
		network, err := a.loader.LoadNetwork(networkFile)
		if err != nil {
			return nil, nil, nil, err
		}
		return a, port, network, nil
	}

	bind := &cobra.Command{
		Use:   "bind",
		Short: "Plug the port into its network's VLAN",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, port, network, err := load()
			if err != nil {
				return err
			}
			binding, err := a.coordinator.BindPort(cmd.Context(), *port, *network, nil)
			if err != nil {
				return err
			}
			if binding == nil {
				a.logger.Warning("Port %s was not bound", port.ID)
				return nil
			}

			bound := *port
			bound.VIFType = binding.VIFType
			if err := a.coordinator.UpdatePortPostcommit(cmd.Context(), bound, *port, *network); err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), binding)
		},
	}

	unbind := &cobra.Command{
		Use:   "unbind",
		Short: "Unplug a bound port using its link information",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, port, network, err := load()
			if err != nil {
				return err
			}
			original := *port
			original.VIFType = constants.VIFTypeOther
			current := *port
			current.VIFType = constants.VIFTypeUnbound
			current.Profile = models.BindingProfile{}
			return a.coordinator.UpdatePortPostcommit(cmd.Context(), current, original, *network)
		},
	}

	del := &cobra.Command{
		Use:   "delete",
		Short: "Unplug a port that is being deleted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, port, network, err := load()
			if err != nil {
				return err
			}
			return a.coordinator.DeletePortPostcommit(cmd.Context(), *port, *network)
		},
	}

	for _, c := range []*cobra.Command{bind, unbind, del} {
		c.Flags().StringVar(&portFile, "port-file", "", "YAML port descriptor")
		c.Flags().StringVar(&networkFile, "network-file", "", "YAML network descriptor")
		_ = c.MarkFlagRequired("port-file")
		_ = c.MarkFlagRequired("network-file")
	}

	cmd.AddCommand(bind, unbind, del)
	return cmd
}

func newInventoryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Inspect the switch inventory",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the inventory handed to ansible-playbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), a.inventory.Document())
		},
	})

	return cmd
}

func newRenderCmd() *cobra.Command {
	var kindName, host, vlan, port string
	var trunked []string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the playbook for a single task",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := tasks.ParseKind(kindName)
			if err != nil {
				return err
			}
			vlanID, err := tasks.ParseVlanID(vlan)
			if err != nil {
				return err
			}
			if kind.IsPortScoped() && port == "" {
				return errors.New("--port is required for " + kind.String())
			}

			task := tasks.Build(kind, vlanID, host, port)
			if kind == tasks.ConfigureTrunkPort {
				ids := make([]tasks.VlanID, 0, len(trunked))
				for _, raw := range trunked {
					n, err := strconv.Atoi(raw)
					if err != nil {
						return fmt.Errorf("invalid trunked vlan %q: %w", raw, err)
					}
					ids = append(ids, tasks.VlanID(n))
				}
				task = tasks.BuildTrunk(host, port, vlanID, ids)
			}

			data, err := tasks.MarshalPlaybook(tasks.Render(constants.DefaultRoleName, task))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", "", "Task kind (create_vlan, delete_vlan, update_access_port, delete_port, configure_trunk_port)")
	cmd.Flags().StringVar(&host, "host", "", "Target inventory host")
	cmd.Flags().StringVar(&vlan, "vlan", "", "Segmentation ID (empty means the default VLAN)")
	cmd.Flags().StringVar(&port, "port", "", "Switch port name")
	cmd.Flags().StringSliceVar(&trunked, "trunked", nil, "Additional VLANs for configure_trunk_port")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("host")

	return cmd
}

func printYAML(w io.Writer, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = w.Write(data)
	return err
}
