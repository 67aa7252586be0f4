package reconciler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/client"
	"github.com/braunma/netans-reconciler/pkg/models"
	"github.com/braunma/netans-reconciler/pkg/provisioning"
	"github.com/braunma/netans-reconciler/pkg/tasks"
	"github.com/braunma/netans-reconciler/pkg/utils"
)

var linkA = models.LinkLocation{SwitchName: "hostA", SwitchPort: "Ethernet1"}

func TestBindPortSuccess(t *testing.T) {
	f := newFixture(t, scenarioInventory())
	segments := []models.Segment{{ID: "seg-1"}, {ID: "seg-2"}}

	binding, err := f.coordinator.BindPort(context.Background(), baremetalPort("port-1", linkA), vlanNetwork("net-1", "20"), segments)

	require.NoError(t, err)
	require.NotNil(t, binding)
	assert.Equal(t, "seg-1", binding.SegmentID)
	assert.Equal(t, constants.VIFTypeOther, binding.VIFType)
	assert.Equal(t, []string{"add:port-1", "dispatch:update_access_port@hostA"}, f.log.list())

	task := f.dispatcher.recorded()[0]
	assert.Equal(t, map[string]interface{}{
		"vlan_id":          20,
		"port_name":        "Ethernet1",
		"port_description": "Ethernet1",
	}, task.Vars.Fields())
}

func TestBindPortByMacCaseInsensitive(t *testing.T) {
	f := newFixture(t, scenarioInventory())
	link := models.LinkLocation{SwitchMAC: "AA:BB:CC:DD:EE:FF", SwitchPort: "Ethernet2"}

	_, err := f.coordinator.BindPort(context.Background(), baremetalPort("port-1", link), vlanNetwork("net-1", "20"), nil)

	require.NoError(t, err)
	assert.Equal(t, "hostA", f.dispatcher.recorded()[0].TargetHost)
}

func TestBindPortEmptySegmentationUsesDefaultVLAN(t *testing.T) {
	f := newFixture(t, scenarioInventory())

	binding, err := f.coordinator.BindPort(context.Background(), baremetalPort("port-1", linkA), models.Network{ID: "net-1", NetworkType: "flat"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "net-1", binding.SegmentID)
	vars := f.dispatcher.recorded()[0].Vars.(tasks.AccessPortVars)
	assert.Equal(t, tasks.DefaultVLAN, vars.VlanID)
	assert.Equal(t, "default", vars.VlanID.Name())
}

func TestBindPortNotBaremetal(t *testing.T) {
	f := newFixture(t, scenarioInventory())
	port := baremetalPort("port-1", linkA)
	port.VNICType = "normal"

	binding, err := f.coordinator.BindPort(context.Background(), port, vlanNetwork("net-1", "20"), nil)

	assert.NoError(t, err)
	assert.Nil(t, binding)
	assert.Empty(t, f.log.list())
}

func TestBindPortWithoutLinkInformation(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		port    models.Port
		wantErr bool
	}{
		{"strict without link info", true, baremetalPort("port-1"), true},
		{"lenient without link info", false, baremetalPort("port-1"), false},
		{"strict with empty link entry", true, baremetalPort("port-1", models.LinkLocation{}), true},
		{"lenient with empty link entry", false, baremetalPort("port-1", models.LinkLocation{}), false},
		{"lenient with link but no switch port", false, baremetalPort("port-1", models.LinkLocation{SwitchName: "hostA"}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, scenarioInventory(), WithStrictBinding(tt.strict))

			binding, err := f.coordinator.BindPort(context.Background(), tt.port, vlanNetwork("net-1", "20"), nil)

			assert.Nil(t, binding)
			if tt.wantErr {
				var missing *LinkInfoMissingError
				assert.ErrorAs(t, err, &missing)
			} else {
				assert.NoError(t, err)
			}
			// never dispatches, never marks anything
			assert.Empty(t, f.log.list())
		})
	}
}

func TestBindPortUnresolvedMac(t *testing.T) {
	link := models.LinkLocation{SwitchMAC: "11:22:33:44:55:66", SwitchPort: "Ethernet1"}

	t.Run("strict", func(t *testing.T) {
		f := newFixture(t, scenarioInventory())
		_, err := f.coordinator.BindPort(context.Background(), baremetalPort("port-1", link), vlanNetwork("net-1", "20"), nil)

		var unresolved *UnresolvedSwitchError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "11:22:33:44:55:66", unresolved.Link.SwitchMAC)
		assert.Empty(t, f.log.list())
	})

	t.Run("lenient", func(t *testing.T) {
		f := newFixture(t, scenarioInventory(), WithStrictBinding(false))
		binding, err := f.coordinator.BindPort(context.Background(), baremetalPort("port-1", link), vlanNetwork("net-1", "20"), nil)

		assert.NoError(t, err)
		assert.Nil(t, binding)
		assert.Empty(t, f.log.list())
	})
}

func TestBindPortDispatchFailure(t *testing.T) {
	f := newFixture(t, scenarioInventory())
	f.dispatcher.fail["hostA"] = "interface Ethernet1 does not exist"

	binding, err := f.coordinator.BindPort(context.Background(), baremetalPort("port-1", linkA), vlanNetwork("net-1", "20"), nil)

	assert.Nil(t, binding)
	var execErr *client.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Diagnostic, "Ethernet1")
	assert.Equal(t, []string{"add:port-1", "dispatch:update_access_port@hostA"}, f.log.list())
}

// fakeExecutor drives the real dispatcher with a canned engine result
type fakeExecutor struct {
	result *client.RunResult
}

func (e *fakeExecutor) Run(context.Context, client.Invocation) (*client.RunResult, error) {
	return e.result, nil
}

func TestBindPortEngineFailureNeverCompletes(t *testing.T) {
	inv := scenarioInventory()
	exec := &fakeExecutor{result: &client.RunResult{
		Status:   constants.StatusFailed,
		Failures: []string{"hostA"},
		Stdout:   []string{"fatal:", "hostA", "unreachable"},
	}}
	dispatcher := client.NewDispatcher(exec, inv, utils.Discard())
	tracker := provisioning.NewTracker()
	c := New(inv, dispatcher, tracker, utils.Discard())

	_, err := c.BindPort(context.Background(), baremetalPort("port-1", linkA), vlanNetwork("net-1", "20"), nil)

	var execErr *client.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "fatal: hostA unreachable", execErr.Diagnostic)
	assert.Equal(t, provisioning.StatePending, tracker.State("port-1"))

	// a later update with the port still unbound must not complete it either
	require.NoError(t, c.UpdatePortPostcommit(context.Background(), baremetalPort("port-1", linkA), baremetalPort("port-1", linkA), vlanNetwork("net-1", "20")))
	assert.Equal(t, provisioning.StatePending, tracker.State("port-1"))
}

func TestBindPortInvalidSegmentation(t *testing.T) {
	f := newFixture(t, scenarioInventory())

	_, err := f.coordinator.BindPort(context.Background(), baremetalPort("port-1", linkA), vlanNetwork("net-1", "abc"), nil)

	assert.ErrorIs(t, err, ErrInvalidSegmentation)
	assert.Empty(t, f.log.list())
}

func TestUpdatePortPostcommit(t *testing.T) {
	network := vlanNetwork("net-1", "20")

	tests := []struct {
		name     string
		current  models.Port
		original models.Port
		events   []string
	}{
		{
			name:     "now bound completes provisioning",
			current:  boundPort("port-1", linkA),
			original: baremetalPort("port-1", linkA),
			events:   []string{"complete:port-1"},
		},
		{
			name:     "unbound unplugs with original link",
			current:  baremetalPort("port-1"),
			original: boundPort("port-1", linkA),
			events:   []string{"dispatch:delete_port@hostA"},
		},
		{
			name:     "never bound does nothing",
			current:  baremetalPort("port-1"),
			original: baremetalPort("port-1", linkA),
		},
		{
			name:     "unbound without original link info is skipped",
			current:  baremetalPort("port-1"),
			original: boundPort("port-1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, scenarioInventory())

			err := f.coordinator.UpdatePortPostcommit(context.Background(), tt.current, tt.original, network)

			require.NoError(t, err)
			assert.Equal(t, tt.events, f.log.list())
		})
	}
}

func TestUnplugUsesDeletePortVariables(t *testing.T) {
	f := newFixture(t, scenarioInventory())

	require.NoError(t, f.coordinator.UpdatePortPostcommit(context.Background(), baremetalPort("port-1"), boundPort("port-1", linkA), vlanNetwork("net-1", "20")))

	task := f.dispatcher.recorded()[0]
	assert.Equal(t, map[string]interface{}{
		"port_name":        "Ethernet1",
		"port_description": "Ethernet1",
	}, task.Vars.Fields())
}

func TestUpdatePortPostcommitUnplugFailure(t *testing.T) {
	f := newFixture(t, scenarioInventory())
	f.dispatcher.fail["hostA"] = "timeout"

	err := f.coordinator.UpdatePortPostcommit(context.Background(), baremetalPort("port-1"), boundPort("port-1", linkA), vlanNetwork("net-1", "20"))

	var execErr *client.ExecutionError
	assert.ErrorAs(t, err, &execErr)
}

func TestDeletePortPostcommit(t *testing.T) {
	tests := []struct {
		name   string
		port   models.Port
		events []string
	}{
		{"bound port is unplugged", boundPort("port-1", linkA), []string{"dispatch:delete_port@hostA"}},
		{"unbound port is ignored", baremetalPort("port-1", linkA), nil},
		{"bound port without link info is skipped", boundPort("port-1"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, scenarioInventory())

			err := f.coordinator.DeletePortPostcommit(context.Background(), tt.port, vlanNetwork("net-1", "20"))

			require.NoError(t, err)
			assert.Equal(t, tt.events, f.log.list())
		})
	}
}

func TestDeletePortPostcommitUnresolved(t *testing.T) {
	link := models.LinkLocation{SwitchMAC: "11:22:33:44:55:66", SwitchPort: "Ethernet1"}

	f := newFixture(t, scenarioInventory())
	err := f.coordinator.DeletePortPostcommit(context.Background(), boundPort("port-1", link), vlanNetwork("net-1", "20"))
	var unresolved *UnresolvedSwitchError
	assert.ErrorAs(t, err, &unresolved)

	f = newFixture(t, scenarioInventory(), WithStrictBinding(false))
	err = f.coordinator.DeletePortPostcommit(context.Background(), boundPort("port-1", link), vlanNetwork("net-1", "20"))
	assert.NoError(t, err)
	assert.Empty(t, f.log.list())
}
