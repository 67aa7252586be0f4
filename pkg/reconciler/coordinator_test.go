package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/client"
	"github.com/braunma/netans-reconciler/pkg/inventory"
	"github.com/braunma/netans-reconciler/pkg/metrics"
	"github.com/braunma/netans-reconciler/pkg/models"
	"github.com/braunma/netans-reconciler/pkg/tasks"
	"github.com/braunma/netans-reconciler/pkg/utils"
)

// eventLog is shared by the fakes so tests can check ordering
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type recordingDispatcher struct {
	log   *eventLog
	mu    sync.Mutex
	tasks []tasks.Task
	fail  map[string]string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, ts ...tasks.Task) client.Outcome {
	d.mu.Lock()
	d.tasks = append(d.tasks, ts...)
	d.mu.Unlock()

	out := client.Outcome{Succeeded: true}
	for _, t := range ts {
		d.log.add("dispatch:%s", t)
		out.Hosts = append(out.Hosts, t.TargetHost)
		out.Kind = t.Kind.String()
		if diag, ok := d.fail[t.TargetHost]; ok {
			out.Succeeded = false
			out.Diagnostic = diag
		}
	}
	return out
}

func (d *recordingDispatcher) recorded() []tasks.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := append([]tasks.Task(nil), d.tasks...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

type recordingProvisioner struct {
	log *eventLog
}

func (p *recordingProvisioner) AddDependency(id string) { p.log.add("add:%s", id) }
func (p *recordingProvisioner) MarkComplete(id string)  { p.log.add("complete:%s", id) }

type fixture struct {
	log         *eventLog
	dispatcher  *recordingDispatcher
	coordinator *Coordinator
}

func newFixture(t *testing.T, inv *inventory.Inventory, opts ...Option) *fixture {
	t.Helper()
	log := &eventLog{}
	d := &recordingDispatcher{log: log, fail: map[string]string{}}
	return &fixture{
		log:         log,
		dispatcher:  d,
		coordinator: New(inv, d, &recordingProvisioner{log: log}, utils.Discard(), opts...),
	}
}

func entry(host, mac string, manage bool) inventory.Entry {
	e := inventory.NewEntry(host)
	e.MAC = mac
	e.ManageVLANs = manage
	return e
}

func scenarioInventory() *inventory.Inventory {
	return inventory.New([]inventory.Entry{
		entry("hostA", "aa:bb:cc:dd:ee:ff", true),
		entry("hostB", "", false),
	}, utils.Discard())
}

func fleetInventory() *inventory.Inventory {
	return inventory.New([]inventory.Entry{
		entry("sw1", "", true),
		entry("sw2", "", true),
		entry("sw3", "", true),
		entry("sw4", "", false),
	}, utils.Discard())
}

func vlanNetwork(id, seg string) models.Network {
	return models.Network{ID: id, NetworkType: "vlan", SegmentationID: models.SegmentationID(seg)}
}

func baremetalPort(id string, link ...models.LinkLocation) models.Port {
	return models.Port{
		ID:       id,
		VNICType: constants.VNICTypeBaremetal,
		Profile:  models.BindingProfile{LocalLinkInformation: link},
	}
}

func boundPort(id string, link ...models.LinkLocation) models.Port {
	p := baremetalPort(id, link...)
	p.VIFType = constants.VIFTypeOther
	return p
}

func TestNetworkCreatedScenario(t *testing.T) {
	f := newFixture(t, scenarioInventory())

	err := f.coordinator.NetworkCreated(context.Background(), vlanNetwork("net-1", "20"))
	require.NoError(t, err)

	recorded := f.dispatcher.recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, tasks.CreateVLAN, recorded[0].Kind)
	assert.Equal(t, "hostA", recorded[0].TargetHost)
	assert.Equal(t, map[string]interface{}{"vlan_id": 20, "vlan_name": "vlan20"}, recorded[0].Vars.Fields())
}

func TestNetworkDeletedTaskVariables(t *testing.T) {
	f := newFixture(t, scenarioInventory())

	require.NoError(t, f.coordinator.NetworkDeleted(context.Background(), vlanNetwork("net-1", "37")))

	recorded := f.dispatcher.recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, "delete_vlan@hostA", recorded[0].String())
	assert.Equal(t, map[string]interface{}{"vlan_id": 37, "vlan_name": "vlan37"}, recorded[0].Vars.Fields())
}

func TestNetworkCreatedThenDeleted(t *testing.T) {
	f := newFixture(t, fleetInventory(), WithWorkers(2))
	network := vlanNetwork("net-1", "42")

	require.NoError(t, f.coordinator.NetworkCreated(context.Background(), network))
	require.NoError(t, f.coordinator.NetworkDeleted(context.Background(), network))

	perHost := map[string][]tasks.Kind{}
	for _, task := range f.dispatcher.recorded() {
		perHost[task.TargetHost] = append(perHost[task.TargetHost], task.Kind)
	}

	assert.Equal(t, map[string][]tasks.Kind{
		"sw1": {tasks.CreateVLAN, tasks.DeleteVLAN},
		"sw2": {tasks.CreateVLAN, tasks.DeleteVLAN},
		"sw3": {tasks.CreateVLAN, tasks.DeleteVLAN},
	}, perHost)
}

func TestNetworkFanOutSkipsUnmanagedHosts(t *testing.T) {
	for _, seg := range []string{"2", "100", "4094"} {
		t.Run(seg, func(t *testing.T) {
			f := newFixture(t, fleetInventory())
			network := vlanNetwork("net-1", seg)

			require.NoError(t, f.coordinator.NetworkCreated(context.Background(), network))
			require.NoError(t, f.coordinator.NetworkDeleted(context.Background(), network))

			for _, task := range f.dispatcher.recorded() {
				assert.NotEqual(t, "sw4", task.TargetHost)
			}
		})
	}
}

func TestNetworkEventsSkipped(t *testing.T) {
	tests := []struct {
		name    string
		network models.Network
	}{
		{"flat network", models.Network{ID: "n", NetworkType: "flat", SegmentationID: "20"}},
		{"vxlan network", models.Network{ID: "n", NetworkType: "vxlan", SegmentationID: "5000"}},
		{"vlan without segmentation id", vlanNetwork("n", "")},
		{"vlan with zero segmentation id", vlanNetwork("n", "0")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, fleetInventory())

			assert.NoError(t, f.coordinator.NetworkCreated(context.Background(), tt.network))
			assert.NoError(t, f.coordinator.NetworkDeleted(context.Background(), tt.network))
			assert.Empty(t, f.dispatcher.recorded())
		})
	}
}

func TestNetworkCreatedFailureAttemptsAllHosts(t *testing.T) {
	f := newFixture(t, fleetInventory(), WithWorkers(1))
	f.dispatcher.fail["sw1"] = "vlan table full"
	f.dispatcher.fail["sw3"] = "unreachable"

	err := f.coordinator.NetworkCreated(context.Background(), vlanNetwork("net-1", "20"))

	var fanOut *FanOutError
	require.ErrorAs(t, err, &fanOut)
	assert.Equal(t, []string{"sw1", "sw3"}, fanOut.Hosts())
	assert.Equal(t, "create_vlan", fanOut.Operation)
	assert.Contains(t, err.Error(), "vlan table full")
	assert.Contains(t, err.Error(), "unreachable")
	assert.Len(t, f.dispatcher.recorded(), 3)

	var execErr *client.ExecutionError
	assert.ErrorAs(t, err, &execErr)
}

func TestNetworkDeletedFailureIsTolerated(t *testing.T) {
	f := newFixture(t, fleetInventory())
	f.dispatcher.fail["sw2"] = "vlan in use"

	err := f.coordinator.NetworkDeleted(context.Background(), vlanNetwork("net-1", "20"))

	assert.NoError(t, err)
	assert.Len(t, f.dispatcher.recorded(), 3)
}

func TestNetworkCreatedInvalidSegmentation(t *testing.T) {
	f := newFixture(t, fleetInventory())

	err := f.coordinator.NetworkCreated(context.Background(), vlanNetwork("net-1", "twenty"))

	assert.ErrorIs(t, err, ErrInvalidSegmentation)
	assert.Empty(t, f.dispatcher.recorded())
}

func TestNetworkCreatedEmptyInventory(t *testing.T) {
	f := newFixture(t, inventory.Empty())

	assert.NoError(t, f.coordinator.NetworkCreated(context.Background(), vlanNetwork("net-1", "20")))
	assert.Empty(t, f.dispatcher.recorded())
}

func TestNetworkFanOutRecordsMetrics(t *testing.T) {
	m := metrics.New()
	f := newFixture(t, fleetInventory(), WithMetrics(m))
	f.dispatcher.fail["sw1"] = "boom"

	_ = f.coordinator.NetworkCreated(context.Background(), vlanNetwork("net-1", "20"))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "netans_coordinator_fanout_total")
}

func TestFanOutErrorUnwrap(t *testing.T) {
	err := &FanOutError{
		Operation: "create_vlan",
		NetworkID: "net-1",
		Failures: []*client.ExecutionError{
			{Hosts: []string{"sw1"}, Kind: "create_vlan", Diagnostic: "a"},
		},
	}

	var execErr *client.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "a", execErr.Diagnostic)
}
