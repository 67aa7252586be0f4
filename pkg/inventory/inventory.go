// Package inventory holds the immutable snapshot of known switches and
// resolves a port's link-layer location to an automation host name.
package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/models"
	"github.com/braunma/netans-reconciler/pkg/utils"
)

// Entry describes one switch known to the automation engine
type Entry struct {
	HostName    string
	MAC         string
	ManageVLANs bool
	// Attributes are passed through to the automation engine untouched
	Attributes map[string]string
}

// NewEntry creates an entry with the default manage_vlans=true
func NewEntry(hostName string) Entry {
	return Entry{HostName: hostName, ManageVLANs: true}
}

// MacIndex maps a canonical MAC to a host name
type MacIndex map[string]string

// Lookup finds the host for a MAC in any case or separator style
func (m MacIndex) Lookup(mac string) (string, bool) {
	host, ok := m[utils.NormalizeMAC(mac)]
	return host, ok
}

// Inventory is a read-only snapshot of the switch fleet. It is built once
// and never mutated, so concurrent readers need no locking.
type Inventory struct {
	entries map[string]Entry
	macs    MacIndex
	hosts   []string
}

// New builds an inventory. Duplicate host names and MACs keep the first occurrence.
func New(entries []Entry, logger *utils.Logger) *Inventory {
	if logger == nil {
		logger = utils.Discard()
	}

	inv := &Inventory{
		entries: make(map[string]Entry, len(entries)),
		macs:    make(MacIndex),
	}

	for _, e := range entries {
		if e.HostName == "" {
			logger.Warning("Skipping inventory entry without host name")
			continue
		}
		if _, exists := inv.entries[e.HostName]; exists {
			logger.Warning("Duplicate inventory host %s, keeping first definition", e.HostName)
			continue
		}

		e.MAC = utils.NormalizeMAC(e.MAC)
		e.Attributes = copyAttributes(e.Attributes)

		if e.MAC != "" {
			if owner, taken := inv.macs[e.MAC]; taken {
				logger.Warning("MAC %s of host %s already belongs to %s, ignoring", e.MAC, e.HostName, owner)
			} else {
				inv.macs[e.MAC] = e.HostName
			}
		}

		inv.entries[e.HostName] = e
	}

	inv.hosts = utils.SortedKeys(inv.entries)
	return inv
}

// Empty returns an inventory with no hosts
func Empty() *Inventory {
	return New(nil, nil)
}

// Len returns the number of hosts
func (i *Inventory) Len() int {
	return len(i.hosts)
}

// Hosts returns all host names in sorted order
func (i *Inventory) Hosts() []string {
	return append([]string(nil), i.hosts...)
}

// Lookup returns the entry for a host
func (i *Inventory) Lookup(host string) (Entry, bool) {
	e, ok := i.entries[host]
	if !ok {
		return Entry{}, false
	}
	e.Attributes = copyAttributes(e.Attributes)
	return e, true
}

// Has reports whether a host is in the inventory
func (i *Inventory) Has(host string) bool {
	_, ok := i.entries[host]
	return ok
}

// ManagedHosts returns the sorted hosts that take part in fleet-wide VLAN operations
func (i *Inventory) ManagedHosts() []string {
	var managed []string
	for _, h := range i.hosts {
		if i.entries[h].ManageVLANs {
			managed = append(managed, h)
		}
	}
	return managed
}

// MacIndex returns a copy of the MAC alias table
func (i *Inventory) MacIndex() MacIndex {
	idx := make(MacIndex, len(i.macs))
	for k, v := range i.macs {
		idx[k] = v
	}
	return idx
}

// Resolve maps a link location to a host name using this inventory's MAC index
func (i *Inventory) Resolve(loc models.LinkLocation) (string, bool) {
	return Resolve(loc, i.macs)
}

// Resolve maps a link location to a host name. A switch name is authoritative;
// otherwise the MAC is canonicalized and looked up in the index.
func Resolve(loc models.LinkLocation, idx MacIndex) (string, bool) {
	if name := strings.TrimSpace(loc.SwitchName); name != "" {
		return name, true
	}
	if strings.TrimSpace(loc.SwitchMAC) == "" {
		return "", false
	}
	return idx.Lookup(loc.SwitchMAC)
}

// HostVars is the per-host variable map of an inventory document
type HostVars map[string]interface{}

// Group is an inventory group
type Group struct {
	Hosts map[string]HostVars `yaml:"hosts" json:"hosts"`
}

// Document is the inventory object handed to the automation engine
type Document map[string]Group

// Document renders the full inventory
func (i *Inventory) Document() Document {
	return i.Subset(i.hosts...)
}

// Subset renders an inventory containing only the named hosts. Unknown names are skipped.
func (i *Inventory) Subset(hosts ...string) Document {
	group := Group{Hosts: make(map[string]HostVars)}
	for _, h := range hosts {
		e, ok := i.entries[h]
		if !ok {
			continue
		}
		group.Hosts[h] = e.vars()
	}
	return Document{constants.InventoryGroupAll: group}
}

// HostNames returns the sorted hosts of the "all" group
func (d Document) HostNames() []string {
	return utils.SortedKeys(d[constants.InventoryGroupAll].Hosts)
}

func (e Entry) vars() HostVars {
	vars := make(HostVars, len(e.Attributes)+2)
	for k, v := range e.Attributes {
		vars[k] = v
	}
	if e.MAC != "" {
		vars[constants.KeyMAC] = e.MAC
	}
	vars[constants.KeyManageVLANs] = e.ManageVLANs
	return vars
}

// String implements fmt.Stringer
func (e Entry) String() string {
	keys := make([]string, 0, len(e.Attributes))
	for k := range e.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s (mac=%s manage_vlans=%t attrs=%v)", e.HostName, e.MAC, e.ManageVLANs, keys)
}

func copyAttributes(attrs map[string]string) map[string]string {
	if attrs == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
