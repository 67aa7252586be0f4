package models

import (
	"strings"

	"github.com/braunma/netans-reconciler/internal/constants"
)

// LinkLocation identifies the physical switch port a logical port is wired to
type LinkLocation struct {
	SwitchMAC  string `yaml:"switch_id,omitempty" json:"switch_id,omitempty"`
	SwitchName string `yaml:"switch_info,omitempty" json:"switch_info,omitempty"`
	SwitchPort string `yaml:"port_id,omitempty" json:"port_id,omitempty"`
}

// IsEmpty reports whether no link-layer data is present at all
func (l LinkLocation) IsEmpty() bool {
	return strings.TrimSpace(l.SwitchMAC) == "" &&
		strings.TrimSpace(l.SwitchName) == "" &&
		strings.TrimSpace(l.SwitchPort) == ""
}

// BindingProfile carries the framework's binding hints for a port
type BindingProfile struct {
	LocalLinkInformation []LinkLocation `yaml:"local_link_information,omitempty" json:"local_link_information,omitempty"`
}

// SubPort represents one VLAN subport of a trunk
type SubPort struct {
	PortID           string         `yaml:"port_id" json:"port_id"`
	SegmentationType string         `yaml:"segmentation_type,omitempty" json:"segmentation_type,omitempty"`
	SegmentationID   SegmentationID `yaml:"segmentation_id" json:"segmentation_id"`
}

// TrunkDetails describes a trunk whose parent is this port
type TrunkDetails struct {
	TrunkID  string    `yaml:"trunk_id" json:"trunk_id"`
	SubPorts []SubPort `yaml:"sub_ports,omitempty" json:"sub_ports,omitempty"`
}

// Port represents a logical port handed over by the host framework
type Port struct {
	ID        string         `yaml:"id" json:"id" validate:"required"`
	NetworkID string         `yaml:"network_id,omitempty" json:"network_id,omitempty"`
	VNICType  string         `yaml:"binding:vnic_type,omitempty" json:"binding:vnic_type,omitempty"`
	VIFType   string         `yaml:"binding:vif_type,omitempty" json:"binding:vif_type,omitempty"`
	HostID    string         `yaml:"binding:host_id,omitempty" json:"binding:host_id,omitempty"`
	Profile   BindingProfile `yaml:"binding:profile,omitempty" json:"binding:profile,omitempty"`
	Trunk     *TrunkDetails  `yaml:"trunk_details,omitempty" json:"trunk_details,omitempty"`
}

// IsSupported reports whether the port is a baremetal port this reconciler handles
func (p *Port) IsSupported() bool {
	return p.VNICType == constants.VNICTypeBaremetal
}

// IsBound reports whether the port is bound by this reconciler
func (p *Port) IsBound() bool {
	return p.IsSupported() && p.VIFType == constants.VIFTypeOther
}

// IsTrunk reports whether the port is the parent of a trunk
func (p *Port) IsTrunk() bool {
	return p.Trunk != nil
}

// Link returns the first local link entry, if any
func (p *Port) Link() (LinkLocation, bool) {
	if len(p.Profile.LocalLinkInformation) == 0 {
		return LinkLocation{}, false
	}
	link := p.Profile.LocalLinkInformation[0]
	if link.IsEmpty() {
		return LinkLocation{}, false
	}
	return link, true
}

// Binding is the result reported back to the framework's segment selection
type Binding struct {
	SegmentID  string            `yaml:"segment_id" json:"segment_id"`
	VIFType    string            `yaml:"vif_type" json:"vif_type"`
	VIFDetails map[string]string `yaml:"vif_details,omitempty" json:"vif_details,omitempty"`
}
