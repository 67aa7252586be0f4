package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/braunma/netans-reconciler/internal/constants"
)

// SegmentationID is the provider-exposed VLAN identifier of a network.
// Frameworks send it as a number, a string or null; it is kept verbatim.
type SegmentationID string

// UnmarshalJSON accepts numbers, strings and null
func (s *SegmentationID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("invalid segmentation id: %w", err)
		}
		*s = SegmentationID(strings.TrimSpace(str))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("invalid segmentation id %s: %w", raw, err)
	}
	*s = SegmentationID(num.String())
	return nil
}

// IsSet reports whether an explicit, non-zero segmentation ID was provided
func (s SegmentationID) IsSet() bool {
	v := strings.TrimSpace(string(s))
	return v != "" && v != "0"
}

// Network represents a logical network handed over by the host framework
type Network struct {
	ID              string         `yaml:"id" json:"id" validate:"required"`
	Name            string         `yaml:"name,omitempty" json:"name,omitempty"`
	NetworkType     string         `yaml:"provider:network_type" json:"provider:network_type"`
	PhysicalNetwork string         `yaml:"provider:physical_network,omitempty" json:"provider:physical_network,omitempty"`
	SegmentationID  SegmentationID `yaml:"provider:segmentation_id,omitempty" json:"provider:segmentation_id,omitempty"`
}

// IsVLAN reports whether the network is a provider VLAN network
func (n *Network) IsVLAN() bool {
	return strings.EqualFold(n.NetworkType, constants.NetworkTypeVLAN)
}

// Segment represents a network segment offered for binding
type Segment struct {
	ID              string         `yaml:"id" json:"id" validate:"required"`
	NetworkType     string         `yaml:"network_type,omitempty" json:"network_type,omitempty"`
	PhysicalNetwork string         `yaml:"physical_network,omitempty" json:"physical_network,omitempty"`
	SegmentationID  SegmentationID `yaml:"segmentation_id,omitempty" json:"segmentation_id,omitempty"`
}
