package tasks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/braunma/netans-reconciler/internal/constants"
)

// VlanID is a segmentation identifier as exposed by the provider
type VlanID int

// DefaultVLAN is the sentinel used when no segmentation ID is given
const DefaultVLAN VlanID = constants.DefaultVLANID

// ParseVlanID converts a provider segmentation ID. Empty and zero values
// map to the default VLAN sentinel.
func ParseVlanID(raw string) (VlanID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultVLAN, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("segmentation id %q is not an integer: %w", raw, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("segmentation id %d is negative", n)
	}
	if n == 0 {
		return DefaultVLAN, nil
	}
	return VlanID(n), nil
}

// IsDefault reports whether this is the default VLAN sentinel
func (v VlanID) IsDefault() bool {
	return v == DefaultVLAN
}

// Name returns the switch-side VLAN name
func (v VlanID) Name() string {
	if v.IsDefault() {
		return constants.DefaultVLANName
	}
	return constants.VLANNamePrefix + strconv.Itoa(int(v))
}

// String implements fmt.Stringer
func (v VlanID) String() string {
	return strconv.Itoa(int(v))
}
