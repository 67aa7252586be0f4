package tasks

import "fmt"

// Kind is one of the fixed operations an automation role implements
type Kind int

const (
	CreateVLAN Kind = iota + 1
	DeleteVLAN
	UpdateAccessPort
	DeletePort
	ConfigureTrunkPort
)

// Kinds lists every supported operation
var Kinds = []Kind{CreateVLAN, DeleteVLAN, UpdateAccessPort, DeletePort, ConfigureTrunkPort}

// String returns the role task file implementing the operation
func (k Kind) String() string {
	switch k {
	case CreateVLAN:
		return "create_vlan"
	case DeleteVLAN:
		return "delete_vlan"
	case UpdateAccessPort:
		return "update_access_port"
	case DeletePort:
		return "delete_port"
	case ConfigureTrunkPort:
		return "configure_trunk_port"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsPortScoped reports whether the operation targets a single switch port
func (k Kind) IsPortScoped() bool {
	switch k {
	case UpdateAccessPort, DeletePort, ConfigureTrunkPort:
		return true
	default:
		return false
	}
}

// ParseKind converts a role task name back to a Kind
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown task kind %q", s)
}
