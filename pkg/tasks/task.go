// Package tasks builds the abstract task descriptions sent to the
// automation engine: which role task to run, on which host, with which
// variables.
package tasks

import (
	"fmt"
)

// Variable names understood by the automation role
const (
	VarVlanID          = "vlan_id"
	VarVlanName        = "vlan_name"
	VarPortName        = "port_name"
	VarPortDescription = "port_description"
	VarTrunkedVLANs    = "trunked_vlans"
)

// Variables is one of the fixed variable records below
type Variables interface {
	// Fields renders the record to the role's variable map
	Fields() map[string]interface{}
	isVariables()
}

// VLANVars are the variables of create_vlan and delete_vlan
type VLANVars struct {
	VlanID   VlanID
	VlanName string
}

// Fields implements Variables
func (v VLANVars) Fields() map[string]interface{} {
	return map[string]interface{}{
		VarVlanID:   int(v.VlanID),
		VarVlanName: v.VlanName,
	}
}

// AccessPortVars are the variables of update_access_port
type AccessPortVars struct {
	VlanID          VlanID
	PortName        string
	PortDescription string
}

// Fields implements Variables
func (v AccessPortVars) Fields() map[string]interface{} {
	return map[string]interface{}{
		VarVlanID:          int(v.VlanID),
		VarPortName:        v.PortName,
		VarPortDescription: v.PortDescription,
	}
}

// PortVars are the variables of delete_port
type PortVars struct {
	PortName        string
	PortDescription string
}

// Fields implements Variables
func (v PortVars) Fields() map[string]interface{} {
	return map[string]interface{}{
		VarPortName:        v.PortName,
		VarPortDescription: v.PortDescription,
	}
}

// TrunkPortVars are the variables of configure_trunk_port
type TrunkPortVars struct {
	VlanID          VlanID
	TrunkedVLANs    []VlanID
	PortName        string
	PortDescription string
}

// Fields implements Variables
func (v TrunkPortVars) Fields() map[string]interface{} {
	trunked := make([]int, 0, len(v.TrunkedVLANs))
	for _, id := range v.TrunkedVLANs {
		trunked = append(trunked, int(id))
	}
	return map[string]interface{}{
		VarVlanID:          int(v.VlanID),
		VarTrunkedVLANs:    trunked,
		VarPortName:        v.PortName,
		VarPortDescription: v.PortDescription,
	}
}

func (VLANVars) isVariables()       {}
func (AccessPortVars) isVariables() {}
func (PortVars) isVariables()       {}
func (TrunkPortVars) isVariables()  {}

// Task is one unit of work for one host
type Task struct {
	Kind       Kind
	TargetHost string
	Vars       Variables
}

// String implements fmt.Stringer
func (t Task) String() string {
	return fmt.Sprintf("%s@%s", t.Kind, t.TargetHost)
}

// Build constructs the task for an operation. Port-less kinds ignore
// switchPort; VLAN-less kinds ignore vlan.
func Build(kind Kind, vlan VlanID, targetHost, switchPort string) Task {
	task := Task{Kind: kind, TargetHost: targetHost}

	switch kind {
	case CreateVLAN, DeleteVLAN:
		task.Vars = VLANVars{VlanID: vlan, VlanName: vlan.Name()}
	case UpdateAccessPort:
		task.Vars = AccessPortVars{VlanID: vlan, PortName: switchPort, PortDescription: switchPort}
	case DeletePort:
		task.Vars = PortVars{PortName: switchPort, PortDescription: switchPort}
	case ConfigureTrunkPort:
		task.Vars = TrunkPortVars{VlanID: vlan, TrunkedVLANs: []VlanID{}, PortName: switchPort, PortDescription: switchPort}
	default:
		panic(fmt.Sprintf("tasks: unhandled kind %d", int(kind)))
	}

	return task
}

// BuildTrunk constructs a configure_trunk_port task with a native VLAN and
// the ordered list of VLANs trunked on top of it
func BuildTrunk(targetHost, switchPort string, native VlanID, trunked []VlanID) Task {
	task := Build(ConfigureTrunkPort, native, targetHost, switchPort)
	vars := task.Vars.(TrunkPortVars)
	vars.TrunkedVLANs = append(vars.TrunkedVLANs, trunked...)
	task.Vars = vars
	return task
}

// CreateVLANTask is shorthand for Build(CreateVLAN, ...)
func CreateVLANTask(host string, vlan VlanID) Task {
	return Build(CreateVLAN, vlan, host, "")
}

// DeleteVLANTask is shorthand for Build(DeleteVLAN, ...)
func DeleteVLANTask(host string, vlan VlanID) Task {
	return Build(DeleteVLAN, vlan, host, "")
}

// AccessPortTask is shorthand for Build(UpdateAccessPort, ...)
func AccessPortTask(host, switchPort string, vlan VlanID) Task {
	return Build(UpdateAccessPort, vlan, host, switchPort)
}

// DeletePortTask is shorthand for Build(DeletePort, ...)
func DeletePortTask(host, switchPort string) Task {
	return Build(DeletePort, 0, host, switchPort)
}
