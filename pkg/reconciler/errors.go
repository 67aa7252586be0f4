package reconciler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/braunma/netans-reconciler/pkg/client"
	"github.com/braunma/netans-reconciler/pkg/models"
)

// ErrInvalidSegmentation is returned when a segmentation ID is not an integer
var ErrInvalidSegmentation = errors.New("invalid segmentation id")

// LinkInfoMissingError is returned when a port that must be bound carries no usable link location
type LinkInfoMissingError struct {
	PortID string
	Reason string
}

func (e *LinkInfoMissingError) Error() string {
	return fmt.Sprintf("port %s: local link information missing: %s", e.PortID, e.Reason)
}

// UnresolvedSwitchError is returned when a link location names no known switch
type UnresolvedSwitchError struct {
	PortID string
	Link   models.LinkLocation
}

func (e *UnresolvedSwitchError) Error() string {
	return fmt.Sprintf("port %s: switch %q (mac %q) is not in inventory", e.PortID, e.Link.SwitchName, e.Link.SwitchMAC)
}

// FanOutError aggregates the per-host failures of a fleet-wide operation
type FanOutError struct {
	Operation string
	NetworkID string
	Failures  []*client.ExecutionError
}

func (e *FanOutError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("%s for network %s failed on %d host(s): %s",
		e.Operation, e.NetworkID, len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes the per-host errors to errors.As
func (e *FanOutError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Hosts returns the failing hosts in order
func (e *FanOutError) Hosts() []string {
	var hosts []string
	for _, f := range e.Failures {
		hosts = append(hosts, f.Hosts...)
	}
	return hosts
}
