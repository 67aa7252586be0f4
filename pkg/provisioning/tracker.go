// Package provisioning tracks per-port provisioning dependencies for callers
// that have no host framework to signal completion to.
package provisioning

import (
	"sync"
	"time"

	"github.com/braunma/netans-reconciler/internal/constants"
)

// State of a port's provisioning dependency
type State string

const (
	StateUnknown  State = "unknown"
	StatePending  State = "pending"
	StateComplete State = "complete"
)

// Provisioner is the provisioning-dependency API of the host framework
type Provisioner interface {
	AddDependency(resourceID string)
	MarkComplete(resourceID string)
}

// Status is the tracked state of one resource
type Status struct {
	ResourceID string    `json:"resource_id"`
	Entity     string    `json:"entity"`
	State      State     `json:"state"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Tracker is an in-memory Provisioner
type Tracker struct {
	mu     sync.RWMutex
	status map[string]Status
	now    func() time.Time
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		status: make(map[string]Status),
		now:    time.Now,
	}
}

// AddDependency marks the resource pending until MarkComplete is called
func (t *Tracker) AddDependency(resourceID string) {
	t.set(resourceID, StatePending)
}

// MarkComplete releases the resource's dependency
func (t *Tracker) MarkComplete(resourceID string) {
	t.set(resourceID, StateComplete)
}

// State returns the resource's state, StateUnknown if never seen
func (t *Tracker) State(resourceID string) State {
	return t.Status(resourceID).State
}

// Status returns the full tracked status of a resource
func (t *Tracker) Status(resourceID string) Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if s, ok := t.status[resourceID]; ok {
		return s
	}
	return Status{ResourceID: resourceID, Entity: constants.ProvisioningEntity, State: StateUnknown}
}

// Forget drops a resource, used when its port is deleted
func (t *Tracker) Forget(resourceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.status, resourceID)
}

func (t *Tracker) set(resourceID string, state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status[resourceID] = Status{
		ResourceID: resourceID,
		Entity:     constants.ProvisioningEntity,
		State:      state,
		UpdatedAt:  t.now(),
	}
}
