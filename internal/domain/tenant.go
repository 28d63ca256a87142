package domain

import "time"

// Status represents the lifecycle state of a tenant.
type Status string

const (
	StatusCreating  Status = "creating"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusDeleting  Status = "deleting"
	StatusDeleted   Status = "deleted"
)

// Event represents an action that triggers a state transition.
type Event string

const (
	EventProvisionComplete Event = "provision_complete"
	EventSuspend           Event = "suspend"
	EventReactivate        Event = "reactivate"
	EventDelete            Event = "delete"
	EventDeletionComplete  Event = "deletion_complete"
)

// Transition defines a valid state change: an event moves a tenant from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid state changes in the tenant lifecycle.
// This is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventProvisionComplete, Src: StatusCreating, Dst: StatusActive},
	{Event: EventSuspend, Src: StatusActive, Dst: StatusSuspended},
	{Event: EventReactivate, Src: StatusSuspended, Dst: StatusActive},
	{Event: EventDelete, Src: StatusActive, Dst: StatusDeleting},
	{Event: EventDelete, Src: StatusSuspended, Dst: StatusDeleting},
	{Event: EventDeletionComplete, Src: StatusDeleting, Dst: StatusDeleted},
}

// Tenant is a site hosted on the platform.
type Tenant struct {
	ID         string
	Title      string
	Domain     string
	Path       string
	AdminEmail string
	Status     Status
	// Duplicable is the per-tenant eligibility flag, consulted when the
	// platform only allows a selected subset of tenants to be duplicated.
	Duplicable bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewTenant creates a tenant in the initial "creating" state.
func NewTenant(id, title, domain, path, adminEmail string) Tenant {
	now := time.Now().UTC()
	return Tenant{
		ID:         id,
		Title:      title,
		Domain:     domain,
		Path:       path,
		AdminEmail: adminEmail,
		Status:     StatusCreating,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Address returns the domain and path joined, e.g. "example.com/shop/".
func (t Tenant) Address() string {
	return t.Domain + t.Path
}

// Removed reports whether the tenant is on its way out of the platform.
func (t Tenant) Removed() bool {
	return t.Status == StatusDeleting || t.Status == StatusDeleted
}

// TenantSummary is the catalog view of a tenant used for source selection.
type TenantSummary struct {
	ID       string
	Domain   string
	Path     string
	Eligible bool
}

// Label returns the display form used by source pickers: domain and path
// without the trailing slash.
func (s TenantSummary) Label() string {
	addr := s.Domain + s.Path
	if len(addr) > 0 && addr[len(addr)-1] == '/' {
		return addr[:len(addr)-1]
	}
	return addr
}

// Role names a member's capability level on a tenant.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleEditor        Role = "editor"
	RoleSubscriber    Role = "subscriber"
)

// Member associates a user, identified by email, with a tenant.
type Member struct {
	TenantID string
	Email    string
	Role     Role
}
