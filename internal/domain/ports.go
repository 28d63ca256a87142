package domain

import (
	"context"
	"log/slog"
)

// TenantRepository defines the persistence contract for tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant Tenant) error
	GetByID(ctx context.Context, id string) (Tenant, error)
	GetByAddress(ctx context.Context, domain, path string) (Tenant, error)
	List(ctx context.Context, filter ListFilter) ([]Tenant, error)
	Update(ctx context.Context, tenant Tenant) error
}

// ListFilter holds optional criteria for listing tenants.
type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// MemberRepository persists user associations of tenants.
type MemberRepository interface {
	AddMember(ctx context.Context, member Member) error
	ListMembers(ctx context.Context, tenantID string) ([]Member, error)
	CopyMembers(ctx context.Context, fromTenantID, toTenantID string) (int, error)
}

// TenantCatalog is the read-only view of tenants used to pick a source.
type TenantCatalog interface {
	List(ctx context.Context) ([]TenantSummary, error)
	IsEligible(ctx context.Context, tenantID string) (bool, error)
}

// DuplicationEngine performs the actual copy of a tenant. It is a single
// blocking operation; cleanup of partial state on failure is its own concern.
// transcript is never nil; it discards output when logging is disabled.
type DuplicationEngine interface {
	Duplicate(ctx context.Context, req DuplicationRequest, transcript *slog.Logger) (string, error)
}

// TokenVerifier checks the anti-forgery token carried by a submission.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) error
}

// Transcript is an open log resource recording one engine run.
type Transcript interface {
	Logger() *slog.Logger
	// URL returns where the transcript can be viewed, or "" if not published.
	URL() string
	Close() error
}

// TranscriptOpener acquires the transcript resource at path.
type TranscriptOpener interface {
	Open(ctx context.Context, path string) (Transcript, error)
}

// AssetStore holds per-tenant file assets.
type AssetStore interface {
	Copy(ctx context.Context, fromTenantID, toTenantID string) (int, error)
}

// EventPublisher defines the contract for emitting domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, tenant Tenant) error
}

// TransitionValidator checks lifecycle events against the current status.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}
