package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// TenantEventArgs is the job payload for a tenant lifecycle event. It
// carries a snapshot of the tenant so workers never read the tenant store.
type TenantEventArgs struct {
	Event      string `json:"event"`
	TenantID   string `json:"tenant_id"`
	Title      string `json:"title"`
	Domain     string `json:"domain"`
	Path       string `json:"path"`
	AdminEmail string `json:"admin_email"`
	Status     string `json:"status"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (TenantEventArgs) Kind() string { return "tenant.event" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a tenant event as an async job.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, tenant domain.Tenant) error {
	_, err := p.client.Insert(ctx, TenantEventArgs{
		Event:      string(event),
		TenantID:   tenant.ID,
		Title:      tenant.Title,
		Domain:     tenant.Domain,
		Path:       tenant.Path,
		AdminEmail: tenant.AdminEmail,
		Status:     string(tenant.Status),
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing tenant event job: %w", err)
	}
	return nil
}
