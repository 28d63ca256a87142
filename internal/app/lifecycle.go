package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// TenantAdmin exposes stored tenants and drives their lifecycle outside of
// duplication: suspending, deleting, and flagging tenants as duplicable.
type TenantAdmin struct {
	repo      domain.TenantRepository
	validator domain.TransitionValidator
	publisher domain.EventPublisher
}

// NewTenantAdmin creates a TenantAdmin with the given adapters.
func NewTenantAdmin(repo domain.TenantRepository, validator domain.TransitionValidator, publisher domain.EventPublisher) *TenantAdmin {
	return &TenantAdmin{repo: repo, validator: validator, publisher: publisher}
}

// Get retrieves a tenant by ID.
func (a *TenantAdmin) Get(ctx context.Context, id string) (domain.Tenant, error) {
	return a.repo.GetByID(ctx, id)
}

// List returns tenants matching filter.
func (a *TenantAdmin) List(ctx context.Context, filter domain.ListFilter) ([]domain.Tenant, error) {
	return a.repo.List(ctx, filter)
}

// Transition applies a lifecycle event to a tenant and publishes it.
func (a *TenantAdmin) Transition(ctx context.Context, id string, event domain.Event) (domain.Tenant, error) {
	tenant, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Tenant{}, err
	}

	next, err := a.validator.Apply(ctx, tenant.Status, event)
	if err != nil {
		return domain.Tenant{}, err
	}
	tenant.Status = next

	if err := a.repo.Update(ctx, tenant); err != nil {
		return domain.Tenant{}, fmt.Errorf("updating tenant: %w", err)
	}

	if err := a.publisher.Publish(ctx, event, tenant); err != nil {
		return domain.Tenant{}, fmt.Errorf("publishing event %q: %w", event, err)
	}

	return tenant, nil
}

// SetDuplicable sets the per-tenant eligibility flag.
func (a *TenantAdmin) SetDuplicable(ctx context.Context, id string, duplicable bool) (domain.Tenant, error) {
	tenant, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant.Duplicable == duplicable {
		return tenant, nil
	}

	tenant.Duplicable = duplicable
	if err := a.repo.Update(ctx, tenant); err != nil {
		return domain.Tenant{}, fmt.Errorf("updating tenant: %w", err)
	}
	return tenant, nil
}
