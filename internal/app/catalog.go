package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// Compile-time check: Catalog implements domain.TenantCatalog.
var _ domain.TenantCatalog = (*Catalog)(nil)

// Catalog exposes stored tenants with the platform's duplicable policy applied.
type Catalog struct {
	repo   domain.TenantRepository
	policy domain.DuplicablePolicy
}

// NewCatalog creates a catalog over repo using the given policy.
func NewCatalog(repo domain.TenantRepository, policy domain.DuplicablePolicy) *Catalog {
	return &Catalog{repo: repo, policy: policy}
}

// List returns every tenant with its eligibility flag.
func (c *Catalog) List(ctx context.Context) ([]domain.TenantSummary, error) {
	tenants, err := c.repo.List(ctx, domain.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}

	mode := domain.PlatformMode{Duplicables: c.policy}
	out := make([]domain.TenantSummary, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, domain.TenantSummary{
			ID:       t.ID,
			Domain:   t.Domain,
			Path:     t.Path,
			Eligible: mode.Eligible(t),
		})
	}
	return out, nil
}

// IsEligible reports whether tenantID may be duplicated.
func (c *Catalog) IsEligible(ctx context.Context, tenantID string) (bool, error) {
	t, err := c.repo.GetByID(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return domain.PlatformMode{Duplicables: c.policy}.Eligible(t), nil
}
