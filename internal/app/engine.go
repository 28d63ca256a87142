package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// Compile-time check: CloneEngine implements domain.DuplicationEngine.
var _ domain.DuplicationEngine = (*CloneEngine)(nil)

// CloneEngine is the built-in DuplicationEngine. It provisions the new
// tenant in the tenant store, copies assets and members, and moves the
// tenant to "active". A failed step leaves earlier steps in place.
type CloneEngine struct {
	repo      domain.TenantRepository
	members   domain.MemberRepository
	assets    domain.AssetStore
	publisher domain.EventPublisher
	validator domain.TransitionValidator
}

// NewCloneEngine creates an engine with the given adapters.
func NewCloneEngine(
	repo domain.TenantRepository,
	members domain.MemberRepository,
	assets domain.AssetStore,
	publisher domain.EventPublisher,
	validator domain.TransitionValidator,
) *CloneEngine {
	return &CloneEngine{
		repo:      repo,
		members:   members,
		assets:    assets,
		publisher: publisher,
		validator: validator,
	}
}

// Duplicate provisions a copy of req.SourceTenantID and returns the new tenant id.
func (e *CloneEngine) Duplicate(ctx context.Context, req domain.DuplicationRequest, transcript *slog.Logger) (string, error) {
	source, err := e.repo.GetByID(ctx, req.SourceTenantID)
	if err != nil {
		return "", fmt.Errorf("loading source tenant %s: %w", req.SourceTenantID, err)
	}
	transcript.InfoContext(ctx, "source loaded", "tenant_id", source.ID, "address", source.Address())

	// Check address uniqueness before creating.
	if existing, err := e.repo.GetByAddress(ctx, req.NewDomain, req.NewPath); err == nil {
		transcript.WarnContext(ctx, "address taken", "tenant_id", existing.ID)
		return "", &domain.SiteConflictError{Domain: req.NewDomain, Path: req.NewPath}
	} else if !errors.Is(err, domain.ErrTenantNotFound) {
		return "", fmt.Errorf("checking address: %w", err)
	}

	tenant := domain.NewTenant(generateID(), req.Title, req.NewDomain, req.NewPath, req.AdminEmail)
	if err := e.repo.Create(ctx, tenant); err != nil {
		return "", fmt.Errorf("creating tenant: %w", err)
	}
	transcript.InfoContext(ctx, "tenant created", "tenant_id", tenant.ID, "address", tenant.Address())

	if req.CopyFiles {
		n, err := e.assets.Copy(ctx, source.ID, tenant.ID)
		if err != nil {
			return "", fmt.Errorf("copying files: %w", err)
		}
		transcript.InfoContext(ctx, "files copied", "count", n)
	}

	if req.KeepUserAssociations {
		n, err := e.members.CopyMembers(ctx, source.ID, tenant.ID)
		if err != nil {
			return "", fmt.Errorf("copying users: %w", err)
		}
		transcript.InfoContext(ctx, "users copied", "count", n)
	}

	if err := e.members.AddMember(ctx, domain.Member{
		TenantID: tenant.ID,
		Email:    req.AdminEmail,
		Role:     domain.RoleAdministrator,
	}); err != nil {
		return "", fmt.Errorf("adding administrator: %w", err)
	}
	transcript.InfoContext(ctx, "administrator granted", "email", req.AdminEmail)

	status, err := e.validator.Apply(ctx, tenant.Status, domain.EventProvisionComplete)
	if err != nil {
		return "", err
	}
	tenant.Status = status

	if err := e.repo.Update(ctx, tenant); err != nil {
		return "", fmt.Errorf("updating tenant: %w", err)
	}

	if err := e.publisher.Publish(ctx, domain.EventProvisionComplete, tenant); err != nil {
		return "", fmt.Errorf("publishing event %q: %w", domain.EventProvisionComplete, err)
	}
	transcript.InfoContext(ctx, "tenant activated", "tenant_id", tenant.ID, "status", tenant.Status)

	return tenant.ID, nil
}
