package app

import (
	"context"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// SourceSelection lists the tenants that may be duplicated and the one
// preselected for the caller, if any.
type SourceSelection struct {
	Sources  []domain.TenantSummary
	Selected string
}

// SourceSelector picks default duplication sources from the catalog.
type SourceSelector struct {
	catalog          domain.TenantCatalog
	autoSelectSingle bool
}

// NewSourceSelector creates a selector. With autoSelectSingle, a catalog
// holding exactly one eligible tenant preselects it.
func NewSourceSelector(catalog domain.TenantCatalog, autoSelectSingle bool) *SourceSelector {
	return &SourceSelector{catalog: catalog, autoSelectSingle: autoSelectSingle}
}

// Sources returns the eligible tenants. previous is honored as the default
// when it is still eligible. Returns a CatalogEmptyError when nothing can
// be duplicated.
func (s *SourceSelector) Sources(ctx context.Context, previous string) (SourceSelection, error) {
	all, err := s.catalog.List(ctx)
	if err != nil {
		return SourceSelection{}, err
	}

	var eligible []domain.TenantSummary
	for _, t := range all {
		if t.Eligible {
			eligible = append(eligible, t)
		}
	}
	if len(eligible) == 0 {
		return SourceSelection{}, &domain.CatalogEmptyError{}
	}

	sel := SourceSelection{Sources: eligible}
	switch {
	case s.autoSelectSingle && len(eligible) == 1:
		sel.Selected = eligible[0].ID
	case previous != "":
		for _, t := range eligible {
			if t.ID == previous {
				sel.Selected = previous
				break
			}
		}
	}
	return sel, nil
}
