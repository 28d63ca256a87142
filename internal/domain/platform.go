package domain

import "slices"

// DuplicablePolicy controls which tenants may serve as a duplication source.
type DuplicablePolicy string

const (
	// DuplicableAll allows every live tenant to be duplicated.
	DuplicableAll DuplicablePolicy = "all"
	// DuplicableSelected allows only tenants whose Duplicable flag is set.
	DuplicableSelected DuplicablePolicy = "selected"
)

// DefaultReservedWords are the path segments a path-mode platform refuses
// as new site labels. Order is preserved in error messages.
var DefaultReservedWords = []string{"page", "comments", "blog", "files", "feed"}

// PlatformMode is the platform configuration read at validation time.
// It is passed explicitly so validation never depends on ambient state.
type PlatformMode struct {
	SubdomainInstall bool
	BaseDomain       string
	BasePath         string
	// ReservedWords only apply when SubdomainInstall is false.
	ReservedWords []string
	Duplicables   DuplicablePolicy
}

// IsReserved reports whether label collides with a reserved word.
// Always false on subdomain installs.
func (m PlatformMode) IsReserved(label string) bool {
	if m.SubdomainInstall {
		return false
	}
	return slices.Contains(m.ReservedWords, label)
}

// Eligible applies the duplicable policy to a tenant. Tenants still being
// provisioned or on their way out are never eligible.
func (m PlatformMode) Eligible(t Tenant) bool {
	if t.Removed() || t.Status == StatusCreating {
		return false
	}
	if m.Duplicables == DuplicableSelected {
		return t.Duplicable
	}
	return true
}
