package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/neomorfeo/siteclone/internal/domain"
)

var labelPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// RequestValidator turns an untrusted submission into a DuplicationRequest.
//
// Rules run in a fixed order and the first failing rule decides the error:
// token, source, reserved word, domain, title, email, log path, eligibility.
// Callers rely on that precedence, so it must not become accumulation.
type RequestValidator struct {
	tokens  domain.TokenVerifier
	catalog domain.TenantCatalog
	logRoot string
}

// ValidatorOption configures a RequestValidator.
type ValidatorOption func(*RequestValidator)

// WithLogRoot confines transcript paths to the given directory. Without it,
// requests that enable logging fail with log-path-invalid.
func WithLogRoot(root string) ValidatorOption {
	return func(v *RequestValidator) { v.logRoot = root }
}

// NewRequestValidator creates a validator using the given token verifier and catalog.
func NewRequestValidator(tokens domain.TokenVerifier, catalog domain.TenantCatalog, opts ...ValidatorOption) *RequestValidator {
	v := &RequestValidator{tokens: tokens, catalog: catalog}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks sub against mode. It has no side effects: the same
// submission against the same platform state yields the same outcome.
func (v *RequestValidator) Validate(ctx context.Context, sub domain.Submission, mode domain.PlatformMode) (domain.DuplicationRequest, error) {
	if err := v.tokens.Verify(ctx, sub.Token); err != nil {
		return domain.DuplicationRequest{}, &domain.AuthorizationError{Err: err}
	}

	// "0" is what an unselected source picker submits.
	source := strings.TrimSpace(sub.Get(domain.FieldSource))
	if source == "" || source == "0" {
		return invalid(domain.CodeMissingFields, "Some fields are missing: choose the site to duplicate")
	}

	label := normalizeLabel(sub.Get(domain.FieldDomain))

	if mode.IsReserved(label) {
		return invalid(domain.CodeReservedWord, fmt.Sprintf(
			"The following words are reserved and cannot be used as a site address: %s",
			strings.Join(mode.ReservedWords, ", "),
		))
	}

	if label == "" {
		return invalid(domain.CodeDomainRequired, "Missing or invalid site address: use only letters, numbers and hyphens")
	}

	newDomain, newPath := deriveAddress(label, mode)

	title := strings.TrimSpace(sub.Get(domain.FieldTitle))
	if title == "" {
		return invalid(domain.CodeTitleRequired, "Missing site title")
	}

	rawEmail := sub.Get(domain.FieldEmail)
	if strings.TrimSpace(rawEmail) == "" {
		return invalid(domain.CodeEmailMissing, "Missing admin email")
	}
	email := sanitizeEmail(rawEmail)
	if !isEmail(email) {
		return invalid(domain.CodeEmailFormat, "Invalid admin email")
	}

	logging := domain.Logging{Enabled: sub.Flag(domain.FieldLog)}
	if logging.Enabled {
		logging.Path = strings.TrimSpace(sub.Get(domain.FieldLogPath))
		if !validLogPath(logging.Path, v.logRoot) {
			return invalid(domain.CodeLogPathInvalid, "The log path is missing or invalid")
		}
	}

	eligible, err := v.catalog.IsEligible(ctx, source)
	if err != nil && !errors.Is(err, domain.ErrTenantNotFound) {
		return domain.DuplicationRequest{}, fmt.Errorf("checking source eligibility: %w", err)
	}
	if !eligible {
		return invalid(domain.CodeSourceIneligible, fmt.Sprintf("Site %s cannot be duplicated", source))
	}

	return domain.DuplicationRequest{
		SourceTenantID:       source,
		DomainLabel:          label,
		NewDomain:            newDomain,
		NewPath:              newPath,
		Title:                title,
		AdminEmail:           email,
		CopyFiles:            sub.Flag(domain.FieldCopyFiles),
		KeepUserAssociations: sub.Flag(domain.FieldKeepUsers),
		Logging:              logging,
	}, nil
}

func invalid(code domain.ValidationCode, msg string) (domain.DuplicationRequest, error) {
	return domain.DuplicationRequest{}, &domain.ValidationError{Code: code, Message: msg}
}

// normalizeLabel lower-cases a well-formed label and drops anything else.
func normalizeLabel(raw string) string {
	if !labelPattern.MatchString(raw) {
		return ""
	}
	return strings.ToLower(raw)
}

// deriveAddress computes the new tenant's domain and path.
func deriveAddress(label string, mode domain.PlatformMode) (string, string) {
	basePath := mode.BasePath
	if basePath == "" {
		basePath = "/"
	}
	if mode.SubdomainInstall {
		return label + "." + strings.TrimPrefix(mode.BaseDomain, "www."), basePath
	}
	return mode.BaseDomain, basePath + label + "/"
}
