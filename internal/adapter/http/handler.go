package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/siteclone/internal/app"
	"github.com/neomorfeo/siteclone/internal/domain"
)

// TokenIssuer hands out anti-forgery tokens for duplication submissions.
type TokenIssuer interface {
	Issue() string
}

// Services bundles what the API handlers call into.
type Services struct {
	Admin        *app.TenantAdmin
	Orchestrator *app.Orchestrator
	Sources      *app.SourceSelector
	Tokens       TokenIssuer
	Mode         domain.PlatformMode
	// Scheme prefixes the site URLs returned after a duplication. Defaults to https.
	Scheme string
	// OnChange is called after any write that may change the catalog.
	OnChange func()
}

func (s Services) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

// TenantResponse is the API representation of a tenant.
type TenantResponse struct {
	ID         string `json:"id" doc:"Unique identifier"`
	Title      string `json:"title" doc:"Site title"`
	Domain     string `json:"domain" doc:"Host name"`
	Path       string `json:"path" doc:"Path below the host, with leading and trailing slash"`
	AdminEmail string `json:"admin_email" doc:"Administrator email"`
	Status     string `json:"status" doc:"Lifecycle state"`
	Duplicable bool   `json:"duplicable" doc:"Per-tenant duplication flag"`
	Eligible   bool   `json:"eligible" doc:"Whether the tenant can currently be used as a duplication source"`
	CreatedAt  string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt  string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toTenantResponse(t domain.Tenant, mode domain.PlatformMode) TenantResponse {
	return TenantResponse{
		ID:         t.ID,
		Title:      t.Title,
		Domain:     t.Domain,
		Path:       t.Path,
		AdminEmail: t.AdminEmail,
		Status:     string(t.Status),
		Duplicable: t.Duplicable,
		Eligible:   mode.Eligible(t),
		CreatedAt:  t.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  t.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// --- Get Tenant ---

type GetTenantInput struct {
	ID string `path:"id" doc:"Tenant ID"`
}

type TenantOutput struct {
	Body TenantResponse
}

// --- List Tenants ---

type ListTenantsInput struct {
	Status string `query:"status" required:"false" doc:"Filter by status"`
	Limit  int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListTenantsOutput struct {
	Body []TenantResponse
}

// --- Transition ---

type TransitionInput struct {
	ID   string `path:"id" doc:"Tenant ID"`
	Body struct {
		Event string `json:"event" doc:"Lifecycle event to trigger" enum:"provision_complete,suspend,reactivate,delete,deletion_complete"`
	}
}

// --- Duplicable flag ---

type SetDuplicableInput struct {
	ID   string `path:"id" doc:"Tenant ID"`
	Body struct {
		Duplicable bool `json:"duplicable" doc:"Allow the tenant as a duplication source"`
	}
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, s Services) {
	registerTenants(api, s)
	registerDuplications(api, s)
}

func registerTenants(api huma.API, s Services) {
	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}",
		Summary:     "Get a tenant by ID",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantInput) (*TenantOutput, error) {
		tenant, err := s.Admin.Get(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TenantOutput{Body: toTenantResponse(tenant, s.Mode)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants",
		Summary:     "List tenants",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *ListTenantsInput) (*ListTenantsOutput, error) {
		filter := domain.ListFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" {
			st := domain.Status(input.Status)
			filter.Status = &st
		}

		tenants, err := s.Admin.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]TenantResponse, len(tenants))
		for i, t := range tenants {
			resp[i] = toTenantResponse(t, s.Mode)
		}
		return &ListTenantsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-tenant",
		Method:      http.MethodPost,
		Path:        "/api/v1/tenants/{id}/events",
		Summary:     "Trigger a lifecycle event",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *TransitionInput) (*TenantOutput, error) {
		tenant, err := s.Admin.Transition(ctx, input.ID, domain.Event(input.Body.Event))
		if err != nil {
			return nil, toHumaError(err)
		}
		s.changed()
		return &TenantOutput{Body: toTenantResponse(tenant, s.Mode)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-tenant-duplicable",
		Method:      http.MethodPut,
		Path:        "/api/v1/tenants/{id}/duplicable",
		Summary:     "Allow or forbid duplicating a tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *SetDuplicableInput) (*TenantOutput, error) {
		tenant, err := s.Admin.SetDuplicable(ctx, input.ID, input.Body.Duplicable)
		if err != nil {
			return nil, toHumaError(err)
		}
		s.changed()
		return &TenantOutput{Body: toTenantResponse(tenant, s.Mode)}, nil
	})
}

// ValidationProblem is the error body of a rejected duplication form. Code
// tells clients which rule failed.
type ValidationProblem struct {
	Status int    `json:"status" doc:"HTTP status code"`
	Title  string `json:"title" doc:"Short summary"`
	Code   string `json:"code" doc:"Failed validation rule"`
	Detail string `json:"detail" doc:"Message to show to the user"`
}

func (p *ValidationProblem) Error() string { return p.Detail }

// GetStatus implements huma.StatusError.
func (p *ValidationProblem) GetStatus() int { return p.Status }

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	var authErr *domain.AuthorizationError
	if errors.As(err, &authErr) {
		return huma.Error403Forbidden(authErr.Error())
	}

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return &ValidationProblem{
			Status: http.StatusUnprocessableEntity,
			Title:  http.StatusText(http.StatusUnprocessableEntity),
			Code:   string(valErr.Code),
			Detail: valErr.Message,
		}
	}

	var conflictErr *domain.SiteConflictError
	if errors.As(err, &conflictErr) {
		return huma.Error409Conflict(conflictErr.Error())
	}

	var emptyErr *domain.CatalogEmptyError
	if errors.As(err, &emptyErr) {
		return huma.Error404NotFound(emptyErr.Error())
	}

	var engineErr *domain.EngineError
	if errors.As(err, &engineErr) {
		return huma.Error500InternalServerError(engineErr.Error())
	}

	if errors.Is(err, domain.ErrTenantNotFound) {
		return huma.Error404NotFound("tenant not found")
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
