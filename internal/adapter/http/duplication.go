package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// --- Token ---

type TokenOutput struct {
	Body struct {
		Token string `json:"token" doc:"Anti-forgery token to send as X-Duplication-Token"`
	}
}

// --- Sources ---

type SourcesInput struct {
	Previous string `query:"id" required:"false" doc:"Previously chosen source, kept selected while still eligible"`
}

type SourceResponse struct {
	ID     string `json:"id" doc:"Tenant ID"`
	Label  string `json:"label" doc:"Domain and path without trailing slash"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

type SourcesOutput struct {
	Body struct {
		Sources  []SourceResponse `json:"sources" doc:"Tenants that may be duplicated"`
		Selected string           `json:"selected,omitempty" doc:"Preselected source"`
	}
}

// --- Duplicate ---

// DuplicationForm carries the raw form fields. Values are validated by the
// orchestrator, not by the schema, so the failing rule can be reported.
type DuplicationForm struct {
	Source    string `json:"source,omitempty" doc:"Source tenant ID"`
	Domain    string `json:"domain,omitempty" doc:"Label of the new site (subdomain or path segment)"`
	Title     string `json:"title,omitempty" doc:"Title of the new site"`
	Email     string `json:"email,omitempty" doc:"Administrator email of the new site"`
	CopyFiles string `json:"copy_files,omitempty" doc:"\"yes\" to copy uploaded files"`
	KeepUsers string `json:"keep_users,omitempty" doc:"\"yes\" to keep user associations"`
	Log       string `json:"log,omitempty" doc:"\"yes\" to record a transcript"`
	LogPath   string `json:"log-path,omitempty" doc:"Absolute path of the transcript file"`
}

func (f DuplicationForm) submission(token string) domain.Submission {
	return domain.Submission{
		Token: token,
		Fields: map[string]string{
			domain.FieldSource:    f.Source,
			domain.FieldDomain:    f.Domain,
			domain.FieldTitle:     f.Title,
			domain.FieldEmail:     f.Email,
			domain.FieldCopyFiles: f.CopyFiles,
			domain.FieldKeepUsers: f.KeepUsers,
			domain.FieldLog:       f.Log,
			domain.FieldLogPath:   f.LogPath,
		},
	}
}

type DuplicateInput struct {
	Token string `header:"X-Duplication-Token" doc:"Token from GET /api/v1/duplications/token"`
	Body  DuplicationForm
}

type DuplicationResponse struct {
	TenantID     string `json:"tenant_id" doc:"ID of the new tenant"`
	Message      string `json:"message"`
	Domain       string `json:"domain"`
	Path         string `json:"path"`
	SiteURL      string `json:"site_url"`
	DashboardURL string `json:"dashboard_url"`
	CustomizeURL string `json:"customize_url"`
	LogURL       string `json:"log_url,omitempty" doc:"Transcript location, when one was recorded and published"`
}

type DuplicateOutput struct {
	Body DuplicationResponse
}

func (s Services) siteURL(domainName, path string) string {
	scheme := s.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + domainName + path
}

func registerDuplications(api huma.API, s Services) {
	huma.Register(api, huma.Operation{
		OperationID: "issue-duplication-token",
		Method:      http.MethodGet,
		Path:        "/api/v1/duplications/token",
		Summary:     "Issue an anti-forgery token for a duplication",
		Tags:        []string{"Duplications"},
	}, func(_ context.Context, _ *struct{}) (*TokenOutput, error) {
		out := &TokenOutput{}
		out.Body.Token = s.Tokens.Issue()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-duplication-sources",
		Method:      http.MethodGet,
		Path:        "/api/v1/duplications/sources",
		Summary:     "List tenants that can be duplicated",
		Tags:        []string{"Duplications"},
	}, func(ctx context.Context, input *SourcesInput) (*SourcesOutput, error) {
		sel, err := s.Sources.Sources(ctx, input.Previous)
		if err != nil {
			return nil, toHumaError(err)
		}

		out := &SourcesOutput{}
		out.Body.Selected = sel.Selected
		out.Body.Sources = make([]SourceResponse, len(sel.Sources))
		for i, t := range sel.Sources {
			out.Body.Sources[i] = SourceResponse{ID: t.ID, Label: t.Label(), Domain: t.Domain, Path: t.Path}
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "duplicate-tenant",
		Method:        http.MethodPost,
		Path:          "/api/v1/duplications",
		Summary:       "Duplicate a tenant into a new site",
		Tags:          []string{"Duplications"},
		DefaultStatus: http.StatusOK,
	}, func(ctx context.Context, input *DuplicateInput) (*DuplicateOutput, error) {
		result := s.Orchestrator.Run(ctx, input.Body.submission(input.Token), s.Mode)
		if !result.OK() {
			return nil, toHumaError(result.Failure.Err)
		}
		s.changed()

		ok := result.Success
		site := s.siteURL(ok.Domain, ok.Path)
		return &DuplicateOutput{Body: DuplicationResponse{
			TenantID:     ok.NewTenantID,
			Message:      ok.Message,
			Domain:       ok.Domain,
			Path:         ok.Path,
			SiteURL:      site,
			DashboardURL: site + "admin/",
			CustomizeURL: site + "admin/customize",
			LogURL:       ok.LogURL,
		}}, nil
	})
}
