package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// SuccessMessage is reported with every successful duplication.
const SuccessMessage = "Site duplicated"

var discardTranscript = slog.New(slog.DiscardHandler)

// Orchestrator sequences validation, transcript acquisition and the engine
// call, and owns the success/failure contract returned to callers.
type Orchestrator struct {
	validator   *RequestValidator
	engine      domain.DuplicationEngine
	transcripts domain.TranscriptOpener
	logger      *slog.Logger
}

// NewOrchestrator creates an orchestrator. A nil logger uses slog.Default.
func NewOrchestrator(validator *RequestValidator, engine domain.DuplicationEngine, transcripts domain.TranscriptOpener, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		validator:   validator,
		engine:      engine,
		transcripts: transcripts,
		logger:      logger,
	}
}

// Run validates sub and, if valid, duplicates the source tenant.
// The engine is never called for an invalid submission, and is called at
// most once per Run.
func (o *Orchestrator) Run(ctx context.Context, sub domain.Submission, mode domain.PlatformMode) domain.ProvisioningResult {
	req, err := o.validator.Validate(ctx, sub, mode)
	if err != nil {
		o.logger.WarnContext(ctx, "duplication rejected",
			"source", sub.Get(domain.FieldSource),
			"code", errorCode(err),
			"error", err,
		)
		return domain.Failed(err)
	}
	return o.provision(ctx, req)
}

func (o *Orchestrator) provision(ctx context.Context, req domain.DuplicationRequest) domain.ProvisioningResult {
	transcript := discardTranscript
	var logURL string

	if req.Logging.Enabled {
		t, err := o.transcripts.Open(ctx, req.Logging.Path)
		if err != nil {
			o.logger.ErrorContext(ctx, "opening transcript", "path", req.Logging.Path, "error", err)
			return domain.Failed(&domain.ValidationError{
				Code:    domain.CodeLogPathInvalid,
				Message: fmt.Sprintf("Cannot write the log file %s", req.Logging.Path),
			})
		}
		defer func() {
			if err := t.Close(); err != nil {
				o.logger.WarnContext(ctx, "closing transcript", "path", req.Logging.Path, "error", err)
			}
		}()
		transcript = t.Logger()
		logURL = t.URL()
	}

	transcript.InfoContext(ctx, "duplication started",
		"source", req.SourceTenantID,
		"domain", req.NewDomain,
		"path", req.NewPath,
		"copy_files", req.CopyFiles,
		"keep_users", req.KeepUserAssociations,
	)

	id, err := o.engine.Duplicate(ctx, req, transcript)
	if err != nil {
		transcript.ErrorContext(ctx, "duplication failed", "error", err)
		o.logger.ErrorContext(ctx, "duplication failed",
			"source", req.SourceTenantID,
			"domain", req.NewDomain,
			"path", req.NewPath,
			"error", err,
		)
		return domain.Failed(&domain.EngineError{Err: err})
	}

	transcript.InfoContext(ctx, "duplication finished", "tenant_id", id)
	o.logger.InfoContext(ctx, "site duplicated",
		"source", req.SourceTenantID,
		"tenant_id", id,
		"domain", req.NewDomain,
		"path", req.NewPath,
	)

	return domain.Succeeded(domain.Success{
		NewTenantID: id,
		Message:     SuccessMessage,
		Domain:      req.NewDomain,
		Path:        req.NewPath,
		LogURL:      logURL,
	})
}

func errorCode(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return string(verr.Code)
	}
	var aerr *domain.AuthorizationError
	if errors.As(err, &aerr) {
		return "unauthorized"
	}
	return "internal"
}
