package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// TenantEventWorker handles tenant event jobs. Provisioned tenants are
// announced at info level; other events are recorded at debug level.
type TenantEventWorker struct {
	river.WorkerDefaults[TenantEventArgs]

	logger *slog.Logger
}

// Work processes a single event job.
func (w *TenantEventWorker) Work(ctx context.Context, job *river.Job[TenantEventArgs]) error {
	level := slog.LevelDebug
	msg := "tenant event"
	if domain.Event(job.Args.Event) == domain.EventProvisionComplete {
		level = slog.LevelInfo
		msg = "tenant provisioned"
	}

	w.logger.Log(ctx, level, msg,
		"event", job.Args.Event,
		"tenant_id", job.Args.TenantID,
		"address", job.Args.Domain+job.Args.Path,
		"admin_email", job.Args.AdminEmail,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
