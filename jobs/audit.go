package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/instamunch/instamunch-api/internal/jobs"
	"github.com/instamunch/instamunch-api/internal/shared"
)

// AuditStore persists and expires audit entries.
type AuditStore interface {
	Record(ctx context.Context, log shared.AuditLog) error
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditHandlers processes the audit tasks.
type AuditHandlers struct {
	store   AuditStore
	metrics *jobmetrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuditHandlers constructs AuditHandlers. metrics may be nil.
func NewAuditHandlers(store AuditStore, metrics *jobmetrics.Metrics, logger *slog.Logger) *AuditHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditHandlers{store: store, metrics: metrics, logger: logger, now: time.Now}
}

// TaskHandlers lists the handlers to register on the worker.
func (h *AuditHandlers) TaskHandlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskAuditRecord, Handler: h.HandleRecord},
		{Type: TaskAuditPurge, Handler: h.HandlePurge},
	}
}

// HandleRecord processes TaskAuditRecord tasks. Malformed payloads are not retried.
func (h *AuditHandlers) HandleRecord(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track(TaskAuditRecord)
	var entry shared.AuditLog
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		h.logger.Warn("audit payload rejected", slog.Any("error", err))
		return tracker.End(fmt.Errorf("decode audit payload: %v: %w", err, asynq.SkipRetry))
	}
	if err := entry.Validate(); err != nil {
		return tracker.End(fmt.Errorf("%v: %w", err, asynq.SkipRetry))
	}
	return tracker.End(h.store.Record(ctx, entry))
}

// HandlePurge processes TaskAuditPurge tasks.
func (h *AuditHandlers) HandlePurge(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track(TaskAuditPurge)
	var payload AuditPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.RetentionDays <= 0 {
		return tracker.End(fmt.Errorf("invalid purge payload: %w", asynq.SkipRetry))
	}
	cutoff := h.now().UTC().AddDate(0, 0, -payload.RetentionDays)
	n, err := h.store.Purge(ctx, cutoff)
	if err != nil {
		return tracker.End(err)
	}
	h.metrics.AddPurged(n)
	h.logger.Info("audit purge", slog.Int64("deleted", n), slog.Time("cutoff", cutoff))
	return tracker.End(nil)
}
