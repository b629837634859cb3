package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/instamunch/instamunch-api/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditRecord persists one audit entry.
	TaskAuditRecord = "audit:record"
	// TaskAuditPurge removes audit entries older than the retention window.
	TaskAuditPurge = "audit:purge"
)

// AuditPurgePayload carries the retention window in days.
type AuditPurgePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditRecordTask constructs an Asynq task for an audit entry.
func NewAuditRecordTask(log shared.AuditLog) (*asynq.Task, error) {
	if err := log.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(log)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRecord, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// NewAuditPurgeTask constructs the retention task.
func NewAuditPurgeTask(retention time.Duration) (*asynq.Task, error) {
	days := int(retention / (24 * time.Hour))
	if days <= 0 {
		return nil, fmt.Errorf("jobs: audit retention must be at least one day, got %s", retention)
	}
	body, err := json.Marshal(AuditPurgePayload{RetentionDays: days})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPurge, body, asynq.Queue(QueueDefault)), nil
}
