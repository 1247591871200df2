package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrityScan recomputes running balances from raw movements
	// and compares them with the stored balances.
	TaskLedgerIntegrityScan = "ledger:integrity_scan"
	// TaskLogRetentionSweep trims transaction-log entries past the retention
	// window.
	TaskLogRetentionSweep = "txlog:retention_sweep"
)

// IntegrityScanPayload carries scheduling metadata for the scan.
type IntegrityScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLedgerIntegrityScanTask constructs the integrity scan task.
func NewLedgerIntegrityScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(IntegrityScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrityScan, body, asynq.Queue(QueueDefault)), nil
}

// RetentionSweepPayload sets the retention window in days.
type RetentionSweepPayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewLogRetentionSweepTask constructs the retention sweep task.
func NewLogRetentionSweepTask(retentionDays int) (*asynq.Task, error) {
	body, err := json.Marshal(RetentionSweepPayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLogRetentionSweep, body, asynq.Queue(QueueDefault)), nil
}
