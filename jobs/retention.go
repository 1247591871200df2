package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultRetentionDays keeps ten years of audit history, the fiscal
// obligation for this kind of business.
const defaultRetentionDays = 3650

// LogRetentionJob trims transaction-log entries older than the retention
// window. Business flows never delete log rows; only this sweep does.
type LogRetentionJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// NewLogRetentionJob constructs the retention sweep handler.
func NewLogRetentionJob(pool *pgxpool.Pool, logger *slog.Logger) *LogRetentionJob {
	return &LogRetentionJob{Pool: pool, Logger: logger}
}

// Handle deletes entries past the window and reports how many went away.
func (j *LogRetentionJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("log retention: handler not configured")
	}
	var payload RetentionSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	days := payload.RetentionDays
	if days <= 0 {
		days = defaultRetentionDays
	}

	tag, err := j.Pool.Exec(ctx,
		`DELETE FROM log_transacciones WHERE creado_en < now() - $1::interval`,
		fmt.Sprintf("%d days", days))
	if err != nil {
		return err
	}
	j.Logger.Info("transaction log retention sweep finished",
		slog.Int("retention_days", days),
		slog.Int64("deleted", tag.RowsAffected()))
	return nil
}
