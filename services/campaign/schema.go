package campaign

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// pgUndefinedColumn is the postgres SQLSTATE for "column does not exist".
const pgUndefinedColumn = "42703"

// schemaVariant is one of the mutually exclusive column-naming shapes the
// analysis_batches table may carry, depending on which migration generation
// the database this layer shares with the workflow engine is running.
//
// probeColumn is the column whose absence moves the cascade on to the next
// variant; any other failure aborts the whole cascade.
type schemaVariant struct {
	name        string
	probeColumn string
	insertSQL   string
	args        func(b *AnalysisBatch) []any
}

var schemaVariants = []schemaVariant{
	{
		name:        "batch_name",
		probeColumn: "batch_name",
		insertSQL: `INSERT INTO analysis_batches (batch_id, batch_name, brand_name, target_audience, status, created_at, goal_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (batch_id) DO NOTHING`,
		args: func(b *AnalysisBatch) []any {
			return []any{b.BatchID, b.CampaignName, b.BrandName, b.TargetAudience, b.Status, b.CreatedAt, b.GoalID}
		},
	},
	{
		name:        "campaign_name",
		probeColumn: "goal_id",
		insertSQL: `INSERT INTO analysis_batches (batch_id, campaign_name, brand_name, target_audience, status, created_at, goal_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (batch_id) DO NOTHING`,
		args: func(b *AnalysisBatch) []any {
			return []any{b.BatchID, b.CampaignName, b.BrandName, b.TargetAudience, b.Status, b.CreatedAt, b.GoalID}
		},
	},
	{
		name: "campaign_name_no_goal",
		insertSQL: `INSERT INTO analysis_batches (batch_id, campaign_name, brand_name, target_audience, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (batch_id) DO NOTHING`,
		args: func(b *AnalysisBatch) []any {
			return []any{b.BatchID, b.CampaignName, b.BrandName, b.TargetAudience, b.Status, b.CreatedAt}
		},
	},
}

// schemaState caches which variant last succeeded so later requests skip the
// doomed attempts. -1 means not probed yet.
type schemaState struct {
	variant atomic.Int32
}

func newSchemaState() *schemaState {
	s := &schemaState{}
	s.variant.Store(-1)
	return s
}

// insertBatch writes the initial batch row using the cached schema variant,
// falling through the remaining variants on unknown-column failures. When a
// cached variant stops matching (a migration landed mid-process) the probe is
// reopened from the top.
func (s *schemaState) insertBatch(ctx context.Context, db *gorm.DB, batch *AnalysisBatch) error {
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}

	start := s.variant.Load()
	if start < 0 {
		start = 0
	}

	err := s.runCascade(ctx, db, batch, int(start))
	if err == nil {
		return nil
	}

	// Cached variant no longer matches the schema; probe from the top once.
	if start > 0 && isUndefinedColumn(err, "") {
		zap.L().Warn("cached schema variant stale, reprobing",
			zap.Int32("cached_variant", start), zap.Error(err))
		s.variant.Store(-1)
		return s.runCascade(ctx, db, batch, 0)
	}

	return err
}

func (s *schemaState) runCascade(ctx context.Context, db *gorm.DB, batch *AnalysisBatch, from int) error {
	var err error
	for i := from; i < len(schemaVariants); i++ {
		v := schemaVariants[i]

		err = db.WithContext(ctx).Exec(v.insertSQL, v.args(batch)...).Error
		if err == nil {
			s.variant.Store(int32(i))
			return nil
		}

		// Only an unknown-column condition on this variant's probe column is
		// absorbed; every other error class surfaces immediately with the raw
		// storage message.
		if v.probeColumn == "" || !isUndefinedColumn(err, v.probeColumn) {
			return err
		}

		zap.L().Warn("schema variant mismatch, falling back",
			zap.String("variant", v.name),
			zap.String("missing_column", v.probeColumn),
			zap.Error(err))
	}
	return err
}

// isUndefinedColumn reports whether err is an unknown-column condition.
// Postgres signals SQLSTATE 42703; the message match keeps the check honest
// against other drivers (sqlite says "no such column: x") and against postgres
// errors that arrive stringified through intermediate layers. An empty column
// matches any unknown-column error.
func isUndefinedColumn(err error, column string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedColumn {
		return true
	}

	msg := err.Error()
	if column != "" {
		return strings.Contains(msg, column)
	}
	return strings.Contains(msg, pgUndefinedColumn) ||
		strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "has no column") ||
		strings.Contains(msg, "does not exist")
}
