package campaign

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campaignplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const (
	ddlBatchName = `CREATE TABLE analysis_batches (
		batch_id TEXT PRIMARY KEY,
		batch_name TEXT,
		brand_name TEXT,
		target_audience TEXT,
		status TEXT,
		created_at DATETIME,
		goal_id TEXT
	)`

	ddlCampaignName = `CREATE TABLE analysis_batches (
		batch_id TEXT PRIMARY KEY,
		campaign_name TEXT,
		brand_name TEXT,
		target_audience TEXT,
		status TEXT,
		created_at DATETIME,
		goal_id TEXT
	)`

	ddlCampaignNameNoGoal = `CREATE TABLE analysis_batches (
		batch_id TEXT PRIMARY KEY,
		campaign_name TEXT,
		brand_name TEXT,
		target_audience TEXT,
		status TEXT,
		created_at DATETIME
	)`
)

func testBatch(id string) *AnalysisBatch {
	goalID := "goal-" + id
	return &AnalysisBatch{
		BatchID:        id,
		CampaignName:   "Summer Launch",
		BrandName:      "Acme",
		TargetAudience: "everyone",
		Status:         BatchStatusPendingStrategy,
		GoalID:         &goalID,
	}
}

func countBatches(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table("analysis_batches").Count(&n).Error)
	return n
}

func TestInsertBatchPrimaryVariant(t *testing.T) {
	db := testutil.NewTestDBWithDDL(t, ddlBatchName)
	state := newSchemaState()

	require.NoError(t, state.insertBatch(context.Background(), db, testBatch("b1")))
	require.Equal(t, int32(0), state.variant.Load())

	var name string
	require.NoError(t, db.Table("analysis_batches").Where("batch_id = ?", "b1").Select("batch_name").Scan(&name).Error)
	require.Equal(t, "Summer Launch", name)
}

func TestInsertBatchFallsBackToCampaignName(t *testing.T) {
	db := testutil.NewTestDBWithDDL(t, ddlCampaignName)
	state := newSchemaState()

	require.NoError(t, state.insertBatch(context.Background(), db, testBatch("b1")))
	require.Equal(t, int32(1), state.variant.Load())

	var row struct {
		CampaignName string
		GoalID       string
	}
	require.NoError(t, db.Table("analysis_batches").Where("batch_id = ?", "b1").Select("campaign_name, goal_id").Scan(&row).Error)
	require.Equal(t, "Summer Launch", row.CampaignName)
	require.Equal(t, "goal-b1", row.GoalID)
}

func TestInsertBatchFallsBackWithoutGoalID(t *testing.T) {
	db := testutil.NewTestDBWithDDL(t, ddlCampaignNameNoGoal)
	state := newSchemaState()

	require.NoError(t, state.insertBatch(context.Background(), db, testBatch("b1")))
	require.Equal(t, int32(2), state.variant.Load())
	require.Equal(t, int64(1), countBatches(t, db))
}

func TestInsertBatchIdempotent(t *testing.T) {
	db := testutil.NewTestDBWithDDL(t, ddlBatchName)
	state := newSchemaState()

	first := testBatch("b1")
	require.NoError(t, state.insertBatch(context.Background(), db, first))

	// A retried request must be a no-op on the existing row, not an error.
	retry := testBatch("b1")
	retry.CampaignName = "Different Name"
	require.NoError(t, state.insertBatch(context.Background(), db, retry))

	require.Equal(t, int64(1), countBatches(t, db))

	var name string
	require.NoError(t, db.Table("analysis_batches").Where("batch_id = ?", "b1").Select("batch_name").Scan(&name).Error)
	require.Equal(t, "Summer Launch", name)
}

func TestInsertBatchUnrelatedErrorSurfaces(t *testing.T) {
	// No table at all: not an unknown-column condition, so the cascade must
	// abort on the first attempt and surface the raw storage message.
	db := testutil.NewTestDBWithDDL(t)
	state := newSchemaState()

	err := state.insertBatch(context.Background(), db, testBatch("b1"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "analysis_batches")
	require.Equal(t, int32(-1), state.variant.Load())
}

func TestInsertBatchCachesWinningVariant(t *testing.T) {
	db := testutil.NewTestDBWithDDL(t, ddlCampaignName)
	state := newSchemaState()

	require.NoError(t, state.insertBatch(context.Background(), db, testBatch("b1")))
	require.Equal(t, int32(1), state.variant.Load())

	require.NoError(t, state.insertBatch(context.Background(), db, testBatch("b2")))
	require.Equal(t, int32(1), state.variant.Load())
	require.Equal(t, int64(2), countBatches(t, db))
}

func TestIsUndefinedColumn(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgUndefinedColumn, Message: `column "batch_name" of relation "analysis_batches" does not exist`}
	require.True(t, isUndefinedColumn(pgErr, "batch_name"))
	require.True(t, isUndefinedColumn(pgErr, "goal_id"), "any 42703 is an unknown-column condition")

	require.True(t, isUndefinedColumn(errors.New("table analysis_batches has no column named batch_name"), "batch_name"))
	require.True(t, isUndefinedColumn(errors.New("no such column: goal_id"), "goal_id"))

	require.False(t, isUndefinedColumn(errors.New("connection refused"), "batch_name"))
	require.False(t, isUndefinedColumn(nil, "batch_name"))
}
