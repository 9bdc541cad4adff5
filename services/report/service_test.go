package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"campaignplane/services/campaign"
	"campaignplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t, &campaign.CampaignReport{})
	return NewService(ServiceParams{DB: db}), db
}

func seedReport(t *testing.T, db *gorm.DB, reportID, batchID, reportJSON, summary string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&campaign.CampaignReport{
		ReportID:      reportID,
		BatchID:       batchID,
		ReportJSON:    datatypes.JSON(reportJSON),
		ReportSummary: summary,
		CreatedAt:     createdAt,
	}).Error)
}

func TestFetchNoReportYet(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Fetch(context.Background(), "b1")
	require.ErrorIs(t, err, ErrReportNotFound)
	require.Nil(t, res)
}

func TestFetchStringEncodedBreakdown(t *testing.T) {
	// The engine frequently writes platform_breakdown as a JSON-encoded string
	// rather than a structured array. Both must normalize identically.
	svc, db := newTestService(t)

	created := time.Date(2026, 3, 7, 9, 30, 0, 0, time.UTC)
	seedReport(t, db, "r1", "b1", `{
		"batch_id": "b1",
		"total_posts": 5,
		"total_reach": "6000",
		"total_engagement": 1500,
		"executive_summary": "Strong week.",
		"platform_breakdown": "[{\"platform\":\"Instagram\",\"posts\":5,\"avg_reach\":\"1200\",\"avg_engagement\":\"300\"}]"
	}`, "", created)

	res, err := svc.Fetch(context.Background(), "b1")
	require.NoError(t, err)

	require.Equal(t, "r1", res.ReportID)
	require.Equal(t, "b1", res.BatchID)
	require.Equal(t, "Strong week.", res.Summary)

	data := res.ReportData
	require.Equal(t, "b1", data.BatchID)
	require.Equal(t, "3/7/2026", data.ReportDate)
	require.Equal(t, 5, data.TotalPosts)
	require.Equal(t, 5, data.PublishedPosts)
	require.Equal(t, 0, data.PendingPosts)
	require.Equal(t, int64(6000), data.TotalEstimatedReach)
	require.Equal(t, int64(1500), data.TotalEstimatedEngagement)
	require.Equal(t, []string{"Instagram"}, data.PlatformsUsed)
	require.Equal(t, PlatformMetrics{
		TotalPosts:     5,
		PublishedPosts: 5,
		PendingPosts:   0,
		AvgReach:       1200,
		AvgEngagement:  300,
	}, data.PlatformBreakdown["Instagram"])
}

func TestFetchStructuredBreakdown(t *testing.T) {
	svc, db := newTestService(t)

	seedReport(t, db, "r1", "b1", `{
		"total_posts": 8,
		"platform_breakdown": [
			{"platform": "Facebook", "posts": 3, "avg_reach": 800, "avg_engagement": 90},
			{"platform": "Instagram", "posts": 5, "avg_reach": 1200, "avg_engagement": 300},
			{"platform": "Facebook", "posts": 4, "avg_reach": 850, "avg_engagement": 100}
		]
	}`, "", time.Now())

	res, err := svc.Fetch(context.Background(), "b1")
	require.NoError(t, err)

	// First occurrence fixes the order; a repeated platform overwrites its
	// metrics without a second platforms_used entry.
	require.Equal(t, []string{"Facebook", "Instagram"}, res.ReportData.PlatformsUsed)
	require.Len(t, res.ReportData.PlatformBreakdown, 2)
	require.Equal(t, 4, res.ReportData.PlatformBreakdown["Facebook"].TotalPosts)
	require.Equal(t, int64(850), res.ReportData.PlatformBreakdown["Facebook"].AvgReach)
}

func TestFetchMalformedBreakdown(t *testing.T) {
	svc, db := newTestService(t)

	seedReport(t, db, "r1", "b1", `{
		"total_posts": 3,
		"total_reach": 900,
		"platform_breakdown": "not even json"
	}`, "", time.Now())

	res, err := svc.Fetch(context.Background(), "b1")
	require.NoError(t, err)

	// Breakdown data degrades to empty; the totals still render.
	require.Equal(t, 3, res.ReportData.TotalPosts)
	require.Equal(t, int64(900), res.ReportData.TotalEstimatedReach)
	require.Empty(t, res.ReportData.PlatformsUsed)
	require.Empty(t, res.ReportData.PlatformBreakdown)
}

func TestFetchSummaryColumnPriority(t *testing.T) {
	svc, db := newTestService(t)

	seedReport(t, db, "r1", "b1", `{"executive_summary": "from payload"}`, "from column", time.Now())
	seedReport(t, db, "r2", "b2", `{"executive_summary": "from payload"}`, "", time.Now())
	seedReport(t, db, "r3", "b3", `{}`, "", time.Now())

	res, err := svc.Fetch(context.Background(), "b1")
	require.NoError(t, err)
	require.Equal(t, "from column", res.Summary)

	res, err = svc.Fetch(context.Background(), "b2")
	require.NoError(t, err)
	require.Equal(t, "from payload", res.Summary)

	res, err = svc.Fetch(context.Background(), "b3")
	require.NoError(t, err)
	require.Empty(t, res.Summary)
}

func TestFetchMostRecentReportWins(t *testing.T) {
	svc, db := newTestService(t)

	older := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)
	seedReport(t, db, "r-old", "b1", `{"total_posts": 1}`, "", older)
	seedReport(t, db, "r-new", "b1", `{"total_posts": 9}`, "", newer)

	res, err := svc.Fetch(context.Background(), "b1")
	require.NoError(t, err)
	require.Equal(t, "r-new", res.ReportID)
	require.Equal(t, 9, res.ReportData.TotalPosts)
	require.Equal(t, "2/20/2026", res.ReportData.ReportDate)
}

func TestFetchUndecodablePayload(t *testing.T) {
	svc, db := newTestService(t)

	seedReport(t, db, "r1", "b1", `this is not json`, "column summary", time.Date(2026, 5, 5, 12, 0, 0, 0, time.UTC))

	res, err := svc.Fetch(context.Background(), "b1")
	require.NoError(t, err)

	// Row-level fields survive even when the payload is garbage.
	require.Equal(t, "r1", res.ReportID)
	require.Equal(t, "column summary", res.Summary)
	require.Equal(t, 0, res.ReportData.TotalPosts)
	require.Equal(t, "5/5/2026", res.ReportData.ReportDate)
}
