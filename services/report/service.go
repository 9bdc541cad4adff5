package report

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campaignplane/services/campaign"
)

// ErrReportNotFound distinguishes "no report row yet" (campaign may still be
// generating) from a storage failure.
var ErrReportNotFound = errors.New("report not found")

// PlatformMetrics is the fixed per-platform shape derived from the report
// payload. published_posts assumes every post is settled once the engine has
// generated a report; pending_posts is zero under the same assumption.
type PlatformMetrics struct {
	TotalPosts     int   `json:"total_posts"`
	PublishedPosts int   `json:"published_posts"`
	PendingPosts   int   `json:"pending_posts"`
	AvgReach       int64 `json:"avg_reach"`
	AvgEngagement  int64 `json:"avg_engagement"`
}

// NormalizedReport is the platform-partitioned shape served to the client,
// suitable for direct display.
type NormalizedReport struct {
	BatchID                  string                     `json:"batch_id"`
	ReportDate               string                     `json:"report_date"`
	TotalPosts               int                        `json:"total_posts"`
	PublishedPosts           int                        `json:"published_posts"`
	PendingPosts             int                        `json:"pending_posts"`
	PlatformsUsed            []string                   `json:"platforms_used"`
	PlatformBreakdown        map[string]PlatformMetrics `json:"platform_breakdown"`
	TotalEstimatedReach      int64                      `json:"total_estimated_reach"`
	TotalEstimatedEngagement int64                      `json:"total_estimated_engagement"`
	GeneratedAt              time.Time                  `json:"generated_at"`
}

// Result wraps the normalized report with row-level identity fields.
type Result struct {
	ReportID    string           `json:"report_id"`
	BatchID     string           `json:"batch_id"`
	ReportData  NormalizedReport `json:"report_data"`
	Summary     string           `json:"summary"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// reportPayload is the semi-structured report_json blob as the workflow engine
// writes it. platform_breakdown arrives either already structured or as a
// JSON-encoded string; it is resolved once here, at the boundary.
type reportPayload struct {
	BatchID           string          `json:"batch_id"`
	TotalPosts        flexInt         `json:"total_posts"`
	TotalReach        flexInt         `json:"total_reach"`
	TotalEngagement   flexInt         `json:"total_engagement"`
	ExecutiveSummary  string          `json:"executive_summary"`
	PlatformBreakdown json.RawMessage `json:"platform_breakdown"`
}

type platformStat struct {
	Platform      string  `json:"platform"`
	Posts         flexInt `json:"posts"`
	AvgReach      flexInt `json:"avg_reach"`
	AvgEngagement flexInt `json:"avg_engagement"`
}

type Service struct {
	db *gorm.DB
}

type ServiceParams struct {
	fx.In
	DB *gorm.DB
}

func NewService(p ServiceParams) *Service {
	return &Service{db: p.DB}
}

// Fetch selects the most recent report row for the batch and reshapes its
// payload into the fixed normalized form. Re-reading is idempotent.
func (s *Service) Fetch(ctx context.Context, batchID string) (*Result, error) {
	span := trace.SpanFromContext(ctx)
	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("batch_id", batchID),
	)

	var row campaign.CampaignReport
	err := s.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		zapLog.Error("report query failed", zap.Error(err))
		return nil, err
	}

	var payload reportPayload
	if len(row.ReportJSON) > 0 {
		if err := json.Unmarshal(row.ReportJSON, &payload); err != nil {
			// The rest of the report still renders without figures.
			zapLog.Warn("report_json is not decodable", zap.String("report_id", row.ReportID), zap.Error(err))
		}
	}

	platformsUsed, breakdown := normalizeBreakdown(resolveBreakdown(payload.PlatformBreakdown, zapLog))

	summary := row.ReportSummary
	if summary == "" {
		summary = payload.ExecutiveSummary
	}

	return &Result{
		ReportID: row.ReportID,
		BatchID:  row.BatchID,
		ReportData: NormalizedReport{
			BatchID:                  payload.BatchID,
			ReportDate:               row.CreatedAt.Format("1/2/2006"),
			TotalPosts:               int(payload.TotalPosts),
			PublishedPosts:           int(payload.TotalPosts),
			PendingPosts:             0,
			PlatformsUsed:            platformsUsed,
			PlatformBreakdown:        breakdown,
			TotalEstimatedReach:      int64(payload.TotalReach),
			TotalEstimatedEngagement: int64(payload.TotalEngagement),
			GeneratedAt:              row.CreatedAt,
		},
		Summary:     summary,
		GeneratedAt: row.CreatedAt,
	}, nil
}

// resolveBreakdown turns the structured-or-string platform_breakdown value
// into a slice of stats. Anything unusable means "no breakdown data", never a
// failed request.
func resolveBreakdown(raw json.RawMessage, zapLog *zap.Logger) []platformStat {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	// A JSON-encoded string holds the real array one level down.
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}

	var stats []platformStat
	if err := json.Unmarshal(raw, &stats); err != nil {
		zapLog.Warn("platform_breakdown is not decodable, treating as empty", zap.Error(err))
		return nil
	}
	return stats
}

func normalizeBreakdown(stats []platformStat) ([]string, map[string]PlatformMetrics) {
	platformsUsed := make([]string, 0, len(stats))
	breakdown := make(map[string]PlatformMetrics, len(stats))

	for _, p := range stats {
		if _, seen := breakdown[p.Platform]; !seen {
			platformsUsed = append(platformsUsed, p.Platform)
		}
		breakdown[p.Platform] = PlatformMetrics{
			TotalPosts:     int(p.Posts),
			PublishedPosts: int(p.Posts),
			PendingPosts:   0,
			AvgReach:       int64(p.AvgReach),
			AvgEngagement:  int64(p.AvgEngagement),
		}
	}

	return platformsUsed, breakdown
}
