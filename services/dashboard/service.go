package dashboard

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"campaignplane/services/campaign"
)

// ErrBatchNotFound distinguishes "no such batch" from a storage failure so the
// polling client can show a permanent error instead of "still processing".
var ErrBatchNotFound = errors.New("batch not found")

// Post is a content item decorated with its platform display profile.
type Post struct {
	campaign.ProposedKPI
	PlatformProfile campaign.PlatformProfile `json:"platform_profile"`
}

// Snapshot is one consistent view of a batch: summary row, content items and
// strategy rows. Empty posts/strategy with a present summary is a normal
// in-progress state, not an error.
type Snapshot struct {
	Summary  map[string]any               `json:"summary"`
	Posts    []Post                       `json:"posts"`
	Strategy []campaign.ProposedBreakdown `json:"strategy"`
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

// Fetch issues the three reads concurrently and joins them before responding.
// The summary is read as a raw row because its column set varies by schema
// variant. Any query failure fails the whole aggregate; retry belongs to the
// polling client.
func (s *Service) Fetch(ctx context.Context, batchID string) (*Snapshot, error) {
	span := trace.SpanFromContext(ctx)
	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("batch_id", batchID),
	)

	var (
		summaryRows []map[string]any
		posts       []campaign.ProposedKPI
		strategy    []campaign.ProposedBreakdown
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.db.WithContext(gctx).
			Table(campaign.AnalysisBatch{}.TableName()).
			Where("batch_id = ?", batchID).
			Limit(1).
			Find(&summaryRows).Error
	})

	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("batch_id = ?", batchID).
			Order("scheduled_time DESC").
			Find(&posts).Error
	})

	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("batch_id = ?", batchID).
			Find(&strategy).Error
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("dashboard query failed", zap.Error(err))
		return nil, err
	}

	if len(summaryRows) == 0 {
		return nil, ErrBatchNotFound
	}

	decorated := make([]Post, 0, len(posts))
	for _, p := range posts {
		decorated = append(decorated, Post{
			ProposedKPI:     p,
			PlatformProfile: campaign.ProfileFor(p.Platform),
		})
	}

	if strategy == nil {
		strategy = []campaign.ProposedBreakdown{}
	}

	return &Snapshot{
		Summary:  summaryRows[0],
		Posts:    decorated,
		Strategy: strategy,
	}, nil
}
