package campaign

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campaignplane/pkg/errutil"
)

// CreateCampaignInput is the creation request body. Every field is mandatory;
// validation failure terminates before any identifier is minted or any side
// effect happens.
type CreateCampaignInput struct {
	CampaignName   string `json:"campaign_name"`
	CampaignGoal   string `json:"campaign_goal"`
	DurationDays   int    `json:"duration_days"`
	TargetAudience string `json:"target_audience"`
	BrandName      string `json:"brand_name"`
}

func (in CreateCampaignInput) validate() error {
	switch {
	case strings.TrimSpace(in.CampaignName) == "",
		strings.TrimSpace(in.CampaignGoal) == "",
		strings.TrimSpace(in.TargetAudience) == "",
		strings.TrimSpace(in.BrandName) == "",
		in.DurationDays <= 0:
		return errutil.BadRequest("Missing required fields", nil)
	}
	return nil
}

// Service guarantees an AnalysisBatch row exists before creation returns,
// whatever column-naming variant the underlying schema currently uses, and
// then notifies the external workflow engine.
type Service struct {
	db         *gorm.DB
	dispatcher *Dispatcher
	schema     *schemaState
}

type ServiceParams struct {
	fx.In
	DB         *gorm.DB
	Dispatcher *Dispatcher
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:         p.DB,
		dispatcher: p.Dispatcher,
		schema:     newSchemaState(),
	}
}

// Create validates input, writes the initial batch row and dispatches the
// campaign to the workflow engine. On dispatch failure the already-written
// row stays in place at the sentinel status so the client can still poll a
// consistent record.
func (s *Service) Create(ctx context.Context, input CreateCampaignInput) (string, error) {
	span := trace.SpanFromContext(ctx)
	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
	)

	if err := input.validate(); err != nil {
		return "", err
	}

	if !s.dispatcher.Configured() {
		zapLog.Error("workflow webhook URL is not configured")
		return "", errutil.Internal("Server configuration error", nil)
	}

	batchID := uuid.NewString()
	goalID := uuid.NewString()

	batch := &AnalysisBatch{
		BatchID:        batchID,
		CampaignName:   input.CampaignName,
		BrandName:      input.BrandName,
		TargetAudience: input.TargetAudience,
		Status:         BatchStatusPendingStrategy,
		GoalID:         &goalID,
	}

	// The batch row must exist before this call returns so the dashboard can
	// load immediately, even if the engine never picks the campaign up.
	if err := s.schema.insertBatch(ctx, s.db, batch); err != nil {
		zapLog.Error("failed to insert initial batch row", zap.String("batch_id", batchID), zap.Error(err))
		return "", errutil.Internal("DB insert failed", err)
	}

	if err := s.dispatcher.Dispatch(ctx, DispatchPayload{
		CampaignName:   input.CampaignName,
		CampaignGoal:   input.CampaignGoal,
		DurationDays:   input.DurationDays,
		TargetAudience: input.TargetAudience,
		BrandName:      input.BrandName,
		BatchID:        batchID,
		GoalID:         goalID,
	}); err != nil {
		// Partially created: the row exists but the engine was never told.
		// Surfaced as a server error; an operator can re-trigger manually.
		zapLog.Error("failed to trigger workflow", zap.String("batch_id", batchID), zap.Error(err))
		return "", errutil.Internal("Failed to start campaign", err)
	}

	zapLog.Info("campaign created", zap.String("batch_id", batchID), zap.String("goal_id", goalID))

	return batchID, nil
}
