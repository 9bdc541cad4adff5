package campaign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"campaignplane/pkg/config"
)

// DispatchPayload is the single JSON message handed to the external workflow
// engine. The engine owns everything after this call: content generation,
// status transitions, and report rows all happen out of band.
type DispatchPayload struct {
	CampaignName   string `json:"campaign_name"`
	CampaignGoal   string `json:"campaign_goal"`
	DurationDays   int    `json:"duration_days"`
	TargetAudience string `json:"target_audience"`
	BrandName      string `json:"brand_name"`
	BatchID        string `json:"batch_id"`
	GoalID         string `json:"goal_id"`
}

// Dispatcher forwards campaign parameters to the external automation engine
// via its webhook. One attempt, no retries; a non-2xx response fails the
// whole creation request.
type Dispatcher struct {
	url    string
	client *http.Client
}

func NewDispatcher(cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		url: cfg.Workflow.WebhookURL,
		client: &http.Client{
			Timeout: cfg.Workflow.Timeout,
		},
	}
}

// Configured reports whether a webhook URL is set. Absence is a hard
// misconfiguration of the creation path.
func (d *Dispatcher) Configured() bool {
	return d.url != ""
}

func (d *Dispatcher) Dispatch(ctx context.Context, payload DispatchPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal dispatch payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build dispatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("call workflow webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// The engine's error body is the only diagnostic there is.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		zap.L().Error("workflow webhook rejected dispatch",
			zap.Int("status", resp.StatusCode),
			zap.String("batch_id", payload.BatchID),
			zap.ByteString("body", detail))
		return fmt.Errorf("workflow webhook returned status %d", resp.StatusCode)
	}

	return nil
}
