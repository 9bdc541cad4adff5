package campaign

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campaignplane/pkg/config"
)

func newTestDispatcher(url string) *Dispatcher {
	cfg := &config.Config{}
	cfg.Workflow.WebhookURL = url
	cfg.Workflow.Timeout = 5 * time.Second
	return NewDispatcher(cfg)
}

func TestDispatcherConfigured(t *testing.T) {
	require.False(t, newTestDispatcher("").Configured())
	require.True(t, newTestDispatcher("http://localhost:5678/webhook").Configured())
}

func TestDispatchSendsPayload(t *testing.T) {
	var (
		gotMethod      string
		gotContentType string
		gotBody        map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestDispatcher(srv.URL).Dispatch(context.Background(), DispatchPayload{
		CampaignName:   "Summer Launch",
		CampaignGoal:   "awareness",
		DurationDays:   14,
		TargetAudience: "everyone",
		BrandName:      "Acme",
		BatchID:        "batch-1",
		GoalID:         "goal-1",
	})
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "Summer Launch", gotBody["campaign_name"])
	require.Equal(t, "awareness", gotBody["campaign_goal"])
	require.Equal(t, float64(14), gotBody["duration_days"])
	require.Equal(t, "batch-1", gotBody["batch_id"])
	require.Equal(t, "goal-1", gotBody["goal_id"])
}

func TestDispatchNon2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow not active", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestDispatcher(srv.URL).Dispatch(context.Background(), DispatchPayload{BatchID: "batch-1"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}

func TestDispatchUnreachableFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := newTestDispatcher(srv.URL).Dispatch(context.Background(), DispatchPayload{BatchID: "batch-1"})
	require.Error(t, err)
}
