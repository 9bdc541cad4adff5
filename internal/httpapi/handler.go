package httpapi

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/fx"

	"campaignplane/pkg/config"
	"campaignplane/pkg/health"
	"campaignplane/pkg/middleware"
	campaignsvc "campaignplane/services/campaign"
	dashboardsvc "campaignplane/services/dashboard"
	reportsvc "campaignplane/services/report"
)

var Module = fx.Module("httpapi",
	fx.Provide(ProvideRouter),
)

type RouterParams struct {
	fx.In
	Config    *config.Config
	Node      *snowflake.Node
	Health    health.HealthService
	Campaign  *campaignsvc.Service
	Dashboard *dashboardsvc.Service
	Report    *reportsvc.Service
}

// ProvideRouter builds the gin engine with the polling API surface: campaign
// creation plus the dashboard and report reads the client re-fetches at a
// fixed interval until it observes a terminal state.
func ProvideRouter(p RouterParams) http.Handler {
	if p.Config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	h := &handler{
		campaign:  p.Campaign,
		dashboard: p.Dashboard,
		report:    p.Report,
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(p.Node),
		middleware.Error(),
	)

	r.GET("/healthz", p.Health.Liveness)
	r.GET("/readyz", p.Health.Readiness)

	api := r.Group("/api")
	api.POST("/campaign", h.createCampaign)
	api.GET("/dashboard", h.getDashboard)
	api.GET("/report", h.getReport)

	return r
}

type handler struct {
	campaign  *campaignsvc.Service
	dashboard *dashboardsvc.Service
	report    *reportsvc.Service
}

func (h *handler) createCampaign(c *gin.Context) {
	var input campaignsvc.CreateCampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	batchID, err := h.campaign.Create(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"batch_id": batchID})
}

func (h *handler) getDashboard(c *gin.Context) {
	batchID := c.Query("batch_id")
	if batchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch_id is required"})
		return
	}

	snapshot, err := h.dashboard.Fetch(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, dashboardsvc.ErrBatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":  "Batch not found. It may not have been inserted or the workflow has not started yet.",
				"exists": false,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Failed to fetch campaign data",
			"detail": err.Error(),
			"code":   storageCode(err),
			"hint":   "Verify DB credentials, network access, and that schema tables exist.",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":  snapshot.Summary,
		"posts":    snapshot.Posts,
		"strategy": snapshot.Strategy,
		"exists":   true,
	})
}

func (h *handler) getReport(c *gin.Context) {
	batchID := c.Query("batch_id")
	if batchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch_id is required"})
		return
	}

	result, err := h.report.Fetch(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, reportsvc.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":  "Report not found. Campaign may still be generating content.",
				"exists": false,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Failed to fetch campaign report",
			"detail": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report_id":    result.ReportID,
		"batch_id":     result.BatchID,
		"report_data":  result.ReportData,
		"summary":      result.Summary,
		"generated_at": result.GeneratedAt,
		"exists":       true,
	})
}

// storageCode surfaces the postgres SQLSTATE when there is one; operator
// diagnostics win over API hygiene on this internal surface.
func storageCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
