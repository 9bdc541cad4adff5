package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("health", fx.Provide(ProvideHealth))

// requiredTables are the tables the external workflow engine populates; the
// dashboard cannot serve anything useful without them.
var requiredTables = []string{
	"analysis_batches",
	"proposed_kpis",
	"proposed_breakdowns",
	"campaign_reports",
}

type Dependency struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Health struct {
	Status        string       `json:"status"`
	Message       string       `json:"message"`
	Deps          []Dependency `json:"deps,omitempty"`
	TablesPresent []string     `json:"required_tables_present,omitempty"`
}

type HealthService interface {
	Liveness(c *gin.Context)
	Readiness(c *gin.Context)
}

type health struct {
	db *gorm.DB
}

type HealthParams struct {
	fx.In
	DB *gorm.DB `optional:"true"`
}

func ProvideHealth(p HealthParams) HealthService {
	return &health{db: p.DB}
}

func (h *health) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, &Health{
		Status:  "healthy",
		Message: "OK",
	})
}

func (h *health) Readiness(c *gin.Context) {
	this := &Health{
		Status:  "healthy",
		Message: "OK",
	}

	status := http.StatusOK
	deps := make([]Dependency, 0)

	if h.db != nil {
		dep := Dependency{
			Name:    h.db.Name(),
			Status:  "healthy",
			Message: "OK",
		}

		sql, err := h.db.DB()
		if err != nil {
			dep.Status = "unhealthy"
			dep.Message = err.Error()
		} else if err := sql.Ping(); err != nil {
			dep.Status = "unhealthy"
			dep.Message = err.Error()
		}

		if dep.Status == "unhealthy" {
			this.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		} else {
			present := make([]string, 0, len(requiredTables))
			for _, table := range requiredTables {
				if h.db.Migrator().HasTable(table) {
					present = append(present, table)
				}
			}
			this.TablesPresent = present
			if len(present) < len(requiredTables) {
				dep.Status = "degraded"
				dep.Message = "missing required tables"
				this.Status = "degraded"
			}
		}

		deps = append(deps, dep)
	}

	this.Deps = deps

	c.JSON(status, this)
}
