package campaign

import (
	"time"

	"gorm.io/datatypes"
)

type BatchStatus string

const (
	// BatchStatusPendingStrategy is the sentinel recorded at creation, before
	// the external workflow engine has produced anything.
	BatchStatusPendingStrategy BatchStatus = "pending_strategy"
	BatchStatusCompleted       BatchStatus = "completed"
)

// AnalysisBatch is one campaign run. The row is written by this layer at
// creation time and mutated only by the external workflow engine afterwards.
// Depending on which schema variant the database carries, the campaign name
// lives in a batch_name or campaign_name column and goal_id may be absent.
type AnalysisBatch struct {
	BatchID        string      `gorm:"column:batch_id;primaryKey" json:"batch_id"`
	CampaignName   string      `gorm:"column:campaign_name" json:"campaign_name"`
	BrandName      string      `gorm:"column:brand_name" json:"brand_name"`
	TargetAudience string      `gorm:"column:target_audience" json:"target_audience"`
	Status         BatchStatus `gorm:"column:status" json:"status"`
	Summary        string      `gorm:"column:summary" json:"summary"`
	GoalID         *string     `gorm:"column:goal_id" json:"goal_id,omitempty"`
	CreatedAt      time.Time   `gorm:"column:created_at" json:"created_at"`
}

func (AnalysisBatch) TableName() string {
	return "analysis_batches"
}

// ProposedKPI is one generated social-media post scheduled under a batch.
// Created and updated by the external engine; read-only here.
type ProposedKPI struct {
	KpiID         string    `gorm:"column:kpi_id;primaryKey" json:"kpi_id"`
	BatchID       string    `gorm:"column:batch_id;index" json:"batch_id"`
	Platform      string    `gorm:"column:platform" json:"platform"`
	PostCaption   string    `gorm:"column:post_caption" json:"post_caption"`
	Hashtags      string    `gorm:"column:hashtags" json:"hashtags"`
	CallToAction  string    `gorm:"column:call_to_action" json:"call_to_action"`
	Emojis        string    `gorm:"column:emojis" json:"emojis"`
	ScheduledTime time.Time `gorm:"column:scheduled_time" json:"scheduled_time"`
	Status        string    `gorm:"column:status" json:"status"`
	IsPublished   bool      `gorm:"column:is_published" json:"is_published"`
}

func (ProposedKPI) TableName() string {
	return "proposed_kpis"
}

// ProposedBreakdown is one proposed KPI/targeting value for a platform.
type ProposedBreakdown struct {
	ID          uint    `gorm:"column:id;primaryKey" json:"-"`
	BatchID     string  `gorm:"column:batch_id;index" json:"batch_id"`
	Name        string  `gorm:"column:name" json:"name"`
	Platform    string  `gorm:"column:platform" json:"platform"`
	Value       float64 `gorm:"column:value" json:"value"`
	Unit        string  `gorm:"column:unit" json:"unit"`
	Description string  `gorm:"column:description" json:"description"`
}

func (ProposedBreakdown) TableName() string {
	return "proposed_breakdowns"
}

// CampaignReport is the terminal output of a completed batch. report_json is
// the single source of truth for the report figures; report_summary is an
// optional column that takes priority over the payload's embedded summary.
type CampaignReport struct {
	ReportID      string         `gorm:"column:report_id;primaryKey" json:"report_id"`
	BatchID       string         `gorm:"column:batch_id;index" json:"batch_id"`
	ReportJSON    datatypes.JSON `gorm:"column:report_json;type:jsonb" json:"report_json"`
	ReportSummary string         `gorm:"column:report_summary" json:"report_summary"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (CampaignReport) TableName() string {
	return "campaign_reports"
}
