package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecom-auditor/backend/internal/domain/shared"
)

// ErrAuditInProgress is returned when a run is requested for a product that
// already has one running.
var ErrAuditInProgress = shared.NewDomainError("AUDIT_IN_PROGRESS", "An audit is already running for this product")

// ReportStatus is the terminal state of an audit run
type ReportStatus string

const (
	// ReportStatusCompleted indicates the run finished and produced a score
	ReportStatusCompleted ReportStatus = "completed"
	// ReportStatusFailed indicates the run aborted before producing a score
	ReportStatusFailed ReportStatus = "failed"
)

// Report is one immutable audit run result. Reports are append-only: a new
// run for the same product creates a new report rather than updating an old
// one, so score history is preserved.
type Report struct {
	shared.UserAggregateRoot
	ProductID   uuid.UUID    `gorm:"type:uuid;not null;index:idx_report_product_date,priority:1"`
	Marketplace string       `gorm:"type:varchar(20);not null"`
	AuditDate   time.Time    `gorm:"not null;index:idx_report_product_date,priority:2"`
	Status      ReportStatus `gorm:"type:varchar(20);not null"`

	LegalScore     float64        `gorm:"not null;default:0"`
	DeliveryScore  float64        `gorm:"not null;default:0"`
	SEOScore       float64        `gorm:"not null;default:0;column:seo_score"`
	PriceScore     float64        `gorm:"not null;default:0"`
	TotalScore     float64        `gorm:"not null;default:0"`
	Classification Classification `gorm:"type:varchar(20);not null;default:'critical'"`

	// FindingsJSON holds the sorted findings as a JSON array
	FindingsJSON string `gorm:"type:jsonb;column:findings"`

	// Financial snapshot computed during the run, zero when price data was missing
	NetProfit              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MarginPercent          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	EffectiveMarginPercent decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	BreakevenPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	// RulesVersion records which marking rule revision the run used
	RulesVersion string `gorm:"type:varchar(20)"`

	// FailureReason explains a failed run
	FailureReason string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Report) TableName() string {
	return "audit_reports"
}

// NewReport starts a report for an audit run
func NewReport(userID, productID uuid.UUID, marketplace string) *Report {
	return &Report{
		UserAggregateRoot: shared.NewUserAggregateRoot(userID),
		ProductID:         productID,
		Marketplace:       marketplace,
		AuditDate:         time.Now().UTC(),
		Status:            ReportStatusFailed,
	}
}

// Complete records the scoring outcome and marks the run completed
func (r *Report) Complete(breakdown ScoreBreakdown, findings []Finding) error {
	raw, err := json.Marshal(findings)
	if err != nil {
		return err
	}
	r.LegalScore = breakdown.Legal
	r.DeliveryScore = breakdown.Delivery
	r.SEOScore = breakdown.SEO
	r.PriceScore = breakdown.Price
	r.TotalScore = breakdown.Total
	r.Classification = Classify(breakdown.Total)
	r.FindingsJSON = string(raw)
	r.Status = ReportStatusCompleted
	return nil
}

// Fail marks the run failed with a reason
func (r *Report) Fail(reason string) {
	r.Status = ReportStatusFailed
	r.FailureReason = reason
}

// Findings unmarshals the stored findings
func (r *Report) Findings() ([]Finding, error) {
	if r.FindingsJSON == "" {
		return nil, nil
	}
	var findings []Finding
	if err := json.Unmarshal([]byte(r.FindingsJSON), &findings); err != nil {
		return nil, err
	}
	return findings, nil
}

// Breakdown reassembles the stored score breakdown
func (r *Report) Breakdown() ScoreBreakdown {
	return ScoreBreakdown{
		Legal:    r.LegalScore,
		Delivery: r.DeliveryScore,
		SEO:      r.SEOScore,
		Price:    r.PriceScore,
		Total:    r.TotalScore,
	}
}

// ReportRepository defines persistence for audit reports
type ReportRepository interface {
	// Append stores a new report. Reports are never updated in place.
	Append(ctx context.Context, report *Report) error

	// FindByID loads a report owned by the given user
	FindByID(ctx context.Context, userID, reportID uuid.UUID) (*Report, error)

	// ListByProduct returns reports for one product, newest first
	ListByProduct(ctx context.Context, userID, productID uuid.UUID, limit int) ([]*Report, error)

	// ListByUser returns the user's reports across all products, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Report, int64, error)
}
