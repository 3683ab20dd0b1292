package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecom-auditor/backend/internal/domain/audit"
	"github.com/ecom-auditor/backend/internal/domain/shared"
)

// GormReportRepository implements audit.ReportRepository using GORM.
// Reports are append-only, there is no update path.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// Append stores a new report
func (r *GormReportRepository) Append(ctx context.Context, report *audit.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// FindByID loads a report owned by the given user
func (r *GormReportRepository) FindByID(ctx context.Context, userID, reportID uuid.UUID) (*audit.Report, error) {
	var report audit.Report
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, reportID).
		First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// ListByProduct returns reports for one product, newest first
func (r *GormReportRepository) ListByProduct(ctx context.Context, userID, productID uuid.UUID, limit int) ([]*audit.Report, error) {
	var reports []*audit.Report
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Order("audit_date DESC").
		Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// ListByUser returns the user's reports across all products, newest first
func (r *GormReportRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*audit.Report, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&audit.Report{}).
		Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []*audit.Report
	if err := query.
		Order("audit_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// Ensure GormReportRepository implements ReportRepository
var _ audit.ReportRepository = (*GormReportRepository)(nil)
