package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecom-auditor/backend/internal/domain/catalog"
	"github.com/ecom-auditor/backend/internal/domain/shared"
)

// GormListingRepository implements catalog.ListingRepository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// Create stores a new listing
func (r *GormListingRepository) Create(ctx context.Context, listing *catalog.Listing) error {
	err := r.db.WithContext(ctx).Create(listing).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// Update persists changes to an existing listing
func (r *GormListingRepository) Update(ctx context.Context, listing *catalog.Listing) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.Listing{}).
		Where("id = ? AND user_id = ?", listing.ID, listing.UserID).
		Updates(listing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a listing owned by the given user
func (r *GormListingRepository) Delete(ctx context.Context, userID, listingID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&catalog.Listing{}, "user_id = ? AND id = ?", userID, listingID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID loads a listing owned by the given user
func (r *GormListingRepository) FindByID(ctx context.Context, userID, listingID uuid.UUID) (*catalog.Listing, error) {
	var listing catalog.Listing
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, listingID).
		First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// FindBySKU loads a listing by its marketplace identity
func (r *GormListingRepository) FindBySKU(ctx context.Context, userID uuid.UUID, marketplace, sku string) (*catalog.Listing, error) {
	var listing catalog.Listing
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND marketplace = ? AND sku = ?", userID, marketplace, sku).
		First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// Exists reports whether the user already tracks this marketplace SKU
func (r *GormListingRepository) Exists(ctx context.Context, userID uuid.UUID, marketplace, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Listing{}).
		Where("user_id = ? AND marketplace = ? AND sku = ?", userID, marketplace, sku).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns the user's listings matching the filter plus the total count
func (r *GormListingRepository) List(ctx context.Context, userID uuid.UUID, filter catalog.ListingFilter) ([]*catalog.Listing, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&catalog.Listing{}).
		Where("user_id = ?", userID)

	if filter.Marketplace != "" {
		query = query.Where("marketplace = ?", filter.Marketplace)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []*catalog.Listing
	if err := query.
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// Ensure GormListingRepository implements ListingRepository
var _ catalog.ListingRepository = (*GormListingRepository)(nil)
