package assets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
)

// Repository exposes asset persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an asset repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new asset row.
func (r *Repository) Create(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

// Update persists the full asset row.
func (r *Repository) Update(ctx context.Context, asset *models.Asset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

// FindByID loads an asset with its category and holder preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	var row models.Asset
	err := r.db.WithContext(ctx).
		Preload("Category").Preload("CurrentHolder").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByCode loads an asset by its unique code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Asset, error) {
	var row models.Asset
	err := r.db.WithContext(ctx).
		Preload("Category").Preload("CurrentHolder").
		First(&row, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns assets matching the filters using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Asset, error) {
	query := r.db.WithContext(ctx).Model(&models.Asset{}).
		Preload("Category").Preload("CurrentHolder")

	if opts.state != nil {
		query = query.Where("state = ?", *opts.state)
	}
	if opts.categoryID != nil {
		query = query.Where("category_id = ?", *opts.categoryID)
	}
	if opts.holderID != nil {
		query = query.Where("current_holder_id = ?", *opts.holderID)
	}
	if opts.search != "" {
		pattern := "%" + opts.search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ? OR serial_number ILIKE ?", pattern, pattern, pattern)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Asset
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByHolder returns every asset currently held by the user.
func (r *Repository) ListByHolder(ctx context.Context, holderID uuid.UUID) ([]models.Asset, error) {
	var rows []models.Asset
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("current_holder_id = ?", holderID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LatestCodeForPrefix returns the highest existing code under the prefix,
// e.g. "LAP-" yields "LAP-00042". Empty string means no assets yet.
func (r *Repository) LatestCodeForPrefix(ctx context.Context, prefix string) (string, error) {
	var code string
	err := r.db.WithContext(ctx).Model(&models.Asset{}).
		Select("code").
		Where("code LIKE ?", prefix+"%").
		Order("code DESC").
		Limit(1).
		Scan(&code).Error
	if err != nil {
		return "", err
	}
	return code, nil
}

// Delete removes an asset row. Only draft assets ever reach this.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Asset{}, "id = ?", id).Error
}

// CountByState groups asset totals per lifecycle state.
func (r *Repository) CountByState(ctx context.Context) (map[enums.AssetState]int64, error) {
	type stateCount struct {
		State enums.AssetState
		Count int64
	}
	var rows []stateCount
	err := r.db.WithContext(ctx).Model(&models.Asset{}).
		Select("state, COUNT(*) AS count").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.AssetState]int64, len(rows))
	for _, row := range rows {
		counts[row.State] = row.Count
	}
	return counts, nil
}

// ListWarrantyExpiringBetween returns non-disposed assets whose warranty
// lapses inside the window.
func (r *Repository) ListWarrantyExpiringBetween(ctx context.Context, from, until time.Time) ([]models.Asset, error) {
	var rows []models.Asset
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("warranty_type <> ?", enums.WarrantyTypeNone).
		Where("warranty_expiry_date IS NOT NULL").
		Where("warranty_expiry_date >= ? AND warranty_expiry_date < ?", from, until).
		Where("state <> ?", enums.AssetStateDisposed).
		Order("warranty_expiry_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
