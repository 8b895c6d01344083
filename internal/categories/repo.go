package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/pkg/db/models"
)

// Repository exposes category persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a category repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new category row.
func (r *Repository) Create(ctx context.Context, category *models.AssetCategory) (*models.AssetCategory, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Update persists the full category row.
func (r *Repository) Update(ctx context.Context, category *models.AssetCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// FindByID loads a category by UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetCategory, error) {
	var row models.AssetCategory
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByCode loads a category by its unique code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.AssetCategory, error) {
	var row models.AssetCategory
	if err := r.db.WithContext(ctx).First(&row, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns all categories ordered by name. The tree is small enough
// that callers assemble hierarchy in memory.
func (r *Repository) List(ctx context.Context, includeInactive bool) ([]models.AssetCategory, error) {
	query := r.db.WithContext(ctx).Model(&models.AssetCategory{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.AssetCategory
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes a category row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.AssetCategory{}, "id = ?", id).Error
}

// CountAssets returns how many assets reference the category.
func (r *Repository) CountAssets(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Asset{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}

// CountChildren returns how many categories name this one as parent.
func (r *Repository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AssetCategory{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}
