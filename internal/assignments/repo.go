package assignments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an assignments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, assignment *models.AssetAssignment) (*models.AssetAssignment, error) {
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *repository) Update(ctx context.Context, assignment *models.AssetAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetAssignment, error) {
	var row models.AssetAssignment
	err := r.db.WithContext(ctx).
		Preload("Asset").Preload("Assignee").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindActiveByAsset returns the single active assignment for the asset, if any.
func (r *repository) FindActiveByAsset(ctx context.Context, assetID uuid.UUID) (*models.AssetAssignment, error) {
	var row models.AssetAssignment
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND state = ?", assetID, enums.AssignmentStateActive).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context, opts listQuery) ([]models.AssetAssignment, error) {
	query := r.db.WithContext(ctx).Model(&models.AssetAssignment{}).
		Preload("Asset").Preload("Assignee")

	if opts.state != nil {
		query = query.Where("state = ?", *opts.state)
	}
	if opts.assetID != nil {
		query = query.Where("asset_id = ?", *opts.assetID)
	}
	if opts.assigneeID != nil {
		query = query.Where("assignee_id = ?", *opts.assigneeID)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.AssetAssignment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActiveOverdue returns active assignments past their expected return date.
func (r *repository) ListActiveOverdue(ctx context.Context, now time.Time) ([]models.AssetAssignment, error) {
	var rows []models.AssetAssignment
	err := r.db.WithContext(ctx).
		Preload("Asset").Preload("Assignee").
		Where("state = ?", enums.AssignmentStateActive).
		Where("expected_return_date IS NOT NULL AND expected_return_date < ?", now).
		Order("expected_return_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountActive returns the number of live hand-outs.
func (r *repository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AssetAssignment{}).
		Where("state = ?", enums.AssignmentStateActive).
		Count(&count).Error
	return count, err
}
