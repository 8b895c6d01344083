package requests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
)

// Repository exposes asset request persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a request repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new request row.
func (r *Repository) Create(ctx context.Context, request *models.AssetRequest) (*models.AssetRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// Update persists the full request row.
func (r *Repository) Update(ctx context.Context, request *models.AssetRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// FindByID loads a request with its relations preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetRequest, error) {
	var row models.AssetRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").Preload("Asset").Preload("Category").Preload("AssignedTo").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns requests matching the filters using cursor pagination.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.AssetRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.AssetRequest{}).
		Preload("Requester").Preload("Asset").Preload("Category").Preload("AssignedTo")

	if opts.State != nil {
		query = query.Where("state = ?", *opts.State)
	}
	if opts.Type != nil {
		query = query.Where("type = ?", *opts.Type)
	}
	if opts.RequesterID != uuid.Nil {
		query = query.Where("requester_id = ?", opts.RequesterID)
	}
	if opts.AssignedToID != uuid.Nil {
		query = query.Where("assigned_to_id = ?", opts.AssignedToID)
	}
	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		query = query.Where("number ILIKE ? OR subject ILIKE ?", pattern, pattern)
	}
	if opts.Cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.Cursor.CreatedAt, opts.Cursor.CreatedAt, opts.Cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.Limit)

	var rows []models.AssetRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LatestNumberForPrefix returns the highest existing number under the prefix,
// e.g. "REQ-2026-" yields "REQ-2026-00017". Empty string means none yet.
func (r *Repository) LatestNumberForPrefix(ctx context.Context, prefix string) (string, error) {
	var number string
	err := r.db.WithContext(ctx).Model(&models.AssetRequest{}).
		Select("number").
		Where("number LIKE ?", prefix+"%").
		Order("number DESC").
		Limit(1).
		Scan(&number).Error
	if err != nil {
		return "", err
	}
	return number, nil
}

// Delete removes a request row. Only draft requests ever reach this.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.AssetRequest{}, "id = ?", id).Error
}

// CountByState groups request totals per workflow state.
func (r *Repository) CountByState(ctx context.Context) (map[enums.RequestState]int64, error) {
	type stateCount struct {
		State enums.RequestState
		Count int64
	}
	var rows []stateCount
	err := r.db.WithContext(ctx).Model(&models.AssetRequest{}).
		Select("state, COUNT(*) AS count").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.RequestState]int64, len(rows))
	for _, row := range rows {
		counts[row.State] = row.Count
	}
	return counts, nil
}

// ListOpenOverdue returns non-terminal submitted-or-later requests whose
// deadline has passed.
func (r *Repository) ListOpenOverdue(ctx context.Context, now time.Time) ([]models.AssetRequest, error) {
	var rows []models.AssetRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").Preload("AssignedTo").
		Where("deadline IS NOT NULL AND deadline < ?", now).
		Where("state NOT IN ?", []enums.RequestState{
			enums.RequestStateDraft,
			enums.RequestStateRejected,
			enums.RequestStateCompleted,
			enums.RequestStateCancelled,
		}).
		Order("deadline ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
