package categories

import (
	"time"

	"github.com/google/uuid"

	"github.com/rvalverde/assettrack-backend/pkg/db/models"
)

// CategoryDTO is the transport shape for a category node.
type CategoryDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Description *string    `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	AssetCount  int64      `json:"asset_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateCategoryInput holds the fields accepted on category creation.
type CreateCategoryInput struct {
	Name        string     `json:"name" validate:"required,max=120"`
	Code        string     `json:"code" validate:"required,max=16,alphanum"`
	Description *string    `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
}

// UpdateCategoryInput holds the mutable category fields. Code is absent
// on purpose: it is frozen once assets carry it.
type UpdateCategoryInput struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,max=120"`
	Description *string    `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

func toDTO(m models.AssetCategory, assetCount int64) CategoryDTO {
	return CategoryDTO{
		ID:          m.ID,
		Name:        m.Name,
		Code:        m.Code,
		Description: m.Description,
		ParentID:    m.ParentID,
		IsActive:    m.IsActive,
		AssetCount:  assetCount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
