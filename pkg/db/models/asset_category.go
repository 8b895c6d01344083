package models

import (
	"time"

	"github.com/google/uuid"
)

// AssetCategory is a node in the category tree. Code feeds asset code
// generation, so it is immutable once assets reference the category.
type AssetCategory struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string         `gorm:"column:name;not null"`
	Code        string         `gorm:"column:code;not null;uniqueIndex"`
	Description *string        `gorm:"column:description"`
	ParentID    *uuid.UUID     `gorm:"column:parent_id;type:uuid"`
	Parent      *AssetCategory `gorm:"foreignKey:ParentID"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
