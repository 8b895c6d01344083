package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rvalverde/assettrack-backend/pkg/enums"
)

// AssetAssignment records custody of an asset by a user. A partial
// unique index in the schema guarantees at most one active row per asset.
type AssetAssignment struct {
	ID                 uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AssetID            uuid.UUID             `gorm:"column:asset_id;type:uuid;not null"`
	Asset              *Asset                `gorm:"foreignKey:AssetID"`
	AssigneeID         uuid.UUID             `gorm:"column:assignee_id;type:uuid;not null"`
	Assignee           *User                 `gorm:"foreignKey:AssigneeID"`
	AssignedByID       uuid.UUID             `gorm:"column:assigned_by_id;type:uuid;not null"`
	AssignedBy         *User                 `gorm:"foreignKey:AssignedByID"`
	State              enums.AssignmentState `gorm:"column:state;type:assignment_state;not null;default:'active'"`
	AssignedAt         time.Time             `gorm:"column:assigned_at;not null"`
	ExpectedReturnDate *time.Time            `gorm:"column:expected_return_date;type:date"`
	ReturnedAt         *time.Time            `gorm:"column:returned_at"`
	ConditionOut       enums.AssetCondition  `gorm:"column:condition_out;type:asset_condition;not null"`
	ConditionIn        *enums.AssetCondition `gorm:"column:condition_in;type:asset_condition"`
	Notes              *string               `gorm:"column:notes"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// IsOverdue reports whether an active assignment has passed its
// expected return date.
func (a AssetAssignment) IsOverdue(now time.Time) bool {
	if a.State != enums.AssignmentStateActive || a.ExpectedReturnDate == nil {
		return false
	}
	return a.ExpectedReturnDate.Before(now)
}
