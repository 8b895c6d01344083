package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rvalverde/assettrack-backend/pkg/enums"
)

// AssetRequest represents an employee request moving through the
// intake workflow. Number is generated per calendar year and never reused.
type AssetRequest struct {
	ID              uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Number          string                `gorm:"column:number;not null;uniqueIndex"`
	Type            enums.RequestType     `gorm:"column:type;type:request_type;not null"`
	State           enums.RequestState    `gorm:"column:state;type:request_state;not null;default:'draft'"`
	Priority        enums.RequestPriority `gorm:"column:priority;type:request_priority;not null;default:'medium'"`
	Urgency         enums.RequestUrgency  `gorm:"column:urgency;type:request_urgency;not null;default:'medium'"`
	Subject         string                `gorm:"column:subject;not null"`
	Description     *string               `gorm:"column:description"`
	RequesterID     uuid.UUID             `gorm:"column:requester_id;type:uuid;not null"`
	Requester       *User                 `gorm:"foreignKey:RequesterID"`
	AssetID         *uuid.UUID            `gorm:"column:asset_id;type:uuid"`
	Asset           *Asset                `gorm:"foreignKey:AssetID"`
	CategoryID      *uuid.UUID            `gorm:"column:category_id;type:uuid"`
	Category        *AssetCategory        `gorm:"foreignKey:CategoryID"`
	AssignedToID    *uuid.UUID            `gorm:"column:assigned_to_id;type:uuid"`
	AssignedTo      *User                 `gorm:"foreignKey:AssignedToID"`
	Deadline        *time.Time            `gorm:"column:deadline;type:date"`
	SubmittedAt     *time.Time            `gorm:"column:submitted_at"`
	DecidedAt       *time.Time            `gorm:"column:decided_at"`
	DecidedByID     *uuid.UUID            `gorm:"column:decided_by_id;type:uuid"`
	DecidedBy       *User                 `gorm:"foreignKey:DecidedByID"`
	RejectionReason *string               `gorm:"column:rejection_reason"`
	StartedAt       *time.Time            `gorm:"column:started_at"`
	CompletedAt     *time.Time            `gorm:"column:completed_at"`
	Resolution      *string               `gorm:"column:resolution"`
	EstimatedCost   *decimal.Decimal      `gorm:"column:estimated_cost;type:numeric(14,2)"`
	ActualCost      *decimal.Decimal      `gorm:"column:actual_cost;type:numeric(14,2)"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// IsOverdue reports whether an open request has passed its deadline.
func (r AssetRequest) IsOverdue(now time.Time) bool {
	if r.State.IsTerminal() || r.State == enums.RequestStateDraft || r.Deadline == nil {
		return false
	}
	return r.Deadline.Before(now)
}
