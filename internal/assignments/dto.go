package assignments

import (
	"time"

	"github.com/google/uuid"

	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgpagination "github.com/rvalverde/assettrack-backend/pkg/pagination"
)

// AssignmentDTO is the transport shape for an assignment.
type AssignmentDTO struct {
	ID                 uuid.UUID             `json:"id"`
	AssetID            uuid.UUID             `json:"asset_id"`
	AssetCode          string                `json:"asset_code,omitempty"`
	AssetName          string                `json:"asset_name,omitempty"`
	AssigneeID         uuid.UUID             `json:"assignee_id"`
	AssigneeName       string                `json:"assignee_name,omitempty"`
	AssignedByID       uuid.UUID             `json:"assigned_by_id"`
	State              enums.AssignmentState `json:"state"`
	AssignedAt         time.Time             `json:"assigned_at"`
	ExpectedReturnDate *time.Time            `json:"expected_return_date,omitempty"`
	ReturnedAt         *time.Time            `json:"returned_at,omitempty"`
	ConditionOut       enums.AssetCondition  `json:"condition_out"`
	ConditionIn        *enums.AssetCondition `json:"condition_in,omitempty"`
	Notes              *string               `json:"notes,omitempty"`
	Overdue            bool                  `json:"overdue"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// CreateAssignmentInput holds the fields accepted when handing out an asset.
type CreateAssignmentInput struct {
	AssetID            uuid.UUID            `json:"asset_id" validate:"required"`
	AssigneeID         uuid.UUID            `json:"assignee_id" validate:"required"`
	ExpectedReturnDate *time.Time           `json:"expected_return_date,omitempty"`
	ConditionOut       enums.AssetCondition `json:"condition_out" validate:"required"`
	Notes              *string              `json:"notes,omitempty"`
}

// ReturnInput records the hand-back of an asset.
type ReturnInput struct {
	ConditionIn enums.AssetCondition `json:"condition_in" validate:"required"`
	Notes       *string              `json:"notes,omitempty"`
}

// CloseInput covers the lost and damaged terminations.
type CloseInput struct {
	Notes *string `json:"notes,omitempty"`
}

// ListParams filters the assignment listing.
type ListParams struct {
	State      *enums.AssignmentState
	AssetID    *uuid.UUID
	AssigneeID *uuid.UUID
	pkgpagination.Params
}

// ListResult pairs one page of items with the next cursor.
type ListResult struct {
	Items  []AssignmentDTO `json:"items"`
	Cursor string          `json:"cursor"`
}

type listQuery struct {
	state      *enums.AssignmentState
	assetID    *uuid.UUID
	assigneeID *uuid.UUID
	limit      int
	cursor     *pkgpagination.Cursor
}

func toDTO(m models.AssetAssignment, now time.Time) AssignmentDTO {
	dto := AssignmentDTO{
		ID:                 m.ID,
		AssetID:            m.AssetID,
		AssigneeID:         m.AssigneeID,
		AssignedByID:       m.AssignedByID,
		State:              m.State,
		AssignedAt:         m.AssignedAt,
		ExpectedReturnDate: m.ExpectedReturnDate,
		ReturnedAt:         m.ReturnedAt,
		ConditionOut:       m.ConditionOut,
		ConditionIn:        m.ConditionIn,
		Notes:              m.Notes,
		Overdue:            m.IsOverdue(now),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if m.Asset != nil {
		dto.AssetCode = m.Asset.Code
		dto.AssetName = m.Asset.Name
	}
	if m.Assignee != nil {
		dto.AssigneeName = m.Assignee.FullName()
	}
	return dto
}
