package requests

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	"github.com/rvalverde/assettrack-backend/pkg/pagination"
	"github.com/rvalverde/assettrack-backend/pkg/types"
)

// RequestDTO is the API projection of an asset request.
type RequestDTO struct {
	ID              uuid.UUID             `json:"id"`
	Number          string                `json:"number"`
	Type            enums.RequestType     `json:"type"`
	State           enums.RequestState    `json:"state"`
	Priority        enums.RequestPriority `json:"priority"`
	Urgency         enums.RequestUrgency  `json:"urgency"`
	Subject         string                `json:"subject"`
	Description     *string               `json:"description,omitempty"`
	RequesterID     uuid.UUID             `json:"requesterId"`
	RequesterName   string                `json:"requesterName,omitempty"`
	AssetID         *uuid.UUID            `json:"assetId,omitempty"`
	AssetCode       string                `json:"assetCode,omitempty"`
	CategoryID      *uuid.UUID            `json:"categoryId,omitempty"`
	CategoryName    string                `json:"categoryName,omitempty"`
	AssignedToID    *uuid.UUID            `json:"assignedToId,omitempty"`
	AssignedToName  string                `json:"assignedToName,omitempty"`
	Deadline        *time.Time            `json:"deadline,omitempty"`
	SubmittedAt     *time.Time            `json:"submittedAt,omitempty"`
	DecidedAt       *time.Time            `json:"decidedAt,omitempty"`
	DecidedByID     *uuid.UUID            `json:"decidedById,omitempty"`
	RejectionReason *string               `json:"rejectionReason,omitempty"`
	StartedAt       *time.Time            `json:"startedAt,omitempty"`
	CompletedAt     *time.Time            `json:"completedAt,omitempty"`
	Resolution      *string               `json:"resolution,omitempty"`
	EstimatedCost   *decimal.Decimal      `json:"estimatedCost,omitempty"`
	ActualCost      *decimal.Decimal      `json:"actualCost,omitempty"`
	Overdue         bool                  `json:"overdue"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// CreateRequestInput captures a new request. RequiredDate, when set, becomes
// the deadline; otherwise the deadline is derived from urgency.
type CreateRequestInput struct {
	Type          string           `json:"type" validate:"required"`
	Subject       string           `json:"subject" validate:"required,max=200"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,min=10"`
	Priority      string           `json:"priority,omitempty"`
	Urgency       string           `json:"urgency,omitempty"`
	AssetID       *uuid.UUID       `json:"assetId,omitempty"`
	CategoryID    *uuid.UUID       `json:"categoryId,omitempty"`
	RequiredDate  *time.Time       `json:"requiredDate,omitempty"`
	EstimatedCost *decimal.Decimal `json:"estimatedCost,omitempty"`
}

// UpdateRequestInput mutates a draft request. Asset and category
// references distinguish "absent" from an explicit null, so a draft
// can drop a reference before resubmission.
type UpdateRequestInput struct {
	Subject       *string            `json:"subject,omitempty" validate:"omitempty,max=200"`
	Description   *string            `json:"description,omitempty" validate:"omitempty,min=10"`
	Priority      *string            `json:"priority,omitempty"`
	Urgency       *string            `json:"urgency,omitempty"`
	AssetID       types.NullableUUID `json:"assetId,omitempty"`
	CategoryID    types.NullableUUID `json:"categoryId,omitempty"`
	RequiredDate  *time.Time         `json:"requiredDate,omitempty"`
	EstimatedCost *decimal.Decimal   `json:"estimatedCost,omitempty"`
}

// RejectInput carries the mandatory rejection reason.
type RejectInput struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// CompleteInput closes out an in-progress request.
type CompleteInput struct {
	Resolution string           `json:"resolution" validate:"required,min=5"`
	AssetID    *uuid.UUID       `json:"assetId,omitempty"`
	ActualCost *decimal.Decimal `json:"actualCost,omitempty"`
}

// ListParams filters the request list.
type ListParams struct {
	pagination.Params
	State        string
	Type         string
	RequesterID  uuid.UUID
	AssignedToID uuid.UUID
	Search       string
}

// ListResult wraps a page of requests and the next cursor.
type ListResult struct {
	Items  []RequestDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

type listQuery struct {
	State        *enums.RequestState
	Type         *enums.RequestType
	RequesterID  uuid.UUID
	AssignedToID uuid.UUID
	Search       string
	Limit        int
	Cursor       *pagination.Cursor
}

func toDTO(m models.AssetRequest, now time.Time) RequestDTO {
	dto := RequestDTO{
		ID:              m.ID,
		Number:          m.Number,
		Type:            m.Type,
		State:           m.State,
		Priority:        m.Priority,
		Urgency:         m.Urgency,
		Subject:         m.Subject,
		Description:     m.Description,
		RequesterID:     m.RequesterID,
		AssetID:         m.AssetID,
		CategoryID:      m.CategoryID,
		AssignedToID:    m.AssignedToID,
		Deadline:        m.Deadline,
		SubmittedAt:     m.SubmittedAt,
		DecidedAt:       m.DecidedAt,
		DecidedByID:     m.DecidedByID,
		RejectionReason: m.RejectionReason,
		StartedAt:       m.StartedAt,
		CompletedAt:     m.CompletedAt,
		Resolution:      m.Resolution,
		EstimatedCost:   m.EstimatedCost,
		ActualCost:      m.ActualCost,
		Overdue:         m.IsOverdue(now),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Requester != nil {
		dto.RequesterName = m.Requester.FullName()
	}
	if m.Asset != nil {
		dto.AssetCode = m.Asset.Code
	}
	if m.Category != nil {
		dto.CategoryName = m.Category.Name
	}
	if m.AssignedTo != nil {
		dto.AssignedToName = m.AssignedTo.FullName()
	}
	return dto
}
