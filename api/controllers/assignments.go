package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rvalverde/assettrack-backend/api/responses"
	"github.com/rvalverde/assettrack-backend/api/validators"
	assignmentsvc "github.com/rvalverde/assettrack-backend/internal/assignments"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
	"github.com/rvalverde/assettrack-backend/pkg/logger"
)

// CreateAssignment hands an asset to an employee. The issuing user comes
// from the request context.
func CreateAssignment(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		assignedBy, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignmentsvc.CreateAssignmentInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.CreateAssignment(r.Context(), assignedBy, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, assignment)
	}
}

// ReturnAssignment records the hand-back of an assigned asset.
func ReturnAssignment(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		id, err := pathUUID(r, "assignmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignmentsvc.ReturnInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.ReturnAssignment(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}

// MarkAssignmentLost closes an assignment whose asset cannot be recovered.
func MarkAssignmentLost(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return closeAssignmentHandler(svc, logg, assignmentsvc.Service.MarkLost)
}

// MarkAssignmentDamaged closes an assignment whose asset came back broken.
func MarkAssignmentDamaged(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return closeAssignmentHandler(svc, logg, assignmentsvc.Service.MarkDamaged)
}

func closeAssignmentHandler(
	svc assignmentsvc.Service,
	logg *logger.Logger,
	close func(assignmentsvc.Service, context.Context, uuid.UUID, assignmentsvc.CloseInput) (*assignmentsvc.AssignmentDTO, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		id, err := pathUUID(r, "assignmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignmentsvc.CloseInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := close(svc, r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}

// GetAssignment fetches a single assignment.
func GetAssignment(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		id, err := pathUUID(r, "assignmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.GetAssignment(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, assignment)
	}
}

// ListAssignments returns a filtered, cursor-paginated page of assignments.
func ListAssignments(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assignment service unavailable"))
			return
		}

		params, err := parseAssignmentListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.ListAssignments(r.Context(), *params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func parseAssignmentListParams(r *http.Request) (*assignmentsvc.ListParams, error) {
	params := assignmentsvc.ListParams{}

	if raw := strings.TrimSpace(r.URL.Query().Get("state")); raw != "" {
		state, err := enums.ParseAssignmentState(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid state")
		}
		params.State = &state
	}

	assetID, err := queryUUID(r, "assetId")
	if err != nil {
		return nil, err
	}
	params.AssetID = assetID

	assigneeID, err := queryUUID(r, "assigneeId")
	if err != nil {
		return nil, err
	}
	params.AssigneeID = assigneeID

	limit, err := queryLimit(r)
	if err != nil {
		return nil, err
	}
	params.Limit = limit
	params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

	return &params, nil
}
