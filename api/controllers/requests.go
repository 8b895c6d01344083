package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rvalverde/assettrack-backend/api/responses"
	"github.com/rvalverde/assettrack-backend/api/validators"
	requestsvc "github.com/rvalverde/assettrack-backend/internal/requests"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
	"github.com/rvalverde/assettrack-backend/pkg/logger"
)

func requestActor(r *http.Request) (requestsvc.Actor, error) {
	id, err := currentUserID(r)
	if err != nil {
		return requestsvc.Actor{}, err
	}
	role, err := currentRole(r)
	if err != nil {
		return requestsvc.Actor{}, err
	}
	return requestsvc.Actor{ID: id, Role: role}, nil
}

// CreateRequest drafts a new asset request for the current user.
func CreateRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		requesterID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload requestsvc.CreateRequestInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.CreateRequest(r.Context(), requesterID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// UpdateRequest edits a draft request.
func UpdateRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload requestsvc.UpdateRequestInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.UpdateRequest(r.Context(), id, actor, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// GetRequest fetches a single request.
func GetRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		id, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.GetRequest(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// ListRequests returns a filtered, cursor-paginated page of requests.
func ListRequests(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		params, err := parseRequestListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.ListRequests(r.Context(), *params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// DeleteRequest removes a draft request.
func DeleteRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteRequest(r.Context(), id, actor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type requestTransition func(ctx context.Context, id uuid.UUID, actor requestsvc.Actor) (*requestsvc.RequestDTO, error)

func requestTransitionHandler(svc requestsvc.Service, logg *logger.Logger, pick func(requestsvc.Service) requestTransition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := pick(svc)(r.Context(), id, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// SubmitRequest hands a draft to the review queue.
func SubmitRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return requestTransitionHandler(svc, logg, func(s requestsvc.Service) requestTransition { return s.Submit })
}

// ReviewRequest marks a submitted request as being looked at.
func ReviewRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return requestTransitionHandler(svc, logg, func(s requestsvc.Service) requestTransition { return s.Review })
}

// ApproveRequest approves a request and assigns a technician.
func ApproveRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return requestTransitionHandler(svc, logg, func(s requestsvc.Service) requestTransition { return s.Approve })
}

// StartRequest begins fulfillment work on an approved request.
func StartRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return requestTransitionHandler(svc, logg, func(s requestsvc.Service) requestTransition { return s.Start })
}

// CancelRequest withdraws a request before work finishes.
func CancelRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return requestTransitionHandler(svc, logg, func(s requestsvc.Service) requestTransition { return s.Cancel })
}

// ResetRequest sends a submitted or rejected request back to draft.
func ResetRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return requestTransitionHandler(svc, logg, func(s requestsvc.Service) requestTransition { return s.Reset })
}

// RejectRequest declines a request with a reason.
func RejectRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload requestsvc.RejectInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Reject(r.Context(), id, actor, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// CompleteRequest closes an in-progress request with its resolution.
func CompleteRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "request service unavailable"))
			return
		}

		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload requestsvc.CompleteInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Complete(r.Context(), id, actor, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

func parseRequestListParams(r *http.Request) (*requestsvc.ListParams, error) {
	params := requestsvc.ListParams{
		State:  strings.TrimSpace(r.URL.Query().Get("state")),
		Type:   strings.TrimSpace(r.URL.Query().Get("type")),
		Search: querySearch(r),
	}

	requesterID, err := queryUUID(r, "requesterId")
	if err != nil {
		return nil, err
	}
	if requesterID != nil {
		params.RequesterID = *requesterID
	}

	assignedToID, err := queryUUID(r, "assignedToId")
	if err != nil {
		return nil, err
	}
	if assignedToID != nil {
		params.AssignedToID = *assignedToID
	}

	limit, err := queryLimit(r)
	if err != nil {
		return nil, err
	}
	params.Limit = limit
	params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

	return &params, nil
}
