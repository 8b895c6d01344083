package requests

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/internal/notifications"
	"github.com/rvalverde/assettrack-backend/pkg/config"
	"github.com/rvalverde/assettrack-backend/pkg/db"
	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
	pkgpagination "github.com/rvalverde/assettrack-backend/pkg/pagination"
)

// numberGenRetries bounds how many times number generation retries after a
// unique-index collision from a concurrent insert.
const numberGenRetries = 3

// technicianRotationCounter is the Redis counter behind round-robin
// auto-assignment of approved requests.
const technicianRotationCounter = "requests:assign:technician"

type requestsRepository interface {
	Create(ctx context.Context, request *models.AssetRequest) (*models.AssetRequest, error)
	Update(ctx context.Context, request *models.AssetRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AssetRequest, error)
	List(ctx context.Context, opts listQuery) ([]models.AssetRequest, error)
	LatestNumberForPrefix(ctx context.Context, prefix string) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListActiveByRole(ctx context.Context, role enums.UserRole) ([]models.User, error)
	ListManagers(ctx context.Context) ([]models.User, error)
}

type notifier interface {
	Notify(ctx context.Context, params notifications.NotifyParams) error
}

type rotationCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
	CounterKey(name string) string
}

// Actor identifies who is driving a workflow action.
type Actor struct {
	ID   uuid.UUID
	Role enums.UserRole
}

// Service exposes the request workflow.
type Service interface {
	CreateRequest(ctx context.Context, requesterID uuid.UUID, input CreateRequestInput) (*RequestDTO, error)
	UpdateRequest(ctx context.Context, id uuid.UUID, actor Actor, input UpdateRequestInput) (*RequestDTO, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*RequestDTO, error)
	ListRequests(ctx context.Context, params ListParams) (*ListResult, error)
	DeleteRequest(ctx context.Context, id uuid.UUID, actor Actor) error

	Submit(ctx context.Context, id uuid.UUID, actor Actor) (*RequestDTO, error)
	Review(ctx context.Context, id uuid.UUID, actor Actor) (*RequestDTO, error)
	Approve(ctx context.Context, id uuid.UUID, actor Actor) (*RequestDTO, error)
	Reject(ctx context.Context, id uuid.UUID, actor Actor, input RejectInput) (*RequestDTO, error)
	Start(ctx context.Context, id uuid.UUID, actor Actor) (*RequestDTO, error)
	Complete(ctx context.Context, id uuid.UUID, actor Actor, input CompleteInput) (*RequestDTO, error)
	Cancel(ctx context.Context, id uuid.UUID, actor Actor) (*RequestDTO, error)
	Reset(ctx context.Context, id uuid.UUID, actor Actor) (*RequestDTO, error)
}

// ServiceParams bundles the request service dependencies.
type ServiceParams struct {
	Repo     requestsRepository
	Users    usersRepository
	Notifier notifier
	Counter  rotationCounter
	Cfg      config.RequestConfig
}

type service struct {
	repo     requestsRepository
	users    usersRepository
	notifier notifier
	counter  rotationCounter
	cfg      config.RequestConfig
	now      func() time.Time
}

// NewService builds the request workflow service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("request repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Counter == nil {
		return nil, fmt.Errorf("rotation counter required")
	}
	if strings.TrimSpace(params.Cfg.NumberPrefix) == "" {
		return nil, fmt.Errorf("request number prefix required")
	}
	return &service{
		repo:     params.Repo,
		users:    params.Users,
		notifier: params.Notifier,
		counter:  params.Counter,
		cfg:      params.Cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) CreateRequest(ctx context.Context, requesterID uuid.UUID, input CreateRequestInput) (*RequestDTO, error) {
	if requesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requester id is required")
	}
	reqType, err := enums.ParseRequestType(input.Type)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request type")
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	}
	priority := enums.RequestPriorityMedium
	if input.Priority != "" {
		if priority, err = enums.ParseRequestPriority(input.Priority); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority")
		}
	}
	urgency := enums.RequestUrgencyMedium
	if input.Urgency != "" {
		if urgency, err = enums.ParseRequestUrgency(input.Urgency); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid urgency")
		}
	}
	if err := validateTypeReferences(reqType, input.AssetID, input.CategoryID); err != nil {
		return nil, err
	}
	now := s.now()
	if input.RequiredDate != nil && input.RequiredDate.Before(now.Truncate(24*time.Hour)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "required date cannot be in the past")
	}

	request := &models.AssetRequest{
		Type:          reqType,
		State:         enums.RequestStateDraft,
		Priority:      priority,
		Urgency:       urgency,
		Subject:       subject,
		Description:   input.Description,
		RequesterID:   requesterID,
		AssetID:       input.AssetID,
		CategoryID:    input.CategoryID,
		Deadline:      input.RequiredDate,
		EstimatedCost: input.EstimatedCost,
	}

	created, err := s.createWithGeneratedNumber(ctx, request)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*created, now)
	return &dto, nil
}

// createWithGeneratedNumber assigns the next PREFIX-YYYY-NNNNN number and
// inserts, retrying on the unique index when two writers race.
func (s *service) createWithGeneratedNumber(ctx context.Context, request *models.AssetRequest) (*models.AssetRequest, error) {
	prefix := fmt.Sprintf("%s-%d-", s.cfg.NumberPrefix, s.now().Year())
	for attempt := 0; attempt < numberGenRetries; attempt++ {
		latest, err := s.repo.LatestNumberForPrefix(ctx, prefix)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup latest request number")
		}
		next := 1
		if latest != "" {
			if seq, parseErr := strconv.Atoi(strings.TrimPrefix(latest, prefix)); parseErr == nil {
				next = seq + 1
			}
		}
		request.Number = fmt.Sprintf("%s%05d", prefix, next)

		created, err := s.repo.Create(ctx, request)
		if err == nil {
			return created, nil
		}
		if !isUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate request number")
}

func (s *service) UpdateRequest(ctx context.Context, id uuid.UUID, actor Actor, input UpdateRequestInput) (*RequestDTO, error) {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.State != enums.RequestStateDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only draft requests can be edited")
	}
	if err := s.requireOwnerOrStaff(request, actor); err != nil {
		return nil, err
	}

	if input.Subject != nil {
		subject := strings.TrimSpace(*input.Subject)
		if subject == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject cannot be empty")
		}
		request.Subject = subject
	}
	if input.Description != nil {
		request.Description = input.Description
	}
	if input.Priority != nil {
		priority, err := enums.ParseRequestPriority(*input.Priority)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority")
		}
		request.Priority = priority
	}
	if input.Urgency != nil {
		urgency, err := enums.ParseRequestUrgency(*input.Urgency)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid urgency")
		}
		request.Urgency = urgency
	}
	if input.AssetID.Valid {
		request.AssetID = input.AssetID.Value
	}
	if input.CategoryID.Valid {
		request.CategoryID = input.CategoryID.Value
	}
	if input.RequiredDate != nil {
		if input.RequiredDate.Before(s.now().Truncate(24 * time.Hour)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "required date cannot be in the past")
		}
		request.Deadline = input.RequiredDate
	}
	if input.EstimatedCost != nil {
		request.EstimatedCost = input.EstimatedCost
	}
	if err := validateTypeReferences(request.Type, request.AssetID, request.CategoryID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update request")
	}
	dto := toDTO(*request, s.now())
	return &dto, nil
}

func (s *service) GetRequest(ctx context.Context, id uuid.UUID) (*RequestDTO, error) {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*request, s.now())
	return &dto, nil
}

func (s *service) ListRequests(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listQuery{
		RequesterID:  params.RequesterID,
		AssignedToID: params.AssignedToID,
		Search:       strings.TrimSpace(params.Search),
		Limit:        pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.State != "" {
		state, err := enums.ParseRequestState(params.State)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid state filter")
		}
		query.State = &state
	}
	if params.Type != "" {
		reqType, err := enums.ParseRequestType(params.Type)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type filter")
		}
		query.Type = &reqType
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	now := s.now()
	items := make([]RequestDTO, len(rows))
	for i, row := range rows {
		items[i] = toDTO(row, now)
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) DeleteRequest(ctx context.Context, id uuid.UUID, actor Actor) error {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return err
	}
	if request.State != enums.RequestStateDraft {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only draft requests can be deleted")
	}
	if err := s.requireOwnerOrStaff(request, actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete request")
	}
	return nil
}

func (s *service) Submit(ctx context.Context, id uuid.UUID, actor Actor) (*RequestDTO, error) {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.State != enums.RequestStateDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only draft requests can be submitted")
	}
	if err := s.requireOwnerOrStaff(request, actor); err != nil {
		return nil, err
	}
	if err := validateTypeReferences(request.Type, request.AssetID, request.CategoryID); err != nil {
		return nil, err
	}

	now := s.now()
	request.State = enums.RequestStateSubmitted
	request.SubmittedAt = &now
	if request.Deadline == nil {
		deadline := deriveDeadline(request.Priority, request.Urgency, now)
		request.Deadline = &deadline
	}
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit request")
	}

	s.notifyManagers(ctx, request, fmt.Sprintf("Request %s submitted", request.Number), request.Subject)

	dto := toDTO(*request, now)
	return &dto, nil
}

func (s *service) Review(ctx context.Context, id uuid.UUID, actor Actor) (*RequestDTO, error) {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.State != enums.RequestStateSubmitted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only submitted requests can move to review")
	}
	request.State = enums.RequestStateUnderReview
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "review request")
	}
	dto := toDTO(*request, s.now())
	return &dto, nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID, actor Actor) (*RequestDTO, error) {
	if !actor.Role.AtLeast(enums.UserRoleManager) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "approving requests requires manager role")
	}
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.State != enums.RequestStateSubmitted && request.State != enums.RequestStateUnderReview {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only submitted or in-review requests can be approved")
	}

	now := s.now()
	request.State = enums.RequestStateApproved
	request.DecidedAt = &now
	request.DecidedByID = &actor.ID
	request.RejectionReason = nil
	if request.AssignedToID == nil && s.cfg.AutoAssignStaff {
		if assignee := s.pickTechnician(ctx); assignee != nil {
			request.AssignedToID = &assignee.ID
			request.AssignedTo = assignee
		}
	}
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve request")
	}

	s.notifyUser(ctx, request.RequesterID, enums.NotificationKindRequestDecision,
		fmt.Sprintf("Request %s approved", request.Number), request.Subject,
		fmt.Sprintf("request-decision:%s:approved", request.Number))
	if request.AssignedToID != nil {
		s.notifyUser(ctx, *request.AssignedToID, enums.NotificationKindRequestAssigned,
			fmt.Sprintf("Request %s assigned to you", request.Number), request.Subject,
			fmt.Sprintf("request-assigned:%s:%s", request.Number, request.AssignedToID))
	}

	dto := toDTO(*request, now)
	return &dto, nil
}

func (s *service) Reject(ctx context.Context, id uuid.UUID, actor Actor, input RejectInput) (*RequestDTO, error) {
	if !actor.Role.AtLeast(enums.UserRoleManager) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "rejecting requests requires manager role")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.State != enums.RequestStateSubmitted && request.State != enums.RequestStateUnderReview {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only submitted or in-review requests can be rejected")
	}

	now := s.now()
	request.State = enums.RequestStateRejected
	request.DecidedAt = &now
	request.DecidedByID = &actor.ID
	request.RejectionReason = &reason
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject request")
	}

	s.notifyUser(ctx, request.RequesterID, enums.NotificationKindRequestDecision,
		fmt.Sprintf("Request %s rejected", request.Number), reason,
		fmt.Sprintf("request-decision:%s:rejected", request.Number))

	dto := toDTO(*request, now)
	return &dto, nil
}

func (s *service) Start(ctx context.Context, id uuid.UUID, actor Actor) (*RequestDTO, error) {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.State != enums.RequestStateApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only approved requests can be started")
	}

	now := s.now()
	request.State = enums.RequestStateInProgress
	request.StartedAt = &now
	if request.AssignedToID == nil {
		request.AssignedToID = &actor.ID
	}
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start request")
	}
	dto := toDTO(*request, now)
	return &dto, nil
}

func (s *service) Complete(ctx context.Context, id uuid.UUID, actor Actor, input CompleteInput) (*RequestDTO, error) {
	resolution := strings.TrimSpace(input.Resolution)
	if resolution == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "resolution is required")
	}
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.State != enums.RequestStateInProgress {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only in-progress requests can be completed")
	}

	now := s.now()
	request.State = enums.RequestStateCompleted
	request.CompletedAt = &now
	request.Resolution = &resolution
	if input.AssetID != nil {
		request.AssetID = input.AssetID
	}
	if input.ActualCost != nil {
		request.ActualCost = input.ActualCost
	}
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete request")
	}

	s.notifyUser(ctx, request.RequesterID, enums.NotificationKindRequestDecision,
		fmt.Sprintf("Request %s completed", request.Number), resolution,
		fmt.Sprintf("request-decision:%s:completed", request.Number))

	dto := toDTO(*request, now)
	return &dto, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, actor Actor) (*RequestDTO, error) {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.State.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request is already closed")
	}
	if !actor.Role.AtLeast(enums.UserRoleTechnician) {
		if request.RequesterID != actor.ID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the requester can cancel this request")
		}
		switch request.State {
		case enums.RequestStateDraft, enums.RequestStateSubmitted, enums.RequestStateUnderReview:
		default:
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request is already being worked on")
		}
	}

	request.State = enums.RequestStateCancelled
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel request")
	}
	dto := toDTO(*request, s.now())
	return &dto, nil
}

func (s *service) Reset(ctx context.Context, id uuid.UUID, actor Actor) (*RequestDTO, error) {
	if !actor.Role.AtLeast(enums.UserRoleManager) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "resetting requests requires manager role")
	}
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.State != enums.RequestStateSubmitted && request.State != enums.RequestStateRejected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only submitted or rejected requests can return to draft")
	}

	request.State = enums.RequestStateDraft
	request.SubmittedAt = nil
	request.DecidedAt = nil
	request.DecidedByID = nil
	request.RejectionReason = nil
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset request")
	}
	dto := toDTO(*request, s.now())
	return &dto, nil
}

// pickTechnician rotates over active technicians via a shared counter so
// approvals spread evenly across workers and instances. Returns nil when no
// technician is available.
func (s *service) pickTechnician(ctx context.Context) *models.User {
	technicians, err := s.users.ListActiveByRole(ctx, enums.UserRoleTechnician)
	if err != nil || len(technicians) == 0 {
		return nil
	}
	idx := 0
	if n, err := s.counter.Incr(ctx, s.counter.CounterKey(technicianRotationCounter)); err == nil {
		idx = int((n - 1) % int64(len(technicians)))
	}
	return &technicians[idx]
}

// notification failures never block the workflow
func (s *service) notifyUser(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, title, message, dedupeKey string) {
	_ = s.notifier.Notify(ctx, notifications.NotifyParams{
		RecipientID: userID,
		Kind:        kind,
		Title:       title,
		Message:     message,
		DedupeKey:   dedupeKey,
	})
}

func (s *service) notifyManagers(ctx context.Context, request *models.AssetRequest, title, message string) {
	managers, err := s.users.ListManagers(ctx)
	if err != nil {
		return
	}
	for _, manager := range managers {
		s.notifyUser(ctx, manager.ID, enums.NotificationKindRequestAssigned, title, message,
			fmt.Sprintf("request-submitted:%s:%s", request.Number, manager.ID))
	}
}

func (s *service) requireOwnerOrStaff(request *models.AssetRequest, actor Actor) error {
	if actor.Role.AtLeast(enums.UserRoleTechnician) {
		return nil
	}
	if request.RequesterID != actor.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "request belongs to another user")
	}
	return nil
}

func (s *service) findRequest(ctx context.Context, id uuid.UUID) (*models.AssetRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup request")
	}
	return request, nil
}

func validateTypeReferences(reqType enums.RequestType, assetID, categoryID *uuid.UUID) error {
	switch reqType {
	case enums.RequestTypeRepair, enums.RequestTypeReplacement, enums.RequestTypeReturn:
		if assetID == nil || *assetID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("asset reference required for %s requests", reqType))
		}
	case enums.RequestTypeNewAsset:
		if categoryID == nil || *categoryID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "category reference required for new asset requests")
		}
	}
	return nil
}

// deriveDeadline picks a deadline when the requester did not name a required
// date. The most pressing of priority and urgency wins.
func deriveDeadline(priority enums.RequestPriority, urgency enums.RequestUrgency, from time.Time) time.Time {
	switch {
	case priority == enums.RequestPriorityUrgent || urgency == enums.RequestUrgencyCritical:
		return from.AddDate(0, 0, 1)
	case priority == enums.RequestPriorityHigh || urgency == enums.RequestUrgencyHigh:
		return from.AddDate(0, 0, 3)
	case priority == enums.RequestPriorityMedium:
		return from.AddDate(0, 0, 7)
	default:
		return from.AddDate(0, 0, 14)
	}
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || db.IsUniqueViolation(err, "")
}
