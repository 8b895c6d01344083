package assignments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/internal/assets"
	"github.com/rvalverde/assettrack-backend/internal/notifications"
	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
	pkgpagination "github.com/rvalverde/assettrack-backend/pkg/pagination"
)

// Repository defines persistence operations for assignment rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, assignment *models.AssetAssignment) (*models.AssetAssignment, error)
	Update(ctx context.Context, assignment *models.AssetAssignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AssetAssignment, error)
	FindActiveByAsset(ctx context.Context, assetID uuid.UUID) (*models.AssetAssignment, error)
	List(ctx context.Context, opts listQuery) ([]models.AssetAssignment, error)
	ListActiveOverdue(ctx context.Context, now time.Time) ([]models.AssetAssignment, error)
	CountActive(ctx context.Context) (int64, error)
}

type assetsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	Update(ctx context.Context, asset *models.Asset) error
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Notify(ctx context.Context, params notifications.NotifyParams) error
}

// assetsTxFactory rebinds the asset repository to a transaction. The plain
// GORM-backed implementation just wraps the tx handle.
type assetsTxFactory func(tx *gorm.DB) assetsRepository

// NewAssetsTxFactory adapts a transactional asset repository constructor
// into the factory the custody flow expects.
func NewAssetsTxFactory(open func(tx *gorm.DB) *assets.Repository) assetsTxFactory {
	return func(tx *gorm.DB) assetsRepository {
		return open(tx)
	}
}

// Service exposes custody hand-out and hand-back semantics.
type Service interface {
	CreateAssignment(ctx context.Context, assignedBy uuid.UUID, input CreateAssignmentInput) (*AssignmentDTO, error)
	ReturnAssignment(ctx context.Context, id uuid.UUID, input ReturnInput) (*AssignmentDTO, error)
	MarkLost(ctx context.Context, id uuid.UUID, input CloseInput) (*AssignmentDTO, error)
	MarkDamaged(ctx context.Context, id uuid.UUID, input CloseInput) (*AssignmentDTO, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (*AssignmentDTO, error)
	ListAssignments(ctx context.Context, params ListParams) (*ListResult, error)
	ListMyAssignments(ctx context.Context, assigneeID uuid.UUID, params ListParams) (*ListResult, error)
}

type service struct {
	repo     Repository
	assetsTx assetsTxFactory
	users    usersRepository
	tx       txRunner
	notifier notifier
	now      func() time.Time
}

// ServiceParams bundles assignment service dependencies.
type ServiceParams struct {
	Repo         Repository
	AssetsFromTx assetsTxFactory
	Users        usersRepository
	TxRunner     txRunner
	Notifier     notifier
}

// NewService builds an assignment service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	if params.AssetsFromTx == nil {
		return nil, fmt.Errorf("asset tx factory required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:     params.Repo,
		assetsTx: params.AssetsFromTx,
		users:    params.Users,
		tx:       params.TxRunner,
		notifier: params.Notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) CreateAssignment(ctx context.Context, assignedBy uuid.UUID, input CreateAssignmentInput) (*AssignmentDTO, error) {
	if assignedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.AssetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset_id is required")
	}
	if input.AssigneeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee_id is required")
	}
	if !input.ConditionOut.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid condition_out")
	}
	now := s.now()
	if input.ExpectedReturnDate != nil && input.ExpectedReturnDate.Before(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expected_return_date cannot be in the past")
	}

	assignee, err := s.users.FindByID(ctx, input.AssigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup assignee")
	}
	if !assignee.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "assignee is inactive")
	}

	var created *models.AssetAssignment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assetRepo := s.assetsTx(tx)

		asset, err := assetRepo.FindByID(ctx, input.AssetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup asset")
		}
		if asset.State != enums.AssetStateAvailable {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "asset is not available for assignment")
		}

		if _, err := repo.FindActiveByAsset(ctx, asset.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "asset already has an active assignment")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active assignment")
		}

		assignment := &models.AssetAssignment{
			AssetID:            asset.ID,
			AssigneeID:         assignee.ID,
			AssignedByID:       assignedBy,
			State:              enums.AssignmentStateActive,
			AssignedAt:         now,
			ExpectedReturnDate: input.ExpectedReturnDate,
			ConditionOut:       input.ConditionOut,
			Notes:              input.Notes,
		}
		created, err = repo.Create(ctx, assignment)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
		}

		asset.State = enums.AssetStateAssigned
		holderID := assignee.ID
		asset.CurrentHolderID = &holderID
		if err := assetRepo.Update(ctx, asset); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset custody")
		}
		created.Asset = asset
		created.Assignee = assignee
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyUser(ctx, created.AssigneeID, enums.NotificationKindAssignmentCreated,
		fmt.Sprintf("Asset %s assigned to you", created.Asset.Code),
		created.Asset.Name,
		fmt.Sprintf("assignment-created:%s", created.ID))

	dto := toDTO(*created, now)
	return &dto, nil
}

func (s *service) ReturnAssignment(ctx context.Context, id uuid.UUID, input ReturnInput) (*AssignmentDTO, error) {
	if !input.ConditionIn.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid condition_in")
	}
	// damaged returns route the asset to repair instead of the pool
	assetState := enums.AssetStateAvailable
	if input.ConditionIn == enums.AssetConditionDamaged {
		assetState = enums.AssetStateRepair
	}
	return s.close(ctx, id, closeParams{
		assignmentState: enums.AssignmentStateReturned,
		assetState:      assetState,
		conditionIn:     &input.ConditionIn,
		notes:           input.Notes,
	})
}

func (s *service) MarkLost(ctx context.Context, id uuid.UUID, input CloseInput) (*AssignmentDTO, error) {
	// a lost asset leaves the fleet entirely
	return s.close(ctx, id, closeParams{
		assignmentState: enums.AssignmentStateLost,
		assetState:      enums.AssetStateDisposed,
		notes:           input.Notes,
	})
}

func (s *service) MarkDamaged(ctx context.Context, id uuid.UUID, input CloseInput) (*AssignmentDTO, error) {
	condition := enums.AssetConditionDamaged
	return s.close(ctx, id, closeParams{
		assignmentState: enums.AssignmentStateDamaged,
		assetState:      enums.AssetStateRepair,
		conditionIn:     &condition,
		notes:           input.Notes,
	})
}

type closeParams struct {
	assignmentState enums.AssignmentState
	assetState      enums.AssetState
	conditionIn     *enums.AssetCondition
	notes           *string
}

func (s *service) close(ctx context.Context, id uuid.UUID, params closeParams) (*AssignmentDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id is required")
	}

	now := s.now()
	var closed *models.AssetAssignment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		assetRepo := s.assetsTx(tx)

		assignment, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup assignment")
		}
		if assignment.State != enums.AssignmentStateActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "assignment already closed")
		}

		assignment.State = params.assignmentState
		assignment.ReturnedAt = &now
		assignment.ConditionIn = params.conditionIn
		if params.notes != nil {
			assignment.Notes = mergeNotes(assignment.Notes, *params.notes)
		}
		if err := repo.Update(ctx, assignment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update assignment")
		}

		asset, err := assetRepo.FindByID(ctx, assignment.AssetID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup asset")
		}
		asset.State = params.assetState
		asset.CurrentHolderID = nil
		asset.CurrentHolder = nil
		if err := assetRepo.Update(ctx, asset); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset custody")
		}
		assignment.Asset = asset
		closed = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyUser(ctx, closed.AssignedByID, enums.NotificationKindAssignmentClosed,
		fmt.Sprintf("Asset %s %s", closed.Asset.Code, closeVerb(params.assignmentState)),
		closed.Asset.Name,
		fmt.Sprintf("assignment-closed:%s", closed.ID))

	dto := toDTO(*closed, now)
	return &dto, nil
}

func closeVerb(state enums.AssignmentState) string {
	switch state {
	case enums.AssignmentStateLost:
		return "reported lost"
	case enums.AssignmentStateDamaged:
		return "reported damaged"
	default:
		return "returned"
	}
}

// notification failures never block custody changes
func (s *service) notifyUser(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, title, message, dedupeKey string) {
	_ = s.notifier.Notify(ctx, notifications.NotifyParams{
		RecipientID: userID,
		Kind:        kind,
		Title:       title,
		Message:     message,
		DedupeKey:   dedupeKey,
	})
}

func (s *service) GetAssignment(ctx context.Context, id uuid.UUID) (*AssignmentDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignment id is required")
	}
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup assignment")
	}
	dto := toDTO(*assignment, s.now())
	return &dto, nil
}

func (s *service) ListAssignments(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.State != nil && !params.State.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid assignment state filter")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		state:      params.State,
		assetID:    params.AssetID,
		assigneeID: params.AssigneeID,
		limit:      pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	now := s.now()
	items := make([]AssignmentDTO, len(rows))
	for i, row := range rows {
		items[i] = toDTO(row, now)
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) ListMyAssignments(ctx context.Context, assigneeID uuid.UUID, params ListParams) (*ListResult, error) {
	if assigneeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee id is required")
	}
	params.AssigneeID = &assigneeID
	return s.ListAssignments(ctx, params)
}

func mergeNotes(existing *string, extra string) *string {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return existing
	}
	if existing == nil || strings.TrimSpace(*existing) == "" {
		return &extra
	}
	merged := *existing + "\n" + extra
	return &merged
}
