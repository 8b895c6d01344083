package assignments

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/internal/notifications"
	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
)

type stubAssignmentRepo struct {
	byID       map[uuid.UUID]*models.AssetAssignment
	activeByAs map[uuid.UUID]*models.AssetAssignment
	created    *models.AssetAssignment
	updated    *models.AssetAssignment
	listRows   []models.AssetAssignment
}

func newStubAssignmentRepo() *stubAssignmentRepo {
	return &stubAssignmentRepo{
		byID:       make(map[uuid.UUID]*models.AssetAssignment),
		activeByAs: make(map[uuid.UUID]*models.AssetAssignment),
	}
}

func (s *stubAssignmentRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubAssignmentRepo) Create(ctx context.Context, assignment *models.AssetAssignment) (*models.AssetAssignment, error) {
	assignment.ID = uuid.New()
	s.created = assignment
	s.byID[assignment.ID] = assignment
	if assignment.State == enums.AssignmentStateActive {
		s.activeByAs[assignment.AssetID] = assignment
	}
	return assignment, nil
}

func (s *stubAssignmentRepo) Update(ctx context.Context, assignment *models.AssetAssignment) error {
	s.updated = assignment
	if assignment.State != enums.AssignmentStateActive {
		delete(s.activeByAs, assignment.AssetID)
	}
	return nil
}

func (s *stubAssignmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetAssignment, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAssignmentRepo) FindActiveByAsset(ctx context.Context, assetID uuid.UUID) (*models.AssetAssignment, error) {
	if a, ok := s.activeByAs[assetID]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAssignmentRepo) List(ctx context.Context, opts listQuery) ([]models.AssetAssignment, error) {
	return s.listRows, nil
}

func (s *stubAssignmentRepo) ListActiveOverdue(ctx context.Context, now time.Time) ([]models.AssetAssignment, error) {
	return nil, nil
}

func (s *stubAssignmentRepo) CountActive(ctx context.Context) (int64, error) {
	return int64(len(s.activeByAs)), nil
}

type stubTxAssetRepo struct {
	byID    map[uuid.UUID]*models.Asset
	updated *models.Asset
}

func (s *stubTxAssetRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTxAssetRepo) Update(ctx context.Context, asset *models.Asset) error {
	s.updated = asset
	return nil
}

type stubUserRepo struct {
	byID map[uuid.UUID]*models.User
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubNotifier struct {
	sent []notifications.NotifyParams
}

func (s *stubNotifier) Notify(ctx context.Context, params notifications.NotifyParams) error {
	s.sent = append(s.sent, params)
	return nil
}

type fixture struct {
	repo     *stubAssignmentRepo
	assets   *stubTxAssetRepo
	users    *stubUserRepo
	notifier *stubNotifier
	svc      Service
	asset    *models.Asset
	user     *models.User
	manager  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubAssignmentRepo()
	assetRepo := &stubTxAssetRepo{byID: make(map[uuid.UUID]*models.Asset)}
	userRepo := &stubUserRepo{byID: make(map[uuid.UUID]*models.User)}
	sink := &stubNotifier{}

	asset := &models.Asset{ID: uuid.New(), Code: "LAP-00001", Name: "ThinkPad", State: enums.AssetStateAvailable}
	assetRepo.byID[asset.ID] = asset
	user := &models.User{ID: uuid.New(), Email: "emp@example.com", FirstName: "Sam", LastName: "Ng", Role: enums.UserRoleEmployee, IsActive: true}
	userRepo.byID[user.ID] = user

	svc, err := NewService(ServiceParams{
		Repo:         repo,
		AssetsFromTx: func(tx *gorm.DB) assetsRepository { return assetRepo },
		Users:        userRepo,
		TxRunner:     passthroughTx{},
		Notifier:     sink,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{
		repo:     repo,
		assets:   assetRepo,
		users:    userRepo,
		notifier: sink,
		svc:      svc,
		asset:    asset,
		user:     user,
		manager:  uuid.New(),
	}
}

func (f *fixture) createActive(t *testing.T) *AssignmentDTO {
	t.Helper()
	dto, err := f.svc.CreateAssignment(context.Background(), f.manager, CreateAssignmentInput{
		AssetID:      f.asset.ID,
		AssigneeID:   f.user.ID,
		ConditionOut: enums.AssetConditionGood,
	})
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	return dto
}

func TestCreateAssignmentMovesAssetToAssigned(t *testing.T) {
	f := newFixture(t)
	dto := f.createActive(t)

	if dto.State != enums.AssignmentStateActive {
		t.Fatalf("expected active assignment, got %s", dto.State)
	}
	if f.asset.State != enums.AssetStateAssigned {
		t.Fatalf("expected asset assigned, got %s", f.asset.State)
	}
	if f.asset.CurrentHolderID == nil || *f.asset.CurrentHolderID != f.user.ID {
		t.Fatal("expected asset holder set to assignee")
	}
}

func TestCreateAssignmentNotifiesAssignee(t *testing.T) {
	f := newFixture(t)
	f.createActive(t)

	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifier.sent))
	}
	sent := f.notifier.sent[0]
	if sent.RecipientID != f.user.ID {
		t.Fatalf("expected assignee recipient, got %s", sent.RecipientID)
	}
	if sent.Kind != enums.NotificationKindAssignmentCreated {
		t.Fatalf("unexpected kind %s", sent.Kind)
	}
	if !strings.Contains(sent.Title, f.asset.Code) {
		t.Fatalf("expected asset code in title, got %q", sent.Title)
	}
}

func TestReturnAssignmentNotifiesAssigner(t *testing.T) {
	f := newFixture(t)
	created := f.createActive(t)
	f.notifier.sent = nil

	if _, err := f.svc.ReturnAssignment(context.Background(), created.ID, ReturnInput{ConditionIn: enums.AssetConditionGood}); err != nil {
		t.Fatalf("return: %v", err)
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifier.sent))
	}
	sent := f.notifier.sent[0]
	if sent.RecipientID != f.manager {
		t.Fatalf("expected assigner recipient, got %s", sent.RecipientID)
	}
	if sent.Kind != enums.NotificationKindAssignmentClosed {
		t.Fatalf("unexpected kind %s", sent.Kind)
	}
	if !strings.Contains(sent.Title, "returned") {
		t.Fatalf("expected returned verb, got %q", sent.Title)
	}
}

func TestMarkLostNotifiesAssigner(t *testing.T) {
	f := newFixture(t)
	created := f.createActive(t)
	f.notifier.sent = nil

	if _, err := f.svc.MarkLost(context.Background(), created.ID, CloseInput{}); err != nil {
		t.Fatalf("mark lost: %v", err)
	}
	if len(f.notifier.sent) != 1 || !strings.Contains(f.notifier.sent[0].Title, "lost") {
		t.Fatalf("expected lost notification, got %+v", f.notifier.sent)
	}
}

func TestCreateAssignmentAssetNotAvailable(t *testing.T) {
	f := newFixture(t)
	f.asset.State = enums.AssetStateMaintenance

	_, err := f.svc.CreateAssignment(context.Background(), f.manager, CreateAssignmentInput{
		AssetID:      f.asset.ID,
		AssigneeID:   f.user.ID,
		ConditionOut: enums.AssetConditionGood,
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCreateAssignmentInactiveAssignee(t *testing.T) {
	f := newFixture(t)
	f.user.IsActive = false

	_, err := f.svc.CreateAssignment(context.Background(), f.manager, CreateAssignmentInput{
		AssetID:      f.asset.ID,
		AssigneeID:   f.user.ID,
		ConditionOut: enums.AssetConditionGood,
	})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateAssignmentPastReturnDate(t *testing.T) {
	f := newFixture(t)
	past := time.Now().UTC().AddDate(0, 0, -2)

	_, err := f.svc.CreateAssignment(context.Background(), f.manager, CreateAssignmentInput{
		AssetID:            f.asset.ID,
		AssigneeID:         f.user.ID,
		ConditionOut:       enums.AssetConditionGood,
		ExpectedReturnDate: &past,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestReturnAssignmentGoodCondition(t *testing.T) {
	f := newFixture(t)
	created := f.createActive(t)

	dto, err := f.svc.ReturnAssignment(context.Background(), created.ID, ReturnInput{ConditionIn: enums.AssetConditionGood})
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if dto.State != enums.AssignmentStateReturned {
		t.Fatalf("expected returned, got %s", dto.State)
	}
	if f.asset.State != enums.AssetStateAvailable {
		t.Fatalf("expected asset available, got %s", f.asset.State)
	}
	if f.asset.CurrentHolderID != nil {
		t.Fatal("expected holder cleared")
	}
	if dto.ReturnedAt == nil {
		t.Fatal("expected returned_at set")
	}
}

func TestReturnAssignmentDamagedRoutesToRepair(t *testing.T) {
	f := newFixture(t)
	created := f.createActive(t)

	dto, err := f.svc.ReturnAssignment(context.Background(), created.ID, ReturnInput{ConditionIn: enums.AssetConditionDamaged})
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if dto.State != enums.AssignmentStateReturned {
		t.Fatalf("expected returned, got %s", dto.State)
	}
	if f.asset.State != enums.AssetStateRepair {
		t.Fatalf("expected asset in repair, got %s", f.asset.State)
	}
}

func TestMarkLostDisposesAsset(t *testing.T) {
	f := newFixture(t)
	created := f.createActive(t)

	dto, err := f.svc.MarkLost(context.Background(), created.ID, CloseInput{})
	if err != nil {
		t.Fatalf("mark lost: %v", err)
	}
	if dto.State != enums.AssignmentStateLost {
		t.Fatalf("expected lost, got %s", dto.State)
	}
	if f.asset.State != enums.AssetStateDisposed {
		t.Fatalf("expected asset disposed, got %s", f.asset.State)
	}
}

func TestMarkDamagedSendsAssetToRepair(t *testing.T) {
	f := newFixture(t)
	created := f.createActive(t)

	dto, err := f.svc.MarkDamaged(context.Background(), created.ID, CloseInput{})
	if err != nil {
		t.Fatalf("mark damaged: %v", err)
	}
	if dto.State != enums.AssignmentStateDamaged {
		t.Fatalf("expected damaged, got %s", dto.State)
	}
	if dto.ConditionIn == nil || *dto.ConditionIn != enums.AssetConditionDamaged {
		t.Fatal("expected condition_in damaged")
	}
	if f.asset.State != enums.AssetStateRepair {
		t.Fatalf("expected asset in repair, got %s", f.asset.State)
	}
}

func TestCloseAlreadyClosedAssignment(t *testing.T) {
	f := newFixture(t)
	created := f.createActive(t)
	if _, err := f.svc.ReturnAssignment(context.Background(), created.ID, ReturnInput{ConditionIn: enums.AssetConditionGood}); err != nil {
		t.Fatalf("first return: %v", err)
	}

	_, err := f.svc.ReturnAssignment(context.Background(), created.ID, ReturnInput{ConditionIn: enums.AssetConditionGood})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestSecondActiveAssignmentRejected(t *testing.T) {
	f := newFixture(t)
	f.createActive(t)
	f.asset.State = enums.AssetStateAvailable // force past the asset state guard

	_, err := f.svc.CreateAssignment(context.Background(), f.manager, CreateAssignmentInput{
		AssetID:      f.asset.ID,
		AssigneeID:   f.user.ID,
		ConditionOut: enums.AssetConditionGood,
	})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}
