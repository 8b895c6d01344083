package requests

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/internal/notifications"
	"github.com/rvalverde/assettrack-backend/pkg/config"
	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
)

type stubRequestRepo struct {
	byID    map[uuid.UUID]*models.AssetRequest
	latest  string
	created []*models.AssetRequest
	deleted []uuid.UUID
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{byID: make(map[uuid.UUID]*models.AssetRequest)}
}

func (s *stubRequestRepo) Create(ctx context.Context, request *models.AssetRequest) (*models.AssetRequest, error) {
	request.ID = uuid.New()
	request.CreatedAt = time.Now().UTC()
	s.created = append(s.created, request)
	s.byID[request.ID] = request
	return request, nil
}

func (s *stubRequestRepo) Update(ctx context.Context, request *models.AssetRequest) error {
	s.byID[request.ID] = request
	return nil
}

func (s *stubRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetRequest, error) {
	if r, ok := s.byID[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRequestRepo) List(ctx context.Context, opts listQuery) ([]models.AssetRequest, error) {
	return nil, nil
}

func (s *stubRequestRepo) LatestNumberForPrefix(ctx context.Context, prefix string) (string, error) {
	return s.latest, nil
}

func (s *stubRequestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.byID, id)
	return nil
}

type stubStaffRepo struct {
	technicians []models.User
	managers    []models.User
}

func (s *stubStaffRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStaffRepo) ListActiveByRole(ctx context.Context, role enums.UserRole) ([]models.User, error) {
	if role == enums.UserRoleTechnician {
		return s.technicians, nil
	}
	return nil, nil
}

func (s *stubStaffRepo) ListManagers(ctx context.Context) ([]models.User, error) {
	return s.managers, nil
}

type recordingNotifier struct {
	sent []notifications.NotifyParams
}

func (r *recordingNotifier) Notify(ctx context.Context, params notifications.NotifyParams) error {
	r.sent = append(r.sent, params)
	return nil
}

type stubCounter struct {
	n int64
}

func (s *stubCounter) Incr(ctx context.Context, key string) (int64, error) {
	s.n++
	return s.n, nil
}

func (s *stubCounter) CounterKey(name string) string { return "at:counter:" + name }

type fixture struct {
	repo     *stubRequestRepo
	users    *stubStaffRepo
	notifier *recordingNotifier
	counter  *stubCounter
	svc      Service

	employee Actor
	tech     Actor
	manager  Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubRequestRepo()
	users := &stubStaffRepo{}
	notifier := &recordingNotifier{}
	counter := &stubCounter{}

	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Users:    users,
		Notifier: notifier,
		Counter:  counter,
		Cfg:      config.RequestConfig{NumberPrefix: "REQ", AutoAssignStaff: true},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{
		repo:     repo,
		users:    users,
		notifier: notifier,
		counter:  counter,
		svc:      svc,
		employee: Actor{ID: uuid.New(), Role: enums.UserRoleEmployee},
		tech:     Actor{ID: uuid.New(), Role: enums.UserRoleTechnician},
		manager:  Actor{ID: uuid.New(), Role: enums.UserRoleManager},
	}
}

func (f *fixture) createDraft(t *testing.T, requester Actor) *RequestDTO {
	t.Helper()
	categoryID := uuid.New()
	dto, err := f.svc.CreateRequest(context.Background(), requester.ID, CreateRequestInput{
		Type:       enums.RequestTypeNewAsset.String(),
		Subject:    "Need a laptop",
		CategoryID: &categoryID,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return dto
}

func (f *fixture) submit(t *testing.T, requester Actor) *RequestDTO {
	t.Helper()
	draft := f.createDraft(t, requester)
	dto, err := f.svc.Submit(context.Background(), draft.ID, requester)
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	return dto
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

func TestCreateRequestGeneratesYearScopedNumber(t *testing.T) {
	f := newFixture(t)
	dto := f.createDraft(t, f.employee)

	prefix := "REQ-" + time.Now().UTC().Format("2006") + "-"
	if !strings.HasPrefix(dto.Number, prefix) {
		t.Fatalf("expected number under %s, got %s", prefix, dto.Number)
	}
	if !strings.HasSuffix(dto.Number, "00001") {
		t.Fatalf("expected first sequence number, got %s", dto.Number)
	}
	if dto.State != enums.RequestStateDraft {
		t.Fatalf("expected draft state, got %s", dto.State)
	}
}

func TestCreateRequestSequentialNumber(t *testing.T) {
	f := newFixture(t)
	prefix := "REQ-" + time.Now().UTC().Format("2006") + "-"
	f.repo.latest = prefix + "00041"

	dto := f.createDraft(t, f.employee)
	if dto.Number != prefix+"00042" {
		t.Fatalf("expected %s00042, got %s", prefix, dto.Number)
	}
}

func TestCreateRequestNewAssetNeedsCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateRequest(context.Background(), f.employee.ID, CreateRequestInput{
		Type:    enums.RequestTypeNewAsset.String(),
		Subject: "Need a laptop",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRequestRepairNeedsAsset(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateRequest(context.Background(), f.employee.ID, CreateRequestInput{
		Type:    enums.RequestTypeRepair.String(),
		Subject: "Screen flickers",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestSubmitDerivesDeadlineFromPriorityAndUrgency(t *testing.T) {
	cases := []struct {
		name     string
		priority enums.RequestPriority
		urgency  enums.RequestUrgency
		days     int
	}{
		{"critical urgency", enums.RequestPriorityMedium, enums.RequestUrgencyCritical, 1},
		{"urgent priority overrides mild urgency", enums.RequestPriorityUrgent, enums.RequestUrgencyMedium, 1},
		{"high urgency", enums.RequestPriorityLow, enums.RequestUrgencyHigh, 3},
		{"high priority overrides low urgency", enums.RequestPriorityHigh, enums.RequestUrgencyLow, 3},
		{"medium priority", enums.RequestPriorityMedium, enums.RequestUrgencyMedium, 7},
		{"everything low", enums.RequestPriorityLow, enums.RequestUrgencyLow, 14},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			categoryID := uuid.New()
			draft, err := f.svc.CreateRequest(context.Background(), f.employee.ID, CreateRequestInput{
				Type:       enums.RequestTypeNewAsset.String(),
				Subject:    "Need a laptop",
				Priority:   tc.priority.String(),
				Urgency:    tc.urgency.String(),
				CategoryID: &categoryID,
			})
			if err != nil {
				t.Fatalf("create request: %v", err)
			}

			dto, err := f.svc.Submit(context.Background(), draft.ID, f.employee)
			if err != nil {
				t.Fatalf("submit request: %v", err)
			}
			if dto.State != enums.RequestStateSubmitted {
				t.Fatalf("expected submitted, got %s", dto.State)
			}
			if dto.Deadline == nil {
				t.Fatal("expected derived deadline")
			}
			until := time.Until(*dto.Deadline)
			want := time.Duration(tc.days) * 24 * time.Hour
			if until < want-time.Hour || until > want+time.Hour {
				t.Fatalf("expected deadline about %d days out, got %s", tc.days, until)
			}
		})
	}
}

func TestSubmitNotifiesManagers(t *testing.T) {
	f := newFixture(t)
	f.users.managers = []models.User{
		{ID: uuid.New(), Role: enums.UserRoleManager},
		{ID: uuid.New(), Role: enums.UserRoleAdmin},
	}

	f.submit(t, f.employee)
	if len(f.notifier.sent) != 2 {
		t.Fatalf("expected 2 manager notifications, got %d", len(f.notifier.sent))
	}
}

func TestSubmitRejectsNonDraft(t *testing.T) {
	f := newFixture(t)
	submitted := f.submit(t, f.employee)

	_, err := f.svc.Submit(context.Background(), submitted.ID, f.employee)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestSubmitForeignDraftForbidden(t *testing.T) {
	f := newFixture(t)
	draft := f.createDraft(t, f.employee)

	other := Actor{ID: uuid.New(), Role: enums.UserRoleEmployee}
	_, err := f.svc.Submit(context.Background(), draft.ID, other)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestApproveRequiresManagerRole(t *testing.T) {
	f := newFixture(t)
	submitted := f.submit(t, f.employee)

	_, err := f.svc.Approve(context.Background(), submitted.ID, f.tech)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestApproveRoundRobinsTechnicians(t *testing.T) {
	f := newFixture(t)
	first := models.User{ID: uuid.New(), Role: enums.UserRoleTechnician, IsActive: true}
	second := models.User{ID: uuid.New(), Role: enums.UserRoleTechnician, IsActive: true}
	f.users.technicians = []models.User{first, second}

	a := f.submit(t, f.employee)
	b := f.submit(t, f.employee)

	dtoA, err := f.svc.Approve(context.Background(), a.ID, f.manager)
	if err != nil {
		t.Fatalf("approve first: %v", err)
	}
	dtoB, err := f.svc.Approve(context.Background(), b.ID, f.manager)
	if err != nil {
		t.Fatalf("approve second: %v", err)
	}

	if dtoA.AssignedToID == nil || *dtoA.AssignedToID != first.ID {
		t.Fatal("expected first approval assigned to first technician")
	}
	if dtoB.AssignedToID == nil || *dtoB.AssignedToID != second.ID {
		t.Fatal("expected second approval assigned to second technician")
	}
	if dtoA.DecidedByID == nil || *dtoA.DecidedByID != f.manager.ID {
		t.Fatal("expected decided-by stamped with the manager")
	}
}

func TestApproveNotifiesRequesterAndAssignee(t *testing.T) {
	f := newFixture(t)
	tech := models.User{ID: uuid.New(), Role: enums.UserRoleTechnician, IsActive: true}
	f.users.technicians = []models.User{tech}

	submitted := f.submit(t, f.employee)
	f.notifier.sent = nil

	if _, err := f.svc.Approve(context.Background(), submitted.ID, f.manager); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if len(f.notifier.sent) != 2 {
		t.Fatalf("expected requester and assignee notifications, got %d", len(f.notifier.sent))
	}
	if f.notifier.sent[0].RecipientID != f.employee.ID {
		t.Fatal("expected first notification to the requester")
	}
	if f.notifier.sent[1].RecipientID != tech.ID {
		t.Fatal("expected second notification to the assignee")
	}
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	submitted := f.submit(t, f.employee)

	_, err := f.svc.Reject(context.Background(), submitted.ID, f.manager, RejectInput{Reason: "  "})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRejectRecordsReason(t *testing.T) {
	f := newFixture(t)
	submitted := f.submit(t, f.employee)

	dto, err := f.svc.Reject(context.Background(), submitted.ID, f.manager, RejectInput{Reason: "no budget this quarter"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if dto.State != enums.RequestStateRejected {
		t.Fatalf("expected rejected, got %s", dto.State)
	}
	if dto.RejectionReason == nil || *dto.RejectionReason != "no budget this quarter" {
		t.Fatal("expected rejection reason recorded")
	}
}

func TestStartOnlyFromApproved(t *testing.T) {
	f := newFixture(t)
	submitted := f.submit(t, f.employee)

	_, err := f.svc.Start(context.Background(), submitted.ID, f.tech)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCompleteRequiresResolution(t *testing.T) {
	f := newFixture(t)
	submitted := f.submit(t, f.employee)
	if _, err := f.svc.Approve(context.Background(), submitted.ID, f.manager); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.Start(context.Background(), submitted.ID, f.tech); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err := f.svc.Complete(context.Background(), submitted.ID, f.tech, CompleteInput{Resolution: " "})
	assertCode(t, err, pkgerrors.CodeValidation)

	dto, err := f.svc.Complete(context.Background(), submitted.ID, f.tech, CompleteInput{Resolution: "delivered new laptop"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if dto.State != enums.RequestStateCompleted {
		t.Fatalf("expected completed, got %s", dto.State)
	}
	if dto.CompletedAt == nil {
		t.Fatal("expected completion timestamp")
	}
}

func TestCancelByRequesterLimitedToEarlyStates(t *testing.T) {
	f := newFixture(t)
	submitted := f.submit(t, f.employee)

	if _, err := f.svc.Cancel(context.Background(), submitted.ID, f.employee); err != nil {
		t.Fatalf("cancel submitted: %v", err)
	}

	inProgress := f.submit(t, f.employee)
	if _, err := f.svc.Approve(context.Background(), inProgress.ID, f.manager); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.svc.Start(context.Background(), inProgress.ID, f.tech); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err := f.svc.Cancel(context.Background(), inProgress.ID, f.employee)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	if _, err := f.svc.Cancel(context.Background(), inProgress.ID, f.tech); err != nil {
		t.Fatalf("staff cancel in progress: %v", err)
	}
}

func TestCancelForeignRequestForbidden(t *testing.T) {
	f := newFixture(t)
	submitted := f.submit(t, f.employee)

	other := Actor{ID: uuid.New(), Role: enums.UserRoleEmployee}
	_, err := f.svc.Cancel(context.Background(), submitted.ID, other)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestResetClearsDecision(t *testing.T) {
	f := newFixture(t)
	submitted := f.submit(t, f.employee)
	if _, err := f.svc.Reject(context.Background(), submitted.ID, f.manager, RejectInput{Reason: "missing details"}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	dto, err := f.svc.Reset(context.Background(), submitted.ID, f.manager)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if dto.State != enums.RequestStateDraft {
		t.Fatalf("expected draft, got %s", dto.State)
	}
	if dto.RejectionReason != nil || dto.DecidedAt != nil || dto.SubmittedAt != nil {
		t.Fatal("expected decision fields cleared")
	}
}

func TestDeleteOnlyDraft(t *testing.T) {
	f := newFixture(t)
	submitted := f.submit(t, f.employee)

	err := f.svc.DeleteRequest(context.Background(), submitted.ID, f.employee)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	draft := f.createDraft(t, f.employee)
	if err := f.svc.DeleteRequest(context.Background(), draft.ID, f.employee); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if len(f.repo.deleted) != 1 {
		t.Fatalf("expected one deleted row, got %d", len(f.repo.deleted))
	}
}
