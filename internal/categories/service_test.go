package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
)

type stubCategoryRepo struct {
	byID        map[uuid.UUID]*models.AssetCategory
	byCode      map[string]*models.AssetCategory
	created     *models.AssetCategory
	updated     *models.AssetCategory
	deleted     []uuid.UUID
	assetCounts map[uuid.UUID]int64
	childCounts map[uuid.UUID]int64
	listRows    []models.AssetCategory
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{
		byID:        make(map[uuid.UUID]*models.AssetCategory),
		byCode:      make(map[string]*models.AssetCategory),
		assetCounts: make(map[uuid.UUID]int64),
		childCounts: make(map[uuid.UUID]int64),
	}
}

func (s *stubCategoryRepo) add(c *models.AssetCategory) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.byID[c.ID] = c
	s.byCode[c.Code] = c
}

func (s *stubCategoryRepo) Create(ctx context.Context, category *models.AssetCategory) (*models.AssetCategory, error) {
	category.ID = uuid.New()
	s.created = category
	s.add(category)
	return category, nil
}

func (s *stubCategoryRepo) Update(ctx context.Context, category *models.AssetCategory) error {
	s.updated = category
	return nil
}

func (s *stubCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.AssetCategory, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) FindByCode(ctx context.Context, code string) (*models.AssetCategory, error) {
	if c, ok := s.byCode[code]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) List(ctx context.Context, includeInactive bool) ([]models.AssetCategory, error) {
	return s.listRows, nil
}

func (s *stubCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubCategoryRepo) CountAssets(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.assetCounts[id], nil
}

func (s *stubCategoryRepo) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.childCounts[id], nil
}

func TestCreateCategoryNormalizesCode(t *testing.T) {
	repo := newStubCategoryRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: " Laptops ", Code: " lap "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Code != "LAP" {
		t.Fatalf("expected uppercased code, got %q", dto.Code)
	}
	if dto.Name != "Laptops" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if !repo.created.IsActive {
		t.Fatal("expected new category active")
	}
}

func TestCreateCategoryDuplicateCode(t *testing.T) {
	repo := newStubCategoryRepo()
	repo.add(&models.AssetCategory{Name: "Laptops", Code: "LAP"})
	svc, _ := NewService(repo)

	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Other", Code: "LAP"})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateCategoryUnknownParent(t *testing.T) {
	repo := newStubCategoryRepo()
	svc, _ := NewService(repo)

	missing := uuid.New()
	_, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Laptops", Code: "LAP", ParentID: &missing})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateCategoryRejectsCycle(t *testing.T) {
	repo := newStubCategoryRepo()
	root := &models.AssetCategory{Name: "Hardware", Code: "HW"}
	repo.add(root)
	child := &models.AssetCategory{Name: "Laptops", Code: "LAP", ParentID: &root.ID}
	repo.add(child)
	svc, _ := NewService(repo)

	// moving the root under its own child closes a loop
	_, err := svc.UpdateCategory(context.Background(), root.ID, UpdateCategoryInput{ParentID: &child.ID})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateCategoryRejectsSelfParent(t *testing.T) {
	repo := newStubCategoryRepo()
	cat := &models.AssetCategory{Name: "Hardware", Code: "HW"}
	repo.add(cat)
	svc, _ := NewService(repo)

	_, err := svc.UpdateCategory(context.Background(), cat.ID, UpdateCategoryInput{ParentID: &cat.ID})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteCategoryWithAssets(t *testing.T) {
	repo := newStubCategoryRepo()
	cat := &models.AssetCategory{Name: "Hardware", Code: "HW"}
	repo.add(cat)
	repo.assetCounts[cat.ID] = 3
	svc, _ := NewService(repo)

	err := svc.DeleteCategory(context.Background(), cat.ID)
	assertCode(t, err, pkgerrors.CodeConflict)
	if len(repo.deleted) != 0 {
		t.Fatal("delete should not reach the repo")
	}
}

func TestDeleteCategoryWithChildren(t *testing.T) {
	repo := newStubCategoryRepo()
	cat := &models.AssetCategory{Name: "Hardware", Code: "HW"}
	repo.add(cat)
	repo.childCounts[cat.ID] = 1
	svc, _ := NewService(repo)

	err := svc.DeleteCategory(context.Background(), cat.ID)
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestDeleteCategorySuccess(t *testing.T) {
	repo := newStubCategoryRepo()
	cat := &models.AssetCategory{Name: "Hardware", Code: "HW"}
	repo.add(cat)
	svc, _ := NewService(repo)

	if err := svc.DeleteCategory(context.Background(), cat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != cat.ID {
		t.Fatalf("expected delete call for %s", cat.ID)
	}
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
