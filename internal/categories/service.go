package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
)

// maxTreeDepth bounds ancestor walks so a corrupted tree cannot loop forever.
const maxTreeDepth = 32

type categoriesRepository interface {
	Create(ctx context.Context, category *models.AssetCategory) (*models.AssetCategory, error)
	Update(ctx context.Context, category *models.AssetCategory) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AssetCategory, error)
	FindByCode(ctx context.Context, code string) (*models.AssetCategory, error)
	List(ctx context.Context, includeInactive bool) ([]models.AssetCategory, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountAssets(ctx context.Context, id uuid.UUID) (int64, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int64, error)
}

// Service exposes category tree management semantics.
type Service interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	ListCategories(ctx context.Context, includeInactive bool) ([]CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo categoriesRepository
}

// NewService builds a category service backed by the provided repository.
func NewService(repo categoriesRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}

	if _, err := s.repo.FindByCode(ctx, code); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category code already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup category code")
	}

	if input.ParentID != nil {
		if _, err := s.repo.FindByID(ctx, *input.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "parent category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup parent category")
		}
	}

	category := &models.AssetCategory{
		Name:        name,
		Code:        code,
		Description: input.Description,
		ParentID:    input.ParentID,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	dto := toDTO(*created, 0)
	return &dto, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup category")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if input.ParentID != nil {
		if err := s.validateParent(ctx, category.ID, *input.ParentID); err != nil {
			return nil, err
		}
		if *input.ParentID == uuid.Nil {
			category.ParentID = nil
		} else {
			parentID := *input.ParentID
			category.ParentID = &parentID
		}
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}

	assetCount, err := s.repo.CountAssets(ctx, category.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count assets")
	}
	dto := toDTO(*category, assetCount)
	return &dto, nil
}

func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup category")
	}
	assetCount, err := s.repo.CountAssets(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count assets")
	}
	dto := toDTO(*category, assetCount)
	return &dto, nil
}

func (s *service) ListCategories(ctx context.Context, includeInactive bool) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	items := make([]CategoryDTO, len(rows))
	for i, row := range rows {
		count, err := s.repo.CountAssets(ctx, row.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count assets")
		}
		items[i] = toDTO(row, count)
	}
	return items, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup category")
	}

	assetCount, err := s.repo.CountAssets(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count assets")
	}
	if assetCount > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has assets")
	}

	childCount, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count children")
	}
	if childCount > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has subcategories")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

// validateParent rejects self-parenting and any parent chain that loops
// back to the category being moved.
func (s *service) validateParent(ctx context.Context, id, parentID uuid.UUID) error {
	if parentID == uuid.Nil {
		return nil
	}
	if parentID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "category cannot be its own parent")
	}

	current := parentID
	for depth := 0; depth < maxTreeDepth; depth++ {
		node, err := s.repo.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "parent category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "walk category ancestors")
		}
		if node.ParentID == nil {
			return nil
		}
		if *node.ParentID == id {
			return pkgerrors.New(pkgerrors.CodeValidation, "parent change would create a cycle")
		}
		current = *node.ParentID
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "category tree too deep")
}
