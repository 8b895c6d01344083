package assets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/pkg/config"
	"github.com/rvalverde/assettrack-backend/pkg/db"
	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
	pkgpagination "github.com/rvalverde/assettrack-backend/pkg/pagination"
)

// codeGenRetries bounds how many times code generation retries after a
// unique-index collision from a concurrent insert.
const codeGenRetries = 3

const (
	minAssetNameLen = 3
	defaultCurrency = "USD"
)

type assetsRepository interface {
	Create(ctx context.Context, asset *models.Asset) (*models.Asset, error)
	Update(ctx context.Context, asset *models.Asset) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	FindByCode(ctx context.Context, code string) (*models.Asset, error)
	List(ctx context.Context, opts listQuery) ([]models.Asset, error)
	ListByHolder(ctx context.Context, holderID uuid.UUID) ([]models.Asset, error)
	LatestCodeForPrefix(ctx context.Context, prefix string) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoriesRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.AssetCategory, error)
}

// Service exposes asset lifecycle semantics.
type Service interface {
	CreateAsset(ctx context.Context, input CreateAssetInput) (*AssetDTO, error)
	UpdateAsset(ctx context.Context, id uuid.UUID, input UpdateAssetInput) (*AssetDTO, error)
	GetAsset(ctx context.Context, id uuid.UUID) (*AssetDTO, error)
	GetAssetByCode(ctx context.Context, code string) (*AssetDTO, error)
	ListAssets(ctx context.Context, params ListParams) (*ListResult, error)
	ListMyAssets(ctx context.Context, holderID uuid.UUID) ([]AssetDTO, error)
	DeleteAsset(ctx context.Context, id uuid.UUID) error

	ActivateAsset(ctx context.Context, id uuid.UUID) (*AssetDTO, error)
	StartMaintenance(ctx context.Context, id uuid.UUID) (*AssetDTO, error)
	StartRepair(ctx context.Context, id uuid.UUID) (*AssetDTO, error)
	FinishService(ctx context.Context, id uuid.UUID) (*AssetDTO, error)
	DisposeAsset(ctx context.Context, id uuid.UUID) (*AssetDTO, error)

	BuildScanPayload(ctx context.Context, id uuid.UUID) (*ScanPayload, error)
}

type service struct {
	repo       assetsRepository
	categories categoriesRepository
	cfg        config.AssetConfig
	now        func() time.Time
}

// NewService builds an asset service backed by the provided repositories.
func NewService(repo assetsRepository, categories categoriesRepository, cfg config.AssetConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("asset repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if cfg.CodeSequenceDigits <= 0 {
		return nil, fmt.Errorf("code sequence digits must be positive")
	}
	return &service{
		repo:       repo,
		categories: categories,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) CreateAsset(ctx context.Context, input CreateAssetInput) (*AssetDTO, error) {
	name := strings.TrimSpace(input.Name)
	if len(name) < minAssetNameLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must be at least 3 characters")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
	}
	if input.PurchaseCost != nil && input.PurchaseCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase_cost cannot be negative")
	}
	if err := validateIPAddress(input.IPAddress); err != nil {
		return nil, err
	}
	warrantyType := input.WarrantyType
	if warrantyType == "" {
		warrantyType = enums.WarrantyTypeNone
	}
	if !warrantyType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid warranty type")
	}
	if warrantyType != enums.WarrantyTypeNone && input.WarrantyExpiryDate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warranty_expiry_date required when warranty is set")
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	category, err := s.categories.FindByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup category")
	}
	if !category.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category is inactive")
	}

	asset := &models.Asset{
		Name:                name,
		Description:         input.Description,
		CategoryID:          category.ID,
		State:               enums.AssetStateDraft,
		SerialNumber:        normalizeOptional(input.SerialNumber),
		AssetTag:            normalizeOptional(input.AssetTag),
		Brand:               input.Brand,
		Model:               input.Model,
		Manufacturer:        input.Manufacturer,
		Specs:               input.Specs,
		OperatingSystem:     input.OperatingSystem,
		Processor:           input.Processor,
		RAM:                 input.RAM,
		Storage:             input.Storage,
		Hostname:            normalizeOptional(input.Hostname),
		IPAddress:           normalizeOptional(input.IPAddress),
		PurchaseDate:        input.PurchaseDate,
		PurchaseCost:        input.PurchaseCost,
		Currency:            currency,
		Supplier:            input.Supplier,
		InvoiceReference:    input.InvoiceReference,
		WarrantyType:        warrantyType,
		WarrantyStartDate:   input.WarrantyStartDate,
		WarrantyExpiryDate:  input.WarrantyExpiryDate,
		Location:            input.Location,
		Notes:               input.Notes,
		ResponsibleUserID:   input.ResponsibleUserID,
		NextMaintenanceDate: input.NextMaintenanceDate,
		MaintenanceNotes:    input.MaintenanceNotes,
		IsActive:            true,
	}
	if err := validateWarrantyWindow(asset); err != nil {
		return nil, err
	}

	created, err := s.createWithGeneratedCode(ctx, asset, category.Code)
	if err != nil {
		return nil, err
	}
	created.Category = category
	dto := toDTO(*created, s.now(), s.cfg.WarrantyWarningDays)
	return &dto, nil
}

// createWithGeneratedCode assigns the next CATEGORY-NNNNN code and inserts,
// retrying on the unique index when two writers race for the same sequence.
func (s *service) createWithGeneratedCode(ctx context.Context, asset *models.Asset, categoryCode string) (*models.Asset, error) {
	prefix := categoryCode + "-"
	for attempt := 0; attempt < codeGenRetries; attempt++ {
		latest, err := s.repo.LatestCodeForPrefix(ctx, prefix)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup latest asset code")
		}
		next := 1
		if latest != "" {
			if seq, parseErr := strconv.Atoi(strings.TrimPrefix(latest, prefix)); parseErr == nil {
				next = seq + 1
			}
		}
		asset.Code = fmt.Sprintf("%s%0*d", prefix, s.cfg.CodeSequenceDigits, next)

		created, err := s.repo.Create(ctx, asset)
		if err == nil {
			return created, nil
		}
		if !isUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create asset")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate asset code")
}

func (s *service) UpdateAsset(ctx context.Context, id uuid.UUID, input UpdateAssetInput) (*AssetDTO, error) {
	asset, err := s.findAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset.State == enums.AssetStateDisposed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "disposed assets are immutable")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if len(name) < minAssetNameLen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must be at least 3 characters")
		}
		asset.Name = name
	}
	if input.Description != nil {
		asset.Description = input.Description
	}
	if input.CategoryID != nil {
		// the code keeps its original prefix; only the reference moves
		category, err := s.categories.FindByID(ctx, *input.CategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup category")
		}
		asset.CategoryID = category.ID
		asset.Category = category
	}
	if input.SerialNumber != nil {
		asset.SerialNumber = normalizeOptional(input.SerialNumber)
	}
	if input.AssetTag != nil {
		asset.AssetTag = normalizeOptional(input.AssetTag)
	}
	if input.Brand != nil {
		asset.Brand = input.Brand
	}
	if input.Model != nil {
		asset.Model = input.Model
	}
	if input.Manufacturer != nil {
		asset.Manufacturer = input.Manufacturer
	}
	if input.Specs != nil {
		asset.Specs = input.Specs
	}
	if input.OperatingSystem != nil {
		asset.OperatingSystem = input.OperatingSystem
	}
	if input.Processor != nil {
		asset.Processor = input.Processor
	}
	if input.RAM != nil {
		asset.RAM = input.RAM
	}
	if input.Storage != nil {
		asset.Storage = input.Storage
	}
	if input.Hostname != nil {
		asset.Hostname = normalizeOptional(input.Hostname)
	}
	if input.IPAddress != nil {
		if err := validateIPAddress(input.IPAddress); err != nil {
			return nil, err
		}
		asset.IPAddress = normalizeOptional(input.IPAddress)
	}
	if input.PurchaseDate != nil {
		asset.PurchaseDate = input.PurchaseDate
	}
	if input.PurchaseCost != nil {
		if input.PurchaseCost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase_cost cannot be negative")
		}
		asset.PurchaseCost = input.PurchaseCost
	}
	if input.Currency != nil {
		if currency := strings.ToUpper(strings.TrimSpace(*input.Currency)); currency != "" {
			asset.Currency = currency
		}
	}
	if input.Supplier != nil {
		asset.Supplier = input.Supplier
	}
	if input.InvoiceReference != nil {
		asset.InvoiceReference = input.InvoiceReference
	}
	if input.ResponsibleUserID != nil {
		asset.ResponsibleUserID = input.ResponsibleUserID
	}
	if input.NextMaintenanceDate != nil {
		asset.NextMaintenanceDate = input.NextMaintenanceDate
	}
	if input.MaintenanceNotes != nil {
		asset.MaintenanceNotes = input.MaintenanceNotes
	}
	if input.WarrantyType != nil {
		if !input.WarrantyType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid warranty type")
		}
		asset.WarrantyType = *input.WarrantyType
		if asset.WarrantyType == enums.WarrantyTypeNone {
			asset.WarrantyStartDate = nil
			asset.WarrantyExpiryDate = nil
		}
	}
	if input.WarrantyStartDate != nil {
		asset.WarrantyStartDate = input.WarrantyStartDate
	}
	if input.WarrantyExpiryDate != nil {
		asset.WarrantyExpiryDate = input.WarrantyExpiryDate
	}
	if asset.WarrantyType != enums.WarrantyTypeNone && asset.WarrantyExpiryDate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warranty_expiry_date required when warranty is set")
	}
	if err := validateWarrantyWindow(asset); err != nil {
		return nil, err
	}
	if input.Location != nil {
		asset.Location = input.Location
	}
	if input.Notes != nil {
		asset.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, asset); err != nil {
		if isUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "serial number already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset")
	}
	dto := toDTO(*asset, s.now(), s.cfg.WarrantyWarningDays)
	return &dto, nil
}

func (s *service) GetAsset(ctx context.Context, id uuid.UUID) (*AssetDTO, error) {
	asset, err := s.findAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*asset, s.now(), s.cfg.WarrantyWarningDays)
	return &dto, nil
}

func (s *service) GetAssetByCode(ctx context.Context, code string) (*AssetDTO, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset code is required")
	}
	asset, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup asset")
	}
	dto := toDTO(*asset, s.now(), s.cfg.WarrantyWarningDays)
	return &dto, nil
}

func (s *service) ListAssets(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.State != nil && !params.State.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid asset state filter")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		state:      params.State,
		categoryID: params.CategoryID,
		holderID:   params.HolderID,
		search:     strings.TrimSpace(params.Search),
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assets")
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
	items := make([]AssetDTO, len(rows))
	for i, row := range rows {
		items[i] = toDTO(row, now, s.cfg.WarrantyWarningDays)
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) ListMyAssets(ctx context.Context, holderID uuid.UUID) ([]AssetDTO, error) {
	if holderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "holder id is required")
	}
	rows, err := s.repo.ListByHolder(ctx, holderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list held assets")
	}
	now := s.now()
	items := make([]AssetDTO, len(rows))
	for i, row := range rows {
		items[i] = toDTO(row, now, s.cfg.WarrantyWarningDays)
	}
	return items, nil
}

func (s *service) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	asset, err := s.findAsset(ctx, id)
	if err != nil {
		return err
	}
	if asset.State != enums.AssetStateDraft {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only draft assets can be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete asset")
	}
	return nil
}

func (s *service) ActivateAsset(ctx context.Context, id uuid.UUID) (*AssetDTO, error) {
	return s.transition(ctx, id, enums.AssetStateAvailable, enums.AssetStateDraft)
}

func (s *service) StartMaintenance(ctx context.Context, id uuid.UUID) (*AssetDTO, error) {
	asset, err := s.findAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset.State != enums.AssetStateAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move asset from %s to %s", asset.State, enums.AssetStateMaintenance))
	}
	now := s.now()
	asset.State = enums.AssetStateMaintenance
	asset.LastMaintenanceDate = &now
	if err := s.repo.Update(ctx, asset); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset state")
	}
	dto := toDTO(*asset, now, s.cfg.WarrantyWarningDays)
	return &dto, nil
}

func (s *service) StartRepair(ctx context.Context, id uuid.UUID) (*AssetDTO, error) {
	return s.transition(ctx, id, enums.AssetStateRepair, enums.AssetStateAvailable, enums.AssetStateMaintenance)
}

func (s *service) FinishService(ctx context.Context, id uuid.UUID) (*AssetDTO, error) {
	return s.transition(ctx, id, enums.AssetStateAvailable, enums.AssetStateMaintenance, enums.AssetStateRepair)
}

func (s *service) DisposeAsset(ctx context.Context, id uuid.UUID) (*AssetDTO, error) {
	asset, err := s.findAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset.State == enums.AssetStateAssigned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "asset must be returned before disposal")
	}
	if asset.State == enums.AssetStateDisposed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "asset already disposed")
	}
	asset.State = enums.AssetStateDisposed
	asset.IsActive = false
	asset.CurrentHolderID = nil
	asset.CurrentHolder = nil
	if err := s.repo.Update(ctx, asset); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset state")
	}
	dto := toDTO(*asset, s.now(), s.cfg.WarrantyWarningDays)
	return &dto, nil
}

func (s *service) BuildScanPayload(ctx context.Context, id uuid.UUID) (*ScanPayload, error) {
	asset, err := s.findAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	payload := &ScanPayload{
		ID:        asset.ID,
		AssetCode: asset.Code,
		AssetName: asset.Name,
		URL:       fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.ScanURLBase, "/"), asset.Code),
	}
	if asset.Category != nil {
		payload.Category = asset.Category.Name
	}
	if asset.SerialNumber != nil {
		payload.SerialNumber = *asset.SerialNumber
	}
	return payload, nil
}

func (s *service) transition(ctx context.Context, id uuid.UUID, target enums.AssetState, allowedFrom ...enums.AssetState) (*AssetDTO, error) {
	asset, err := s.findAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, from := range allowedFrom {
		if asset.State == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move asset from %s to %s", asset.State, target))
	}
	asset.State = target
	if err := s.repo.Update(ctx, asset); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update asset state")
	}
	dto := toDTO(*asset, s.now(), s.cfg.WarrantyWarningDays)
	return &dto, nil
}

func (s *service) findAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset id is required")
	}
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup asset")
	}
	return asset, nil
}

func validateIPAddress(value *string) error {
	if value == nil {
		return nil
	}
	ip := strings.TrimSpace(*value)
	if ip == "" {
		return nil
	}
	if net.ParseIP(ip) == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid ip_address")
	}
	return nil
}

// validateWarrantyWindow checks warranty_start_date <= warranty_expiry_date
// and that the warranty does not predate the purchase.
func validateWarrantyWindow(asset *models.Asset) error {
	if asset.WarrantyStartDate == nil {
		return nil
	}
	if asset.WarrantyExpiryDate != nil && asset.WarrantyStartDate.After(*asset.WarrantyExpiryDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "warranty_start_date must not be after warranty_expiry_date")
	}
	if asset.PurchaseDate != nil && asset.WarrantyStartDate.Before(*asset.PurchaseDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "warranty_start_date must not precede purchase_date")
	}
	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || db.IsUniqueViolation(err, "")
}
