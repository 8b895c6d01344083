package importexport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rvalverde/assettrack-backend/internal/assets"
	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
	"github.com/rvalverde/assettrack-backend/pkg/pagination"
)

// exportPageSize bounds each listing page while streaming an export.
const exportPageSize = 100

type assetService interface {
	CreateAsset(ctx context.Context, input assets.CreateAssetInput) (*assets.AssetDTO, error)
	UpdateAsset(ctx context.Context, id uuid.UUID, input assets.UpdateAssetInput) (*assets.AssetDTO, error)
	GetAssetByCode(ctx context.Context, code string) (*assets.AssetDTO, error)
	ListAssets(ctx context.Context, params assets.ListParams) (*assets.ListResult, error)
}

type categoryLookup interface {
	FindByCode(ctx context.Context, code string) (*models.AssetCategory, error)
}

// ImportInput describes an uploaded asset file.
type ImportInput struct {
	Mode   enums.ImportMode
	Format enums.FileFormat
	Reader io.Reader
}

// RowError records why a single row was not applied.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportReport summarizes a batch import. Row numbering is 1-based and
// includes the header row, matching what the user sees in a spreadsheet.
type ImportReport struct {
	Processed int        `json:"processed"`
	Created   int        `json:"created"`
	Updated   int        `json:"updated"`
	Skipped   int        `json:"skipped"`
	Errors    []RowError `json:"errors"`
}

// ExportParams filters the exported asset set.
type ExportParams struct {
	Format     enums.FileFormat
	State      *enums.AssetState
	CategoryID *uuid.UUID
	Search     string
}

// File is a generated download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Service handles bulk asset import and export.
type Service interface {
	ImportAssets(ctx context.Context, input ImportInput) (*ImportReport, error)
	ExportAssets(ctx context.Context, params ExportParams) (*File, error)
	Template(format enums.FileFormat) (*File, error)
}

type service struct {
	assets     assetService
	categories categoryLookup
}

// NewService wires the import/export dependencies.
func NewService(assetsSvc assetService, categories categoryLookup) (Service, error) {
	if assetsSvc == nil {
		return nil, fmt.Errorf("asset service required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category lookup required")
	}
	return &service{assets: assetsSvc, categories: categories}, nil
}

func (s *service) ImportAssets(ctx context.Context, input ImportInput) (*ImportReport, error) {
	if !input.Mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid import mode")
	}
	if input.Reader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import file required")
	}
	rows, err := readRows(input.Format, input.Reader)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file has no data rows")
	}

	index := headerIndex(rows[0])
	if _, ok := index["name"]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required column: name")
	}

	report := &ImportReport{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}
		report.Processed++
		if err := s.applyRow(ctx, input.Mode, row, index, report); err != nil {
			report.Errors = append(report.Errors, RowError{Row: rowNum, Message: err.Error()})
		}
	}
	return report, nil
}

// applyRow routes one row to create or update. Rows carrying an asset code
// address an existing asset; rows without one always create.
func (s *service) applyRow(ctx context.Context, mode enums.ImportMode, row []string, index map[string]int, report *ImportReport) error {
	code := strings.ToUpper(cellAt(row, index, "code"))

	if code == "" {
		if mode == enums.ImportModeUpdateExisting {
			report.Skipped++
			return nil
		}
		return s.createFromRow(ctx, row, index, report)
	}

	existing, err := s.assets.GetAssetByCode(ctx, code)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeNotFound {
			return fmt.Errorf("unknown asset code %s", code)
		}
		return err
	}
	if mode == enums.ImportModeCreateOnly {
		report.Skipped++
		return nil
	}
	return s.updateFromRow(ctx, existing.ID, row, index, report)
}

func (s *service) createFromRow(ctx context.Context, row []string, index map[string]int, report *ImportReport) error {
	categoryCode := strings.ToUpper(cellAt(row, index, "category_code"))
	if categoryCode == "" {
		return fmt.Errorf("category_code is required")
	}
	category, err := s.categories.FindByCode(ctx, categoryCode)
	if err != nil {
		return fmt.Errorf("unknown category code %s", categoryCode)
	}

	input := assets.CreateAssetInput{
		Name:         cellAt(row, index, "name"),
		CategoryID:   category.ID,
		Description:  optionalCell(row, index, "description"),
		SerialNumber: optionalCell(row, index, "serial_number"),
		Model:        optionalCell(row, index, "model"),
		Manufacturer: optionalCell(row, index, "manufacturer"),
		Supplier:     optionalCell(row, index, "supplier"),
		Location:     optionalCell(row, index, "location"),
		Notes:        optionalCell(row, index, "notes"),
	}
	if input.PurchaseDate, err = optionalDate(row, index, "purchase_date"); err != nil {
		return err
	}
	if input.PurchaseCost, err = optionalCost(row, index, "purchase_cost"); err != nil {
		return err
	}
	if raw := cellAt(row, index, "warranty_type"); raw != "" {
		warranty, err := enums.ParseWarrantyType(raw)
		if err != nil {
			return err
		}
		input.WarrantyType = warranty
	}
	if input.WarrantyExpiryDate, err = optionalDate(row, index, "warranty_expiry_date"); err != nil {
		return err
	}

	if _, err := s.assets.CreateAsset(ctx, input); err != nil {
		return err
	}
	report.Created++
	return nil
}

func (s *service) updateFromRow(ctx context.Context, id uuid.UUID, row []string, index map[string]int, report *ImportReport) error {
	input := assets.UpdateAssetInput{
		Description:  optionalCell(row, index, "description"),
		SerialNumber: optionalCell(row, index, "serial_number"),
		Model:        optionalCell(row, index, "model"),
		Manufacturer: optionalCell(row, index, "manufacturer"),
		Supplier:     optionalCell(row, index, "supplier"),
		Location:     optionalCell(row, index, "location"),
		Notes:        optionalCell(row, index, "notes"),
	}
	if name := cellAt(row, index, "name"); name != "" {
		input.Name = &name
	}
	if categoryCode := strings.ToUpper(cellAt(row, index, "category_code")); categoryCode != "" {
		category, err := s.categories.FindByCode(ctx, categoryCode)
		if err != nil {
			return fmt.Errorf("unknown category code %s", categoryCode)
		}
		input.CategoryID = &category.ID
	}
	var err error
	if input.PurchaseDate, err = optionalDate(row, index, "purchase_date"); err != nil {
		return err
	}
	if input.PurchaseCost, err = optionalCost(row, index, "purchase_cost"); err != nil {
		return err
	}
	if raw := cellAt(row, index, "warranty_type"); raw != "" {
		warranty, err := enums.ParseWarrantyType(raw)
		if err != nil {
			return err
		}
		input.WarrantyType = &warranty
	}
	if input.WarrantyExpiryDate, err = optionalDate(row, index, "warranty_expiry_date"); err != nil {
		return err
	}

	if _, err := s.assets.UpdateAsset(ctx, id, input); err != nil {
		return err
	}
	report.Updated++
	return nil
}

func (s *service) ExportAssets(ctx context.Context, params ExportParams) (*File, error) {
	if !params.Format.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid export format")
	}

	var rows [][]string
	cursor := ""
	for {
		page, err := s.assets.ListAssets(ctx, assets.ListParams{
			State:      params.State,
			CategoryID: params.CategoryID,
			Search:     params.Search,
			Params:     pagination.Params{Limit: exportPageSize, Cursor: cursor},
		})
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			rows = append(rows, exportRow(item))
		}
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}

	data, err := writeRows(params.Format, exportColumns, rows)
	if err != nil {
		return nil, err
	}
	return &File{
		Name:        fileNameFor("assets-"+time.Now().UTC().Format("20060102"), params.Format),
		ContentType: contentTypeFor(params.Format),
		Data:        data,
	}, nil
}

func (s *service) Template(format enums.FileFormat) (*File, error) {
	if !format.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid template format")
	}
	example := []string{
		"", "ThinkPad X1 Carbon", "LAP", "14 inch ultrabook", "SN-0001", "X1C-G11",
		"Lenovo", "2026-01-15", "1899.00", "CDW", "manufacturer", "2029-01-15",
		"HQ floor 2", "",
	}
	data, err := writeRows(format, importColumns, [][]string{example})
	if err != nil {
		return nil, err
	}
	return &File{
		Name:        fileNameFor("asset-import-template", format),
		ContentType: contentTypeFor(format),
		Data:        data,
	}, nil
}

func exportRow(item assets.AssetDTO) []string {
	return []string{
		item.Code,
		item.Name,
		item.CategoryName,
		deref(item.Description),
		deref(item.SerialNumber),
		deref(item.Model),
		deref(item.Manufacturer),
		formatDate(item.PurchaseDate),
		formatCost(item.PurchaseCost),
		deref(item.Supplier),
		item.WarrantyType.String(),
		formatDate(item.WarrantyExpiryDate),
		deref(item.Location),
		deref(item.Notes),
		item.State.String(),
		item.CurrentHolderName,
	}
}

func optionalCell(row []string, index map[string]int, column string) *string {
	value := cellAt(row, index, column)
	if value == "" {
		return nil
	}
	return &value
}

func optionalDate(row []string, index map[string]int, column string) (*time.Time, error) {
	value := cellAt(row, index, column)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", column, value)
	}
	return &parsed, nil
}

func optionalCost(row []string, index map[string]int, column string) (*decimal.Decimal, error) {
	value := cellAt(row, index, column)
	if value == "" {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", column, value)
	}
	return &parsed, nil
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(dateLayout)
}

func formatCost(value *decimal.Decimal) string {
	if value == nil {
		return ""
	}
	return value.StringFixed(2)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
