package assets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgpagination "github.com/rvalverde/assettrack-backend/pkg/pagination"
)

// AssetDTO is the transport shape for an asset.
type AssetDTO struct {
	ID                  uuid.UUID            `json:"id"`
	Code                string               `json:"code"`
	Name                string               `json:"name"`
	Description         *string              `json:"description,omitempty"`
	CategoryID          uuid.UUID            `json:"category_id"`
	CategoryName        string               `json:"category_name,omitempty"`
	State               enums.AssetState     `json:"state"`
	SerialNumber        *string              `json:"serial_number,omitempty"`
	AssetTag            *string              `json:"asset_tag,omitempty"`
	Brand               *string              `json:"brand,omitempty"`
	Model               *string              `json:"model,omitempty"`
	Manufacturer        *string              `json:"manufacturer,omitempty"`
	Specs               *string              `json:"specs,omitempty"`
	OperatingSystem     *string              `json:"operating_system,omitempty"`
	Processor           *string              `json:"processor,omitempty"`
	RAM                 *string              `json:"ram,omitempty"`
	Storage             *string              `json:"storage,omitempty"`
	Hostname            *string              `json:"hostname,omitempty"`
	IPAddress           *string              `json:"ip_address,omitempty"`
	PurchaseDate        *time.Time           `json:"purchase_date,omitempty"`
	PurchaseCost        *decimal.Decimal     `json:"purchase_cost,omitempty"`
	Currency            string               `json:"currency"`
	Supplier            *string              `json:"supplier,omitempty"`
	InvoiceReference    *string              `json:"invoice_reference,omitempty"`
	WarrantyType        enums.WarrantyType   `json:"warranty_type"`
	WarrantyStartDate   *time.Time           `json:"warranty_start_date,omitempty"`
	WarrantyExpiryDate  *time.Time           `json:"warranty_expiry_date,omitempty"`
	WarrantyStatus      enums.WarrantyStatus `json:"warranty_status"`
	Location            *string              `json:"location,omitempty"`
	Notes               *string              `json:"notes,omitempty"`
	ResponsibleUserID   *uuid.UUID           `json:"responsible_user_id,omitempty"`
	LastMaintenanceDate *time.Time           `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate *time.Time           `json:"next_maintenance_date,omitempty"`
	MaintenanceNotes    *string              `json:"maintenance_notes,omitempty"`
	IsActive            bool                 `json:"is_active"`
	AgeDays             int                  `json:"age_days"`
	CurrentHolderID     *uuid.UUID           `json:"current_holder_id,omitempty"`
	CurrentHolderName   string               `json:"current_holder_name,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// CreateAssetInput holds the fields accepted on asset creation.
type CreateAssetInput struct {
	Name                string             `json:"name" validate:"required,min=3,max=200"`
	Description         *string            `json:"description,omitempty"`
	CategoryID          uuid.UUID          `json:"category_id" validate:"required"`
	SerialNumber        *string            `json:"serial_number,omitempty"`
	AssetTag            *string            `json:"asset_tag,omitempty"`
	Brand               *string            `json:"brand,omitempty"`
	Model               *string            `json:"model,omitempty"`
	Manufacturer        *string            `json:"manufacturer,omitempty"`
	Specs               *string            `json:"specs,omitempty"`
	OperatingSystem     *string            `json:"operating_system,omitempty"`
	Processor           *string            `json:"processor,omitempty"`
	RAM                 *string            `json:"ram,omitempty"`
	Storage             *string            `json:"storage,omitempty"`
	Hostname            *string            `json:"hostname,omitempty"`
	IPAddress           *string            `json:"ip_address,omitempty"`
	PurchaseDate        *time.Time         `json:"purchase_date,omitempty"`
	PurchaseCost        *decimal.Decimal   `json:"purchase_cost,omitempty"`
	Currency            string             `json:"currency,omitempty" validate:"omitempty,len=3"`
	Supplier            *string            `json:"supplier,omitempty"`
	InvoiceReference    *string            `json:"invoice_reference,omitempty"`
	WarrantyType        enums.WarrantyType `json:"warranty_type,omitempty"`
	WarrantyStartDate   *time.Time         `json:"warranty_start_date,omitempty"`
	WarrantyExpiryDate  *time.Time         `json:"warranty_expiry_date,omitempty"`
	Location            *string            `json:"location,omitempty"`
	Notes               *string            `json:"notes,omitempty"`
	ResponsibleUserID   *uuid.UUID         `json:"responsible_user_id,omitempty"`
	NextMaintenanceDate *time.Time         `json:"next_maintenance_date,omitempty"`
	MaintenanceNotes    *string            `json:"maintenance_notes,omitempty"`
}

// UpdateAssetInput holds the mutable asset fields. Code and state never
// change through plain updates.
type UpdateAssetInput struct {
	Name                *string             `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Description         *string             `json:"description,omitempty"`
	CategoryID          *uuid.UUID          `json:"category_id,omitempty"`
	SerialNumber        *string             `json:"serial_number,omitempty"`
	AssetTag            *string             `json:"asset_tag,omitempty"`
	Brand               *string             `json:"brand,omitempty"`
	Model               *string             `json:"model,omitempty"`
	Manufacturer        *string             `json:"manufacturer,omitempty"`
	Specs               *string             `json:"specs,omitempty"`
	OperatingSystem     *string             `json:"operating_system,omitempty"`
	Processor           *string             `json:"processor,omitempty"`
	RAM                 *string             `json:"ram,omitempty"`
	Storage             *string             `json:"storage,omitempty"`
	Hostname            *string             `json:"hostname,omitempty"`
	IPAddress           *string             `json:"ip_address,omitempty"`
	PurchaseDate        *time.Time          `json:"purchase_date,omitempty"`
	PurchaseCost        *decimal.Decimal    `json:"purchase_cost,omitempty"`
	Currency            *string             `json:"currency,omitempty" validate:"omitempty,len=3"`
	Supplier            *string             `json:"supplier,omitempty"`
	InvoiceReference    *string             `json:"invoice_reference,omitempty"`
	WarrantyType        *enums.WarrantyType `json:"warranty_type,omitempty"`
	WarrantyStartDate   *time.Time          `json:"warranty_start_date,omitempty"`
	WarrantyExpiryDate  *time.Time          `json:"warranty_expiry_date,omitempty"`
	Location            *string             `json:"location,omitempty"`
	Notes               *string             `json:"notes,omitempty"`
	ResponsibleUserID   *uuid.UUID          `json:"responsible_user_id,omitempty"`
	NextMaintenanceDate *time.Time          `json:"next_maintenance_date,omitempty"`
	MaintenanceNotes    *string             `json:"maintenance_notes,omitempty"`
}

// ListParams filters the asset listing.
type ListParams struct {
	State      *enums.AssetState
	CategoryID *uuid.UUID
	HolderID   *uuid.UUID
	Search     string
	pkgpagination.Params
}

// ListResult pairs one page of items with the next cursor.
type ListResult struct {
	Items  []AssetDTO `json:"items"`
	Cursor string     `json:"cursor"`
}

// ScanPayload is the JSON document encoded into each asset's QR label.
type ScanPayload struct {
	ID           uuid.UUID `json:"id"`
	AssetCode    string    `json:"asset_code"`
	AssetName    string    `json:"asset_name"`
	Category     string    `json:"category"`
	SerialNumber string    `json:"serial_number,omitempty"`
	URL          string    `json:"url"`
}

type listQuery struct {
	state      *enums.AssetState
	categoryID *uuid.UUID
	holderID   *uuid.UUID
	search     string
	limit      int
	cursor     *pkgpagination.Cursor
}

func toDTO(m models.Asset, now time.Time, warningDays int) AssetDTO {
	dto := AssetDTO{
		ID:                  m.ID,
		Code:                m.Code,
		Name:                m.Name,
		Description:         m.Description,
		CategoryID:          m.CategoryID,
		State:               m.State,
		SerialNumber:        m.SerialNumber,
		AssetTag:            m.AssetTag,
		Brand:               m.Brand,
		Model:               m.Model,
		Manufacturer:        m.Manufacturer,
		Specs:               m.Specs,
		OperatingSystem:     m.OperatingSystem,
		Processor:           m.Processor,
		RAM:                 m.RAM,
		Storage:             m.Storage,
		Hostname:            m.Hostname,
		IPAddress:           m.IPAddress,
		PurchaseDate:        m.PurchaseDate,
		PurchaseCost:        m.PurchaseCost,
		Currency:            m.Currency,
		Supplier:            m.Supplier,
		InvoiceReference:    m.InvoiceReference,
		WarrantyType:        m.WarrantyType,
		WarrantyStartDate:   m.WarrantyStartDate,
		WarrantyExpiryDate:  m.WarrantyExpiryDate,
		WarrantyStatus:      m.WarrantyStatus(now, warningDays),
		Location:            m.Location,
		Notes:               m.Notes,
		ResponsibleUserID:   m.ResponsibleUserID,
		LastMaintenanceDate: m.LastMaintenanceDate,
		NextMaintenanceDate: m.NextMaintenanceDate,
		MaintenanceNotes:    m.MaintenanceNotes,
		IsActive:            m.IsActive,
		AgeDays:             m.AgeDays(now),
		CurrentHolderID:     m.CurrentHolderID,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.Category != nil {
		dto.CategoryName = m.Category.Name
	}
	if m.CurrentHolder != nil {
		dto.CurrentHolderName = m.CurrentHolder.FullName()
	}
	return dto
}
