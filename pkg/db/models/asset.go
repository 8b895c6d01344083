package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rvalverde/assettrack-backend/pkg/enums"
)

// Asset represents a tracked piece of inventory. Code is generated from
// the category code plus a per-category sequence and never reused.
type Asset struct {
	ID                  uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Code                string             `gorm:"column:code;not null;uniqueIndex"`
	Name                string             `gorm:"column:name;not null"`
	Description         *string            `gorm:"column:description"`
	CategoryID          uuid.UUID          `gorm:"column:category_id;type:uuid;not null"`
	Category            *AssetCategory     `gorm:"foreignKey:CategoryID"`
	State               enums.AssetState   `gorm:"column:state;type:asset_state;not null;default:'draft'"`
	SerialNumber        *string            `gorm:"column:serial_number;uniqueIndex:idx_assets_serial_number,where:serial_number IS NOT NULL"`
	AssetTag            *string            `gorm:"column:asset_tag;uniqueIndex:idx_assets_asset_tag,where:asset_tag IS NOT NULL"`
	Brand               *string            `gorm:"column:brand"`
	Model               *string            `gorm:"column:model"`
	Manufacturer        *string            `gorm:"column:manufacturer"`
	Specs               *string            `gorm:"column:specs"`
	OperatingSystem     *string            `gorm:"column:operating_system"`
	Processor           *string            `gorm:"column:processor"`
	RAM                 *string            `gorm:"column:ram"`
	Storage             *string            `gorm:"column:storage"`
	Hostname            *string            `gorm:"column:hostname"`
	IPAddress           *string            `gorm:"column:ip_address"`
	PurchaseDate        *time.Time         `gorm:"column:purchase_date;type:date"`
	PurchaseCost        *decimal.Decimal   `gorm:"column:purchase_cost;type:numeric(14,2)"`
	Currency            string             `gorm:"column:currency;not null;default:'USD'"`
	Supplier            *string            `gorm:"column:supplier"`
	InvoiceReference    *string            `gorm:"column:invoice_reference"`
	WarrantyType        enums.WarrantyType `gorm:"column:warranty_type;type:warranty_type;not null;default:'none'"`
	WarrantyStartDate   *time.Time         `gorm:"column:warranty_start_date;type:date"`
	WarrantyExpiryDate  *time.Time         `gorm:"column:warranty_expiry_date;type:date"`
	Location            *string            `gorm:"column:location"`
	Notes               *string            `gorm:"column:notes"`
	ResponsibleUserID   *uuid.UUID         `gorm:"column:responsible_user_id;type:uuid"`
	ResponsibleUser     *User              `gorm:"foreignKey:ResponsibleUserID"`
	LastMaintenanceDate *time.Time         `gorm:"column:last_maintenance_date;type:date"`
	NextMaintenanceDate *time.Time         `gorm:"column:next_maintenance_date;type:date"`
	MaintenanceNotes    *string            `gorm:"column:maintenance_notes"`
	IsActive            bool               `gorm:"column:is_active;not null;default:true"`
	CurrentHolderID     *uuid.UUID         `gorm:"column:current_holder_id;type:uuid"`
	CurrentHolder       *User              `gorm:"foreignKey:CurrentHolderID"`
	Assignments         []AssetAssignment  `gorm:"foreignKey:AssetID"`
	CreatedAt           time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// WarrantyStatus derives the warranty view from type and expiry at now,
// flagging expiries within warningDays as expiring.
func (a Asset) WarrantyStatus(now time.Time, warningDays int) enums.WarrantyStatus {
	if a.WarrantyType == enums.WarrantyTypeNone || a.WarrantyExpiryDate == nil {
		return enums.WarrantyStatusNone
	}
	expiry := *a.WarrantyExpiryDate
	if expiry.Before(now) {
		return enums.WarrantyStatusExpired
	}
	if expiry.Before(now.AddDate(0, 0, warningDays)) {
		return enums.WarrantyStatusExpiring
	}
	return enums.WarrantyStatusValid
}

// AgeDays reports whole days since purchase, zero when the purchase date
// is unknown or in the future.
func (a Asset) AgeDays(now time.Time) int {
	if a.PurchaseDate == nil {
		return 0
	}
	days := int(now.Sub(*a.PurchaseDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
