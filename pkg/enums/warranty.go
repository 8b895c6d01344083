package enums

import "fmt"

// WarrantyType maps to the warranty_type enum in Postgres.
type WarrantyType string

const (
	WarrantyTypeManufacturer WarrantyType = "manufacturer"
	WarrantyTypeExtended     WarrantyType = "extended"
	WarrantyTypeNone         WarrantyType = "none"
)

var validWarrantyTypes = []WarrantyType{
	WarrantyTypeManufacturer,
	WarrantyTypeExtended,
	WarrantyTypeNone,
}

// String implements fmt.Stringer.
func (w WarrantyType) String() string {
	return string(w)
}

// IsValid reports whether the value matches the canonical warranty_type enum.
func (w WarrantyType) IsValid() bool {
	for _, candidate := range validWarrantyTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWarrantyType converts raw input into WarrantyType.
func ParseWarrantyType(value string) (WarrantyType, error) {
	for _, candidate := range validWarrantyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid warranty type %q", value)
}

// WarrantyStatus is derived from warranty dates, never stored.
type WarrantyStatus string

const (
	WarrantyStatusNone     WarrantyStatus = "none"
	WarrantyStatusValid    WarrantyStatus = "valid"
	WarrantyStatusExpiring WarrantyStatus = "expiring"
	WarrantyStatusExpired  WarrantyStatus = "expired"
)

// String implements fmt.Stringer.
func (w WarrantyStatus) String() string {
	return string(w)
}
