package enums

import "fmt"

// AssetState maps to the asset_state enum in Postgres.
type AssetState string

const (
	AssetStateDraft       AssetState = "draft"
	AssetStateAvailable   AssetState = "available"
	AssetStateAssigned    AssetState = "assigned"
	AssetStateMaintenance AssetState = "maintenance"
	AssetStateRepair      AssetState = "repair"
	AssetStateDisposed    AssetState = "disposed"
)

var validAssetStates = []AssetState{
	AssetStateDraft,
	AssetStateAvailable,
	AssetStateAssigned,
	AssetStateMaintenance,
	AssetStateRepair,
	AssetStateDisposed,
}

// String implements fmt.Stringer.
func (s AssetState) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical asset_state enum.
func (s AssetState) IsValid() bool {
	for _, candidate := range validAssetStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAssetState converts raw input into AssetState.
func ParseAssetState(value string) (AssetState, error) {
	for _, candidate := range validAssetStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset state %q", value)
}
