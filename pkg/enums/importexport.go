package enums

import "fmt"

// ImportMode controls how import rows are matched against existing assets.
type ImportMode string

const (
	ImportModeCreateOnly     ImportMode = "create_only"
	ImportModeUpdateExisting ImportMode = "update_existing"
	ImportModeCreateUpdate   ImportMode = "create_update"
)

var validImportModes = []ImportMode{
	ImportModeCreateOnly,
	ImportModeUpdateExisting,
	ImportModeCreateUpdate,
}

// String implements fmt.Stringer.
func (m ImportMode) String() string {
	return string(m)
}

// IsValid reports whether the value matches a supported import mode.
func (m ImportMode) IsValid() bool {
	for _, candidate := range validImportModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseImportMode converts raw input into ImportMode.
func ParseImportMode(value string) (ImportMode, error) {
	for _, candidate := range validImportModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid import mode %q", value)
}

// FileFormat identifies a tabular file format for import and export.
type FileFormat string

const (
	FileFormatCSV  FileFormat = "csv"
	FileFormatXLSX FileFormat = "xlsx"
)

var validFileFormats = []FileFormat{
	FileFormatCSV,
	FileFormatXLSX,
}

// String implements fmt.Stringer.
func (f FileFormat) String() string {
	return string(f)
}

// IsValid reports whether the value matches a supported file format.
func (f FileFormat) IsValid() bool {
	for _, candidate := range validFileFormats {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFileFormat converts raw input into FileFormat.
func ParseFileFormat(value string) (FileFormat, error) {
	for _, candidate := range validFileFormats {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid file format %q", value)
}
