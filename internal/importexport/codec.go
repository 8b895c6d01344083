package importexport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
)

// dateLayout is the date format accepted in import files and written on export.
const dateLayout = "2006-01-02"

const exportSheet = "Assets"

// importColumns is the canonical column order for import files and the
// generated template. Export adds state and holder columns on top.
var importColumns = []string{
	"code",
	"name",
	"category_code",
	"description",
	"serial_number",
	"model",
	"manufacturer",
	"purchase_date",
	"purchase_cost",
	"supplier",
	"warranty_type",
	"warranty_expiry_date",
	"location",
	"notes",
}

var exportColumns = []string{
	"code",
	"name",
	"category",
	"description",
	"serial_number",
	"model",
	"manufacturer",
	"purchase_date",
	"purchase_cost",
	"supplier",
	"warranty_type",
	"warranty_expiry_date",
	"location",
	"notes",
	"state",
	"current_holder",
}

// readRows decodes the uploaded file into rows of raw cells, header included.
func readRows(format enums.FileFormat, r io.Reader) ([][]string, error) {
	switch format {
	case enums.FileFormatCSV:
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv")
		}
		return rows, nil
	case enums.FileFormatXLSX:
		file, err := excelize.OpenReader(r)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read xlsx")
		}
		defer file.Close()
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "workbook has no sheets")
		}
		rows, err := file.GetRows(sheets[0])
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read sheet")
		}
		return rows, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported file format")
	}
}

// writeRows encodes the header plus rows into the requested format.
func writeRows(format enums.FileFormat, header []string, rows [][]string) ([]byte, error) {
	switch format {
	case enums.FileFormatCSV:
		var buf bytes.Buffer
		writer := csv.NewWriter(&buf)
		if err := writer.Write(header); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
		}
		for _, row := range rows {
			if err := writer.Write(row); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
		}
		return buf.Bytes(), nil
	case enums.FileFormatXLSX:
		file := excelize.NewFile()
		defer file.Close()
		index, err := file.NewSheet(exportSheet)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sheet")
		}
		file.SetActiveSheet(index)
		if err := file.DeleteSheet("Sheet1"); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop default sheet")
		}
		if err := setSheetRow(file, 1, header); err != nil {
			return nil, err
		}
		for i, row := range rows {
			if err := setSheetRow(file, i+2, row); err != nil {
				return nil, err
			}
		}
		buf, err := file.WriteToBuffer()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write workbook")
		}
		return buf.Bytes(), nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported file format")
	}
}

func setSheetRow(file *excelize.File, row int, cells []string) error {
	values := make([]any, len(cells))
	for i, cell := range cells {
		values[i] = cell
	}
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cell name")
	}
	if err := file.SetSheetRow(exportSheet, axis, &values); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set sheet row")
	}
	return nil
}

// headerIndex maps normalized column names to their position. Unknown columns
// are ignored so extra spreadsheet columns do not break an import.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")
		if key != "" {
			index[key] = i
		}
	}
	return index
}

func cellAt(row []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func contentTypeFor(format enums.FileFormat) string {
	if format == enums.FileFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

func fileNameFor(prefix string, format enums.FileFormat) string {
	return fmt.Sprintf("%s.%s", prefix, format)
}
