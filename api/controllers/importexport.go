package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rvalverde/assettrack-backend/api/responses"
	importexportsvc "github.com/rvalverde/assettrack-backend/internal/importexport"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
	"github.com/rvalverde/assettrack-backend/pkg/logger"
)

// Uploaded spreadsheets are capped well below this; the remainder is
// multipart framing headroom.
const maxImportBytes = 10 << 20

// ImportAssets ingests a CSV or XLSX asset file uploaded as multipart
// form data under the "file" field.
func ImportAssets(svc importexportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required"))
			return
		}
		defer file.Close()

		format, err := formatFromUpload(r, header.Filename)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode := enums.ImportModeCreateUpdate
		if raw := strings.TrimSpace(r.FormValue("mode")); raw != "" {
			mode, err = enums.ParseImportMode(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mode"))
				return
			}
		}

		report, err := svc.ImportAssets(r.Context(), importexportsvc.ImportInput{
			Mode:   mode,
			Format: format,
			Reader: file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ExportAssets streams the filtered asset register as a CSV or XLSX
// download.
func ExportAssets(svc importexportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		format, err := queryFormat(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := importexportsvc.ExportParams{
			Format: format,
			Search: querySearch(r),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("state")); raw != "" {
			state, err := enums.ParseAssetState(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid state"))
				return
			}
			params.State = &state
		}

		categoryID, err := queryUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.CategoryID = categoryID

		download, err := svc.ExportAssets(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeDownload(w, download)
	}
}

// ImportTemplate serves an empty import sheet with the expected header.
func ImportTemplate(svc importexportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		format, err := queryFormat(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		download, err := svc.Template(format)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeDownload(w, download)
	}
}

func writeDownload(w http.ResponseWriter, file *importexportsvc.File) {
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

func queryFormat(r *http.Request) (enums.FileFormat, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("format"))
	if raw == "" {
		return enums.FileFormatCSV, nil
	}
	format, err := enums.ParseFileFormat(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid format")
	}
	return format, nil
}

func formatFromUpload(r *http.Request, filename string) (enums.FileFormat, error) {
	if raw := strings.TrimSpace(r.FormValue("format")); raw != "" {
		format, err := enums.ParseFileFormat(raw)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid format")
		}
		return format, nil
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return enums.FileFormatCSV, nil
	case ".xlsx":
		return enums.FileFormatXLSX, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported file type, expected .csv or .xlsx")
	}
}
