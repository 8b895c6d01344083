package controllers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rvalverde/assettrack-backend/api/responses"
	"github.com/rvalverde/assettrack-backend/api/validators"
	assetsvc "github.com/rvalverde/assettrack-backend/internal/assets"
	"github.com/rvalverde/assettrack-backend/pkg/barcode"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
	"github.com/rvalverde/assettrack-backend/pkg/logger"
)

// CreateAsset registers a new asset and mints its code.
func CreateAsset(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		var payload assetsvc.CreateAssetInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.CreateAsset(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, asset)
	}
}

// UpdateAsset applies a partial update to an asset's descriptive fields.
func UpdateAsset(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		id, err := pathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assetsvc.UpdateAssetInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.UpdateAsset(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

// GetAsset fetches a single asset by id.
func GetAsset(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		id, err := pathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.GetAsset(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

// ScanAsset resolves an asset by its printed code, the lookup a label
// scanner performs.
func ScanAsset(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "code is required"))
			return
		}

		asset, err := svc.GetAssetByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

// ListAssets returns a filtered, cursor-paginated page of assets.
func ListAssets(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		params, err := parseAssetListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.ListAssets(r.Context(), *params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// DeleteAsset removes an asset that never entered circulation.
func DeleteAsset(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		id, err := pathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteAsset(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type assetTransition func(ctx context.Context, id uuid.UUID) (*assetsvc.AssetDTO, error)

func assetTransitionHandler(svc assetsvc.Service, logg *logger.Logger, pick func(assetsvc.Service) assetTransition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		id, err := pathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := pick(svc)(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

// ActivateAsset moves a drafted or serviced asset into circulation.
func ActivateAsset(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return assetTransitionHandler(svc, logg, func(s assetsvc.Service) assetTransition { return s.ActivateAsset })
}

// StartAssetMaintenance pulls an asset out of circulation for planned work.
func StartAssetMaintenance(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return assetTransitionHandler(svc, logg, func(s assetsvc.Service) assetTransition { return s.StartMaintenance })
}

// StartAssetRepair pulls an asset out of circulation for repair.
func StartAssetRepair(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return assetTransitionHandler(svc, logg, func(s assetsvc.Service) assetTransition { return s.StartRepair })
}

// FinishAssetService returns a serviced asset to circulation.
func FinishAssetService(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return assetTransitionHandler(svc, logg, func(s assetsvc.Service) assetTransition { return s.FinishService })
}

// DisposeAsset retires an asset permanently.
func DisposeAsset(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return assetTransitionHandler(svc, logg, func(s assetsvc.Service) assetTransition { return s.DisposeAsset })
}

// AssetQRCode renders the asset's scan payload as a QR label PNG.
func AssetQRCode(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		id, err := pathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scan, err := svc.BuildScanPayload(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := json.Marshal(scan)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode scan payload"))
			return
		}

		png, err := barcode.QRCodePNG(payload, barcode.DefaultQRSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writePNG(w, png)
	}
}

// AssetBarcode renders the asset code as a Code 128 label PNG.
func AssetBarcode(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		id, err := pathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.GetAsset(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		png, err := barcode.Code128PNG(asset.Code, barcode.DefaultBarcodeWidth, barcode.DefaultBarcodeHeight)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writePNG(w, png)
	}
}

// maxLabelBatch caps how many labels one request can render.
const maxLabelBatch = 100

type labelBatchInput struct {
	AssetIDs []uuid.UUID `json:"asset_ids" validate:"required,min=1"`
	Format   string      `json:"format,omitempty"`
}

// AssetLabels renders printable labels for a selection of assets and
// streams them back as a ZIP of PNGs.
func AssetLabels(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		var payload labelBatchInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(payload.AssetIDs) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "asset_ids is required"))
			return
		}
		if len(payload.AssetIDs) > maxLabelBatch {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "too many assets in one batch"))
			return
		}
		format := strings.ToLower(strings.TrimSpace(payload.Format))
		if format == "" {
			format = "qr"
		}
		if format != "qr" && format != "code128" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "format must be qr or code128"))
			return
		}

		var buf bytes.Buffer
		archive := zip.NewWriter(&buf)
		seen := make(map[uuid.UUID]struct{}, len(payload.AssetIDs))
		for _, id := range payload.AssetIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			png, name, err := renderLabel(r.Context(), svc, id, format)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			entry, err := archive.Create(name)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write label archive"))
				return
			}
			if _, err := entry.Write(png); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write label archive"))
				return
			}
		}
		if err := archive.Close(); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close label archive"))
			return
		}

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="asset-labels.zip"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func renderLabel(ctx context.Context, svc assetsvc.Service, id uuid.UUID, format string) ([]byte, string, error) {
	if format == "code128" {
		asset, err := svc.GetAsset(ctx, id)
		if err != nil {
			return nil, "", err
		}
		png, err := barcode.Code128PNG(asset.Code, barcode.DefaultBarcodeWidth, barcode.DefaultBarcodeHeight)
		if err != nil {
			return nil, "", err
		}
		return png, asset.Code + "-code128.png", nil
	}

	scan, err := svc.BuildScanPayload(ctx, id)
	if err != nil {
		return nil, "", err
	}
	payload, err := json.Marshal(scan)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode scan payload")
	}
	png, err := barcode.QRCodePNG(payload, barcode.DefaultQRSize)
	if err != nil {
		return nil, "", err
	}
	return png, scan.AssetCode + "-qr.png", nil
}

func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseAssetListParams(r *http.Request) (*assetsvc.ListParams, error) {
	params := assetsvc.ListParams{}

	if raw := strings.TrimSpace(r.URL.Query().Get("state")); raw != "" {
		state, err := enums.ParseAssetState(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid state")
		}
		params.State = &state
	}

	categoryID, err := queryUUID(r, "categoryId")
	if err != nil {
		return nil, err
	}
	params.CategoryID = categoryID

	holderID, err := queryUUID(r, "holderId")
	if err != nil {
		return nil, err
	}
	params.HolderID = holderID

	params.Search = querySearch(r)

	limit, err := queryLimit(r)
	if err != nil {
		return nil, err
	}
	params.Limit = limit
	params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

	return &params, nil
}
