// Package barcode renders asset labels as QR and Code 128 PNG images.
package barcode

import (
	"bytes"
	"image/png"
	"strings"

	boombuler "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	qrcode "github.com/skip2/go-qrcode"

	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
)

const (
	// DefaultQRSize is the QR label edge in pixels.
	DefaultQRSize = 256
	// DefaultBarcodeWidth and DefaultBarcodeHeight size Code 128 labels.
	DefaultBarcodeWidth  = 300
	DefaultBarcodeHeight = 80
)

// QRCodePNG renders the payload as a QR code PNG.
func QRCodePNG(payload []byte, size int) ([]byte, error) {
	if len(payload) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qr payload required")
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	data, err := qrcode.Encode(string(payload), qrcode.Medium, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode qr code")
	}
	return data, nil
}

// Code128PNG renders the asset code as a Code 128 barcode PNG.
func Code128PNG(code string, width, height int) ([]byte, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode content required")
	}
	if width <= 0 {
		width = DefaultBarcodeWidth
	}
	if height <= 0 {
		height = DefaultBarcodeHeight
	}

	encoded, err := code128.Encode(code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode code128")
	}
	scaled, err := boombuler.Scale(encoded, width, height)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "scale barcode")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render barcode png")
	}
	return buf.Bytes(), nil
}
