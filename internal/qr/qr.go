// Package qr generates and decodes the QR labels printed on tools.
// Labels carry the bare tool code so any scanner app can read them.
package qr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
)

// labelSize is the PNG edge length in pixels for printed labels.
const labelSize = 256

// Encode renders the tool code as a PNG QR label.
func Encode(toolCode string) ([]byte, error) {
	if toolCode == "" {
		return nil, fmt.Errorf("tool code is empty")
	}
	png, err := qrcode.Encode(toolCode, qrcode.Medium, labelSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr label: %w", err)
	}
	return png, nil
}

// Decode reads a QR label image (PNG or JPEG) and returns the embedded
// tool code.
func Decode(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode label image: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("prepare label bitmap: %w", err)
	}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("read qr label: %w", err)
	}
	return result.GetText(), nil
}
