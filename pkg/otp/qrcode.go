package otp

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the image size in pixels used when no size is given.
const DefaultQRSize = 256

// QRCode renders content, usually an encoded KeyURI, as a PNG image.
func QRCode(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyQRContent
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQR, err)
	}
	return png, nil
}

// QRCodeDataURI renders content as a data:image/png;base64 URI.
func QRCodeDataURI(content string, size int) (string, error) {
	png, err := QRCode(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
