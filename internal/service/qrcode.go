package service

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
}

// TrackingQR renders a PNG QR code pointing at the order's tracking page.
type TrackingQR struct {
	BaseURL string
}

func (g TrackingQR) URL(orderID string) string {
	return fmt.Sprintf("%s/orders/%s", g.BaseURL, orderID)
}

func (g TrackingQR) Generate(orderID string) ([]byte, error) {
	return qrcode.Encode(g.URL(orderID), qrcode.Medium, 256)
}
