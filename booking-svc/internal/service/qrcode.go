package service

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderID int) ([]byte, error)
}

const defaultQRSize = 256

// OrderLinkQR renders the guest's order status page as a PNG QR code.
type OrderLinkQR struct {
	baseURL string
	size    int
	level   qrcode.RecoveryLevel
}

// NewOrderLinkQR uses a 256px code when size is not positive.
func NewOrderLinkQR(baseURL string, size int) *OrderLinkQR {
	if size <= 0 {
		size = defaultQRSize
	}
	return &OrderLinkQR{baseURL: baseURL, size: size, level: qrcode.High}
}

// Link is the URL encoded for orderID.
func (g *OrderLinkQR) Link(orderID int) (string, error) {
	link, err := url.JoinPath(g.baseURL, "orders", strconv.Itoa(orderID))
	if err != nil {
		return "", fmt.Errorf("order link: %w", err)
	}
	return link, nil
}

func (g *OrderLinkQR) Generate(orderID int) ([]byte, error) {
	link, err := g.Link(orderID)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(link, g.level, g.size)
}
