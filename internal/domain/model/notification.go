package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type NotificationKind string

const (
	NotificationOfferApplied   NotificationKind = "offer_applied"
	NotificationOrderGenerated NotificationKind = "order_generated"
	NotificationOrderConfirmed NotificationKind = "order_confirmed"
)

// コミット後に外部へ流す通知。失敗しても状態遷移は取り消さない。
type Notification struct {
	Kind          NotificationKind `json:"kind"`
	OfferID       string           `json:"offer_id,omitempty"`
	OfferNumber   string           `json:"offer_number,omitempty"`
	ApplicationID string           `json:"application_id,omitempty"`
	OrderNumber   string           `json:"order_number,omitempty"`
	SupplierID    string           `json:"supplier_id,omitempty"`
	Units         int64            `json:"units,omitempty"`
	Term          string           `json:"term,omitempty"`
	PriceEuros    decimal.Decimal  `json:"price_euros"`
	OccurredAt    time.Time        `json:"occurred_at"`
}
