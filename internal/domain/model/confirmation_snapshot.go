package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 確定時点の条件の記録。書き込みのみで更新・削除しない。
// pending に戻って再確定した場合は新しい行を追加する。
type ConfirmationSnapshot struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	ApplicationID string          `gorm:"type:varchar(36);not null;index" json:"application_id"`
	SupplierID    string          `gorm:"type:varchar(36);not null;index" json:"supplier_id"`
	OfferID       *string         `gorm:"type:varchar(36)" json:"offer_id"`
	Units         int64           `gorm:"not null" json:"units"`
	Term          string          `gorm:"type:varchar(50);not null" json:"term"`
	PriceEuros    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_euros"`
	ConfirmedAt   time.Time       `gorm:"not null;index" json:"confirmed_at"`
}

func NewConfirmationSnapshot(id string, a Application, at time.Time) ConfirmationSnapshot {
	return ConfirmationSnapshot{
		ID:            id,
		ApplicationID: a.ID,
		SupplierID:    a.SupplierID,
		OfferID:       a.OfferID,
		Units:         a.Units,
		Term:          a.Term,
		PriceEuros:    a.PriceEuros,
		ConfirmedAt:   at,
	}
}
