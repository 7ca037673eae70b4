package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 調達担当が作成する見積依頼
type Offer struct {
	ID           string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	OfferNumber  string      `gorm:"type:varchar(50);not null;uniqueIndex" json:"offer_number"`
	Description  string      `gorm:"type:text;not null" json:"description"`
	MinimumUnits int64       `gorm:"not null" json:"minimum_units"`
	Deadline     *time.Time  `json:"deadline"`
	Status       OfferStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updated_at"`
}

// 見積依頼の明細（品目ごとの依頼数量）
// Confirmed* はサプライヤーの回答。依頼側の項目は作成後に変更しない。
type OfferLine struct {
	ID                  string              `gorm:"type:varchar(36);primaryKey" json:"id"`
	OfferID             string              `gorm:"type:varchar(36);not null;index" json:"offer_id"`
	MaterialCode        string              `gorm:"type:varchar(100);not null" json:"material_code"`
	MaterialDescription string              `gorm:"type:text;not null" json:"material_description"`
	RequestedUnits      decimal.Decimal     `gorm:"type:decimal(14,3);not null" json:"requested_units"`
	Deadline            *time.Time          `json:"deadline"`
	ReferencePrice      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"reference_price"`
	ConfirmedUnits      decimal.NullDecimal `gorm:"type:decimal(14,3)" json:"confirmed_units"`
	ConfirmedPrice      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"confirmed_price"`
	ConfirmedTerm       *string             `gorm:"type:varchar(50)" json:"confirmed_term"`
	CreatedAt           time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"not null" json:"updated_at"`
}

// 回答済み（数量と価格が正の値）か
func (l OfferLine) HasProposal() bool {
	return l.ConfirmedUnits.Valid && l.ConfirmedUnits.Decimal.IsPositive() &&
		l.ConfirmedPrice.Valid && l.ConfirmedPrice.Decimal.IsPositive()
}
