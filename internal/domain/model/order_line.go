package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細（作成後は変更しない）
type OrderLine struct {
	ID             string              `gorm:"type:varchar(36);primaryKey" json:"id"`
	ApplicationID  string              `gorm:"type:varchar(36);not null;index" json:"application_id"`
	ArticleCode    string              `gorm:"type:varchar(100);not null;index" json:"article_code"`
	Description    string              `gorm:"type:text;not null" json:"description"`
	RequestedUnits decimal.Decimal     `gorm:"type:decimal(14,3);not null" json:"requested_units"`
	RequestedTerm  *string             `gorm:"type:varchar(50)" json:"requested_term"`
	RequestedPrice decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"requested_price"`
	CreatedAt      time.Time           `gorm:"not null" json:"created_at"`
}

// 明細に対するサプライヤーの回答。1明細に複数行あってよい。
// ArticleCode は集計用に OrderLine からコピーする。
type OrderLineConfirmation struct {
	ID             string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderLineID    string          `gorm:"type:varchar(36);not null;index" json:"order_line_id"`
	ApplicationID  string          `gorm:"type:varchar(36);not null;index" json:"application_id"`
	ArticleCode    string          `gorm:"type:varchar(100);not null;index" json:"article_code"`
	ConfirmedUnits decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"confirmed_units"`
	ConfirmedTerm  string          `gorm:"type:varchar(50);not null" json:"confirmed_term"`
	ConfirmedPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"confirmed_price"`
	CreatedAt      time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
}

// 数量・納期・価格・明細のどれかが違うか
func (c OrderLineConfirmation) SameTerms(o OrderLineConfirmation) bool {
	return c.OrderLineID == o.OrderLineID &&
		c.ConfirmedUnits.Equal(o.ConfirmedUnits) &&
		c.ConfirmedTerm == o.ConfirmedTerm &&
		c.ConfirmedPrice.Equal(o.ConfirmedPrice)
}
