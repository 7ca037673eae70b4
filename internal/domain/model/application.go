package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusConfirmed ApplicationStatus = "confirmed"
)

type ApplicationEvent string

const (
	// サプライヤーが内容を確認して確定
	ApplicationEventVerify ApplicationEvent = "verify"
	// 数量・納期・価格の変更
	ApplicationEventEdit ApplicationEvent = "edit"
)

var applicationTransitions = map[ApplicationStatus]map[ApplicationEvent]ApplicationStatus{
	ApplicationStatusPending: {
		ApplicationEventVerify: ApplicationStatusConfirmed,
		ApplicationEventEdit:   ApplicationStatusPending,
	},
	ApplicationStatusConfirmed: {
		// 確定済みの変更は必ず pending に戻す
		ApplicationEventEdit: ApplicationStatusPending,
	},
}

func (s ApplicationStatus) Valid() bool {
	_, ok := applicationTransitions[s]
	return ok
}

func (s ApplicationStatus) Apply(ev ApplicationEvent) (ApplicationStatus, error) {
	next, ok := applicationTransitions[s][ev]
	if !ok {
		return s, &TransitionError{Entity: "application", From: string(s), Event: string(ev)}
	}
	return next, nil
}

var ErrVerifiedAtMismatch = errors.New("status and verified_at disagree")

// サプライヤーの応募＝注文
type Application struct {
	ID          string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderNumber string            `gorm:"type:varchar(50);not null;uniqueIndex" json:"order_number"`
	OfferID     *string           `gorm:"type:varchar(36);index" json:"offer_id"`
	SupplierID  string            `gorm:"type:varchar(36);not null;index" json:"supplier_id"`
	UserID      string            `gorm:"type:varchar(36);not null" json:"user_id"`
	Units       int64             `gorm:"not null" json:"units"`
	Term        string            `gorm:"type:varchar(50);not null" json:"term"`
	PriceEuros  decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"price_euros"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	VerifiedAt  *time.Time        `json:"verified_at"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

// 保存値と1項目でも違えば true
func (a Application) HasTermChanges(units int64, term string, price decimal.Decimal) bool {
	return a.Units != units || a.Term != term || !a.PriceEuros.Equal(price)
}

// confirmed ⇔ verified_at あり
func (a Application) CheckVerifiedInvariant() error {
	confirmed := a.Status == ApplicationStatusConfirmed
	if confirmed != (a.VerifiedAt != nil) {
		return ErrVerifiedAtMismatch
	}
	return nil
}

