package repository

import (
	"context"
	"time"

	"portal/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 条件と状態を1回のUPDATEで書き換えるための値
type ApplicationTermsUpdate struct {
	Units      int64
	Term       string
	PriceEuros decimal.Decimal
	Status     model.ApplicationStatus
	VerifiedAt *time.Time
}

type ApplicationRepository interface {
	FindByID(ctx context.Context, applicationID string) (model.Application, error)
	// 行ロックを取って取得（同じ注文への保存を直列化）
	FindByIDForUpdate(ctx context.Context, applicationID string) (model.Application, error)
	Create(ctx context.Context, app model.Application) error
	UpdateTerms(ctx context.Context, applicationID string, u ApplicationTermsUpdate) error
	UpdateStatus(ctx context.Context, applicationID string, status model.ApplicationStatus, verifiedAt *time.Time) error
}
