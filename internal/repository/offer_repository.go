package repository

import (
	"context"

	"portal/internal/domain/model"
)

type OfferRepository interface {
	FindByID(ctx context.Context, offerID string) (model.Offer, error)
	// 行ロックを取って取得（同じ見積への書き込みを直列化）
	FindByIDForUpdate(ctx context.Context, offerID string) (model.Offer, error)
	Create(ctx context.Context, offer model.Offer) error
	UpdateStatus(ctx context.Context, offerID string, status model.OfferStatus) error
}

type OfferLineRepository interface {
	ListByOfferID(ctx context.Context, offerID string) ([]model.OfferLine, error)
	CreateBulk(ctx context.Context, offerID string, lines []model.OfferLine) error
	// 回答項目（confirmed_*）だけ更新する
	UpdateConfirmed(ctx context.Context, line model.OfferLine) error
}
