package repository

import (
	"context"

	"portal/internal/domain/model"
)

type OrderLineRepository interface {
	CreateBulk(ctx context.Context, applicationID string, lines []model.OrderLine) error
	ListByApplicationID(ctx context.Context, applicationID string) ([]model.OrderLine, error)
}

type ConfirmationRepository interface {
	ListByApplicationID(ctx context.Context, applicationID string) ([]model.OrderLineConfirmation, error)
	DeleteByIDs(ctx context.Context, applicationID string, ids []string) error
	Update(ctx context.Context, c model.OrderLineConfirmation) error
	CreateBulk(ctx context.Context, rows []model.OrderLineConfirmation) error
}
