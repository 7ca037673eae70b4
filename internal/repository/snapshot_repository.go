package repository

import (
	"context"

	"portal/internal/domain/model"
)

// 確定スナップショットは追加と参照のみ
type SnapshotRepository interface {
	Create(ctx context.Context, s model.ConfirmationSnapshot) error
	ListByApplicationID(ctx context.Context, applicationID string) ([]model.ConfirmationSnapshot, error)
}
