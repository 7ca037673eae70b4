package repository

import (
	"context"

	"portal/internal/domain/model"

	"gorm.io/gorm"
)

type SnapshotGormRepository struct {
	db *gorm.DB
}

func NewSnapshotGormRepository(db *gorm.DB) *SnapshotGormRepository {
	return &SnapshotGormRepository{db: db}
}

func (r *SnapshotGormRepository) Create(ctx context.Context, s model.ConfirmationSnapshot) error {
	return r.db.WithContext(ctx).Create(&s).Error
}

func (r *SnapshotGormRepository) ListByApplicationID(ctx context.Context, applicationID string) ([]model.ConfirmationSnapshot, error) {
	var rows []model.ConfirmationSnapshot
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("confirmed_at asc, id asc").
		Find(&rows).Error
	if err != nil {
		return []model.ConfirmationSnapshot{}, err
	}
	return rows, nil
}
