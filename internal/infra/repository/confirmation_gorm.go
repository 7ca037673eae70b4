package repository

import (
	"context"
	"fmt"

	"portal/internal/domain/model"
	repo "portal/internal/repository"

	"gorm.io/gorm"
)

type ConfirmationGormRepository struct {
	db *gorm.DB
}

func NewConfirmationGormRepository(db *gorm.DB) *ConfirmationGormRepository {
	return &ConfirmationGormRepository{db: db}
}

func (r *ConfirmationGormRepository) ListByApplicationID(ctx context.Context, applicationID string) ([]model.OrderLineConfirmation, error) {
	var rows []model.OrderLineConfirmation
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at asc, id asc").
		Find(&rows).Error
	if err != nil {
		return []model.OrderLineConfirmation{}, err
	}
	return rows, nil
}

// 他の注文の行は消さない。件数が合わなければエラー（ロールバックさせる）
func (r *ConfirmationGormRepository) DeleteByIDs(ctx context.Context, applicationID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Where("application_id = ? AND id IN ?", applicationID, ids).
		Delete(&model.OrderLineConfirmation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(ids)) {
		return fmt.Errorf("delete confirmations: %w (want %d, got %d)", repo.ErrNotFound, len(ids), res.RowsAffected)
	}
	return nil
}

func (r *ConfirmationGormRepository) Update(ctx context.Context, c model.OrderLineConfirmation) error {
	res := r.db.WithContext(ctx).Model(&model.OrderLineConfirmation{}).
		Where("id = ? AND application_id = ?", c.ID, c.ApplicationID).
		Updates(map[string]interface{}{
			"order_line_id":   c.OrderLineID,
			"article_code":    c.ArticleCode,
			"confirmed_units": c.ConfirmedUnits,
			"confirmed_term":  c.ConfirmedTerm,
			"confirmed_price": c.ConfirmedPrice,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ConfirmationGormRepository) CreateBulk(ctx context.Context, rows []model.OrderLineConfirmation) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}
