package repository

import (
	"context"

	"portal/internal/domain/model"
	repo "portal/internal/repository"

	"gorm.io/gorm"
)

type OfferLineGormRepository struct {
	db *gorm.DB
}

func NewOfferLineGormRepository(db *gorm.DB) *OfferLineGormRepository {
	return &OfferLineGormRepository{db: db}
}

func (r *OfferLineGormRepository) ListByOfferID(ctx context.Context, offerID string) ([]model.OfferLine, error) {
	var lines []model.OfferLine
	err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Order("material_code asc, id asc").
		Find(&lines).Error
	if err != nil {
		return []model.OfferLine{}, err
	}
	return lines, nil
}

func (r *OfferLineGormRepository) CreateBulk(ctx context.Context, offerID string, lines []model.OfferLine) error {
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].OfferID = offerID
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// 依頼側の項目には触らない
func (r *OfferLineGormRepository) UpdateConfirmed(ctx context.Context, line model.OfferLine) error {
	res := r.db.WithContext(ctx).Model(&model.OfferLine{}).
		Where("id = ? AND offer_id = ?", line.ID, line.OfferID).
		Updates(map[string]interface{}{
			"confirmed_units": line.ConfirmedUnits,
			"confirmed_price": line.ConfirmedPrice,
			"confirmed_term":  line.ConfirmedTerm,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
