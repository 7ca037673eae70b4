package repository

import (
	"context"
	"errors"

	"portal/internal/domain/model"
	repo "portal/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OfferGormRepository struct {
	db *gorm.DB
}

func NewOfferGormRepository(db *gorm.DB) *OfferGormRepository {
	return &OfferGormRepository{db: db}
}

func (r *OfferGormRepository) FindByID(ctx context.Context, offerID string) (model.Offer, error) {
	var o model.Offer
	err := r.db.WithContext(ctx).Where("id = ?", offerID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Offer{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Offer{}, err
	}
	return o, nil
}

func (r *OfferGormRepository) FindByIDForUpdate(ctx context.Context, offerID string) (model.Offer, error) {
	var o model.Offer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", offerID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Offer{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Offer{}, err
	}
	return o, nil
}

func (r *OfferGormRepository) Create(ctx context.Context, offer model.Offer) error {
	if err := r.db.WithContext(ctx).Create(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repo.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *OfferGormRepository) UpdateStatus(ctx context.Context, offerID string, status model.OfferStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Offer{}).
		Where("id = ?", offerID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
