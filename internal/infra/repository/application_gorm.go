package repository

import (
	"context"
	"errors"
	"time"

	"portal/internal/domain/model"
	repo "portal/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationGormRepository struct {
	db *gorm.DB
}

func NewApplicationGormRepository(db *gorm.DB) *ApplicationGormRepository {
	return &ApplicationGormRepository{db: db}
}

func (r *ApplicationGormRepository) FindByID(ctx context.Context, applicationID string) (model.Application, error) {
	var a model.Application
	err := r.db.WithContext(ctx).Where("id = ?", applicationID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Application{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Application{}, err
	}
	return a, nil
}

func (r *ApplicationGormRepository) FindByIDForUpdate(ctx context.Context, applicationID string) (model.Application, error) {
	var a model.Application
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", applicationID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Application{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Application{}, err
	}
	return a, nil
}

func (r *ApplicationGormRepository) Create(ctx context.Context, app model.Application) error {
	if err := r.db.WithContext(ctx).Create(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repo.ErrDuplicate
		}
		return err
	}
	return nil
}

// 条件・状態・verified_at を同じUPDATE文で書く（片方だけ変わった状態を作らない）
func (r *ApplicationGormRepository) UpdateTerms(ctx context.Context, applicationID string, u repo.ApplicationTermsUpdate) error {
	res := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("id = ?", applicationID).
		Updates(map[string]interface{}{
			"units":       u.Units,
			"term":        u.Term,
			"price_euros": u.PriceEuros,
			"status":      u.Status,
			"verified_at": u.VerifiedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ApplicationGormRepository) UpdateStatus(ctx context.Context, applicationID string, status model.ApplicationStatus, verifiedAt *time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("id = ?", applicationID).
		Updates(map[string]interface{}{
			"status":      status,
			"verified_at": verifiedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
