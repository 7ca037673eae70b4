package repository

import (
	"context"

	repo "portal/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	offers        repo.OfferRepository
	offerLines    repo.OfferLineRepository
	applications  repo.ApplicationRepository
	orderLines    repo.OrderLineRepository
	confirmations repo.ConfirmationRepository
	snapshots     repo.SnapshotRepository
	auditLogs     repo.AuditLogRepository
}

func (r *txReposGorm) Offers() repo.OfferRepository { return r.offers }
func (r *txReposGorm) OfferLines() repo.OfferLineRepository { return r.offerLines }
func (r *txReposGorm) Applications() repo.ApplicationRepository { return r.applications }
func (r *txReposGorm) OrderLines() repo.OrderLineRepository { return r.orderLines }
func (r *txReposGorm) Confirmations() repo.ConfirmationRepository { return r.confirmations }
func (r *txReposGorm) Snapshots() repo.SnapshotRepository { return r.snapshots }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			offers:        NewOfferGormRepository(tx),
			offerLines:    NewOfferLineGormRepository(tx),
			applications:  NewApplicationGormRepository(tx),
			orderLines:    NewOrderLineGormRepository(tx),
			confirmations: NewConfirmationGormRepository(tx),
			snapshots:     NewSnapshotGormRepository(tx),
			auditLogs:     NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
