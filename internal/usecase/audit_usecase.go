package usecase

import (
	"context"
	"net/http"

	"portal/internal/domain/model"
	repo "portal/internal/repository"

	"go.uber.org/zap"
)

// 監査ログの参照（調達担当のみ）
type AuditUsecase struct {
	tx  repo.TransactionManager
	log *zap.Logger
}

func NewAuditUsecase(tx repo.TransactionManager, log *zap.Logger) *AuditUsecase {
	return &AuditUsecase{tx: tx, log: log.Named("audit")}
}

func (u *AuditUsecase) List(ctx context.Context, actor model.Actor, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	if !actor.IsAdmin() {
		return nil, NewHTTPError(http.StatusForbidden, "admin only")
	}

	var out []model.AuditLog
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		logs, err := r.AuditLogs().List(ctx, filter)
		if err != nil {
			return err
		}
		out = logs
		return nil
	})
	if err != nil {
		return nil, txError(u.log, "audit.list", err)
	}
	if out == nil {
		out = []model.AuditLog{}
	}
	return out, nil
}
