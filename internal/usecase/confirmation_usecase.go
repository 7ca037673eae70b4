package usecase

import (
	"context"
	"errors"
	"net/http"

	"portal/internal/domain/ledger"
	"portal/internal/domain/model"
	repo "portal/internal/repository"
	"portal/internal/validator"

	"go.uber.org/zap"
)

// 注文明細への回答（数量の割当）を保存する
type ConfirmationUsecase struct {
	tx    repo.TransactionManager
	idGen IDGenerator
	clock Clock
	log   *zap.Logger
}

// DI
func NewConfirmationUsecase(tx repo.TransactionManager, idGen IDGenerator, clock Clock, log *zap.Logger) *ConfirmationUsecase {
	return &ConfirmationUsecase{
		tx:    tx,
		idGen: idGen,
		clock: clock,
		log:   log.Named("confirmation"),
	}
}

type ConfirmationsOutput struct {
	ApplicationStatus model.ApplicationStatus       `json:"application_status"`
	Confirmations     []model.OrderLineConfirmation `json:"confirmations"`
	Allocation        []validator.ArticleAllocation `json:"allocation"`
	Deleted           int                           `json:"deleted"`
	Updated           int                           `json:"updated"`
	Inserted          int                           `json:"inserted"`
}

// 候補一式の作り方（保存済みの明細・回答から組み立てる）
type candidateFunc func(lines []model.OrderLine, prev []model.OrderLineConfirmation) ([]validator.ConfirmationInput, bool)

// Save は画面で編集した回答一式を差分で保存する。
func (u *ConfirmationUsecase) Save(ctx context.Context, actor model.Actor, applicationID string, inputs []validator.ConfirmationInput) (ConfirmationsOutput, error) {
	return u.persist(ctx, actor, applicationID, "confirmation.save",
		func([]model.OrderLine, []model.OrderLineConfirmation) ([]validator.ConfirmationInput, bool) {
			return inputs, false
		})
}

// ConfirmAll は全明細を依頼どおりに回答した内容で一式を置き換える。
func (u *ConfirmationUsecase) ConfirmAll(ctx context.Context, actor model.Actor, applicationID string) (ConfirmationsOutput, error) {
	today := u.clock.Now()
	return u.persist(ctx, actor, applicationID, "confirmation.confirm_all",
		func(lines []model.OrderLine, _ []model.OrderLineConfirmation) ([]validator.ConfirmationInput, bool) {
			return ledger.BuildConfirmAll(lines, today), true
		})
}

// PreviewConfirmAll は一括回答の候補を返すだけで書き込まない。
func (u *ConfirmationUsecase) PreviewConfirmAll(ctx context.Context, actor model.Actor, applicationID string) ([]validator.ConfirmationInput, error) {
	var out []validator.ConfirmationInput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		app, err := r.Applications().FindByID(ctx, applicationID)
		if err != nil {
			return notFoundOr(err, "application")
		}
		if err := authorizeRead(actor, app); err != nil {
			return err
		}
		lines, err := r.OrderLines().ListByApplicationID(ctx, applicationID)
		if err != nil {
			return err
		}
		out = ledger.BuildConfirmAll(lines, u.clock.Now())
		return nil
	})
	if err != nil {
		return nil, txError(u.log, "confirmation.preview_confirm_all", err)
	}
	return out, nil
}

// Allocation は保存済みの回答から品目ごとの充足率を返す。
func (u *ConfirmationUsecase) Allocation(ctx context.Context, actor model.Actor, applicationID string) ([]validator.ArticleAllocation, error) {
	var out []validator.ArticleAllocation
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		app, err := r.Applications().FindByID(ctx, applicationID)
		if err != nil {
			return notFoundOr(err, "application")
		}
		if err := authorizeRead(actor, app); err != nil {
			return err
		}
		lines, err := r.OrderLines().ListByApplicationID(ctx, applicationID)
		if err != nil {
			return err
		}
		confs, err := r.Confirmations().ListByApplicationID(ctx, applicationID)
		if err != nil {
			return err
		}
		out = validator.Summarize(lines, confs)
		return nil
	})
	if err != nil {
		return nil, txError(u.log, "confirmation.allocation", err)
	}
	return out, nil
}

// persist は 行ロック → 検証 → 差分計算 → delete/update/insert を1トランザクションで行う。
// 検証で弾いた場合は1行も書かない。
func (u *ConfirmationUsecase) persist(ctx context.Context, actor model.Actor, applicationID string, op string, build candidateFunc) (ConfirmationsOutput, error) {
	var out ConfirmationsOutput
	demoted := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じ注文への保存はここで直列化される
		app, err := r.Applications().FindByIDForUpdate(ctx, applicationID)
		if err != nil {
			return notFoundOr(err, "application")
		}
		if err := authorizeWrite(actor, app); err != nil {
			return err
		}

		lines, err := r.OrderLines().ListByApplicationID(ctx, applicationID)
		if err != nil {
			return err
		}
		prev, err := r.Confirmations().ListByApplicationID(ctx, applicationID)
		if err != nil {
			return err
		}

		candidates, replace := build(lines, prev)
		rows, vs := validator.ValidateConfirmations(applicationID, lines, candidates)
		if !vs.Empty() {
			return newValidationError(vs)
		}
		if replace {
			rows = ledger.MatchExisting(prev, rows)
		}

		diff, err := ledger.Compute(prev, rows)
		if errors.Is(err, ledger.ErrUnknownConfirmation) {
			return newValidationError(validator.Violations{{
				Code:    validator.CodeValidation,
				Field:   "id",
				Message: err.Error(),
			}})
		}
		if err != nil {
			return err
		}

		now := u.clock.Now()
		if err := r.Confirmations().DeleteByIDs(ctx, applicationID, diff.Delete); err != nil {
			return err
		}
		for _, c := range diff.Update {
			c.UpdatedAt = now
			if err := r.Confirmations().Update(ctx, c); err != nil {
				return err
			}
		}
		for i := range diff.Insert {
			diff.Insert[i].ID = u.idGen.NewID()
			diff.Insert[i].CreatedAt = now
			diff.Insert[i].UpdatedAt = now
		}
		if err := r.Confirmations().CreateBulk(ctx, diff.Insert); err != nil {
			return err
		}

		status := app.Status
		if !diff.Empty() && app.Status == model.ApplicationStatusConfirmed {
			next, err := app.Status.Apply(model.ApplicationEventEdit)
			if err != nil {
				return newTransitionError(err)
			}
			after := app
			after.Status, after.VerifiedAt = next, nil
			if err := after.CheckVerifiedInvariant(); err != nil {
				return err
			}
			if err := r.Applications().UpdateStatus(ctx, applicationID, next, nil); err != nil {
				return err
			}
			if err := r.AuditLogs().Create(ctx, demotionAudit(actor, app, after, now)); err != nil {
				return err
			}
			status = next
			demoted = true
		}

		saved, err := r.Confirmations().ListByApplicationID(ctx, applicationID)
		if err != nil {
			return err
		}
		out = ConfirmationsOutput{
			ApplicationStatus: status,
			Confirmations:     saved,
			Allocation:        validator.Summarize(lines, saved),
			Deleted:           len(diff.Delete),
			Updated:           len(diff.Update),
			Inserted:          len(diff.Insert),
		}
		return nil
	})
	if err != nil {
		if he, ok := AsHTTPError(err); ok && he.Status == http.StatusUnprocessableEntity {
			u.log.Debug("confirmations rejected", zap.String("application_id", applicationID), zap.Int("violations", len(he.Details)))
		}
		return ConfirmationsOutput{}, txError(u.log, op, err)
	}

	u.log.Info("confirmations saved",
		zap.String("application_id", applicationID),
		zap.Int("deleted", out.Deleted),
		zap.Int("updated", out.Updated),
		zap.Int("inserted", out.Inserted),
		zap.Bool("demoted", demoted),
	)
	return out, nil
}
