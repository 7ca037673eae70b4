package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"portal/internal/domain/model"
	repo "portal/internal/repository"
	"portal/internal/validator"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ApplicationUsecase struct {
	tx       repo.TransactionManager
	notifier Notifier
	idGen    IDGenerator
	clock    Clock
	log      *zap.Logger
}

// DI
func NewApplicationUsecase(tx repo.TransactionManager, notifier Notifier, idGen IDGenerator, clock Clock, log *zap.Logger) *ApplicationUsecase {
	return &ApplicationUsecase{
		tx:       tx,
		notifier: notifier,
		idGen:    idGen,
		clock:    clock,
		log:      log.Named("application"),
	}
}

type CreateOrderInput struct {
	OfferID    *string
	SupplierID string
	// 空なら採番する
	OrderNumber string
	Terms       validator.TermsInput
	Lines       []validator.OrderRequestLine
}

type ApplicationDetail struct {
	Application   model.Application             `json:"application"`
	Lines         []model.OrderLine             `json:"lines"`
	Confirmations []model.OrderLineConfirmation `json:"confirmations"`
	Allocation    []validator.ArticleAllocation `json:"allocation"`
	Snapshots     []model.ConfirmationSnapshot  `json:"snapshots"`
}

// Apply はサプライヤーが見積に対して条件だけで応募する（明細なし）。
func (u *ApplicationUsecase) Apply(ctx context.Context, actor model.Actor, offerID string, in validator.TermsInput) (model.Application, error) {
	if !actor.IsSupplier() {
		return model.Application{}, NewHTTPError(http.StatusForbidden, "supplier only")
	}
	terms, vs := validator.ValidateTerms(in)
	if !vs.Empty() {
		return model.Application{}, newValidationError(vs)
	}

	now := u.clock.Now()
	app := model.Application{
		ID:          u.idGen.NewID(),
		OrderNumber: newNumber("ORD", u.idGen),
		OfferID:     &offerID,
		SupplierID:  actor.SupplierID,
		UserID:      actor.UserID,
		Units:       terms.Units,
		Term:        terms.Term,
		PriceEuros:  terms.Price,
		Status:      model.ApplicationStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Offers().FindByID(ctx, offerID)
		if err != nil {
			return notFoundOr(err, "offer")
		}
		if o.Status.IsTerminal() {
			return &HTTPError{Status: http.StatusConflict, Code: CodeInvalidTransition, Message: "offer is closed"}
		}
		return r.Applications().Create(ctx, app)
	})
	if err != nil {
		return model.Application{}, txError(u.log, "application.apply", err)
	}

	u.log.Info("application created", zap.String("application_id", app.ID), zap.String("offer_id", offerID))
	return app, nil
}

// CreateOrder は調達担当が明細付きの注文を起票する。明細は以後変更しない。
func (u *ApplicationUsecase) CreateOrder(ctx context.Context, actor model.Actor, in CreateOrderInput) (ApplicationDetail, error) {
	if !actor.IsAdmin() {
		return ApplicationDetail{}, NewHTTPError(http.StatusForbidden, "admin only")
	}

	terms, vs := validator.ValidateTerms(in.Terms)
	lines, lvs := validator.ValidateOrderRequest(in.Lines)
	vs = append(vs, lvs...)
	supplierID := strings.TrimSpace(in.SupplierID)
	if supplierID == "" {
		vs = append(vs, validator.Violation{Code: validator.CodeValidation, Field: "supplier_id", Message: "supplier id is required"})
	}
	vs = append(vs, validator.CheckLength("supplier_id", supplierID, validator.MaxIDLength)...)
	orderNumber := strings.TrimSpace(in.OrderNumber)
	vs = append(vs, validator.CheckLength("order_number", orderNumber, validator.MaxNumberLength)...)
	if !vs.Empty() {
		return ApplicationDetail{}, newValidationError(vs)
	}

	now := u.clock.Now()
	app := model.Application{
		ID:          u.idGen.NewID(),
		OrderNumber: orderNumber,
		OfferID:     in.OfferID,
		SupplierID:  supplierID,
		UserID:      actor.UserID,
		Units:       terms.Units,
		Term:        terms.Term,
		PriceEuros:  terms.Price,
		Status:      model.ApplicationStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if app.OrderNumber == "" {
		app.OrderNumber = newNumber("ORD", u.idGen)
	}
	for i := range lines {
		lines[i].ID = u.idGen.NewID()
		lines[i].CreatedAt = now
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if app.OfferID != nil {
			if _, err := r.Offers().FindByID(ctx, *app.OfferID); err != nil {
				return notFoundOr(err, "offer")
			}
		}
		if err := r.Applications().Create(ctx, app); err != nil {
			return duplicateOr(err, "order_number", app.OrderNumber)
		}
		return r.OrderLines().CreateBulk(ctx, app.ID, lines)
	})
	if err != nil {
		return ApplicationDetail{}, txError(u.log, "application.create_order", err)
	}

	u.log.Info("order generated", zap.String("application_id", app.ID), zap.Int("lines", len(lines)))
	notify(ctx, u.log, u.notifier, model.Notification{
		Kind:          model.NotificationOrderGenerated,
		OfferID:       derefString(app.OfferID),
		ApplicationID: app.ID,
		OrderNumber:   app.OrderNumber,
		SupplierID:    app.SupplierID,
		Units:         app.Units,
		Term:          app.Term,
		PriceEuros:    app.PriceEuros,
		OccurredAt:    now,
	})

	return ApplicationDetail{
		Application:   app,
		Lines:         lines,
		Confirmations: []model.OrderLineConfirmation{},
		Allocation:    validator.Summarize(lines, nil),
		Snapshots:     []model.ConfirmationSnapshot{},
	}, nil
}

// Get は注文の全体（明細・回答・充足率・確定履歴）を返す。
// サプライヤーは自社の注文だけ見られる。
func (u *ApplicationUsecase) Get(ctx context.Context, actor model.Actor, applicationID string) (ApplicationDetail, error) {
	var out ApplicationDetail
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
		snaps, err := r.Snapshots().ListByApplicationID(ctx, applicationID)
		if err != nil {
			return err
		}

		out = ApplicationDetail{
			Application:   app,
			Lines:         lines,
			Confirmations: confs,
			Allocation:    validator.Summarize(lines, confs),
			Snapshots:     snaps,
		}
		return nil
	})
	if err != nil {
		return ApplicationDetail{}, txError(u.log, "application.get", err)
	}
	return out, nil
}

// UpdateTerms は数量・納期・価格を保存する。
// 値が変わらなければ何もしない。confirmed の注文を変えたら同じUPDATEで pending に戻す。
func (u *ApplicationUsecase) UpdateTerms(ctx context.Context, actor model.Actor, applicationID string, in validator.TermsInput) (model.Application, error) {
	var out model.Application
	demoted := false
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		app, err := r.Applications().FindByIDForUpdate(ctx, applicationID)
		if err != nil {
			return notFoundOr(err, "application")
		}
		if err := authorizeWrite(actor, app); err != nil {
			return err
		}
		terms, vs := validator.ValidateTerms(in)
		if !vs.Empty() {
			return newValidationError(vs)
		}

		if !app.HasTermChanges(terms.Units, terms.Term, terms.Price) {
			out = app
			return nil
		}

		next, err := app.Status.Apply(model.ApplicationEventEdit)
		if err != nil {
			return newTransitionError(err)
		}
		update := repo.ApplicationTermsUpdate{
			Units:      terms.Units,
			Term:       terms.Term,
			PriceEuros: terms.Price,
			Status:     next,
			VerifiedAt: app.VerifiedAt,
		}
		if next == model.ApplicationStatusPending {
			update.VerifiedAt = nil
		}

		after := app
		after.Units, after.Term, after.PriceEuros = terms.Units, terms.Term, terms.Price
		after.Status, after.VerifiedAt = update.Status, update.VerifiedAt
		after.UpdatedAt = u.clock.Now()
		if err := after.CheckVerifiedInvariant(); err != nil {
			return err
		}
		if err := r.Applications().UpdateTerms(ctx, applicationID, update); err != nil {
			return err
		}

		if app.Status == model.ApplicationStatusConfirmed {
			demoted = true
			if err := r.AuditLogs().Create(ctx, demotionAudit(actor, app, after, after.UpdatedAt)); err != nil {
				return err
			}
		}
		out = after
		return nil
	})
	if err != nil {
		return model.Application{}, txError(u.log, "application.update_terms", err)
	}

	if demoted {
		u.log.Info("application demoted", zap.String("application_id", applicationID))
	}
	return out, nil
}

// Verify は pending → confirmed。条件の保存、確定記録、監査ログまで同じトランザクション。
func (u *ApplicationUsecase) Verify(ctx context.Context, actor model.Actor, applicationID string, in validator.TermsInput) (model.Application, error) {
	var out model.Application
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		app, err := r.Applications().FindByIDForUpdate(ctx, applicationID)
		if err != nil {
			return notFoundOr(err, "application")
		}
		if err := authorizeWrite(actor, app); err != nil {
			return err
		}
		terms, vs := validator.ValidateTerms(in)
		if !vs.Empty() {
			return newValidationError(vs)
		}
		next, err := app.Status.Apply(model.ApplicationEventVerify)
		if err != nil {
			return newTransitionError(err)
		}

		now := u.clock.Now()
		after := app
		after.Units, after.Term, after.PriceEuros = terms.Units, terms.Term, terms.Price
		after.Status, after.VerifiedAt, after.UpdatedAt = next, &now, now
		if err := after.CheckVerifiedInvariant(); err != nil {
			return err
		}
		if err := r.Applications().UpdateTerms(ctx, applicationID, repo.ApplicationTermsUpdate{
			Units:      after.Units,
			Term:       after.Term,
			PriceEuros: after.PriceEuros,
			Status:     after.Status,
			VerifiedAt: after.VerifiedAt,
		}); err != nil {
			return err
		}

		if err := r.Snapshots().Create(ctx, model.NewConfirmationSnapshot(u.idGen.NewID(), after, now)); err != nil {
			return err
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionVerifyApplication,
			ResourceType: model.AuditResourceApplication,
			ResourceID:   applicationID,
			BeforeJSON:   termsJSON(app),
			AfterJSON:    termsJSON(after),
			CreatedAt:    now,
		}); err != nil {
			return err
		}
		out = after
		return nil
	})
	if err != nil {
		return model.Application{}, txError(u.log, "application.verify", err)
	}

	u.log.Info("application verified", zap.String("application_id", applicationID))
	notify(ctx, u.log, u.notifier, model.Notification{
		Kind:          model.NotificationOrderConfirmed,
		OfferID:       derefString(out.OfferID),
		ApplicationID: out.ID,
		OrderNumber:   out.OrderNumber,
		SupplierID:    out.SupplierID,
		Units:         out.Units,
		Term:          out.Term,
		PriceEuros:    out.PriceEuros,
		OccurredAt:    *out.VerifiedAt,
	})
	return out, nil
}

// 管理者か、注文の持ち主のサプライヤー
func authorizeRead(actor model.Actor, app model.Application) error {
	if actor.IsAdmin() || actor.ActsFor(app.SupplierID) {
		return nil
	}
	return NewHTTPError(http.StatusForbidden, "forbidden")
}

// 書き込みは持ち主のサプライヤーだけ
func authorizeWrite(actor model.Actor, app model.Application) error {
	if actor.ActsFor(app.SupplierID) {
		return nil
	}
	return NewHTTPError(http.StatusForbidden, "forbidden")
}

type termsSnapshot struct {
	Status     model.ApplicationStatus `json:"status"`
	Units      int64                   `json:"units"`
	Term       string                  `json:"term"`
	PriceEuros decimal.Decimal         `json:"price_euros"`
}

func termsJSON(a model.Application) string {
	b, _ := json.Marshal(termsSnapshot{Status: a.Status, Units: a.Units, Term: a.Term, PriceEuros: a.PriceEuros})
	return string(b)
}

func demotionAudit(actor model.Actor, before, after model.Application, at time.Time) model.AuditLog {
	return model.AuditLog{
		ActorUserID:  actor.UserID,
		Action:       model.AuditActionDemoteApplication,
		ResourceType: model.AuditResourceApplication,
		ResourceID:   before.ID,
		BeforeJSON:   termsJSON(before),
		AfterJSON:    termsJSON(after),
		CreatedAt:    at,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
