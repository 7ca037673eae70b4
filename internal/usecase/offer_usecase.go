package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"portal/internal/domain/model"
	repo "portal/internal/repository"
	"portal/internal/validator"

	"go.uber.org/zap"
)

type OfferUsecase struct {
	tx       repo.TransactionManager
	notifier Notifier
	idGen    IDGenerator
	clock    Clock
	log      *zap.Logger
}

// DI
func NewOfferUsecase(tx repo.TransactionManager, notifier Notifier, idGen IDGenerator, clock Clock, log *zap.Logger) *OfferUsecase {
	return &OfferUsecase{
		tx:       tx,
		notifier: notifier,
		idGen:    idGen,
		clock:    clock,
		log:      log.Named("offer"),
	}
}

type CreateOfferInput struct {
	// 空なら採番する
	OfferNumber  string
	Description  string
	MinimumUnits int64
	Deadline     *time.Time
	Lines        []validator.OfferRequestLine
}

type OfferOutput struct {
	model.Offer
	Lines []model.OfferLine `json:"lines"`
}

// Create は調達担当が見積依頼を open で作る。
func (u *OfferUsecase) Create(ctx context.Context, actor model.Actor, in CreateOfferInput) (OfferOutput, error) {
	if !actor.IsAdmin() {
		return OfferOutput{}, NewHTTPError(http.StatusForbidden, "admin only")
	}

	lines, vs := validator.ValidateOfferRequest(in.MinimumUnits, in.Lines)
	offerNumber := strings.TrimSpace(in.OfferNumber)
	vs = append(vs, validator.CheckLength("offer_number", offerNumber, validator.MaxNumberLength)...)
	if !vs.Empty() {
		return OfferOutput{}, newValidationError(vs)
	}

	now := u.clock.Now()
	offer := model.Offer{
		ID:           u.idGen.NewID(),
		OfferNumber:  offerNumber,
		Description:  strings.TrimSpace(in.Description),
		MinimumUnits: in.MinimumUnits,
		Deadline:     in.Deadline,
		Status:       model.OfferStatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if offer.OfferNumber == "" {
		offer.OfferNumber = newNumber("OF", u.idGen)
	}
	for i := range lines {
		lines[i].ID = u.idGen.NewID()
		lines[i].CreatedAt = now
		lines[i].UpdatedAt = now
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Offers().Create(ctx, offer); err != nil {
			return duplicateOr(err, "offer_number", offer.OfferNumber)
		}
		return r.OfferLines().CreateBulk(ctx, offer.ID, lines)
	})
	if err != nil {
		return OfferOutput{}, txError(u.log, "offer.create", err)
	}

	u.log.Info("offer created", zap.String("offer_id", offer.ID), zap.Int("lines", len(lines)))
	return OfferOutput{Offer: offer, Lines: lines}, nil
}

func (u *OfferUsecase) Get(ctx context.Context, actor model.Actor, offerID string) (OfferOutput, error) {
	if !actor.Role.Valid() {
		return OfferOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out OfferOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Offers().FindByID(ctx, offerID)
		if err != nil {
			return notFoundOr(err, "offer")
		}
		lines, err := r.OfferLines().ListByOfferID(ctx, offerID)
		if err != nil {
			return err
		}
		out = OfferOutput{Offer: o, Lines: lines}
		return nil
	})
	if err != nil {
		return OfferOutput{}, txError(u.log, "offer.get", err)
	}
	return out, nil
}

// SaveDraft は回答の途中保存。状態は open のまま。
func (u *OfferUsecase) SaveDraft(ctx context.Context, actor model.Actor, offerID string, inputs []validator.OfferLineInput) (OfferOutput, error) {
	if !actor.IsSupplier() {
		return OfferOutput{}, NewHTTPError(http.StatusForbidden, "supplier only")
	}

	var out OfferOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Offers().FindByIDForUpdate(ctx, offerID)
		if err != nil {
			return notFoundOr(err, "offer")
		}
		if _, err := o.Status.Apply(model.OfferEventSaveDraft); err != nil {
			return newTransitionError(err)
		}

		lines, err := r.OfferLines().ListByOfferID(ctx, offerID)
		if err != nil {
			return err
		}
		changed, vs := validator.ValidateOfferDraft(lines, inputs)
		if !vs.Empty() {
			return newValidationError(vs)
		}
		for _, l := range changed {
			if err := r.OfferLines().UpdateConfirmed(ctx, l); err != nil {
				return err
			}
		}

		lines, err = r.OfferLines().ListByOfferID(ctx, offerID)
		if err != nil {
			return err
		}
		out = OfferOutput{Offer: o, Lines: lines}
		return nil
	})
	if err != nil {
		return OfferOutput{}, txError(u.log, "offer.save_draft", err)
	}
	return out, nil
}

// Send は全明細の回答と open → applied を1つのトランザクションで書く。
func (u *OfferUsecase) Send(ctx context.Context, actor model.Actor, offerID string, inputs []validator.OfferLineInput) (OfferOutput, error) {
	if !actor.IsSupplier() {
		return OfferOutput{}, NewHTTPError(http.StatusForbidden, "supplier only")
	}

	var out OfferOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Offers().FindByIDForUpdate(ctx, offerID)
		if err != nil {
			return notFoundOr(err, "offer")
		}
		next, err := o.Status.Apply(model.OfferEventSend)
		if err != nil {
			return newTransitionError(err)
		}

		lines, err := r.OfferLines().ListByOfferID(ctx, offerID)
		if err != nil {
			return err
		}
		merged, vs := validator.ValidateOfferSend(lines, inputs)
		if !vs.Empty() {
			return newValidationError(vs)
		}
		for _, l := range merged {
			if err := r.OfferLines().UpdateConfirmed(ctx, l); err != nil {
				return err
			}
		}
		if err := r.Offers().UpdateStatus(ctx, offerID, next); err != nil {
			return err
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionSendOffer,
			ResourceType: model.AuditResourceOffer,
			ResourceID:   offerID,
			BeforeJSON:   statusJSON(string(o.Status)),
			AfterJSON:    statusJSON(string(next)),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return err
		}

		o.Status = next
		out = OfferOutput{Offer: o, Lines: merged}
		return nil
	})
	if err != nil {
		return OfferOutput{}, txError(u.log, "offer.send", err)
	}

	u.log.Info("offer sent", zap.String("offer_id", offerID), zap.String("supplier_id", actor.SupplierID))
	notify(ctx, u.log, u.notifier, model.Notification{
		Kind:        model.NotificationOfferApplied,
		OfferID:     out.ID,
		OfferNumber: out.OfferNumber,
		SupplierID:  actor.SupplierID,
		OccurredAt:  u.clock.Now(),
	})
	return out, nil
}

// Review は applied の見積を採用/不採用にする。どちらも終端。
func (u *OfferUsecase) Review(ctx context.Context, actor model.Actor, offerID string, decision string) (model.Offer, error) {
	if !actor.IsAdmin() {
		return model.Offer{}, NewHTTPError(http.StatusForbidden, "admin only")
	}
	ev, ok := model.OfferReviewEvent(strings.TrimSpace(decision))
	if !ok {
		return model.Offer{}, newValidationError(validator.Violations{{
			Code:    validator.CodeValidation,
			Field:   "decision",
			Message: "decision must be accepted or rejected",
		}})
	}

	var out model.Offer
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Offers().FindByIDForUpdate(ctx, offerID)
		if err != nil {
			return notFoundOr(err, "offer")
		}
		next, err := o.Status.Apply(ev)
		if err != nil {
			return newTransitionError(err)
		}
		if err := r.Offers().UpdateStatus(ctx, offerID, next); err != nil {
			return err
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.UserID,
			Action:       model.AuditActionReviewOffer,
			ResourceType: model.AuditResourceOffer,
			ResourceID:   offerID,
			BeforeJSON:   statusJSON(string(o.Status)),
			AfterJSON:    statusJSON(string(next)),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return err
		}
		o.Status = next
		out = o
		return nil
	})
	if err != nil {
		return model.Offer{}, txError(u.log, "offer.review", err)
	}
	return out, nil
}

func statusJSON(status string) string {
	b, _ := json.Marshal(map[string]string{"status": status})
	return string(b)
}

// OF-1A2B3C4D のような採番
func newNumber(prefix string, idGen IDGenerator) string {
	id := strings.ReplaceAll(idGen.NewID(), "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(id))
}
