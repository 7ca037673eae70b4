package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"portal/internal/domain/model"
	"portal/internal/usecase"
	"portal/internal/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 100個×1明細の見積依頼
func (e *env) createOffer(t *testing.T) usecase.OfferOutput {
	t.Helper()
	out, err := e.offers.Create(context.Background(), admin, usecase.CreateOfferInput{
		Description:  "steel brackets",
		MinimumUnits: 10,
		Lines: []validator.OfferRequestLine{
			{MaterialCode: "M-100", MaterialDescription: "bracket", RequestedUnits: "100", ReferencePrice: "2.40"},
		},
	})
	require.NoError(t, err)
	return out
}

func (e *env) storedOffer(t *testing.T, id string) (model.Offer, []model.OfferLine) {
	t.Helper()
	var o model.Offer
	require.NoError(t, e.db.Where("id = ?", id).First(&o).Error)
	var lines []model.OfferLine
	require.NoError(t, e.db.Where("offer_id = ?", id).Order("id").Find(&lines).Error)
	return o, lines
}

func TestOfferUsecase_Create(t *testing.T) {
	e := newEnv(t)

	out := e.createOffer(t)
	assert.Equal(t, model.OfferStatusOpen, out.Status)
	assert.NotEmpty(t, out.OfferNumber)
	require.Len(t, out.Lines, 1)

	_, err := e.offers.Create(context.Background(), supplierA, usecase.CreateOfferInput{})
	requireHTTPError(t, err, http.StatusForbidden, usecase.CodeForbidden)

	_, err = e.offers.Create(context.Background(), admin, usecase.CreateOfferInput{MinimumUnits: 1})
	vs := requireValidation(t, err)
	assert.Equal(t, "lines", vs[0].Field)
}

func TestOfferUsecase_Create_DuplicateOfferNumber(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	in := usecase.CreateOfferInput{
		OfferNumber:  "OF-2024-001",
		MinimumUnits: 1,
		Lines:        []validator.OfferRequestLine{{MaterialCode: "M-1", RequestedUnits: "1"}},
	}

	_, err := e.offers.Create(ctx, admin, in)
	require.NoError(t, err)

	_, err = e.offers.Create(ctx, admin, in)
	vs := requireValidation(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "offer_number", vs[0].Field)

	var count int64
	require.NoError(t, e.db.Model(&model.OfferLine{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOfferUsecase_SendScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	offer := e.createOffer(t)
	lineID := offer.Lines[0].ID

	_, err := e.offers.SaveDraft(ctx, supplierA, offer.ID, []validator.OfferLineInput{
		{LineID: lineID, ConfirmedUnits: "100", ConfirmedPrice: "2.50"},
	})
	require.NoError(t, err)

	o, lines := e.storedOffer(t, offer.ID)
	assert.Equal(t, model.OfferStatusOpen, o.Status)
	assert.True(t, lines[0].HasProposal())

	sent, err := e.offers.Send(ctx, supplierA, offer.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusApplied, sent.Status)

	o, lines = e.storedOffer(t, offer.ID)
	assert.Equal(t, model.OfferStatusApplied, o.Status)
	assert.True(t, lines[0].ConfirmedUnits.Decimal.Equal(decimal.NewFromInt(100)))
	assert.True(t, lines[0].ConfirmedPrice.Decimal.Equal(decimal.RequireFromString("2.50")))
	assert.Equal(t, []model.AuditAction{model.AuditActionSendOffer}, e.auditActions(t, offer.ID))
	assert.Contains(t, e.notifier.kinds(), model.NotificationOfferApplied)

	//applied になった見積は再送信も下書き保存もできない
	_, err = e.offers.Send(ctx, supplierB, offer.ID, []validator.OfferLineInput{
		{LineID: lineID, ConfirmedUnits: "90", ConfirmedPrice: "2.00"},
	})
	requireHTTPError(t, err, http.StatusConflict, usecase.CodeInvalidTransition)

	_, err = e.offers.SaveDraft(ctx, supplierB, offer.ID, []validator.OfferLineInput{
		{LineID: lineID, ConfirmedUnits: "90"},
	})
	requireHTTPError(t, err, http.StatusConflict, usecase.CodeInvalidTransition)

	_, lines = e.storedOffer(t, offer.ID)
	assert.True(t, lines[0].ConfirmedUnits.Decimal.Equal(decimal.NewFromInt(100)))
}

func TestOfferUsecase_Send_IncompleteLinesWriteNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	offer, err := e.offers.Create(ctx, admin, usecase.CreateOfferInput{
		MinimumUnits: 1,
		Lines: []validator.OfferRequestLine{
			{MaterialCode: "M-1", RequestedUnits: "10"},
			{MaterialCode: "M-2", RequestedUnits: "20"},
		},
	})
	require.NoError(t, err)

	_, err = e.offers.Send(ctx, supplierA, offer.ID, []validator.OfferLineInput{
		{LineID: offer.Lines[0].ID, ConfirmedUnits: "10", ConfirmedPrice: "1"},
		{LineID: offer.Lines[1].ID, ConfirmedUnits: "20"},
	})
	vs := requireValidation(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "confirmed_price", vs[0].Field)

	o, lines := e.storedOffer(t, offer.ID)
	assert.Equal(t, model.OfferStatusOpen, o.Status)
	for _, l := range lines {
		assert.False(t, l.ConfirmedUnits.Valid, l.MaterialCode)
	}
	assert.Empty(t, e.notifier.kinds())
}

func TestOfferUsecase_Send_UnknownLine(t *testing.T) {
	e := newEnv(t)
	offer := e.createOffer(t)

	_, err := e.offers.Send(context.Background(), supplierA, offer.ID, []validator.OfferLineInput{
		{LineID: "elsewhere", ConfirmedUnits: "1", ConfirmedPrice: "1"},
	})
	vs := requireValidation(t, err)
	assert.True(t, vs.Has(validator.CodeUnknownArticle))
}

func TestOfferUsecase_Review(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	offer := e.createOffer(t)

	//open のままでは審査できない
	_, err := e.offers.Review(ctx, admin, offer.ID, "accepted")
	requireHTTPError(t, err, http.StatusConflict, usecase.CodeInvalidTransition)

	_, err = e.offers.Send(ctx, supplierA, offer.ID, []validator.OfferLineInput{
		{LineID: offer.Lines[0].ID, ConfirmedUnits: "100", ConfirmedPrice: "2.5"},
	})
	require.NoError(t, err)

	_, err = e.offers.Review(ctx, admin, offer.ID, "maybe")
	requireValidation(t, err)

	_, err = e.offers.Review(ctx, supplierA, offer.ID, "accepted")
	requireHTTPError(t, err, http.StatusForbidden, usecase.CodeForbidden)

	got, err := e.offers.Review(ctx, admin, offer.ID, "rejected")
	require.NoError(t, err)
	assert.Equal(t, model.OfferStatusRejected, got.Status)

	//終端からは動かない
	_, err = e.offers.Review(ctx, admin, offer.ID, "accepted")
	requireHTTPError(t, err, http.StatusConflict, usecase.CodeInvalidTransition)

	_, err = e.apps.Apply(ctx, supplierA, offer.ID, validator.TermsInput{Units: "1", Term: "t", Price: "1"})
	requireHTTPError(t, err, http.StatusConflict, usecase.CodeInvalidTransition)

	assert.Equal(t,
		[]model.AuditAction{model.AuditActionSendOffer, model.AuditActionReviewOffer},
		e.auditActions(t, offer.ID))
}

// 審査後の見積には回答の保存も送信もできない
func TestOfferUsecase_ReviewedOfferIsFrozen(t *testing.T) {
	for _, decision := range []string{"accepted", "rejected"} {
		t.Run(decision, func(t *testing.T) {
			e := newEnv(t)
			ctx := context.Background()
			offer := e.createOffer(t)
			lineID := offer.Lines[0].ID

			_, err := e.offers.Send(ctx, supplierA, offer.ID, []validator.OfferLineInput{
				{LineID: lineID, ConfirmedUnits: "100", ConfirmedPrice: "2.5"},
			})
			require.NoError(t, err)
			_, err = e.offers.Review(ctx, admin, offer.ID, decision)
			require.NoError(t, err)

			_, err = e.offers.SaveDraft(ctx, supplierA, offer.ID, []validator.OfferLineInput{
				{LineID: lineID, ConfirmedUnits: "90", ConfirmedPrice: "2.0"},
			})
			requireHTTPError(t, err, http.StatusConflict, usecase.CodeInvalidTransition)

			_, err = e.offers.Send(ctx, supplierA, offer.ID, []validator.OfferLineInput{
				{LineID: lineID, ConfirmedUnits: "90", ConfirmedPrice: "2.0"},
			})
			requireHTTPError(t, err, http.StatusConflict, usecase.CodeInvalidTransition)

			o, lines := e.storedOffer(t, offer.ID)
			assert.Equal(t, model.OfferStatus(decision), o.Status)
			require.Len(t, lines, 1)
			assert.True(t, lines[0].ConfirmedUnits.Decimal.Equal(decimal.NewFromInt(100)))
		})
	}
}

func TestOfferUsecase_Get(t *testing.T) {
	e := newEnv(t)
	offer := e.createOffer(t)

	got, err := e.offers.Get(context.Background(), supplierB, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, offer.OfferNumber, got.OfferNumber)
	assert.Len(t, got.Lines, 1)

	_, err = e.offers.Get(context.Background(), supplierB, "missing")
	requireHTTPError(t, err, http.StatusNotFound, usecase.CodeNotFound)

	_, err = e.offers.Get(context.Background(), model.Actor{}, offer.ID)
	requireHTTPError(t, err, http.StatusUnauthorized, usecase.CodeUnauthorized)
}
