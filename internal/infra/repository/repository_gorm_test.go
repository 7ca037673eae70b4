package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"portal/internal/domain/model"
	infraRepo "portal/internal/infra/repository"
	repo "portal/internal/repository"
	"portal/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seedApplication(t *testing.T, tm *infraRepo.TxManagerGorm, id string, status model.ApplicationStatus, verifiedAt *time.Time) {
	t.Helper()
	err := tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
		return r.Applications().Create(context.Background(), model.Application{
			ID: id, OrderNumber: "ORD-" + id, SupplierID: "sup-a", UserID: "u",
			Units: 10, Term: "2024-01-01", PriceEuros: decimal.NewFromInt(100),
			Status: status, VerifiedAt: verifiedAt, CreatedAt: t0, UpdatedAt: t0,
		})
	})
	require.NoError(t, err)
}

func TestTxManagerGorm_RollbackOnError(t *testing.T) {
	db := testutil.NewDB(t)
	tm := infraRepo.NewTxManagerGorm(db)
	ctx := context.Background()
	seedApplication(t, tm, "app-1", model.ApplicationStatusPending, nil)

	boom := errors.New("boom")
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Confirmations().CreateBulk(ctx, []model.OrderLineConfirmation{{
			ID: "c1", OrderLineID: "l1", ApplicationID: "app-1", ArticleCode: "A",
			ConfirmedUnits: decimal.NewFromInt(1), ConfirmedTerm: "t", ConfirmedPrice: decimal.NewFromInt(1),
			CreatedAt: t0, UpdatedAt: t0,
		}}); err != nil {
			return err
		}
		if err := r.Applications().UpdateStatus(ctx, "app-1", model.ApplicationStatusConfirmed, &t0); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&model.OrderLineConfirmation{}).Count(&count).Error)
	assert.Zero(t, count)

	var a model.Application
	require.NoError(t, db.Where("id = ?", "app-1").First(&a).Error)
	assert.Equal(t, model.ApplicationStatusPending, a.Status)
	assert.Nil(t, a.VerifiedAt)
}

func TestApplicationGorm_UpdateTermsClearsVerifiedAt(t *testing.T) {
	db := testutil.NewDB(t)
	tm := infraRepo.NewTxManagerGorm(db)
	ctx := context.Background()
	seedApplication(t, tm, "app-1", model.ApplicationStatusConfirmed, &t0)

	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Applications().UpdateTerms(ctx, "app-1", repo.ApplicationTermsUpdate{
			Units: 10, Term: "2024-01-01", PriceEuros: decimal.RequireFromString("120.00"),
			Status: model.ApplicationStatusPending, VerifiedAt: nil,
		})
	})
	require.NoError(t, err)

	a := findApplication(t, tm, "app-1")
	assert.Equal(t, model.ApplicationStatusPending, a.Status)
	assert.Nil(t, a.VerifiedAt)
	assert.True(t, a.PriceEuros.Equal(decimal.NewFromInt(120)))
	assert.NoError(t, a.CheckVerifiedInvariant())

	err = tm.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Applications().UpdateTerms(ctx, "missing", repo.ApplicationTermsUpdate{Status: model.ApplicationStatusPending})
	})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestApplicationGorm_FindByIDForUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	tm := infraRepo.NewTxManagerGorm(db)
	ctx := context.Background()
	seedApplication(t, tm, "app-1", model.ApplicationStatusPending, nil)

	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		a, err := r.Applications().FindByIDForUpdate(ctx, "app-1")
		require.NoError(t, err)
		assert.Equal(t, "ORD-app-1", a.OrderNumber)

		_, err = r.Applications().FindByIDForUpdate(ctx, "nope")
		assert.ErrorIs(t, err, repo.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestConfirmationGorm_DeleteScopedToApplication(t *testing.T) {
	db := testutil.NewDB(t)
	tm := infraRepo.NewTxManagerGorm(db)
	ctx := context.Background()

	rows := []model.OrderLineConfirmation{
		{ID: "c1", OrderLineID: "l1", ApplicationID: "app-1", ArticleCode: "A", ConfirmedUnits: decimal.NewFromInt(1),
			ConfirmedTerm: "t", ConfirmedPrice: decimal.NewFromInt(1), CreatedAt: t0, UpdatedAt: t0},
		{ID: "c2", OrderLineID: "l2", ApplicationID: "app-2", ArticleCode: "A", ConfirmedUnits: decimal.NewFromInt(1),
			ConfirmedTerm: "t", ConfirmedPrice: decimal.NewFromInt(1), CreatedAt: t0, UpdatedAt: t0},
	}
	require.NoError(t, tm.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Confirmations().CreateBulk(ctx, rows)
	}))

	//他の注文の行を指定したら全体が失敗する
	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Confirmations().DeleteByIDs(ctx, "app-1", []string{"c1", "c2"})
	})
	assert.ErrorIs(t, err, repo.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&model.OrderLineConfirmation{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	require.NoError(t, tm.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Confirmations().DeleteByIDs(ctx, "app-1", []string{"c1"})
	}))
	require.NoError(t, db.Model(&model.OrderLineConfirmation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOfferLineGorm_UpdateConfirmedKeepsRequest(t *testing.T) {
	db := testutil.NewDB(t)
	tm := infraRepo.NewTxManagerGorm(db)
	ctx := context.Background()

	require.NoError(t, tm.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Offers().Create(ctx, model.Offer{
			ID: "o1", OfferNumber: "OF-1", MinimumUnits: 1, Status: model.OfferStatusOpen, CreatedAt: t0, UpdatedAt: t0,
		}); err != nil {
			return err
		}
		return r.OfferLines().CreateBulk(ctx, "o1", []model.OfferLine{{
			ID: "ol1", MaterialCode: "M", RequestedUnits: decimal.NewFromInt(100), CreatedAt: t0, UpdatedAt: t0,
		}})
	}))

	term := "2024-09-01"
	require.NoError(t, tm.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.OfferLines().UpdateConfirmed(ctx, model.OfferLine{
			ID: "ol1", OfferID: "o1",
			RequestedUnits: decimal.NewFromInt(1),
			ConfirmedUnits: decimal.NewNullDecimal(decimal.NewFromInt(100)),
			ConfirmedPrice: decimal.NewNullDecimal(decimal.RequireFromString("2.5")),
			ConfirmedTerm:  &term,
		})
	}))

	var lines []model.OfferLine
	require.NoError(t, tm.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		lines, err = r.OfferLines().ListByOfferID(ctx, "o1")
		return err
	}))
	require.Len(t, lines, 1)
	assert.Equal(t, "o1", lines[0].OfferID)
	assert.True(t, lines[0].RequestedUnits.Equal(decimal.NewFromInt(100)))
	assert.True(t, lines[0].HasProposal())
	assert.Equal(t, term, *lines[0].ConfirmedTerm)
}

func TestAuditLogGorm_List(t *testing.T) {
	db := testutil.NewDB(t)
	audit := infraRepo.NewAuditLogGormRepository(db)
	ctx := context.Background()

	for _, action := range []model.AuditAction{model.AuditActionVerifyApplication, model.AuditActionDemoteApplication} {
		require.NoError(t, audit.Create(ctx, model.AuditLog{
			ActorUserID: "u", Action: action, ResourceType: model.AuditResourceApplication,
			ResourceID: "app-1", BeforeJSON: "{}", AfterJSON: "{}", CreatedAt: t0,
		}))
	}

	action := model.AuditActionDemoteApplication
	logs, err := audit.List(ctx, repo.AuditLogFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	resource := "app-1"
	logs, err = audit.List(ctx, repo.AuditLogFilter{ResourceID: &resource})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	//新しい順
	assert.Equal(t, model.AuditActionDemoteApplication, logs[0].Action)
}

func findApplication(t *testing.T, tm *infraRepo.TxManagerGorm, id string) model.Application {
	t.Helper()
	var a model.Application
	require.NoError(t, tm.WithinTx(context.Background(), func(r repo.TxRepos) error {
		var err error
		a, err = r.Applications().FindByID(context.Background(), id)
		return err
	}))
	return a
}

func TestApplicationGorm_CreateDuplicateOrderNumber(t *testing.T) {
	db := testutil.NewDB(t)
	tm := infraRepo.NewTxManagerGorm(db)
	ctx := context.Background()
	seedApplication(t, tm, "app-1", model.ApplicationStatusPending, nil)

	err := tm.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Applications().Create(ctx, model.Application{
			ID: "app-2", OrderNumber: "ORD-app-1", SupplierID: "sup-a", UserID: "u",
			Units: 1, Term: "t", PriceEuros: decimal.NewFromInt(1),
			Status: model.ApplicationStatusPending, CreatedAt: t0, UpdatedAt: t0,
		})
	})
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	var count int64
	require.NoError(t, db.Model(&model.Application{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
