package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"portal/internal/domain/model"
	infraRepo "portal/internal/infra/repository"
	repo "portal/internal/repository"
	"portal/internal/testutil"
	"portal/internal/usecase"
	"portal/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id%06d", g.n)
}

type recordingNotifier struct {
	mu  sync.Mutex
	got []model.Notification
	err error
}

func (n *recordingNotifier) Notify(ctx context.Context, msg model.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, msg)
	return n.err
}

func (n *recordingNotifier) kinds() []model.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.NotificationKind, 0, len(n.got))
	for _, m := range n.got {
		out = append(out, m.Kind)
	}
	return out
}

var (
	admin     = model.Actor{UserID: "admin-1", Role: model.RoleAdmin}
	supplierA = model.Actor{UserID: "user-a", Role: model.RoleSupplier, SupplierID: "sup-a"}
	supplierB = model.Actor{UserID: "user-b", Role: model.RoleSupplier, SupplierID: "sup-b"}
)

type env struct {
	db       *gorm.DB
	tx       repo.TransactionManager
	clock    *fixedClock
	notifier *recordingNotifier
	offers   *usecase.OfferUsecase
	apps     *usecase.ApplicationUsecase
	confs    *usecase.ConfirmationUsecase
}

func newEnv(t *testing.T) *env {
	return newEnvWith(t, zap.NewNop(), nil)
}

// wrap が nil でなければ TxManager を差し替える（障害注入用）
func newEnvWith(t *testing.T, log *zap.Logger, wrap func(repo.TransactionManager) repo.TransactionManager) *env {
	t.Helper()

	gdb := testutil.NewDB(t)
	var txm repo.TransactionManager = infraRepo.NewTxManagerGorm(gdb)
	if wrap != nil {
		txm = wrap(txm)
	}
	clock := &fixedClock{now: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)}
	ids := &seqIDs{}
	n := &recordingNotifier{}

	return &env{
		db:       gdb,
		tx:       txm,
		clock:    clock,
		notifier: n,
		offers:   usecase.NewOfferUsecase(txm, n, ids, clock, log),
		apps:     usecase.NewApplicationUsecase(txm, n, ids, clock, log),
		confs:    usecase.NewConfirmationUsecase(txm, ids, clock, log),
	}
}

// ABC-1 を50個依頼する注文を sup-a 宛てに作る
func (e *env) orderABC(t *testing.T) usecase.ApplicationDetail {
	t.Helper()
	out, err := e.apps.CreateOrder(context.Background(), admin, usecase.CreateOrderInput{
		SupplierID: supplierA.SupplierID,
		Terms:      validator.TermsInput{Units: "50", Term: "2024-01-01", Price: "100.00"},
		Lines: []validator.OrderRequestLine{
			{ArticleCode: "ABC-1", Description: "bracket", RequestedUnits: "50", RequestedTerm: "2024-01-01", RequestedPrice: "5.0"},
		},
	})
	require.NoError(t, err)
	return out
}

func (e *env) storedApplication(t *testing.T, id string) model.Application {
	t.Helper()
	var a model.Application
	require.NoError(t, e.db.Where("id = ?", id).First(&a).Error)
	return a
}

func (e *env) storedConfirmations(t *testing.T, appID string) []model.OrderLineConfirmation {
	t.Helper()
	var rows []model.OrderLineConfirmation
	require.NoError(t, e.db.Where("application_id = ?", appID).Order("created_at, id").Find(&rows).Error)
	return rows
}

func (e *env) auditActions(t *testing.T, resourceID string) []model.AuditAction {
	t.Helper()
	var logs []model.AuditLog
	require.NoError(t, e.db.Where("resource_id = ?", resourceID).Order("id").Find(&logs).Error)
	out := make([]model.AuditAction, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

func requireHTTPError(t *testing.T, err error, status int, code string) *usecase.HTTPError {
	t.Helper()
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "not an HTTPError: %v", err)
	assert.Equal(t, status, he.Status, he.Message)
	assert.Equal(t, code, he.Code)
	return he
}

func requireValidation(t *testing.T, err error) validator.Violations {
	t.Helper()
	return requireHTTPError(t, err, http.StatusUnprocessableEntity, usecase.CodeValidation).Details
}

// =====================
// TxManager mock（トランザクション開始自体の失敗）
// =====================

type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Repos)
}

// =====================
// 途中で失敗する repos（ロールバック確認用）
// =====================

var errDiskFull = errors.New("disk full")

type faultyTx struct {
	inner repo.TransactionManager
}

func (f faultyTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return f.inner.WithinTx(ctx, func(r repo.TxRepos) error {
		return fn(faultyRepos{TxRepos: r})
	})
}

type faultyRepos struct {
	repo.TxRepos
}

func (r faultyRepos) Confirmations() repo.ConfirmationRepository {
	return faultyConfirmations{ConfirmationRepository: r.TxRepos.Confirmations()}
}

func (r faultyRepos) Snapshots() repo.SnapshotRepository {
	return faultySnapshots{SnapshotRepository: r.TxRepos.Snapshots()}
}

type faultyConfirmations struct {
	repo.ConfirmationRepository
}

func (faultyConfirmations) CreateBulk(ctx context.Context, rows []model.OrderLineConfirmation) error {
	if len(rows) == 0 {
		return nil
	}
	return errDiskFull
}

type faultySnapshots struct {
	repo.SnapshotRepository
}

func (faultySnapshots) Create(ctx context.Context, s model.ConfirmationSnapshot) error {
	return errDiskFull
}
