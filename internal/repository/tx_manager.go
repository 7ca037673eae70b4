package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Offers() OfferRepository
	OfferLines() OfferLineRepository
	Applications() ApplicationRepository
	OrderLines() OrderLineRepository
	Confirmations() ConfirmationRepository
	Snapshots() SnapshotRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fn がエラーを返したら全部ロールバックする。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
