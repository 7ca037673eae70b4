package usecase

import (
	"context"
	"time"

	"portal/internal/domain/model"

	"go.uber.org/zap"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// コミット後の通知先（メール送信などは購読側で行う）
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

const notifyTimeout = 5 * time.Second

// notify はコミット済みの状態遷移を外へ知らせる。
// リクエストのキャンセルとは切り離し、失敗はログに残して捨てる。
func notify(ctx context.Context, log *zap.Logger, n Notifier, msg model.Notification) {
	if n == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := n.Notify(nctx, msg); err != nil {
		log.Warn("notification failed",
			zap.String("kind", string(msg.Kind)),
			zap.String("offer_id", msg.OfferID),
			zap.String("application_id", msg.ApplicationID),
			zap.Error(err),
		)
	}
}
