package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"portal/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 通知を JSON にして Redis の channel へ PUBLISH する。
// メール送信などは購読側のワーカーが行う。
type RedisNotifier struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisNotifier(client *redis.Client, channel string, log *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel, log: log.Named("notify")}
}

func (n *RedisNotifier) Notify(ctx context.Context, msg model.Notification) error {
	payload, err := Encode(msg)
	if err != nil {
		return err
	}
	receivers, err := n.client.Publish(ctx, n.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.Kind, err)
	}
	n.log.Debug("notification published",
		zap.String("kind", string(msg.Kind)),
		zap.String("channel", n.channel),
		zap.Int64("receivers", receivers),
	)
	return nil
}

func Encode(msg model.Notification) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return b, nil
}

// Redis を設定していない環境用
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, model.Notification) error { return nil }
