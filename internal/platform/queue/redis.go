package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ecommerce_api/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ConnectRedis returns a client that has answered a ping.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis: %w", err)
	}
	return rdb, nil
}

// RedisResetQueue pushes reset notifications onto a list consumed by
// worker.NotificationWorker.
type RedisResetQueue struct {
	rdb       redis.Cmdable
	queueName string
}

func NewRedisResetQueue(rdb redis.Cmdable, queueName string) *RedisResetQueue {
	return &RedisResetQueue{rdb: rdb, queueName: queueName}
}

func (q *RedisResetQueue) NotifyPasswordReset(ctx context.Context, n model.PasswordResetNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("RedisResetQueue.NotifyPasswordReset marshal: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.queueName, payload).Err(); err != nil {
		return fmt.Errorf("RedisResetQueue.NotifyPasswordReset LPUSH %s: %w", q.queueName, err)
	}
	return nil
}

// LogResetNotifier is used when no queue is configured. The token is only
// written at debug level.
type LogResetNotifier struct {
	log *zap.Logger
}

func NewLogResetNotifier(log *zap.Logger) *LogResetNotifier {
	return &LogResetNotifier{log: log}
}

func (n *LogResetNotifier) NotifyPasswordReset(ctx context.Context, msg model.PasswordResetNotification) error {
	n.log.Info("password reset requested", zap.Int64("user_id", msg.UserID))
	n.log.Debug("password reset token issued", zap.String("email", msg.Email), zap.String("token", msg.Token))
	return nil
}
