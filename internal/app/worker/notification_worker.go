package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ecommerce_api/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// QueueReader is the part of a redis client the worker needs.
type QueueReader interface {
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Mailer delivers a reset notification to the account owner.
type Mailer interface {
	SendPasswordReset(ctx context.Context, n model.PasswordResetNotification) error
}

// LogMailer stands in for a mail provider.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, n model.PasswordResetNotification) error {
	m.log.Info("password reset mail sent", zap.Int64("user_id", n.UserID), zap.Time("requested_at", n.RequestedAt))
	m.log.Debug("password reset mail body", zap.String("email", n.Email), zap.String("token", n.Token))
	return nil
}

type NotificationWorker struct {
	queue     QueueReader
	queueName string
	mailer    Mailer
	log       *zap.Logger

	pollTimeout  time.Duration
	retryBackoff time.Duration
}

func NewNotificationWorker(queue QueueReader, queueName string, mailer Mailer, log *zap.Logger) *NotificationWorker {
	return &NotificationWorker{
		queue:        queue,
		queueName:    queueName,
		mailer:       mailer,
		log:          log.With(zap.String("component", "notification_worker"), zap.String("queue", queueName)),
		pollTimeout:  5 * time.Second,
		retryBackoff: 5 * time.Second,
	}
}

// Start blocks until ctx is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.log.Info("notification worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("notification worker stopping")
			return
		default:
		}

		result, err := w.queue.BRPop(ctx, w.pollTimeout, w.queueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // poll timeout, nothing queued
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.log.Error("failed to BRPOP reset queue", zap.Error(err))
			w.sleep(ctx, w.retryBackoff)
			continue
		}

		// result is [queueName, value]
		if len(result) < 2 || result[1] == "" {
			w.log.Warn("BRPOP returned empty payload")
			continue
		}
		w.handle(ctx, result[1])
	}
}

func (w *NotificationWorker) handle(ctx context.Context, payload string) {
	var n model.PasswordResetNotification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		w.log.Error("dropping malformed reset notification", zap.Error(err))
		return
	}
	if err := w.mailer.SendPasswordReset(ctx, n); err != nil {
		w.log.Error("failed to deliver reset notification", zap.Int64("user_id", n.UserID), zap.Error(err))
	}
}

func (w *NotificationWorker) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
