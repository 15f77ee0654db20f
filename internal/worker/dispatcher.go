package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/edu_referral_server/internal/pkg/email"
	"github.com/qs3c/edu_referral_server/internal/pkg/metrics"
	"github.com/qs3c/edu_referral_server/internal/pkg/queue"
)

// ErrInvalidNotification 通知内容不完整，重试无意义
var ErrInvalidNotification = errors.New("invalid notification")

// Source 通知队列
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.Notification, error)
	Push(ctx context.Context, msg *queue.Notification) error
	PushDeadLetter(ctx context.Context, msg *queue.Notification) error
}

// Dispatcher 从队列取出推荐码通知并发送邮件
type Dispatcher struct {
	source      Source
	sender      email.Sender
	popTimeout  time.Duration
	maxAttempts int
	log         *zap.Logger
}

// NewDispatcher 创建通知分发器，发送失败的通知最多尝试 maxAttempts 次
func NewDispatcher(source Source, sender email.Sender, popTimeout time.Duration, maxAttempts int, log *zap.Logger) *Dispatcher {
	if popTimeout <= 0 {
		popTimeout = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Dispatcher{
		source:      source,
		sender:      sender,
		popTimeout:  popTimeout,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// Process 发送单条通知
func (d *Dispatcher) Process(ctx context.Context, msg *queue.Notification) error {
	switch msg.Kind {
	case queue.KindReferralCodeIssued, queue.KindReferralCodeRegenerated:
	default:
		metrics.ObserveNotification(msg.Kind, "skipped")
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidNotification, msg.Kind)
	}

	if msg.Email == "" || msg.ReferralCode == "" {
		metrics.ObserveNotification(msg.Kind, "skipped")
		return fmt.Errorf("%w: agent %d is missing email or code", ErrInvalidNotification, msg.AgentID)
	}

	if err := d.sender.SendReferralCode(msg.Email, msg.AgentName, msg.ReferralCode, msg.EmailDomain); err != nil {
		metrics.ObserveNotification(msg.Kind, "failed")
		return fmt.Errorf("failed to send referral code email: %w", err)
	}

	metrics.ObserveNotification(msg.Kind, "sent")
	return nil
}

// Run 循环消费队列直到 ctx 取消
func (d *Dispatcher) Run(ctx context.Context, workerID int) {
	log := d.log.With(zap.Int("worker", workerID))

	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			return
		default:
		}

		msg, err := d.source.Pop(ctx, d.popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("failed to pop notification", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		// 超时，继续等待
		if msg == nil {
			continue
		}

		if err := d.Process(ctx, msg); err != nil {
			d.handleFailure(ctx, log, msg, err)
			continue
		}

		log.Info("notification sent",
			zap.String("kind", msg.Kind),
			zap.Int64("agent_id", msg.AgentID))
	}
}

// handleFailure 发送失败时重新入队，超过次数或内容无效时转入死信队列
func (d *Dispatcher) handleFailure(ctx context.Context, log *zap.Logger, msg *queue.Notification, cause error) {
	msg.Attempts++
	msg.LastError = cause.Error()

	fields := []zap.Field{
		zap.String("kind", msg.Kind),
		zap.Int64("agent_id", msg.AgentID),
		zap.Int("attempts", msg.Attempts),
		zap.Error(cause),
	}

	if !errors.Is(cause, ErrInvalidNotification) && msg.Attempts < d.maxAttempts {
		err := d.source.Push(ctx, msg)
		if err == nil {
			log.Warn("notification failed, requeued", fields...)
			return
		}
		log.Error("failed to requeue notification", zap.Error(err))
	}

	if err := d.source.PushDeadLetter(ctx, msg); err != nil {
		log.Error("notification lost, dead letter write failed", append(fields, zap.NamedError("dead_letter_error", err))...)
		return
	}
	log.Error("notification moved to dead letter queue", fields...)
}
