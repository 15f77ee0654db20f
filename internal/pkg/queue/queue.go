package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	KindReferralCodeIssued      = "referral_code_issued"
	KindReferralCodeRegenerated = "referral_code_regenerated"
)

type Queue struct {
	client    *redis.Client
	queueName string
}

// Notification 待发送给代理的邮件通知
type Notification struct {
	Kind         string    `json:"kind"`
	AgentID      int64     `json:"agent_id"`
	AgentName    string    `json:"agent_name"`
	Email        string    `json:"email"`
	ReferralCode string    `json:"referral_code"`
	EmailDomain  string    `json:"email_domain"`
	Attempts     int       `json:"attempts,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push 将通知加入队列
func (q *Queue) Push(ctx context.Context, msg *Notification) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取通知（阻塞），超时返回 nil, nil
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*Notification, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg Notification
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}

// DeadLetterName 死信队列名
func (q *Queue) DeadLetterName() string {
	return q.queueName + ":dead"
}

// PushDeadLetter 放弃重试的通知写入死信队列，保留以便人工重发
func (q *Queue) PushDeadLetter(ctx context.Context, msg *Notification) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.DeadLetterName(), data).Err()
}

// DeadLetters 列出死信队列中的通知，最早的在前
func (q *Queue) DeadLetters(ctx context.Context) ([]*Notification, error) {
	raw, err := q.client.LRange(ctx, q.DeadLetterName(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	msgs := make([]*Notification, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg Notification
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}
