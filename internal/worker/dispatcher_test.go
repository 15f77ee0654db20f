package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qs3c/edu_referral_server/internal/pkg/queue"
)

type sentMail struct {
	to, agentName, code, domain string
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []sentMail
	err   error
	calls int
}

func (f *fakeSender) SendReferralCode(to, agentName, code, domain string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, agentName: agentName, code: code, domain: domain})
	return nil
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func setupQueue(t *testing.T) (*queue.Queue, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cleanup := func() {
		rdb.Close()
		mr.Close()
	}
	return queue.NewQueue(rdb, "test_notifications"), cleanup
}

func TestNewDispatcher_DefaultTimeout(t *testing.T) {
	d := NewDispatcher(nil, &fakeSender{}, 0, 0, zap.NewNop())
	assert.Equal(t, 5*time.Second, d.popTimeout)
	assert.Equal(t, 3, d.maxAttempts)
}

func TestDispatcher_Process(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(nil, sender, time.Second, 3, zap.NewNop())
	ctx := context.Background()

	err := d.Process(ctx, &queue.Notification{
		Kind:         queue.KindReferralCodeIssued,
		AgentID:      1,
		AgentName:    "Cornell",
		Email:        "office@cornell.edu",
		ReferralCode: "COR-ABCDEF",
		EmailDomain:  "cornell.edu",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, sentMail{to: "office@cornell.edu", agentName: "Cornell", code: "COR-ABCDEF", domain: "cornell.edu"}, sender.sent[0])
}

func TestDispatcher_Process_Rejects(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(nil, sender, time.Second, 3, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name string
		msg  *queue.Notification
	}{
		{
			name: "unknown kind",
			msg:  &queue.Notification{Kind: "birthday", Email: "a@b.edu", ReferralCode: "ABC-123456"},
		},
		{
			name: "missing email",
			msg:  &queue.Notification{Kind: queue.KindReferralCodeRegenerated, ReferralCode: "ABC-123456"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, d.Process(ctx, tt.msg))
		})
	}
	assert.Empty(t, sender.sent)
}

func TestDispatcher_Process_SendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp unavailable")}
	d := NewDispatcher(nil, sender, time.Second, 3, zap.NewNop())

	err := d.Process(context.Background(), &queue.Notification{
		Kind:         queue.KindReferralCodeIssued,
		Email:        "office@cornell.edu",
		ReferralCode: "COR-ABCDEF",
	})
	assert.Error(t, err)
}

func TestDispatcher_Run(t *testing.T) {
	q, cleanup := setupQueue(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, code := range []string{"DUK-000001", "DUK-000002"} {
		require.NoError(t, q.Push(ctx, &queue.Notification{
			Kind:         queue.KindReferralCodeRegenerated,
			AgentID:      7,
			AgentName:    "Duke",
			Email:        "office@duke.edu",
			ReferralCode: code,
			EmailDomain:  "duke.edu",
		}))
	}

	sender := &fakeSender{}
	d := NewDispatcher(q, sender, 100*time.Millisecond, 3, zap.NewNop())

	done := make(chan struct{})
	go func() {
		d.Run(ctx, 1)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sender.count() == 2 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("dispatcher did not stop after cancel")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, "DUK-000001", sender.sent[0].code)
	assert.Equal(t, "DUK-000002", sender.sent[1].code)
}

func runDispatcher(t *testing.T, d *Dispatcher) (context.CancelFunc, <-chan struct{}) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx, 1)
		close(done)
	}()
	return cancel, done
}

func TestDispatcher_Run_RetriesThenDeadLetters(t *testing.T) {
	q, cleanup := setupQueue(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, q.Push(ctx, &queue.Notification{
		Kind:         queue.KindReferralCodeIssued,
		AgentID:      9,
		Email:        "office@yale.edu",
		ReferralCode: "YAL-ABCDEF",
	}))

	sender := &fakeSender{err: errors.New("smtp unavailable")}
	d := NewDispatcher(q, sender, 100*time.Millisecond, 3, zap.NewNop())
	cancel, done := runDispatcher(t, d)

	assert.Eventually(t, func() bool {
		dead, err := q.DeadLetters(ctx)
		return err == nil && len(dead) == 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, 3, sender.callCount())

	dead, err := q.DeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, int64(9), dead[0].AgentID)
	assert.Equal(t, 3, dead[0].Attempts)
	assert.Contains(t, dead[0].LastError, "smtp unavailable")

	n, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestDispatcher_Run_RecoversOnRetry(t *testing.T) {
	q, cleanup := setupQueue(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, q.Push(ctx, &queue.Notification{
		Kind:         queue.KindReferralCodeRegenerated,
		AgentID:      4,
		Email:        "office@mit.edu",
		ReferralCode: "MIT-ABCDEF",
	}))

	sender := &flakySender{fakeSender: &fakeSender{}, failures: 1}
	d := NewDispatcher(q, sender, 100*time.Millisecond, 3, zap.NewNop())
	cancel, done := runDispatcher(t, d)

	assert.Eventually(t, func() bool { return sender.count() == 1 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	<-done

	dead, err := q.DeadLetters(ctx)
	require.NoError(t, err)
	assert.Empty(t, dead)
}

func TestDispatcher_Run_InvalidGoesStraightToDeadLetter(t *testing.T) {
	q, cleanup := setupQueue(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, q.Push(ctx, &queue.Notification{Kind: "birthday", AgentID: 5}))

	sender := &fakeSender{}
	d := NewDispatcher(q, sender, 100*time.Millisecond, 3, zap.NewNop())
	cancel, done := runDispatcher(t, d)

	assert.Eventually(t, func() bool {
		dead, err := q.DeadLetters(ctx)
		return err == nil && len(dead) == 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	<-done

	dead, err := q.DeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, 1, dead[0].Attempts)
	assert.Equal(t, 0, sender.callCount())
}

// flakySender 前 failures 次发送失败
type flakySender struct {
	*fakeSender
	failures int
}

func (f *flakySender) SendReferralCode(to, agentName, code, domain string) error {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.calls++
		f.mu.Unlock()
		return errors.New("temporary failure")
	}
	f.mu.Unlock()
	return f.fakeSender.SendReferralCode(to, agentName, code, domain)
}
