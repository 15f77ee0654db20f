package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/internal/model"
	"github.com/qs3c/edu_referral_server/internal/repository"
	"github.com/qs3c/edu_referral_server/internal/service"
	"github.com/qs3c/edu_referral_server/internal/testutil"
)

func setupCronService(t *testing.T) (*Service, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)

	reconciler := service.NewReconcileService(
		repository.NewAgentRepository(db),
		repository.NewUserRepository(db),
		zap.NewNop(),
	)
	cronService := NewService(reconciler, zap.NewNop())

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return cronService, db, cleanup
}

func TestNewService(t *testing.T) {
	svc := NewService(nil, zap.NewNop())
	assert.NotNil(t, svc)
	assert.Nil(t, svc.reconciler)
	assert.NotNil(t, svc.stopChan)
}

func TestService_StartAndStop(t *testing.T) {
	svc, _, cleanup := setupCronService(t)
	defer cleanup()

	// Start should not panic
	svc.Start()

	time.Sleep(10 * time.Millisecond)

	// Stop should not panic
	svc.Stop()

	time.Sleep(10 * time.Millisecond)
}

func TestService_RunNow(t *testing.T) {
	svc, db, cleanup := setupCronService(t)
	defer cleanup()

	agent := testutil.TestAgent(t, db)
	testutil.TestUser(t, db, testutil.WithAgent(agent.ID))
	testutil.TestUser(t, db, testutil.WithAgent(agent.ID))
	testutil.TestUser(t, db, testutil.WithAgent(agent.ID))

	drifts, err := svc.RunNow(context.Background())
	require.NoError(t, err)
	require.Len(t, drifts, 1)

	var updated model.Agent
	require.NoError(t, db.First(&updated, agent.ID).Error)
	assert.Equal(t, 3, updated.TotalStudents)
}

func TestService_RunNow_NoAgents(t *testing.T) {
	svc, _, cleanup := setupCronService(t)
	defer cleanup()

	drifts, err := svc.RunNow(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestService_Reconcile_LogsFailure(t *testing.T) {
	svc, db, cleanup := setupCronService(t)
	defer cleanup()

	// 关闭连接后任务只记录错误，不 panic
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.NotPanics(t, svc.reconcile)
}

func TestService_StopBeforeStart(t *testing.T) {
	svc, _, cleanup := setupCronService(t)
	defer cleanup()

	// Stop before start should not panic
	svc.Stop()
}

func TestService_StopTwice(t *testing.T) {
	svc, _, cleanup := setupCronService(t)
	defer cleanup()

	svc.Start()
	svc.Stop()
	assert.NotPanics(t, svc.Stop)
}
