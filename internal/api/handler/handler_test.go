package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/config"
	"github.com/qs3c/edu_referral_server/internal/api/middleware"
	"github.com/qs3c/edu_referral_server/internal/pkg/response"
	"github.com/qs3c/edu_referral_server/internal/pkg/session"
	"github.com/qs3c/edu_referral_server/internal/repository"
	"github.com/qs3c/edu_referral_server/internal/service"
	"github.com/qs3c/edu_referral_server/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db  *gorm.DB
	rdb *redis.Client
	cfg *config.Config

	auth         *AuthHandler
	user         *UserHandler
	referral     *ReferralHandler
	agent        *AgentHandler
	admin        *AdminHandler
	adminService *service.AdminService
	coupon       *CouponHandler
	subscription *SubscriptionHandler
	revenue      *RevenueHandler
	health       *HealthHandler
}

func setupHandlers(t *testing.T) (*testEnv, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key",
			ExpireHours: 24,
		},
		Referral: config.ReferralConfig{
			MaxCodeAttempts:       10,
			DefaultCommissionRate: 10,
		},
		Plans: map[string]config.PlanConfig{
			"monthly": {Price: 1000, DurationDays: 30},
		},
	}
	log := zap.NewNop()

	agentRepo := repository.NewAgentRepository(db)
	userRepo := repository.NewUserRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	referralService := service.NewReferralService(agentRepo, userRepo, nil, cfg, log)
	authService := service.NewAuthService(db, userRepo, agentRepo, referralService, cfg, log)
	userService := service.NewUserService(userRepo, log)
	adminService := service.NewAdminService(adminRepo, session.NewStore(rdb, time.Hour), log)
	couponService := service.NewCouponService(couponRepo, log)
	subscriptionService := service.NewSubscriptionService(db, userRepo, couponRepo, subRepo, cfg, log)
	revenueService := service.NewRevenueService(agentRepo, userRepo, subRepo, couponRepo)

	env := &testEnv{
		db:           db,
		rdb:          rdb,
		cfg:          cfg,
		auth:         NewAuthHandler(authService),
		user:         NewUserHandler(userService),
		referral:     NewReferralHandler(referralService),
		agent:        NewAgentHandler(referralService, revenueService),
		admin:        NewAdminHandler(adminService),
		adminService: adminService,
		coupon:       NewCouponHandler(couponService, revenueService),
		subscription: NewSubscriptionHandler(subscriptionService),
		revenue:      NewRevenueHandler(revenueService),
		health:       NewHealthHandler(db, rdb),
	}

	cleanup := func() {
		rdb.Close()
		mr.Close()
		testutil.CleanupTestDB(t, db)
	}

	return env, cleanup
}

// withUser 模拟认证中间件写入的学员 ID
func withUser(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	return performRequestWithHeaders(r, method, path, body, nil)
}

func performRequestWithHeaders(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "response data should be an object")
	return data
}
