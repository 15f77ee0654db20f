package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/internal/model"
)

var seq int64

func next() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestAgent 创建测试代理
func TestAgent(t *testing.T, db *gorm.DB, opts ...func(*model.Agent)) *model.Agent {
	t.Helper()

	n := next()
	agent := &model.Agent{
		Name:               fmt.Sprintf("Agent %d", n),
		AuthorityName:      fmt.Sprintf("Institute %d", n),
		Email:              fmt.Sprintf("agent_%d@example.com", n),
		EmailDomain:        fmt.Sprintf("school%d.edu", n),
		ReferralCode:       fmt.Sprintf("AGE-%06X", n),
		ReferralCodeActive: true,
		CommissionRate:     10,
	}

	for _, opt := range opts {
		opt(agent)
	}

	if err := db.Create(agent).Error; err != nil {
		t.Fatalf("Failed to create test agent: %v", err)
	}

	// gorm 会跳过 bool 零值，停用状态需要单独写回
	if !agent.ReferralCodeActive {
		if err := db.Model(agent).Update("referral_code_active", false).Error; err != nil {
			t.Fatalf("Failed to deactivate test agent code: %v", err)
		}
	}

	return agent
}

// WithAgentName 设置代理名称
func WithAgentName(name string) func(*model.Agent) {
	return func(a *model.Agent) {
		a.Name = name
	}
}

// WithDomain 设置代理邮箱域名
func WithDomain(domain string) func(*model.Agent) {
	return func(a *model.Agent) {
		a.EmailDomain = domain
		a.Email = "admin@" + domain
	}
}

// WithReferralCode 设置推荐码及其状态
func WithReferralCode(code string, active bool) func(*model.Agent) {
	return func(a *model.Agent) {
		a.ReferralCode = code
		a.ReferralCodeActive = active
	}
}

// WithCommissionRate 设置佣金比例
func WithCommissionRate(rate float64) func(*model.Agent) {
	return func(a *model.Agent) {
		a.CommissionRate = rate
	}
}

// TestUser 创建测试学员
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := next()
	user := &model.User{
		Name:         fmt.Sprintf("Student %d", n),
		Email:        fmt.Sprintf("student_%d_%d@example.com", n, time.Now().UnixNano()%10000),
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithAgent 绑定代理
func WithAgent(agentID int64) func(*model.User) {
	return func(u *model.User) {
		u.AgentID = &agentID
	}
}

// WithPasswordHash 设置密码哈希
func WithPasswordHash(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = hash
	}
}

// WithBlocked 设置封禁状态
func WithBlocked(blocked bool) func(*model.User) {
	return func(u *model.User) {
		u.IsBlocked = blocked
	}
}

// TestCoupon 创建测试优惠券
func TestCoupon(t *testing.T, db *gorm.DB, code string, discount float64, opts ...func(*model.Coupon)) *model.Coupon {
	t.Helper()

	coupon := &model.Coupon{
		Code:     code,
		Discount: discount,
		MaxUses:  100,
		Status:   model.CouponStatusActive,
	}

	for _, opt := range opts {
		opt(coupon)
	}

	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("Failed to create test coupon: %v", err)
	}

	return coupon
}

// WithCouponStatus 设置优惠券状态
func WithCouponStatus(status string) func(*model.Coupon) {
	return func(c *model.Coupon) {
		c.Status = status
	}
}

// WithUsage 设置使用次数
func WithUsage(used, max int) func(*model.Coupon) {
	return func(c *model.Coupon) {
		c.UsedCount = used
		c.MaxUses = max
	}
}

// TestSubscription 创建测试订阅
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, price float64, couponCode string) *model.Subscription {
	t.Helper()

	now := time.Now()
	sub := &model.Subscription{
		UserID:    userID,
		Plan:      "monthly",
		Price:     price,
		StartedAt: now,
		ExpiresAt: now.AddDate(0, 0, 30),
		Status:    "active",
	}
	if couponCode != "" {
		sub.CouponCode = &couponCode
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}
