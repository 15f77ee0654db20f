package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/config"
	"github.com/qs3c/edu_referral_server/internal/model"
	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/pkg/jwt"
	"github.com/qs3c/edu_referral_server/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUserBlocked        = errors.New("账号已被封禁")
)

type AuthService struct {
	db        *gorm.DB
	userRepo  *repository.UserRepository
	agentRepo *repository.AgentRepository
	referral  *ReferralService
	cfg       *config.Config
	log       *zap.Logger
}

func NewAuthService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	agentRepo *repository.AgentRepository,
	referral *ReferralService,
	cfg *config.Config,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		db:        db,
		userRepo:  userRepo,
		agentRepo: agentRepo,
		referral:  referral,
		cfg:       cfg,
		log:       log,
	}
}

// Register 学员注册，填写推荐码时校验域名并绑定代理
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		return nil, ErrMissingField
	}

	// 检查邮箱是否存在
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	var agent *dto.AgentPublic
	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		agent, err = s.referral.ValidateReferralCode(ctx, code, email)
		if err != nil {
			return nil, err
		}
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if agent != nil {
		user.AgentID = &agent.ID
	}

	// 创建学员和代理计数在同一事务内完成
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		if agent != nil {
			return s.agentRepo.WithTx(tx).IncrementStudents(ctx, agent.ID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	fields := []zap.Field{zap.Int64("user_id", user.ID)}
	if agent != nil {
		fields = append(fields, zap.Int64("agent_id", agent.ID))
	}
	s.log.Info("student registered", fields...)

	return &dto.RegisterResponse{
		UserID: user.ID,
		Agent:  agent,
	}, nil
}

// Login 学员登录
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.IsBlocked {
		return nil, ErrUserBlocked
	}

	// 生成 Token
	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  toUserInfo(user),
	}, nil
}

func toUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		IsBlocked: user.IsBlocked,
		AgentID:   user.AgentID,
	}
	if !user.CreatedAt.IsZero() {
		info.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	}
	if user.Agent != nil {
		info.Agent = toAgentPublic(user.Agent)
	}
	return info
}
