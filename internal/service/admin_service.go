package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/internal/model"
	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/pkg/session"
	"github.com/qs3c/edu_referral_server/internal/repository"
)

var ErrSessionInvalid = errors.New("登录已失效，请重新登录")

type AdminService struct {
	adminRepo *repository.AdminRepository
	sessions  *session.Store
	log       *zap.Logger
}

func NewAdminService(adminRepo *repository.AdminRepository, sessions *session.Store, log *zap.Logger) *AdminService {
	return &AdminService{
		adminRepo: adminRepo,
		sessions:  sessions,
		log:       log,
	}
}

// EnsureAdmin 启动时确保配置中的管理员存在，返回是否新建
func (s *AdminService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, ErrMissingField
	}

	_, err := s.adminRepo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	admin := &model.Admin{Username: username, PasswordHash: string(hashed)}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		// 多实例同时启动时另一实例已创建
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}

	s.log.Info("bootstrap admin created", zap.String("username", username))
	return true, nil
}

// Login 管理员登录，签发 Redis 会话
func (s *AdminService) Login(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.sessions.Create(ctx, admin.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("admin logged in", zap.Int64("admin_id", admin.ID))
	return &dto.AdminLoginResponse{
		SessionToken: token,
		ExpiresAt:    expiresAt.Format(time.RFC3339),
	}, nil
}

// Logout 注销会话
func (s *AdminService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authenticate 校验会话并返回管理员 ID
func (s *AdminService) Authenticate(ctx context.Context, token string) (int64, error) {
	id, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrInvalidSession) {
			return 0, ErrSessionInvalid
		}
		return 0, err
	}
	return id, nil
}
