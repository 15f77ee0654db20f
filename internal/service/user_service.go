package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/repository"
)

type UserService struct {
	userRepo *repository.UserRepository
	log      *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, log *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		log:      log,
	}
}

// GetProfile 获取学员信息，包含绑定代理的公开信息
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByIDWithAgent(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return toUserInfo(user), nil
}

// ListUsers 分页获取学员，agentID 非空时按代理过滤
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int, agentID *int64) ([]*dto.UserInfo, int64, error) {
	users, total, err := s.userRepo.List(ctx, page, pageSize, agentID)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.UserInfo, 0, len(users))
	for _, u := range users {
		items = append(items, toUserInfo(u))
	}
	return items, total, nil
}

// SetBlocked 封禁或解封学员
func (s *UserService) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.SetBlocked(ctx, userID, blocked); err != nil {
		return err
	}

	s.log.Info("user block status changed", zap.Int64("user_id", userID), zap.Bool("blocked", blocked))
	return nil
}
