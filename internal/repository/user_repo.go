package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByIDWithAgent(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Agent").Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("is_blocked", blocked).Error
}

// List 分页获取学员，agentID 非空时只返回该代理名下学员
func (r *UserRepository) List(ctx context.Context, page, pageSize int, agentID *int64) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	query := r.db.WithContext(ctx).Model(&model.User{})
	if agentID != nil {
		query = query.Where("agent_id = ?", *agentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *UserRepository) CountByAgent(ctx context.Context, agentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("agent_id = ?", agentID).Count(&count).Error
	return count, err
}

// StudentCounts 统计每个代理名下学员数
func (r *UserRepository) StudentCounts(ctx context.Context) (map[int64]int, error) {
	var rows []struct {
		AgentID int64
		Total   int
	}
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("agent_id, COUNT(*) AS total").
		Where("agent_id IS NOT NULL").
		Group("agent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int, len(rows))
	for _, row := range rows {
		counts[row.AgentID] = row.Total
	}
	return counts, nil
}

// All 全量扫描，供收入统计使用
func (r *UserRepository) All(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}
