package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/internal/model"
)

type AgentRepository struct {
	db *gorm.DB
}

func NewAgentRepository(db *gorm.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

func (r *AgentRepository) Create(ctx context.Context, agent *model.Agent) error {
	return r.db.WithContext(ctx).Create(agent).Error
}

func (r *AgentRepository) GetByID(ctx context.Context, id int64) (*model.Agent, error) {
	var agent model.Agent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// GetByActiveCode 按推荐码查找启用中的代理，每次都直接查库
func (r *AgentRepository) GetByActiveCode(ctx context.Context, code string) (*model.Agent, error) {
	var agent model.Agent
	err := r.db.WithContext(ctx).
		Where("referral_code = ? AND referral_code_active = ?", code, true).
		First(&agent).Error
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *AgentRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Agent{}).Where("referral_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *AgentRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Agent{}).
		Where("email = ? AND id <> ?", email, excludeID).Count(&count).Error
	return count > 0, err
}

func (r *AgentRepository) ExistsByDomain(ctx context.Context, domain string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Agent{}).
		Where("email_domain = ? AND id <> ?", domain, excludeID).Count(&count).Error
	return count > 0, err
}

// List 分页获取代理列表
func (r *AgentRepository) List(ctx context.Context, page, pageSize int, search string) ([]*model.Agent, int64, error) {
	var agents []*model.Agent
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Agent{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR email_domain LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&agents).Error; err != nil {
		return nil, 0, err
	}

	return agents, total, nil
}

// All 全量扫描，供收入统计使用
func (r *AgentRepository) All(ctx context.Context) ([]*model.Agent, error) {
	var agents []*model.Agent
	err := r.db.WithContext(ctx).Order("id ASC").Find(&agents).Error
	return agents, err
}

func (r *AgentRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Agent{}).Where("id = ?", id).Updates(fields).Error
}

func (r *AgentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Agent{}, id).Error
}

func (r *AgentRepository) IncrementStudents(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Agent{}).Where("id = ?", id).
		Update("total_students", gorm.Expr("total_students + 1")).Error
}

// WithTx 返回绑定到事务的仓储
func (r *AgentRepository) WithTx(tx *gorm.DB) *AgentRepository {
	return &AgentRepository{db: tx}
}
