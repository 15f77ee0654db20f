package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/edu_referral_server/config"
	"github.com/qs3c/edu_referral_server/internal/model"
	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/pkg/metrics"
	"github.com/qs3c/edu_referral_server/internal/pkg/queue"
	"github.com/qs3c/edu_referral_server/internal/pkg/refcode"
	"github.com/qs3c/edu_referral_server/internal/repository"
)

const defaultCommissionRate = 10

var domainPattern = regexp.MustCompile(`^[a-z0-9-]+(\.[a-z0-9-]+)*\.[a-z]{2,}$`)

// Notifier 推荐码通知投递
type Notifier interface {
	Push(ctx context.Context, msg *queue.Notification) error
}

type ReferralService struct {
	agentRepo *repository.AgentRepository
	userRepo  *repository.UserRepository
	notifier  Notifier
	generator *refcode.Generator
	cfg       *config.Config
	log       *zap.Logger
}

func NewReferralService(
	agentRepo *repository.AgentRepository,
	userRepo *repository.UserRepository,
	notifier Notifier,
	cfg *config.Config,
	log *zap.Logger,
) *ReferralService {
	return &ReferralService{
		agentRepo: agentRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		generator: refcode.NewGenerator(agentRepo.ExistsByCode, cfg.Referral.MaxCodeAttempts),
		cfg:       cfg,
		log:       log,
	}
}

// GenerateReferralCode 生成当前未被占用的推荐码
func (s *ReferralService) GenerateReferralCode(ctx context.Context, name string) (string, error) {
	code, attempts, err := s.generator.Generate(ctx, strings.TrimSpace(name))
	metrics.ObserveCodeGeneration(attempts)
	if err != nil {
		switch {
		case errors.Is(err, refcode.ErrEmptyName):
			return "", ErrMissingField
		case errors.Is(err, refcode.ErrExhausted):
			s.log.Warn("referral code generation exhausted", zap.String("name", name), zap.Int("attempts", attempts))
			return "", ErrCodeGenerationExhausted
		}
		return "", err
	}
	return code, nil
}

// ValidateReferralCode 校验推荐码及学员邮箱域名
func (s *ReferralService) ValidateReferralCode(ctx context.Context, code, studentEmail string) (*dto.AgentPublic, error) {
	code = strings.TrimSpace(code)
	studentEmail = strings.TrimSpace(studentEmail)
	if code == "" || studentEmail == "" {
		metrics.ObserveValidation("missing_field")
		return nil, ErrMissingField
	}

	domain, ok := emailDomain(studentEmail)
	if !ok {
		metrics.ObserveValidation("invalid_email")
		return nil, ErrInvalidEmail
	}

	// 不做缓存，停用和重新生成立即生效
	agent, err := s.agentRepo.GetByActiveCode(ctx, strings.ToUpper(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ObserveValidation("code_not_found")
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	if !strings.EqualFold(agent.EmailDomain, domain) {
		metrics.ObserveValidation("domain_mismatch")
		return nil, &DomainMismatchError{Expected: agent.EmailDomain, Received: domain}
	}

	metrics.ObserveValidation("ok")
	return toAgentPublic(agent), nil
}

// CreateAgent 创建代理并签发推荐码
func (s *ReferralService) CreateAgent(ctx context.Context, req *dto.CreateAgentRequest) (*dto.AgentDetail, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	domain := strings.ToLower(strings.TrimSpace(req.EmailDomain))
	if name == "" || email == "" || domain == "" {
		return nil, ErrMissingField
	}
	if !domainPattern.MatchString(domain) {
		return nil, ErrInvalidDomainFormat
	}

	rate := s.cfg.Referral.DefaultCommissionRate
	if rate <= 0 {
		rate = defaultCommissionRate
	}
	if req.CommissionRate != nil {
		rate = *req.CommissionRate
	}
	if rate < 0 || rate > 100 {
		return nil, ErrInvalidCommissionRate
	}

	if err := s.checkUnique(ctx, email, domain, 0); err != nil {
		return nil, err
	}

	attempts := s.cfg.Referral.MaxCodeAttempts
	if attempts <= 0 {
		attempts = refcode.DefaultAttempts
	}

	for i := 0; i < attempts; i++ {
		code, err := s.GenerateReferralCode(ctx, name)
		if err != nil {
			return nil, err
		}

		agent := &model.Agent{
			Name:               name,
			AuthorityName:      strings.TrimSpace(req.AuthorityName),
			Email:              email,
			EmailDomain:        domain,
			ReferralCode:       code,
			ReferralCodeActive: true,
			CommissionRate:     rate,
		}

		err = s.agentRepo.Create(ctx, agent)
		if err == nil {
			s.log.Info("agent created",
				zap.Int64("agent_id", agent.ID),
				zap.String("domain", domain),
				zap.String("referral_code", code))
			s.notify(ctx, queue.KindReferralCodeIssued, agent)
			return toAgentDetail(agent), nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}

		// 唯一索引冲突：邮箱或域名被并发占用则直接返回，否则是推荐码撞车，重新生成
		if err := s.checkUnique(ctx, email, domain, 0); err != nil {
			return nil, err
		}
		taken, err := s.agentRepo.ExistsByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if !taken {
			return nil, ErrAlreadyExists
		}
	}

	return nil, ErrCodeGenerationExhausted
}

// GetAgent 获取代理详情
func (s *ReferralService) GetAgent(ctx context.Context, id int64) (*dto.AgentDetail, error) {
	agent, err := s.getAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAgentDetail(agent), nil
}

// ListAgents 分页获取代理列表
func (s *ReferralService) ListAgents(ctx context.Context, page, pageSize int, search string) ([]*dto.AgentDetail, int64, error) {
	agents, total, err := s.agentRepo.List(ctx, page, pageSize, strings.TrimSpace(search))
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.AgentDetail, 0, len(agents))
	for _, a := range agents {
		items = append(items, toAgentDetail(a))
	}
	return items, total, nil
}

// UpdateAgent 更新代理信息
func (s *ReferralService) UpdateAgent(ctx context.Context, id int64, req *dto.UpdateAgentRequest) (*dto.AgentDetail, error) {
	agent, err := s.getAgent(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	email, domain := agent.Email, agent.EmailDomain

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrMissingField
		}
		fields["name"] = name
	}
	if req.AuthorityName != nil {
		fields["authority_name"] = strings.TrimSpace(*req.AuthorityName)
	}
	if req.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, ErrMissingField
		}
		fields["email"] = email
	}
	if req.EmailDomain != nil {
		domain = strings.ToLower(strings.TrimSpace(*req.EmailDomain))
		if domain == "" {
			return nil, ErrMissingField
		}
		if !domainPattern.MatchString(domain) {
			return nil, ErrInvalidDomainFormat
		}
		fields["email_domain"] = domain
	}
	if req.CommissionRate != nil {
		if *req.CommissionRate < 0 || *req.CommissionRate > 100 {
			return nil, ErrInvalidCommissionRate
		}
		fields["commission_rate"] = *req.CommissionRate
	}
	if req.ReferralActive != nil {
		fields["referral_code_active"] = *req.ReferralActive
	}

	if len(fields) == 0 {
		return toAgentDetail(agent), nil
	}

	if err := s.checkUnique(ctx, email, domain, id); err != nil {
		return nil, err
	}

	if err := s.agentRepo.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := s.checkUnique(ctx, email, domain, id); err != nil {
				return nil, err
			}
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return s.GetAgent(ctx, id)
}

// DeleteAgent 删除代理，名下仍有学员时拒绝
func (s *ReferralService) DeleteAgent(ctx context.Context, id int64) error {
	if _, err := s.getAgent(ctx, id); err != nil {
		return err
	}

	count, err := s.userRepo.CountByAgent(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAgentHasStudents
	}

	if err := s.agentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("agent deleted", zap.Int64("agent_id", id))
	return nil
}

// ListAgentStudents 获取代理名下学员
func (s *ReferralService) ListAgentStudents(ctx context.Context, agentID int64, page, pageSize int) ([]*dto.UserInfo, int64, error) {
	if _, err := s.getAgent(ctx, agentID); err != nil {
		return nil, 0, err
	}

	users, total, err := s.userRepo.List(ctx, page, pageSize, &agentID)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.UserInfo, 0, len(users))
	for _, u := range users {
		items = append(items, toUserInfo(u))
	}
	return items, total, nil
}

// RegenerateReferralCode 重新生成推荐码，旧码随本次更新立即失效
func (s *ReferralService) RegenerateReferralCode(ctx context.Context, id int64) (string, error) {
	agent, err := s.getAgent(ctx, id)
	if err != nil {
		return "", err
	}

	attempts := s.cfg.Referral.MaxCodeAttempts
	if attempts <= 0 {
		attempts = refcode.DefaultAttempts
	}

	for i := 0; i < attempts; i++ {
		code, err := s.GenerateReferralCode(ctx, agent.Name)
		if err != nil {
			return "", err
		}

		err = s.agentRepo.UpdateFields(ctx, id, map[string]interface{}{"referral_code": code})
		if err == nil {
			s.log.Info("referral code regenerated",
				zap.Int64("agent_id", id),
				zap.String("old_code", agent.ReferralCode),
				zap.String("new_code", code))
			agent.ReferralCode = code
			s.notify(ctx, queue.KindReferralCodeRegenerated, agent)
			return code, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", err
		}
	}

	return "", ErrCodeGenerationExhausted
}

// ToggleReferralCodeStatus 启用或停用推荐码
func (s *ReferralService) ToggleReferralCodeStatus(ctx context.Context, id int64, active bool) error {
	if _, err := s.getAgent(ctx, id); err != nil {
		return err
	}

	if err := s.agentRepo.UpdateFields(ctx, id, map[string]interface{}{"referral_code_active": active}); err != nil {
		return err
	}

	s.log.Info("referral code status changed", zap.Int64("agent_id", id), zap.Bool("active", active))
	return nil
}

func (s *ReferralService) getAgent(ctx context.Context, id int64) (*model.Agent, error) {
	agent, err := s.agentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return agent, nil
}

func (s *ReferralService) checkUnique(ctx context.Context, email, domain string, excludeID int64) error {
	exists, err := s.agentRepo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateEmail
	}

	exists, err = s.agentRepo.ExistsByDomain(ctx, domain, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateDomain
	}
	return nil
}

// notify 投递失败只记录日志，不影响主流程
func (s *ReferralService) notify(ctx context.Context, kind string, agent *model.Agent) {
	if s.notifier == nil {
		return
	}

	msg := &queue.Notification{
		Kind:         kind,
		AgentID:      agent.ID,
		AgentName:    agent.Name,
		Email:        agent.Email,
		ReferralCode: agent.ReferralCode,
		EmailDomain:  agent.EmailDomain,
		CreatedAt:    time.Now(),
	}
	if err := s.notifier.Push(ctx, msg); err != nil {
		s.log.Error("failed to enqueue notification",
			zap.String("kind", kind),
			zap.Int64("agent_id", agent.ID),
			zap.Error(err))
	}
}

// emailDomain 取 @ 之后的部分并转小写，要求恰好一个 @ 且两侧非空
func emailDomain(email string) (string, bool) {
	if strings.Count(email, "@") != 1 {
		return "", false
	}
	local, domain, _ := strings.Cut(email, "@")
	if local == "" || domain == "" {
		return "", false
	}
	return strings.ToLower(domain), true
}

func toAgentPublic(a *model.Agent) *dto.AgentPublic {
	return &dto.AgentPublic{
		ID:             a.ID,
		Name:           a.Name,
		AuthorityName:  a.AuthorityName,
		EmailDomain:    a.EmailDomain,
		CommissionRate: a.CommissionRate,
	}
}

func toAgentDetail(a *model.Agent) *dto.AgentDetail {
	return &dto.AgentDetail{
		ID:                 a.ID,
		Name:               a.Name,
		AuthorityName:      a.AuthorityName,
		Email:              a.Email,
		EmailDomain:        a.EmailDomain,
		ReferralCode:       a.ReferralCode,
		ReferralCodeActive: a.ReferralCodeActive,
		CommissionRate:     a.CommissionRate,
		TotalStudents:      a.TotalStudents,
		CreatedAt:          a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          a.UpdatedAt.Format(time.RFC3339),
	}
}
