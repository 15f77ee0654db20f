package service

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField            = errors.New("缺少必填字段")
	ErrInvalidDomainFormat     = errors.New("邮箱域名格式无效")
	ErrDuplicateEmail          = errors.New("邮箱已被使用")
	ErrDuplicateDomain         = errors.New("该邮箱域名已绑定其他代理")
	ErrAlreadyExists           = errors.New("记录已存在")
	ErrInvalidEmail            = errors.New("邮箱格式无效")
	ErrCodeNotFound            = errors.New("推荐码不存在或已停用")
	ErrDomainMismatch          = errors.New("邮箱域名与推荐码不匹配")
	ErrAgentNotFound           = errors.New("代理不存在")
	ErrCodeGenerationExhausted = errors.New("推荐码生成失败，请重试")
	ErrAgentHasStudents        = errors.New("代理名下仍有学员，无法删除")
	ErrInvalidCommissionRate   = errors.New("佣金比例必须在 0 到 100 之间")
)

// DomainMismatchError 携带期望域名和实际域名，errors.Is 可匹配 ErrDomainMismatch
type DomainMismatchError struct {
	Expected string
	Received string
}

func (e *DomainMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, received %s", ErrDomainMismatch.Error(), e.Expected, e.Received)
}

func (e *DomainMismatchError) Is(target error) bool {
	return target == ErrDomainMismatch
}
