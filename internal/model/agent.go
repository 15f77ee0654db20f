package model

import (
	"time"
)

type Agent struct {
	ID                 int64     `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"size:100;not null" json:"name"`
	AuthorityName      string    `gorm:"size:200" json:"authority_name"`
	Email              string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	EmailDomain        string    `gorm:"size:100;uniqueIndex;not null" json:"email_domain"`
	ReferralCode       string    `gorm:"size:20;uniqueIndex;not null" json:"referral_code"`
	ReferralCodeActive bool      `gorm:"default:true;index" json:"referral_code_active"`
	CommissionRate     float64   `gorm:"type:decimal(5,2);default:10" json:"commission_rate"`
	TotalStudents      int       `gorm:"default:0" json:"total_students"`
	CreatedAt          time.Time `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Agent) TableName() string {
	return "agents"
}
