package email

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/qs3c/edu_referral_server/config"
)

// Sender 邮件发送接口，便于测试替换
type Sender interface {
	SendReferralCode(to, agentName, code, domain string) error
}

type Service struct {
	cfg      *config.EmailConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg, sendMail: smtp.SendMail}
}

// SendReferralCode 发送推荐码通知邮件
func (s *Service) SendReferralCode(to, agentName, code, domain string) error {
	subject := "您的推荐码 - 学员推荐平台"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">推荐码已生成</h2>
        <p>您好，%s！</p>
        <p>您的机构推荐码为：</p>
        <div style="background-color: #f3f4f6; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 3px; margin: 20px 0;">
            %s
        </div>
        <p>学员注册时需填写该推荐码，并使用 <b>@%s</b> 域名的邮箱。</p>
        <p>如推荐码被重新生成，旧推荐码将立即失效。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, html.EscapeString(agentName), html.EscapeString(code), html.EscapeString(domain))

	return s.sendHTML(to, subject, body)
}

// buildMessage 拼装邮件头和正文
func (s *Service) buildMessage(to, subject, body string) []byte {
	headers := [][2]string{
		{"From", s.cfg.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return []byte(msg.String())
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return s.sendMail(addr, auth, s.cfg.From, []string{to}, s.buildMessage(to, subject, body))
}
