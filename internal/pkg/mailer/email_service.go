// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"errors"
	"fmt"

	"pm-assistant-be/internal/config"
	"pm-assistant-be/internal/constant"
	"pm-assistant-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

var ErrSMTPNotConfigured = errors.New("smtp settings are incomplete")

type IEmailService interface {
	// SendSubmissionNotice tells the configured recipient that a project overview arrived.
	SendSubmissionNotice(requirements string) error
}

// sender is the part of gomail.Dialer the service needs.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	sender     sender
	from       string
	recipient  string
	configured bool
	logger     logger.ILogger
}

func NewEmailService(cfg config.SMTPConfig, log logger.ILogger) IEmailService {
	// gomail upgrades to STARTTLS when the server offers it, and uses implicit TLS on 465.
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.SenderEmail, cfg.SenderPassword)
	return newEmailService(d, cfg, log)
}

func newEmailService(s sender, cfg config.SMTPConfig, log logger.ILogger) *emailService {
	return &emailService{
		sender:     s,
		from:       cfg.SenderEmail,
		recipient:  cfg.RecipientEmail,
		configured: cfg.Configured(),
		logger:     log,
	}
}

func (s *emailService) buildSubmissionMessage(requirements string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.recipient)
	m.SetHeader("Subject", constant.SubmissionMailSubject)
	m.SetBody("text/plain", fmt.Sprintf(constant.SubmissionMailBodyTmpl, requirements))
	return m
}

func (s *emailService) SendSubmissionNotice(requirements string) error {
	if !s.configured {
		s.logger.Warn("Mailer", "Submission notice skipped, SMTP not configured", nil)
		return ErrSMTPNotConfigured
	}

	if err := s.sender.DialAndSend(s.buildSubmissionMessage(requirements)); err != nil {
		s.logger.Error("Mailer", "Failed to send submission notice", map[string]interface{}{
			"recipient": s.recipient,
			"error":     err,
		})
		return fmt.Errorf("send submission notice: %w", err)
	}

	s.logger.Info("Mailer", "Submission notice sent", map[string]interface{}{"recipient": s.recipient})
	return nil
}
