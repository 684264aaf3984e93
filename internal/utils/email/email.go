package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/hdmotors/dealer-service/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendDailyDigest mails the end-of-day report digest text to the configured
// recipients.
func (s *Sender) SendDailyDigest(day time.Time, digestText string) error {
	if len(s.cfg.DigestRecipients) == 0 {
		s.logger.Debug("No digest recipients configured, skipping email")
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = s.cfg.DigestRecipients
	e.Subject = fmt.Sprintf("Daily Report - %s", day.Format("Mon Jan 2, 2006"))
	e.Text = []byte(digestText + "\n")

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send digest email: %v", err)
		return fmt.Errorf("failed to send digest email: %w", err)
	}

	s.logger.Infof("Digest email sent to %d recipients", len(s.cfg.DigestRecipients))
	return nil
}
