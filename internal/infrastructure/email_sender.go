package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"insightgo/internal/domain"
	"insightgo/pkg/logger"
	"insightgo/pkg/metrics"

	gomail "gopkg.in/gomail.v2"
)

// SMTPSender implements EmailSender over plain SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewSMTPSender(host string, port int, username, password, from string, logger *logger.Logger, metrics *metrics.Metrics) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger,
		metrics:  metrics,
	}
}

// Send delivers one report email. Configuration is validated here
// rather than at construction so a link-only deployment can run
// without SMTP settings.
func (s *SMTPSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	if s.host == "" || s.from == "" {
		s.metrics.RecordEmailDelivery("not_configured")
		return errors.New("smtp is not configured: set SMTP_HOST and SMTP_FROM")
	}
	if msg.To == "" {
		s.metrics.RecordEmailDelivery("missing_recipient")
		return errors.New("email delivery requested but no recipient configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	for _, att := range msg.Attachments {
		m.Attach(att.Path, gomail.Rename(att.Filename))
	}

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		s.metrics.RecordEmailDelivery("error")
		return fmt.Errorf("failed to send report email: %w", err)
	}

	s.metrics.RecordEmailDelivery("success")
	s.logger.WithContext(ctx).WithFields(map[string]any{
		"to":          msg.To,
		"attachments": len(msg.Attachments),
	}).Info("Report email sent")

	return nil
}
