package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/ignatzorin/tastytrail-backend/internal/config"
)

// Sender доставляет письмо получателю.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender отправляет письма через SMTP (по умолчанию Gmail).
type SMTPSender struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
	log    logrus.FieldLogger
}

// NewSMTPSender создаёт отправителя писем.
func NewSMTPSender(cfg config.SMTPConfig, log logrus.FieldLogger) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		log:    log,
	}
}

// Send отправляет письмо. Без учётных данных SMTP письмо пропускается с предупреждением.
// gomail не принимает контекст, поэтому отправка идёт в отдельной горутине,
// а ожидание прерывается по ctx.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enabled() {
		s.log.WithField("kind", msg.Kind).Warn("smtp не настроен, письмо пропущено")
		return ErrSenderDisabled
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("notification: пустой получатель")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.User, s.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("notification: send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification: send email: %w", ctx.Err())
	}
}
