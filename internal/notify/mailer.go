package notify

import (
	"context"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.SSL
	return &SMTPMailer{dialer: d, from: cfg.From}
}

func (m *SMTPMailer) Send(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.dialer.DialAndSend(m.message(n))
}

func (m *SMTPMailer) message(n Notification) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", n.Email)
	msg.SetHeader("Subject", n.Title)
	msg.SetBody("text/plain", n.Message)
	return msg
}

// LogMailer only logs; used when SMTP is not configured.
type LogMailer struct {
	Log *zap.Logger
}

func (m LogMailer) Send(_ context.Context, n Notification) error {
	m.Log.Info("notification_logged",
		zap.String("id", n.ID.String()),
		zap.String("email", n.Email),
		zap.String("title", n.Title),
	)
	return nil
}
