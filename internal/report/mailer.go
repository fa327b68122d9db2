package report

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/golang/glog"

	"intellitest/internal/domain"
)

// Mailer delivers a result summary to an address.
type Mailer interface {
	SendResult(ctx context.Context, to string, result domain.ScoreResult) error
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// SMTPMailer sends the plain-text summary through an SMTP relay.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewMailer returns an SMTPMailer when cfg names a relay and a sender, and a
// LogMailer otherwise.
func NewMailer(cfg SMTPConfig) Mailer {
	if strings.TrimSpace(cfg.Host) == "" || cfg.Port <= 0 || strings.TrimSpace(cfg.From) == "" {
		return LogMailer{}
	}
	return &SMTPMailer{
		host: strings.TrimSpace(cfg.Host),
		port: cfg.Port,
		user: strings.TrimSpace(cfg.User),
		pass: cfg.Pass,
		from: strings.TrimSpace(cfg.From),
		send: smtp.SendMail,
	}
}

func (m *SMTPMailer) SendResult(ctx context.Context, to string, result domain.ScoreResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := m.send(addr, auth, m.from, []string{to}, Message(m.from, to, result)); err != nil {
		return fmt.Errorf("smtp send result: %w", err)
	}
	glog.Infof("result of %s mailed to %s", result.TestVersion, to)
	return nil
}

// Message builds the RFC 822 message carrying the summary of result.
func Message(from, to string, result domain.ScoreResult) []byte {
	subject := fmt.Sprintf("Your IQ assessment results: %d (%s)", result.IQ, result.Classification.Label)
	msg := "From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
		strings.ReplaceAll(Text(result), "\n", "\r\n")
	return []byte(msg)
}

// LogMailer only logs the delivery; used when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) SendResult(_ context.Context, to string, result domain.ScoreResult) error {
	glog.Infof("results to email: to=%s iq=%d classification=%s", to, result.IQ, result.Classification.Label)
	return nil
}
