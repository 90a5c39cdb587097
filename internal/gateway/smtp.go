package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/interpretly/booking-be/internal/booking/notify"
	"github.com/interpretly/booking-be/internal/config"
)

// SMTPMailer delivers booking mails over SMTP. Bodies are composed from the
// notification templates; this type only handles transport.
type SMTPMailer struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(cfg config.SMTPConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		logger: logger,
	}
}

// Send mails one recipient. The context deadline bounds the whole exchange
// through the connection deadline.
func (m *SMTPMailer) Send(ctx context.Context, toEmail, toName, subject string, kind notify.TemplateKind, tctx notify.Context) error {
	if toEmail == "" {
		return fmt.Errorf("recipient has no email address")
	}

	body := notify.EmailBody(kind, toName, tctx)
	msg := m.buildMessage(toEmail, toName, subject, body)

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer client.Close()

	if m.cfg.User != "" {
		auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("smtp auth failed: %w", err)
			}
		}
	}

	if err := client.Mail(m.cfg.FromAddress); err != nil {
		return fmt.Errorf("smtp mail from failed: %w", err)
	}
	if err := client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("smtp rcpt failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data failed: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		w.Close()
		return fmt.Errorf("failed to write mail body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish mail body: %w", err)
	}

	if err := client.Quit(); err != nil {
		m.logger.Warn("SMTP quit failed",
			slog.String("recipient", toEmail),
			slog.Any("error", err),
		)
	}

	return nil
}

func (m *SMTPMailer) buildMessage(toEmail, toName, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.FromAddress)
	if toName != "" {
		fmt.Fprintf(&b, "To: %s <%s>\r\n", toName, toEmail)
	} else {
		fmt.Fprintf(&b, "To: %s\r\n", toEmail)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.String()
}
