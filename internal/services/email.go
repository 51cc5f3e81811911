package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"nailsxlauren/internal/config"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// EmailMessage is one outbound email.
type EmailMessage struct {
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers email through some transport.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// NewMailer picks the transport named by the configured provider
func NewMailer(cfg *config.MailConfig, log zerolog.Logger) (Mailer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend mail provider requires an API key")
		}
		return NewResendMailer(resend.NewClient(cfg.ResendAPIKey), cfg), nil
	case "smtp":
		return NewSMTPMailer(cfg), nil
	case "console", "dev", "development", "":
		return NewConsoleMailer(log), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", cfg.Provider)
	}
}

func fromHeader(cfg *config.MailConfig) string {
	if cfg.FromName != "" {
		return fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	return cfg.FromEmail
}

// ConsoleMailer logs messages instead of sending them (development)
type ConsoleMailer struct {
	log zerolog.Logger
}

// NewConsoleMailer creates a console mailer
func NewConsoleMailer(log zerolog.Logger) *ConsoleMailer {
	return &ConsoleMailer{log: log.With().Str("mailer", "console").Logger()}
}

// Send logs the message envelope
func (m *ConsoleMailer) Send(ctx context.Context, msg EmailMessage) error {
	m.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email would be sent")
	return nil
}

// ResendMailer sends through the Resend HTTP API
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer creates a Resend mailer
func NewResendMailer(client *resend.Client, cfg *config.MailConfig) *ResendMailer {
	return &ResendMailer{client: client, from: fromHeader(cfg)}
}

// Send posts the message to Resend
func (m *ResendMailer) Send(ctx context.Context, msg EmailMessage) error {
	req := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
		ReplyTo: msg.ReplyTo,
	}
	if _, err := m.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SMTPMailer sends multipart mail over SMTP with PLAIN auth
type SMTPMailer struct {
	cfg      *config.MailConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates an SMTP mailer
func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail}
}

// Send builds a multipart/alternative message and hands it to the SMTP server
func (m *SMTPMailer) Send(ctx context.Context, msg EmailMessage) error {
	if m.cfg.SMTPHost == "" || m.cfg.Username == "" || m.cfg.Password == "" {
		return fmt.Errorf("email service not properly configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	if err := m.sendMail(addr, auth, m.cfg.FromEmail, []string{msg.To}, buildMIME(fromHeader(m.cfg), msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMIME(from string, msg EmailMessage) []byte {
	const boundary = "----=_NxLBooking_7d3c1f"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", oneLine(msg.ReplyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", oneLine(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.TextBody + "\r\n")

	if msg.HTMLBody != "" {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.HTMLBody + "\r\n")
	}

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
