package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nfrund/sparx/internal/domain"
	"github.com/wneessen/go-mail"
)

// --- LogSender (for development) ---

// LogSender prints emails to the log instead of sending them.
type LogSender struct {
	senderAddress string
	logger        *slog.Logger
}

// NewLogSender creates a LogSender writing to the default logger.
func NewLogSender(senderAddress string) *LogSender {
	return &LogSender{senderAddress: senderAddress, logger: slog.Default()}
}

// Send logs the email content.
func (s *LogSender) Send(ctx context.Context, msg domain.Email) error {
	from := msg.From
	if from == "" {
		from = s.senderAddress
	}
	s.logger.InfoContext(ctx, "Email sent (logged)",
		"from", from,
		"to", msg.To,
		"reply_to", msg.ReplyTo,
		"subject", msg.Subject,
		"body", msg.HTML,
	)
	return nil
}

// --- ResendSender ---

const resendEndpoint = "https://api.resend.com/emails"

// ResendSender sends emails using the Resend API.
type ResendSender struct {
	apiKey        string
	senderAddress string
	endpoint      string
	client        *http.Client
}

// NewResendSender creates a ResendSender with a bounded HTTP client.
func NewResendSender(apiKey, senderAddress string) *ResendSender {
	return &ResendSender{
		apiKey:        apiKey,
		senderAddress: senderAddress,
		endpoint:      resendEndpoint,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

type resendPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send dispatches an email using the Resend API.
func (s *ResendSender) Send(ctx context.Context, msg domain.Email) error {
	sender := msg.From
	if sender == "" {
		sender = s.senderAddress
	}
	if sender == "" {
		sender = "Sparx <onboarding@resend.dev>"
	}

	body, err := json.Marshal(resendPayload{
		From:    sender,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API returned an error: status %d", resp.StatusCode)
	}

	slog.InfoContext(ctx, "Successfully sent email via Resend", "to", msg.To, "subject", msg.Subject)
	return nil
}

// --- SMTPSender ---

// SMTPConfig holds the connection settings of an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPSender delivers email through an SMTP relay.
type SMTPSender struct {
	client        *mail.Client
	senderAddress string
}

// NewSMTPSender creates an SMTPSender. Authentication is enabled when a
// username is configured.
func NewSMTPSender(cfg SMTPConfig, senderAddress string) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPSender{client: client, senderAddress: senderAddress}, nil
}

// Send builds a MIME message and delivers it.
func (s *SMTPSender) Send(ctx context.Context, msg domain.Email) error {
	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to deliver email via smtp: %w", err)
	}
	slog.InfoContext(ctx, "Successfully sent email via SMTP", "to", msg.To, "subject", msg.Subject)
	return nil
}

func (s *SMTPSender) buildMessage(msg domain.Email) (*mail.Msg, error) {
	from := msg.From
	if from == "" {
		from = s.senderAddress
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}
