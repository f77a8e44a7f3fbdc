package email

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

var ErrNoRecipients = errors.New("email has no recipients")

type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ResendMailer delivers mail through the Resend API.
type ResendMailer struct {
	client *resend.Client
}

func NewResendMailer(apiKey string) *ResendMailer {
	return NewResendMailerWithClient(&http.Client{Timeout: 15 * time.Second}, apiKey)
}

func NewResendMailerWithClient(httpClient *http.Client, apiKey string) *ResendMailer {
	return &ResendMailer{client: resend.NewCustomClient(httpClient, apiKey)}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	return err
}

// LogMailer only logs outgoing mail. It is used when no API key is set.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	m.log.Info("email not sent, no provider configured",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}

// New picks the Resend mailer when apiKey is set.
func New(apiKey string, log *zap.Logger) Mailer {
	if apiKey == "" {
		return NewLogMailer(log)
	}
	return NewResendMailer(apiKey)
}
