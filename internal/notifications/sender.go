package notifications

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"

	"gostjobs/internal/logging"
	"gostjobs/internal/services"
)

const charset = "UTF-8"

// Sender delivers a rendered email and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, recipient, html, text, subject string) (string, error)
}

// SESAPI is the subset of the SES client used by SESSender.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender sends email through Amazon SES.
type SESSender struct {
	api    SESAPI
	source string
}

// NewSESSender returns a sender that uses source as the From address.
func NewSESSender(api SESAPI, source string) *SESSender {
	return &SESSender{api: api, source: source}
}

// NewSESSenderFromConfig builds the SES client from cfg.
func NewSESSenderFromConfig(cfg aws.Config, source string) *SESSender {
	return NewSESSender(ses.NewFromConfig(cfg), source)
}

func (s *SESSender) Send(ctx context.Context, recipient, html, text, subject string) (string, error) {
	out, err := s.api.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{recipient}},
		Message: &types.Message{
			Body: &types.Body{
				Html: &types.Content{Charset: aws.String(charset), Data: aws.String(html)},
				Text: &types.Content{Charset: aws.String(charset), Data: aws.String(text)},
			},
			Subject: &types.Content{Charset: aws.String(charset), Data: aws.String(subject)},
		},
		Source: aws.String(s.source),
	})
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "notifications", "send email", "ses", err)
	}
	return aws.ToString(out.MessageId), nil
}

type noopSender struct {
	logger *slog.Logger
}

// NewNoopSender returns a sender that only logs what would have been sent.
func NewNoopSender(logger *slog.Logger) Sender {
	return noopSender{logger: logging.NewComponentLogger(logger, "notifications")}
}

func (n noopSender) Send(ctx context.Context, recipient, html, text, subject string) (string, error) {
	id := "noop-" + uuid.NewString()
	logging.WithContext(ctx, n.logger).Info("email delivery disabled; skipping send",
		logging.String("recipient", recipient),
		logging.String("subject", subject),
		logging.Int("html_bytes", len(html)),
		logging.Int("text_bytes", len(text)),
		logging.String("message_id", id),
	)
	return id, nil
}
