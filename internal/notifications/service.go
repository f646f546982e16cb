package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"gostjobs/internal/config"
	"gostjobs/internal/logging"
	"gostjobs/internal/services"
)

const (
	archiveEndpoint  = "/api/exports/getFullFileExport/archive"
	manifestEndpoint = "/api/exports/getFullFileExport/metadata"
)

// Service defines the notification surface exposed to the worker.
type Service interface {
	NotifyExportReady(ctx context.Context, recipient string, organizationID int64) (string, error)
}

// NewService returns a Service that renders emails for cfg and delivers them
// with sender.
func NewService(cfg *config.Config, sender Sender, logger *slog.Logger) Service {
	return &emailService{
		apiDomain: cfg.Email.APIDomain,
		toolName:  cfg.Email.ToolName,
		sender:    sender,
		logger:    logging.NewComponentLogger(logger, "notifications"),
	}
}

type emailService struct {
	apiDomain string
	toolName  string
	sender    Sender
	logger    *slog.Logger
}

// ExportData builds the email data for an export notification.
func ExportData(apiDomain, toolName string) (EmailData, error) {
	archiveURL, err := BuildURL(apiDomain, archiveEndpoint)
	if err != nil {
		return EmailData{}, err
	}
	manifestURL, err := BuildURL(apiDomain, manifestEndpoint)
	if err != nil {
		return EmailData{}, err
	}
	return EmailData{ToolName: toolName, ArchiveURL: archiveURL, ManifestURL: manifestURL}, nil
}

func (s *emailService) NotifyExportReady(ctx context.Context, recipient string, organizationID int64) (string, error) {
	logger := logging.WithContext(ctx, s.logger).With(logging.Int64("organization_id", organizationID))

	data, err := ExportData(s.apiDomain, s.toolName)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "notifications", "build download urls", "", err)
	}
	logger = logger.With(
		logging.String("zip_download_url", data.ArchiveURL),
		logging.String("csv_download_url", data.ManifestURL),
	)

	html, text, subject, err := Render(data)
	if err != nil {
		return "", fmt.Errorf("generate email content: %w", err)
	}

	messageID, err := s.sender.Send(ctx, recipient, html, text, subject)
	if err != nil {
		logging.ErrorWithContext(logger, "error sending email", "email_send_failed", logging.Error(err))
		return "", err
	}
	logger.Info("email notification sent", logging.String("ses_message_id", messageID))
	return messageID, nil
}
