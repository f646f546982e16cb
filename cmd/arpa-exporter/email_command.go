package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gostjobs/internal/awsutil"
	"gostjobs/internal/notifications"
)

func newEmailCommand(ctx *commandContext) *cobra.Command {
	emailCmd := &cobra.Command{
		Use:   "email",
		Short: "Notification email utilities",
	}
	emailCmd.AddCommand(newEmailPreviewCommand(ctx))
	return emailCmd
}

func newEmailPreviewCommand(ctx *commandContext) *cobra.Command {
	var recipient string
	var send bool
	var format string
	var organizationID int64

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the export-ready email and optionally send it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if send {
				if strings.TrimSpace(recipient) == "" {
					return fmt.Errorf("--to is required with --send")
				}
				logger, err := ctx.ensureLogger()
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				awsCfg, err := awsutil.LoadConfig(cmd.Context())
				if err != nil {
					return err
				}
				svc := notifications.NewService(cfg, ctx.newSender(awsCfg, cfg, logger), logger)
				id, err := svc.NotifyExportReady(cmd.Context(), recipient, organizationID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Sent email to %s (message id %s)\n", recipient, id)
				return nil
			}

			data, err := notifications.ExportData(cfg.Email.APIDomain, cfg.Email.ToolName)
			if err != nil {
				return fmt.Errorf("email.api_domain: %w", err)
			}
			html, text, subject, err := notifications.Render(data)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Subject: %s\n", subject)
			if recipient != "" {
				fmt.Fprintf(out, "To: %s\n", recipient)
			}
			fmt.Fprintf(out, "From: %s\n\n", cfg.Email.Source)
			switch strings.ToLower(strings.TrimSpace(format)) {
			case "", "text":
				fmt.Fprint(out, text)
			case "html":
				fmt.Fprint(out, html)
			default:
				return fmt.Errorf("unsupported --format %q (use text or html)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recipient, "to", "", "Recipient address")
	cmd.Flags().BoolVar(&send, "send", false, "Deliver the email instead of printing it")
	cmd.Flags().StringVar(&format, "format", "text", "Body to print: text or html")
	cmd.Flags().Int64Var(&organizationID, "organization-id", 0, "Organization id recorded in logs when sending")
	return cmd
}
