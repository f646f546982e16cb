// Command download-grants-gov-db is the Lambda function that copies the daily
// Grants.gov database extract into the source data bucket.
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"

	"gostjobs/internal/awsutil"
	"gostjobs/internal/grantsingest"
	"gostjobs/internal/logging"
	"gostjobs/internal/storage"
)

func main() {
	env, err := grantsingest.LoadEnvironment()
	if err != nil {
		log.Fatalf("load environment: %v", err)
	}
	if err := env.RequireBaseURL(); err != nil {
		log.Fatalf("load environment: %v", err)
	}
	logger, err := logging.New(logging.Options{Level: env.LogLevel, Format: env.LogFormat})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger.Debug("starting lambda")

	httpClient := &http.Client{Timeout: env.DownloadTimeout()}
	lambda.StartWithOptions(func(ctx context.Context, event grantsingest.ScheduledEvent) error {
		cfg, err := awsutil.LoadConfig(ctx)
		if err != nil {
			return err
		}
		d := &grantsingest.Downloader{
			HTTPClient: httpClient,
			Store:      storage.New(cfg, storage.Options{UsePathStyle: env.UsePathStyle, Logger: logger}),
			BaseURL:    env.GrantsGovBaseURL,
			Bucket:     env.Bucket,
			Logger:     logger,
		}
		return d.Handle(ctx, event)
	}, lambda.WithEnableSIGTERM(func() {
		logger.Info("lambda runtime shutting down")
	}))
}
