// Command extract-grants-gov-db is the Lambda function that writes the XML
// member of each newly stored Grants.gov archive back to S3.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
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
	logger, err := logging.New(logging.Options{Level: env.LogLevel, Format: env.LogFormat})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger.Debug("starting lambda")

	lambda.StartWithOptions(func(ctx context.Context, event events.S3Event) error {
		cfg, err := awsutil.LoadConfig(ctx)
		if err != nil {
			return err
		}
		x := &grantsingest.Extractor{
			Store:        storage.New(cfg, storage.Options{UsePathStyle: env.UsePathStyle, Logger: logger}),
			SourceBucket: env.Bucket,
			Logger:       logger,
		}
		return x.Handle(ctx, event)
	}, lambda.WithEnableSIGTERM(func() {
		logger.Info("lambda runtime shutting down")
	}))
}
