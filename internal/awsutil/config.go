// Package awsutil builds AWS SDK configuration shared by the worker and the
// ingest functions.
package awsutil

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

const defaultEdgePort = "4566"

// LoadConfig resolves the default credential chain and region. When running
// against LocalStack (LOCALSTACK_HOSTNAME) every client targets the edge
// endpoint; AWS_ENDPOINT_URL takes precedence when set.
func LoadConfig(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if endpoint := Endpoint(os.LookupEnv); endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}
	return cfg, nil
}

// Endpoint returns the custom endpoint selected by the environment, or "".
func Endpoint(lookup func(string) (string, bool)) string {
	if value, ok := lookup("AWS_ENDPOINT_URL"); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	host, ok := lookup("LOCALSTACK_HOSTNAME")
	if !ok || strings.TrimSpace(host) == "" {
		return ""
	}
	port := defaultEdgePort
	if value, ok := lookup("EDGE_PORT"); ok && strings.TrimSpace(value) != "" {
		port = strings.TrimSpace(value)
	}
	return fmt.Sprintf("http://%s:%s", strings.TrimSpace(host), port)
}
