package awsutil_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gostjobs/internal/awsutil"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestEndpoint(t *testing.T) {
	for _, tt := range []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unset", map[string]string{}, ""},
		{"localstack default port", map[string]string{"LOCALSTACK_HOSTNAME": "localstack"}, "http://localstack:4566"},
		{"localstack custom port", map[string]string{"LOCALSTACK_HOSTNAME": "localstack", "EDGE_PORT": "4567"}, "http://localstack:4567"},
		{"explicit endpoint wins", map[string]string{"LOCALSTACK_HOSTNAME": "localstack", "AWS_ENDPOINT_URL": "http://minio:9000"}, "http://minio:9000"},
		{"blank hostname", map[string]string{"LOCALSTACK_HOSTNAME": " "}, ""},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, awsutil.Endpoint(lookupFrom(tt.env)))
		})
	}
}

func TestLoadConfigAppliesLocalstackEndpoint(t *testing.T) {
	t.Setenv("AWS_ENDPOINT_URL", "")
	t.Setenv("LOCALSTACK_HOSTNAME", "localstack")
	t.Setenv("EDGE_PORT", "4566")
	t.Setenv("AWS_REGION", "us-west-2")
	t.Setenv("AWS_ACCESS_KEY_ID", "TEST")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "TEST")

	cfg, err := awsutil.LoadConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://localstack:4566", aws.ToString(cfg.BaseEndpoint))
	assert.Equal(t, "us-west-2", cfg.Region)
}
