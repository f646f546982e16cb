package testsupport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

// FakeS3 is an in-memory S3 endpoint for tests.
type FakeS3 struct {
	t      testing.TB
	Config aws.Config
	Client *s3.Client
}

// NewFakeS3 starts an in-memory S3 server, creates the named buckets, and
// shuts the server down when the test ends.
func NewFakeS3(t testing.TB, buckets ...string) *FakeS3 {
	t.Helper()

	faker := gofakes3.New(s3mem.New())
	ts := httptest.NewServer(faker.Server())
	t.Cleanup(ts.Close)

	cfg := aws.Config{
		Region:                     "us-west-2",
		Credentials:                credentials.NewStaticCredentialsProvider("TEST", "TEST", "TESTING"),
		BaseEndpoint:               aws.String(ts.URL),
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) { o.UsePathStyle = true })

	fake := &FakeS3{t: t, Config: cfg, Client: client}
	for _, bucket := range buckets {
		if _, err := client.CreateBucket(context.Background(), &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
			t.Fatalf("create bucket %s: %v", bucket, err)
		}
	}
	return fake
}

// Put stores body at bucket/key.
func (f *FakeS3) Put(bucket, key string, body []byte) {
	f.t.Helper()

	_, err := f.Client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		f.t.Fatalf("put s3://%s/%s: %v", bucket, key, err)
	}
}

// Get returns the object at bucket/key and whether it exists.
func (f *FakeS3) Get(bucket, key string) ([]byte, bool) {
	f.t.Helper()

	out, err := f.Client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return nil, false
	}
	if err != nil {
		f.t.Fatalf("get s3://%s/%s: %v", bucket, key, err)
	}
	defer out.Body.Close()
	body, err := io.ReadAll(out.Body)
	if err != nil {
		f.t.Fatalf("read s3://%s/%s: %v", bucket, key, err)
	}
	return body, true
}
