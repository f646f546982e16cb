package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gostjobs/internal/logging"
	"gostjobs/internal/services"
	"gostjobs/internal/testsupport"
)

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, in)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-123")}, nil
}

func TestNotifyExportReadySendsEmail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	api := &mockSES{}
	svc := NewService(cfg, NewSESSender(api, cfg.Email.Source), logging.NewNop())

	id, err := svc.NotifyExportReady(context.Background(), "user@example.org", 42)
	require.NoError(t, err)
	assert.Equal(t, "ses-123", id)

	require.Len(t, api.inputs, 1)
	in := api.inputs[0]
	assert.Equal(t, []string{"user@example.org"}, in.Destination.ToAddresses)
	assert.Equal(t, cfg.Email.Source, aws.ToString(in.Source))
	assert.Equal(t, Subject, aws.ToString(in.Message.Subject.Data))
	assert.Equal(t, "UTF-8", aws.ToString(in.Message.Body.Html.Charset))

	wantArchive, err := BuildURL(cfg.Email.APIDomain, archiveEndpoint)
	require.NoError(t, err)
	assert.Contains(t, aws.ToString(in.Message.Body.Html.Data), wantArchive)
	assert.Contains(t, aws.ToString(in.Message.Body.Text.Data), wantArchive)
}

func TestNotifyExportReadyPropagatesSendFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	api := &mockSES{err: errors.New("throttled")}
	svc := NewService(cfg, NewSESSender(api, cfg.Email.Source), logging.NewNop())

	_, err := svc.NotifyExportReady(context.Background(), "user@example.org", 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrTransport)
	assert.True(t, services.IsRetryable(err))
}

func TestNotifyExportReadyRequiresDomain(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Email.APIDomain = ""
	api := &mockSES{}
	svc := NewService(cfg, NewSESSender(api, cfg.Email.Source), logging.NewNop())

	_, err := svc.NotifyExportReady(context.Background(), "user@example.org", 42)
	assert.ErrorIs(t, err, services.ErrConfiguration)
	assert.Empty(t, api.inputs)
}

func TestNoopSenderReturnsSyntheticID(t *testing.T) {
	id, err := NewNoopSender(nil).Send(context.Background(), "user@example.org", "<p>hi</p>", "hi", Subject)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "noop-"))
}
