package workflow_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gostjobs/internal/config"
	"gostjobs/internal/logging"
	"gostjobs/internal/queue"
	"gostjobs/internal/services"
	"gostjobs/internal/storage"
	"gostjobs/internal/testsupport"
	"gostjobs/internal/workflow"
)

const (
	bucket      = "arpa-exports"
	zipKey      = "orgs/7/export.zip"
	metadataKey = "orgs/7/metadata.csv"
	taskBody    = `{"s3":{"bucket":"arpa-exports","zip_key":"orgs/7/export.zip","metadata_key":"orgs/7/metadata.csv"},"organization_id":7,"user_email":"user@example.org"}`
	manifestCSV = "upload_id,path_in_zip\n" +
		"101,Agency A/EC 1/report-101.xlsm\n" +
		"102,Agency B/EC 2/report-102.xlsm\n"
)

type mockQueue struct {
	messages   []*queue.Message
	receiveErr error
	deleteErr  error
	deleted    []string
	onEmpty    func()
}

func (q *mockQueue) Receive(context.Context) (*queue.Message, error) {
	if q.receiveErr != nil {
		err := q.receiveErr
		q.receiveErr = nil
		return nil, err
	}
	if len(q.messages) == 0 {
		if q.onEmpty != nil {
			q.onEmpty()
		}
		return nil, nil
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return msg, nil
}

func (q *mockQueue) Delete(_ context.Context, receipt string) error {
	if q.deleteErr != nil {
		return q.deleteErr
	}
	q.deleted = append(q.deleted, receipt)
	return nil
}

type notifyCall struct {
	recipient string
	orgID     int64
}

type mockNotifier struct {
	calls []notifyCall
	err   error
}

func (n *mockNotifier) NotifyExportReady(_ context.Context, recipient string, organizationID int64) (string, error) {
	n.calls = append(n.calls, notifyCall{recipient: recipient, orgID: organizationID})
	if n.err != nil {
		return "", n.err
	}
	return "msg-1", nil
}

type countingStore struct {
	*storage.Client
	uploads int
}

func (s *countingStore) Upload(ctx context.Context, bucket, key string, body io.Reader, opts ...storage.UploadOption) error {
	s.uploads++
	return s.Client.Upload(ctx, bucket, key, body, opts...)
}

type harness struct {
	cfg      *config.Config
	fake     *testsupport.FakeS3
	store    *countingStore
	queue    *mockQueue
	notifier *mockNotifier
	manager  *workflow.Manager
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	fake := testsupport.NewFakeS3(t, bucket)
	h := &harness{
		cfg:      cfg,
		fake:     fake,
		store:    &countingStore{Client: storage.New(fake.Config, storage.Options{UsePathStyle: true})},
		queue:    &mockQueue{messages: []*queue.Message{{ID: "m-1", ReceiptHandle: "rh-1", Body: taskBody, ReceiveCount: 1}}},
		notifier: &mockNotifier{},
	}
	clock := func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC) }
	h.manager = workflow.NewManager(cfg, h.queue, h.store, h.notifier, logging.NewNop(), workflow.WithClock(clock))
	return h
}

func (h *harness) writeSource(t *testing.T, id, content string) {
	t.Helper()
	testsupport.WriteContent(t, filepath.Join(h.cfg.Paths.SourceDir, id+".xlsm"), content)
}

func TestHandleOneBuildsNewArchive(t *testing.T) {
	h := newHarness(t)
	h.fake.Put(bucket, metadataKey, []byte(manifestCSV))
	h.writeSource(t, "101", "workbook 101")
	h.writeSource(t, "102", "workbook 102")

	require.NoError(t, h.manager.HandleOne(context.Background()))

	data, ok := h.fake.Get(bucket, zipKey)
	require.True(t, ok, "archive should be uploaded")
	names, contents := testsupport.ReadZipBytes(t, data)
	assert.Equal(t, []string{"Agency A/EC 1/report-101.xlsm", "Agency B/EC 2/report-102.xlsm"}, names)
	assert.Equal(t, "workbook 101", contents["Agency A/EC 1/report-101.xlsm"])

	assert.Equal(t, 1, h.store.uploads)
	assert.Equal(t, []string{"rh-1"}, h.queue.deleted)
	require.Len(t, h.notifier.calls, 1)
	assert.Equal(t, notifyCall{recipient: "user@example.org", orgID: 7}, h.notifier.calls[0])

	status := h.manager.Status()
	assert.Equal(t, 1, status.Processed)
	assert.Equal(t, 0, status.Failed)
	require.NotNil(t, status.LastTask)
	assert.Equal(t, queue.OrganizationID(7), status.LastTask.OrganizationID)
}

func TestHandleOneSkipsUploadWhenUnchanged(t *testing.T) {
	h := newHarness(t)
	h.fake.Put(bucket, metadataKey, []byte(manifestCSV))
	existing := testsupport.ZipBytes(t,
		testsupport.ZipEntry{Name: "Agency A/EC 1/report-101.xlsm", Content: "old 101"},
		testsupport.ZipEntry{Name: "Agency B/EC 2/report-102.xlsm", Content: "old 102"},
	)
	h.fake.Put(bucket, zipKey, existing)

	require.NoError(t, h.manager.HandleOne(context.Background()))

	assert.Equal(t, 0, h.store.uploads)
	data, ok := h.fake.Get(bucket, zipKey)
	require.True(t, ok)
	assert.Equal(t, existing, data)
	assert.Len(t, h.notifier.calls, 1, "email is sent even when nothing changed")
	assert.Equal(t, []string{"rh-1"}, h.queue.deleted)
}

func TestHandleOneAppendsToExistingArchive(t *testing.T) {
	h := newHarness(t)
	h.fake.Put(bucket, metadataKey, []byte(manifestCSV))
	h.fake.Put(bucket, zipKey, testsupport.ZipBytes(t,
		testsupport.ZipEntry{Name: "Agency A/EC 1/report-101.xlsm", Content: "old 101"},
	))
	h.writeSource(t, "102", "workbook 102")

	require.NoError(t, h.manager.HandleOne(context.Background()))

	data, ok := h.fake.Get(bucket, zipKey)
	require.True(t, ok)
	names, contents := testsupport.ReadZipBytes(t, data)
	assert.Equal(t, []string{"Agency A/EC 1/report-101.xlsm", "Agency B/EC 2/report-102.xlsm"}, names)
	assert.Equal(t, "old 101", contents["Agency A/EC 1/report-101.xlsm"])
}

func TestHandleOneDerivesExtensionFromPath(t *testing.T) {
	h := newHarness(t, testsupport.WithSourceExtension(""))
	h.fake.Put(bucket, metadataKey, []byte("upload_id,path_in_zip\n"+
		"201,Agency C/EC 3/budget.xlsx\n"+
		"202,Agency C/EC 3/notes.csv\n"))
	testsupport.WriteFile(t, filepath.Join(h.cfg.Paths.SourceDir, "201.xlsx"), 64*1024)
	testsupport.WriteContent(t, filepath.Join(h.cfg.Paths.SourceDir, "202.csv"), "a,b\n")

	require.NoError(t, h.manager.HandleOne(context.Background()))

	data, ok := h.fake.Get(bucket, zipKey)
	require.True(t, ok)
	_, contents := testsupport.ReadZipBytes(t, data)
	assert.Len(t, contents["Agency C/EC 3/budget.xlsx"], 64*1024)
	assert.Equal(t, "a,b\n", contents["Agency C/EC 3/notes.csv"])
}

func TestHandleOneEmbedsManifestSnapshot(t *testing.T) {
	h := newHarness(t, testsupport.WithIncludeManifest(true))
	h.fake.Put(bucket, metadataKey, []byte(manifestCSV))
	h.writeSource(t, "101", "workbook 101")
	h.writeSource(t, "102", "workbook 102")

	require.NoError(t, h.manager.HandleOne(context.Background()))

	data, ok := h.fake.Get(bucket, zipKey)
	require.True(t, ok)
	names, contents := testsupport.ReadZipBytes(t, data)
	snapshot := "metadata/upload_metadata_2024-03-09-14-05-06.csv"
	assert.Contains(t, names, snapshot)
	assert.Equal(t, manifestCSV, contents[snapshot])
}

func TestSnapshotNameUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	got := workflow.SnapshotName(time.Date(2024, 1, 2, 22, 0, 0, 0, loc))
	assert.Equal(t, "metadata/upload_metadata_2024-01-03-03-00-00.csv", got)
}

func TestHandleOneLeavesMalformedMessage(t *testing.T) {
	for name, body := range map[string]string{
		"not json":      "definitely not json",
		"missing email": `{"s3":{"bucket":"b","zip_key":"z","metadata_key":"m"},"organization_id":7}`,
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.queue.messages = []*queue.Message{{ID: "m-bad", ReceiptHandle: "rh-bad", Body: body}}

			require.NoError(t, h.manager.HandleOne(context.Background()))
			assert.Empty(t, h.queue.deleted)
			assert.Empty(t, h.notifier.calls)
		})
	}
}

func TestHandleOneKeepsMessageOnProcessingError(t *testing.T) {
	h := newHarness(t)
	h.fake.Put(bucket, metadataKey, []byte(manifestCSV))
	h.writeSource(t, "101", "workbook 101")

	err := h.manager.HandleOne(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrMissingSource)

	assert.Empty(t, h.queue.deleted)
	assert.Empty(t, h.notifier.calls)
	assert.Equal(t, 0, h.store.uploads)
	_, uploaded := h.fake.Get(bucket, zipKey)
	assert.False(t, uploaded)

	status := h.manager.Status()
	assert.Equal(t, 1, status.Failed)
	assert.NotEmpty(t, status.LastError)
}

func TestHandleOneMissingManifest(t *testing.T) {
	h := newHarness(t)

	err := h.manager.HandleOne(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrTransport)
	assert.Empty(t, h.queue.deleted)
}

func TestHandleOneNotificationFailureKeepsMessage(t *testing.T) {
	h := newHarness(t)
	h.fake.Put(bucket, metadataKey, []byte("upload_id,path_in_zip\n"))
	h.notifier.err = errors.New("ses unavailable")

	err := h.manager.HandleOne(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ses unavailable")
	assert.Empty(t, h.queue.deleted)
}

func TestHandleOneDeleteFailure(t *testing.T) {
	h := newHarness(t)
	h.fake.Put(bucket, metadataKey, []byte("upload_id,path_in_zip\n"))
	h.queue.deleteErr = errors.New("receipt expired")

	err := h.manager.HandleOne(context.Background())
	require.Error(t, err)
	assert.Len(t, h.notifier.calls, 1)
}

func TestHandleOneEmptyBatch(t *testing.T) {
	h := newHarness(t)
	h.queue.messages = nil

	require.NoError(t, h.manager.HandleOne(context.Background()))
	assert.Empty(t, h.notifier.calls)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	h := newHarness(t)
	h.cfg.Workflow.ErrorRetryInterval = 0
	h.fake.Put(bucket, metadataKey, []byte("upload_id,path_in_zip\n"))
	h.queue.receiveErr = errors.New("transient receive failure")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.queue.onEmpty = cancel

	done := make(chan error, 1)
	go func() { done <- h.manager.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Equal(t, []string{"rh-1"}, h.queue.deleted)
	assert.True(t, strings.Contains(h.manager.Status().LastError, "transient receive failure"))
}
