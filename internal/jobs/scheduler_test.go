package jobs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/demodash/internal/localstore"
	"github.com/zulandar/demodash/internal/models"
	"github.com/zulandar/demodash/internal/remote"
	"github.com/zulandar/demodash/internal/store"
)

type recordingNotifier struct {
	name   string
	err    error
	digest *Digest
}

func (n *recordingNotifier) Name() string { return n.name }

func (n *recordingNotifier) Notify(_ context.Context, d *Digest) error {
	n.digest = d
	return n.err
}

func demoStore(t *testing.T) *localstore.Store {
	t.Helper()
	s, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Replace(context.Background(), models.DemoData()))
	return s
}

func TestScheduler_Add(t *testing.T) {
	s := NewScheduler(nil)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Add("digest", "", noop))
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Add("digest", "0 8 * * 1-5", noop))
	assert.Equal(t, 1, s.Len())

	err := s.Add("mirror", "every minute", noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `jobs: schedule mirror "every minute"`)
	assert.Equal(t, 1, s.Len())
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s := NewScheduler(nil)
	require.NoError(t, s.Add("noop", "* * * * *", func(context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDigestJob_SendsToEveryNotifier(t *testing.T) {
	failing := &recordingNotifier{name: "slack", err: errors.New("boom")}
	ok := &recordingNotifier{name: "discord"}
	job := DigestJob(demoStore(t), []Notifier{failing, ok}, func() time.Time { return march22 }, nil)

	err := job(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	require.NotNil(t, ok.digest)
	assert.Len(t, ok.digest.RFIs, 2)
	assert.Len(t, ok.digest.Tasks, 2)
	assert.Equal(t, 3, ok.digest.Metrics.PendingRFIs)
}

func TestDigestJob_NothingDue(t *testing.T) {
	n := &recordingNotifier{name: "slack"}
	later := func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, DigestJob(demoStore(t), []Notifier{n}, later, nil)(context.Background()))
	assert.Nil(t, n.digest)
}

func TestLoadDigest_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := LoadDigest(context.Background(), remote.New(srv.URL, time.Second), march22)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jobs: digest")
	assert.True(t, store.IsIntegration(err))
}

func TestMirrorJob(t *testing.T) {
	source := demoStore(t)
	dir := t.TempDir()
	mirror, err := localstore.Open(dir)
	require.NoError(t, err)

	require.NoError(t, MirrorJob(source, mirror, nil)(context.Background()))
	assert.Equal(t, source.Snapshot(), mirror.Snapshot())

	reopened, err := localstore.Open(dir)
	require.NoError(t, err)
	assert.Equal(t, source.Snapshot(), reopened.Snapshot())
}
