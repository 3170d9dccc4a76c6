package dashstate

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/zulandar/demodash/internal/localstore"
	"github.com/zulandar/demodash/internal/remote"
	"github.com/zulandar/demodash/internal/store"
)

// SelectOptions configures SelectBackend.
type SelectOptions struct {
	APIURL       string
	ProbeTimeout time.Duration
	Timeout      time.Duration
	LocalDir     string
	Logger       *slog.Logger
}

// SelectBackend probes the API server and returns a remote backend when it
// answers, or the local document store when it doesn't.
func SelectBackend(ctx context.Context, opts SelectOptions) (store.Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	err := remote.Probe(ctx, opts.APIURL, opts.ProbeTimeout)
	if err == nil {
		logger.Info("using remote backend", "url", opts.APIURL)
		return remote.New(opts.APIURL, opts.Timeout), nil
	}
	logger.Info("api unreachable, using local store", "url", opts.APIURL, "dir", opts.LocalDir, "error", err)
	return localstore.Open(opts.LocalDir)
}
