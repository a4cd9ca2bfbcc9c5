package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"clipcatch/internal/convert"
	"clipcatch/internal/extract"
	"clipcatch/pkg/models"
)

// stubBackend is an in-process extraction backend for engine tests
type stubBackend struct {
	mu           sync.Mutex
	meta         *models.MediaMetadata
	metaErr      error
	downloadErr  error
	produceEmpty bool

	fetchCalls    int32
	downloadCalls int32
	lastDownload  extract.DownloadRequest

	// When set, FetchMetadata signals fetchStarted and blocks until
	// fetchRelease is closed. Used to hold a job live mid-flight.
	fetchStarted chan struct{}
	fetchRelease chan struct{}
}

func (b *stubBackend) FetchMetadata(ctx context.Context, url string) (*models.MediaMetadata, error) {
	atomic.AddInt32(&b.fetchCalls, 1)

	if b.fetchStarted != nil {
		b.fetchStarted <- struct{}{}
		<-b.fetchRelease
	}

	if b.metaErr != nil {
		return nil, b.metaErr
	}

	meta := b.meta.Clone()
	return &meta, nil
}

func (b *stubBackend) Download(ctx context.Context, req extract.DownloadRequest) (string, error) {
	atomic.AddInt32(&b.downloadCalls, 1)
	b.mu.Lock()
	b.lastDownload = req
	b.mu.Unlock()

	if b.downloadErr != nil {
		return "", b.downloadErr
	}

	if req.Progress != nil {
		req.Progress(50, "1.00MiB/s")
		req.Progress(100, "2.00MiB/s")
	}

	out := extract.ResolveOutputPath(req.OutputTemplate, req.Ext)
	data := []byte("videodata")
	if b.produceEmpty {
		data = nil
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return "", err
	}
	return out, nil
}

func (b *stubBackend) lastRequest() extract.DownloadRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastDownload
}

// stubConverter is an in-process transcoder for engine tests
type stubConverter struct {
	available  bool
	err        error
	calls      int32
	duringConv func() // invoked mid-conversion, for phase assertions
}

func (c *stubConverter) Available() bool {
	return c.available
}

func (c *stubConverter) Convert(ctx context.Context, inputPath, title string) (string, error) {
	atomic.AddInt32(&c.calls, 1)

	if !c.available {
		return "", convert.ErrTranscoderMissing
	}
	if c.err != nil {
		return "", c.err
	}
	if c.duringConv != nil {
		c.duringConv()
	}

	out := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".mp3"
	if err := os.WriteFile(out, []byte("audiodata"), 0644); err != nil {
		return "", err
	}
	if err := os.Remove(inputPath); err != nil {
		return "", err
	}
	return out, nil
}

// completionRecorder collects completion events from concurrent jobs
type completionRecorder struct {
	mu      sync.Mutex
	entries []completion
}

type completion struct {
	url     string
	success bool
	detail  string
}

func (r *completionRecorder) record(url string, success bool, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, completion{url: url, success: success, detail: detail})
}

func (r *completionRecorder) all() []completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]completion, len(r.entries))
	copy(out, r.entries)
	return out
}
