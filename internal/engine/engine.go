// Package engine coordinates download jobs end to end: classify, fetch
// metadata, resolve a stream format, download, optionally convert to
// audio, and record the outcome.
package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"clipcatch/internal/catalog"
	"clipcatch/internal/classify"
	"clipcatch/internal/convert"
	"clipcatch/internal/extract"
	"clipcatch/internal/resolve"
	"clipcatch/internal/track"
	"clipcatch/pkg/models"
)

var (
	ErrInvalidURL         = errors.New("invalid URL")
	ErrUnsupportedContent = errors.New("unsupported content: only video posts can be downloaded")
	ErrDuplicateJob       = errors.New("a job for this URL is already active")
)

// AudioConverter is the transcoding capability the engine drives for
// audio-only requests.
type AudioConverter interface {
	Available() bool
	Convert(ctx context.Context, inputPath, title string) (string, error)
}

// Events are the engine's only outward channels. Callbacks may fire from
// multiple jobs concurrently; the caller serializes UI-visible effects.
// Nil callbacks are skipped.
type Events struct {
	OnProgress func(url string, percent float64, speed string)
	OnInfo     func(url string, meta models.MediaMetadata)
	OnComplete func(url string, success bool, pathOrReason string)
}

// Job is the engine's view of one admitted request. Snapshot copies are
// handed out to callers; the live instance is mutated only by the worker.
type Job struct {
	ID         string            `json:"id"`
	Request    models.JobRequest `json:"request"`
	State      models.JobState   `json:"state"`
	Error      string            `json:"error,omitempty"`
	Path       string            `json:"path,omitempty"`
	QueuedAt   time.Time         `json:"queuedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
}

// Engine orchestrates concurrent download jobs, one worker per URL
type Engine struct {
	cfg       *models.Config
	backend   extract.Backend
	converter AudioConverter
	store     catalog.Store
	tracker   *track.Tracker
	events    Events
	sem       *semaphore.Weighted

	mu   sync.RWMutex
	jobs map[string]*Job
	wg   sync.WaitGroup
}

// New creates an engine
func New(cfg *models.Config, backend extract.Backend, converter AudioConverter, store catalog.Store, events Events) *Engine {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}

	return &Engine{
		cfg:       cfg,
		backend:   backend,
		converter: converter,
		store:     store,
		tracker:   track.NewTracker(),
		events:    events,
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
		jobs:      make(map[string]*Job),
	}
}

// Tracker exposes the job registry for status reporting.
func (e *Engine) Tracker() *track.Tracker {
	return e.tracker
}

// TranscoderAvailable reports whether audio-only jobs can currently run.
func (e *Engine) TranscoderAvailable() bool {
	return e.converter.Available()
}

// Submit admits a request and launches its worker. Invalid or
// unsupported URLs and duplicates are rejected synchronously and never
// create a job; all later errors surface only through OnComplete.
func (e *Engine) Submit(req models.JobRequest) (string, error) {
	switch classify.Classify(req.URL) {
	case classify.KindInvalid:
		return "", ErrInvalidURL
	case classify.KindUnsupportedMedia:
		return "", ErrUnsupportedContent
	}

	if !e.tracker.TryAdmit(req.URL) {
		return "", ErrDuplicateJob
	}

	job := &Job{
		ID:       uuid.NewString(),
		Request:  req,
		State:    models.StatePending,
		QueuedAt: time.Now(),
	}

	e.mu.Lock()
	e.jobs[job.ID] = job
	e.mu.Unlock()

	e.wg.Add(1)
	go e.run(job)

	return job.ID, nil
}

// Job returns a snapshot of one job
func (e *Engine) Job(id string) (Job, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	job, ok := e.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Jobs returns snapshots of all jobs, oldest first
func (e *Engine) Jobs() []Job {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Job, 0, len(e.jobs))
	for _, job := range e.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].QueuedAt.Before(out[j].QueuedAt)
	})
	return out
}

// Wait blocks until all admitted jobs have reached a terminal state
func (e *Engine) Wait() {
	e.wg.Wait()
}

// run drives one job through its stages. Transitions are strictly
// sequential; no stage is skipped and none runs twice.
func (e *Engine) run(job *Job) {
	defer e.wg.Done()

	url := job.Request.URL
	// Registered first so it runs last: the tracker entry is released as
	// the final step on every exit path, making the URL eligible again.
	defer e.tracker.Release(url)

	if err := e.sem.Acquire(context.Background(), 1); err != nil {
		e.fail(job, err.Error())
		return
	}
	defer e.sem.Release(1)

	e.setState(job, models.StateFetchingMetadata)

	fetchCtx, cancel := context.WithTimeout(context.Background(), e.timeout(e.cfg.FetchTimeoutSec, time.Minute))
	meta, err := e.backend.FetchMetadata(fetchCtx, url)
	cancel()
	if err != nil {
		e.fail(job, err.Error())
		return
	}

	if e.events.OnInfo != nil {
		e.events.OnInfo(url, meta.Clone())
	}

	format := resolve.Pick(meta.Formats, job.Request.Quality, job.Request.AudioOnly)

	e.setState(job, models.StateDownloading)

	dlCtx, cancel := context.WithTimeout(context.Background(), e.timeout(e.cfg.DownloadTimeoutSec, 15*time.Minute))
	path, err := e.backend.Download(dlCtx, extract.DownloadRequest{
		URL:             url,
		FormatID:        format.FormatID,
		Ext:             format.Ext,
		OutputTemplate:  e.outputTemplate(job.Request, meta),
		Overwrite:       job.Request.Overwrite,
		RemoveWatermark: job.Request.RemoveWatermark,
		Progress: func(percent float64, speed string) {
			if e.events.OnProgress != nil {
				e.events.OnProgress(url, percent, speed)
			}
		},
	})
	cancel()
	if err != nil {
		e.fail(job, err.Error())
		return
	}

	if job.Request.AudioOnly {
		e.tracker.MarkConverting(url)
		e.setState(job, models.StateConverting)

		cvCtx, cancel := context.WithTimeout(context.Background(), e.timeout(e.cfg.ConvertTimeoutSec, 5*time.Minute))
		audioPath, err := e.converter.Convert(cvCtx, path, meta.Title)
		cancel()
		if err != nil {
			e.fail(job, err.Error())
			return
		}
		path = audioPath
	}

	e.complete(job, path)
}

// complete verifies the final artifact, persists the record, and emits
// the success event. Verification happens here, not earlier.
func (e *Engine) complete(job *Job, path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		e.fail(job, "produced file is missing or empty: "+path)
		return
	}

	rec := models.DownloadRecord{
		URL:       job.Request.URL,
		Path:      path,
		Success:   true,
		Timestamp: time.Now().UTC(),
		Size:      info.Size(),
	}
	if err := e.store.Insert(rec); err != nil {
		e.fail(job, "failed to record download: "+err.Error())
		return
	}

	e.mu.Lock()
	job.State = models.StateCompleted
	job.Path = path
	job.FinishedAt = time.Now()
	e.mu.Unlock()

	if e.events.OnComplete != nil {
		e.events.OnComplete(job.Request.URL, true, path)
	}
}

// fail transitions a job to Failed and emits the failure event. No
// catalog record is written on any failure path.
func (e *Engine) fail(job *Job, reason string) {
	e.mu.Lock()
	job.State = models.StateFailed
	job.Error = reason
	job.FinishedAt = time.Now()
	e.mu.Unlock()

	if e.events.OnComplete != nil {
		e.events.OnComplete(job.Request.URL, false, reason)
	}
}

func (e *Engine) setState(job *Job, state models.JobState) {
	e.mu.Lock()
	job.State = state
	e.mu.Unlock()
}

// outputTemplate builds the concrete output template for one request.
// Title tokens are resolved here, once, so the produced path is known
// deterministically; the extension token stays for the backend.
func (e *Engine) outputTemplate(req models.JobRequest, meta *models.MediaMetadata) string {
	template := req.OutputTemplate
	if template == "" {
		template = filepath.Join(e.cfg.OutputDir, e.cfg.OutputTemplate)
	}
	return strings.ReplaceAll(template, "%(title)s", convert.Slug(meta.Title))
}

func (e *Engine) timeout(sec int, fallback time.Duration) time.Duration {
	if sec <= 0 {
		return fallback
	}
	return time.Duration(sec) * time.Second
}
