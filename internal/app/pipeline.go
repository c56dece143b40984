package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/nide-gg/mapsync/internal/domain"
	"github.com/nide-gg/mapsync/internal/ports"
)

// PipelineConfig contains configuration for processing work items.
type PipelineConfig struct {
	BaseURL string

	// Retries is the number of extra download attempts per item.
	// Zero means a failed item is skipped immediately.
	Retries         int
	RetryBackoff    time.Duration
	RetryMaxBackoff time.Duration

	// Verify requires extracted maps to carry a known BSP header.
	Verify bool
}

// ItemResult is the outcome of processing one work item.
type ItemResult struct {
	Item      domain.WorkItem
	URL       string
	Bytes     int64
	Extracted int64
	Attempts  int
	Duration  time.Duration

	// Err is a *domain.ItemError when the item failed.
	Err error
}

// OK reports whether the item was downloaded and extracted.
func (r ItemResult) OK() bool { return r.Err == nil }

// Pipeline runs fetch, extract, verify and cleanup for a single item.
type Pipeline struct {
	config    PipelineConfig
	remote    ports.Remote
	store     ports.MapStore
	extractor ports.Extractor
	logger    ports.Logger
	events    Events
}

// NewPipeline creates a pipeline writing into store.
func NewPipeline(
	config PipelineConfig,
	remote ports.Remote,
	store ports.MapStore,
	extractor ports.Extractor,
	logger ports.Logger,
	events Events,
) *Pipeline {
	if events == nil {
		events = nopEvents{}
	}
	return &Pipeline{
		config:    config,
		remote:    remote,
		store:     store,
		extractor: extractor,
		logger:    logger,
		events:    events,
	}
}

// ArtifactURL joins a FastDL base URL and a file name with exactly one slash.
func ArtifactURL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(name)
}

// Process handles one item. Failures are reported in the result and never
// returned, so the caller can move on to the next item.
func (p *Pipeline) Process(ctx context.Context, item domain.WorkItem) ItemResult {
	start := time.Now()
	res := ItemResult{
		Item: item,
		URL:  ArtifactURL(p.config.BaseURL, item.ArchiveName()),
	}
	defer func() { res.Duration = time.Since(start) }()

	p.events.OnLog("Downloading " + item.Identifier)
	n, attempts, err := p.fetch(ctx, res.URL, item.ArchiveName())
	res.Bytes, res.Attempts = n, attempts
	if err != nil {
		p.fail(&res, domain.StageFetch, err)
		p.events.OnLog(fmt.Sprintf("%s download failed: %v", item.Identifier, err))
		return res
	}

	p.events.OnLog("Extracting " + item.Identifier)
	extracted, stage, err := p.extract(ctx, item)
	res.Extracted = extracted

	// The archive is removed whether or not extraction worked.
	if rmErr := p.store.Remove(item.ArchiveName()); rmErr != nil {
		p.logger.Warn("failed to remove archive",
			ports.String("file", item.ArchiveName()),
			ports.Err(rmErr),
		)
	}

	if err != nil {
		p.fail(&res, stage, err)
		p.events.OnLog(fmt.Sprintf("%s extraction failed: %v", item.Identifier, err))
		return res
	}

	p.logger.Debug("map ready",
		ports.String("map", item.MapName()),
		ports.Int64("compressed_bytes", res.Bytes),
		ports.Int64("bytes", res.Extracted),
	)
	return res
}

func (p *Pipeline) fail(res *ItemResult, stage domain.Stage, err error) {
	res.Err = &domain.ItemError{Identifier: res.Item.Identifier, Stage: stage, Err: err}
	p.logger.Warn("map failed",
		ports.String("map", res.Item.Identifier),
		ports.String("stage", string(stage)),
		ports.Err(err),
	)
}

// fetch downloads artifactURL into the store under name, retrying transient
// failures. Returns bytes written and the number of attempts made.
func (p *Pipeline) fetch(ctx context.Context, artifactURL, name string) (int64, int, error) {
	b := newBackoff(p.config.RetryBackoff, p.config.RetryMaxBackoff)
	attempts := 0

	for {
		attempts++
		n, err := p.download(ctx, artifactURL, name)
		if err == nil {
			return n, attempts, nil
		}
		if attempts > p.config.Retries || ctx.Err() != nil || !retryable(err) {
			return 0, attempts, err
		}

		p.logger.Info("retrying download",
			ports.String("url", artifactURL),
			ports.Int("attempt", attempts+1),
			ports.Duration("backoff", b.Current()),
			ports.Err(err),
		)
		if werr := b.Wait(ctx); werr != nil {
			return 0, attempts, err
		}
	}
}

func (p *Pipeline) download(ctx context.Context, artifactURL, name string) (int64, error) {
	body, err := p.remote.OpenArtifact(ctx, artifactURL)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	dst, err := p.store.Create(name)
	if err != nil {
		return 0, localError{err}
	}

	w := &errWriter{w: dst}
	n, err := io.Copy(w, body)
	if err != nil {
		_ = dst.Abort()
		err = fmt.Errorf("write %s: %w", name, err)
		if w.err != nil {
			return n, localError{err}
		}
		return n, err
	}
	if err := dst.Commit(); err != nil {
		_ = dst.Abort()
		return n, localError{err}
	}
	return n, nil
}

// localError marks a failure of the local store. Another attempt would hit
// the same disk, so it is never retried.
type localError struct{ err error }

func (e localError) Error() string   { return e.err.Error() }
func (e localError) Unwrap() error   { return e.err }
func (e localError) Temporary() bool { return false }

// errWriter remembers the first write error so a failed copy can be blamed
// on the writer rather than the remote body.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	n, err := e.w.Write(b)
	if err != nil && e.err == nil {
		e.err = err
	}
	return n, err
}

type extractResult struct {
	n   int64
	err error
}

// extract decompresses the downloaded archive into the map file. The
// decompression runs on its own goroutine so the caller only waits on it.
func (p *Pipeline) extract(ctx context.Context, item domain.WorkItem) (int64, domain.Stage, error) {
	src, err := p.store.Open(item.ArchiveName())
	if err != nil {
		return 0, domain.StageDecompress, err
	}
	defer src.Close()

	dst, err := p.store.Create(item.MapName())
	if err != nil {
		return 0, domain.StageDecompress, err
	}

	hw := &headerWriter{w: dst}
	done := make(chan extractResult, 1)
	go func() {
		n, err := p.extractor.Extract(ctx, src, hw)
		done <- extractResult{n: n, err: err}
	}()
	res := <-done

	if res.err != nil {
		_ = dst.Abort()
		return res.n, domain.StageDecompress, res.err
	}
	if err := verifyMap(hw.Header(), res.n, p.config.Verify); err != nil {
		_ = dst.Abort()
		return res.n, domain.StageVerify, err
	}
	if err := dst.Commit(); err != nil {
		_ = dst.Abort()
		return res.n, domain.StageDecompress, err
	}
	return res.n, "", nil
}

// retryable reports whether a download error may succeed on another
// attempt. Errors that say otherwise through Temporary() are final, and so
// is every localError.
func retryable(err error) bool {
	var t interface{ Temporary() bool }
	if errors.As(err, &t) {
		return t.Temporary()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
