package aorfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ccampo133/auto-aor/internal/window"
)

// DefaultMaxBytes caps remote planning files.
const DefaultMaxBytes = 8 << 20

var (
	// ErrTooLarge is returned when a remote file exceeds the byte limit.
	ErrTooLarge = errors.New("planning file exceeds byte limit")
	// ErrFetch is returned for a non-200 response.
	ErrFetch = errors.New("planning file fetch failed")
)

// Fetcher opens planning files from local paths or http(s) URLs.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher. A non-positive maxBytes selects DefaultMaxBytes.
func NewFetcher(maxBytes int64, logger *slog.Logger) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Open returns a reader for ref, a local path or an http(s) URL.
func (f *Fetcher) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if !isRemote(ref) {
		fh, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", ref, err)
		}
		return fh, nil
	}
	body, err := f.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d from %s", ErrFetch, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%s: %w (%d bytes)", url, ErrTooLarge, f.maxBytes)
	}

	f.logger.Debug("fetched planning file", "url", url, "bytes", len(body), "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}

// LoadParams opens ref and parses it with ParseParams.
func (f *Fetcher) LoadParams(ctx context.Context, ref string) (Params, error) {
	rc, err := f.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	p, err := ParseParams(rc, f.logger.With("file", ref))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	return p, nil
}

// LoadVisibility opens ref and parses it with ParseVisibility.
func (f *Fetcher) LoadVisibility(ctx context.Context, ref string, opts VisibilityOptions) ([]window.Window, error) {
	rc, err := f.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	w, err := ParseVisibility(rc, opts, f.logger.With("file", ref))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	return w, nil
}
