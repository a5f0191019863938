// Package content retrieves the portfolio document.
//
// A Source produces the raw JSON bytes; a Repository turns one fetch into a
// document and remembers the outcome for the rest of the session. There is
// no retry: the load is all-or-nothing and happens at most once.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// maxDocumentSize bounds how much of a remote response is read.
const maxDocumentSize = 4 << 20

// ErrTooLarge is returned for a remote document over maxDocumentSize.
var ErrTooLarge = errors.New("document too large")

// Source fetches the raw portfolio document.
type Source interface {
	// Fetch returns the document bytes.
	Fetch(ctx context.Context) ([]byte, error)

	// String describes the location for logs and errors.
	String() string
}

// NewSource returns an HTTPSource for http(s) locations and a FileSource
// for everything else.
func NewSource(location string) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return &HTTPSource{URL: location}
	}
	return &FileSource{Path: location}
}

// FileSource reads the document from the local filesystem.
type FileSource struct {
	Path string
}

// Fetch reads the file.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}

func (s *FileSource) String() string {
	return s.Path
}

// HTTPSource performs a single GET against URL.
type HTTPSource struct {
	URL string

	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// Fetch issues the request. Any non-2xx status is a failure.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("%w: exceeds %d MiB", ErrTooLarge, maxDocumentSize>>20)
	}
	return data, nil
}

func (s *HTTPSource) String() string {
	return s.URL
}

// CachedSource memoizes the bytes of another source until Invalidate is
// called. Failed fetches are not cached.
type CachedSource struct {
	inner Source
	data  []byte
	mu    sync.Mutex
}

// NewCachedSource wraps inner.
func NewCachedSource(inner Source) *CachedSource {
	return &CachedSource{inner: inner}
}

// Fetch returns the cached bytes, fetching them from the inner source on a miss.
func (c *CachedSource) Fetch(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data != nil {
		return c.data, nil
	}

	data, err := c.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.data = data
	return data, nil
}

// Invalidate drops the cached bytes. Documents already loaded by a
// Repository are unaffected.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
}

func (c *CachedSource) String() string {
	return c.inner.String()
}

// WithTimeout bounds every fetch of src by d. A non-positive d returns src
// unchanged.
func WithTimeout(src Source, d time.Duration) Source {
	if d <= 0 {
		return src
	}
	return &timeoutSource{inner: src, timeout: d}
}

type timeoutSource struct {
	inner   Source
	timeout time.Duration
}

func (s *timeoutSource) Fetch(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.Fetch(ctx)
}

func (s *timeoutSource) String() string {
	return s.inner.String()
}
