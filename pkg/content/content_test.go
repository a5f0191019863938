package content

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const docJSON = `{"profile":{"description":"D","contact_text":"C"},"skills":[{"name":"Go"}],"projects":[],"blog":[]}`

// countingSource counts fetches and can be told to fail.
type countingSource struct {
	data  []byte
	err   error
	calls atomic.Int32
}

func (s *countingSource) Fetch(ctx context.Context) ([]byte, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func (s *countingSource) String() string { return "counting" }

func TestNewSource(t *testing.T) {
	assert.IsType(t, &HTTPSource{}, NewSource("https://example.com/data.json"))
	assert.IsType(t, &HTTPSource{}, NewSource("HTTP://example.com/data.json"))
	assert.IsType(t, &FileSource{}, NewSource("data.json"))
	assert.IsType(t, &FileSource{}, NewSource("/srv/site/data.json"))
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(docJSON), 0o644))

	data, err := (&FileSource{Path: path}).Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, docJSON, string(data))
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(docJSON))
	}))
	defer srv.Close()

	data, err := (&HTTPSource{URL: srv.URL + "/data.json", Client: srv.Client()}).Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, docJSON, string(data))

	_, err = (&HTTPSource{URL: srv.URL + "/missing.json", Client: srv.Client()}).Fetch(context.Background())
	assert.ErrorContains(t, err, "404")
}

func TestHTTPSource_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte(" "), maxDocumentSize+1))
	}))
	defer srv.Close()

	_, err := (&HTTPSource{URL: srv.URL, Client: srv.Client()}).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.ErrorContains(t, err, "exceeds 4 MiB")

	repo := NewRepository(&HTTPSource{URL: srv.URL, Client: srv.Client()})
	_, err = repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestRepository_LoadOnce(t *testing.T) {
	src := &countingSource{data: []byte(docJSON)}
	repo := NewRepository(src)

	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "D", doc.Profile.Description)

	again, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, doc, again)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestRepository_FailureIsFinal(t *testing.T) {
	src := &countingSource{err: errors.New("connection refused")}
	repo := NewRepository(src)

	doc, err := repo.Load(context.Background())
	assert.Nil(t, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "counting", fe.Source)

	// No retry: fixing the source does not change the outcome.
	src.err = nil
	src.data = []byte(docJSON)
	_, err = repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestRepository_MalformedDocument(t *testing.T) {
	repo := NewRepository(&countingSource{data: []byte(`not json`)})
	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrFetch)
}

func TestCachedSource(t *testing.T) {
	src := &countingSource{data: []byte(docJSON)}
	cached := NewCachedSource(src)

	for i := 0; i < 3; i++ {
		_, err := cached.Fetch(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), src.calls.Load())

	cached.Invalidate()
	_, err := cached.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, "counting", cached.String())
}

func TestCachedSource_DoesNotCacheFailures(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	cached := NewCachedSource(src)

	_, err := cached.Fetch(context.Background())
	require.Error(t, err)

	src.err = nil
	src.data = []byte(docJSON)
	data, err := cached.Fetch(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(docJSON), 0o644))

	changed := make(chan struct{}, 4)
	w, err := NewWatcher(path, func() { changed <- struct{}{} }, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(docJSON), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("expected change notification")
	}

	cancel()
	require.NoError(t, <-done)
}

// blockingSource waits for its context to end.
type blockingSource struct{}

func (blockingSource) Fetch(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingSource) String() string { return "blocking" }

func TestWithTimeout(t *testing.T) {
	src := &countingSource{data: []byte(docJSON)}
	assert.Same(t, Source(src), WithTimeout(src, 0))

	bounded := WithTimeout(blockingSource{}, 20*time.Millisecond)
	assert.Equal(t, "blocking", bounded.String())

	_, err := bounded.Fetch(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = NewRepository(bounded).Load(context.Background())
	assert.ErrorIs(t, err, ErrFetch)
}
