package content

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gabrielmiguelok/golivefolio/pkg/logging"
	"github.com/gabrielmiguelok/golivefolio/pkg/portfolio"
)

// ErrFetch is matched by every load failure.
var ErrFetch = errors.New("portfolio document unavailable")

// FetchError reports a failed load. The whole document fails together.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrFetch) match any FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// Repository loads the document for one session.
// Load fetches at most once; later calls return the first outcome.
type Repository struct {
	source Source
	logger logging.Logger

	once sync.Once
	doc  *portfolio.Document
	err  error
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithLogger sets the logger used to report load failures.
func WithLogger(logger logging.Logger) RepositoryOption {
	return func(r *Repository) {
		r.logger = logger
	}
}

// NewRepository creates a repository over source.
func NewRepository(source Source, opts ...RepositoryOption) *Repository {
	r := &Repository{
		source: source,
		logger: logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load returns the session's document. The first call performs the fetch;
// there is no retry after a failure.
func (r *Repository) Load(ctx context.Context) (*portfolio.Document, error) {
	r.once.Do(func() {
		r.doc, r.err = r.load(ctx)
		if r.err != nil {
			r.logger.Error("failed to load data",
				logging.String("source", r.source.String()),
				logging.Err(r.err),
			)
		}
	})
	return r.doc, r.err
}

func (r *Repository) load(ctx context.Context) (*portfolio.Document, error) {
	data, err := r.source.Fetch(ctx)
	if err != nil {
		return nil, &FetchError{Source: r.source.String(), Err: err}
	}

	doc, err := portfolio.Parse(data)
	if err != nil {
		return nil, &FetchError{Source: r.source.String(), Err: err}
	}

	return doc, nil
}
