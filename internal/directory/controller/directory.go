// Package controller implements the directory's service layer: it loads the
// catalog from a source, keeps the current catalog and search index as an
// immutable snapshot, publishes operator events and derives page views.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/bawsala/internal/directory/catalog"
	e "github.com/gartstein/bawsala/internal/directory/errors"
	"github.com/gartstein/bawsala/internal/directory/events"
	"github.com/gartstein/bawsala/internal/directory/facets"
	"github.com/gartstein/bawsala/internal/directory/models"
	"github.com/gartstein/bawsala/internal/directory/search"
	"go.uber.org/zap"
)

// DownloadFilename is the suggested name for the catalog download.
const DownloadFilename = "companies.json"

type EventProducer interface {
	Produce(ev events.Event)
}

// LoadState is the lifecycle of the catalog behind the service.
type LoadState string

const (
	StateNotLoaded LoadState = "not_loaded"
	StateLoading   LoadState = "loading"
	StateReady     LoadState = "ready"
	StateEmpty     LoadState = "empty"
	StateFailed    LoadState = "failed"
)

// Status is the operator's view of the last load.
type Status struct {
	State      LoadState           `json:"state"`
	Companies  int                 `json:"companies"`
	Rejected   int                 `json:"rejected"`
	Rejections []catalog.Rejection `json:"rejections,omitempty"`
	LoadedAt   *time.Time          `json:"loaded_at,omitempty"`
	Error      string              `json:"error,omitempty"`
	// Serving is true while a catalog, possibly stale, answers requests.
	Serving bool `json:"serving"`
}

type snapshot struct {
	catalog  *catalog.Catalog
	index    *search.Index
	master   facets.Master
	loadedAt time.Time
}

// DirectoryService serves queries from the latest loaded snapshot. Readers
// never block on a reload; the snapshot pointer is swapped once the new
// catalog and index are complete.
type DirectoryService struct {
	source    catalog.Source
	validator *catalog.Validator
	producer  EventProducer
	logger    *zap.Logger

	snap atomic.Pointer[snapshot]

	// loadMu serializes loads.
	loadMu sync.Mutex

	mu        sync.RWMutex
	loading   bool
	lastErr   error
	listeners []func(Status)
}

// NewDirectoryService constructs a DirectoryService reading from source.
// Nothing is loaded until Load is called.
func NewDirectoryService(source catalog.Source, producer EventProducer, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		source:    source,
		validator: catalog.NewValidator(nil),
		producer:  producer,
		logger:    logger.Named("directory_service"),
	}
}

// WithValidator replaces the record validator used by later loads.
func (s *DirectoryService) WithValidator(v *catalog.Validator) *DirectoryService {
	s.validator = v
	return s
}

// OnLoad registers fn to receive the status after every load attempt.
func (s *DirectoryService) OnLoad(fn func(Status)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Load reads and validates the catalog and swaps it in. On failure the
// previous snapshot, if any, keeps serving.
func (s *DirectoryService) Load(ctx context.Context) error {
	err := s.load(ctx)

	st := s.Status()
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(st)
	}
	return err
}

func (s *DirectoryService) load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	records, err := s.source.Records(ctx)
	if err != nil {
		s.fail(err)
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	cat := catalog.Build(records, s.validator)
	for _, r := range cat.Rejections() {
		s.logger.Warn("Rejected company record",
			zap.Int("index", r.Index),
			zap.String("company_id", r.ID),
			zap.String("reason", r.Reason),
		)
		ev := events.NewEvent(events.RecordRejected)
		rejection := r
		ev.Rejection = &rejection
		s.producer.Produce(ev)
	}

	tax := cat.Taxonomy()
	next := &snapshot{
		catalog:  cat,
		index:    search.Build(cat.Companies()),
		master:   facets.Master{Industries: tax.Industries, Subindustries: tax.Subindustries},
		loadedAt: time.Now().UTC(),
	}
	s.snap.Store(next)

	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()

	s.logger.Info("Catalog loaded",
		zap.Int("companies", cat.Len()),
		zap.Int("rejected", len(cat.Rejections())),
	)
	ev := events.NewEvent(events.CatalogLoaded)
	ev.Catalog = &events.CatalogSummary{Companies: cat.Len(), Rejected: len(cat.Rejections())}
	s.producer.Produce(ev)
	return nil
}

// Reload is Load under the operator-facing name.
func (s *DirectoryService) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// LoadWithRetry retries Load with b until it succeeds or ctx ends.
func (s *DirectoryService) LoadWithRetry(ctx context.Context, b backoff.BackOff) error {
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := s.Load(ctx)
		if err != nil {
			s.logger.Warn("Catalog load attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	}, backoff.WithContext(b, ctx))
}

func (s *DirectoryService) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *DirectoryService) fail(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	s.logger.Error("Failed to load catalog", zap.Error(err))
	ev := events.NewEvent(events.CatalogLoadFailed)
	ev.Error = err.Error()
	s.producer.Produce(ev)
}

// Status reports the state of the last load.
func (s *DirectoryService) Status() Status {
	s.mu.RLock()
	loading, lastErr := s.loading, s.lastErr
	s.mu.RUnlock()

	snap := s.snap.Load()
	st := Status{Serving: snap != nil}
	if snap != nil {
		loadedAt := snap.loadedAt
		st.LoadedAt = &loadedAt
		st.Companies = snap.catalog.Len()
		st.Rejections = snap.catalog.Rejections()
		st.Rejected = len(st.Rejections)
	}
	if lastErr != nil {
		st.Error = lastErr.Error()
	}

	switch {
	case loading:
		st.State = StateLoading
	case lastErr != nil:
		st.State = StateFailed
	case snap == nil:
		st.State = StateNotLoaded
	case snap.catalog.Empty():
		st.State = StateEmpty
	default:
		st.State = StateReady
	}
	return st
}

func (s *DirectoryService) notLoaded() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastErr != nil {
		return fmt.Errorf("%w: %w", e.ErrCatalogUnavailable, s.lastErr)
	}
	return fmt.Errorf("%w: catalog not loaded", e.ErrCatalogUnavailable)
}

func (s *DirectoryService) index() *search.Index {
	if snap := s.snap.Load(); snap != nil {
		return snap.index
	}
	return nil
}

// Search runs a free-text query against the current index.
func (s *DirectoryService) Search(ctx context.Context, query string) (models.SearchResultSet, error) {
	return s.index().Search(ctx, query)
}

// SearchAsync runs Search off the caller's goroutine.
func (s *DirectoryService) SearchAsync(ctx context.Context, query string) <-chan search.Response {
	return s.index().SearchAsync(ctx, query)
}

// Get returns one company by id.
func (s *DirectoryService) Get(id string) (models.Company, error) {
	snap := s.snap.Load()
	if snap == nil {
		return models.Company{}, s.notLoaded()
	}
	return snap.catalog.Get(id)
}

// Download returns the validated catalog as pretty-printed JSON.
func (s *DirectoryService) Download() (string, []byte, error) {
	snap := s.snap.Load()
	if snap == nil {
		return "", nil, s.notLoaded()
	}
	data, err := snap.catalog.JSON()
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return DownloadFilename, data, nil
}

// View searches, filters, aggregates and sorts for state.
func (s *DirectoryService) View(ctx context.Context, state ViewState) View {
	hits, err := s.Search(ctx, state.Query)
	if err != nil && !errors.Is(err, e.ErrIndexNotReady) {
		s.logger.Debug("Search failed",
			zap.String("query", state.Query),
			zap.Error(err),
		)
	}
	return s.Compose(state, hits)
}

// Compose derives the view for state from already computed search hits.
func (s *DirectoryService) Compose(state ViewState, hits models.SearchResultSet) View {
	snap := s.snap.Load()
	if snap == nil {
		return unavailable(state, s.notLoaded())
	}
	return Derive(snap.catalog.Companies(), snap.master, state, hits)
}
