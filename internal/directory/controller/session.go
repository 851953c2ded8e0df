package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gartstein/bawsala/internal/directory/models"
	"github.com/gartstein/bawsala/internal/directory/search"
	"github.com/gartstein/bawsala/internal/directory/sorting"
	"go.uber.org/zap"
)

// DefaultDebounce is the pause after the last keystroke before a query is
// issued.
const DefaultDebounce = 300 * time.Millisecond

// Directory is what a Session needs from the service.
type Directory interface {
	SearchAsync(ctx context.Context, query string) <-chan search.Response
	Compose(state ViewState, hits models.SearchResultSet) View
}

// Session holds one user's page state. Typing is debounced and every issued
// search carries a token; only the response for the latest token is applied,
// so a slow earlier query can never overwrite a newer one.
type Session struct {
	dir      Directory
	debounce time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	state    ViewState
	hits     models.SearchResultSet
	seq      uint64
	timer    *time.Timer
	cancel   context.CancelFunc
	onChange func(View)
	closed   bool
}

// NewSession starts a session in DefaultViewState. A non-positive debounce
// issues searches immediately.
func NewSession(dir Directory, debounce time.Duration, logger *zap.Logger) *Session {
	return &Session{
		dir:      dir,
		debounce: debounce,
		logger:   logger.Named("session"),
		state:    DefaultViewState(),
		hits:     models.NoSearch(),
	}
}

// OnChange registers fn to receive the view after every applied change.
func (s *Session) OnChange(fn func(View)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// State returns the current user-controlled state.
func (s *Session) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current derives the view for the current state and the last applied
// search result.
func (s *Session) Current() View {
	s.mu.Lock()
	state, hits := s.state, s.hits
	s.mu.Unlock()
	return s.dir.Compose(state, hits)
}

// Type records a new query. A blank query clears the search at once and
// drops anything pending; otherwise the search is issued after the debounce.
func (s *Session) Type(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.Query = query
	s.seq++
	token := s.seq
	s.stopPendingLocked()

	if strings.TrimSpace(query) == "" {
		s.hits = models.NoSearch()
		s.mu.Unlock()
		s.notify()
		return
	}
	if s.debounce <= 0 {
		s.mu.Unlock()
		s.issue(token, query)
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.issue(token, query) })
	s.mu.Unlock()
}

func (s *Session) stopPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) issue(token uint64, query string) {
	s.mu.Lock()
	if s.closed || token != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	responses := s.dir.SearchAsync(ctx, query)
	go func() {
		resp, ok := <-responses
		if !ok {
			return
		}
		s.apply(token, resp)
	}()
}

func (s *Session) apply(token uint64, resp search.Response) {
	s.mu.Lock()
	if s.closed || token != s.seq {
		s.mu.Unlock()
		s.logger.Debug("Discarding stale search response",
			zap.String("query", resp.Query),
			zap.Uint64("token", token),
		)
		return
	}
	hits := resp.Result
	if resp.Err != nil && !hits.Failed() {
		hits = models.FailedSearch(resp.Err)
	}
	s.hits = hits
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.notify()
}

// update applies fn to the state and notifies.
func (s *Session) update(fn func(*ViewState)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fn(&s.state)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(s.Current())
	}
}

func (s *Session) ToggleTag(tag string) {
	s.update(func(st *ViewState) { st.Filters = st.Filters.ToggleTag(tag) })
}

// ClearTags drops the tag selection only.
func (s *Session) ClearTags() {
	s.update(func(st *ViewState) { st.Filters = st.Filters.ClearTags() })
}

// ClearAll drops tags, industry and subindustry. The query is kept.
func (s *Session) ClearAll() {
	s.update(func(st *ViewState) { st.Filters = st.Filters.ClearAll() })
}

func (s *Session) SelectIndustry(key string) {
	s.update(func(st *ViewState) { st.Filters = st.Filters.SelectIndustry(key) })
}

func (s *Session) SelectSubindustry(key string) {
	s.update(func(st *ViewState) { st.Filters = st.Filters.SelectSubindustry(key) })
}

func (s *Session) SetOrder(o sorting.Order) {
	s.update(func(st *ViewState) { st.Order = o })
}

// ToggleLocale switches between Arabic and English.
func (s *Session) ToggleLocale() {
	s.update(func(st *ViewState) { st.Locale = st.Locale.Toggle() })
}

// Close stops pending work; later events are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopPendingLocked()
}
