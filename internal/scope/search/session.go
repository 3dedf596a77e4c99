package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dsjohal14/prepsearch/internal/libs/obs"
	"github.com/dsjohal14/prepsearch/internal/scope/catalog"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultFetchLimit bounds how many tests a session loads
const DefaultFetchLimit = 1000

// ErrNoRepository is returned when a session has nothing to load from
var ErrNoRepository = errors.New("no test repository configured")

// Repository lists tests for a session
type Repository interface {
	ListTests(ctx context.Context, limit int) ([]catalog.TestDocument, error)
}

// State is the lifecycle state of a session
type State string

// Session states
const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Status is a point-in-time view of a session
type Status struct {
	State     State     `json:"state"`
	Documents int       `json:"documents"`
	Indexless int       `json:"indexless"`
	Error     string    `json:"error,omitempty"`
	BuiltAt   time.Time `json:"built_at"`
}

// Results is the answer to one session query
type Results struct {
	Groups []ResultGroup
	State  State

	// Loading is set while no index is available yet. A reload over a
	// built index keeps answering from it and does not report loading.
	Loading bool

	// FetchFailed is set when the last load failed and no tests are available
	FetchFailed bool
}

// SessionConfig holds the dependencies of a Session
type SessionConfig struct {
	Repository Repository
	Cache      *Cache
	Engine     *Engine
	Logger     zerolog.Logger
	Metrics    *obs.Metrics

	// Limit caps the number of tests fetched (defaults to DefaultFetchLimit)
	Limit int

	// FetchTimeout bounds a shared fetch; zero means no bound
	FetchTimeout time.Duration
}

// Session loads tests once, keeps their index in a Cache and answers
// queries against it. Queries made before the index is ready see an
// empty index.
type Session struct {
	repo    Repository
	cache   *Cache
	engine  *Engine
	logger  zerolog.Logger
	metrics *obs.Metrics
	limit   int
	timeout time.Duration

	loads singleflight.Group

	mu      sync.RWMutex
	state   State
	lastErr error
}

// NewSession creates a session. Nil Cache or Engine get fresh defaults.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Cache == nil {
		cfg.Cache = NewCache()
	}
	if cfg.Engine == nil {
		cfg.Engine = NewEngine(cfg.Logger, cfg.Metrics)
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultFetchLimit
	}

	s := &Session{
		repo:    cfg.Repository,
		cache:   cfg.Cache,
		engine:  cfg.Engine,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		limit:   cfg.Limit,
		timeout: cfg.FetchTimeout,
		state:   StateIdle,
	}
	if s.cache.Built() {
		s.state = StateReady
	}
	return s
}

// Open loads and indexes tests unless an index already exists.
// Concurrent callers share one fetch.
func (s *Session) Open(ctx context.Context) error {
	if s.cache.Built() {
		return nil
	}
	return s.load(ctx, false)
}

// Reload fetches tests again and rebuilds the index
func (s *Session) Reload(ctx context.Context) error {
	return s.load(ctx, true)
}

// load runs one fetch per key for all concurrent callers. The fetch is
// detached from the caller's ctx: a caller giving up returns ctx.Err()
// without touching the shared state or the current index.
func (s *Session) load(ctx context.Context, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := "open"
	if force {
		key = "reload"
	}

	ch := s.loads.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := s.fetchContext(ctx)
		defer cancel()

		if !force && s.cache.Built() {
			return nil, nil
		}
		if s.repo == nil {
			s.fail(ErrNoRepository)
			return nil, ErrNoRepository
		}

		s.setState(StateLoading, nil)
		start := time.Now()
		tests, err := s.repo.ListTests(fetchCtx, s.limit)
		s.metrics.RecordFetch(err, time.Since(start))
		if err != nil {
			s.logger.Error().Err(err).Int("limit", s.limit).Msg("failed to load tests for search")
			s.fail(err)
			return nil, err
		}
		if len(tests) > s.limit {
			tests = tests[:s.limit]
		}

		fp := Fingerprint(tests)
		if force && s.cache.Built() && fp == s.cache.Fingerprint() {
			s.logger.Info().Int("doc_count", len(tests)).Msg("tests unchanged, keeping search index")
			s.setState(StateReady, nil)
			return nil, nil
		}

		index := s.engine.BuildIndex(tests)
		s.cache.Store(index, fp)
		s.setState(StateReady, nil)

		s.logger.Info().
			Int("doc_count", len(index)).
			Int("indexless", Indexless(index)).
			Dur("took", time.Since(start)).
			Msg("search index ready")
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug().Str("load", key).Msg("joined in-flight load")
		}
		return res.Err
	case <-ctx.Done():
		s.logger.Debug().Str("load", key).Err(ctx.Err()).Msg("caller left in-flight load")
		return ctx.Err()
	}
}

func (s *Session) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		return context.WithTimeout(detached, s.timeout)
	}
	return context.WithCancel(detached)
}

// fail leaves the session with no tests available
func (s *Session) fail(err error) {
	s.cache.Clear()
	s.setState(StateFailed, err)
}

func (s *Session) setState(state State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.lastErr = err
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Status returns the session state with index statistics
func (s *Session) Status() Status {
	s.mu.RLock()
	state, lastErr := s.state, s.lastErr
	s.mu.RUnlock()

	index := s.cache.Snapshot()
	st := Status{
		State:     state,
		Documents: len(index),
		Indexless: Indexless(index),
		BuiltAt:   s.cache.BuiltAt(),
	}
	if lastErr != nil {
		st.Error = lastErr.Error()
	}
	return st
}

// Tests returns the tests currently held by the session
func (s *Session) Tests() []catalog.TestDocument {
	return Tests(s.cache.Snapshot())
}

// Search runs term against the current index and ranks the groups
func (s *Session) Search(term string, filters Filters, mode SortMode) Results {
	state := s.State()
	index := s.cache.Snapshot()
	built := s.cache.Built()
	groups := s.engine.Search(term, index, filters)
	return Results{
		Groups:      Rank(groups, mode),
		State:       state,
		Loading:     !built && (state == StateIdle || state == StateLoading),
		FetchFailed: state == StateFailed,
	}
}

// Suggest returns suggestions from the current index
func (s *Session) Suggest(partial string) []string {
	return s.engine.Suggest(s.cache.Snapshot(), partial)
}
