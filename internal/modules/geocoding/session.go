// README: Debounced search session: the latest query wins, older requests are cancelled.
package geocoding

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"vtcride/internal/logger"
	"vtcride/internal/maps"
)

const DefaultDebounce = 300 * time.Millisecond

// Update is one state change of a suggestion list.
type Update struct {
	Query      string                `json:"query"`
	Candidates []maps.PlaceCandidate `json:"candidates"`
	Loading    bool                  `json:"loading"`
	Open       bool                  `json:"open"`
}

type SessionConfig struct {
	Debounce    time.Duration
	MinQueryLen int
	Logger      logger.Logger
}

// Session tracks one input field. Every Type call gets a fresh token and
// cancel handle; only the response carrying the current token may publish.
type Session struct {
	searcher Searcher
	cfg      SessionConfig
	publish  func(Update)
	parent   context.Context

	// pubMu serializes publishing and is always taken before mu.
	pubMu sync.Mutex

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	timer  *time.Timer
	closed bool
}

// NewSession publishes through fn, which must not call back into the session.
func NewSession(ctx context.Context, searcher Searcher, cfg SessionConfig, fn func(Update)) *Session {
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if cfg.MinQueryLen <= 0 {
		cfg.MinQueryLen = DefaultMinQueryLen
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if fn == nil {
		fn = func(Update) {}
	}
	return &Session{searcher: searcher, cfg: cfg, publish: fn, parent: ctx}
}

// Type records a new query. Short queries clear the list at once; longer
// ones publish a loading state and run after the debounce window.
func (s *Session) Type(query string) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	token := s.supersedeLocked()
	if utf8.RuneCountInString(strings.TrimSpace(query)) < s.cfg.MinQueryLen {
		s.mu.Unlock()
		s.publish(Update{Query: query, Candidates: []maps.PlaceCandidate{}})
		return
	}
	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.timer = time.AfterFunc(s.cfg.Debounce, func() { s.run(ctx, cancel, token, query) })
	s.mu.Unlock()

	s.publish(Update{Query: query, Candidates: []maps.PlaceCandidate{}, Loading: true})
}

// Dismiss closes the list. Pending work is superseded so a late response
// cannot reopen it.
func (s *Session) Dismiss() {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.supersedeLocked()
	s.mu.Unlock()

	s.publish(Update{Candidates: []maps.PlaceCandidate{}})
}

// Close cancels everything. Nothing is published afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.supersedeLocked()
	s.closed = true
}

func (s *Session) supersedeLocked() uint64 {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	return s.seq
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, token uint64, query string) {
	defer cancel()
	if ctx.Err() != nil {
		return
	}

	candidates, err := s.searcher.Search(ctx, query)
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return
	}

	u := Update{Query: query, Candidates: candidates}
	if err != nil {
		s.cfg.Logger.Warn("place search failed", logger.String("query", query), logger.Error(err))
		u.Candidates = []maps.PlaceCandidate{}
	}
	if u.Candidates == nil {
		u.Candidates = []maps.PlaceCandidate{}
	}
	u.Open = len(u.Candidates) > 0
	s.emit(token, u)
}

func (s *Session) emit(token uint64, u Update) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	current := !s.closed && token == s.seq
	if current {
		s.cancel = nil
		s.timer = nil
	}
	s.mu.Unlock()

	if current {
		s.publish(u)
	}
}
