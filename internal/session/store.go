// Package session keeps the most recent analysis per client session in memory.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finlens/internal/domain"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Entry is the per-session state read by the export endpoints.
type Entry struct {
	Financial    *domain.FinancialAnalysis
	Filename     string
	ArtifactName string
	touched      time.Time
}

// Store is a mutex-guarded map of session id to Entry.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store. A non-positive ttl uses DefaultTTL.
func NewStore(ttl time.Duration, logger *zap.Logger, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		entries: make(map[string]*Entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.New().String()
}

// Valid reports whether id looks like an identifier issued by NewID.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns a copy of the entry for id. Expired entries are treated as absent.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	if s.expired(e) {
		delete(s.entries, id)
		return Entry{}, false
	}
	e.touched = s.now()
	return *e, true
}

// SetFinancial replaces the session's financial analysis.
func (s *Store) SetFinancial(id string, a *domain.FinancialAnalysis, filename string) {
	s.update(id, func(e *Entry) {
		e.Financial = a
		e.Filename = filename
	})
}

// SetArtifact records the name of the session's latest extraction artifact.
func (s *Store) SetArtifact(id, name string) {
	s.update(id, func(e *Entry) { e.ArtifactName = name })
}

func (s *Store) update(id string, fn func(*Entry)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || s.expired(e) {
		e = &Entry{}
		s.entries[id] = e
	}
	fn(e)
	e.touched = s.now()
}

// Len returns the number of entries, including expired ones not yet evicted.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Evict removes expired entries and returns how many were dropped.
func (s *Store) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Run evicts expired entries every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				s.logger.Debug("session.Store: evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

func (s *Store) expired(e *Entry) bool {
	return s.now().Sub(e.touched) > s.ttl
}
