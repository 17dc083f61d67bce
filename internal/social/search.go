package social

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/janisto/fitsocial/internal/domain"
)

// SearchResult is the outcome of one SearchSession query. Stale is true when
// a newer query was applied first; Profiles then holds the newer result.
type SearchResult struct {
	Seq      uint64
	Profiles []domain.Profile
	Stale    bool
}

// SearchSession serves incremental search. Every query gets a higher
// sequence number and cancels the one before it; a response older than the
// last applied one is never applied.
type SearchSession struct {
	dir *Directory

	mu      sync.Mutex
	issued  uint64
	applied uint64
	cancel  context.CancelFunc
	results []domain.Profile
}

// NewSearchSession starts an empty session.
func (d *Directory) NewSearchSession() *SearchSession {
	return &SearchSession{dir: d}
}

// Query runs a search for q.
func (s *SearchSession) Query(ctx context.Context, q string) (SearchResult, error) {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	if s.cancel != nil {
		s.cancel()
	}
	qctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	found, err := s.dir.Search(qctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()
	if seq == s.issued {
		s.cancel = nil
	}

	if seq <= s.applied || (err != nil && seq < s.issued && errors.Is(err, context.Canceled)) {
		return SearchResult{Seq: seq, Profiles: slices.Clone(s.results), Stale: true}, nil
	}
	if err != nil {
		return SearchResult{Seq: seq}, err
	}
	s.applied = seq
	s.results = found
	return SearchResult{Seq: seq, Profiles: slices.Clone(found)}, nil
}

// Results returns the last applied result.
func (s *SearchSession) Results() []domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.results)
}

// Close cancels any query in flight.
func (s *SearchSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
