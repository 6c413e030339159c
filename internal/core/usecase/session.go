package usecase

import (
	"sync"

	"github.com/atulgupta100/tariff-watch/internal/core/domain"
)

// Session holds the fingerprint of the last top-level duty search that
// resolved successfully. Suggestion lookups never touch it. There is no
// eviction; each success overwrites the previous fingerprint.
type Session struct {
	mu       sync.Mutex
	last     domain.SearchFingerprint
	recorded bool
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) RecordSuccess(fp domain.SearchFingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = fp
	s.recorded = true
}

func (s *Session) Matches(fp domain.SearchFingerprint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorded && s.last == fp
}
