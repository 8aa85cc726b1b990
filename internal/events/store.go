package events

import (
	"sort"
	"sync"
	"time"

	"github.com/nisdos/shellsig/internal/model"
)

// recentFailuresCap bounds the per-session failure history kept for display.
const recentFailuresCap = 5

// SessionState is the aggregated view of one shell session.
type SessionState struct {
	Session    string
	Shell      string
	Last       model.CommandResult
	Commands   int
	Failures   int
	Interrupts int
	// RecentFailures holds the newest failed results, oldest first.
	RecentFailures []model.CommandResult
}

// Store aggregates command results per session. Sessions that stop
// reporting expire after the TTL.
type Store struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]*SessionState
}

// NewStore creates a store. A TTL of 0 disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, data: make(map[string]*SessionState)}
}

// Record folds one result into its session's state.
func (s *Store) Record(r model.CommandResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.data[r.Session]
	if !ok {
		st = &SessionState{Session: r.Session, Shell: r.Shell}
		s.data[r.Session] = st
	}
	st.Last = r
	st.Commands++
	switch {
	case r.Interrupted():
		st.Interrupts++
	case r.Failed():
		st.Failures++
		st.RecentFailures = append(st.RecentFailures, r)
		if len(st.RecentFailures) > recentFailuresCap {
			st.RecentFailures = st.RecentFailures[len(st.RecentFailures)-recentFailuresCap:]
		}
	}
}

// Snapshot returns all live sessions sorted by name, expiring stale ones.
func (s *Store) Snapshot(now time.Time) []SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(now, false)
}

// SnapshotFailing returns only sessions whose last command failed.
func (s *Store) SnapshotFailing(now time.Time) []SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(now, true)
}

func (s *Store) snapshotLocked(now time.Time, failingOnly bool) []SessionState {
	if s.ttl > 0 {
		for session, st := range s.data {
			if now.Sub(st.Last.TS) > s.ttl {
				delete(s.data, session)
			}
		}
	}
	result := make([]SessionState, 0, len(s.data))
	for _, st := range s.data {
		if failingOnly && !st.Last.Failed() {
			continue
		}
		cp := *st
		cp.RecentFailures = append([]model.CommandResult(nil), st.RecentFailures...)
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Session < result[j].Session
	})
	return result
}
