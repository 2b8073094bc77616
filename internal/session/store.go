// Package session keeps per-chat preference drafts for the Telegram bot.
package session

import (
	"sync"
	"time"

	"suitcraft-ai/internal/preference"
)

// Draft is what a user has picked so far in one chat.
type Draft struct {
	Prefs preference.Raw

	MessageID      int
	Menu           string // "main" | "occasion" | "color" | "formality" | ...
	AwaitingCustom bool

	UpdatedAt time.Time
}

type Options struct {
	// TTL drops drafts idle for longer than this; zero keeps them forever.
	TTL time.Duration
}

type key struct {
	chatID int64
	userID int64
}

type Store struct {
	mu     sync.Mutex
	drafts map[key]*Draft
	ttl    time.Duration
	now    func() time.Time
}

func NewStore(opts Options) *Store {
	return &Store{
		drafts: make(map[key]*Draft),
		ttl:    opts.TTL,
		now:    time.Now,
	}
}

// Get returns a copy of the draft, creating an empty one when missing.
func (s *Store) Get(chatID, userID int64) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.getOrCreateLocked(key{chatID, userID})
}

// Update applies fn to the stored draft and returns the result.
func (s *Store) Update(chatID, userID int64, fn func(*Draft)) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.getOrCreateLocked(key{chatID, userID})
	if fn != nil {
		fn(d)
	}
	d.UpdatedAt = s.now()
	return *d
}

func (s *Store) Clear(chatID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, key{chatID, userID})
}

// Sweep removes expired drafts and reports how many were dropped.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	n := 0
	for k, d := range s.drafts {
		if d.UpdatedAt.Before(cutoff) {
			delete(s.drafts, k)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

func (s *Store) getOrCreateLocked(k key) *Draft {
	if d, ok := s.drafts[k]; ok {
		if s.ttl <= 0 || !d.UpdatedAt.Before(s.now().Add(-s.ttl)) {
			return d
		}
	}

	d := &Draft{Menu: "main", UpdatedAt: s.now()}
	s.drafts[k] = d
	return d
}
