package quiz

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the position of a chat in the quiz state machine
type State int

const (
	// StateIdle means the chat has no quiz in progress.
	StateIdle State = iota
	// StateAwaitingDifficulty follows /start until a tier is picked.
	StateAwaitingDifficulty
	// StateAwaitingAnswer means a question is shown and not yet answered.
	StateAwaitingAnswer
	// StateRunComplete means every question of the tier was answered.
	StateRunComplete
)

func (s State) String() string {
	switch s {
	case StateAwaitingDifficulty:
		return "awaiting_difficulty"
	case StateAwaitingAnswer:
		return "awaiting_answer"
	case StateRunComplete:
		return "run_complete"
	default:
		return "idle"
	}
}

// SessionState is the in-memory progress of one chat
type SessionState struct {
	ChatID        int64
	State         State
	Difficulty    int
	HasDifficulty bool
	QuestionIndex int
	Score         int
	TotalAnswered int
	RunID         uuid.UUID
	LastActivity  time.Time
}

type chatSession struct {
	mu     sync.Mutex
	state  SessionState
	active bool
}

// SessionStore owns the per-chat sessions. Each chat has its own lock so
// actions for one chat are applied one at a time while other chats proceed.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*chatSession
	now      func() time.Time
}

// NewSessionStore creates an empty store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*chatSession),
		now:      time.Now,
	}
}

// acquire returns the locked session entry of a chat, creating an inactive
// placeholder when the chat has none.
func (s *SessionStore) acquire(chatID int64) *chatSession {
	for {
		s.mu.Lock()
		entry, ok := s.sessions[chatID]
		if !ok {
			entry = &chatSession{state: SessionState{ChatID: chatID}}
			s.sessions[chatID] = entry
		}
		s.mu.Unlock()

		entry.mu.Lock()

		// The entry may have been evicted between the lookup and the lock.
		s.mu.Lock()
		current := s.sessions[chatID]
		s.mu.Unlock()
		if current == entry {
			return entry
		}
		entry.mu.Unlock()
	}
}

// release unlocks an entry acquired with acquire and drops it when inactive
func (s *SessionStore) release(chatID int64, entry *chatSession) {
	if entry.active {
		entry.state.LastActivity = s.now()
	} else {
		s.mu.Lock()
		if s.sessions[chatID] == entry {
			delete(s.sessions, chatID)
		}
		s.mu.Unlock()
	}
	entry.mu.Unlock()
}

// Get returns a copy of the session of a chat
func (s *SessionStore) Get(chatID int64) (SessionState, bool) {
	s.mu.Lock()
	entry, ok := s.sessions[chatID]
	s.mu.Unlock()
	if !ok {
		return SessionState{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if !entry.active {
		return SessionState{}, false
	}
	return entry.state, true
}

// Len returns the number of active sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle drops sessions whose last activity is older than ttl.
// Sessions that are being processed right now are left alone.
func (s *SessionStore) EvictIdle(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for chatID, entry := range s.sessions {
		if !entry.mu.TryLock() {
			continue
		}
		if entry.state.LastActivity.Before(cutoff) {
			delete(s.sessions, chatID)
			evicted++
		}
		entry.mu.Unlock()
	}
	return evicted
}
