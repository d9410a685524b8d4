package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionTTL = 12 * time.Hour

// Session identifies one logged-in dashboard user. Handlers receive it
// explicitly instead of reaching into shared globals.
type Session struct {
	Token      string
	Username   string
	TelegramID int64
	ExpiresAt  time.Time
}

// Sessions is an in-memory token registry. Sessions do not survive a
// restart; users just log in again.
type Sessions struct {
	mu  sync.RWMutex
	byT map[string]*Session
	now func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{
		byT: make(map[string]*Session),
		now: time.Now,
	}
}

// Create issues a new session token for the given account.
func (s *Sessions) Create(username string, telegramID int64) *Session {
	sess := &Session{
		Token:      uuid.NewString(),
		Username:   username,
		TelegramID: telegramID,
		ExpiresAt:  s.now().Add(sessionTTL),
	}
	s.mu.Lock()
	s.byT[sess.Token] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session for a token, or nil if unknown or expired.
// Expired sessions are removed on access.
func (s *Sessions) Get(token string) *Session {
	s.mu.RLock()
	sess := s.byT[token]
	s.mu.RUnlock()
	if sess == nil {
		return nil
	}
	if s.now().After(sess.ExpiresAt) {
		s.Delete(token)
		return nil
	}
	return sess
}

// Delete removes a session token.
func (s *Sessions) Delete(token string) {
	s.mu.Lock()
	delete(s.byT, token)
	s.mu.Unlock()
}
