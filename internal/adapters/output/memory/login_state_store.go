package memory

import (
	"crypto/rand"
	"sync"

	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"repost-bridge/internal/domain"
	"repost-bridge/internal/ports/output"
)

// Compile-time check to ensure LoginStateStore implements output.LoginStateStore interface
var _ output.LoginStateStore = (*LoginStateStore)(nil)

const (
	// DefaultLoginStateCapacity bounds the number of handshakes waiting for their callback
	DefaultLoginStateCapacity = 1000

	stateTokenLength   = 32
	stateTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// LoginStateStore struct - Output adapter correlating OAuth callbacks with logins.
// The ordered map keeps insertion order, which is the only eviction signal:
// lookups never refresh an entry. There is no expiry timer.
type LoginStateStore struct {
	mu       sync.Mutex
	sessions *orderedmap.OrderedMap[string, domain.LoginSession]
	capacity int
}

// NewLoginStateStore creates a store holding at most capacity sessions.
// A capacity <= 0 falls back to DefaultLoginStateCapacity.
func NewLoginStateStore(capacity int) *LoginStateStore {
	if capacity <= 0 {
		capacity = DefaultLoginStateCapacity
	}

	return &LoginStateStore{
		sessions: orderedmap.New[string, domain.LoginSession](),
		capacity: capacity,
	}
}

// Capacity returns the configured maximum number of sessions
func (s *LoginStateStore) Capacity() int {
	return s.capacity
}

// Insert stores the session under a new random token, evicting the oldest
// inserted session first if the store is full.
func (s *LoginStateStore) Insert(session domain.LoginSession) string {
	token := newStateToken()
	session.StateToken = token

	var (
		evicted    domain.LoginSession
		hasEvicted bool
	)

	s.mu.Lock()
	if s.sessions.Len() >= s.capacity {
		if oldest := s.sessions.Oldest(); oldest != nil {
			evicted, hasEvicted = s.sessions.Delete(oldest.Key)
		}
	}
	s.sessions.Set(token, session)
	s.mu.Unlock()

	if hasEvicted {
		logrus.Debugf("Login state store full, evicted pending login of %s on %s",
			evicted.ChatUserID, evicted.InstanceHost)
	}

	return token
}

// Take looks up and removes the session in one critical section
func (s *LoginStateStore) Take(token string) (domain.LoginSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(token)
}

// Len returns the number of pending sessions
func (s *LoginStateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Len()
}

// newStateToken returns a uniformly distributed alphanumeric token.
// Bytes >= 248 are rejected so that the modulo stays unbiased.
func newStateToken() string {
	const maxUnbiased = 256 - 256%len(stateTokenAlphabet)

	token := make([]byte, 0, stateTokenLength)
	buf := make([]byte, stateTokenLength)
	for len(token) < stateTokenLength {
		// crypto/rand.Read never returns an error
		rand.Read(buf)
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			token = append(token, stateTokenAlphabet[int(b)%len(stateTokenAlphabet)])
			if len(token) == stateTokenLength {
				break
			}
		}
	}

	return string(token)
}
