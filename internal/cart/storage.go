package cart

import (
	"errors"
	"sync"

	"github.com/gorilla/sessions"
)

var ErrNoValue = errors.New("no stored cart")

// Storage is where the serialized cart is kept between requests.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrNoValue
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), data...)
	return nil
}

// SessionStorage keeps the cart inside a gorilla session, which the cookie
// store serializes into a signed cookie held by the browser. The caller
// still owns session.Save on the response.
type SessionStorage struct {
	session *sessions.Session
}

func NewSessionStorage(session *sessions.Session) *SessionStorage {
	return &SessionStorage{session: session}
}

func (s *SessionStorage) Load(key string) ([]byte, error) {
	v, ok := s.session.Values[key].(string)
	if !ok {
		return nil, ErrNoValue
	}
	return []byte(v), nil
}

func (s *SessionStorage) Save(key string, data []byte) error {
	s.session.Values[key] = string(data)
	return nil
}
