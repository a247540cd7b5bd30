// Package session хранит аутентифицированную личность пользователя и токен сессии.
package session

import (
	"encoding/json"
	"errors"
	"sync"

	"trainsys/client/internal/logging"
	"trainsys/client/internal/storage"
)

// Ключи долговременного хранилища.
const (
	TokenKey    = "sessionId"
	IdentityKey = "userInfo"
)

// Identity описывает пользователя, полученного от сервера при входе.
type Identity struct {
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
	Privilege int    `json:"privilege"`
}

// Session содержит токен и личность; оба поля либо заданы, либо пусты.
type Session struct {
	Token    string
	Identity *Identity
}

// Storage описывает узкий порт долговременного хранилища.
type Storage interface {
	Load(key string) (string, error)
	Save(key, value string) error
	Remove(key string) error
}

// Store держит текущую сессию в памяти и дублирует её в Storage.
// Копия в памяти авторитетна на время жизни процесса.
type Store struct {
	mu      sync.RWMutex
	current Session
	storage Storage
	logger  *logging.Logger
}

// NewStore создаёт Store и однократно восстанавливает сессию из storage.
func NewStore(st Storage, logger *logging.Logger) *Store {
	s := &Store{storage: st, logger: logger}
	s.restore()
	return s
}

func (s *Store) restore() {
	if s.storage == nil {
		return
	}
	token, tokenErr := s.storage.Load(TokenKey)
	raw, identityErr := s.storage.Load(IdentityKey)
	if errors.Is(tokenErr, storage.ErrNotFound) && errors.Is(identityErr, storage.ErrNotFound) {
		return
	}
	if tokenErr != nil || identityErr != nil || token == "" {
		s.logger.Errorf("session restore: incomplete pair (token: %v, identity: %v), dropping", tokenErr, identityErr)
		s.removePersisted()
		return
	}
	var identity Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		s.logger.Errorf("session restore: decode identity: %v, dropping", err)
		s.removePersisted()
		return
	}
	s.current = Session{Token: token, Identity: &identity}
	s.logger.Infof("session restored for user %d", identity.UserID)
}

// Set заменяет текущую сессию целиком и сохраняет её.
func (s *Store) Set(token string, identity Identity) {
	s.mu.Lock()
	s.current = Session{Token: token, Identity: &identity}
	s.mu.Unlock()
	s.persist(token, identity)
}

// Get возвращает копию текущей сессии без обращения к storage.
func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Session{Token: s.current.Token}
	if s.current.Identity != nil {
		identity := *s.current.Identity
		out.Identity = &identity
	}
	return out
}

// Clear удаляет сессию из памяти и storage.
func (s *Store) Clear() {
	s.mu.Lock()
	s.current = Session{}
	s.mu.Unlock()
	s.removePersisted()
}

// IsAuthenticated сообщает, есть ли токен.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token != ""
}

// Token возвращает текущий токен (пустая строка без сессии).
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

func (s *Store) persist(token string, identity Identity) {
	if s.storage == nil {
		return
	}
	data, err := json.Marshal(identity)
	if err != nil {
		s.logger.Errorf("session persist: encode identity: %v", err)
		return
	}
	// при ошибке пара удаляется целиком
	if err := s.storage.Save(IdentityKey, string(data)); err != nil {
		s.logger.Errorf("session persist identity: %v", err)
		s.removePersisted()
		return
	}
	if err := s.storage.Save(TokenKey, token); err != nil {
		s.logger.Errorf("session persist token: %v", err)
		s.removePersisted()
	}
}

func (s *Store) removePersisted() {
	if s.storage == nil {
		return
	}
	if err := s.storage.Remove(TokenKey); err != nil {
		s.logger.Errorf("session remove token: %v", err)
	}
	if err := s.storage.Remove(IdentityKey); err != nil {
		s.logger.Errorf("session remove identity: %v", err)
	}
}
