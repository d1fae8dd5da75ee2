package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// TokenKey is the fixed identifier of the single secure slot holding the
// session token. It predates this client and must not change, or existing
// installs lose their session.
const TokenKey = "my-jwt"

// ErrNoToken reports an empty slot.
var ErrNoToken = errors.New("no stored token")

// TokenStore is the secure on-device slot for the bearer token. The
// session store is its only writer.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Delete() error
}

// KeyringStore keeps the token in the operating system keyring.
type KeyringStore struct {
	service string
}

func NewKeyringStore(service string) (*KeyringStore, error) {
	if service == "" {
		return nil, fmt.Errorf("keyring service name is empty")
	}
	return &KeyringStore{service: service}, nil
}

func (k *KeyringStore) Save(token string) error {
	if err := keyring.Set(k.service, TokenKey, token); err != nil {
		return fmt.Errorf("failed to save token to keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Load() (string, error) {
	token, err := keyring.Get(k.service, TokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read token from keyring: %w", err)
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (k *KeyringStore) Delete() error {
	err := keyring.Delete(k.service, TokenKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// MemoryStore is a TokenStore for tests and environments without a
// keyring daemon.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.set = token, true
	return nil
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set || m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.set = "", false
	return nil
}
