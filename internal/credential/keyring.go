// Package credential persists the session bearer token.
package credential

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
)

const (
	serviceName = "pmdash"

	// sessionKey is the keyring entry holding the bearer token.
	sessionKey = "session-token"
)

// Store reads and writes the session token. It satisfies api.TokenSource.
type Store interface {
	Token() (string, error)
	SetToken(token string) error
	Clear() error
}

// Keyring stores the session token in the system keyring.
type Keyring struct {
	ring keyring.Keyring
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/pmdash/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("pmdash-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// OpenKeyring opens the system keyring.
func OpenKeyring() (*Keyring, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}
	return &Keyring{ring: ring}, nil
}

// NewKeyring wraps an already opened keyring, e.g. keyring.NewArrayKeyring
// in tests.
func NewKeyring(ring keyring.Keyring) *Keyring {
	return &Keyring{ring: ring}
}

// Token returns the stored session token. A missing token is reported as
// an empty string with no error: requests then go out unauthenticated.
func (k *Keyring) Token() (string, error) {
	item, err := k.ring.Get(sessionKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", sessionKey, err)
	}
	return string(item.Data), nil
}

// SetToken stores the session token, written on login.
func (k *Keyring) SetToken(token string) error {
	err := k.ring.Set(keyring.Item{
		Key:   sessionKey,
		Data:  []byte(token),
		Label: "pmdash session",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", sessionKey, err)
	}
	return nil
}

// Clear removes the session token, used on logout. Clearing an absent
// token is not an error.
func (k *Keyring) Clear() error {
	err := k.ring.Remove(sessionKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", sessionKey, err)
	}
	return nil
}

// Memory keeps the token in process memory. Used when no keyring backend
// is available and in tests.
type Memory struct {
	mu    sync.Mutex
	token string
}

func NewMemory(token string) *Memory { return &Memory{token: token} }

func (m *Memory) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *Memory) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Clear() error { return m.SetToken("") }
