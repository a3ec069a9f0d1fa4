// Package credential keeps API sessions in the OS keyring, one per server.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/99designs/keyring"

	"github.com/joescharf/simplejira/internal/client"
)

const serviceName = "simplejira"

// ErrNoSession is returned when no session is stored for a server.
var ErrNoSession = errors.New("no stored session: run 'sj login' first")

// Store reads and writes sessions in a keyring.
type Store struct {
	ring keyring.Keyring
}

// Open opens the platform keyring, falling back to an encrypted file
// under fileDir.
func Open(fileDir string) (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("simplejira-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return New(ring), nil
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

func sessionKey(server string) string {
	return "session:" + strings.TrimRight(strings.TrimSpace(server), "/")
}

// Session returns the session stored for server.
func (s *Store) Session(server string) (client.Session, error) {
	item, err := s.ring.Get(sessionKey(server))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return client.Session{}, ErrNoSession
	}
	if err != nil {
		return client.Session{}, fmt.Errorf("getting session for %s: %w", server, err)
	}

	var session client.Session
	if err := json.Unmarshal(item.Data, &session); err != nil {
		return client.Session{}, fmt.Errorf("decoding session for %s: %w", server, err)
	}
	return session, nil
}

// SaveSession stores session for server, replacing any previous one.
func (s *Store) SaveSession(server string, session client.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	err = s.ring.Set(keyring.Item{
		Key:         sessionKey(server),
		Data:        data,
		Label:       "simplejira session for " + server,
		Description: "API bearer token",
	})
	if err != nil {
		return fmt.Errorf("setting session for %s: %w", server, err)
	}
	return nil
}

// DeleteSession removes the session for server. Deleting a missing session
// is not an error.
func (s *Store) DeleteSession(server string) error {
	err := s.ring.Remove(sessionKey(server))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting session for %s: %w", server, err)
	}
	return nil
}
