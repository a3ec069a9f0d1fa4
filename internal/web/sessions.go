package web

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/joescharf/simplejira/internal/client"
)

// sessionTable maps browser cookies to API sessions. Each browser gets its
// own client.Session; nothing is shared between them.
type sessionTable struct {
	mu       sync.Mutex
	sessions map[string]client.Session
}

func newSessionTable() *sessionTable {
	return &sessionTable{sessions: make(map[string]client.Session)}
}

// create stores s under a new random id. Expired entries are swept on the
// way in, so browsers that never come back do not accumulate.
func (t *sessionTable) create(s client.Session) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	id := hex.EncodeToString(buf)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.purgeExpiredLocked(time.Now())
	t.sessions[id] = s
	return id, nil
}

func (t *sessionTable) purgeExpiredLocked(now time.Time) {
	for id, s := range t.sessions {
		if s.Expired(now) {
			delete(t.sessions, id)
		}
	}
}

func (t *sessionTable) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

func (t *sessionTable) get(id string) (client.Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	return s, ok
}

func (t *sessionTable) delete(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}
