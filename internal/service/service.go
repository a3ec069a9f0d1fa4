// Package service implements the tracker operations on top of a Store. Every
// write runs its field rules first, then resolves references, then persists
// in a single store call so a failed operation leaves nothing behind.
package service

import (
	"time"

	"github.com/joescharf/simplejira/internal/store"
	"github.com/joescharf/simplejira/internal/tracker"
)

// Service is the local tracker backed by a Store.
type Service struct {
	store    store.Store
	resolver *Resolver
	now      func() time.Time
}

var _ tracker.Tracker = (*Service)(nil)

// New returns a Service over st.
func New(st store.Store) *Service {
	return &Service{
		store:    st,
		resolver: NewResolver(st),
		now:      func() time.Time { return time.Now().UTC() },
	}
}
