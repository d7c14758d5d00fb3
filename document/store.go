package document

import (
	"sort"
	"sync"

	"github.com/modforge/core/errors"
	"github.com/modforge/core/jsonval"
	"github.com/modforge/core/logging"
	"github.com/sirupsen/logrus"
)

// Store owns the authoritative in-memory snapshot of every open document.
// Snapshots are only ever swapped whole, with the result of Write, so a
// previously captured value is never corrupted by a later edit.
type Store struct {
	mu     sync.RWMutex
	docs   map[ID]jsonval.Value
	logger *logrus.Entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		docs:   make(map[ID]jsonval.Value),
		logger: logging.NewLogger("document-store"),
	}
}

// Register installs the initial snapshot for a document. Registering an
// already-open document replaces its snapshot, which is how an external
// on-disk reload is folded in.
func (s *Store) Register(id ID, data jsonval.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[id]; exists {
		s.logger.WithField("document", id).Debug("Re-registering document, replacing snapshot")
	}
	s.docs[id] = data
}

// Get returns an independent copy of the document's snapshot. Callers can
// freely mutate the result without reaching the store's internal state.
func (s *Store) Get(id ID) (jsonval.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[id]
	if !ok {
		return nil, errors.UnknownDocument(string(id))
	}
	return data.Clone(), nil
}

// Replace atomically swaps the document's snapshot.
func (s *Store) Replace(id ID, data jsonval.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return errors.UnknownDocument(string(id))
	}
	s.docs[id] = data
	return nil
}

// Unregister drops the document's snapshot.
func (s *Store) Unregister(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
}

// Has reports whether the document is registered.
func (s *Store) Has(id ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[id]
	return ok
}

// IDs returns the registered document identities in sorted order.
func (s *Store) IDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]ID, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
