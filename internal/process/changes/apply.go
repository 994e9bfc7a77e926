package changes

import (
	"context"
	"fmt"
	"sync"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	"github.com/lueurxax/sred-discovery/internal/platform/observability"
)

// AssociationStore persists document-to-project associations. AddAssociation
// reports false when the association already exists.
type AssociationStore interface {
	AddAssociation(ctx context.Context, a domain.Association) (bool, error)
}

// ApplyResult counts what Apply did.
type ApplyResult struct {
	Created int
	Skipped int
}

// Apply writes the additions of set to store. Reapplying the same set
// creates nothing new. New project candidates and narrative impacts are left
// for human review and are not written.
func Apply(ctx context.Context, store AssociationStore, set *domain.ChangeSet) (ApplyResult, error) {
	var res ApplyResult

	if set == nil {
		return res, nil
	}

	for _, add := range set.Additions {
		for _, m := range add.Documents {
			created, err := store.AddAssociation(ctx, domain.Association{
				ProjectID:  add.ProjectID,
				DocumentID: m.DocumentID,
				Similarity: m.Similarity,
				Confidence: m.Confidence,
			})
			if err != nil {
				observability.AssociationsApplied.WithLabelValues("error").Inc()
				return res, fmt.Errorf("add association %s/%s: %w", add.ProjectID, m.DocumentID, err)
			}

			if created {
				res.Created++

				observability.AssociationsApplied.WithLabelValues("created").Inc()
			} else {
				res.Skipped++

				observability.AssociationsApplied.WithLabelValues("skipped").Inc()
			}
		}
	}

	return res, nil
}

// MemoryStore is an in-memory AssociationStore for tests and dry runs.
type MemoryStore struct {
	mu    sync.Mutex
	items map[[2]string]domain.Association
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[[2]string]domain.Association)}
}

// AddAssociation implements AssociationStore.
func (s *MemoryStore) AddAssociation(_ context.Context, a domain.Association) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{a.ProjectID, a.DocumentID}
	if _, ok := s.items[key]; ok {
		return false, nil
	}

	s.items[key] = a

	return true, nil
}

// Len returns the number of stored associations.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}
