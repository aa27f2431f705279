package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warmpath/scout-cli/internal/core/domain"
	"github.com/warmpath/scout-cli/internal/core/ports/driven"
)

// Ensure ContactStore implements the interface.
var _ driven.ContactStore = (*ContactStore)(nil)

// ContactStore is an in-memory implementation of driven.ContactStore.
type ContactStore struct {
	mu       sync.RWMutex
	contacts map[string]domain.Contact
}

// NewContactStore creates a new in-memory contact store.
func NewContactStore() *ContactStore {
	return &ContactStore{contacts: make(map[string]domain.Contact)}
}

// Save stores or updates a contact.
func (s *ContactStore) Save(_ context.Context, contact domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[contact.ID] = contact
	return nil
}

// FindByCompany returns contacts whose normalised company matches.
func (s *ContactStore) FindByCompany(_ context.Context, company string) ([]domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := domain.NormalizeCompanyName(company)
	if wanted == "" {
		return nil, nil
	}
	var result []domain.Contact
	for id := range s.contacts {
		contact := s.contacts[id]
		if domain.NormalizeCompanyName(contact.CurrentCompany) == wanted {
			result = append(result, contact)
		}
	}
	sortContacts(result)
	return result, nil
}

// List returns contacts newest first.
func (s *ContactStore) List(_ context.Context, limit int) ([]domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Contact, 0, len(s.contacts))
	for id := range s.contacts {
		result = append(result, s.contacts[id])
	}
	sortContacts(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// sortContacts orders newest first, name as tiebreak for stable output.
func sortContacts(contacts []domain.Contact) {
	sort.Slice(contacts, func(i, j int) bool {
		if !contacts[i].CreatedAt.Equal(contacts[j].CreatedAt) {
			return contacts[i].CreatedAt.After(contacts[j].CreatedAt)
		}
		return contacts[i].Name < contacts[j].Name
	})
}
