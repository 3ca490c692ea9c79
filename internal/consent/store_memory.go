package consent

import (
	"context"
	"sync"

	id "medgate/pkg/domain"
	"medgate/pkg/platform/sentinel"
)

// InMemoryStore keeps the initial implementation lightweight and testable.
// It intentionally favors clarity over performance.
type InMemoryStore struct {
	mu       sync.RWMutex
	consents map[id.ConsentID]Consent
	// byPatient preserves insertion order per patient so history listings
	// are stable.
	byPatient map[id.UserID][]id.ConsentID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		consents:  make(map[id.ConsentID]Consent),
		byPatient: make(map[id.UserID][]id.ConsentID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, c Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.consents[c.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	c.Version = 1
	s.consents[c.ID] = c
	s.byPatient[c.PatientID] = append(s.byPatient[c.PatientID], c.ID)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, consentID id.ConsentID) (Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.consents[consentID]; ok {
		return c, nil
	}
	return Consent{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Update(_ context.Context, c Consent) (Consent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.consents[c.ID]
	if !ok {
		return Consent{}, sentinel.ErrNotFound
	}
	if current.Version != c.Version {
		return Consent{}, sentinel.ErrConflict
	}
	c.Version++
	s.consents[c.ID] = c
	return c, nil
}

func (s *InMemoryStore) ListByPatient(_ context.Context, patientID id.UserID) ([]Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byPatient[patientID]
	out := make([]Consent, 0, len(ids))
	for _, cid := range ids {
		out = append(out, s.consents[cid])
	}
	return out, nil
}

func (s *InMemoryStore) ListByPatientGrantee(_ context.Context, patientID, granteeID id.UserID) ([]Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Consent
	for _, cid := range s.byPatient[patientID] {
		c := s.consents[cid]
		if c.GranteeID == granteeID {
			out = append(out, c)
		}
	}
	return out, nil
}
