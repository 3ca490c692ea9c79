package record

import (
	"context"
	"sync"

	id "medgate/pkg/domain"
	"medgate/pkg/platform/sentinel"
)

// InMemoryStore is a mutex-guarded map store for tests and local runs.
type InMemoryStore struct {
	mu        sync.RWMutex
	resources map[id.ResourceID]ProtectedResource
	byPatient map[id.UserID][]id.ResourceID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		resources: make(map[id.ResourceID]ProtectedResource),
		byPatient: make(map[id.UserID][]id.ResourceID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, res ProtectedResource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[res.ID]; ok {
		return sentinel.ErrAlreadyExists
	}
	res.Version = 1
	res.Metadata = copyMetadata(res.Metadata)
	s.resources[res.ID] = res
	s.byPatient[res.OwnerPatientID] = append(s.byPatient[res.OwnerPatientID], res.ID)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, resourceID id.ResourceID) (ProtectedResource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.resources[resourceID]
	if !ok {
		return ProtectedResource{}, sentinel.ErrNotFound
	}
	res.Metadata = copyMetadata(res.Metadata)
	return res, nil
}

func (s *InMemoryStore) Update(_ context.Context, res ProtectedResource) (ProtectedResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.resources[res.ID]
	if !ok {
		return ProtectedResource{}, sentinel.ErrNotFound
	}
	if current.Version != res.Version {
		return ProtectedResource{}, sentinel.ErrConflict
	}
	res.Version++
	res.Metadata = copyMetadata(res.Metadata)
	s.resources[res.ID] = res
	return res, nil
}

func (s *InMemoryStore) ListByPatient(_ context.Context, patientID id.UserID) ([]ProtectedResource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byPatient[patientID]
	out := make([]ProtectedResource, 0, len(ids))
	for _, rid := range ids {
		res := s.resources[rid]
		res.Metadata = copyMetadata(res.Metadata)
		out = append(out, res)
	}
	return out, nil
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
