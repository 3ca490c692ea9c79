package audit

import (
	"context"
	"sort"
	"sync"

	id "medgate/pkg/domain"
	"medgate/pkg/platform/sentinel"
)

// InMemoryStore keeps the initial implementation lightweight and testable.
// It intentionally favors clarity over performance.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.AuditID]Record
	// byTarget holds record ids per target, kept sorted in (timestamp, id)
	// order so queries page chronologically.
	byTarget map[string][]id.AuditID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records:  make(map[id.AuditID]Record),
		byTarget: make(map[string][]id.AuditID),
	}
}

func (s *InMemoryStore) Append(_ context.Context, rec Record) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[rec.ID]; ok {
		return existing, false, nil
	}

	// Copy the details map so later caller mutation cannot rewrite history.
	if rec.Details != nil {
		details := make(map[string]string, len(rec.Details))
		for k, v := range rec.Details {
			details[k] = v
		}
		rec.Details = details
	}

	s.records[rec.ID] = rec
	ids := append(s.byTarget[rec.TargetID], rec.ID)
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.records[ids[i]], s.records[ids[j]]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID.String() < b.ID.String()
	})
	s.byTarget[rec.TargetID] = ids
	return rec, true, nil
}

func (s *InMemoryStore) Get(_ context.Context, auditID id.AuditID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[auditID]; ok {
		return rec, nil
	}
	return Record{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) QueryByTarget(_ context.Context, targetID string, cursor Cursor, limit int) ([]Record, Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// An empty page keeps the caller's cursor so the sequence stays
	// restartable.
	next := cursor
	var page []Record
	for _, recID := range s.byTarget[targetID] {
		rec := s.records[recID]
		if !cursor.IsZero() && !cursor.after(rec) {
			continue
		}
		if limit > 0 && len(page) == limit {
			return page, next, nil
		}
		page = append(page, rec)
		next = Cursor{Timestamp: rec.Timestamp, ID: rec.ID}
	}
	return page, next, nil
}
