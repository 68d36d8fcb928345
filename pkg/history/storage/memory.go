package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"dorfbook/simparse/pkg/history"
)

// DefaultMemoryMaxRecords bounds a MemoryStorage created with a
// non-positive limit.
const DefaultMemoryMaxRecords = 10000

// MemoryStorage keeps records in insertion order and evicts the oldest
// once MaxRecords is reached.
type MemoryStorage struct {
	records    []*history.Record
	maxRecords int
	closed     bool
	mu         sync.RWMutex
}

// NewMemoryStorage creates an in-memory store holding at most maxRecords.
func NewMemoryStorage(maxRecords int) *MemoryStorage {
	if maxRecords <= 0 {
		maxRecords = DefaultMemoryMaxRecords
	}
	return &MemoryStorage{
		records:    make([]*history.Record, 0, min(maxRecords, 1024)),
		maxRecords: maxRecords,
	}
}

var errClosed = errors.New("store is closed")

// Store appends a copy of record.
func (s *MemoryStorage) Store(ctx context.Context, record *history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return history.NewStorageError("memory", "store", errClosed)
	}

	recordCopy := *record
	s.records = append(s.records, &recordCopy)
	if over := len(s.records) - s.maxRecords; over > 0 {
		clear(s.records[:over])
		s.records = s.records[over:]
	}
	return nil
}

// Query returns copies of matching records, newest first.
func (s *MemoryStorage) Query(ctx context.Context, query *history.Query) ([]*history.Record, error) {
	if query == nil {
		query = &history.Query{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*history.Record{}
	for i := len(s.records) - 1; i >= 0; i-- {
		if matchesQuery(s.records[i], query) {
			recordCopy := *s.records[i]
			results = append(results, &recordCopy)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RecordedAt.After(results[j].RecordedAt)
	})

	start := query.Offset
	if start > len(results) {
		return []*history.Record{}, nil
	}
	results = results[start:]

	limit := query.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, query *history.Query) (int64, error) {
	if query == nil {
		query = &history.Query{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}
	return count, nil
}

// Delete removes matching records.
func (s *MemoryStorage) Delete(ctx context.Context, query *history.Query) (int64, error) {
	if query == nil {
		query = &history.Query{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	clear(s.records[len(kept):])
	s.records = kept
	return deleted, nil
}

// Ping fails once the store is closed.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return history.NewStorageError("memory", "ping", errClosed)
	}
	return nil
}

// Close drops all records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.closed = true
	return nil
}

// Size returns the number of records held.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func matchesQuery(record *history.Record, query *history.Query) bool {
	if query.Since != nil && record.RecordedAt.Before(*query.Since) {
		return false
	}
	if query.Until != nil && record.RecordedAt.After(*query.Until) {
		return false
	}
	if query.Origin != "" && record.Origin != query.Origin {
		return false
	}
	if query.Source != "" && record.Source != query.Source {
		return false
	}
	if query.Result != "" && record.Result != query.Result {
		return false
	}
	return true
}
