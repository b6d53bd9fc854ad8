// Package memory provides an in-process record store used for local
// development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"example.com/healthbridge/internal/store"
)

// Store keeps records and permission grants in memory. Safe for concurrent
// use.
type Store struct {
	mu      sync.RWMutex
	records map[store.RecordKind][]store.Record
	grants  map[string]struct{}
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		records: make(map[store.RecordKind][]store.Record),
		grants:  make(map[string]struct{}),
	}
}

// Available always reports true.
func (s *Store) Available(ctx context.Context) (bool, string) {
	return true, ""
}

func overlaps(rec store.Record, w store.TimeWindow) bool {
	return !rec.StartTime.After(w.End) && !rec.EndTime.Before(w.Start)
}

// ReadPage returns records of the kind overlapping the window in keyset order
// (start time, then ID), resuming after the cursor position.
func (s *Store) ReadPage(ctx context.Context, kind store.RecordKind, window store.TimeWindow, pageSize int, cursor string) (store.Page, error) {
	after, err := store.DecodeCursor(cursor)
	if err != nil {
		return store.Page{}, err
	}

	s.mu.RLock()
	matched := make([]store.Record, 0)
	for _, rec := range s.records[kind] {
		if overlaps(rec, window) {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].StartTime.Equal(matched[j].StartTime) {
			return matched[i].StartTime.Before(matched[j].StartTime)
		}
		return matched[i].ID < matched[j].ID
	})

	start := 0
	if after != nil {
		for i, rec := range matched {
			if rec.StartTime.After(after.StartTime) || (rec.StartTime.Equal(after.StartTime) && rec.ID > after.ID) {
				start = i
				break
			}
			start = i + 1
		}
	}

	end := start + pageSize
	if pageSize <= 0 || end > len(matched) {
		end = len(matched)
	}
	page := store.Page{Records: matched[start:end]}
	if end < len(matched) && end > start {
		last := matched[end-1]
		page.NextCursor = store.EncodeCursor(&store.Cursor{StartTime: last.StartTime, ID: last.ID})
	}
	return page, nil
}

// AggregateValue sums Value over records of the kind overlapping the window.
func (s *Store) AggregateValue(ctx context.Context, kind store.RecordKind, window store.TimeWindow) (store.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var agg store.Aggregate
	for _, rec := range s.records[kind] {
		if overlaps(rec, window) {
			agg.Sum += rec.Value
			agg.Count++
		}
	}
	return agg, nil
}

// Insert stores the record, assigning an ID when absent.
func (s *Store) Insert(ctx context.Context, rec store.Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.records[rec.Kind] = append(s.records[rec.Kind], rec)
	s.mu.Unlock()
	return rec.ID, nil
}

// Grants returns a copy of the granted token set.
func (s *Store) Grants(ctx context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]struct{}, len(s.grants))
	for token := range s.grants {
		out[token] = struct{}{}
	}
	return out, nil
}

// Grant adds tokens to the granted set.
func (s *Store) Grant(ctx context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, token := range tokens {
		s.grants[token] = struct{}{}
	}
	return nil
}

// Revoke removes tokens from the granted set.
func (s *Store) Revoke(ctx context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, token := range tokens {
		delete(s.grants, token)
	}
	return nil
}
