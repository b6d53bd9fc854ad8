package engine

import (
	"context"
	"fmt"

	"example.com/healthbridge/internal/domain"
	"example.com/healthbridge/internal/observability"
	"example.com/healthbridge/internal/store"
)

// Page sizing for the bounded fetch loop.
const (
	// DefaultPageSize is used when the caller imposes no limit.
	DefaultPageSize = 1000
	// MaxPageSize caps the page size derived from a caller limit.
	MaxPageSize = 5000
)

// readAll drains the store's pages for one kind over the window. It stops
// when the store returns no continuation cursor or, for limit > 0, once at
// least limit records have been fetched. Records arrive in whatever order
// the store produces them; ordering is applied later. Any page failure
// aborts the whole read.
func (e *Engine) readAll(ctx context.Context, kind store.RecordKind, window store.TimeWindow, limit int) ([]store.Record, error) {
	pageSize := DefaultPageSize
	if limit > 0 {
		pageSize = limit
		if pageSize > MaxPageSize {
			pageSize = MaxPageSize
		}
	}

	var out []store.Record
	cursor := ""
	for {
		page, err := e.store.ReadPage(ctx, kind, window, pageSize, cursor)
		if err != nil {
			return nil, domain.Platformf(fmt.Sprintf("read %s page", kind), err)
		}
		out = append(out, page.Records...)
		observability.RecordPageFetched(string(kind), len(page.Records))

		if limit > 0 && len(out) >= limit {
			return out, nil
		}
		if page.NextCursor == "" {
			return out, nil
		}
		cursor = page.NextCursor
	}
}
