package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/healthbridge/internal/store"
)

func seedSteps(t *testing.T, s *Store, base time.Time, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := s.Insert(context.Background(), store.Record{
			Kind:      store.KindSteps,
			StartTime: base.Add(time.Duration(i) * time.Minute),
			EndTime:   base.Add(time.Duration(i)*time.Minute + 30*time.Second),
			Value:     float64(i + 1),
		})
		require.NoError(t, err)
	}
}

func TestReadPagePaginatesWithCursor(t *testing.T) {
	s := New()
	base := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)
	seedSteps(t, s, base, 5)
	window := store.TimeWindow{Start: base, End: base.Add(time.Hour)}
	ctx := context.Background()

	var got []store.Record
	cursor := ""
	pages := 0
	for {
		page, err := s.ReadPage(ctx, store.KindSteps, window, 2, cursor)
		require.NoError(t, err)
		got = append(got, page.Records...)
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	require.Len(t, got, 5)
	require.Equal(t, 3, pages)
	for i := 1; i < len(got); i++ {
		require.False(t, got[i].StartTime.Before(got[i-1].StartTime))
	}
}

func TestReadPageFiltersByWindowOverlap(t *testing.T) {
	s := New()
	base := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)
	ctx := context.Background()

	// Straddles the window start: still matches.
	_, err := s.Insert(ctx, store.Record{
		Kind:      store.KindSteps,
		StartTime: base.Add(-time.Minute),
		EndTime:   base.Add(time.Minute),
		Value:     1,
	})
	require.NoError(t, err)
	// Entirely before the window: excluded.
	_, err = s.Insert(ctx, store.Record{
		Kind:      store.KindSteps,
		StartTime: base.Add(-time.Hour),
		EndTime:   base.Add(-30 * time.Minute),
		Value:     2,
	})
	require.NoError(t, err)

	page, err := s.ReadPage(ctx, store.KindSteps, store.TimeWindow{Start: base, End: base.Add(time.Hour)}, 10, "")
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	require.Equal(t, 1.0, page.Records[0].Value)
	require.Empty(t, page.NextCursor)
}

func TestAggregateValueSumsWindow(t *testing.T) {
	s := New()
	base := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)
	seedSteps(t, s, base, 3) // values 1, 2, 3

	agg, err := s.AggregateValue(context.Background(), store.KindSteps, store.TimeWindow{Start: base, End: base.Add(time.Hour)})
	require.NoError(t, err)
	require.Equal(t, 6.0, agg.Sum)
	require.Equal(t, 3, agg.Count)

	empty, err := s.AggregateValue(context.Background(), store.KindDistance, store.TimeWindow{Start: base, End: base.Add(time.Hour)})
	require.NoError(t, err)
	require.Zero(t, empty.Count)
}

func TestGrantRevokeRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Grant(ctx, []string{"steps:read", "steps:write"}))
	grants, err := s.Grants(ctx)
	require.NoError(t, err)
	require.Contains(t, grants, "steps:read")
	require.Contains(t, grants, "steps:write")

	require.NoError(t, s.Revoke(ctx, []string{"steps:write"}))
	grants, err = s.Grants(ctx)
	require.NoError(t, err)
	require.NotContains(t, grants, "steps:write")
	require.Contains(t, grants, "steps:read")
}
