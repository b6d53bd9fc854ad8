//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/healthbridge/internal/migrate"
	"example.com/healthbridge/internal/store"
)

func startDatabase(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("health"),
		postgrescontainer.WithUsername("bridge"),
		postgrescontainer.WithPassword("bridge"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	require.NoError(t, migrate.Up(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}

func TestStorePaginatesAndAggregates(t *testing.T) {
	ctx := context.Background()
	s := New(startDatabase(t, ctx))

	base := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.Insert(ctx, store.Record{
			Kind:      store.KindSteps,
			StartTime: base.Add(time.Duration(i) * time.Minute),
			EndTime:   base.Add(time.Duration(i)*time.Minute + 30*time.Second),
			Value:     float64(i + 1),
			Unit:      "count",
			Origin:    store.Origin{PackageName: "integration-test"},
		})
		require.NoError(t, err)
	}

	window := store.TimeWindow{Start: base, End: base.Add(time.Hour)}

	var all []store.Record
	cursor := ""
	for {
		page, err := s.ReadPage(ctx, store.KindSteps, window, 2, cursor)
		require.NoError(t, err)
		all = append(all, page.Records...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		require.False(t, all[i].StartTime.Before(all[i-1].StartTime))
	}

	agg, err := s.AggregateValue(ctx, store.KindSteps, window)
	require.NoError(t, err)
	require.Equal(t, 15.0, agg.Sum)
	require.Equal(t, 5, agg.Count)
}

func TestStoreRoundTripsNestedPayloads(t *testing.T) {
	ctx := context.Background()
	s := New(startDatabase(t, ctx))

	start := time.Date(2025, 11, 3, 7, 0, 0, 0, time.UTC)
	id, err := s.Insert(ctx, store.Record{
		Kind:      store.KindHeartRate,
		StartTime: start,
		EndTime:   start.Add(time.Minute),
		Unit:      "beats-per-minute",
		Series: []store.SeriesPoint{
			{Time: start, Value: 61},
			{Time: start.Add(30 * time.Second), Value: 63},
		},
		Metadata: map[string]string{"session": "warmup"},
		Origin: store.Origin{
			PackageName: "com.example.band",
			Device:      store.Device{Manufacturer: "Acme", Model: "Band 3"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	page, err := s.ReadPage(ctx, store.KindHeartRate, store.TimeWindow{Start: start, End: start.Add(time.Hour)}, 10, "")
	require.NoError(t, err)
	require.Len(t, page.Records, 1)

	rec := page.Records[0]
	require.Equal(t, id, rec.ID)
	require.Len(t, rec.Series, 2)
	require.Equal(t, 63.0, rec.Series[1].Value)
	require.Equal(t, "warmup", rec.Metadata["session"])
	require.Equal(t, "Acme", rec.Origin.Device.Manufacturer)
}

func TestStoreGrantLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(startDatabase(t, ctx))

	require.NoError(t, s.Grant(ctx, []string{"steps:read", "steps:read", "steps:write"}))

	grants, err := s.Grants(ctx)
	require.NoError(t, err)
	require.Contains(t, grants, "steps:read")
	require.Contains(t, grants, "steps:write")

	require.NoError(t, s.Revoke(ctx, []string{"steps:write"}))
	grants, err = s.Grants(ctx)
	require.NoError(t, err)
	require.NotContains(t, grants, "steps:write")
}
