// Package postgres provides the Postgres-backed record store.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/healthbridge/internal/store"
)

// Store implements store.Store on top of a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Available pings the pool.
func (s *Store) Available(ctx context.Context) (bool, string) {
	if err := s.pool.Ping(ctx); err != nil {
		return false, err.Error()
	}
	return true, ""
}

const recordColumns = `record_id, kind, start_time, end_time, value, unit, exercise_code, title, series, stages, metadata, origin_package, device_manufacturer, device_model`

// ReadPage fetches one keyset page of records overlapping the window.
func (s *Store) ReadPage(ctx context.Context, kind store.RecordKind, window store.TimeWindow, pageSize int, cursor string) (store.Page, error) {
	after, err := store.DecodeCursor(cursor)
	if err != nil {
		return store.Page{}, fmt.Errorf("decode cursor: %w", err)
	}

	query := `SELECT ` + recordColumns + `
        FROM health_records WHERE kind=$1 AND start_time <= $2 AND end_time >= $3`
	args := []interface{}{string(kind), window.End, window.Start, pageSize}

	if after != nil {
		query += ` AND (start_time, record_id) > ($5, $6)`
		args = append(args, after.StartTime, after.ID)
	}
	query += ` ORDER BY start_time ASC, record_id ASC LIMIT $4`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return store.Page{}, err
	}
	defer rows.Close()

	records := make([]store.Record, 0, pageSize)
	for rows.Next() {
		var (
			rec                      store.Record
			kindRaw                  string
			series, stages, metadata []byte
		)
		if err := rows.Scan(&rec.ID, &kindRaw, &rec.StartTime, &rec.EndTime, &rec.Value, &rec.Unit, &rec.ExerciseCode, &rec.Title, &series, &stages, &metadata, &rec.Origin.PackageName, &rec.Origin.Device.Manufacturer, &rec.Origin.Device.Model); err != nil {
			return store.Page{}, err
		}
		rec.Kind = store.RecordKind(kindRaw)
		if err := decodeJSON(series, &rec.Series); err != nil {
			return store.Page{}, err
		}
		if err := decodeJSON(stages, &rec.Stages); err != nil {
			return store.Page{}, err
		}
		if err := decodeJSON(metadata, &rec.Metadata); err != nil {
			return store.Page{}, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return store.Page{}, err
	}

	page := store.Page{Records: records}
	if len(records) == pageSize && pageSize > 0 {
		last := records[len(records)-1]
		page.NextCursor = store.EncodeCursor(&store.Cursor{StartTime: last.StartTime, ID: last.ID})
	}
	return page, nil
}

// AggregateValue sums record values overlapping the window.
func (s *Store) AggregateValue(ctx context.Context, kind store.RecordKind, window store.TimeWindow) (store.Aggregate, error) {
	const query = `SELECT COALESCE(SUM(value), 0), COUNT(*)
        FROM health_records WHERE kind=$1 AND start_time <= $2 AND end_time >= $3`

	var agg store.Aggregate
	row := s.pool.QueryRow(ctx, query, string(kind), window.End, window.Start)
	if err := row.Scan(&agg.Sum, &agg.Count); err != nil {
		return store.Aggregate{}, err
	}
	return agg, nil
}

// Insert persists a record, assigning a UUID when the caller supplied none.
func (s *Store) Insert(ctx context.Context, rec store.Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	series, err := encodeJSON(rec.Series)
	if err != nil {
		return "", err
	}
	stages, err := encodeJSON(rec.Stages)
	if err != nil {
		return "", err
	}
	metadata, err := encodeJSON(rec.Metadata)
	if err != nil {
		return "", err
	}

	const stmt = `INSERT INTO health_records (` + recordColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`

	_, err = s.pool.Exec(ctx, stmt,
		rec.ID,
		string(rec.Kind),
		rec.StartTime,
		rec.EndTime,
		rec.Value,
		rec.Unit,
		rec.ExerciseCode,
		rec.Title,
		series,
		stages,
		metadata,
		rec.Origin.PackageName,
		rec.Origin.Device.Manufacturer,
		rec.Origin.Device.Model,
	)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Grants returns the granted permission token set.
func (s *Store) Grants(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT token FROM permission_grants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		out[token] = struct{}{}
	}
	return out, rows.Err()
}

// Grant inserts tokens into the grant set, ignoring duplicates.
func (s *Store) Grant(ctx context.Context, tokens []string) error {
	for _, token := range tokens {
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO permission_grants (token) VALUES ($1) ON CONFLICT (token) DO NOTHING`, token); err != nil {
			return err
		}
	}
	return nil
}

// Revoke deletes tokens from the grant set.
func (s *Store) Revoke(ctx context.Context, tokens []string) error {
	for _, token := range tokens {
		if _, err := s.pool.Exec(ctx, `DELETE FROM permission_grants WHERE token=$1`, token); err != nil {
			return err
		}
	}
	return nil
}

func encodeJSON(v interface{}) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func decodeJSON(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
