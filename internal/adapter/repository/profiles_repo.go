package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"resume-builder/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ProfilesRepo reads the loosely-typed profile that new resumes are seeded
// from. The profile row holds a JSON object; related tables, when present,
// fill in list fields the object does not carry.
type ProfilesRepo struct {
	pool *pgxpool.Pool
}

func NewProfilesRepo(pool *pgxpool.Pool) *ProfilesRepo {
	return &ProfilesRepo{pool: pool}
}

// queryJSON runs a SQL that returns a single json value and unmarshals it.
func queryJSON(ctx context.Context, pool *pgxpool.Pool, sql string, args ...interface{}) (interface{}, error) {
	var raw []byte
	err := pool.QueryRow(ctx, sql, args...).Scan(&raw)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// optional tables merged into the profile under their key
var profileLists = []struct {
	key string
	sql string
}{
	{"experience", `SELECT coalesce(json_agg(row_to_json(e) ORDER BY e.start_date DESC NULLS LAST), '[]') FROM experiences e WHERE e.user_id::text=$1`},
	{"projects", `SELECT coalesce(json_agg(row_to_json(p)), '[]') FROM projects p WHERE p.user_id::text=$1`},
	{"certifications", `SELECT coalesce(json_agg(row_to_json(c)), '[]') FROM certifications c WHERE c.user_id::text=$1`},
}

// GetProfile returns the profile of userID. Missing related tables are
// skipped so a bare profiles table is enough.
func (r *ProfilesRepo) GetProfile(ctx context.Context, userID uuid.UUID) (map[string]interface{}, error) {
	v, err := queryJSON(ctx, r.pool, `SELECT data FROM profiles WHERE user_id::text=$1`, userID.String())
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	profile, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("profile %s: data is %T, want object", userID, v)
	}

	for _, l := range profileLists {
		if existing, ok := profile[l.key].([]interface{}); ok && len(existing) > 0 {
			continue
		}
		v, err := queryJSON(ctx, r.pool, l.sql, userID.String())
		if err != nil {
			slog.Debug("profile list skipped", "user_id", userID, "list", l.key, "error", err)
			continue
		}
		if items, ok := v.([]interface{}); ok && len(items) > 0 {
			profile[l.key] = items
		}
	}
	return profile, nil
}

// SaveProfile stores data as the profile of userID.
func (r *ProfilesRepo) SaveProfile(ctx context.Context, userID uuid.UUID, data map[string]interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO profiles (user_id, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`, userID, b)
	return err
}
