// Package persistence implements profile storage for PostgreSQL and SQLite.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProfileRepository implements domain.Repository using PostgreSQL.
// Feature flags are stored as a JSONB column so adding a flag never needs a
// migration.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProfileRepository creates a new PostgreSQL profile repository.
func NewPostgresProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

const profileColumns = `user_id, email, reliability_score, theme, channels, flags, created_at, updated_at`

// Get retrieves a profile by user ID.
func (r *PostgresProfileRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	p, err := scanProfile(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// Save upserts a profile.
func (r *PostgresProfileRepository) Save(ctx context.Context, p *domain.Profile) error {
	flags, err := json.Marshal(p.Flags)
	if err != nil {
		return fmt.Errorf("encode feature flags: %w", err)
	}

	query := `
		INSERT INTO profiles (user_id, email, reliability_score, theme, channels, flags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			reliability_score = EXCLUDED.reliability_score,
			theme = EXCLUDED.theme,
			channels = EXCLUDED.channels,
			flags = EXCLUDED.flags,
			updated_at = NOW()
	`
	_, err = r.pool.Exec(ctx, query,
		p.UserID, p.Email, p.ReliabilityScore, string(p.Theme), string(p.Channels),
		flags, p.CreatedAt, p.UpdatedAt)
	return err
}

// ListNotifiable returns every profile with at least one channel enabled.
func (r *PostgresProfileRepository) ListNotifiable(ctx context.Context) ([]*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE channels <> 'none'`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

type profileScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row profileScanner) (*domain.Profile, error) {
	var (
		p          domain.Profile
		theme      string
		channels   string
		flagsJSON  []byte
	)
	err := row.Scan(&p.UserID, &p.Email, &p.ReliabilityScore, &theme, &channels,
		&flagsJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Theme = domain.Theme(theme)
	p.Channels = domain.ChannelPreference(channels)
	if len(flagsJSON) > 0 {
		if err := json.Unmarshal(flagsJSON, &p.Flags); err != nil {
			return nil, fmt.Errorf("decode feature flags: %w", err)
		}
	}
	return &p, nil
}
