package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chivvyhq/chivvy/internal/profiles/domain"
	"github.com/google/uuid"
)

// SQLiteProfileRepository implements domain.Repository for local mode.
type SQLiteProfileRepository struct {
	dbConn *sql.DB
}

// NewSQLiteProfileRepository creates a new SQLite profile repository.
func NewSQLiteProfileRepository(dbConn *sql.DB) *SQLiteProfileRepository {
	return &SQLiteProfileRepository{dbConn: dbConn}
}

// Get retrieves a profile by user ID.
func (r *SQLiteProfileRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT user_id, email, reliability_score, theme, channels, flags, created_at, updated_at
		FROM profiles WHERE user_id = ?
	`
	p, err := scanSQLiteProfile(r.dbConn.QueryRowContext(ctx, query, userID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// Save upserts a profile.
func (r *SQLiteProfileRepository) Save(ctx context.Context, p *domain.Profile) error {
	flags, err := json.Marshal(p.Flags)
	if err != nil {
		return fmt.Errorf("encode feature flags: %w", err)
	}

	query := `
		INSERT INTO profiles (user_id, email, reliability_score, theme, channels, flags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			email = excluded.email,
			reliability_score = excluded.reliability_score,
			theme = excluded.theme,
			channels = excluded.channels,
			flags = excluded.flags,
			updated_at = excluded.updated_at
	`
	_, err = r.dbConn.ExecContext(ctx, query,
		p.UserID.String(),
		p.Email,
		p.ReliabilityScore,
		string(p.Theme),
		string(p.Channels),
		string(flags),
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListNotifiable returns every profile with at least one channel enabled.
func (r *SQLiteProfileRepository) ListNotifiable(ctx context.Context) ([]*domain.Profile, error) {
	query := `
		SELECT user_id, email, reliability_score, theme, channels, flags, created_at, updated_at
		FROM profiles WHERE channels <> 'none'
	`
	rows, err := r.dbConn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanSQLiteProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

type sqliteScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteProfile(row sqliteScanner) (*domain.Profile, error) {
	var (
		userID, theme, channels, flagsJSON string
		createdAt, updatedAt               string
		p                                  domain.Profile
	)
	err := row.Scan(&userID, &p.Email, &p.ReliabilityScore, &theme, &channels,
		&flagsJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.UserID, err = uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	p.Theme = domain.Theme(theme)
	p.Channels = domain.ChannelPreference(channels)
	if flagsJSON != "" {
		if err := json.Unmarshal([]byte(flagsJSON), &p.Flags); err != nil {
			return nil, fmt.Errorf("decode feature flags: %w", err)
		}
	}
	p.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
