package persistence

import (
	"context"

	"github.com/chivvyhq/chivvy/internal/notifications/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSubscriptionRepository implements domain.SubscriptionRepository.
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubscriptionRepository creates a new subscription repository.
func NewPostgresSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Save upserts a subscription keyed by its endpoint; re-registering a browser
// refreshes the keys instead of duplicating the row.
func (r *PostgresSubscriptionRepository) Save(ctx context.Context, sub *domain.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh_key, auth_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (endpoint) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			p256dh_key = EXCLUDED.p256dh_key,
			auth_key = EXCLUDED.auth_key
	`
	_, err := r.pool.Exec(ctx, query,
		sub.ID, sub.UserID, sub.Endpoint, sub.P256dhKey, sub.AuthKey, sub.CreatedAt)
	return err
}

// FindByUserID returns every subscription registered by a user.
func (r *PostgresSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.PushSubscription, error) {
	query := `
		SELECT id, user_id, endpoint, p256dh_key, auth_key, created_at
		FROM push_subscriptions
		WHERE user_id = $1
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.PushSubscription
	for rows.Next() {
		var sub domain.PushSubscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, &sub)
	}
	return subs, rows.Err()
}

// DeleteByEndpoint drops a subscription the push service reported gone.
func (r *PostgresSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM push_subscriptions WHERE endpoint = $1`, endpoint)
	return err
}
