package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/chivvyhq/chivvy/internal/notifications/domain"
	"github.com/google/uuid"
)

// SQLiteSubscriptionRepository implements domain.SubscriptionRepository for
// local mode.
type SQLiteSubscriptionRepository struct {
	dbConn *sql.DB
}

// NewSQLiteSubscriptionRepository creates a new subscription repository.
func NewSQLiteSubscriptionRepository(dbConn *sql.DB) *SQLiteSubscriptionRepository {
	return &SQLiteSubscriptionRepository{dbConn: dbConn}
}

// Save upserts a subscription keyed by its endpoint.
func (r *SQLiteSubscriptionRepository) Save(ctx context.Context, sub *domain.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh_key, auth_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (endpoint) DO UPDATE SET
			user_id = excluded.user_id,
			p256dh_key = excluded.p256dh_key,
			auth_key = excluded.auth_key
	`
	_, err := r.dbConn.ExecContext(ctx, query,
		sub.ID.String(), sub.UserID.String(), sub.Endpoint,
		sub.P256dhKey, sub.AuthKey, sub.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

// FindByUserID returns every subscription registered by a user.
func (r *SQLiteSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.PushSubscription, error) {
	query := `
		SELECT id, user_id, endpoint, p256dh_key, auth_key, created_at
		FROM push_subscriptions
		WHERE user_id = ?
	`
	rows, err := r.dbConn.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.PushSubscription
	for rows.Next() {
		var (
			sub           domain.PushSubscription
			id, uid, when string
		)
		if err := rows.Scan(&id, &uid, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &when); err != nil {
			return nil, err
		}
		sub.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		sub.UserID, err = uuid.Parse(uid)
		if err != nil {
			return nil, err
		}
		sub.CreatedAt, err = time.Parse(time.RFC3339, when)
		if err != nil {
			return nil, err
		}
		subs = append(subs, &sub)
	}
	return subs, rows.Err()
}

// DeleteByEndpoint drops a subscription the push service reported gone.
func (r *SQLiteSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := r.dbConn.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	return err
}
