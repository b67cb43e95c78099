package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/crucial707/vuln-blog/internal/models"
	"github.com/google/uuid"
)

// SessionRepo stores cookie sessions. Lookups ignore expired rows; DeleteExpired
// removes them for good.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create opens a session for the user that expires after ttl.
func (r *SessionRepo) Create(ctx context.Context, userID int, username string, ttl time.Duration) (*models.Session, error) {
	now := time.Now().UTC()
	s := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, username, created_at, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.Username, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns a live session or ErrNotFound.
func (r *SessionRepo) Get(ctx context.Context, id string) (*models.Session, error) {
	s := &models.Session{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, username, created_at, expires_at FROM sessions WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(&s.ID, &s.UserID, &s.Username, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpired removes every expired session and reports how many were dropped.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
