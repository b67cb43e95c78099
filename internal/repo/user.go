package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/vuln-blog/internal/models"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB   *sql.DB
	Mode QueryMode
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB, mode QueryMode) *UserRepo {
	if mode == nil {
		mode = Parameterized{}
	}
	return &UserRepo{DB: db, Mode: mode}
}

// ==========================
// Create User
// ==========================
func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	query, args := r.Mode.Bind(`
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username
	`, username, passwordHash)

	user := &models.User{PasswordHash: passwordHash}

	err := r.DB.QueryRowContext(ctx, query, args...).
		Scan(&user.ID, &user.Username)

	if err != nil {
		return nil, translate(err)
	}

	return user, nil
}

// ==========================
// Get By Username
// ==========================
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query, args := r.Mode.Bind(`
		SELECT id, username, password_hash
		FROM users
		WHERE username = $1
	`, username)

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, args...).
		Scan(&user.ID, &user.Username, &user.PasswordHash)

	if err != nil {
		return nil, translate(err)
	}

	return user, nil
}
