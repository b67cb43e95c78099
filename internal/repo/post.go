package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/vuln-blog/internal/models"
)

const postColumns = `id, title, content, author, to_char(created_at, 'YYYY-MM-DD HH24:MI:SS')`

// ShareSearchLimit caps the rows rendered on the shareable search page.
const ShareSearchLimit = 20

// ========================
// REPOSITORY STRUCT
// ========================

type PostRepo struct {
	DB   *sql.DB
	Mode QueryMode
}

func NewPostRepo(db *sql.DB, mode QueryMode) *PostRepo {
	if mode == nil {
		mode = Parameterized{}
	}
	return &PostRepo{DB: db, Mode: mode}
}

// ========================
// CREATE POST
// ========================

func (r *PostRepo) Create(ctx context.Context, title, content, author string) (int, error) {
	query, args := r.Mode.Bind(
		`INSERT INTO posts (title, content, author) VALUES ($1, $2, $3) RETURNING id`,
		title, content, author,
	)
	var id int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, translate(err)
	}
	return id, nil
}

// ========================
// GET POST BY ID
// ========================

func (r *PostRepo) Get(ctx context.Context, id int) (models.Post, error) {
	var p models.Post
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.CreatedAt)
	return p, translate(err)
}

// ========================
// LIST POSTS, NEWEST FIRST
// ========================

func (r *PostRepo) List(ctx context.Context) ([]models.Post, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// ========================
// SEARCH BY TITLE
// ========================

// SearchTitle returns posts whose title contains term, case-insensitively.
func (r *PostRepo) SearchTitle(ctx context.Context, term string) ([]models.Post, error) {
	query, args := r.Mode.Bind(
		`SELECT `+postColumns+` FROM posts WHERE title ILIKE $1 ORDER BY id DESC`,
		containsPattern(term),
	)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// SearchTitleOrContent backs the shareable search page: title or body match,
// newest first, at most ShareSearchLimit rows.
func (r *PostRepo) SearchTitleOrContent(ctx context.Context, term string) ([]models.Post, error) {
	query, args := r.Mode.Bind(
		`SELECT `+postColumns+` FROM posts WHERE title ILIKE $1 OR content ILIKE $1 ORDER BY id DESC LIMIT $2`,
		containsPattern(term), ShareSearchLimit,
	)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
