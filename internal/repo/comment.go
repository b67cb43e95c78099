package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/vuln-blog/internal/models"
)

// CommentRepo persists comments scoped to a parent post.
type CommentRepo struct {
	DB   *sql.DB
	Mode QueryMode
}

// NewCommentRepo returns a new CommentRepo.
func NewCommentRepo(db *sql.DB, mode QueryMode) *CommentRepo {
	if mode == nil {
		mode = Parameterized{}
	}
	return &CommentRepo{DB: db, Mode: mode}
}

// Create inserts a comment and returns its id. A missing parent post yields ErrNotFound.
func (r *CommentRepo) Create(ctx context.Context, postID int, content, author string) (int, error) {
	query, args := r.Mode.Bind(
		`INSERT INTO comments (post_id, content, author) VALUES ($1, $2, $3) RETURNING id`,
		postID, content, author,
	)
	var id int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, translate(err)
	}
	return id, nil
}

// ListByPost returns the comments of a post, oldest first.
func (r *CommentRepo) ListByPost(ctx context.Context, postID int) ([]models.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, post_id, content, author, to_char(created_at, 'YYYY-MM-DD HH24:MI:SS') FROM comments WHERE post_id = $1 ORDER BY id ASC`,
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.Author, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
