package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"releaf-service/internal/models"
	"releaf-service/internal/service"

	"github.com/lib/pq"
)

// CreatePost inserts a post in PENDING_POINTS status
func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO posts (user_id, image_url, description, tags, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		post.UserID, post.ImageURL, post.Description, post.Tags, models.PostStatusPendingPoints).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	post.Status = models.PostStatusPendingPoints
	return nil
}

// PublishPost marks a post published with its awarded points
func (s *Store) PublishPost(ctx context.Context, postID string, points int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE posts SET points = $1, status = $2 WHERE id = $3",
		points, models.PostStatusPublished, postID)
	return err
}

// GetPost retrieves a post joined with its author columns
func (s *Store) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	err := s.db.GetContext(ctx, &post,
		`SELECT p.*, u.username, u.avatar_url
		 FROM posts p
		 JOIN users u ON p.user_id = u.id
		 WHERE p.id = $1`, postID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: post %s", service.ErrNotFound, postID)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPublishedPosts returns published posts for the discover feed,
// optionally filtered by tags or author username/bio match.
func (s *Store) ListPublishedPosts(ctx context.Context, filter service.PostFilter) ([]models.Post, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT p.*, u.username, u.avatar_url
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.status = $1`)
	args := []interface{}{models.PostStatusPublished}

	if len(filter.Tags) > 0 {
		args = append(args, pq.Array(filter.Tags))
		query.WriteString(fmt.Sprintf(" AND p.tags && $%d", len(args)))
	}
	if filter.Username != "" {
		args = append(args, "%"+filter.Username+"%")
		query.WriteString(fmt.Sprintf(" AND (u.username ILIKE $%d OR u.bio ILIKE $%d)", len(args), len(args)))
	}

	args = append(args, filter.Limit)
	query.WriteString(fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d", len(args)))
	args = append(args, filter.Offset)
	query.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	var posts []models.Post
	err := s.db.SelectContext(ctx, &posts, query.String(), args...)
	return posts, err
}

// HomeFeed returns published posts from followed users and followed tags
func (s *Store) HomeFeed(ctx context.Context, userID string, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.SelectContext(ctx, &posts,
		`SELECT DISTINCT p.*, u.username, u.avatar_url
		 FROM posts p
		 JOIN users u ON p.user_id = u.id
		 WHERE p.status = $1
		 AND (
		   p.user_id IN (SELECT following_id FROM user_follows WHERE follower_id = $2)
		   OR EXISTS (
		     SELECT 1 FROM tag_follows tf WHERE tf.user_id = $2 AND tf.tag = ANY(p.tags)
		   )
		 )
		 ORDER BY p.created_at DESC
		 LIMIT $3 OFFSET $4`,
		models.PostStatusPublished, userID, limit, offset)
	return posts, err
}

// ListUserPosts returns a user's published posts
func (s *Store) ListUserPosts(ctx context.Context, userID string, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.SelectContext(ctx, &posts,
		`SELECT p.*, u.username, u.avatar_url
		 FROM posts p
		 JOIN users u ON p.user_id = u.id
		 WHERE p.user_id = $1 AND p.status = $2
		 ORDER BY p.created_at DESC
		 LIMIT $3 OFFSET $4`,
		userID, models.PostStatusPublished, limit, offset)
	return posts, err
}

// DeletePost removes a post
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", postID)
	return err
}
