package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/segyhp/xp-lending/internal/domain"

	"github.com/jmoiron/sqlx"
)

const postColumns = `id, user_id, content, image_url, likes, dislikes, created_at`

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, user_id, content, image_url, likes, dislikes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.UserID,
		post.Content,
		post.ImageURL,
		post.Likes,
		post.Dislikes,
		post.CreatedAt,
	)

	return err
}

func (r *postRepository) GetByID(ctx context.Context, postID uuid.UUID) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	var post domain.Post
	if err := r.db.GetContext(ctx, &post, query, postID); err != nil {
		return nil, err
	}

	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	var posts []*domain.Post
	if err := r.db.SelectContext(ctx, &posts, query, limit, offset); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, postID uuid.UUID, userID string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM post_reactions WHERE post_id = $1`, postID); err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	return true, tx.Commit()
}

func (r *postRepository) GetReaction(ctx context.Context, userID string, postID uuid.UUID) (*domain.PostReaction, error) {
	query := `
		SELECT user_id, post_id, type, reactor_xp, owner_xp, created_at
		FROM post_reactions
		WHERE user_id = $1 AND post_id = $2
	`

	var reaction domain.PostReaction
	if err := r.db.GetContext(ctx, &reaction, query, userID, postID); err != nil {
		return nil, err
	}

	return &reaction, nil
}

func (r *postRepository) SaveReaction(ctx context.Context, change *ReactionChange) (*domain.Post, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Serialize reactions on the same post
	var locked int
	if err = tx.GetContext(ctx, &locked, `SELECT 1 FROM posts WHERE id = $1 FOR UPDATE`, change.PostID); err != nil {
		return nil, err
	}

	var stored string
	err = tx.GetContext(ctx, &stored, `
		SELECT type FROM post_reactions WHERE user_id = $1 AND post_id = $2
	`, change.UserID, change.PostID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if stored != change.Previous {
		return nil, ErrReactionChanged
	}

	if change.Next == "" {
		_, err = tx.ExecContext(ctx, `DELETE FROM post_reactions WHERE user_id = $1 AND post_id = $2`, change.UserID, change.PostID)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO post_reactions (user_id, post_id, type, reactor_xp, owner_xp, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (user_id, post_id) DO UPDATE
			SET type = EXCLUDED.type, reactor_xp = EXCLUDED.reactor_xp, owner_xp = EXCLUDED.owner_xp, created_at = NOW()
		`, change.UserID, change.PostID, change.Next, change.ReactorXP, change.OwnerXP)
	}
	if err != nil {
		return nil, err
	}

	var post domain.Post
	err = tx.GetContext(ctx, &post, `
		UPDATE posts
		SET likes = GREATEST(likes + $2, 0), dislikes = GREATEST(dislikes + $3, 0)
		WHERE id = $1
		RETURNING `+postColumns, change.PostID, change.LikesDelta, change.DislikesDelta)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &post, nil
}
