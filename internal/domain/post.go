package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

type Post struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	ImageURL  *string   `json:"image_url,omitempty" db:"image_url"`
	Likes     int       `json:"likes" db:"likes"`
	Dislikes  int       `json:"dislikes" db:"dislikes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PostReaction is unique per (user, post).
type PostReaction struct {
	UserID    string    `json:"user_id" db:"user_id"`
	PostID    uuid.UUID `json:"post_id" db:"post_id"`
	Type      string    `json:"type" db:"type"`
	ReactorXP int64     `json:"reactor_xp" db:"reactor_xp"`
	OwnerXP   int64     `json:"owner_xp" db:"owner_xp"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreatePostRequest struct {
	Content  string  `json:"content" validate:"required,max=2000"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
}

type ReactRequest struct {
	Type string `json:"type" validate:"required,oneof=like dislike"`
}

type ReactResponse struct {
	Added    bool   `json:"added"`
	Reaction string `json:"reaction,omitempty"`
	Likes    int    `json:"likes"`
	Dislikes int    `json:"dislikes"`
}
