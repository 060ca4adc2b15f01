package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification types
const (
	NotificationLevelUp      = "level_up"
	NotificationPostCreated  = "post_created"
	NotificationPostLike     = "post_like"
	NotificationPostDislike  = "post_dislike"
	NotificationLoanRequest  = "loan_requested"
	NotificationLoanApproved = "loan_approved"
	NotificationLoanRejected = "loan_rejected"
	NotificationLoanRepaid   = "loan_repaid"
	NotificationLoanDueSoon  = "loan_due_soon"
	NotificationLoanOverdue  = "loan_overdue"
	NotificationAdminXP      = "admin_xp_change"
)

// Notification is append-only; only the read flag changes.
type Notification struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    string          `json:"user_id" db:"user_id"`
	Type      string          `json:"type" db:"type"`
	Title     string          `json:"title" db:"title"`
	Message   string          `json:"message" db:"message"`
	Data      json.RawMessage `json:"data,omitempty" db:"data"`
	Read      bool            `json:"read" db:"read"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// NewNotification builds an unread notification; data is marshalled to JSON when non-nil.
func NewNotification(userID, kind, title, message string, data interface{}) *Notification {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			n.Data = raw
		}
	}
	return n
}

// LevelUpData is the payload of a level_up notification.
type LevelUpData struct {
	OldLevel int `json:"oldLevel"`
	NewLevel int `json:"newLevel"`
}
