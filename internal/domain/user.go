package domain

import "time"

const (
	MinLevel = 1
	MaxLevel = 4
)

// User is created on first login and never deleted.
type User struct {
	ID             string    `json:"id" db:"id"`
	Email          *string   `json:"email,omitempty" db:"email"`
	FirstName      *string   `json:"first_name,omitempty" db:"first_name"`
	LastName       *string   `json:"last_name,omitempty" db:"last_name"`
	XP             int64     `json:"xp" db:"xp"`
	Level          int       `json:"level" db:"level"`
	IsAdmin        bool      `json:"is_admin" db:"is_admin"`
	IsBanned       bool      `json:"is_banned" db:"is_banned"`
	MembershipPaid bool      `json:"membership_paid" db:"membership_paid"`
	OnTimePayments int       `json:"on_time_payments" db:"on_time_payments"`
	TotalPayments  int       `json:"total_payments" db:"total_payments"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// UserWithCredit is the profile view returned to the borrower.
type UserWithCredit struct {
	*User
	Credit CreditSnapshot `json:"credit"`
}

type UpsertUserRequest struct {
	ID        string
	Email     *string
	FirstName *string
	LastName  *string
}

type AdjustXPRequest struct {
	XPChange int64 `json:"xp_change" validate:"required"`
}

type BanUserRequest struct {
	Banned bool `json:"banned"`
}

type MembershipRequest struct {
	Paid bool `json:"paid"`
}
