package domain

import (
	"fmt"
	"time"
)

// TokenTimeLayout is the format used for the token_expires_at column. The
// column is text on purpose: token validation must treat any value that does
// not parse with this layout as an invalid token.
const TokenTimeLayout = "2006-01-02 15:04:05"

// DateLayout is the canonical calendar-date format for bill dates.
const DateLayout = "2006-01-02"

// User represents a registered account. user_id is an opaque string chosen by
// the caller at registration or generated server-side. At most one token is
// active per user; a new login overwrites the previous one.
type User struct {
	ID             int64     `db:"id" json:"-"`
	UserID         string    `db:"user_id" json:"user_id"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Token          string    `db:"token" json:"token,omitempty"`
	TokenExpiresAt string    `db:"token_expires_at" json:"token_expires_at,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Bill represents one expense record. bill_id is the caller-supplied identity;
// it is immutable and globally unique. user_id is a soft reference: deleting a
// user leaves their bills in place.
type Bill struct {
	ID          int64   `db:"id" json:"-"`
	BillID      string  `db:"bill_id" json:"bill_id"`
	UserID      string  `db:"user_id" json:"user_id"`
	Category    string  `db:"category" json:"category"`
	Amount      float64 `db:"amount" json:"amount"`
	Date        string  `db:"date" json:"date"`
	Description string  `db:"description" json:"description"`
	NWType      string  `db:"nw_type" json:"nw_type,omitempty"`
}

// AmountString renders the stored amount with the canonical two decimals.
func (b *Bill) AmountString() string {
	return fmt.Sprintf("%.2f", b.Amount)
}
