package port

import (
	"context"

	"smartledger/internal/domain"
)

// UserRepository defines the contract for user persistence. Email and user_id
// are each globally unique; Create must report which constraint was violated.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByToken looks up the user holding the given bearer token. Expiry is
	// checked by the caller; the lookup itself is purely by token value.
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	// SetToken overwrites the user's token and its expiry timestamp,
	// invalidating whatever token was stored before (last writer wins).
	SetToken(ctx context.Context, userID, token, expiresAt string) error
	UpdateEmail(ctx context.Context, userID, email string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	// Delete removes the user only. Bills owned by the user are kept.
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]domain.User, error)
}

// BillRepository defines the contract for bill persistence. Bills are
// insert-only: there is no update operation, and a duplicate bill_id insert
// fails with domain.ErrDuplicateBillID.
type BillRepository interface {
	Save(ctx context.Context, bill *domain.Bill) error
	GetByID(ctx context.Context, billID string) (*domain.Bill, error)
	// Delete performs no ownership check; callers verify ownership first.
	Delete(ctx context.Context, billID string) error
	// List returns all bills when userID is empty, the user's bills otherwise.
	List(ctx context.Context, userID string) ([]domain.Bill, error)
}
