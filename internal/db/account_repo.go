package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sitewizard/internal/types"
)

// ErrAccountNotFound is returned by GetByEmail when no owner exists.
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository stores site owner accounts in the site_owners table.
// Email is unique (case-insensitive, enforced by a lower(email) index).
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new owner. The password must already be hashed.
func (r *AccountRepository) Create(ctx context.Context, owner types.Owner, passwordHash string) (*types.Account, error) {
	acct := &types.Account{
		ID:           "own_" + uuid.NewString(),
		Email:        owner.Email,
		Name:         owner.Name,
		Document:     owner.Document,
		PasswordHash: passwordHash,
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO site_owners (id, email, name, document, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 RETURNING created_at`,
		acct.ID,
		acct.Email,
		acct.Name,
		nilIfEmpty(acct.Document),
		acct.PasswordHash,
	).Scan(&acct.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, types.NewAppError(types.ErrCodeAuthInvalidCredentials, "an account with this email already exists", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to create account", err)
	}
	return acct, nil
}

// GetByEmail returns the owner registered under email, or ErrAccountNotFound.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*types.Account, error) {
	var (
		acct     types.Account
		document *string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, email, name, document, password_hash, created_at
		 FROM site_owners
		 WHERE lower(email) = lower($1)`,
		email,
	).Scan(
		&acct.ID,
		&acct.Email,
		&acct.Name,
		&document,
		&acct.PasswordHash,
		&acct.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve account", err)
	}
	if document != nil {
		acct.Document = *document
	}
	return &acct, nil
}
