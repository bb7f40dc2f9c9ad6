package db

import (
	"context"

	"sitewizard/internal/types"
)

// SubdomainRepository answers whether a subdomain is already claimed by a
// stored draft.
type SubdomainRepository struct {
	db DBTX
}

// NewSubdomainRepository creates a new SubdomainRepository.
func NewSubdomainRepository(db DBTX) *SubdomainRepository {
	return &SubdomainRepository{db: db}
}

// IsTaken reports whether subdomain belongs to an existing draft.
func (r *SubdomainRepository) IsTaken(ctx context.Context, subdomain string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM site_drafts WHERE subdomain = $1)`,
		subdomain,
	).Scan(&taken)
	if err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to check subdomain", err)
	}
	return taken, nil
}
