package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sitewizard/internal/types"
)

// DraftRepository persists finalized wizard configurations in the
// site_drafts table. A draft moves pending -> provisioned -> paid; the
// subdomain column carries a unique index so two drafts can never claim the
// same address.
type DraftRepository struct {
	db           DBTX
	publicDomain string
}

// NewDraftRepository creates a DraftRepository. publicDomain is the parent
// domain generated sites are served under (e.g. "sites.example.com").
func NewDraftRepository(db DBTX, publicDomain string) *DraftRepository {
	return &DraftRepository{db: db, publicDomain: publicDomain}
}

// SiteURL returns the public address of a site hosted under domain.
func SiteURL(subdomain, domain string) string {
	return fmt.Sprintf("https://%s.%s", subdomain, domain)
}

const draftColumns = `id, session_id, subdomain, url, plan, status, created_at,
	COALESCE(configuration->'add_ons', '[]'::jsonb), monthly_total`

func scanDraft(row pgx.Row) (*types.Draft, error) {
	var d types.Draft
	err := row.Scan(
		&d.ID,
		&d.SessionID,
		&d.Subdomain,
		&d.URL,
		&d.Plan,
		&d.Status,
		&d.CreatedAt,
		&d.AddOns,
		&d.MonthlyTotal,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDraft stores the flattened configuration and returns the new draft
// with its site id and public URL. A subdomain that is already claimed yields
// ErrCodeConflictSubdomain.
func (r *DraftRepository) CreateDraft(ctx context.Context, req types.DraftRequest) (*types.Draft, error) {
	d := &types.Draft{
		ID:           "site_" + uuid.NewString(),
		SessionID:    req.SessionID,
		Subdomain:    req.Subdomain,
		URL:          SiteURL(req.Subdomain, r.publicDomain),
		Plan:         req.Plan,
		AddOns:       append([]types.AddOnID(nil), req.AddOns...),
		MonthlyTotal: req.MonthlyTotal,
		Status:       types.DraftStatusPending,
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO site_drafts (id, session_id, subdomain, url, plan, status,
		 configuration, monthly_total, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		 RETURNING created_at`,
		d.ID,
		d.SessionID,
		d.Subdomain,
		d.URL,
		d.Plan,
		d.Status,
		req,
		req.MonthlyTotal,
	).Scan(&d.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, types.NewAppErrorWithDetails(types.ErrCodeConflictSubdomain,
				"subdomain is already taken", nil, map[string]any{"subdomain": req.Subdomain})
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to create draft", err)
	}
	return d, nil
}

// GetByID retrieves a draft. Returns ErrCodeNotFoundDraft if none exists.
func (r *DraftRepository) GetByID(ctx context.Context, id string) (*types.Draft, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+draftColumns+` FROM site_drafts WHERE id = $1`,
		id,
	)
	d, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundDraft, "draft not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve draft", err)
	}
	return d, nil
}

// GetConfiguration returns the snapshot stored with a draft.
func (r *DraftRepository) GetConfiguration(ctx context.Context, id string) (*types.DraftRequest, error) {
	var req types.DraftRequest
	err := r.db.QueryRow(ctx,
		`SELECT configuration FROM site_drafts WHERE id = $1`,
		id,
	).Scan(&req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundDraft, "draft not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve draft configuration", err)
	}
	return &req, nil
}

// AssignOwner links a draft to the account that will own the site.
func (r *DraftRepository) AssignOwner(ctx context.Context, id, ownerID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE site_drafts SET owner_id = $1, updated_at = NOW() WHERE id = $2`,
		ownerID,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to assign draft owner", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundDraft, "draft not found", nil)
	}
	return nil
}

// MarkProvisioned moves a pending draft to provisioned. Queue redelivery makes
// this run more than once for the same draft, so a draft that already left
// the pending state is a no-op.
func (r *DraftRepository) MarkProvisioned(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE site_drafts
		 SET status = $1, provisioned_at = NOW(), updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		types.DraftStatusProvisioned,
		id,
		types.DraftStatusPending,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to mark draft provisioned", err)
	}
	return nil
}

// MarkPaid records a completed checkout. Webhook retries are idempotent: a
// draft already marked paid is left untouched.
func (r *DraftRepository) MarkPaid(ctx context.Context, id, checkoutSessionID string, paidAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE site_drafts
		 SET status = $1, checkout_session_id = $2, paid_at = $3, updated_at = NOW()
		 WHERE id = $4 AND status <> $1`,
		types.DraftStatusPaid,
		nilIfEmpty(checkoutSessionID),
		paidAt,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to mark draft paid", err)
	}
	return nil
}
