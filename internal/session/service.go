package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sitewizard/internal/billing"
	"sitewizard/internal/db"
	"sitewizard/internal/types"
	"sitewizard/internal/wizard"
)

const (
	// bcryptCost is the bcrypt cost factor used for owner password hashing.
	bcryptCost = 12

	// DefaultUndoDepth bounds the undo history when no depth is configured.
	DefaultUndoDepth = 50

	// phaseTimeout releases a phase flag left behind by a process that died
	// mid-request.
	phaseTimeout = 2 * time.Minute

	// maxWriteAttempts bounds optimistic retries against concurrent writers.
	maxWriteAttempts = 3

	cardSlotPrefix = "card-"
)

// DraftStore persists finalized configurations.
type DraftStore interface {
	CreateDraft(ctx context.Context, req types.DraftRequest) (*types.Draft, error)
	AssignOwner(ctx context.Context, draftID, ownerID string) error
}

// AccountStore stores site owner accounts. GetByEmail returns
// db.ErrAccountNotFound when no account exists.
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*types.Account, error)
	Create(ctx context.Context, owner types.Owner, passwordHash string) (*types.Account, error)
}

// ProvisioningPublisher hands a new draft to the site provisioner.
type ProvisioningPublisher interface {
	PublishProvisioning(ctx context.Context, msg types.SiteProvisioningMessage) error
}

// CheckoutProvider starts a hosted payment session.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, req types.CheckoutRequest) (*types.CheckoutResult, error)
}

// Uploader stores an uploaded asset and returns its stable URL.
type Uploader interface {
	Upload(ctx context.Context, key, filename string, body io.Reader) (*types.UploadResult, error)
}

// ChannelValidator checks and normalizes a contact destination for a channel.
type ChannelValidator func(ch types.ChannelID, value string) (string, error)

// Metrics receives wizard funnel counters.
type Metrics interface {
	Count(ctx context.Context, metric string, dims map[string]string)
}

// PasswordHasher abstracts bcrypt operations for testability.
type PasswordHasher interface {
	CompareHashAndPassword(hashedPassword, password string) error
	GenerateFromPassword(password string) (string, error)
}

type bcryptHasher struct{}

func (bcryptHasher) CompareHashAndPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func (bcryptHasher) GenerateFromPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ServiceConfig holds the dependencies for creating a Service. Store is
// required; the collaborators are only needed by the operations that use
// them.
type ServiceConfig struct {
	Store           Store
	Drafts          DraftStore
	Accounts        AccountStore
	Publisher       ProvisioningPublisher
	Checkout        CheckoutProvider
	Uploader        Uploader
	ValidateChannel ChannelValidator
	Enforcer        billing.LimitEnforcer
	Hasher          PasswordHasher
	Metrics         Metrics
	Clock           types.Clock
	Logger          *slog.Logger

	UndoDepth      int
	Redirects      types.RedirectURLs
	BypassCheckout bool
}

// Service is the state handle for wizard sessions. Every operation loads
// the session, runs the pure state machine, and writes the result back; the
// configuration is never modified in place.
type Service struct {
	store           Store
	drafts          DraftStore
	accounts        AccountStore
	publisher       ProvisioningPublisher
	checkout        CheckoutProvider
	uploader        Uploader
	validateChannel ChannelValidator
	enforcer        billing.LimitEnforcer
	hasher          PasswordHasher
	metrics         Metrics
	clock           types.Clock
	logger          *slog.Logger

	undoDepth      int
	redirects      types.RedirectURLs
	bypassCheckout bool
}

// NewService creates a Service, filling defaults for the optional
// dependencies.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		store:           cfg.Store,
		drafts:          cfg.Drafts,
		accounts:        cfg.Accounts,
		publisher:       cfg.Publisher,
		checkout:        cfg.Checkout,
		uploader:        cfg.Uploader,
		validateChannel: cfg.ValidateChannel,
		enforcer:        cfg.Enforcer,
		hasher:          cfg.Hasher,
		metrics:         cfg.Metrics,
		clock:           cfg.Clock,
		logger:          cfg.Logger,
		undoDepth:       cfg.UndoDepth,
		redirects:       cfg.Redirects,
		bypassCheckout:  cfg.BypassCheckout,
	}
	if s.enforcer == nil {
		s.enforcer = billing.NewLimitEnforcer()
	}
	if s.hasher == nil {
		s.hasher = bcryptHasher{}
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.clock == nil {
		s.clock = types.RealClock{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.undoDepth == 0 {
		s.undoDepth = DefaultUndoDepth
	}
	return s
}

type noopMetrics struct{}

func (noopMetrics) Count(context.Context, string, map[string]string) {}

// Start creates a session holding a fresh configuration.
func (s *Service) Start(ctx context.Context) (*View, error) {
	now := s.clock.Now()
	sess := &Session{
		ID:        "wiz_" + uuid.NewString(),
		Config:    wizard.New(),
		Phase:     types.PhaseIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, storeError(err)
	}
	s.log(ctx).InfoContext(ctx, "wizard session started", "session_id", sess.ID)
	return NewView(sess), nil
}

// Get returns the current view of a session.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return NewView(sess), nil
}

// Delete abandons a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return storeError(err)
	}
	return nil
}

// Dispatch decodes and applies one action. An action the state machine
// rejects is not an error: the view comes back unchanged with Applied false.
// Adding a service card past the plan's limit is rejected with a limit
// error before the state machine sees it. Once the session has a draft only
// navigation is accepted; checkout bills the drafted snapshot.
func (s *Service) Dispatch(ctx context.Context, id string, env wizard.Envelope) (*View, error) {
	action, err := wizard.ParseAction(env)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidAction,
			"invalid action", err, map[string]any{"type": string(env.Type)})
	}
	action, err = s.prepare(action)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, id, action)
}

// prepare validates and normalizes user input carried by an action before it
// reaches the state machine.
func (s *Service) prepare(action wizard.Action) (wizard.Action, error) {
	switch a := action.(type) {
	case wizard.SetChannelValue:
		if a.Value == "" || s.validateChannel == nil {
			return a, nil
		}
		normalized, err := s.validateChannel(a.Channel, a.Value)
		if err != nil {
			return nil, err
		}
		a.Value = normalized
		return a, nil
	case wizard.SetBusinessField:
		if a.Field == types.BusinessSubdomain {
			a.Value = types.NormalizeSubdomain(a.Value)
		}
		return a, nil
	default:
		return action, nil
	}
}

func (s *Service) apply(ctx context.Context, id string, action wizard.Action) (*View, error) {
	applied := false
	sess, err := s.mutate(ctx, id, func(sess *Session) (bool, error) {
		applied = false
		if err := s.guardIdle(sess); err != nil {
			return false, err
		}
		if !isNavigation(action) {
			if err := guardDrafted(sess); err != nil {
				return false, err
			}
		}
		if _, ok := action.(wizard.AddServiceCard); ok {
			if err := s.enforcer.CheckLimit(sess.Config, billing.ResourceServiceCards, 1); err != nil {
				return false, err
			}
		}

		next, ok := wizard.TryApply(sess.Config, action)
		if !ok {
			return false, nil
		}
		if violations := wizard.CheckInvariants(next); len(violations) > 0 {
			s.reportViolations(ctx, sess.ID, action, violations)
		}
		if !isNavigation(action) {
			sess.History = sess.History.Push(sess.Config, s.undoDepth)
		}
		sess.Config = next
		applied = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	metric := types.MetricActionRejected
	if applied {
		metric = types.MetricActionApplied
	}
	s.metrics.Count(ctx, metric, map[string]string{
		types.DimPlan:       string(sess.Config.Plan),
		types.DimActionType: string(action.Type()),
	})

	view := NewView(sess)
	view.Applied = applied
	return view, nil
}

func isNavigation(a wizard.Action) bool {
	switch a.(type) {
	case wizard.NextStep, wizard.PrevStep, wizard.GoToStep:
		return true
	}
	return false
}

func (s *Service) reportViolations(ctx context.Context, id string, action wizard.Action, violations []wizard.Violation) {
	details := make([]string, len(violations))
	for i, v := range violations {
		details[i] = v.String()
	}
	s.log(ctx).ErrorContext(ctx, "configuration invariant violated",
		"session_id", id,
		"action", string(action.Type()),
		"violations", details,
	)
	s.metrics.Count(ctx, types.MetricInvariantViolation, map[string]string{
		types.DimActionType: string(action.Type()),
	})
}

// Undo restores the configuration that preceded the last applied action.
func (s *Service) Undo(ctx context.Context, id string) (*View, error) {
	sess, err := s.mutate(ctx, id, func(sess *Session) (bool, error) {
		if err := s.guardIdle(sess); err != nil {
			return false, err
		}
		if err := guardDrafted(sess); err != nil {
			return false, err
		}
		prev, rest, ok := sess.History.Pop()
		if !ok {
			return false, types.NewAppError(types.ErrCodeConflictNothing, "nothing to undo", nil)
		}
		sess.Config = prev
		sess.History = rest
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return NewView(sess), nil
}

// Upload stores an asset and records its URL in the configuration. slot is
// an image slot name or "card-<index>" for a service card image. The target
// is checked before the upload so a slot the configuration cannot hold never
// produces an orphaned object.
func (s *Service) Upload(ctx context.Context, id, slot, filename string, body io.Reader) (*types.UploadResult, *View, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, storeError(err)
	}
	if err := s.guardIdle(sess); err != nil {
		return nil, nil, err
	}
	if err := guardDrafted(sess); err != nil {
		return nil, nil, err
	}

	target, err := slotAction(slot, "pending")
	if err != nil {
		return nil, nil, err
	}
	if _, ok := wizard.TryApply(sess.Config, target); !ok {
		return nil, nil, types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidUpload,
			"slot is not available in the current configuration", nil, map[string]any{"slot": slot})
	}

	res, err := s.uploader.Upload(ctx, sess.ID+"/"+slot, filename, body)
	if err != nil {
		return nil, nil, err
	}
	res.Slot = slot

	action, _ := slotAction(slot, res.URL)
	view, err := s.apply(ctx, id, action)
	if err != nil {
		return nil, nil, err
	}
	s.metrics.Count(ctx, types.MetricUploadStored, map[string]string{types.DimPlan: string(view.Config.Plan)})
	return res, view, nil
}

func slotAction(slot, url string) (wizard.Action, error) {
	if rest, ok := strings.CutPrefix(slot, cardSlotPrefix); ok {
		index, err := strconv.Atoi(rest)
		if err == nil && index >= 0 {
			return wizard.UpdateServiceCard{Index: index, ImageURL: &url}, nil
		}
	} else if types.ImageSlot(slot).IsKnown() {
		return wizard.SetImage{Slot: types.ImageSlot(slot), URL: url}, nil
	}
	return nil, types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidUpload,
		"unknown upload slot", nil, map[string]any{"slot": slot})
}

// Finalize persists the configuration as a draft and queues it for
// provisioning. A session that already has a draft returns it unchanged.
func (s *Service) Finalize(ctx context.Context, id string) (*types.Draft, error) {
	sess, err := s.claim(ctx, id, types.PhaseDrafting)
	if err != nil {
		return nil, err
	}
	if sess.Draft != nil {
		s.release(ctx, id, nil)
		return sess.Draft, nil
	}

	cfg := sess.Config
	if missing := incomplete(cfg); len(missing) > 0 {
		s.release(ctx, id, nil)
		return nil, types.NewAppErrorWithDetails(types.ErrCodeValidationIncomplete,
			"configuration is incomplete", nil, map[string]any{"missing": missing})
	}

	req := types.NewDraftRequest(sess.ID, cfg, billing.MonthlyTotal(cfg.Plan, cfg.AddOns))
	draft, err := s.drafts.CreateDraft(ctx, req)
	if err != nil {
		s.release(ctx, id, nil)
		return nil, err
	}

	msg := types.SiteProvisioningMessage{
		MessageID: uuid.NewString(),
		DraftID:   draft.ID,
		Subdomain: draft.Subdomain,
		Plan:      draft.Plan,
		TraceID:   types.GetRequestID(ctx),
		CreatedAt: s.clock.Now(),
	}
	if err := s.publisher.PublishProvisioning(ctx, msg); err != nil {
		// The draft is durable; provisioning can be replayed from the table.
		s.log(ctx).ErrorContext(ctx, "failed to queue site provisioning",
			"draft_id", draft.ID,
			"error", err,
		)
	}

	s.release(ctx, id, func(sess *Session) { sess.Draft = draft })
	s.metrics.Count(ctx, types.MetricDraftCreated, map[string]string{types.DimPlan: string(draft.Plan)})
	s.log(ctx).InfoContext(ctx, "draft created",
		"session_id", id,
		"draft_id", draft.ID,
		"subdomain", draft.Subdomain,
	)
	return draft, nil
}

// incomplete lists the fields a draft cannot be created without.
func incomplete(cfg types.Configuration) []string {
	var missing []string
	if !cfg.Plan.IsKnown() {
		missing = append(missing, "plan")
	}
	if strings.TrimSpace(cfg.BusinessName) == "" {
		missing = append(missing, "business_name")
	}
	if types.ValidateSubdomain(cfg.Subdomain) != "" {
		missing = append(missing, "subdomain")
	}
	if cfg.Plan == types.PlanEntry && cfg.TemplateID == "" {
		missing = append(missing, "template_id")
	}
	return missing
}

// Checkout creates or verifies the owner account and starts payment for the
// session's draft. With bypass enabled no payment session is created.
func (s *Service) Checkout(ctx context.Context, id string, owner types.Owner) (*types.CheckoutResult, error) {
	if appErr := types.ValidatePassword(owner.Password.Unmask()); appErr != nil {
		return nil, appErr
	}

	sess, err := s.claim(ctx, id, types.PhaseCheckout)
	if err != nil {
		return nil, err
	}
	result, err := s.checkoutDraft(ctx, sess, owner)
	s.release(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	s.metrics.Count(ctx, types.MetricCheckoutStarted, map[string]string{types.DimPlan: string(sess.Draft.Plan)})
	return result, nil
}

func (s *Service) checkoutDraft(ctx context.Context, sess *Session, owner types.Owner) (*types.CheckoutResult, error) {
	if sess.Draft == nil {
		return nil, types.NewAppError(types.ErrCodeConflictNoDraft, "create a draft before checkout", nil)
	}

	acct, err := s.resolveOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.AssignOwner(ctx, sess.Draft.ID, acct.ID); err != nil {
		return nil, err
	}

	if s.bypassCheckout {
		s.log(ctx).WarnContext(ctx, "checkout bypassed",
			"session_id", sess.ID,
			"draft_id", sess.Draft.ID,
		)
		return &types.CheckoutResult{Bypassed: true}, nil
	}

	draft := sess.Draft
	return s.checkout.CreateCheckoutSession(ctx, types.CheckoutRequest{
		SiteID:       draft.ID,
		Plan:         draft.Plan,
		AddOns:       draft.AddOns,
		MonthlyTotal: draft.MonthlyTotal,
		OwnerID:      acct.ID,
		OwnerEmail:   acct.Email,
		SuccessURL:   s.redirects.Success,
		CancelURL:    s.redirects.Cancel,
	})
}

// resolveOwner returns the existing account for the owner's email after
// checking the password, or creates one.
func (s *Service) resolveOwner(ctx context.Context, owner types.Owner) (*types.Account, error) {
	acct, err := s.accounts.GetByEmail(ctx, owner.Email)
	switch {
	case errors.Is(err, db.ErrAccountNotFound):
		hash, err := s.hasher.GenerateFromPassword(owner.Password.Unmask())
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to hash password", err)
		}
		return s.accounts.Create(ctx, owner, hash)
	case err != nil:
		return nil, err
	}
	if err := s.hasher.CompareHashAndPassword(acct.PasswordHash, owner.Password.Unmask()); err != nil {
		return nil, types.NewAppError(types.ErrCodeAuthInvalidCredentials, "email or password is incorrect", nil)
	}
	return acct, nil
}

// claim moves an idle session into phase. The write is versioned, so of two
// concurrent claims exactly one succeeds and the other sees the phase flag.
func (s *Service) claim(ctx context.Context, id string, phase types.Phase) (*Session, error) {
	return s.mutate(ctx, id, func(sess *Session) (bool, error) {
		if err := s.guardIdle(sess); err != nil {
			return false, err
		}
		sess.Phase = phase
		sess.PhaseStartedAt = s.clock.Now()
		return true, nil
	})
}

// release returns the session to idle, applying update first. Failures are
// logged; the phase timeout frees the session if the write is lost.
func (s *Service) release(ctx context.Context, id string, update func(*Session)) {
	_, err := s.mutate(ctx, id, func(sess *Session) (bool, error) {
		if update != nil {
			update(sess)
		}
		sess.Phase = types.PhaseIdle
		sess.PhaseStartedAt = time.Time{}
		return true, nil
	})
	if err != nil {
		s.log(ctx).ErrorContext(ctx, "failed to release session phase", "session_id", id, "error", err)
	}
}

func (s *Service) guardIdle(sess *Session) error {
	if sess.Phase == "" || sess.Phase == types.PhaseIdle {
		return nil
	}
	if s.clock.Now().Sub(sess.PhaseStartedAt) > phaseTimeout {
		return nil
	}
	return types.NewAppErrorWithDetails(types.ErrCodeConflictInFlight,
		"a request for this session is already in progress", nil,
		map[string]any{"phase": string(sess.Phase)})
}

// guardDrafted refuses configuration changes once a draft exists, so the
// stored site record and the amount charged at checkout cannot diverge.
func guardDrafted(sess *Session) error {
	if sess.Draft == nil {
		return nil
	}
	return types.NewAppErrorWithDetails(types.ErrCodeConflictDrafted,
		"the configuration was already submitted as a draft", nil,
		map[string]any{"draft_id": sess.Draft.ID})
}

// mutate runs fn against the latest stored session and writes the result,
// retrying when another writer got there first. fn returns false to skip the
// write.
func (s *Service) mutate(ctx context.Context, id string, fn func(*Session) (bool, error)) (*Session, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		sess, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, storeError(err)
		}
		changed, err := fn(sess)
		if err != nil {
			return nil, err
		}
		if !changed {
			return sess, nil
		}
		sess.UpdatedAt = s.clock.Now()
		err = s.store.Update(ctx, sess)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, storeError(err)
		}
		return sess, nil
	}
	return nil, types.NewAppError(types.ErrCodeConflictConcurrent, "session was modified concurrently", nil)
}

func storeError(err error) error {
	var appErr *types.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ErrNotFound):
		return types.NewAppError(types.ErrCodeNotFoundSession, "session not found", err)
	default:
		return types.NewAppError(types.ErrCodeInternalStore, "session storage unavailable", err)
	}
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	return types.LoggerFromContext(ctx, s.logger)
}
