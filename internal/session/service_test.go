package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewizard/internal/db"
	"sitewizard/internal/types"
	"sitewizard/internal/wizard"
)

// --- fakes ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeDrafts struct {
	mu       sync.Mutex
	created  []types.DraftRequest
	owners   map[string]string
	err      error
	entered  chan struct{}
	proceed  chan struct{}
	assignFn func(draftID, ownerID string) error
}

func (f *fakeDrafts) CreateDraft(_ context.Context, req types.DraftRequest) (*types.Draft, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.proceed
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &types.Draft{
		ID:           "site_1",
		SessionID:    req.SessionID,
		Subdomain:    req.Subdomain,
		URL:          "https://" + req.Subdomain + ".sites.test",
		Plan:         req.Plan,
		AddOns:       req.AddOns,
		MonthlyTotal: req.MonthlyTotal,
		Status:       types.DraftStatusPending,
	}, nil
}

func (f *fakeDrafts) AssignOwner(_ context.Context, draftID, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.owners == nil {
		f.owners = map[string]string{}
	}
	f.owners[draftID] = ownerID
	return nil
}

type fakeAccounts struct {
	byEmail map[string]*types.Account
	created []types.Owner
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*types.Account, error) {
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, db.ErrAccountNotFound
}

func (f *fakeAccounts) Create(_ context.Context, owner types.Owner, hash string) (*types.Account, error) {
	f.created = append(f.created, owner)
	return &types.Account{ID: "own_new", Email: owner.Email, PasswordHash: hash}, nil
}

// plainHasher keeps tests fast; bcrypt at cost 12 takes hundreds of ms.
type plainHasher struct{}

func (plainHasher) CompareHashAndPassword(hash, pw string) error {
	if hash != "hashed:"+pw {
		return errors.New("mismatch")
	}
	return nil
}

func (plainHasher) GenerateFromPassword(pw string) (string, error) { return "hashed:" + pw, nil }

type fakePublisher struct {
	msgs []types.SiteProvisioningMessage
	err  error
}

func (f *fakePublisher) PublishProvisioning(_ context.Context, msg types.SiteProvisioningMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

type fakeCheckout struct {
	reqs []types.CheckoutRequest
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, req types.CheckoutRequest) (*types.CheckoutResult, error) {
	f.reqs = append(f.reqs, req)
	return &types.CheckoutResult{RedirectURL: "https://checkout.test/cs_1", SessionID: "cs_1"}, nil
}

type fakeUploader struct {
	keys []string
}

func (f *fakeUploader) Upload(_ context.Context, key, filename string, body io.Reader) (*types.UploadResult, error) {
	data, _ := io.ReadAll(body)
	f.keys = append(f.keys, key)
	return &types.UploadResult{
		URL:         "https://cdn.test/" + key + "/" + filename,
		ContentType: "image/png",
		Size:        int64(len(data)),
	}, nil
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) Count(_ context.Context, metric string, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[metric]++
}

type harness struct {
	svc       *Service
	store     *MemoryStore
	clock     *fakeClock
	drafts    *fakeDrafts
	accounts  *fakeAccounts
	publisher *fakePublisher
	checkout  *fakeCheckout
	uploader  *fakeUploader
	metrics   *countingMetrics
}

func newHarness(t *testing.T, mutate ...func(*ServiceConfig)) *harness {
	t.Helper()
	h := &harness{
		store:     NewMemoryStore(),
		clock:     &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		drafts:    &fakeDrafts{},
		accounts:  &fakeAccounts{byEmail: map[string]*types.Account{}},
		publisher: &fakePublisher{},
		checkout:  &fakeCheckout{},
		uploader:  &fakeUploader{},
		metrics:   &countingMetrics{},
	}
	cfg := ServiceConfig{
		Store:     h.store,
		Drafts:    h.drafts,
		Accounts:  h.accounts,
		Publisher: h.publisher,
		Checkout:  h.checkout,
		Uploader:  h.uploader,
		ValidateChannel: func(ch types.ChannelID, v string) (string, error) {
			if ch == types.ChannelEmail && !strings.Contains(v, "@") {
				return "", types.NewAppError(types.ErrCodeValidationInvalidChannel, "invalid email", nil)
			}
			return strings.TrimSpace(v), nil
		},
		Hasher:    plainHasher{},
		Metrics:   h.metrics,
		Clock:     h.clock,
		Redirects: types.RedirectURLs{Success: "https://app.test/ok", Cancel: "https://app.test/cancel"},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	h.svc = NewService(cfg)
	return h
}

func (h *harness) start(t *testing.T) string {
	t.Helper()
	view, err := h.svc.Start(context.Background())
	require.NoError(t, err)
	return view.SessionID
}

func (h *harness) do(t *testing.T, id string, a wizard.Action) *View {
	t.Helper()
	env, err := wizard.EncodeAction(a)
	require.NoError(t, err)
	view, err := h.svc.Dispatch(context.Background(), id, env)
	require.NoError(t, err)
	return view
}

// ready drives a session to a state that can be finalized.
func (h *harness) ready(t *testing.T, id string) {
	t.Helper()
	h.do(t, id, wizard.SetPlan{Plan: types.PlanBuilder})
	h.do(t, id, wizard.SetBusinessField{Field: types.BusinessName, Value: "Acme"})
	h.do(t, id, wizard.SetBusinessField{Field: types.BusinessSubdomain, Value: "acme"})
	h.do(t, id, wizard.ToggleAddOn{AddOn: types.AddOnFloatingCTA})
}

func requireCode(t *testing.T, err error, code types.ErrorCode) {
	t.Helper()
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

// --- tests ---

func TestService_StartAndGet(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)

	view, err := h.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "wiz_"))
	assert.Equal(t, types.PlanNone, view.Config.Plan)
	assert.Len(t, view.Steps, 2)
	assert.Equal(t, types.StepIdentity, view.CurrentStep.ID)
	assert.Equal(t, types.PhaseIdle, view.Phase)
	assert.False(t, view.CanUndo)

	_, err = h.svc.Get(context.Background(), "wiz_missing")
	requireCode(t, err, types.ErrCodeNotFoundSession)
}

func TestService_DispatchAppliesAndDerives(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)

	view := h.do(t, id, wizard.SetPlan{Plan: types.PlanBuilder})
	assert.True(t, view.Applied)
	assert.True(t, view.CanUndo)
	assert.Len(t, view.Steps, 6)
	assert.Equal(t, "79.90", view.Quote.Total.StringFixed(2))
	assert.Equal(t, 4, view.Limits.ServiceCards)
	assert.Equal(t, types.StatusPurchasable, view.Entitlements[types.FeatureExtraCards])

	view = h.do(t, id, wizard.ToggleAddOn{AddOn: types.AddOnExtraCards})
	assert.Equal(t, 20, view.Limits.ServiceCards)
	assert.Equal(t, 2, h.metrics.counts[types.MetricActionApplied])
}

func TestService_ViewClampsStepAfterPlanShrinks(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.do(t, id, wizard.SetPlan{Plan: types.PlanBuilder})
	h.do(t, id, wizard.GoToStep{Index: 5})

	view := h.do(t, id, wizard.SetPlan{Plan: types.PlanEntry})
	assert.Equal(t, 5, view.Config.CurrentStep)
	seq := view.Steps
	assert.Equal(t, seq[len(seq)-1], view.CurrentStep)
}

func TestService_DispatchRejectedActionIsNotAnError(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.do(t, id, wizard.SetPlan{Plan: types.PlanBuilder})

	view := h.do(t, id, wizard.SelectTemplate{TemplateID: "T1"})

	assert.False(t, view.Applied)
	assert.Empty(t, view.Config.TemplateID)
	assert.Equal(t, 1, h.metrics.counts[types.MetricActionRejected])

	sess, err := h.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, sess.History, 1)
}

func TestService_DispatchUnknownAction(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)

	_, err := h.svc.Dispatch(context.Background(), id, wizard.Envelope{Type: "explode"})
	requireCode(t, err, types.ErrCodeValidationInvalidAction)
}

func TestService_ServiceCardLimitRejected(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.do(t, id, wizard.SetPlan{Plan: types.PlanBuilder})
	for i := 0; i < 4; i++ {
		h.do(t, id, wizard.AddServiceCard{})
	}

	env, _ := wizard.EncodeAction(wizard.AddServiceCard{})
	_, err := h.svc.Dispatch(context.Background(), id, env)
	requireCode(t, err, types.ErrCodeLimitServiceCards)

	view, err := h.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, view.Config.ServiceCards, 4)
}

func TestService_ChannelValueValidatedAndNormalized(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.do(t, id, wizard.SetPlan{Plan: types.PlanBuilder})

	view := h.do(t, id, wizard.SetChannelValue{Channel: types.ChannelEmail, Value: "  hi@acme.test "})
	assert.Equal(t, "hi@acme.test", view.Config.ChannelValues[types.ChannelEmail])

	env, _ := wizard.EncodeAction(wizard.SetChannelValue{Channel: types.ChannelEmail, Value: "nope"})
	_, err := h.svc.Dispatch(context.Background(), id, env)
	requireCode(t, err, types.ErrCodeValidationInvalidChannel)
}

func TestService_SubdomainNormalized(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)

	view := h.do(t, id, wizard.SetBusinessField{Field: types.BusinessSubdomain, Value: " Acme-Bakery "})
	assert.Equal(t, "acme-bakery", view.Config.Subdomain)
}

func TestService_Undo(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.do(t, id, wizard.SetPlan{Plan: types.PlanBuilder})
	h.do(t, id, wizard.NextStep{})
	h.do(t, id, wizard.SetPalette{PaletteID: "forest"})

	view, err := h.svc.Undo(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ocean", view.Config.PaletteID)
	assert.Equal(t, 1, view.Config.CurrentStep, "navigation is not undone")

	view, err = h.svc.Undo(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, types.PlanNone, view.Config.Plan)
	assert.False(t, view.CanUndo)

	_, err = h.svc.Undo(context.Background(), id)
	requireCode(t, err, types.ErrCodeConflictNothing)
}

func TestService_UndoDepthBounded(t *testing.T) {
	h := newHarness(t, func(c *ServiceConfig) { c.UndoDepth = 2 })
	id := h.start(t)
	h.do(t, id, wizard.SetPlan{Plan: types.PlanBuilder})
	h.do(t, id, wizard.SetPalette{PaletteID: "forest"})
	h.do(t, id, wizard.SetPalette{PaletteID: "sunset"})

	for i := 0; i < 2; i++ {
		_, err := h.svc.Undo(context.Background(), id)
		require.NoError(t, err)
	}
	_, err := h.svc.Undo(context.Background(), id)
	requireCode(t, err, types.ErrCodeConflictNothing)

	view, _ := h.svc.Get(context.Background(), id)
	assert.Equal(t, types.PlanBuilder, view.Config.Plan)
}

func TestService_Delete(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)

	require.NoError(t, h.svc.Delete(context.Background(), id))
	_, err := h.svc.Get(context.Background(), id)
	requireCode(t, err, types.ErrCodeNotFoundSession)
}

func TestService_FinalizeIncomplete(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.do(t, id, wizard.SetPlan{Plan: types.PlanEntry})

	_, err := h.svc.Finalize(context.Background(), id)
	requireCode(t, err, types.ErrCodeValidationIncomplete)

	var appErr *types.AppError
	errors.As(err, &appErr)
	assert.ElementsMatch(t, []string{"business_name", "subdomain", "template_id"}, appErr.Details["missing"])

	view, _ := h.svc.Get(context.Background(), id)
	assert.Equal(t, types.PhaseIdle, view.Phase)
	assert.Empty(t, h.drafts.created)
}

func TestService_FinalizeCreatesDraftAndQueuesProvisioning(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.ready(t, id)

	ctx := types.WithRequestID(context.Background(), "req-1")
	draft, err := h.svc.Finalize(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "site_1", draft.ID)
	require.Len(t, h.drafts.created, 1)
	req := h.drafts.created[0]
	assert.Equal(t, id, req.SessionID)
	assert.Equal(t, "89.80", req.MonthlyTotal.StringFixed(2))

	require.Len(t, h.publisher.msgs, 1)
	assert.Equal(t, "site_1", h.publisher.msgs[0].DraftID)
	assert.Equal(t, "req-1", h.publisher.msgs[0].TraceID)

	view, _ := h.svc.Get(ctx, id)
	assert.Equal(t, types.PhaseIdle, view.Phase)
	require.NotNil(t, view.Draft)

	// Finalizing again returns the same draft.
	again, err := h.svc.Finalize(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, again.ID)
	assert.Len(t, h.drafts.created, 1)
	assert.Equal(t, 1, h.metrics.counts[types.MetricDraftCreated])
}

func TestService_FinalizeCollaboratorFailureLeavesSessionUntouched(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.ready(t, id)
	before, _ := h.svc.Get(context.Background(), id)

	h.drafts.err = types.NewAppError(types.ErrCodeConflictSubdomain, "taken", nil)
	_, err := h.svc.Finalize(context.Background(), id)
	requireCode(t, err, types.ErrCodeConflictSubdomain)

	after, _ := h.svc.Get(context.Background(), id)
	assert.Equal(t, before.Config, after.Config)
	assert.Equal(t, types.PhaseIdle, after.Phase)
	assert.Nil(t, after.Draft)
}

func TestService_FinalizePublishFailureKeepsDraft(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.ready(t, id)
	h.publisher.err = errors.New("queue down")

	draft, err := h.svc.Finalize(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "site_1", draft.ID)
}

func TestService_SecondFinalizeWhileInFlightConflicts(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.ready(t, id)
	h.drafts.entered = make(chan struct{})
	h.drafts.proceed = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Finalize(context.Background(), id)
		done <- err
	}()
	<-h.drafts.entered

	_, err := h.svc.Finalize(context.Background(), id)
	requireCode(t, err, types.ErrCodeConflictInFlight)

	env, _ := wizard.EncodeAction(wizard.SetPalette{PaletteID: "forest"})
	_, err = h.svc.Dispatch(context.Background(), id, env)
	requireCode(t, err, types.ErrCodeConflictInFlight)

	close(h.drafts.proceed)
	require.NoError(t, <-done)
	assert.Len(t, h.drafts.created, 1)
}

func TestService_StalePhaseExpires(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)

	sess, _ := h.store.Get(context.Background(), id)
	sess.Phase = types.PhaseCheckout
	sess.PhaseStartedAt = h.clock.Now()
	require.NoError(t, h.store.Update(context.Background(), sess))

	env, _ := wizard.EncodeAction(wizard.SetPlan{Plan: types.PlanEntry})
	_, err := h.svc.Dispatch(context.Background(), id, env)
	requireCode(t, err, types.ErrCodeConflictInFlight)

	h.clock.Advance(phaseTimeout + time.Second)
	_, err = h.svc.Dispatch(context.Background(), id, env)
	assert.NoError(t, err)
}

func TestService_CheckoutRequiresDraft(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.ready(t, id)

	_, err := h.svc.Checkout(context.Background(), id, types.Owner{Email: "ana@acme.test", Password: "hunter22"})
	requireCode(t, err, types.ErrCodeConflictNoDraft)

	view, _ := h.svc.Get(context.Background(), id)
	assert.Equal(t, types.PhaseIdle, view.Phase)
}

func TestService_CheckoutWeakPassword(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)

	_, err := h.svc.Checkout(context.Background(), id, types.Owner{Email: "ana@acme.test", Password: "short"})
	requireCode(t, err, types.ErrCodeValidationWeakPassword)
}

func TestService_CheckoutNewOwner(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.ready(t, id)
	_, err := h.svc.Finalize(context.Background(), id)
	require.NoError(t, err)

	res, err := h.svc.Checkout(context.Background(), id,
		types.Owner{Name: "Ana", Email: "ana@acme.test", Password: "hunter22"})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.test/cs_1", res.RedirectURL)
	assert.False(t, res.Bypassed)
	require.Len(t, h.accounts.created, 1)
	assert.Equal(t, "own_new", h.drafts.owners["site_1"])

	require.Len(t, h.checkout.reqs, 1)
	req := h.checkout.reqs[0]
	assert.Equal(t, "site_1", req.SiteID)
	assert.Equal(t, types.PlanBuilder, req.Plan)
	assert.Equal(t, []types.AddOnID{types.AddOnFloatingCTA}, req.AddOns)
	assert.Equal(t, "89.80", req.MonthlyTotal.StringFixed(2))
	assert.Equal(t, "https://app.test/ok", req.SuccessURL)
	assert.Equal(t, 1, h.metrics.counts[types.MetricCheckoutStarted])
}

func TestService_CheckoutExistingOwnerWrongPassword(t *testing.T) {
	h := newHarness(t)
	h.accounts.byEmail["ana@acme.test"] = &types.Account{ID: "own_1", Email: "ana@acme.test", PasswordHash: "hashed:hunter22"}
	id := h.start(t)
	h.ready(t, id)
	_, err := h.svc.Finalize(context.Background(), id)
	require.NoError(t, err)

	_, err = h.svc.Checkout(context.Background(), id, types.Owner{Email: "ana@acme.test", Password: "wrongpass1"})
	requireCode(t, err, types.ErrCodeAuthInvalidCredentials)
	assert.Empty(t, h.checkout.reqs)

	_, err = h.svc.Checkout(context.Background(), id, types.Owner{Email: "ana@acme.test", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "own_1", h.drafts.owners["site_1"])
	assert.Empty(t, h.accounts.created)
}

func TestService_DraftLocksConfiguration(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.ready(t, id)
	h.do(t, id, wizard.NextStep{})
	draft, err := h.svc.Finalize(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "89.80", draft.MonthlyTotal.StringFixed(2))

	env, _ := wizard.EncodeAction(wizard.ToggleAddOn{AddOn: types.AddOnFloatingCTA})
	_, err = h.svc.Dispatch(context.Background(), id, env)
	requireCode(t, err, types.ErrCodeConflictDrafted)

	_, err = h.svc.Undo(context.Background(), id)
	requireCode(t, err, types.ErrCodeConflictDrafted)

	_, _, err = h.svc.Upload(context.Background(), id, "logo", "logo.png", strings.NewReader("png"))
	requireCode(t, err, types.ErrCodeConflictDrafted)
	assert.Empty(t, h.uploader.keys)

	view := h.do(t, id, wizard.PrevStep{})
	assert.True(t, view.Applied)
	assert.Equal(t, []types.AddOnID{types.AddOnFloatingCTA}, view.Config.AddOns)
}

func TestService_CheckoutBillsDraftSnapshot(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.ready(t, id)
	_, err := h.svc.Finalize(context.Background(), id)
	require.NoError(t, err)

	// A configuration that drifted from the draft still bills the draft.
	sess, err := h.store.Get(context.Background(), id)
	require.NoError(t, err)
	sess.Config = wizard.Apply(sess.Config, wizard.ToggleAddOn{AddOn: types.AddOnFloatingCTA})
	require.Empty(t, sess.Config.AddOns)
	require.NoError(t, h.store.Update(context.Background(), sess))

	_, err = h.svc.Checkout(context.Background(), id, types.Owner{Email: "ana@acme.test", Password: "hunter22"})
	require.NoError(t, err)

	require.Len(t, h.checkout.reqs, 1)
	req := h.checkout.reqs[0]
	assert.Equal(t, "site_1", req.SiteID)
	assert.Equal(t, []types.AddOnID{types.AddOnFloatingCTA}, req.AddOns)
	assert.Equal(t, "89.80", req.MonthlyTotal.StringFixed(2))
}

type failingStore struct {
	*MemoryStore
	err error
}

func (f failingStore) Get(context.Context, string) (*Session, error) { return nil, f.err }

func TestService_StoreFailureHidesCause(t *testing.T) {
	cause := errors.New("redis get: dial tcp 10.0.3.7:6379: connect: connection refused")
	h := newHarness(t, func(c *ServiceConfig) {
		c.Store = failingStore{MemoryStore: NewMemoryStore(), err: cause}
	})

	_, err := h.svc.Get(context.Background(), "wiz_1")
	requireCode(t, err, types.ErrCodeInternalStore)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.NotContains(t, appErr.Message, "10.0.3.7")
	assert.ErrorIs(t, err, cause)
}

func TestService_CheckoutBypass(t *testing.T) {
	h := newHarness(t, func(c *ServiceConfig) { c.BypassCheckout = true })
	id := h.start(t)
	h.ready(t, id)
	_, err := h.svc.Finalize(context.Background(), id)
	require.NoError(t, err)

	res, err := h.svc.Checkout(context.Background(), id, types.Owner{Email: "ana@acme.test", Password: "hunter22"})
	require.NoError(t, err)
	assert.True(t, res.Bypassed)
	assert.Empty(t, h.checkout.reqs)
}

func TestService_UploadImageSlot(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)

	res, view, err := h.svc.Upload(context.Background(), id, "logo", "logo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "logo", res.Slot)
	assert.Equal(t, res.URL, view.Config.Images[types.SlotLogo])
	assert.Equal(t, []string{id + "/logo"}, h.uploader.keys)
}

func TestService_UploadCardImageRequiresEntitlement(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)
	h.do(t, id, wizard.SetPlan{Plan: types.PlanBuilder})
	h.do(t, id, wizard.AddServiceCard{})

	_, _, err := h.svc.Upload(context.Background(), id, "card-0", "c.png", strings.NewReader("x"))
	requireCode(t, err, types.ErrCodeValidationInvalidUpload)
	assert.Empty(t, h.uploader.keys)

	h.do(t, id, wizard.ToggleAddOn{AddOn: types.AddOnPremiumCards})
	_, view, err := h.svc.Upload(context.Background(), id, "card-0", "c.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotEmpty(t, view.Config.ServiceCards[0].ImageURL)
}

func TestService_UploadUnknownSlot(t *testing.T) {
	h := newHarness(t)
	id := h.start(t)

	for _, slot := range []string{"banner", "card-x", "card--1"} {
		_, _, err := h.svc.Upload(context.Background(), id, slot, "a.png", strings.NewReader("x"))
		requireCode(t, err, types.ErrCodeValidationInvalidUpload)
	}
}
