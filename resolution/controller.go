// Package resolution decides which ledger record to show and reconciles
// asynchronous gateway answers into a single published state.
//
// Requests are accepted in call order and each one receives a monotonically
// increasing token. Only the answer carrying the latest token may publish, so
// a slow earlier answer never replaces the result of a later request.
package resolution

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	slogcontext "github.com/veqryn/slog-context"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/ledger"
)

// Controller owns the resolution state. Request methods never block on the
// ledger; State is a lock-free read of the latest published snapshot.
//
// Superseding a request does not cancel its gateway call. The call runs to
// completion and its answer is dropped.
type Controller struct {
	gw       ledger.Gateway
	selector *Selector
	logger   *slog.Logger
	metrics  *Metrics
	timeout  time.Duration
	observer func(State)

	ctx    context.Context
	cancel context.CancelFunc
	calls  sync.WaitGroup

	// mu serialises token issue with compare-and-publish.
	mu     sync.Mutex
	latest uint64
	// draftAt is the draft pointer seen when latest was accepted.
	draftAt *string

	state atomic.Pointer[State]
	draft atomic.Pointer[string]
}

type Option func(*Controller)

// WithSelector sets the random identifier source.
func WithSelector(s *Selector) Option { return func(c *Controller) { c.selector = s } }

func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.logger = l } }

func WithMetrics(m *Metrics) Option { return func(c *Controller) { c.metrics = m } }

// WithCallTimeout bounds every gateway call. Zero, the default, means a hung
// gateway leaves the state Pending until the call returns.
func WithCallTimeout(d time.Duration) Option { return func(c *Controller) { c.timeout = d } }

// WithObserver registers fn to be called with every published state, in
// publish order. fn runs with the controller lock held and must not call
// request methods.
func WithObserver(fn func(State)) Option { return func(c *Controller) { c.observer = fn } }

func New(gw ledger.Gateway, opts ...Option) *Controller {
	c := &Controller{
		gw:       gw,
		selector: &Selector{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(slogcontext.NewCtx(context.Background(), c.logger))

	idle := Idle()
	c.state.Store(&idle)
	empty := ""
	c.draft.Store(&empty)
	return c
}

// State returns the latest published state.
func (c *Controller) State() State { return *c.state.Load() }

// DraftInput returns the text last stored by UpdateDraftInput.
func (c *Controller) DraftInput() string { return *c.draft.Load() }

// UpdateDraftInput stores user-typed text. It never triggers a fetch.
func (c *Controller) UpdateDraftInput(raw string) { c.draft.Store(&raw) }

// RequestByID starts resolving id, superseding any request in flight.
func (c *Controller) RequestByID(id int64) { c.requestByID(sourceExplicit, id) }

// SubmitDraft resolves the current draft input. Malformed input fails
// immediately without a gateway call.
func (c *Controller) SubmitDraft() {
	id, verr := selectExplicit(c.DraftInput())
	if verr != nil {
		c.metrics.request(sourceDraft)
		c.mu.Lock()
		defer c.mu.Unlock()
		c.publishLocked(c.acceptLocked(), Failed(NoID, verr))
		return
	}
	c.requestByID(sourceDraft, id)
}

// RequestExplicit stores raw as the draft and submits it.
func (c *Controller) RequestExplicit(raw string) {
	c.UpdateDraftInput(raw)
	c.SubmitDraft()
}

// RequestParent resolves an ancestor of the currently resolved entity. It
// returns false, and does nothing, when there is no resolved entity or the
// slot holds no ancestor.
func (c *Controller) RequestParent(slot entity.ParentSlot) bool {
	s := c.State()
	if s.Status != StatusResolved || s.Entity == nil {
		return false
	}
	id := s.Entity.Parent(slot)
	if id < 1 {
		return false
	}
	c.requestByID(sourceParent, id)
	return true
}

// RequestRandom reads the ledger size and resolves a uniformly chosen id.
func (c *Controller) RequestRandom() {
	c.metrics.request(sourceRandom)
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.acceptLocked()
	c.publishLocked(t, Pending(NoID))
	c.calls.Add(1)
	go c.lookupBound(t)
}

// Wait blocks until every gateway call issued so far has returned.
func (c *Controller) Wait() { c.calls.Wait() }

// Close cancels outstanding gateway calls and waits for them to return.
func (c *Controller) Close() {
	c.cancel()
	c.calls.Wait()
}

func (c *Controller) requestByID(source string, id int64) {
	c.metrics.request(source)
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.acceptLocked()
	if id < 1 {
		c.publishLocked(t, Failed(NoID, newError(KindInvalidIdentifier, "identifier must be at least 1, got %d", id)))
		return
	}
	c.fetchLocked(t, id)
}

func (c *Controller) acceptLocked() uint64 {
	c.draftAt = c.draft.Load()
	c.latest++
	return c.latest
}

func (c *Controller) fetchLocked(t uint64, id int64) {
	c.publishLocked(t, Pending(id))
	c.calls.Add(1)
	go c.fetch(t, id)
}

func (c *Controller) lookupBound(t uint64) {
	defer c.calls.Done()

	ctx, cancel := c.callContext()
	start := time.Now()
	bound, err := c.gw.TotalCount(ctx)
	cancel()
	c.metrics.observeCall(opTotalCount, time.Since(start))

	c.mu.Lock()
	defer c.mu.Unlock()
	if t != c.latest {
		c.dropLocked(t, opTotalCount)
		return
	}
	if err != nil {
		c.logger.Warn("ledger size lookup failed", "err", err)
		c.publishLocked(t, Failed(NoID, wrapError(KindBoundLookupFailed, err, "could not read the ledger size: %v", err)))
		return
	}
	id, serr := c.selector.selectRandom(bound)
	if serr != nil {
		c.publishLocked(t, Failed(NoID, serr))
		return
	}
	c.fetchLocked(t, id)
}

func (c *Controller) fetch(t uint64, id int64) {
	defer c.calls.Done()

	ctx, cancel := c.callContext()
	start := time.Now()
	e, err := c.gw.FetchByID(ctx, id)
	cancel()
	c.metrics.observeCall(opFetch, time.Since(start))

	c.mu.Lock()
	defer c.mu.Unlock()
	if t != c.latest {
		c.dropLocked(t, opFetch)
		return
	}
	if err == nil && e.ID != id {
		err = newError(KindGatewayUnavailable, "ledger answered id %d for a request of id %d", e.ID, id)
	} else if err == nil {
		if verr := e.Validate(); verr != nil {
			err = wrapError(KindGatewayUnavailable, verr, "ledger returned an invalid record: %v", verr)
		}
	}
	if err != nil {
		ferr, ok := err.(*Error)
		if !ok {
			ferr = classifyFetch(id, err)
		}
		if ferr.Kind != KindNotFound {
			c.logger.Warn("ledger fetch failed", "id", id, "err", err)
		}
		c.publishLocked(t, Failed(id, ferr))
		return
	}
	c.publishLocked(t, Resolved(id, e))
	// Text typed while the call was in flight wins over the resolved id.
	shown := strconv.FormatInt(id, 10)
	c.draft.CompareAndSwap(c.draftAt, &shown)
}

func (c *Controller) dropLocked(t uint64, op string) {
	c.metrics.drop()
	c.logger.Debug("dropping superseded answer", "token", t, "latest", c.latest, "op", op)
}

func (c *Controller) publishLocked(t uint64, s State) {
	c.state.Store(&s)
	c.metrics.outcome(s)
	c.logger.Debug("resolution state", "token", t, "state", s.String())
	if c.observer != nil {
		c.observer(s)
	}
}

func (c *Controller) callContext() (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(c.ctx, c.timeout)
	}
	return context.WithCancel(c.ctx)
}
