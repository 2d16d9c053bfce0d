package filterstate

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/light-bringer/storefront-filters/internal/client/dom"
	"github.com/light-bringer/storefront-filters/internal/client/proxyclient"
	"github.com/light-bringer/storefront-filters/internal/pkg/clock"
)

// Fetcher retrieves filter results for a server query.
type Fetcher interface {
	Fetch(ctx context.Context, query url.Values) (*proxyclient.Response, error)
}

// Outcome reports how one dispatched request ended.
type Outcome struct {
	Ticket Ticket
	Mode   HistoryMode
	// Stale is set when a newer request had been dispatched.
	Stale  bool
	Err    error
	Result dom.PatchResult
}

// Options configures a Synchronizer.
type Options struct {
	Document *dom.Document
	History  History
	Fetcher  Fetcher
	Loop     *Loop
	Clock    clock.Clock
	Logger   *zap.Logger
	// OnOutcome observes every finished request, on the loop goroutine.
	OnOutcome func(Outcome)
}

// Synchronizer drives controls, URL and grid from user actions, history
// navigation and theme re-renders. All state is touched only on the loop;
// fetches run on their own goroutines and post results back.
type Synchronizer struct {
	ctx    context.Context
	cancel context.CancelFunc

	loop       *Loop
	doc        *dom.Document
	guard      *dom.Guard
	patcher    *dom.Patcher
	reconciler *dom.Reconciler
	history    History
	fetcher    Fetcher
	logger     *zap.Logger
	onOutcome  func(Outcome)

	collectionHandle string
	controls         Controls
	seq              Sequencer
	phase            Phase

	inflight sync.WaitGroup
}

// New creates a Synchronizer for the collection page at opts.History's location.
func New(opts Options) (*Synchronizer, error) {
	if opts.Document == nil || opts.History == nil || opts.Fetcher == nil || opts.Loop == nil {
		return nil, fmt.Errorf("document, history, fetcher and loop are required")
	}
	handle, ok := CollectionHandleFromPath(opts.History.Location().Path)
	if !ok {
		return nil, fmt.Errorf("not a collection page: %s", opts.History.Location().Path)
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	guard := &dom.Guard{}
	s := &Synchronizer{
		ctx:              ctx,
		cancel:           cancel,
		loop:             opts.Loop,
		doc:              opts.Document,
		guard:            guard,
		patcher:          dom.NewPatcher(opts.Document, guard),
		history:          opts.History,
		fetcher:          opts.Fetcher,
		logger:           opts.Logger,
		onOutcome:        opts.OnOutcome,
		collectionHandle: handle,
	}
	s.reconciler = dom.NewReconciler(opts.Document, guard, opts.Clock, func(fn func()) { opts.Loop.Post(fn) }, s.Reconcile)
	return s, nil
}

// CollectionHandle returns the handle read from the page path.
func (s *Synchronizer) CollectionHandle() string { return s.collectionHandle }

// The methods below must run on the loop. Use Loop.Post or Loop.Do from
// other goroutines.

// Init hydrates controls from the URL, starts observing the grid and
// dispatches the first request with replace semantics.
func (s *Synchronizer) Init() {
	dom.SetLoading(s.doc, s.guard, false)
	s.controls.SetState(FromURL(s.history.Location()))
	s.reconciler.Start()
	s.dispatch(Replace)
}

// ChangeControl handles a dropdown or price input change.
func (s *Synchronizer) ChangeControl(field, value string) error {
	if !s.controls.Set(field, value) {
		return fmt.Errorf("unknown filter control %q", field)
	}
	if field == FieldMin || field == FieldMax {
		// Price inputs apply on the Apply action.
		return nil
	}
	s.dispatch(Push)
	return nil
}

// Apply handles the price Apply action.
func (s *Synchronizer) Apply() {
	s.dispatch(Push)
}

// Clear resets every control.
func (s *Synchronizer) Clear() {
	s.controls.SetState(ClientFilterState{})
	s.dispatch(Push)
}

// PopState rehydrates controls after history navigation.
func (s *Synchronizer) PopState() {
	s.controls.SetState(FromURL(s.history.Location()))
	s.dispatch(Replace)
}

// Reconcile re-applies the current state after the theme re-rendered results.
func (s *Synchronizer) Reconcile() {
	s.dispatch(Replace)
}

// Phase returns the current phase.
func (s *Synchronizer) Phase() Phase { return s.phase }

// State returns the current control values.
func (s *Synchronizer) State() ClientFilterState { return s.controls.State() }

// Controls exposes the controls for inspection.
func (s *Synchronizer) Controls() *Controls { return &s.controls }

func (s *Synchronizer) dispatch(mode HistoryMode) {
	state := s.controls.State()

	s.phase = PhaseSyncingURL
	dom.SetLoading(s.doc, s.guard, true)
	next := state.ApplyToURL(s.history.Location())
	if mode == Push {
		s.history.Push(next)
	} else {
		s.history.Replace(next)
	}

	ticket := s.seq.Next()
	s.phase = PhaseAwaitingResponse
	query := state.ServerQuery(s.collectionHandle)

	s.logger.Debug("dispatch filter request",
		zap.Uint64("ticket", uint64(ticket)),
		zap.Stringer("mode", mode),
		zap.String("query", query.Encode()),
	)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		resp, err := s.fetcher.Fetch(s.ctx, query)
		s.loop.Post(func() { s.receive(ticket, mode, resp, err) })
	}()
}

func (s *Synchronizer) receive(ticket Ticket, mode HistoryMode, resp *proxyclient.Response, err error) {
	out := Outcome{Ticket: ticket, Mode: mode}

	switch {
	case !s.seq.IsLatest(ticket):
		out.Stale = true
		s.logger.Debug("discarding stale filter response", zap.Uint64("ticket", uint64(ticket)))
	case err != nil:
		out.Err = err
		s.logger.Warn("filter request failed", zap.Error(err), zap.Uint64("ticket", uint64(ticket)))
		s.phase = PhaseIdle
		dom.SetLoading(s.doc, s.guard, false)
	default:
		s.phase = PhaseApplying
		s.controls.Hydrate(resp.Facets)
		out.Result = s.patcher.Apply(resp.Handles, s.controls.State().HasActive())
		s.phase = PhaseIdle
		dom.SetLoading(s.doc, s.guard, false)
	}

	if s.onOutcome != nil {
		s.onOutcome(out)
	}
}

// Close stops observing, cancels in-flight fetches and waits for them.
// Call it from outside the loop while the loop is still running.
func (s *Synchronizer) Close() {
	_ = s.loop.Do(s.reconciler.Stop)
	s.cancel()
	s.inflight.Wait()
}
