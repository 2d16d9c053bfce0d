package dom

import (
	"sync"
	"time"

	"github.com/light-bringer/storefront-filters/internal/pkg/clock"
)

// DefaultDebounce is the quiet period after a theme re-render before
// filtering is re-applied.
const DefaultDebounce = 160 * time.Millisecond

// Reconciler watches for the theme replacing grid content and, once the
// document has been quiet for the debounce window, asks for the current
// filter state to be re-applied.
type Reconciler struct {
	doc      *Document
	guard    *Guard
	clk      clock.Clock
	debounce time.Duration
	// post hands work to the goroutine that owns doc.
	post     func(func())
	onSettle func()

	mu     sync.Mutex
	timer  clock.Timer
	cancel func()
}

// NewReconciler creates a Reconciler. onSettle runs via post.
func NewReconciler(doc *Document, guard *Guard, clk clock.Clock, post func(func()), onSettle func()) *Reconciler {
	return &Reconciler{
		doc:      doc,
		guard:    guard,
		clk:      clk,
		debounce: DefaultDebounce,
		post:     post,
		onSettle: onSettle,
	}
}

// Start begins observing the document. Call from the goroutine that owns doc.
func (r *Reconciler) Start() {
	r.cancel = r.doc.Observe(r.onMutation)
}

// Stop detaches the observer and cancels any pending reapply.
func (r *Reconciler) Stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Reconciler) onMutation(m Mutation) {
	if r.guard.Active() || m.Kind != ChildList {
		return
	}
	scope := r.doc.ObservedScope()
	if scope == nil || !Contains(scope, m.Target) {
		return
	}
	r.schedule()
}

func (r *Reconciler) schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	var t clock.Timer
	t = r.clk.AfterFunc(r.debounce, func() {
		r.mu.Lock()
		current := r.timer == t
		if current {
			r.timer = nil
		}
		r.mu.Unlock()

		if current {
			r.post(r.onSettle)
		}
	})
	r.timer = t
}
