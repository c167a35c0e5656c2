// Package runtime hosts the single-writer loop around the state machine.
// One goroutine consumes actions and applies the reducer; effects run on
// their own goroutines and feed results back in as actions. Nothing else
// ever writes the state.
package runtime

import (
	"context"
	"log"
	"maps"
	"sync"
	"time"

	"visits/internal/app"
	"visits/internal/backend"
	"visits/internal/metrics"
	"visits/internal/restore"
	"visits/internal/sdk"
	"visits/internal/store"
)

// Runtime wires the state machine to its collaborators.
type Runtime struct {
	store    store.Store
	sdk      sdk.SDK
	backend  *backend.Client
	accounts *backend.AccountClient

	deepLinkWait time.Duration

	actions chan app.Action
	timer   singleTimer

	mu    sync.RWMutex
	state app.State

	subMu     sync.Mutex
	subCancel context.CancelFunc

	lastSaved map[string]string

	// OnChange, when set before Run, is called on the reducer goroutine
	// after every state transition. Keep it fast.
	OnChange func(app.State)
}

// New builds a Runtime. Run must be called before the state machine makes
// progress.
func New(st store.Store, s sdk.SDK, bc *backend.Client, ac *backend.AccountClient, deepLinkWait time.Duration) *Runtime {
	return &Runtime{
		store:        st,
		sdk:          s,
		backend:      bc,
		accounts:     ac,
		deepLinkWait: deepLinkWait,
		actions:      make(chan app.Action, 256),
		state:        app.NewState(),
	}
}

// Dispatch enqueues an action for the reducer goroutine.
func (r *Runtime) Dispatch(a app.Action) {
	r.actions <- a
}

// State returns a snapshot of the current state.
func (r *Runtime) State() app.State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Screen projects the current state for rendering.
func (r *Runtime) Screen() app.Screen {
	return app.ToScreen(r.State())
}

// Run starts the launch sequence and consumes actions until ctx is done.
func (r *Runtime) Run(ctx context.Context) {
	r.Dispatch(app.FinishedLaunching{})
	for {
		select {
		case <-ctx.Done():
			r.timer.Cancel()
			return
		case a := <-r.actions:
			r.step(ctx, a)
		}
	}
}

func (r *Runtime) step(ctx context.Context, a app.Action) {
	start := time.Now()
	prev := r.State()
	next, effects := app.Reduce(prev, a)
	metrics.ReduceDuration.Observe(time.Since(start).Seconds())
	metrics.ActionsReduced.WithLabelValues(a.Name()).Inc()
	if next.Kind != prev.Kind {
		metrics.FlowTransitions.WithLabelValues(string(prev.Kind), string(next.Kind)).Inc()
		log.Printf("flow %s -> %s (on %s)", prev.Kind, next.Kind, a.Name())
	}

	r.mu.Lock()
	r.state = next
	r.mu.Unlock()

	r.persist(ctx, next)

	for _, e := range effects {
		// Timer control must keep reduction order; a stale cancel from an
		// earlier reduction must never stop a newer reduction's timer.
		switch e.(type) {
		case app.StartDeepLinkTimer, app.CancelDeepLinkTimer:
			r.execute(ctx, e, next)
		default:
			go r.execute(ctx, e, next)
		}
	}
	if r.OnChange != nil {
		r.OnChange(next)
	}
}

// persist saves the durable slice of the state whenever it changes. Saves
// are whole-record, matching the store contract.
func (r *Runtime) persist(ctx context.Context, s app.State) {
	rec, ok := app.Durable(s)
	if !ok {
		return
	}
	enc := restore.Encode(rec)
	if maps.Equal(enc, r.lastSaved) {
		return
	}
	if err := r.store.Save(ctx, enc); err != nil {
		log.Printf("state save failed: %v", err)
		return
	}
	r.lastSaved = enc
}
