// Package request is the orchestration glue between the state machine and
// the periodic refresh of backend data. It never mutates state; everything
// it wants done goes through the action channel.
package request

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"visits/internal/app"
	"visits/internal/model"
)

// Tuple is the session slice the refresh machinery operates on. It exists
// only while the app is on the main flow with an unlocked SDK; any other
// flow has no session to refresh.
type Tuple struct {
	Orders          model.OrderSet
	SelectedOrderID string
	DeviceID        model.DeviceID
	PublishableKey  model.PublishableKey
	Token           model.Token
}

// FromState extracts the session tuple, reporting false when the flow does
// not carry one.
func FromState(s app.State) (Tuple, bool) {
	if s.Kind != app.FlowMain || s.Main == nil || !s.Main.Unlocked() {
		return Tuple{}, false
	}
	m := s.Main
	t := Tuple{
		Orders:         m.Visits.AllOrders(),
		DeviceID:       m.DeviceID(),
		PublishableKey: m.PublishableKey,
		Token:          m.Token,
	}
	if sel := m.Visits.SelectedOrder; sel != nil {
		t.SelectedOrderID = sel.ID
	}
	return t, true
}

// Scheduler drives periodic order and place refreshes. The limiter caps the
// refresh rate regardless of how fast ticks or foreground events arrive, so
// a burst of wake-ups does not hammer the backend.
type Scheduler struct {
	state    func() app.State
	dispatch func(app.Action)
	limiter  *rate.Limiter
	interval time.Duration
}

// NewScheduler builds a Scheduler polling at interval, with refreshes
// capped at one per interval with a burst of one.
func NewScheduler(state func() app.State, dispatch func(app.Action), interval time.Duration) *Scheduler {
	return &Scheduler{
		state:    state,
		dispatch: dispatch,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Run ticks until ctx is done. Each tick that passes the limiter and finds
// a live session asks for an order refresh, plus places when the places tab
// is showing.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick attempts one refresh round. Exposed for tests and for foreground
// wake-ups that want to piggyback on the same throttle.
func (s *Scheduler) Tick() {
	if _, ok := FromState(s.state()); !ok {
		return
	}
	if !s.limiter.Allow() {
		return
	}
	s.dispatch(app.UpdateOrders{})
	if st := s.state(); st.Main != nil && st.Main.Tab == model.TabPlaces {
		s.dispatch(app.UpdatePlaces{})
	}
}
