package request

import (
	"testing"
	"time"

	"visits/internal/app"
	"visits/internal/model"
)

func liveSession() app.State {
	return app.State{Kind: app.FlowMain, Main: &app.MainFlow{
		Visits:         model.NewAssignedVisits(nil),
		Tab:            model.DefaultTab,
		PublishableKey: "pk_1",
		DriverID:       "driver_1",
		Token:          "tok",
		SDK:            model.SDKStatus{Kind: model.SDKUnlocked, DeviceID: "dev_1", Tracking: model.TrackingRunning},
	}}
}

func TestTupleAbsentOutsideMain(t *testing.T) {
	if _, ok := FromState(app.NewState()); ok {
		t.Fatal("tuple present for created state")
	}
	locked := liveSession()
	locked.Main.SDK = model.SDKStatus{Kind: model.SDKLocked}
	if _, ok := FromState(locked); ok {
		t.Fatal("tuple present for locked SDK")
	}
}

func TestTupleCarriesSession(t *testing.T) {
	s := liveSession()
	s.Main.Visits = s.Main.Visits.ReplaceOrders(model.NewOrderSet(model.Order{ID: "o1"}))
	s.Main.Visits = s.Main.Visits.SelectOrder("o1")

	tup, ok := FromState(s)
	if !ok {
		t.Fatal("tuple absent for live session")
	}
	if tup.Token != "tok" || tup.DeviceID != "dev_1" || tup.PublishableKey != "pk_1" {
		t.Fatalf("tuple = %+v", tup)
	}
	if tup.SelectedOrderID != "o1" {
		t.Fatalf("selected = %q", tup.SelectedOrderID)
	}
	if len(tup.Orders) != 1 {
		t.Fatalf("orders = %d", len(tup.Orders))
	}
}

func TestSchedulerSkipsWithoutSession(t *testing.T) {
	var got []app.Action
	s := NewScheduler(func() app.State { return app.NewState() }, func(a app.Action) { got = append(got, a) }, time.Millisecond)
	s.Tick()
	if len(got) != 0 {
		t.Fatalf("dispatched %d actions without a session", len(got))
	}
}

func TestSchedulerThrottles(t *testing.T) {
	st := liveSession()
	var got []app.Action
	s := NewScheduler(func() app.State { return st }, func(a app.Action) { got = append(got, a) }, time.Hour)
	s.Tick()
	s.Tick()
	s.Tick()
	if len(got) != 1 {
		t.Fatalf("dispatched %d actions, want 1 inside the rate window", len(got))
	}
	if _, ok := got[0].(app.UpdateOrders); !ok {
		t.Fatalf("action = %T", got[0])
	}
}

func TestSchedulerRefreshesPlacesOnPlacesTab(t *testing.T) {
	st := liveSession()
	st.Main.Tab = model.TabPlaces
	var got []app.Action
	s := NewScheduler(func() app.State { return st }, func(a app.Action) { got = append(got, a) }, time.Hour)
	s.Tick()
	if len(got) != 2 {
		t.Fatalf("dispatched %d actions, want orders + places", len(got))
	}
	if _, ok := got[1].(app.UpdatePlaces); !ok {
		t.Fatalf("second action = %T", got[1])
	}
}
