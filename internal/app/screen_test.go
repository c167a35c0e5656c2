package app

import (
	"testing"
	"time"

	"visits/internal/model"
)

func TestBlockerOverridesMainScreen(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*MainFlow)
		want   BlockerKind
	}{
		{"locationDenied", func(m *MainFlow) { m.Permissions.Location = model.PermissionDenied }, BlockerLocationDenied},
		{"locationDisabled", func(m *MainFlow) { m.Permissions.Location = model.PermissionDisabled }, BlockerLocationDisabled},
		{"locationReduced", func(m *MainFlow) { m.Permissions.LocationAccuracy = model.AccuracyReduced }, BlockerLocationReduced},
		{"motionNotDetermined", func(m *MainFlow) { m.Permissions.Motion = model.PermissionNotDetermined }, BlockerMotionNotDetermined},
		{"pushNotShown", func(m *MainFlow) { m.PushStatus = model.PushDialogNotShown }, BlockerPushNotShown},
		{"deleted", func(m *MainFlow) { m.SDK.Tracking = model.TrackingDeleted }, BlockerDeleted},
		{"invalidKey", func(m *MainFlow) { m.SDK.Tracking = model.TrackingInvalidKey }, BlockerInvalidPublishableKey},
		{"stopped", func(m *MainFlow) { m.SDK.Tracking = model.TrackingStopped }, BlockerStopped},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := runningMain("pk_1", "d1")
			tc.mutate(&m)
			got := ToScreen(mainState(m))
			if got.Kind != ScreenBlocker {
				t.Fatalf("kind = %q, want blocker", got.Kind)
			}
			if got.Blocker.Kind != tc.want {
				t.Fatalf("blocker = %q, want %q", got.Blocker.Kind, tc.want)
			}
		})
	}
}

func TestLocationOutranksMotionAndPush(t *testing.T) {
	m := runningMain("pk_1", "d1")
	m.Permissions.Location = model.PermissionDenied
	m.Permissions.Motion = model.PermissionDenied
	m.PushStatus = model.PushDialogNotShown
	got := ToScreen(mainState(m))
	if got.Blocker == nil || got.Blocker.Kind != BlockerLocationDenied {
		t.Fatalf("want locationDenied to win, got %+v", got.Blocker)
	}
}

func TestHealthySessionRendersOrderList(t *testing.T) {
	m := runningMain("pk_1", "d1")
	earlier := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	later := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	orders := model.OrderSet{}
	orders.Insert(model.Order{ID: "a", CreatedAt: earlier, Address: model.Address{Street: "Mission St"}})
	orders.Insert(model.Order{ID: "b", CreatedAt: later})
	m.Visits = model.NewAssignedVisits(orders)

	got := ToScreen(mainState(m))
	if got.Kind != ScreenMain || got.Main.Orders == nil {
		t.Fatalf("want the order list, got %+v", got)
	}
	pending := got.Main.Orders.Pending
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	// Newest first.
	if pending[0].ID != "b" || pending[1].ID != "a" {
		t.Fatalf("pending order wrong: %v", pending)
	}
	if pending[0].Title != "Order @ 11:00 AM" {
		t.Fatalf("address-less title = %q", pending[0].Title)
	}
	if pending[1].Title != "Mission St" {
		t.Fatalf("street title = %q", pending[1].Title)
	}
	if len(got.Main.Map) != 2 {
		t.Fatalf("map orders = %d, want 2", len(got.Main.Map))
	}
}

func TestSelectedOrderRendersOrderScreen(t *testing.T) {
	m := runningMain("pk_1", "d1")
	at := time.Date(2024, 3, 1, 14, 45, 0, 0, time.UTC)
	orders := model.OrderSet{}
	orders.Insert(model.Order{
		ID:        "a",
		CreatedAt: at,
		Metadata:  map[string]string{"dropoff": "front door", "apartment": "12b"},
		Geotag: model.Geotag{
			Kind:  model.GeotagVisited,
			Visit: &model.VisitSpan{EnteredAt: at, ExitedAt: at.Add(10 * time.Minute)},
		},
	})
	m.Visits = model.NewAssignedVisits(orders).SelectOrder("a")

	got := ToScreen(mainState(m))
	if got.Main.Order == nil {
		t.Fatalf("want the open order, got %+v", got.Main)
	}
	o := got.Main.Order
	if o.Status != "Visited: 2:45 PM — 2:55 PM" {
		t.Fatalf("status = %q", o.Status)
	}
	// Metadata sorted by key.
	if len(o.Metadata) != 2 || o.Metadata[0].Key != "apartment" || o.Metadata[1].Key != "dropoff" {
		t.Fatalf("metadata = %v", o.Metadata)
	}
}

func TestProjectionIsTotal(t *testing.T) {
	states := []State{
		NewState(),
		{Kind: FlowLaunching},
		{Kind: FlowFirstRun},
		{Kind: FlowNoMotionServices},
		signUpState(SignUpFlow{Stage: StageFormFilling}),
		signUpState(SignUpFlow{Stage: StageQuestions}),
		signUpState(SignUpFlow{Stage: StageVerification}),
		signInState(SignInFlow{DeepLink: idleWait()}),
		driverIDState(DriverIDFlow{PublishableKey: "pk_1", DeepLink: idleWait()}),
		mainState(runningMain("pk_1", "d1")),
	}
	for _, s := range states {
		got := ToScreen(s)
		if got.Kind == "" {
			t.Fatalf("no screen for flow %q", s.Kind)
		}
	}
}

func TestFromScreenActionIsPartial(t *testing.T) {
	if _, ok := FromScreenAction(ScreenAction{Type: "ordersUpdated"}); ok {
		t.Fatalf("network completions must not be injectable")
	}
	if _, ok := FromScreenAction(ScreenAction{Type: "madeSDK"}); ok {
		t.Fatalf("SDK completions must not be injectable")
	}
	if _, ok := FromScreenAction(ScreenAction{Type: "verificationDigitEntered", Value: "12"}); ok {
		t.Fatalf("multi-character digits must be rejected")
	}
	a, ok := FromScreenAction(ScreenAction{Type: "switchTab", Value: "map"})
	if !ok {
		t.Fatalf("switchTab must map")
	}
	if got := a.(SwitchTab).Tab; got != model.TabMap {
		t.Fatalf("tab = %q", got)
	}
}
