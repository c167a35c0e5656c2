package app

import (
	"testing"
	"time"

	"visits/internal/deeplink"
	"visits/internal/model"
	"visits/internal/restore"
)

func grantedUpdate(deviceID string) model.StatusUpdate {
	return model.StatusUpdate{
		Status: model.SDKStatus{
			Kind:     model.SDKUnlocked,
			DeviceID: model.DeviceID(deviceID),
			Tracking: model.TrackingRunning,
		},
		Permissions: model.Permissions{
			LocationAccuracy: model.AccuracyFull,
			Location:         model.PermissionAuthorized,
			Motion:           model.PermissionAuthorized,
		},
	}
}

func runningMain(pk, drID string) MainFlow {
	u := grantedUpdate("device-1")
	return MainFlow{
		Visits:         model.NewAssignedVisits(nil),
		Tab:            model.DefaultTab,
		PublishableKey: model.PublishableKey(pk),
		DriverID:       model.DriverID(drID),
		Token:          "token-1",
		SDK:            u.Status,
		Permissions:    u.Permissions,
		PushStatus:     model.PushDialogShown,
		Experience:     model.ExperienceRegular,
		DeepLink:       idleWait(),
	}
}

func hasEffect(effects []Effect, name string) bool {
	for _, e := range effects {
		if e.Name() == name {
			return true
		}
	}
	return false
}

func effectNames(effects []Effect) string {
	s := ""
	for _, e := range effects {
		s += e.Name() + " "
	}
	return s
}

func TestTimerFiresWithNoPayloadReturnsToIdle(t *testing.T) {
	s := driverIDState(DriverIDFlow{
		PublishableKey: "pk_1",
		DeepLink:       WaitState{Kind: WaitDeepLink},
	})
	out, effects := Reduce(s, DeepLinkTimerFired{})
	if out.Kind != FlowDriverID {
		t.Fatalf("flow = %q, want driverID", out.Kind)
	}
	if out.DriverID.DeepLink.Kind != WaitNone {
		t.Fatalf("wait = %q, want none", out.DriverID.DeepLink.Kind)
	}
	if !hasEffect(effects, "cancelDeepLinkTimer") {
		t.Fatalf("timer not cancelled, effects: %s", effectNames(effects))
	}
	if hasEffect(effects, "makeSDK") {
		t.Fatalf("no payload must not remake the SDK")
	}
}

func TestSameKeyAndDriverIDResolvesWithoutSDKRemake(t *testing.T) {
	m := runningMain("pk_1", "d1")
	p := deeplink.Payload{PublishableKey: "pk_1", DriverID: "d1"}
	m.DeepLink = WaitState{Kind: WaitTimer, Payload: &p}
	out, effects := Reduce(mainState(m), DeepLinkTimerFired{})
	if out.Kind != FlowMain {
		t.Fatalf("flow = %q, want main", out.Kind)
	}
	if out.Main.DeepLink.Kind != WaitNone {
		t.Fatalf("wait = %q, want none", out.Main.DeepLink.Kind)
	}
	if hasEffect(effects, "makeSDK") {
		t.Fatalf("identical key and driver ID must not remake the SDK")
	}
	if !hasEffect(effects, "cancelDeepLinkTimer") {
		t.Fatalf("timer left dangling, effects: %s", effectNames(effects))
	}
}

func TestKeyChangeResolvesToWaitingForSDK(t *testing.T) {
	m := runningMain("pk_1", "d1")
	p := deeplink.Payload{PublishableKey: "pk_2", DriverID: "d1"}
	m.DeepLink = WaitState{Kind: WaitTimer, Payload: &p}
	out, effects := Reduce(mainState(m), DeepLinkTimerFired{})
	if out.Main.DeepLink.Kind != WaitSDK {
		t.Fatalf("wait = %q, want waitingForSDK", out.Main.DeepLink.Kind)
	}
	if got := out.Main.DeepLink.Payload.PublishableKey; got != "pk_2" {
		t.Fatalf("waiting payload key = %q, want pk_2", got)
	}
	found := false
	for _, e := range effects {
		if mk, ok := e.(MakeSDK); ok {
			found = true
			if mk.PublishableKey != "pk_2" {
				t.Fatalf("makeSDK key = %q, want the new key pk_2", mk.PublishableKey)
			}
		}
	}
	if !found {
		t.Fatalf("expected makeSDK, effects: %s", effectNames(effects))
	}
	if !hasEffect(effects, "cancelDeepLinkTimer") {
		t.Fatalf("timer left dangling")
	}
}

func TestDriverIDOnlyChangeAppliesInPlace(t *testing.T) {
	m := runningMain("pk_1", "d1")
	p := deeplink.Payload{PublishableKey: "pk_1", DriverID: "d2"}
	m.DeepLink = WaitState{Kind: WaitTimer, Payload: &p}
	out, effects := Reduce(mainState(m), DeepLinkTimerFired{})
	if out.Main.DriverID != "d2" {
		t.Fatalf("driver ID = %q, want d2", out.Main.DriverID)
	}
	if out.Main.DeepLink.Kind != WaitNone {
		t.Fatalf("wait = %q, want none", out.Main.DeepLink.Kind)
	}
	if hasEffect(effects, "makeSDK") {
		t.Fatalf("driver ID change with the same key must not remake the SDK")
	}
	if !hasEffect(effects, "setDriverID") {
		t.Fatalf("expected setDriverID, effects: %s", effectNames(effects))
	}
}

func TestManualVisitsToggleConvertsRepresentationInPlace(t *testing.T) {
	m := runningMain("pk_1", "d1")
	orders := model.OrderSet{}
	orders.Insert(model.Order{ID: "o1", CreatedAt: time.Now()})
	m.Visits = model.NewAssignedVisits(orders)
	p := deeplink.Payload{PublishableKey: "pk_1", DriverID: "d1", ManualVisits: model.ManualVisitsShow}
	m.DeepLink = WaitState{Kind: WaitTimer, Payload: &p}
	out, effects := Reduce(mainState(m), DeepLinkTimerFired{})
	if !out.Main.Visits.Mixed {
		t.Fatalf("expected mixed representation after the toggle")
	}
	if _, ok := out.Main.Visits.Orders["o1"]; !ok {
		t.Fatalf("order subset lost in conversion")
	}
	if hasEffect(effects, "makeSDK") {
		t.Fatalf("mode toggle with the same key must not remake the SDK")
	}
}

func TestKeylessPayloadIsDiscarded(t *testing.T) {
	m := runningMain("pk_1", "d1")
	p := deeplink.Payload{PublishableKey: "pk_2"}
	m.DeepLink = WaitState{Kind: WaitTimer, Payload: &p}
	out, effects := Reduce(mainState(m), DeepLinkTimerFired{})
	if out.Main.PublishableKey != "pk_1" {
		t.Fatalf("payload without a driver ID must not change the key, got %q", out.Main.PublishableKey)
	}
	if out.Main.DeepLink.Kind != WaitNone {
		t.Fatalf("wait = %q, want none", out.Main.DeepLink.Kind)
	}
	if hasEffect(effects, "makeSDK") || hasEffect(effects, "setDriverID") {
		t.Fatalf("payload without a driver ID must change nothing, effects: %s", effectNames(effects))
	}
}

func TestLatestPayloadWinsWhileWaitingForTimer(t *testing.T) {
	first := deeplink.Payload{PublishableKey: "pk_1", DriverID: "d1"}
	s := driverIDState(DriverIDFlow{
		PublishableKey: "pk_0",
		DeepLink:       WaitState{Kind: WaitTimer, Payload: &first},
	})
	second := deeplink.Payload{PublishableKey: "pk_2", DriverID: "d2"}
	out, effects := Reduce(s, ReceivedDeepLink{Payload: second})
	if out.DriverID.DeepLink.Kind != WaitTimer {
		t.Fatalf("wait = %q, want waitingForTimer", out.DriverID.DeepLink.Kind)
	}
	if got := out.DriverID.DeepLink.Payload.PublishableKey; got != "pk_2" {
		t.Fatalf("parked payload key = %q, want the later pk_2", got)
	}
	if hasEffect(effects, "startDeepLinkTimer") {
		t.Fatalf("the running timer must not be restarted")
	}
}

func TestDeepLinkOpenedStartsTimerOnce(t *testing.T) {
	s := driverIDState(DriverIDFlow{PublishableKey: "pk_1", DeepLink: idleWait()})
	out, effects := Reduce(s, DeepLinkOpened{URL: "https://example.com/signin/pk_2?driver_id=d2"})
	if out.DriverID.DeepLink.Kind != WaitDeepLink {
		t.Fatalf("wait = %q, want waitingForDeepLink", out.DriverID.DeepLink.Kind)
	}
	if !hasEffect(effects, "startDeepLinkTimer") || !hasEffect(effects, "continueUserActivity") {
		t.Fatalf("expected timer start and activity forward, effects: %s", effectNames(effects))
	}
}

func TestMadeSDKLockedAbandonsToNoMotionServices(t *testing.T) {
	p := deeplink.Payload{PublishableKey: "pk_1", DriverID: "d1"}
	s := driverIDState(DriverIDFlow{
		DriverID:       "d1",
		PublishableKey: "pk_1",
		DeepLink:       WaitState{Kind: WaitSDK, Payload: &p},
	})
	out, effects := Reduce(s, MadeSDK{Update: model.StatusUpdate{
		Status: model.SDKStatus{Kind: model.SDKLocked},
	}})
	if out.Kind != FlowNoMotionServices {
		t.Fatalf("flow = %q, want noMotionServices", out.Kind)
	}
	if len(effects) != 0 {
		t.Fatalf("locked SDK should emit no effects, got: %s", effectNames(effects))
	}
}

func TestMadeSDKUnlockedEntersMain(t *testing.T) {
	p := deeplink.Payload{PublishableKey: "pk_1", DriverID: "d1"}
	s := driverIDState(DriverIDFlow{
		DriverID:       "d1",
		PublishableKey: "pk_1",
		DeepLink:       WaitState{Kind: WaitSDK, Payload: &p},
	})
	out, effects := Reduce(s, MadeSDK{Update: grantedUpdate("device-1")})
	if out.Kind != FlowMain {
		t.Fatalf("flow = %q, want main", out.Kind)
	}
	m := out.Main
	if m.PublishableKey != "pk_1" || m.DriverID != "d1" || m.DeviceID() != "device-1" {
		t.Fatalf("session identity wrong: %+v", m)
	}
	if m.Visits.Mixed {
		t.Fatalf("no manual-visits mode given, want the assigned representation")
	}
	if m.Experience != model.ExperienceFirstRun || m.PushStatus != model.PushDialogNotShown {
		t.Fatalf("fresh session flags wrong: experience=%q push=%q", m.Experience, m.PushStatus)
	}
	if !hasEffect(effects, "subscribeToStatusUpdates") || !hasEffect(effects, "setDriverID") {
		t.Fatalf("expected subscription and driver ID effects, got: %s", effectNames(effects))
	}
}

func TestKeySwitchUnlockResetsVisitsButKeepsDialogHistory(t *testing.T) {
	m := runningMain("pk_1", "d1")
	orders := model.OrderSet{}
	orders.Insert(model.Order{ID: "o1", CreatedAt: time.Now()})
	m.Visits = model.NewAssignedVisits(orders)
	p := deeplink.Payload{PublishableKey: "pk_2", DriverID: "d1", ManualVisits: model.ManualVisitsHide}
	m.DeepLink = WaitState{Kind: WaitSDK, Payload: &p}
	out, _ := Reduce(mainState(m), MadeSDK{Update: grantedUpdate("device-2")})
	if out.Kind != FlowMain {
		t.Fatalf("flow = %q, want main", out.Kind)
	}
	if len(out.Main.Visits.Orders) != 0 {
		t.Fatalf("orders of the old key must not survive a key switch")
	}
	if out.Main.PublishableKey != "pk_2" {
		t.Fatalf("key = %q, want pk_2", out.Main.PublishableKey)
	}
	if out.Main.PushStatus != model.PushDialogShown || out.Main.Experience != model.ExperienceRegular {
		t.Fatalf("dialog history must survive a key switch: push=%q experience=%q",
			out.Main.PushStatus, out.Main.Experience)
	}
}

func TestVerificationShiftRegister(t *testing.T) {
	s := signUpState(SignUpFlow{
		Stage:        StageVerification,
		Email:        "me@example.com",
		Verification: Verification{Focused: true},
	})

	// Backspace with nothing typed is a no-op.
	out, effects := Reduce(s, DeleteVerificationDigit{})
	if out.SignUp.Verification.Digits != "" || len(effects) != 0 {
		t.Fatalf("backspace on empty must be a no-op")
	}

	for i, d := range []byte("12345") {
		out, effects = Reduce(s, VerificationDigitEntered{Digit: d})
		s = out
		if len(effects) != 0 {
			t.Fatalf("digit %d fired effects early: %s", i+1, effectNames(effects))
		}
		if s.SignUp.Verification.Entered {
			t.Fatalf("entered after %d digits", i+1)
		}
	}

	out, effects = Reduce(s, VerificationDigitEntered{Digit: '6'})
	v := out.SignUp.Verification
	if !v.Entered || v.Digits != "123456" {
		t.Fatalf("after six digits: entered=%v digits=%q", v.Entered, v.Digits)
	}
	found := false
	for _, e := range effects {
		if vr, ok := e.(VerifyRequest); ok {
			found = true
			if string(vr.Code) != "123456" {
				t.Fatalf("verify code = %q", vr.Code)
			}
		}
	}
	if !found {
		t.Fatalf("sixth digit must fire the verify request, got: %s", effectNames(effects))
	}

	// Backspace once entered is a no-op too.
	again, _ := Reduce(out, DeleteVerificationDigit{})
	if again.SignUp.Verification.Digits != "123456" {
		t.Fatalf("backspace after entry must not edit the code")
	}

	// A seventh digit is dropped.
	seventh, _ := Reduce(out, VerificationDigitEntered{Digit: '7'})
	if seventh.SignUp.Verification.Digits != "123456" {
		t.Fatalf("seventh digit must be ignored")
	}
}

func TestVerifiedSuccessAdvancesToDriverID(t *testing.T) {
	s := signUpState(SignUpFlow{
		Stage:        StageVerification,
		Email:        "me@example.com",
		Verification: Verification{Digits: "123456", Entered: true, Verifying: true},
	})
	out, _ := Reduce(s, Verified{Result: VerificationSuccess, PublishableKey: "pk_new"})
	if out.Kind != FlowDriverID {
		t.Fatalf("flow = %q, want driverID", out.Kind)
	}
	if out.DriverID.PublishableKey != "pk_new" {
		t.Fatalf("key = %q, want pk_new", out.DriverID.PublishableKey)
	}
}

func TestOrdersUpdatedRefreshesSelectionByID(t *testing.T) {
	m := runningMain("pk_1", "d1")
	orders := model.OrderSet{}
	orders.Insert(model.Order{ID: "o1", CreatedAt: time.Now(), Note: "ring twice"})
	m.Visits = model.NewAssignedVisits(orders).SelectOrder("o1")
	m.Requests.Orders = true

	fresh := model.OrderSet{}
	fresh.Insert(model.Order{ID: "o1", CreatedAt: time.Now(), TripID: "t9"})
	fresh.Insert(model.Order{ID: "o2", CreatedAt: time.Now()})
	out, _ := Reduce(mainState(m), OrdersUpdated{Orders: fresh})

	sel := out.Main.Visits.SelectedOrder
	if sel == nil || sel.ID != "o1" {
		t.Fatalf("selection lost on refresh: %+v", sel)
	}
	if sel.TripID != "t9" {
		t.Fatalf("selection not refreshed from the new set")
	}
	if sel.Note != "ring twice" {
		t.Fatalf("local note edit lost on refresh")
	}
	if out.Main.Requests.Orders {
		t.Fatalf("orders request still marked in flight")
	}
}

func TestOrdersUpdatedDropsVanishedSelection(t *testing.T) {
	m := runningMain("pk_1", "d1")
	orders := model.OrderSet{}
	orders.Insert(model.Order{ID: "o1", CreatedAt: time.Now()})
	m.Visits = model.NewAssignedVisits(orders).SelectOrder("o1")

	fresh := model.OrderSet{}
	fresh.Insert(model.Order{ID: "o2", CreatedAt: time.Now()})
	out, _ := Reduce(mainState(m), OrdersUpdated{Orders: fresh})
	if out.Main.Visits.SelectedOrder != nil {
		t.Fatalf("vanished selection must drop, got %+v", out.Main.Visits.SelectedOrder)
	}
}

func TestExpiredTokenForcesRefetch(t *testing.T) {
	m := runningMain("pk_1", "d1")
	m.Requests.Orders = true
	out, effects := Reduce(mainState(m), OrdersUpdated{Error: "unauthorized", TokenExpired: true})
	if out.Main.Token != "" {
		t.Fatalf("expired token must be dropped")
	}
	if !hasEffect(effects, "getToken") {
		t.Fatalf("expected a token refetch, got: %s", effectNames(effects))
	}
}

func TestTokenUpdatedFansOutRefreshes(t *testing.T) {
	m := runningMain("pk_1", "d1")
	m.Token = ""
	m.Requests.Token = true
	out, effects := Reduce(mainState(m), TokenUpdated{Token: "token-2"})
	if out.Main.Token != "token-2" {
		t.Fatalf("token = %q", out.Main.Token)
	}
	for _, want := range []string{"getOrders", "getPlaces", "getHistory"} {
		if !hasEffect(effects, want) {
			t.Fatalf("missing %s, got: %s", want, effectNames(effects))
		}
	}
}

func TestLateSignInResponseAfterNavigationIsIgnored(t *testing.T) {
	s := driverIDState(DriverIDFlow{PublishableKey: "pk_1", DeepLink: idleWait()})
	out, effects := Reduce(s, SignedIn{PublishableKey: "pk_other"})
	if out.Kind != FlowDriverID || len(effects) != 0 {
		t.Fatalf("late response must be a no-op, flow=%q effects=%s", out.Kind, effectNames(effects))
	}
}

func TestSignUpFormRevalidatesOnEdit(t *testing.T) {
	s := signUpState(SignUpFlow{Stage: StageFormFilling})
	for _, a := range []Action{
		BusinessNameChanged{Value: "ACME"},
		EmailChanged{Email: "me@example.com"},
		PasswordChanged{Password: "s3cret"},
	} {
		s, _ = Reduce(s, a)
	}
	if s.SignUp.Stage != StageFormFilled {
		t.Fatalf("stage = %q, want formFilled", s.SignUp.Stage)
	}
	s, _ = Reduce(s, EmailChanged{Email: ""})
	if s.SignUp.Stage != StageFormFilling {
		t.Fatalf("clearing a field must drop back to formFilling, got %q", s.SignUp.Stage)
	}
}

func TestBusinessNameEditCarriesValueAndWireName(t *testing.T) {
	a := BusinessNameChanged{Value: "ACME"}
	if a.Name() != "businessNameChanged" {
		t.Fatalf("wire name = %q", a.Name())
	}
	s, _ := Reduce(signUpState(SignUpFlow{Stage: StageFormFilling}), a)
	if s.SignUp.BusinessName != "ACME" {
		t.Fatalf("business name = %q", s.SignUp.BusinessName)
	}
}

func TestSubmitDriverIDMakesSDK(t *testing.T) {
	s := driverIDState(DriverIDFlow{
		DriverID:       "d1",
		PublishableKey: "pk_1",
		DeepLink:       idleWait(),
	})
	out, effects := Reduce(s, SubmitDriverID{})
	if out.DriverID.DeepLink.Kind != WaitSDK {
		t.Fatalf("wait = %q, want waitingForSDK", out.DriverID.DeepLink.Kind)
	}
	if !hasEffect(effects, "makeSDK") {
		t.Fatalf("expected makeSDK, got: %s", effectNames(effects))
	}
}

func TestLaunchSequence(t *testing.T) {
	s, effects := Reduce(NewState(), FinishedLaunching{})
	if s.Kind != FlowLaunching {
		t.Fatalf("flow = %q, want appLaunching", s.Kind)
	}
	if !hasEffect(effects, "restoreState") {
		t.Fatalf("launch must trigger restoration, got: %s", effectNames(effects))
	}

	restored := &restore.StorageState{
		Screen:         restore.ScreenMain,
		PublishableKey: "pk_1",
		DriverID:       "d1",
		Orders:         model.OrderSet{},
		Tab:            model.DefaultTab,
		PushStatus:     model.PushDialogShown,
		Experience:     model.ExperienceRegular,
	}
	s, effects = Reduce(s, StateRestored{Restored: restored, Update: grantedUpdate("device-1")})
	if s.Kind != FlowMain {
		t.Fatalf("flow = %q, want main", s.Kind)
	}
	for _, want := range []string{"subscribeToDeepLinks", "subscribeToStatusUpdates", "setDriverID", "getToken"} {
		if !hasEffect(effects, want) {
			t.Fatalf("missing %s after restoration, got: %s", want, effectNames(effects))
		}
	}
	if !s.Main.Requests.Token {
		t.Fatalf("token fetch not marked in flight")
	}
}

func TestFreshInstallLandsOnFirstRun(t *testing.T) {
	s, _ := Reduce(NewState(), FinishedLaunching{})
	s, effects := Reduce(s, StateRestored{Update: grantedUpdate("device-1")})
	if s.Kind != FlowFirstRun {
		t.Fatalf("flow = %q, want firstRun", s.Kind)
	}
	if !hasEffect(effects, "subscribeToDeepLinks") {
		t.Fatalf("deep-link subscription must start even on fresh installs")
	}
}
