package app

import (
	"visits/internal/deeplink"
	"visits/internal/model"
)

// Deep-link reconciliation. A deep link races a 5-second timer: opening a
// link moves the owning flow to waitingForDeepLink and starts the timer;
// a resolved payload parks in waitingForTimer (latest payload wins); the
// timer fire decides what the payload changes, if anything. Exactly one
// timer exists system-wide, so every transition out of a wait state pairs
// with a CancelDeepLinkTimer effect.

func reduceDeepLink(s State, a Action) (State, []Effect) {
	switch a := a.(type) {
	case DeepLinkOpened:
		w, ok := s.waitState()
		if !ok || w.Kind != WaitNone {
			// Not a flow that can act on it right now; still resolve the URL
			// so a payload is at hand if the flow changes.
			return s, []Effect{ContinueUserActivity{URL: a.URL}}
		}
		out := s.withWait(WaitState{Kind: WaitDeepLink})
		return out, []Effect{StartDeepLinkTimer{}, ContinueUserActivity{URL: a.URL}}

	case ReceivedDeepLink:
		w, ok := s.waitState()
		if !ok {
			return s, nil
		}
		p := a.Payload
		switch w.Kind {
		case WaitNone:
			// Subscription delivered a payload without an open; race it
			// against a fresh timer.
			return s.withWait(WaitState{Kind: WaitTimer, Payload: &p}), []Effect{StartDeepLinkTimer{}}
		case WaitDeepLink:
			return s.withWait(WaitState{Kind: WaitTimer, Payload: &p}), nil
		case WaitTimer:
			// Latest payload wins; the running timer keeps racing.
			return s.withWait(WaitState{Kind: WaitTimer, Payload: &p}), nil
		default:
			return s, nil
		}

	case DeepLinkTimerFired:
		w, ok := s.waitState()
		if !ok {
			return s, []Effect{CancelDeepLinkTimer{}}
		}
		switch w.Kind {
		case WaitDeepLink:
			// No payload ever arrived.
			return s.withWait(idleWait()), []Effect{CancelDeepLinkTimer{}}
		case WaitTimer:
			return resolvePayload(s, *w.Payload)
		default:
			return s, []Effect{CancelDeepLinkTimer{}}
		}

	case MadeSDK:
		return reduceMadeSDK(s, a.Update)
	}
	return s, nil
}

// resolvePayload applies a parked payload when the timer fires. A payload
// without a driver ID changes nothing: key and mode switches only take
// effect for an identified driver.
func resolvePayload(s State, p deeplink.Payload) (State, []Effect) {
	if !p.HasDriverID() {
		return s.withWait(idleWait()), []Effect{CancelDeepLinkTimer{}}
	}

	switch s.Kind {
	case FlowSignIn:
		f := *s.SignIn
		f.DeepLink = WaitState{Kind: WaitSDK, Payload: &p}
		return signInState(f), []Effect{CancelDeepLinkTimer{}, MakeSDK{PublishableKey: p.PublishableKey}}

	case FlowDriverID:
		f := *s.DriverID
		resolved := p
		if resolved.ManualVisits == model.ManualVisitsUnknown {
			resolved.ManualVisits = f.ManualVisits
		}
		f.DriverID = resolved.DriverID
		f.PublishableKey = resolved.PublishableKey
		f.ManualVisits = resolved.ManualVisits
		f.DeepLink = WaitState{Kind: WaitSDK, Payload: &resolved}
		return driverIDState(f), []Effect{CancelDeepLinkTimer{}, MakeSDK{PublishableKey: resolved.PublishableKey}}

	case FlowMain:
		return resolveInMain(*s.Main, p)
	}
	return s.withWait(idleWait()), []Effect{CancelDeepLinkTimer{}}
}

// resolveInMain reconciles a payload against a live session. Only a key
// change forces an SDK remake; a driver-ID change or a manual-visits toggle
// with the same key applies in place.
func resolveInMain(m MainFlow, p deeplink.Payload) (State, []Effect) {
	resolvedMode := p.ManualVisits
	if resolvedMode == model.ManualVisitsUnknown {
		resolvedMode = m.Visits.Mode()
	}

	if p.PublishableKey != m.PublishableKey {
		resolved := p
		resolved.ManualVisits = resolvedMode
		m.DeepLink = WaitState{Kind: WaitSDK, Payload: &resolved}
		m.Requests = Requests{}
		return mainState(m), []Effect{CancelDeepLinkTimer{}, MakeSDK{PublishableKey: resolved.PublishableKey}}
	}

	m.DeepLink = idleWait()
	effects := []Effect{CancelDeepLinkTimer{}}
	if resolvedMode != m.Visits.Mode() {
		m.Visits = m.Visits.ForMode(resolvedMode)
	}
	if p.DriverID != m.DriverID {
		m.DriverID = p.DriverID
		effects = append(effects, SetDriverID{DriverID: p.DriverID})
	}
	return mainState(m), effects
}

// reduceMadeSDK resolves waitingForSDK. A locked key abandons whichever flow
// was waiting; an unlocked one lands in the main flow with the payload's
// identity and a visits collection in the mode's representation.
func reduceMadeSDK(s State, u model.StatusUpdate) (State, []Effect) {
	w, ok := s.waitState()
	if !ok || w.Kind != WaitSDK || w.Payload == nil {
		return s, nil
	}
	if !u.Status.Unlocked() {
		return State{Kind: FlowNoMotionServices}, nil
	}
	p := *w.Payload

	next := MainFlow{
		Visits:         model.VisitsForMode(p.ManualVisits),
		Tab:            model.DefaultTab,
		PublishableKey: p.PublishableKey,
		DriverID:       p.DriverID,
		SDK:            u.Status,
		Permissions:    u.Permissions,
		PushStatus:     model.PushDialogNotShown,
		Experience:     model.ExperienceFirstRun,
		DeepLink:       idleWait(),
	}
	if s.Kind == FlowMain {
		// A session already existed; a key switch keeps its dialog history.
		next.PushStatus = s.Main.PushStatus
		next.Experience = s.Main.Experience
	}

	effects := []Effect{
		SubscribeToStatusUpdates{},
		SetDriverID{DriverID: p.DriverID},
	}
	effects = append(effects, enterMainEffects(&next)...)
	return mainState(next), effects
}
