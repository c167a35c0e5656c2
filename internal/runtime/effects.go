package runtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"visits/internal/app"
	"visits/internal/backend"
	"visits/internal/deeplink"
	"visits/internal/metrics"
	"visits/internal/model"
	"visits/internal/restore"
	"visits/internal/store"
)

func (r *Runtime) execute(ctx context.Context, e app.Effect, s app.State) {
	err := r.run(ctx, e, s)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.Printf("effect %s failed: %v", e.Name(), err)
	}
	metrics.EffectsExecuted.WithLabelValues(e.Name(), outcome).Inc()
}

// run performs one effect against the collaborators. Outcomes that the
// state machine cares about are delivered in-band as actions; the returned
// error only covers failures with no in-band channel.
func (r *Runtime) run(ctx context.Context, e app.Effect, s app.State) error {
	switch e := e.(type) {
	case app.StartDeepLinkTimer:
		r.timer.Start(r.deepLinkWait, func() { r.Dispatch(app.DeepLinkTimerFired{}) })
		return nil
	case app.CancelDeepLinkTimer:
		r.timer.Cancel()
		return nil
	case app.ContinueUserActivity:
		// An unparseable URL delivers nothing; the timer clears the wait.
		p, err := deeplink.Parse(e.URL)
		if err != nil {
			return err
		}
		r.Dispatch(app.ReceivedDeepLink{Payload: p})
		return nil
	case app.SubscribeToDeepLinks:
		// Deep links arrive over the control surface; nothing to start.
		return nil
	case app.RestoreState:
		return r.restoreState(ctx)

	case app.MakeSDK:
		upd, err := r.sdk.Make(ctx, e.PublishableKey)
		if err != nil {
			return err
		}
		r.Dispatch(app.MadeSDK{Update: upd})
		return nil
	case app.SetDriverID:
		return r.sdk.SetDriverID(ctx, e.DriverID)
	case app.SubscribeToStatusUpdates:
		return r.resubscribe(ctx)
	case app.StartTrackingEffect:
		return r.sdk.StartTracking(ctx)
	case app.StopTrackingEffect:
		return r.sdk.StopTracking(ctx)
	case app.OpenSettingsEffect:
		return r.sdk.OpenSettings(ctx)
	case app.RequestLocationPermissionsEffect:
		return r.sdk.RequestLocationPermissions(ctx)
	case app.RequestMotionPermissionsEffect:
		upd, err := r.sdk.RequestMotionPermissions(ctx)
		if err != nil {
			return err
		}
		r.Dispatch(app.StatusUpdated{Update: upd})
		return nil
	case app.AddGeotag:
		return r.sdk.AddGeotag(ctx, e.Geotag)
	case app.RequestPushPermissions:
		// Headless stand-in for the OS dialog: the grant comes right back.
		r.Dispatch(app.PushDialogCompleted{})
		return nil
	case app.SyncDeviceSettings:
		return r.sdk.SyncDeviceSettings(ctx)

	case app.SignUpRequest:
		err := r.accounts.SignUp(ctx, backend.SignUpParams{
			BusinessName:    e.BusinessName,
			Email:           e.Email,
			Password:        e.Password,
			BusinessManages: e.BusinessManages,
			ManagesFor:      e.ManagesFor,
		})
		r.Dispatch(app.SignedUp{Error: authMessage(err)})
		return nil
	case app.VerifyRequest:
		pk, err := r.accounts.Verify(ctx, e.Email, e.Code)
		switch {
		case err == nil:
			r.Dispatch(app.Verified{Result: app.VerificationSuccess, PublishableKey: pk})
		case errors.Is(err, backend.ErrAlreadyVerified):
			r.Dispatch(app.Verified{Result: app.VerificationAlreadyVerified})
		default:
			r.Dispatch(app.Verified{Result: app.VerificationFailed, Error: authMessage(err)})
		}
		return nil
	case app.ResendVerification:
		return r.accounts.ResendCode(ctx, e.Email)
	case app.SignInRequest:
		pk, err := r.accounts.SignIn(ctx, e.Email, e.Password)
		r.Dispatch(app.SignedIn{PublishableKey: pk, Error: authMessage(err)})
		return nil

	case app.GetToken:
		token, err := r.backend.Authenticate(ctx, e.PublishableKey, e.DeviceID)
		r.Dispatch(app.TokenUpdated{Token: token, Error: authMessage(err)})
		return nil
	case app.GetOrders:
		m, err := session(s)
		if err != nil {
			return err
		}
		set, err := r.backend.GetOrders(ctx, m.Token, m.DeviceID())
		r.Dispatch(app.OrdersUpdated{Orders: set, Error: errMessage(err), TokenExpired: expired(err)})
		return nil
	case app.GetPlaces:
		m, err := session(s)
		if err != nil {
			return err
		}
		places, err := r.backend.GetPlaces(ctx, m.Token, m.DeviceID())
		r.Dispatch(app.PlacesUpdated{Places: places, Error: errMessage(err), TokenExpired: expired(err)})
		return nil
	case app.GetHistory:
		m, err := session(s)
		if err != nil {
			return err
		}
		h, err := r.backend.GetHistory(ctx, m.Token, m.DeviceID(), time.Now().Format("2006-01-02"))
		r.Dispatch(app.HistoryUpdated{History: h, Error: errMessage(err), TokenExpired: expired(err)})
		return nil
	case app.CompleteOrderRequest:
		m, err := session(s)
		if err != nil {
			return err
		}
		err = r.backend.CompleteOrder(ctx, m.Token, e.Order)
		r.Dispatch(app.OrderCompleteFinished{OrderID: e.Order.ID, Error: errMessage(err), TokenExpired: expired(err)})
		return nil
	case app.CancelOrderRequest:
		m, err := session(s)
		if err != nil {
			return err
		}
		err = r.backend.CancelOrder(ctx, m.Token, e.Order)
		r.Dispatch(app.OrderCancelFinished{OrderID: e.Order.ID, Error: errMessage(err), TokenExpired: expired(err)})
		return nil
	case app.UpdateOrderNote:
		m, err := session(s)
		if err != nil {
			return err
		}
		return r.backend.UpdateOrderNote(ctx, m.Token, e.Order, e.Note)

	default:
		return fmt.Errorf("unhandled effect %s", e.Name())
	}
}

// restoreState loads the persisted record and, when a publishable key is
// known, takes the first SDK snapshot before launch resolution proceeds.
func (r *Runtime) restoreState(ctx context.Context) error {
	rec, err := r.store.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		// A broken store must not strand launch; come up fresh and loud.
		log.Printf("state load failed, starting fresh: %v", err)
	}
	st := restore.Decode(rec)
	var upd model.StatusUpdate
	if st != nil && st.PublishableKey != "" {
		if u, err := r.sdk.Make(ctx, st.PublishableKey); err == nil {
			upd = u
		} else {
			log.Printf("sdk bring-up during restore failed: %v", err)
		}
	}
	r.Dispatch(app.StateRestored{Restored: st, Update: upd})
	return nil
}

// resubscribe replaces the status-update subscription. The previous stream
// is cancelled first so a remade SDK never feeds two streams at once.
func (r *Runtime) resubscribe(ctx context.Context) error {
	r.subMu.Lock()
	if r.subCancel != nil {
		r.subCancel()
	}
	sctx, cancel := context.WithCancel(ctx)
	r.subCancel = cancel
	r.subMu.Unlock()

	ch, err := r.sdk.Subscribe(sctx)
	if err != nil {
		return err
	}
	go func() {
		for upd := range ch {
			r.Dispatch(app.StatusUpdated{Update: upd})
		}
	}()
	return nil
}

func session(s app.State) (*app.MainFlow, error) {
	if s.Main == nil {
		return nil, errors.New("no active session")
	}
	return s.Main, nil
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// authMessage prefers the server's message over the transport wrapping.
func authMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *backend.AuthError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

func expired(err error) bool {
	return errors.Is(err, backend.ErrTokenExpired)
}
