package app

import (
	"time"

	"visits/internal/deeplink"
	"visits/internal/model"
	"visits/internal/order"
	"visits/internal/restore"
	"visits/internal/sdk"
)

// Reduce is the single state transition function. It is called by exactly
// one goroutine; effects run elsewhere and come back as actions. An action
// that is irrelevant to the current flow is a no-op, never an error, so
// late async results can land harmlessly after the user moved on.
func Reduce(s State, a Action) (State, []Effect) {
	switch a := a.(type) {
	case DeepLinkOpened, ReceivedDeepLink, DeepLinkTimerFired, MadeSDK:
		return reduceDeepLink(s, a)

	case FinishedLaunching:
		if s.Kind != FlowCreated {
			return s, nil
		}
		return State{Kind: FlowLaunching}, []Effect{RestoreState{}}

	case StateRestored:
		if s.Kind != FlowLaunching {
			return s, nil
		}
		next, effects := restoredState(a.Restored, a.Update)
		return next, append(effects, SubscribeToDeepLinks{})

	case WillEnterForeground:
		if s.Kind != FlowMain {
			return s, nil
		}
		m := *s.Main
		effects := []Effect{SyncDeviceSettings{}}
		if m.Unlocked() {
			effects = append(effects, refreshEffects(&m)...)
		}
		return mainState(m), effects

	case ReceivedPushNotification:
		if s.Kind != FlowMain || !s.Main.Unlocked() {
			return s, nil
		}
		m := *s.Main
		if m.Token == "" {
			return mainState(m), tokenEffect(&m)
		}
		m.Requests.Orders = true
		return mainState(m), []Effect{GetOrders{}}

	case StatusUpdated:
		if s.Kind != FlowMain {
			return s, nil
		}
		m := *s.Main
		m.SDK = a.Update.Status
		m.Permissions = a.Update.Permissions
		return mainState(m), nil
	}

	switch s.Kind {
	case FlowFirstRun:
		return reduceFirstRun(s, a)
	case FlowSignUp:
		return reduceSignUp(s, a)
	case FlowSignIn:
		return reduceSignIn(s, a)
	case FlowDriverID:
		return reduceDriverID(s, a)
	case FlowMain:
		return reduceMain(s, a)
	}
	return s, nil
}

// restoredState maps the persisted record (nil for a fresh install) plus the
// first SDK snapshot to the starting flow.
func restoredState(r *restore.StorageState, u model.StatusUpdate) (State, []Effect) {
	if r == nil {
		return State{Kind: FlowFirstRun}, nil
	}
	switch r.Screen {
	case restore.ScreenSignUp:
		return signUpState(SignUpFlow{Stage: StageFormFilling, Email: string(r.Email)}), nil
	case restore.ScreenSignIn:
		return signInState(SignInFlow{Email: string(r.Email), DeepLink: idleWait()}), nil
	case restore.ScreenDriverID:
		return driverIDState(DriverIDFlow{
			DriverID:       r.DriverID,
			PublishableKey: r.PublishableKey,
			DeepLink:       idleWait(),
		}), nil
	case restore.ScreenMain:
		m := MainFlow{
			Visits:         model.NewAssignedVisits(r.Orders),
			Tab:            r.Tab,
			Places:         r.Places,
			PublishableKey: r.PublishableKey,
			DriverID:       r.DriverID,
			SDK:            u.Status,
			Permissions:    u.Permissions,
			PushStatus:     r.PushStatus,
			Experience:     r.Experience,
			DeepLink:       idleWait(),
		}
		effects := []Effect{SubscribeToStatusUpdates{}, SetDriverID{DriverID: r.DriverID}}
		effects = append(effects, enterMainEffects(&m)...)
		return mainState(m), effects
	}
	return State{Kind: FlowFirstRun}, nil
}

// enterMainEffects starts the session bring-up for a freshly entered main
// flow: nothing without an unlocked SDK, otherwise a token fetch that fans
// out into data refreshes on completion.
func enterMainEffects(m *MainFlow) []Effect {
	if !m.Unlocked() {
		return nil
	}
	return tokenEffect(m)
}

func tokenEffect(m *MainFlow) []Effect {
	m.Requests.Token = true
	return []Effect{GetToken{PublishableKey: m.PublishableKey, DeviceID: m.DeviceID()}}
}

// refreshEffects requests whatever the main screen shows. Without a token it
// degrades to a token fetch; the refreshes follow from tokenUpdated.
func refreshEffects(m *MainFlow) []Effect {
	if m.Token == "" {
		return tokenEffect(m)
	}
	m.Requests.Orders = true
	m.Requests.Places = true
	m.Requests.History = true
	return []Effect{GetOrders{}, GetPlaces{}, GetHistory{}}
}

func reduceFirstRun(s State, a Action) (State, []Effect) {
	switch a.(type) {
	case GoToSignUp:
		return signUpState(SignUpFlow{Stage: StageFormFilling}), nil
	case GoToSignIn:
		return signInState(SignInFlow{DeepLink: idleWait()}), nil
	}
	return s, nil
}

func reduceSignUp(s State, a Action) (State, []Effect) {
	f := *s.SignUp
	switch a := a.(type) {
	case GoToSignIn:
		if f.Stage != StageFormFilling && f.Stage != StageFormFilled {
			return s, nil
		}
		return signInState(SignInFlow{Email: f.Email, Password: f.Password, DeepLink: idleWait()}), nil

	case FocusBusinessName:
		f.Focus = FieldName
	case FocusEmail:
		f.Focus = FieldEmail
	case FocusPassword:
		f.Focus = FieldPassword
	case DismissFocus:
		f.Focus = FieldNone

	case BusinessNameChanged:
		f.BusinessName = a.Value
		f.Error = ""
		f.Stage = formStage(f)
	case EmailChanged:
		f.Email = a.Email
		f.Error = ""
		f.Stage = formStage(f)
	case PasswordChanged:
		f.Password = a.Password
		f.Error = ""
		f.Stage = formStage(f)

	case CompleteSignUpForm:
		if !f.FormValid() {
			f.Error = "all fields are required"
			return signUpState(f), nil
		}
		f.Stage = StageQuestions
		f.Focus = FieldNone

	case BusinessManagesChanged:
		if f.Stage != StageQuestions {
			return s, nil
		}
		f.BusinessManages = a.Value
	case ManagesForChanged:
		if f.Stage != StageQuestions {
			return s, nil
		}
		f.ManagesFor = a.Value

	case SubmitSignUp:
		if f.Stage != StageQuestions || f.SigningUp {
			return s, nil
		}
		f.SigningUp = true
		f.Error = ""
		return signUpState(f), []Effect{SignUpRequest{
			BusinessName:    f.BusinessName,
			Email:           f.Email,
			Password:        f.Password,
			BusinessManages: f.BusinessManages,
			ManagesFor:      f.ManagesFor,
		}}

	case SignedUp:
		if !f.SigningUp {
			return s, nil
		}
		f.SigningUp = false
		if a.Error != "" {
			f.Error = a.Error
			return signUpState(f), nil
		}
		f.Stage = StageVerification
		f.Verification = Verification{Focused: true}

	case CancelSignUp:
		switch f.Stage {
		case StageVerification:
			f.Stage = StageQuestions
			f.Verification = Verification{}
		case StageQuestions:
			f.Stage = StageFormFilled
		default:
			return s, nil
		}

	case VerificationDigitEntered:
		if f.Stage != StageVerification || f.Verification.Entered {
			return s, nil
		}
		if a.Digit < '0' || a.Digit > '9' {
			return s, nil
		}
		v := f.Verification
		v.Digits += string(a.Digit)
		v.Error = ""
		if len(v.Digits) == 6 {
			v.Entered = true
			v.Verifying = true
			f.Verification = v
			code, err := model.NewVerificationCode(v.Digits)
			if err != nil {
				return s, nil
			}
			return signUpState(f), []Effect{VerifyRequest{Email: f.Email, Code: code}}
		}
		f.Verification = v

	case DeleteVerificationDigit:
		// No-op once entered or when nothing is typed yet.
		if f.Stage != StageVerification || f.Verification.Entered || f.Verification.Digits == "" {
			return s, nil
		}
		v := f.Verification
		v.Digits = v.Digits[:len(v.Digits)-1]
		v.Error = ""
		f.Verification = v

	case FocusVerification:
		if f.Stage != StageVerification {
			return s, nil
		}
		f.Verification.Focused = true

	case ResendVerificationCode:
		if f.Stage != StageVerification || f.Verification.Verifying {
			return s, nil
		}
		return s, []Effect{ResendVerification{Email: f.Email}}

	case Verified:
		if f.Stage != StageVerification {
			return s, nil
		}
		switch a.Result {
		case VerificationSuccess, VerificationAlreadyVerified:
			return driverIDState(DriverIDFlow{
				PublishableKey: a.PublishableKey,
				DeepLink:       idleWait(),
			}), nil
		default:
			f.Verification = Verification{Focused: true, Error: a.Error}
		}

	default:
		return s, nil
	}
	return signUpState(f), nil
}

// formStage recomputes the form-filling stage after an edit: a complete form
// is filled, anything less drops back to filling.
func formStage(f SignUpFlow) SignUpStage {
	if f.Stage != StageFormFilling && f.Stage != StageFormFilled {
		return f.Stage
	}
	if f.FormValid() {
		return StageFormFilled
	}
	return StageFormFilling
}

func reduceSignIn(s State, a Action) (State, []Effect) {
	f := *s.SignIn
	switch a := a.(type) {
	case GoToSignUp:
		if f.SigningIn {
			return s, nil
		}
		return signUpState(SignUpFlow{
			Stage:    formStage(SignUpFlow{Email: f.Email, Password: f.Password}),
			Email:    f.Email,
			Password: f.Password,
		}), nil

	case FocusEmail:
		f.Focus = FieldEmail
	case FocusPassword:
		f.Focus = FieldPassword
	case DismissFocus:
		f.Focus = FieldNone

	case EmailChanged:
		if f.SigningIn {
			return s, nil
		}
		f.Email = a.Email
		f.Error = ""
	case PasswordChanged:
		if f.SigningIn {
			return s, nil
		}
		f.Password = a.Password
		f.Error = ""

	case SubmitSignIn:
		if f.SigningIn {
			return s, nil
		}
		if f.Email == "" || f.Password == "" {
			f.Error = "email and password are required"
			return signInState(f), nil
		}
		f.SigningIn = true
		f.Focus = FieldNone
		f.Error = ""
		return signInState(f), []Effect{SignInRequest{Email: f.Email, Password: f.Password}}

	case CancelSignIn:
		if !f.SigningIn {
			return s, nil
		}
		f.SigningIn = false

	case SignedIn:
		if !f.SigningIn {
			return s, nil
		}
		f.SigningIn = false
		if a.Error != "" {
			f.Error = a.Error
			return signInState(f), nil
		}
		return driverIDState(DriverIDFlow{
			PublishableKey: a.PublishableKey,
			DeepLink:       idleWait(),
		}), nil

	default:
		return s, nil
	}
	return signInState(f), nil
}

func reduceDriverID(s State, a Action) (State, []Effect) {
	f := *s.DriverID
	switch a := a.(type) {
	case DriverIDChanged:
		f.DriverID = model.DriverID(a.Value)
		return driverIDState(f), nil

	case SubmitDriverID:
		if f.DriverID == "" || f.DeepLink.Kind != WaitNone {
			return s, nil
		}
		p := deeplink.Payload{
			PublishableKey: f.PublishableKey,
			DriverID:       f.DriverID,
			ManualVisits:   f.ManualVisits,
		}
		f.DeepLink = WaitState{Kind: WaitSDK, Payload: &p}
		return driverIDState(f), []Effect{MakeSDK{PublishableKey: f.PublishableKey}}
	}
	return s, nil
}

func reduceMain(s State, a Action) (State, []Effect) {
	m := *s.Main
	switch a := a.(type) {
	case SelectOrder:
		m.Visits = m.Visits.SelectOrder(a.ID)
	case DeselectOrder:
		m.Visits = m.Visits.Deselect()

	case FocusOrderNote:
		sel := m.Visits.SelectedOrder
		if sel == nil {
			return s, nil
		}
		o := *sel
		o.NoteFieldFocused = true
		m.Visits = m.Visits.UpdateSelectedOrder(o)

	case DismissFocus:
		sel := m.Visits.SelectedOrder
		if sel == nil || !sel.NoteFieldFocused {
			return s, nil
		}
		o := *sel
		o.NoteFieldFocused = false
		m.Visits = m.Visits.UpdateSelectedOrder(o)
		return mainState(m), []Effect{UpdateOrderNote{Order: o, Note: o.Note}}

	case OrderNoteChanged:
		sel := m.Visits.SelectedOrder
		if sel == nil {
			return s, nil
		}
		o, err := order.Transition(*sel, order.NoteChanged(a.Note))
		if err != nil {
			return s, nil
		}
		m.Visits = m.Visits.UpdateSelectedOrder(o)

	case PickUpOrder:
		sel := m.Visits.SelectedOrder
		if sel == nil {
			return s, nil
		}
		o, err := order.Transition(*sel, order.PickUp())
		if err != nil {
			return s, nil
		}
		m.Visits = m.Visits.UpdateSelectedOrder(o)
		return mainState(m), []Effect{AddGeotag{Geotag: sdk.Geotag{
			Kind:    sdk.GeotagPickUp,
			OrderID: o.ID,
			Source:  o.Source,
		}}}

	case CheckOutOrder:
		sel := m.Visits.SelectedOrder
		if sel == nil {
			return s, nil
		}
		o, err := order.Transition(*sel, order.CheckOut(time.Now()))
		if err != nil {
			return s, nil
		}
		m.Visits = m.Visits.UpdateSelectedOrder(o)
		return mainState(m), []Effect{
			AddGeotag{Geotag: sdk.Geotag{
				Kind:    sdk.GeotagCheckOut,
				OrderID: o.ID,
				Source:  o.Source,
				Note:    o.Note,
			}},
			CompleteOrderRequest{Order: o},
		}

	case CancelOrder:
		sel := m.Visits.SelectedOrder
		if sel == nil {
			return s, nil
		}
		o, err := order.Transition(*sel, order.Cancel(time.Now()))
		if err != nil {
			return s, nil
		}
		m.Visits = m.Visits.UpdateSelectedOrder(o)
		return mainState(m), []Effect{
			AddGeotag{Geotag: sdk.Geotag{
				Kind:    sdk.GeotagCancel,
				OrderID: o.ID,
				Source:  o.Source,
				Note:    o.Note,
			}},
			CancelOrderRequest{Order: o},
		}

	case SwitchTab:
		if a.Tab == m.Tab {
			return s, nil
		}
		m.Tab = a.Tab
		if !m.Unlocked() || m.Token == "" {
			return mainState(m), nil
		}
		switch a.Tab {
		case model.TabSummary:
			if !m.Requests.History {
				m.Requests.History = true
				return mainState(m), []Effect{GetHistory{}}
			}
		case model.TabPlaces:
			if !m.Requests.Places {
				m.Requests.Places = true
				return mainState(m), []Effect{GetPlaces{}}
			}
		}

	case UpdateOrders:
		if !m.Unlocked() || m.Requests.Orders {
			return s, nil
		}
		if m.Token == "" {
			if m.Requests.Token {
				return s, nil
			}
			return mainState(m), tokenEffect(&m)
		}
		m.Requests.Orders = true
		return mainState(m), []Effect{GetOrders{}}

	case UpdatePlaces:
		if !m.Unlocked() || m.Requests.Places {
			return s, nil
		}
		if m.Token == "" {
			if m.Requests.Token {
				return s, nil
			}
			return mainState(m), tokenEffect(&m)
		}
		m.Requests.Places = true
		return mainState(m), []Effect{GetPlaces{}}

	case StartTracking:
		return s, []Effect{
			StartTrackingEffect{},
			AddGeotag{Geotag: sdk.Geotag{Kind: sdk.GeotagClockIn}},
		}
	case StopTracking:
		return s, []Effect{
			StopTrackingEffect{},
			AddGeotag{Geotag: sdk.Geotag{Kind: sdk.GeotagClockOut}},
		}
	case OpenSettings:
		return s, []Effect{OpenSettingsEffect{}}
	case RequestLocationPermissions:
		return s, []Effect{RequestLocationPermissionsEffect{}}
	case RequestMotionPermissions:
		return s, []Effect{RequestMotionPermissionsEffect{}}

	case RequestPushAuthorization:
		if m.PushStatus != model.PushDialogNotShown {
			return s, nil
		}
		m.PushStatus = model.PushDialogWaitingForAction
		return mainState(m), []Effect{RequestPushPermissions{}}
	case PushDialogCompleted:
		if m.PushStatus != model.PushDialogWaitingForAction {
			return s, nil
		}
		m.PushStatus = model.PushDialogShown
		m.Experience = model.ExperienceRegular

	case OrdersUpdated:
		m.Requests.Orders = false
		if a.TokenExpired {
			return expireToken(m)
		}
		if a.Error != "" {
			return mainState(m), nil
		}
		m.Visits = m.Visits.ReplaceOrders(a.Orders)

	case PlacesUpdated:
		m.Requests.Places = false
		if a.TokenExpired {
			return expireToken(m)
		}
		if a.Error != "" {
			return mainState(m), nil
		}
		m.Places = a.Places

	case HistoryUpdated:
		m.Requests.History = false
		if a.TokenExpired {
			return expireToken(m)
		}
		if a.Error != "" {
			return mainState(m), nil
		}
		h := a.History
		m.History = &h

	case TokenUpdated:
		if !m.Requests.Token {
			return s, nil
		}
		m.Requests.Token = false
		if a.Error != "" {
			return mainState(m), nil
		}
		m.Token = a.Token
		return mainState(m), refreshEffects(&m)

	case OrderCompleteFinished:
		if a.TokenExpired {
			return expireToken(m)
		}
		return s, nil
	case OrderCancelFinished:
		if a.TokenExpired {
			return expireToken(m)
		}
		return s, nil

	default:
		return s, nil
	}
	return mainState(m), nil
}

// expireToken drops a rejected token and fetches a fresh one; the refresh
// that failed is retried once the new token lands.
func expireToken(m MainFlow) (State, []Effect) {
	m.Token = ""
	if m.Requests.Token {
		return mainState(m), nil
	}
	return mainState(m), tokenEffect(&m)
}
