// Package app is the application state machine: one flow state, typed
// actions, and a pure reducer that returns follow-up effects. Rendering,
// networking, persistence, and the tracking SDK are collaborators driven
// through effects; they never touch the state directly.
package app

import (
	"visits/internal/deeplink"
	"visits/internal/model"
)

// FlowKind tags the active top-level flow variant. Exactly one variant is
// active at a time; the pointer for the active variant is non-nil and all
// others are nil.
type FlowKind string

const (
	FlowCreated          FlowKind = "created"
	FlowLaunching        FlowKind = "appLaunching"
	FlowFirstRun         FlowKind = "firstRun"
	FlowNoMotionServices FlowKind = "noMotionServices"
	FlowSignUp           FlowKind = "signUp"
	FlowSignIn           FlowKind = "signIn"
	FlowDriverID         FlowKind = "driverID"
	FlowMain             FlowKind = "main"
)

// State is the whole application state.
type State struct {
	Kind     FlowKind      `json:"kind"`
	SignUp   *SignUpFlow   `json:"signUp,omitempty"`
	SignIn   *SignInFlow   `json:"signIn,omitempty"`
	DriverID *DriverIDFlow `json:"driverID,omitempty"`
	Main     *MainFlow     `json:"main,omitempty"`
}

// NewState is the process-start state.
func NewState() State { return State{Kind: FlowCreated} }

// WaitKind tags the deep-link reconciliation wait state.
type WaitKind string

const (
	WaitNone     WaitKind = "none"
	WaitDeepLink WaitKind = "waitingForDeepLink"
	WaitTimer    WaitKind = "waitingForTimer"
	WaitSDK      WaitKind = "waitingForSDK"
)

// WaitState is the deep-link reconciliation state owned by whichever flow
// variant is active. Payload is set for WaitTimer and WaitSDK.
type WaitState struct {
	Kind    WaitKind          `json:"kind"`
	Payload *deeplink.Payload `json:"payload,omitempty"`
}

func idleWait() WaitState { return WaitState{Kind: WaitNone} }

// FormFocus is the focused sign-up/sign-in field.
type FormFocus string

const (
	FieldNone     FormFocus = ""
	FieldName     FormFocus = "name"
	FieldEmail    FormFocus = "email"
	FieldPassword FormFocus = "password"
)

// SignUpStage sequences the sign-up flow.
type SignUpStage string

const (
	StageFormFilling  SignUpStage = "formFilling"
	StageFormFilled   SignUpStage = "formFilled"
	StageQuestions    SignUpStage = "questions"
	StageVerification SignUpStage = "verification"
)

// SignUpFlow holds everything from the first form field to email
// verification.
type SignUpFlow struct {
	Stage SignUpStage `json:"stage"`

	BusinessName string    `json:"businessName,omitempty"`
	Email        string    `json:"email,omitempty"`
	Password     string    `json:"password,omitempty"`
	Focus        FormFocus `json:"focus,omitempty"`
	Error        string    `json:"error,omitempty"`

	BusinessManages string `json:"businessManages,omitempty"`
	ManagesFor      string `json:"managesFor,omitempty"`
	SigningUp       bool   `json:"signingUp,omitempty"`

	Verification Verification `json:"verification"`
}

// FormValid reports whether all three form fields are filled.
func (f SignUpFlow) FormValid() bool {
	return f.BusinessName != "" && f.Email != "" && f.Password != ""
}

// Verification is the fixed-width 6-digit code entry. While fewer than six
// digits are present the state is "entering"; the sixth digit flips it to
// "entered" and fires the verify request.
type Verification struct {
	Digits    string `json:"digits"`
	Entered   bool   `json:"entered"`
	Focused   bool   `json:"focused"`
	Verifying bool   `json:"verifying,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SignInFlow is credential entry and the in-flight sign-in request. The
// deep-link wait state is only meaningful while editing; a sign-in in flight
// ignores deep links.
type SignInFlow struct {
	Email     string    `json:"email,omitempty"`
	Password  string    `json:"password,omitempty"`
	Focus     FormFocus `json:"focus,omitempty"`
	Error     string    `json:"error,omitempty"`
	SigningIn bool      `json:"signingIn,omitempty"`
	DeepLink  WaitState `json:"deepLink"`
}

// DriverIDFlow is the driver-ID entry screen: a publishable key is already
// known, the driver identity is not.
type DriverIDFlow struct {
	DriverID       model.DriverID         `json:"driverId,omitempty"`
	PublishableKey model.PublishableKey   `json:"publishableKey"`
	ManualVisits   model.ManualVisitsMode `json:"manualVisits,omitempty"`
	DeepLink       WaitState              `json:"deepLink"`
}

// Requests tracks which main-screen refreshes are in flight.
type Requests struct {
	Orders  bool `json:"orders,omitempty"`
	Places  bool `json:"places,omitempty"`
	History bool `json:"history,omitempty"`
	Token   bool `json:"token,omitempty"`
}

// MainFlow is the tracking mode: orders, places, history, and the session
// identity. Blocker screens are computed from SDK/Permissions/PushStatus at
// projection time, never stored here.
type MainFlow struct {
	Visits         model.Visits           `json:"visits"`
	Tab            model.TabSelection     `json:"tab"`
	Places         []model.Place          `json:"places,omitempty"`
	History        *model.History         `json:"history,omitempty"`
	PublishableKey model.PublishableKey   `json:"publishableKey"`
	DriverID       model.DriverID         `json:"driverId"`
	Token          model.Token            `json:"token,omitempty"`
	SDK            model.SDKStatus        `json:"sdk"`
	Permissions    model.Permissions      `json:"permissions"`
	Requests       Requests               `json:"requests"`
	PushStatus     model.PushStatus       `json:"pushStatus"`
	Experience     model.Experience       `json:"experience"`
	DeepLink       WaitState              `json:"deepLink"`
}

// DeviceID is the SDK-issued device identity, empty until unlocked.
func (m MainFlow) DeviceID() model.DeviceID { return m.SDK.DeviceID }

// Unlocked reports whether the session can reach the backend.
func (m MainFlow) Unlocked() bool { return m.SDK.Unlocked() }

// waitState returns the deep-link wait state owned by the active flow, and
// whether the active flow owns one at all.
func (s State) waitState() (WaitState, bool) {
	switch s.Kind {
	case FlowSignIn:
		if s.SignIn.SigningIn {
			return WaitState{}, false
		}
		return s.SignIn.DeepLink, true
	case FlowDriverID:
		return s.DriverID.DeepLink, true
	case FlowMain:
		return s.Main.DeepLink, true
	}
	return WaitState{}, false
}

func (s State) withWait(w WaitState) State {
	out := s
	switch s.Kind {
	case FlowSignIn:
		f := *s.SignIn
		f.DeepLink = w
		out.SignIn = &f
	case FlowDriverID:
		f := *s.DriverID
		f.DeepLink = w
		out.DriverID = &f
	case FlowMain:
		f := *s.Main
		f.DeepLink = w
		out.Main = &f
	}
	return out
}

func signUpState(f SignUpFlow) State   { return State{Kind: FlowSignUp, SignUp: &f} }
func signInState(f SignInFlow) State   { return State{Kind: FlowSignIn, SignIn: &f} }
func driverIDState(f DriverIDFlow) State { return State{Kind: FlowDriverID, DriverID: &f} }
func mainState(f MainFlow) State       { return State{Kind: FlowMain, Main: &f} }
