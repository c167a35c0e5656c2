package app

import (
	"visits/internal/deeplink"
	"visits/internal/model"
	"visits/internal/restore"
)

// Action is an event the state machine consumes. External happenings (user
// input, timers, network completions, SDK callbacks) are all converted to
// actions before they reach the reducer, which is the single writer.
type Action interface {
	isAction()
	// Name labels the action for logs and metrics.
	Name() string
}

// Life cycle.

type FinishedLaunching struct{}

// StateRestored delivers the persisted state (nil if nothing restorable) plus
// the first SDK snapshot.
type StateRestored struct {
	Restored *restore.StorageState
	Update   model.StatusUpdate
}

type WillEnterForeground struct{}
type ReceivedPushNotification struct{}

// Deep link.

// DeepLinkOpened is the platform "continue user activity" entry point: a URL
// was handed to the app, but its payload has not been resolved yet.
type DeepLinkOpened struct{ URL string }

// ReceivedDeepLink delivers the resolved payload.
type ReceivedDeepLink struct{ Payload deeplink.Payload }

type DeepLinkTimerFired struct{}

// SDK.

// MadeSDK reports an SDK (re-)initialization outcome.
type MadeSDK struct{ Update model.StatusUpdate }

// StatusUpdated is a spontaneous SDK status/permission change.
type StatusUpdated struct{ Update model.StatusUpdate }

// Sign-up form.

type FocusBusinessName struct{}
type FocusEmail struct{}
type FocusPassword struct{}
type DismissFocus struct{}
type BusinessNameChanged struct{ Value string }
type EmailChanged struct{ Email string }
type PasswordChanged struct{ Password string }
type CompleteSignUpForm struct{}
type GoToSignUp struct{}
type GoToSignIn struct{}
type BusinessManagesChanged struct{ Value string }
type ManagesForChanged struct{ Value string }
type SubmitSignUp struct{}
type CancelSignUp struct{}

// SignedUp reports the sign-up request outcome; empty Error means the
// verification email went out.
type SignedUp struct{ Error string }

// Verification code entry.

type VerificationDigitEntered struct{ Digit byte }
type DeleteVerificationDigit struct{}
type FocusVerification struct{}
type ResendVerificationCode struct{}

type VerificationResult string

const (
	VerificationSuccess         VerificationResult = "success"
	VerificationAlreadyVerified VerificationResult = "alreadyVerified"
	VerificationFailed          VerificationResult = "error"
)

// Verified reports the code check outcome; PublishableKey is set on success.
type Verified struct {
	Result         VerificationResult
	PublishableKey model.PublishableKey
	Error          string
}

// Sign in.

type SubmitSignIn struct{}
type CancelSignIn struct{}

// SignedIn reports the credential exchange outcome.
type SignedIn struct {
	PublishableKey model.PublishableKey
	Error          string
}

// Driver ID entry.

type DriverIDChanged struct{ Value string }
type SubmitDriverID struct{}

// Main flow.

type SelectOrder struct{ ID string }
type DeselectOrder struct{}
type PickUpOrder struct{}
type CheckOutOrder struct{}
type CancelOrder struct{}
type FocusOrderNote struct{}
type OrderNoteChanged struct{ Note string }
type SwitchTab struct{ Tab model.TabSelection }
type UpdateOrders struct{}
type UpdatePlaces struct{}
type StartTracking struct{}
type StopTracking struct{}
type OpenSettings struct{}
type RequestLocationPermissions struct{}
type RequestMotionPermissions struct{}
type RequestPushAuthorization struct{}
type PushDialogCompleted struct{}

// Network completions. A non-empty Error with TokenExpired set forces a
// token refresh instead of surfacing to the user.

type OrdersUpdated struct {
	Orders       model.OrderSet
	Error        string
	TokenExpired bool
}

type PlacesUpdated struct {
	Places       []model.Place
	Error        string
	TokenExpired bool
}

type HistoryUpdated struct {
	History      model.History
	Error        string
	TokenExpired bool
}

type TokenUpdated struct {
	Token model.Token
	Error string
}

type OrderCompleteFinished struct {
	OrderID      string
	Error        string
	TokenExpired bool
}

type OrderCancelFinished struct {
	OrderID      string
	Error        string
	TokenExpired bool
}

func (FinishedLaunching) isAction()          {}
func (StateRestored) isAction()              {}
func (WillEnterForeground) isAction()        {}
func (ReceivedPushNotification) isAction()   {}
func (DeepLinkOpened) isAction()             {}
func (ReceivedDeepLink) isAction()           {}
func (DeepLinkTimerFired) isAction()         {}
func (MadeSDK) isAction()                    {}
func (StatusUpdated) isAction()              {}
func (FocusBusinessName) isAction()          {}
func (FocusEmail) isAction()                 {}
func (FocusPassword) isAction()              {}
func (DismissFocus) isAction()               {}
func (BusinessNameChanged) isAction()        {}
func (EmailChanged) isAction()               {}
func (PasswordChanged) isAction()            {}
func (CompleteSignUpForm) isAction()         {}
func (GoToSignUp) isAction()                 {}
func (GoToSignIn) isAction()                 {}
func (BusinessManagesChanged) isAction()     {}
func (ManagesForChanged) isAction()          {}
func (SubmitSignUp) isAction()               {}
func (CancelSignUp) isAction()               {}
func (SignedUp) isAction()                   {}
func (VerificationDigitEntered) isAction()   {}
func (DeleteVerificationDigit) isAction()    {}
func (FocusVerification) isAction()          {}
func (ResendVerificationCode) isAction()     {}
func (Verified) isAction()                   {}
func (SubmitSignIn) isAction()               {}
func (CancelSignIn) isAction()               {}
func (SignedIn) isAction()                   {}
func (DriverIDChanged) isAction()            {}
func (SubmitDriverID) isAction()             {}
func (SelectOrder) isAction()                {}
func (DeselectOrder) isAction()              {}
func (PickUpOrder) isAction()                {}
func (CheckOutOrder) isAction()              {}
func (CancelOrder) isAction()                {}
func (FocusOrderNote) isAction()             {}
func (OrderNoteChanged) isAction()           {}
func (SwitchTab) isAction()                  {}
func (UpdateOrders) isAction()               {}
func (UpdatePlaces) isAction()               {}
func (StartTracking) isAction()              {}
func (StopTracking) isAction()               {}
func (OpenSettings) isAction()               {}
func (RequestLocationPermissions) isAction() {}
func (RequestMotionPermissions) isAction()   {}
func (RequestPushAuthorization) isAction()   {}
func (PushDialogCompleted) isAction()        {}
func (OrdersUpdated) isAction()              {}
func (PlacesUpdated) isAction()              {}
func (HistoryUpdated) isAction()             {}
func (TokenUpdated) isAction()               {}
func (OrderCompleteFinished) isAction()      {}
func (OrderCancelFinished) isAction()        {}

func (FinishedLaunching) Name() string          { return "finishedLaunching" }
func (StateRestored) Name() string              { return "stateRestored" }
func (WillEnterForeground) Name() string        { return "willEnterForeground" }
func (ReceivedPushNotification) Name() string   { return "receivedPushNotification" }
func (DeepLinkOpened) Name() string             { return "deepLinkOpened" }
func (ReceivedDeepLink) Name() string           { return "receivedDeepLink" }
func (DeepLinkTimerFired) Name() string         { return "deepLinkTimerFired" }
func (MadeSDK) Name() string                    { return "madeSDK" }
func (StatusUpdated) Name() string              { return "statusUpdated" }
func (FocusBusinessName) Name() string          { return "focusBusinessName" }
func (FocusEmail) Name() string                 { return "focusEmail" }
func (FocusPassword) Name() string              { return "focusPassword" }
func (DismissFocus) Name() string               { return "dismissFocus" }
func (BusinessNameChanged) Name() string        { return "businessNameChanged" }
func (EmailChanged) Name() string               { return "emailChanged" }
func (PasswordChanged) Name() string            { return "passwordChanged" }
func (CompleteSignUpForm) Name() string         { return "completeSignUpForm" }
func (GoToSignUp) Name() string                 { return "goToSignUp" }
func (GoToSignIn) Name() string                 { return "goToSignIn" }
func (BusinessManagesChanged) Name() string     { return "businessManagesChanged" }
func (ManagesForChanged) Name() string          { return "managesForChanged" }
func (SubmitSignUp) Name() string               { return "submitSignUp" }
func (CancelSignUp) Name() string               { return "cancelSignUp" }
func (SignedUp) Name() string                   { return "signedUp" }
func (VerificationDigitEntered) Name() string   { return "verificationDigitEntered" }
func (DeleteVerificationDigit) Name() string    { return "deleteVerificationDigit" }
func (FocusVerification) Name() string          { return "focusVerification" }
func (ResendVerificationCode) Name() string     { return "resendVerificationCode" }
func (Verified) Name() string                   { return "verified" }
func (SubmitSignIn) Name() string               { return "submitSignIn" }
func (CancelSignIn) Name() string               { return "cancelSignIn" }
func (SignedIn) Name() string                   { return "signedIn" }
func (DriverIDChanged) Name() string            { return "driverIDChanged" }
func (SubmitDriverID) Name() string             { return "submitDriverID" }
func (SelectOrder) Name() string                { return "selectOrder" }
func (DeselectOrder) Name() string              { return "deselectOrder" }
func (PickUpOrder) Name() string                { return "pickUpOrder" }
func (CheckOutOrder) Name() string              { return "checkOutOrder" }
func (CancelOrder) Name() string                { return "cancelOrder" }
func (FocusOrderNote) Name() string             { return "focusOrderNote" }
func (OrderNoteChanged) Name() string           { return "orderNoteChanged" }
func (SwitchTab) Name() string                  { return "switchTab" }
func (UpdateOrders) Name() string               { return "updateOrders" }
func (UpdatePlaces) Name() string               { return "updatePlaces" }
func (StartTracking) Name() string              { return "startTracking" }
func (StopTracking) Name() string               { return "stopTracking" }
func (OpenSettings) Name() string               { return "openSettings" }
func (RequestLocationPermissions) Name() string { return "requestLocationPermissions" }
func (RequestMotionPermissions) Name() string   { return "requestMotionPermissions" }
func (RequestPushAuthorization) Name() string   { return "requestPushAuthorization" }
func (PushDialogCompleted) Name() string        { return "pushDialogCompleted" }
func (OrdersUpdated) Name() string              { return "ordersUpdated" }
func (PlacesUpdated) Name() string              { return "placesUpdated" }
func (HistoryUpdated) Name() string             { return "historyUpdated" }
func (TokenUpdated) Name() string               { return "tokenUpdated" }
func (OrderCompleteFinished) Name() string      { return "orderCompleteFinished" }
func (OrderCancelFinished) Name() string        { return "orderCancelFinished" }
