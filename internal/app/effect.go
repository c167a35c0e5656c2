package app

import (
	"visits/internal/model"
	"visits/internal/sdk"
)

// Effect is a side-effecting task the reducer asks for. Effects run outside
// the reducer; any outcome re-enters as an action. An effect with no
// follow-up action has no observable completion.
type Effect interface {
	isEffect()
	// Name labels the effect for logs and metrics.
	Name() string
}

// Timer control. Exactly one deep-link timer exists system-wide; StartTimer
// implies cancelling a previous one by the shared identity.

type StartDeepLinkTimer struct{}
type CancelDeepLinkTimer struct{}

// ContinueUserActivity forwards a platform activity URL to deep-link
// resolution; the payload comes back as ReceivedDeepLink.
type ContinueUserActivity struct{ URL string }

// SubscribeToDeepLinks starts the deep-link subscription. Issued once after
// state restoration.
type SubscribeToDeepLinks struct{}

// RestoreState loads the persisted record and takes the first SDK snapshot;
// the pair comes back as StateRestored.
type RestoreState struct{}

// SDK effects.

type MakeSDK struct{ PublishableKey model.PublishableKey }
type SetDriverID struct{ DriverID model.DriverID }
type SubscribeToStatusUpdates struct{}
type StartTrackingEffect struct{}
type StopTrackingEffect struct{}
type OpenSettingsEffect struct{}
type RequestLocationPermissionsEffect struct{}
type RequestMotionPermissionsEffect struct{}
type AddGeotag struct{ Geotag sdk.Geotag }
type RequestPushPermissions struct{}
type SyncDeviceSettings struct{}

// Account effects.

type SignUpRequest struct {
	BusinessName    string
	Email           string
	Password        string
	BusinessManages string
	ManagesFor      string
}

type VerifyRequest struct {
	Email string
	Code  model.VerificationCode
}

type ResendVerification struct{ Email string }

type SignInRequest struct {
	Email    string
	Password string
}

// Backend effects. The runtime reads the session tuple (token, deviceID)
// from the state it holds when executing these.

type GetToken struct {
	PublishableKey model.PublishableKey
	DeviceID       model.DeviceID
}

type GetOrders struct{}
type GetPlaces struct{}
type GetHistory struct{}
type CompleteOrderRequest struct{ Order model.Order }
type CancelOrderRequest struct{ Order model.Order }
type UpdateOrderNote struct {
	Order model.Order
	Note  string
}

func (StartDeepLinkTimer) isEffect()               {}
func (CancelDeepLinkTimer) isEffect()              {}
func (ContinueUserActivity) isEffect()             {}
func (SubscribeToDeepLinks) isEffect()             {}
func (RestoreState) isEffect()                     {}
func (SyncDeviceSettings) isEffect()               {}
func (MakeSDK) isEffect()                          {}
func (SetDriverID) isEffect()                      {}
func (SubscribeToStatusUpdates) isEffect()         {}
func (StartTrackingEffect) isEffect()              {}
func (StopTrackingEffect) isEffect()               {}
func (OpenSettingsEffect) isEffect()               {}
func (RequestLocationPermissionsEffect) isEffect() {}
func (RequestMotionPermissionsEffect) isEffect()   {}
func (AddGeotag) isEffect()                        {}
func (RequestPushPermissions) isEffect()           {}
func (SignUpRequest) isEffect()                    {}
func (VerifyRequest) isEffect()                    {}
func (ResendVerification) isEffect()               {}
func (SignInRequest) isEffect()                    {}
func (GetToken) isEffect()                         {}
func (GetOrders) isEffect()                        {}
func (GetPlaces) isEffect()                        {}
func (GetHistory) isEffect()                       {}
func (CompleteOrderRequest) isEffect()             {}
func (CancelOrderRequest) isEffect()               {}
func (UpdateOrderNote) isEffect()                  {}

func (StartDeepLinkTimer) Name() string               { return "startDeepLinkTimer" }
func (CancelDeepLinkTimer) Name() string              { return "cancelDeepLinkTimer" }
func (ContinueUserActivity) Name() string             { return "continueUserActivity" }
func (SubscribeToDeepLinks) Name() string             { return "subscribeToDeepLinks" }
func (RestoreState) Name() string                     { return "restoreState" }
func (SyncDeviceSettings) Name() string               { return "syncDeviceSettings" }
func (MakeSDK) Name() string                          { return "makeSDK" }
func (SetDriverID) Name() string                      { return "setDriverID" }
func (SubscribeToStatusUpdates) Name() string         { return "subscribeToStatusUpdates" }
func (StartTrackingEffect) Name() string              { return "startTracking" }
func (StopTrackingEffect) Name() string               { return "stopTracking" }
func (OpenSettingsEffect) Name() string               { return "openSettings" }
func (RequestLocationPermissionsEffect) Name() string { return "requestLocationPermissions" }
func (RequestMotionPermissionsEffect) Name() string   { return "requestMotionPermissions" }
func (AddGeotag) Name() string                        { return "addGeotag" }
func (RequestPushPermissions) Name() string           { return "requestPushPermissions" }
func (SignUpRequest) Name() string                    { return "signUpRequest" }
func (VerifyRequest) Name() string                    { return "verifyRequest" }
func (ResendVerification) Name() string               { return "resendVerification" }
func (SignInRequest) Name() string                    { return "signInRequest" }
func (GetToken) Name() string                         { return "getToken" }
func (GetOrders) Name() string                        { return "getOrders" }
func (GetPlaces) Name() string                        { return "getPlaces" }
func (GetHistory) Name() string                       { return "getHistory" }
func (CompleteOrderRequest) Name() string             { return "completeOrder" }
func (CancelOrderRequest) Name() string               { return "cancelOrder" }
func (UpdateOrderNote) Name() string                  { return "updateOrderNote" }
