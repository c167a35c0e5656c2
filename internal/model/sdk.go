package model

// UnlockKind reports whether the tracking SDK accepted the publishable key.
type UnlockKind string

const (
	SDKLocked   UnlockKind = "locked"
	SDKUnlocked UnlockKind = "unlocked"
)

// TrackingState is the SDK's view of the device once unlocked.
type TrackingState string

const (
	TrackingRunning    TrackingState = "running"
	TrackingStopped    TrackingState = "stopped"
	TrackingDeleted    TrackingState = "deleted"
	TrackingInvalidKey TrackingState = "invalidPublishableKey"
)

// SDKStatus is the unlock state plus, when unlocked, the device identity and
// tracking state.
type SDKStatus struct {
	Kind     UnlockKind    `json:"kind"`
	DeviceID DeviceID      `json:"deviceId,omitempty"`
	Tracking TrackingState `json:"tracking,omitempty"`
}

func (s SDKStatus) Unlocked() bool { return s.Kind == SDKUnlocked }

// Permission is the state of a single OS permission.
type Permission string

const (
	PermissionNotDetermined Permission = "notDetermined"
	PermissionAuthorized    Permission = "authorized"
	PermissionDenied        Permission = "denied"
	PermissionDisabled      Permission = "disabled"
	PermissionRestricted    Permission = "restricted"
)

// LocationAccuracy is the granted location precision.
type LocationAccuracy string

const (
	AccuracyFull    LocationAccuracy = "full"
	AccuracyReduced LocationAccuracy = "reduced"
)

// Permissions is the snapshot of location/motion grants the SDK reports.
type Permissions struct {
	LocationAccuracy LocationAccuracy `json:"locationAccuracy"`
	Location         Permission       `json:"location"`
	Motion           Permission       `json:"motion"`
}

// Granted reports whether tracking can run without a blocker screen.
func (p Permissions) Granted() bool {
	return p.LocationAccuracy == AccuracyFull &&
		p.Location == PermissionAuthorized &&
		p.Motion == PermissionAuthorized
}

// StatusUpdate pairs the SDK status with the permission snapshot, as the SDK
// delivers both together.
type StatusUpdate struct {
	Status      SDKStatus   `json:"status"`
	Permissions Permissions `json:"permissions"`
}
