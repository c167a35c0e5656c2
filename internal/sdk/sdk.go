// Package sdk defines the on-device tracking subsystem the app drives. The
// real SDK lives outside this codebase; Simulator stands in for it.
package sdk

import (
	"context"

	"visits/internal/model"
)

// GeotagKind enumerates the geotags the app sends to the tracking subsystem.
type GeotagKind string

const (
	GeotagPickUp   GeotagKind = "pickUp"
	GeotagCheckOut GeotagKind = "checkOut"
	GeotagCancel   GeotagKind = "cancel"
	GeotagClockIn  GeotagKind = "clockIn"
	GeotagClockOut GeotagKind = "clockOut"
)

// Geotag is a marker event attached to the device's location stream.
type Geotag struct {
	Kind    GeotagKind
	OrderID string
	Source  model.OrderSource
	Note    string
}

// SDK is the tracking subsystem contract. Calls are blocking; completion
// results re-enter the state machine as actions.
type SDK interface {
	// Make initializes (or re-initializes) the SDK with a publishable key and
	// reports whether the key unlocked the device.
	Make(ctx context.Context, pk model.PublishableKey) (model.StatusUpdate, error)
	// SetDriverID attaches the driver identity to the device. Fire-and-forget:
	// no observable completion beyond the error.
	SetDriverID(ctx context.Context, driverID model.DriverID) error
	StartTracking(ctx context.Context) error
	StopTracking(ctx context.Context) error
	// Subscribe streams status/permission updates until ctx is done.
	Subscribe(ctx context.Context) (<-chan model.StatusUpdate, error)
	RequestLocationPermissions(ctx context.Context) error
	RequestMotionPermissions(ctx context.Context) (model.StatusUpdate, error)
	AddGeotag(ctx context.Context, g Geotag) error
	OpenSettings(ctx context.Context) error
	SyncDeviceSettings(ctx context.Context) error
}
