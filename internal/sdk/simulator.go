package sdk

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"visits/internal/model"
)

// Simulator is an in-process SDK used in development and tests. It unlocks
// every key unless told otherwise, grants all permissions, and fans status
// updates out to subscribers.
type Simulator struct {
	mu          sync.Mutex
	deviceID    model.DeviceID
	driverID    model.DriverID
	key         model.PublishableKey
	tracking    model.TrackingState
	permissions model.Permissions
	lockedKeys  map[model.PublishableKey]bool
	subs        map[chan model.StatusUpdate]struct{}
	geotags     []Geotag
}

func NewSimulator() *Simulator {
	return &Simulator{
		deviceID: model.DeviceID(uuid.New().String()),
		tracking: model.TrackingStopped,
		permissions: model.Permissions{
			LocationAccuracy: model.AccuracyFull,
			Location:         model.PermissionAuthorized,
			Motion:           model.PermissionAuthorized,
		},
		lockedKeys: map[model.PublishableKey]bool{},
		subs:       map[chan model.StatusUpdate]struct{}{},
	}
}

// LockKey makes Make report locked for the given key.
func (s *Simulator) LockKey(pk model.PublishableKey) {
	s.mu.Lock()
	s.lockedKeys[pk] = true
	s.mu.Unlock()
}

// SetPermissions overrides the permission snapshot and notifies subscribers.
func (s *Simulator) SetPermissions(p model.Permissions) {
	s.mu.Lock()
	s.permissions = p
	upd := s.statusLocked()
	s.mu.Unlock()
	s.publish(upd)
}

// Geotags returns the geotags recorded so far.
func (s *Simulator) Geotags() []Geotag {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Geotag, len(s.geotags))
	copy(out, s.geotags)
	return out
}

func (s *Simulator) Make(_ context.Context, pk model.PublishableKey) (model.StatusUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lockedKeys[pk] {
		return model.StatusUpdate{Status: model.SDKStatus{Kind: model.SDKLocked}, Permissions: s.permissions}, nil
	}
	if s.key != pk {
		// New tenant, new device identity.
		s.deviceID = model.DeviceID(uuid.New().String())
	}
	s.key = pk
	s.tracking = model.TrackingRunning
	return s.statusLocked(), nil
}

func (s *Simulator) SetDriverID(_ context.Context, driverID model.DriverID) error {
	s.mu.Lock()
	s.driverID = driverID
	s.mu.Unlock()
	return nil
}

func (s *Simulator) StartTracking(context.Context) error {
	s.mu.Lock()
	s.tracking = model.TrackingRunning
	upd := s.statusLocked()
	s.mu.Unlock()
	s.publish(upd)
	return nil
}

func (s *Simulator) StopTracking(context.Context) error {
	s.mu.Lock()
	s.tracking = model.TrackingStopped
	upd := s.statusLocked()
	s.mu.Unlock()
	s.publish(upd)
	return nil
}

func (s *Simulator) Subscribe(ctx context.Context) (<-chan model.StatusUpdate, error) {
	ch := make(chan model.StatusUpdate, 8)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (s *Simulator) RequestLocationPermissions(context.Context) error {
	s.mu.Lock()
	if s.permissions.Location == model.PermissionNotDetermined {
		s.permissions.Location = model.PermissionAuthorized
	}
	upd := s.statusLocked()
	s.mu.Unlock()
	s.publish(upd)
	return nil
}

func (s *Simulator) RequestMotionPermissions(context.Context) (model.StatusUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permissions.Motion == model.PermissionNotDetermined {
		s.permissions.Motion = model.PermissionAuthorized
	}
	return s.statusLocked(), nil
}

func (s *Simulator) AddGeotag(_ context.Context, g Geotag) error {
	s.mu.Lock()
	s.geotags = append(s.geotags, g)
	s.mu.Unlock()
	return nil
}

func (s *Simulator) OpenSettings(context.Context) error { return nil }

func (s *Simulator) SyncDeviceSettings(context.Context) error { return nil }

// statusLocked builds a StatusUpdate; callers hold s.mu.
func (s *Simulator) statusLocked() model.StatusUpdate {
	status := model.SDKStatus{Kind: model.SDKLocked}
	if s.key != "" && !s.lockedKeys[s.key] {
		status = model.SDKStatus{Kind: model.SDKUnlocked, DeviceID: s.deviceID, Tracking: s.tracking}
	}
	return model.StatusUpdate{Status: status, Permissions: s.permissions}
}

func (s *Simulator) publish(upd model.StatusUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- upd:
		default:
		}
	}
}
