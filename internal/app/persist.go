package app

import (
	"visits/internal/model"
	"visits/internal/restore"
)

// Durable extracts the subset of the flow state worth persisting. Transient
// flows (launching, blockers, in-flight requests) report false: overwriting
// a good record with one of those would lose the session.
func Durable(s State) (restore.StorageState, bool) {
	switch s.Kind {
	case FlowSignUp:
		f := s.SignUp
		if f.Stage != StageFormFilling && f.Stage != StageFormFilled {
			return restore.StorageState{}, false
		}
		return restore.StorageState{Screen: restore.ScreenSignUp, Email: model.Email(f.Email)}, true
	case FlowSignIn:
		if s.SignIn.SigningIn {
			return restore.StorageState{}, false
		}
		return restore.StorageState{Screen: restore.ScreenSignIn, Email: model.Email(s.SignIn.Email)}, true
	case FlowDriverID:
		f := s.DriverID
		return restore.StorageState{
			Screen:         restore.ScreenDriverID,
			PublishableKey: f.PublishableKey,
			DriverID:       f.DriverID,
		}, true
	case FlowMain:
		m := s.Main
		return restore.StorageState{
			Screen:         restore.ScreenMain,
			PublishableKey: m.PublishableKey,
			DriverID:       m.DriverID,
			Orders:         m.Visits.AllOrders(),
			Places:         m.Places,
			Tab:            m.Tab,
			PushStatus:     m.PushStatus,
			Experience:     m.Experience,
		}, true
	}
	return restore.StorageState{}, false
}
