// Package restore serializes the durable subset of flow state to a flat
// key-value record and restores it on launch, including records written by
// app versions that predate the screen tag.
package restore

import (
	"encoding/json"

	"visits/internal/model"
)

// Screen tags which screen the app had reached when the record was written.
type Screen string

const (
	ScreenSignUp   Screen = "signUp"
	ScreenSignIn   Screen = "signIn"
	ScreenDriverID Screen = "driverID"
	ScreenMain     Screen = "visits"
)

// StorageState is the durable subset of flow state. Which fields are
// meaningful depends on Screen.
type StorageState struct {
	Screen         Screen
	Email          model.Email
	PublishableKey model.PublishableKey
	DriverID       model.DriverID
	Orders         model.OrderSet
	Places         []model.Place
	Tab            model.TabSelection
	PushStatus     model.PushStatus
	Experience     model.Experience
}

// Storage keys are fixed and deliberately opaque; they predate this codebase
// and must not change or old installs lose their session.
const (
	keyDriverID       = "Hp6XdOsXsw"
	keyEmail          = "sXwAlVbnPT"
	keyExperience     = "lQDSheJivt"
	keyOrders         = "nB24HHL2T5"
	keyPlaces         = "Q8Cg06VCdL"
	keyPublishableKey = "UeiDZRFEOd"
	keyPushStatus     = "jC0FVlTWrC"
	keyScreen         = "ZJNLfS0Nhw"
	keyTabSelection   = "8VGkczct6P"
)

// Experience storage values, as opaque as the keys.
const (
	experienceFirstRun = "EMcvpiyTCY"
	experienceRegular  = "wDvZjD44fJ"
)

// Encode flattens the state to the persisted record. Only fields the
// screen's scenario needs are written, matching what decode expects.
func Encode(s StorageState) map[string]string {
	rec := map[string]string{keyScreen: string(s.Screen)}
	switch s.Screen {
	case ScreenSignUp, ScreenSignIn:
		if s.Email != "" {
			rec[keyEmail] = string(s.Email)
		}
	case ScreenDriverID:
		rec[keyPublishableKey] = string(s.PublishableKey)
		if s.DriverID != "" {
			rec[keyDriverID] = string(s.DriverID)
		}
	case ScreenMain:
		rec[keyPublishableKey] = string(s.PublishableKey)
		rec[keyDriverID] = string(s.DriverID)
		if b, err := json.Marshal(s.Orders); err == nil {
			rec[keyOrders] = string(b)
		}
		if b, err := json.Marshal(s.Places); err == nil {
			rec[keyPlaces] = string(b)
		}
		rec[keyTabSelection] = string(s.Tab)
		rec[keyPushStatus] = string(s.PushStatus)
		rec[keyExperience] = encodeExperience(s.Experience)
	}
	return rec
}

// Decode interprets a persisted record. A nil result means nothing
// restorable: a fresh start, never an error. The rules run in order; each
// serves a concrete legacy layout.
func Decode(rec map[string]string) *StorageState {
	screen := rec[keyScreen]
	email, _ := optionalEmail(rec[keyEmail])
	pk := rec[keyPublishableKey]
	driverID := rec[keyDriverID]

	if screen == "" {
		// Pre-migration records had no screen tag.
		switch {
		case pk != "" && driverID != "":
			// Old app that reached the deliveries screen.
			return &StorageState{
				Screen:         ScreenMain,
				PublishableKey: model.PublishableKey(pk),
				DriverID:       model.DriverID(driverID),
				Orders:         model.OrderSet{},
				Tab:            model.DefaultTab,
				PushStatus:     model.PushDialogNotShown,
				Experience:     model.ExperienceRegular,
			}
		case pk != "":
			// Old app that only reached the driver-ID screen.
			return &StorageState{Screen: ScreenDriverID, PublishableKey: model.PublishableKey(pk)}
		default:
			// Fresh install, or an old app that never opened a deep link.
			return nil
		}
	}

	switch Screen(screen) {
	case ScreenSignUp:
		return &StorageState{Screen: ScreenSignUp, Email: email}
	case ScreenSignIn:
		return &StorageState{Screen: ScreenSignIn, Email: email}
	case ScreenDriverID:
		if pk == "" {
			return nil
		}
		return &StorageState{
			Screen:         ScreenDriverID,
			PublishableKey: model.PublishableKey(pk),
			DriverID:       model.DriverID(driverID),
		}
	case ScreenMain:
		if pk == "" || driverID == "" {
			return nil
		}
		s := &StorageState{
			Screen:         ScreenMain,
			PublishableKey: model.PublishableKey(pk),
			DriverID:       model.DriverID(driverID),
			Orders:         model.OrderSet{},
			Tab:            model.DefaultTab,
			PushStatus:     model.PushDialogNotShown,
			Experience:     model.ExperienceRegular,
		}
		if raw := rec[keyOrders]; raw != "" {
			var orders model.OrderSet
			if err := json.Unmarshal([]byte(raw), &orders); err == nil && orders != nil {
				s.Orders = orders
			}
		}
		if raw := rec[keyPlaces]; raw != "" {
			var places []model.Place
			if err := json.Unmarshal([]byte(raw), &places); err == nil {
				s.Places = places
			}
		}
		if tab, ok := model.ParseTab(rec[keyTabSelection]); ok {
			s.Tab = tab
		}
		if ps, ok := model.ParsePushStatus(rec[keyPushStatus]); ok {
			s.PushStatus = ps
		}
		if e, ok := decodeExperience(rec[keyExperience]); ok {
			s.Experience = e
		}
		return s
	default:
		// Unknown screen tag: state restoration failed, start over.
		return nil
	}
}

func optionalEmail(s string) (model.Email, bool) {
	e, err := model.NewEmail(s)
	if err != nil {
		return "", false
	}
	return e, true
}

func encodeExperience(e model.Experience) string {
	if e == model.ExperienceFirstRun {
		return experienceFirstRun
	}
	return experienceRegular
}

func decodeExperience(s string) (model.Experience, bool) {
	switch s {
	case experienceFirstRun:
		return model.ExperienceFirstRun, true
	case experienceRegular:
		return model.ExperienceRegular, true
	}
	return "", false
}
