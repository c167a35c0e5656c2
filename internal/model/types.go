package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Validated string wrappers. Empty values are never valid; constructors
// return an error instead of handing back a zero value.

var ErrEmpty = errors.New("value must be non-empty")

type PublishableKey string
type DriverID string
type Email string
type Password string
type DeviceID string
type Token string

func NewPublishableKey(s string) (PublishableKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("publishable key: %w", ErrEmpty)
	}
	return PublishableKey(s), nil
}

func NewDriverID(s string) (DriverID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("driver id: %w", ErrEmpty)
	}
	return DriverID(s), nil
}

func NewEmail(s string) (Email, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "", fmt.Errorf("email: %w", ErrEmpty)
	}
	return Email(s), nil
}

func NewPassword(s string) (Password, error) {
	if s == "" {
		return "", fmt.Errorf("password: %w", ErrEmpty)
	}
	return Password(s), nil
}

func NewToken(s string) (Token, error) {
	if s == "" {
		return "", fmt.Errorf("token: %w", ErrEmpty)
	}
	return Token(s), nil
}

// VerificationCode is exactly six ASCII digits.
type VerificationCode string

func NewVerificationCode(s string) (VerificationCode, error) {
	if len(s) != 6 {
		return "", fmt.Errorf("verification code must be 6 digits, got %d", len(s))
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return "", errors.New("verification code must be digits only")
		}
	}
	return VerificationCode(s), nil
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func NewCoordinate(lat, lng float64) (Coordinate, error) {
	if lat < -90 || lat > 90 {
		return Coordinate{}, fmt.Errorf("latitude %v out of range", lat)
	}
	if lng < -180 || lng > 180 {
		return Coordinate{}, fmt.Errorf("longitude %v out of range", lng)
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}

// Address holds the reverse-geocoded address of an order. Either field may be
// empty; both empty means no address is known.
type Address struct {
	Street string `json:"street,omitempty"`
	Full   string `json:"full,omitempty"`
}

func (a Address) IsZero() bool { return a.Street == "" && a.Full == "" }

// Best returns the most specific non-empty component.
func (a Address) Best() string {
	if a.Street != "" {
		return a.Street
	}
	return a.Full
}

// ManualVisitsMode controls whether user-created visits appear alongside
// assigned orders. The zero value means the mode was never communicated.
type ManualVisitsMode int

const (
	ManualVisitsUnknown ManualVisitsMode = iota
	ManualVisitsShow
	ManualVisitsHide
)

func (m ManualVisitsMode) String() string {
	switch m {
	case ManualVisitsShow:
		return "show"
	case ManualVisitsHide:
		return "hide"
	default:
		return "unknown"
	}
}

func ParseManualVisitsMode(s string) ManualVisitsMode {
	switch s {
	case "show":
		return ManualVisitsShow
	case "hide":
		return ManualVisitsHide
	}
	return ManualVisitsUnknown
}

// TabSelection is the active tab on the main screen.
type TabSelection string

const (
	TabVisits  TabSelection = "visits"
	TabMap     TabSelection = "map"
	TabSummary TabSelection = "summary"
	TabPlaces  TabSelection = "places"
	TabProfile TabSelection = "profile"

	DefaultTab = TabVisits
)

func ParseTab(s string) (TabSelection, bool) {
	switch TabSelection(s) {
	case TabVisits, TabMap, TabSummary, TabPlaces, TabProfile:
		return TabSelection(s), true
	}
	return "", false
}

// PushStatus tracks the push-notification dialog splash.
type PushStatus string

const (
	PushDialogNotShown         PushStatus = "dialogSplashNotShown"
	PushDialogShown            PushStatus = "dialogSplashShown"
	PushDialogWaitingForAction PushStatus = "dialogSplashWaitingForUserAction"
)

func ParsePushStatus(s string) (PushStatus, bool) {
	switch PushStatus(s) {
	case PushDialogNotShown, PushDialogShown, PushDialogWaitingForAction:
		return PushStatus(s), true
	}
	return "", false
}

// Experience distinguishes the very first session from later ones.
type Experience string

const (
	ExperienceFirstRun Experience = "firstRun"
	ExperienceRegular  Experience = "regular"
)

// Place is a saved geofence the driver can browse on the places tab.
type Place struct {
	ID        string     `json:"id"`
	CreatedAt string     `json:"createdAt,omitempty"`
	Location  Coordinate `json:"location"`
	Address   Address    `json:"address,omitempty"`
}

// History is a day summary of the device's movement.
type History struct {
	Coordinates []Coordinate `json:"coordinates,omitempty"`
	DistanceM   int          `json:"distanceM"`
	Date        string       `json:"date,omitempty"`
}
