package model

import (
	"sort"
	"time"
)

// OrderSource says where an order came from.
type OrderSource string

const (
	SourceGeofence OrderSource = "geofence"
	SourceOrder    OrderSource = "order"
	SourceTrip     OrderSource = "trip"
)

// GeotagKind enumerates the lifecycle states of an order's geotag.
type GeotagKind string

const (
	GeotagNotSent    GeotagKind = "notSent"
	GeotagPickedUp   GeotagKind = "pickedUp"
	GeotagEntered    GeotagKind = "entered"
	GeotagVisited    GeotagKind = "visited"
	GeotagCheckedOut GeotagKind = "checkedOut"
	GeotagCancelled  GeotagKind = "cancelled"
)

// VisitSpan records when the driver entered a geofence and, if known, when
// they left. A zero ExitedAt means entry only.
type VisitSpan struct {
	EnteredAt time.Time `json:"enteredAt"`
	ExitedAt  time.Time `json:"exitedAt,omitempty"`
}

func (v VisitSpan) Exited() bool { return !v.ExitedAt.IsZero() }

// Geotag is the per-order status machine state.
//
//   - NotSent, PickedUp: Visit and At are unset.
//   - Entered: Visit holds the entry time, ExitedAt zero.
//   - Visited: Visit holds entry and exit.
//   - CheckedOut, Cancelled: At holds the terminal time, Visit optionally
//     carries the visit info accumulated before the terminal event.
type Geotag struct {
	Kind  GeotagKind `json:"kind"`
	Visit *VisitSpan `json:"visit,omitempty"`
	At    time.Time  `json:"at,omitempty"`
}

// Terminal reports whether no further transition is permitted.
func (g Geotag) Terminal() bool {
	return g.Kind == GeotagCheckedOut || g.Kind == GeotagCancelled
}

// Order is a single delivery or stop the driver must act on. Identity is the
// ID alone; all other fields are mutable attributes.
type Order struct {
	ID               string            `json:"id"`
	TripID           string            `json:"tripId,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	Location         Coordinate        `json:"location"`
	Address          Address           `json:"address,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	Note             string            `json:"note,omitempty"`
	NoteFieldFocused bool              `json:"noteFieldFocused,omitempty"`
	Source           OrderSource       `json:"source"`
	Geotag           Geotag            `json:"geotag"`
}

// MetadataKeys returns the metadata names in ascending order.
func (o Order) MetadataKeys() []string {
	keys := make([]string, 0, len(o.Metadata))
	for k := range o.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OrderSet is a set of orders keyed by ID, so identity-by-ID holds
// structurally.
type OrderSet map[string]Order

func NewOrderSet(orders ...Order) OrderSet {
	s := OrderSet{}
	for _, o := range orders {
		s[o.ID] = o
	}
	return s
}

func (s OrderSet) Insert(o Order) { s[o.ID] = o }

func (s OrderSet) Clone() OrderSet {
	out := make(OrderSet, len(s))
	for id, o := range s {
		out[id] = o
	}
	return out
}

// List returns the orders sorted by createdAt ascending, ID ascending on ties.
func (s OrderSet) List() []Order {
	out := make([]Order, 0, len(s))
	for _, o := range s {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ManualVisit is a visit the driver created by hand rather than one assigned
// by the backend.
type ManualVisit struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Note      string    `json:"note,omitempty"`
	Geotag    Geotag    `json:"geotag"`
}
