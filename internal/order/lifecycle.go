// Package order implements the per-order geotag lifecycle machine and the
// derived list partition used by the main screen.
package order

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"visits/internal/model"
)

var (
	// ErrInvalidTransition means the event is not legal from the order's
	// current status. Reaching it indicates the caller let an illegal action
	// through.
	ErrInvalidTransition = errors.New("invalid geotag transition")
	// ErrAlreadyTerminal means the order is checked out or cancelled and
	// accepts no further events.
	ErrAlreadyTerminal = errors.New("order already in terminal state")
)

// Event is a lifecycle event applied to a single order.
type Event struct {
	Kind EventKind
	Now  time.Time // checkIn, checkOut, cancel
	Note string    // noteChanged
}

type EventKind string

const (
	EventPickUp      EventKind = "pickUp"
	EventCheckIn     EventKind = "checkIn"
	EventCheckOut    EventKind = "checkOut"
	EventCancel      EventKind = "cancel"
	EventNoteChanged EventKind = "noteChanged"
)

func PickUp() Event                 { return Event{Kind: EventPickUp} }
func CheckIn(now time.Time) Event   { return Event{Kind: EventCheckIn, Now: now} }
func CheckOut(now time.Time) Event  { return Event{Kind: EventCheckOut, Now: now} }
func Cancel(now time.Time) Event    { return Event{Kind: EventCancel, Now: now} }
func NoteChanged(note string) Event { return Event{Kind: EventNoteChanged, Note: note} }

// Transition applies ev to o and returns the updated order. It is pure: o is
// not mutated. Terminal states reject everything with ErrAlreadyTerminal;
// other illegal pairs fail with ErrInvalidTransition.
func Transition(o model.Order, ev Event) (model.Order, error) {
	if ev.Kind == EventNoteChanged {
		o.Note = ev.Note
		return o, nil
	}
	g := o.Geotag
	if g.Terminal() {
		return o, fmt.Errorf("%s on %s order %s: %w", ev.Kind, g.Kind, o.ID, ErrAlreadyTerminal)
	}
	switch ev.Kind {
	case EventPickUp:
		if g.Kind != model.GeotagNotSent {
			return o, fmt.Errorf("pickUp from %s on order %s: %w", g.Kind, o.ID, ErrInvalidTransition)
		}
		o.Geotag = model.Geotag{Kind: model.GeotagPickedUp}
	case EventCheckIn:
		if g.Kind != model.GeotagNotSent && g.Kind != model.GeotagPickedUp {
			return o, fmt.Errorf("checkIn from %s on order %s: %w", g.Kind, o.ID, ErrInvalidTransition)
		}
		o.Geotag = model.Geotag{Kind: model.GeotagEntered, Visit: &model.VisitSpan{EnteredAt: ev.Now}}
	case EventCheckOut:
		switch g.Kind {
		case model.GeotagNotSent, model.GeotagPickedUp:
			o.Geotag = model.Geotag{Kind: model.GeotagCheckedOut, At: ev.Now}
		case model.GeotagEntered:
			o.Geotag = model.Geotag{
				Kind:  model.GeotagCheckedOut,
				Visit: &model.VisitSpan{EnteredAt: g.Visit.EnteredAt, ExitedAt: ev.Now},
				At:    ev.Now,
			}
		case model.GeotagVisited:
			visit := *g.Visit
			o.Geotag = model.Geotag{Kind: model.GeotagCheckedOut, Visit: &visit, At: ev.Now}
		default:
			return o, fmt.Errorf("checkOut from %s on order %s: %w", g.Kind, o.ID, ErrInvalidTransition)
		}
	case EventCancel:
		var visit *model.VisitSpan
		if g.Visit != nil {
			v := *g.Visit
			visit = &v
		}
		o.Geotag = model.Geotag{Kind: model.GeotagCancelled, Visit: visit, At: ev.Now}
	default:
		return o, fmt.Errorf("unknown event %q: %w", ev.Kind, ErrInvalidTransition)
	}
	return o, nil
}

// MarkVisited records a geofence exit for an entered order. Unlike the user
// events above this comes from the location subsystem, so out-of-order
// updates are ignored rather than rejected.
func MarkVisited(o model.Order, exitedAt time.Time) model.Order {
	if o.Geotag.Kind != model.GeotagEntered || o.Geotag.Visit == nil {
		return o
	}
	o.Geotag = model.Geotag{
		Kind:  model.GeotagVisited,
		Visit: &model.VisitSpan{EnteredAt: o.Geotag.Visit.EnteredAt, ExitedAt: exitedAt},
	}
	return o
}

// Category buckets a geotag status for list display.
type Category string

const (
	CategoryPending   Category = "pending"
	CategoryVisited   Category = "visited"
	CategoryCompleted Category = "completed"
	CategoryCanceled  Category = "canceled"
)

func Categorize(g model.Geotag) Category {
	switch g.Kind {
	case model.GeotagEntered, model.GeotagVisited:
		return CategoryVisited
	case model.GeotagCheckedOut:
		return CategoryCompleted
	case model.GeotagCancelled:
		return CategoryCanceled
	default:
		// Unset and unknown kinds have not progressed; show them pending.
		return CategoryPending
	}
}

// Partitioned holds the four status lists shown on the orders tab, each
// sorted by createdAt descending.
type Partitioned struct {
	Pending   []model.Order
	Visited   []model.Order
	Completed []model.Order
	Canceled  []model.Order
}

// Partition buckets every order into exactly one list.
func Partition(orders model.OrderSet) Partitioned {
	var p Partitioned
	for _, o := range orders {
		switch Categorize(o.Geotag) {
		case CategoryPending:
			p.Pending = append(p.Pending, o)
		case CategoryVisited:
			p.Visited = append(p.Visited, o)
		case CategoryCompleted:
			p.Completed = append(p.Completed, o)
		case CategoryCanceled:
			p.Canceled = append(p.Canceled, o)
		}
	}
	for _, list := range [][]model.Order{p.Pending, p.Visited, p.Completed, p.Canceled} {
		sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	}
	return p
}
