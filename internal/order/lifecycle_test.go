package order

import (
	"errors"
	"testing"
	"time"

	"visits/internal/model"
)

func newOrder(id string, created time.Time) model.Order {
	return model.Order{
		ID:        id,
		CreatedAt: created,
		Location:  model.Coordinate{Lat: 37.7, Lng: -122.4},
		Source:    model.SourceGeofence,
		Geotag:    model.Geotag{Kind: model.GeotagNotSent},
	}
}

func TestPickUpOnlyFromNotSent(t *testing.T) {
	now := time.Now()
	o := newOrder("o1", now)

	got, err := Transition(o, PickUp())
	if err != nil {
		t.Fatalf("pickUp from notSent: %v", err)
	}
	if got.Geotag.Kind != model.GeotagPickedUp {
		t.Fatalf("got %s, want pickedUp", got.Geotag.Kind)
	}
	if _, err := Transition(got, PickUp()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pickUp from pickedUp: got %v, want ErrInvalidTransition", err)
	}
}

func TestCheckInCheckOutCarriesVisit(t *testing.T) {
	entered := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	exited := entered.Add(15 * time.Minute)
	o := newOrder("o1", entered.Add(-time.Hour))

	o, err := Transition(o, CheckIn(entered))
	if err != nil {
		t.Fatalf("checkIn: %v", err)
	}
	if o.Geotag.Kind != model.GeotagEntered || o.Geotag.Visit == nil || !o.Geotag.Visit.EnteredAt.Equal(entered) {
		t.Fatalf("entered state wrong: %+v", o.Geotag)
	}

	o, err = Transition(o, CheckOut(exited))
	if err != nil {
		t.Fatalf("checkOut: %v", err)
	}
	g := o.Geotag
	if g.Kind != model.GeotagCheckedOut || !g.At.Equal(exited) {
		t.Fatalf("checkedOut state wrong: %+v", g)
	}
	if g.Visit == nil || !g.Visit.EnteredAt.Equal(entered) || !g.Visit.ExitedAt.Equal(exited) {
		t.Fatalf("visit span not carried: %+v", g.Visit)
	}
}

func TestCheckOutWithoutVisitHasNoSpan(t *testing.T) {
	now := time.Now()
	o := newOrder("o1", now)
	o, err := Transition(o, CheckOut(now))
	if err != nil {
		t.Fatalf("checkOut from notSent: %v", err)
	}
	if o.Geotag.Visit != nil {
		t.Fatalf("expected no visit span, got %+v", o.Geotag.Visit)
	}
}

func TestTerminalRejectsEverything(t *testing.T) {
	now := time.Now()
	o := newOrder("o1", now)
	o, err := Transition(o, CheckOut(now))
	if err != nil {
		t.Fatalf("checkOut: %v", err)
	}
	for _, ev := range []Event{PickUp(), CheckIn(now), CheckOut(now.Add(time.Minute)), Cancel(now.Add(time.Minute))} {
		if _, err := Transition(o, ev); !errors.Is(err, ErrAlreadyTerminal) {
			t.Fatalf("%s on checkedOut: got %v, want ErrAlreadyTerminal", ev.Kind, err)
		}
	}
}

func TestCancelCarriesVisitInfo(t *testing.T) {
	entered := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	o := newOrder("o1", entered)
	o, _ = Transition(o, CheckIn(entered))
	o, err := Transition(o, Cancel(entered.Add(time.Hour)))
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if o.Geotag.Kind != model.GeotagCancelled || o.Geotag.Visit == nil || !o.Geotag.Visit.EnteredAt.Equal(entered) {
		t.Fatalf("cancelled state wrong: %+v", o.Geotag)
	}
}

func TestNoteChangedIsAlwaysLegal(t *testing.T) {
	now := time.Now()
	o := newOrder("o1", now)
	o, _ = Transition(o, CheckOut(now))
	o, err := Transition(o, NoteChanged("left at door"))
	if err != nil {
		t.Fatalf("noteChanged on terminal order: %v", err)
	}
	if o.Note != "left at door" {
		t.Fatalf("note not applied: %q", o.Note)
	}
}

func TestPartitionIsTotalAndSorted(t *testing.T) {
	base := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	set := model.OrderSet{}
	mk := func(id string, offset time.Duration, g model.Geotag) {
		o := newOrder(id, base.Add(offset))
		o.Geotag = g
		set.Insert(o)
	}
	mk("a", 0, model.Geotag{Kind: model.GeotagNotSent})
	mk("b", time.Hour, model.Geotag{Kind: model.GeotagPickedUp})
	mk("c", 2*time.Hour, model.Geotag{Kind: model.GeotagEntered, Visit: &model.VisitSpan{EnteredAt: base}})
	mk("d", 3*time.Hour, model.Geotag{Kind: model.GeotagCheckedOut, At: base})
	mk("e", 4*time.Hour, model.Geotag{Kind: model.GeotagCancelled, At: base})

	p := Partition(set)
	total := len(p.Pending) + len(p.Visited) + len(p.Completed) + len(p.Canceled)
	if total != len(set) {
		t.Fatalf("partition not total: %d buckets for %d orders", total, len(set))
	}
	if len(p.Pending) != 2 || len(p.Visited) != 1 || len(p.Completed) != 1 || len(p.Canceled) != 1 {
		t.Fatalf("unexpected bucket sizes: %d/%d/%d/%d", len(p.Pending), len(p.Visited), len(p.Completed), len(p.Canceled))
	}
	if p.Pending[0].ID != "b" || p.Pending[1].ID != "a" {
		t.Fatalf("pending not sorted by createdAt desc: %v", []string{p.Pending[0].ID, p.Pending[1].ID})
	}
}

func TestCategorizeZeroValueIsPending(t *testing.T) {
	if got := Categorize(model.Geotag{}); got != CategoryPending {
		t.Fatalf("unset geotag = %q, want pending", got)
	}
	if got := Categorize(model.Geotag{Kind: model.GeotagCancelled}); got != CategoryCanceled {
		t.Fatalf("cancelled geotag = %q, want canceled", got)
	}
	if got := Categorize(model.Geotag{Kind: "someFutureKind"}); got != CategoryPending {
		t.Fatalf("unknown geotag = %q, want pending", got)
	}
}
