package model

// Visits is the collection of items shown on the main screen. Two
// representations exist: assigned-only (backend orders) and mixed (manual
// visits alongside backend orders). A currently open item is held in the
// Selected* fields and is never also present in Orders/Manual, so the same
// record can't render twice.
type Visits struct {
	Mixed          bool                   `json:"mixed"`
	Orders         OrderSet               `json:"orders"`
	Manual         map[string]ManualVisit `json:"manual,omitempty"`
	SelectedOrder  *Order                 `json:"selectedOrder,omitempty"`
	SelectedManual *ManualVisit           `json:"selectedManual,omitempty"`
}

// NewAssignedVisits builds an assigned-only collection.
func NewAssignedVisits(orders OrderSet) Visits {
	if orders == nil {
		orders = OrderSet{}
	}
	return Visits{Orders: orders}
}

// NewMixedVisits builds a mixed collection.
func NewMixedVisits(orders OrderSet) Visits {
	if orders == nil {
		orders = OrderSet{}
	}
	return Visits{Mixed: true, Orders: orders, Manual: map[string]ManualVisit{}}
}

// VisitsForMode builds an empty collection in the representation the mode
// calls for. Unknown collapses to assigned-only, matching first-launch
// behavior.
func VisitsForMode(mode ManualVisitsMode) Visits {
	if mode == ManualVisitsShow {
		return NewMixedVisits(nil)
	}
	return NewAssignedVisits(nil)
}

// Mode reports the manual-visits mode this representation corresponds to.
func (v Visits) Mode() ManualVisitsMode {
	if v.Mixed {
		return ManualVisitsShow
	}
	return ManualVisitsHide
}

// AllOrders returns every backend order including a selected one.
func (v Visits) AllOrders() OrderSet {
	out := v.Orders.Clone()
	if v.SelectedOrder != nil {
		out.Insert(*v.SelectedOrder)
	}
	return out
}

// SelectOrder opens the order with the given id, returning it to the set if
// another one was open. Selecting an unknown id deselects only.
func (v Visits) SelectOrder(id string) Visits {
	out := v.Deselect()
	if o, ok := out.Orders[id]; ok {
		delete(out.Orders, id)
		out.SelectedOrder = &o
	}
	return out
}

// Deselect closes any open item, returning it to the collection.
func (v Visits) Deselect() Visits {
	out := v
	out.Orders = v.Orders.Clone()
	if v.SelectedOrder != nil {
		out.Orders.Insert(*v.SelectedOrder)
		out.SelectedOrder = nil
	}
	if v.SelectedManual != nil {
		if out.Manual == nil {
			out.Manual = map[string]ManualVisit{}
		} else {
			out.Manual = cloneManual(v.Manual)
		}
		out.Manual[v.SelectedManual.ID] = *v.SelectedManual
		out.SelectedManual = nil
	}
	return out
}

// UpdateSelectedOrder replaces the open order in place.
func (v Visits) UpdateSelectedOrder(o Order) Visits {
	out := v
	out.SelectedOrder = &o
	return out
}

// ReplaceOrders swaps the backend order subset for a freshly fetched set. An
// open order is refreshed by id, keeping local note edits and focus, or
// dropped if the id disappeared.
func (v Visits) ReplaceOrders(orders OrderSet) Visits {
	out := v
	out.Orders = orders.Clone()
	out.SelectedOrder = nil
	if sel := v.SelectedOrder; sel != nil {
		if fresh, ok := out.Orders[sel.ID]; ok {
			fresh.Note = sel.Note
			fresh.NoteFieldFocused = sel.NoteFieldFocused
			fresh.Geotag = sel.Geotag
			delete(out.Orders, sel.ID)
			out.SelectedOrder = &fresh
		}
	}
	return out
}

// ToAssigned converts to the assigned-only representation. Backend orders
// (and an open order) survive; manual visits and a manual selection drop.
func (v Visits) ToAssigned() Visits {
	out := Visits{Orders: v.Orders.Clone(), SelectedOrder: v.SelectedOrder}
	return out
}

// ToMixed converts to the mixed representation, keeping the order subset and
// any open order.
func (v Visits) ToMixed() Visits {
	out := Visits{Mixed: true, Orders: v.Orders.Clone(), Manual: cloneManual(v.Manual), SelectedOrder: v.SelectedOrder, SelectedManual: v.SelectedManual}
	if out.Manual == nil {
		out.Manual = map[string]ManualVisit{}
	}
	return out
}

// ForMode converts between representations only when the mode demands it.
func (v Visits) ForMode(mode ManualVisitsMode) Visits {
	switch mode {
	case ManualVisitsShow:
		if !v.Mixed {
			return v.ToMixed()
		}
	case ManualVisitsHide:
		if v.Mixed {
			return v.ToAssigned()
		}
	}
	return v
}

func cloneManual(m map[string]ManualVisit) map[string]ManualVisit {
	if m == nil {
		return nil
	}
	out := make(map[string]ManualVisit, len(m))
	for id, mv := range m {
		out[id] = mv
	}
	return out
}
