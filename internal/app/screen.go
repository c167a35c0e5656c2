package app

import (
	"fmt"
	"time"

	"visits/internal/model"
	"visits/internal/order"
)

// Screen is the renderable projection of the flow state. ToScreen is total:
// every reachable state maps to exactly one screen, with permission and SDK
// problems overriding the main screen as blockers. Nothing here is stored;
// the projection is recomputed from the flow state on every change, so a
// fixed permission un-blocks on the next snapshot without a transition.

type ScreenKind string

const (
	ScreenLoading            ScreenKind = "loading"
	ScreenBlocker            ScreenKind = "blocker"
	ScreenSignUpForm         ScreenKind = "signUpForm"
	ScreenSignUpQuestions    ScreenKind = "signUpQuestions"
	ScreenSignUpVerification ScreenKind = "signUpVerification"
	ScreenSignIn             ScreenKind = "signIn"
	ScreenDriverID           ScreenKind = "driverID"
	ScreenMain               ScreenKind = "main"
)

type Screen struct {
	Kind         ScreenKind                `json:"kind"`
	Blocker      *BlockerScreen            `json:"blocker,omitempty"`
	SignUpForm   *SignUpFormScreen         `json:"signUpForm,omitempty"`
	Questions    *SignUpQuestionsScreen    `json:"signUpQuestions,omitempty"`
	Verification *SignUpVerificationScreen `json:"signUpVerification,omitempty"`
	SignIn       *SignInScreen             `json:"signIn,omitempty"`
	DriverID     *DriverIDScreen           `json:"driverID,omitempty"`
	Main         *MainScreen               `json:"main,omitempty"`
}

type BlockerKind string

const (
	BlockerNoMotionServices      BlockerKind = "noMotionServices"
	BlockerLocationDisabled      BlockerKind = "locationDisabled"
	BlockerLocationDenied        BlockerKind = "locationDenied"
	BlockerLocationRestricted    BlockerKind = "locationRestricted"
	BlockerLocationNotDetermined BlockerKind = "locationNotDetermined"
	BlockerLocationReduced       BlockerKind = "locationReduced"
	BlockerMotionDisabled        BlockerKind = "motionDisabled"
	BlockerMotionDenied          BlockerKind = "motionDenied"
	BlockerMotionNotDetermined   BlockerKind = "motionNotDetermined"
	BlockerPushNotShown          BlockerKind = "pushNotShown"
	BlockerDeleted               BlockerKind = "deleted"
	BlockerInvalidPublishableKey BlockerKind = "invalidPublishableKey"
	BlockerStopped               BlockerKind = "stopped"
)

type BlockerScreen struct {
	Kind     BlockerKind `json:"kind"`
	DeviceID string      `json:"deviceId,omitempty"`
}

type SignUpFormScreen struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Focus     FormFocus `json:"focus,omitempty"`
	FormValid bool      `json:"formValid"`
	Error     string    `json:"error,omitempty"`
}

type SignUpQuestionsScreen struct {
	BusinessManages string `json:"businessManages,omitempty"`
	ManagesFor      string `json:"managesFor,omitempty"`
	SigningUp       bool   `json:"signingUp,omitempty"`
	Error           string `json:"error,omitempty"`
}

type SignUpVerificationScreen struct {
	Digits    string `json:"digits"`
	Focused   bool   `json:"focused"`
	Verifying bool   `json:"verifying,omitempty"`
	Error     string `json:"error,omitempty"`
}

type SignInScreen struct {
	Email         string    `json:"email"`
	Password      string    `json:"password"`
	Focus         FormFocus `json:"focus,omitempty"`
	Error         string    `json:"error,omitempty"`
	SigningIn     bool      `json:"signingIn,omitempty"`
	ButtonEnabled bool      `json:"buttonEnabled"`
}

type DriverIDScreen struct {
	DriverID       string `json:"driverId"`
	ButtonDisabled bool   `json:"buttonDisabled"`
}

// MainScreen is the tab bar plus whichever pane the tab shows. Order is set
// instead of Orders when a single order is open.
type MainScreen struct {
	Tab            model.TabSelection `json:"tab"`
	Order          *OrderScreen       `json:"order,omitempty"`
	Orders         *OrderListScreen   `json:"orders,omitempty"`
	Map            []MapOrder         `json:"map"`
	Places         []model.Place      `json:"places,omitempty"`
	History        *model.History     `json:"history,omitempty"`
	DriverID       string             `json:"driverId"`
	DeviceID       string             `json:"deviceId"`
	PublishableKey string             `json:"publishableKey"`
}

type OrderHeader struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type OrderListScreen struct {
	Pending    []OrderHeader `json:"pending"`
	Visited    []OrderHeader `json:"visited"`
	Completed  []OrderHeader `json:"completed"`
	Canceled   []OrderHeader `json:"canceled"`
	Refreshing bool          `json:"refreshing"`
}

type OrderScreen struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Note             string           `json:"note,omitempty"`
	NoteFieldFocused bool             `json:"noteFieldFocused,omitempty"`
	Coordinate       model.Coordinate `json:"coordinate"`
	Address          string           `json:"address,omitempty"`
	Metadata         []MetadataRow    `json:"metadata,omitempty"`
	Status           string           `json:"status"`
}

type MetadataRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type MapOrderStatus string

const (
	MapOrderPending   MapOrderStatus = "pending"
	MapOrderVisited   MapOrderStatus = "visited"
	MapOrderCompleted MapOrderStatus = "completed"
	MapOrderCanceled  MapOrderStatus = "canceled"
)

type MapOrder struct {
	ID         string           `json:"id"`
	Coordinate model.Coordinate `json:"coordinate"`
	Status     MapOrderStatus   `json:"status"`
}

// ToScreen projects the flow state to its screen.
func ToScreen(s State) Screen {
	switch s.Kind {
	case FlowCreated, FlowLaunching, FlowFirstRun:
		return Screen{Kind: ScreenLoading}
	case FlowNoMotionServices:
		return Screen{Kind: ScreenBlocker, Blocker: &BlockerScreen{Kind: BlockerNoMotionServices}}
	case FlowSignUp:
		return signUpScreen(*s.SignUp)
	case FlowSignIn:
		f := *s.SignIn
		return Screen{Kind: ScreenSignIn, SignIn: &SignInScreen{
			Email:         f.Email,
			Password:      f.Password,
			Focus:         f.Focus,
			Error:         f.Error,
			SigningIn:     f.SigningIn,
			ButtonEnabled: f.Email != "" && f.Password != "" && !f.SigningIn,
		}}
	case FlowDriverID:
		f := *s.DriverID
		return Screen{Kind: ScreenDriverID, DriverID: &DriverIDScreen{
			DriverID:       string(f.DriverID),
			ButtonDisabled: f.DriverID == "",
		}}
	case FlowMain:
		return mainScreen(*s.Main)
	}
	return Screen{Kind: ScreenLoading}
}

func signUpScreen(f SignUpFlow) Screen {
	switch f.Stage {
	case StageQuestions:
		return Screen{Kind: ScreenSignUpQuestions, Questions: &SignUpQuestionsScreen{
			BusinessManages: f.BusinessManages,
			ManagesFor:      f.ManagesFor,
			SigningUp:       f.SigningUp,
			Error:           f.Error,
		}}
	case StageVerification:
		return Screen{Kind: ScreenSignUpVerification, Verification: &SignUpVerificationScreen{
			Digits:    f.Verification.Digits,
			Focused:   f.Verification.Focused,
			Verifying: f.Verification.Verifying,
			Error:     f.Verification.Error,
		}}
	default:
		return Screen{Kind: ScreenSignUpForm, SignUpForm: &SignUpFormScreen{
			Name:      f.BusinessName,
			Email:     f.Email,
			Password:  f.Password,
			Focus:     f.Focus,
			FormValid: f.FormValid(),
			Error:     f.Error,
		}}
	}
}

// mainScreen applies the blocker override table before rendering the main
// panes. Order matters: location problems outrank motion problems outrank
// the push dialog outrank device-level states.
func mainScreen(m MainFlow) Screen {
	deviceID := string(m.DeviceID())
	if b, ok := blockerFor(m); ok {
		return Screen{Kind: ScreenBlocker, Blocker: &BlockerScreen{Kind: b, DeviceID: deviceID}}
	}

	out := MainScreen{
		Tab:            m.Tab,
		Map:            mapOrders(m.Visits),
		Places:         m.Places,
		History:        m.History,
		DriverID:       string(m.DriverID),
		DeviceID:       deviceID,
		PublishableKey: string(m.PublishableKey),
	}
	if sel := m.Visits.SelectedOrder; sel != nil {
		o := orderScreen(*sel)
		out.Order = &o
	} else {
		out.Orders = orderList(m)
	}
	return Screen{Kind: ScreenMain, Main: &out}
}

func blockerFor(m MainFlow) (BlockerKind, bool) {
	p := m.Permissions
	switch {
	case p.Location == model.PermissionDisabled:
		return BlockerLocationDisabled, true
	case p.Location == model.PermissionDenied:
		return BlockerLocationDenied, true
	case p.Location == model.PermissionRestricted:
		return BlockerLocationRestricted, true
	case p.Location == model.PermissionNotDetermined:
		return BlockerLocationNotDetermined, true
	case p.LocationAccuracy == model.AccuracyReduced:
		return BlockerLocationReduced, true
	case p.Motion == model.PermissionDisabled:
		return BlockerMotionDisabled, true
	case p.Motion == model.PermissionDenied:
		return BlockerMotionDenied, true
	case p.Motion == model.PermissionNotDetermined:
		return BlockerMotionNotDetermined, true
	case m.PushStatus == model.PushDialogNotShown || m.PushStatus == model.PushDialogWaitingForAction:
		return BlockerPushNotShown, true
	case m.SDK.Tracking == model.TrackingDeleted:
		return BlockerDeleted, true
	case m.SDK.Tracking == model.TrackingInvalidKey:
		return BlockerInvalidPublishableKey, true
	case m.SDK.Tracking == model.TrackingStopped:
		return BlockerStopped, true
	}
	return "", false
}

func orderList(m MainFlow) *OrderListScreen {
	parts := order.Partition(m.Visits.Orders)
	return &OrderListScreen{
		Pending:    headers(parts.Pending),
		Visited:    headers(parts.Visited),
		Completed:  headers(parts.Completed),
		Canceled:   headers(parts.Canceled),
		Refreshing: m.Requests.Orders,
	}
}

func headers(orders []model.Order) []OrderHeader {
	out := make([]OrderHeader, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderHeader{ID: o.ID, Title: OrderTitle(o)})
	}
	return out
}

func mapOrders(v model.Visits) []MapOrder {
	all := v.AllOrders().List()
	out := make([]MapOrder, 0, len(all))
	for _, o := range all {
		out = append(out, MapOrder{ID: o.ID, Coordinate: o.Location, Status: mapStatus(o.Geotag)})
	}
	return out
}

func mapStatus(g model.Geotag) MapOrderStatus {
	switch order.Categorize(g) {
	case order.CategoryVisited:
		return MapOrderVisited
	case order.CategoryCompleted:
		return MapOrderCompleted
	case order.CategoryCanceled:
		return MapOrderCanceled
	default:
		return MapOrderPending
	}
}

func orderScreen(o model.Order) OrderScreen {
	rows := make([]MetadataRow, 0, len(o.Metadata))
	for _, k := range o.MetadataKeys() {
		rows = append(rows, MetadataRow{Key: k, Value: o.Metadata[k]})
	}
	return OrderScreen{
		ID:               o.ID,
		Title:            OrderTitle(o),
		Note:             o.Note,
		NoteFieldFocused: o.NoteFieldFocused,
		Coordinate:       o.Location,
		Address:          o.Address.Best(),
		Metadata:         rows,
		Status:           statusString(o.Geotag),
	}
}

// OrderTitle is the list/header title: the street if known, the full address
// otherwise, or the creation time as a last resort.
func OrderTitle(o model.Order) string {
	if o.Address.Street != "" {
		return o.Address.Street
	}
	if o.Address.Full != "" {
		return o.Address.Full
	}
	return "Order @ " + clock(o.CreatedAt)
}

func statusString(g model.Geotag) string {
	switch g.Kind {
	case model.GeotagPickedUp:
		return "Picked Up"
	case model.GeotagEntered:
		return "Visited: " + clock(g.Visit.EnteredAt)
	case model.GeotagVisited:
		return "Visited: " + spanString(*g.Visit)
	case model.GeotagCheckedOut:
		if g.Visit != nil {
			return fmt.Sprintf("Completed at: %s\nVisited: %s", clock(g.At), visitString(*g.Visit))
		}
		return "Completed at: " + clock(g.At)
	case model.GeotagCancelled:
		if g.Visit != nil {
			return fmt.Sprintf("Canceled at: %s\nVisited: %s", clock(g.At), visitString(*g.Visit))
		}
		return "Canceled at: " + clock(g.At)
	default:
		return "Pending"
	}
}

func visitString(v model.VisitSpan) string {
	if v.Exited() {
		return spanString(v)
	}
	return clock(v.EnteredAt)
}

func spanString(v model.VisitSpan) string {
	return clock(v.EnteredAt) + " — " + clock(v.ExitedAt)
}

// clock renders a timestamp the way the order screens show them ("h:mm a").
func clock(t time.Time) string { return t.Format("3:04 PM") }
