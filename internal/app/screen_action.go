package app

import "visits/internal/model"

// ScreenAction is a presentation-level action as a client submits it: a type
// tag plus an optional value (field text, order id, tab name, digit).
type ScreenAction struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// FromScreenAction maps a presentation action to a flow action. The mapping
// is partial: only user-originated actions pass through. Lifecycle, SDK, and
// network-completion actions are internal and cannot be injected this way.
func FromScreenAction(a ScreenAction) (Action, bool) {
	switch a.Type {
	case "focusBusinessName":
		return FocusBusinessName{}, true
	case "focusEmail":
		return FocusEmail{}, true
	case "focusPassword":
		return FocusPassword{}, true
	case "dismissFocus":
		return DismissFocus{}, true
	case "businessNameChanged":
		return BusinessNameChanged{Value: a.Value}, true
	case "emailChanged":
		return EmailChanged{Email: a.Value}, true
	case "passwordChanged":
		return PasswordChanged{Password: a.Value}, true
	case "completeSignUpForm":
		return CompleteSignUpForm{}, true
	case "goToSignUp":
		return GoToSignUp{}, true
	case "goToSignIn":
		return GoToSignIn{}, true
	case "businessManagesChanged":
		return BusinessManagesChanged{Value: a.Value}, true
	case "managesForChanged":
		return ManagesForChanged{Value: a.Value}, true
	case "submitSignUp":
		return SubmitSignUp{}, true
	case "cancelSignUp":
		return CancelSignUp{}, true
	case "verificationDigitEntered":
		if len(a.Value) != 1 {
			return nil, false
		}
		return VerificationDigitEntered{Digit: a.Value[0]}, true
	case "deleteVerificationDigit":
		return DeleteVerificationDigit{}, true
	case "focusVerification":
		return FocusVerification{}, true
	case "resendVerificationCode":
		return ResendVerificationCode{}, true
	case "submitSignIn":
		return SubmitSignIn{}, true
	case "cancelSignIn":
		return CancelSignIn{}, true
	case "driverIDChanged":
		return DriverIDChanged{Value: a.Value}, true
	case "submitDriverID":
		return SubmitDriverID{}, true
	case "selectOrder":
		if a.Value == "" {
			return nil, false
		}
		return SelectOrder{ID: a.Value}, true
	case "deselectOrder":
		return DeselectOrder{}, true
	case "pickUpOrder":
		return PickUpOrder{}, true
	case "checkOutOrder":
		return CheckOutOrder{}, true
	case "cancelOrder":
		return CancelOrder{}, true
	case "focusOrderNote":
		return FocusOrderNote{}, true
	case "orderNoteChanged":
		return OrderNoteChanged{Note: a.Value}, true
	case "switchTab":
		tab, ok := model.ParseTab(a.Value)
		if !ok {
			return nil, false
		}
		return SwitchTab{Tab: tab}, true
	case "updateOrders":
		return UpdateOrders{}, true
	case "updatePlaces":
		return UpdatePlaces{}, true
	case "startTracking":
		return StartTracking{}, true
	case "stopTracking":
		return StopTracking{}, true
	case "openSettings":
		return OpenSettings{}, true
	case "requestLocationPermissions":
		return RequestLocationPermissions{}, true
	case "requestMotionPermissions":
		return RequestMotionPermissions{}, true
	case "requestPushAuthorization":
		return RequestPushAuthorization{}, true
	case "pushDialogCompleted":
		return PushDialogCompleted{}, true
	case "willEnterForeground":
		return WillEnterForeground{}, true
	case "receivedPushNotification":
		return ReceivedPushNotification{}, true
	}
	return nil, false
}
