package handlers

// HandlerBundle aggregates the HTTP handlers so route registration takes a
// single dependency.
type HandlerBundle struct {
	Confirmation *ConfirmationHandler
	Booking      *BookingHandler
	Assistant    *AssistantHandler
	Prefs        *PrefsHandler
	Menu         *MenuHandler
}
