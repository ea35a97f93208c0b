package interfaces

// -----------------------------------------------------------------------------
// INotifier defines the contract for non-blocking user notices.
// -----------------------------------------------------------------------------

type INotifier interface {

	// -----------------------------------------------------------------------------

	// Notify surfaces a user-visible message. Must never block or fail the caller.
	Notify(message string)
}
