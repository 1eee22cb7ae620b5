// Package phone defines the endpoint capability a subscriber hands over at
// registration. Implementations live outside the engine; the engine only
// calls them through this interface, never on its own critical-section path.
package phone

// Phone is the callback surface of a subscriber's handset.
type Phone interface {
	// IncomingCall asks the subscriber whether to accept a call from the
	// given number. It may block for as long as the subscriber takes to
	// decide; the engine bounds the wait on its side.
	IncomingCall(from string) bool

	// ConnectionClosed informs the subscriber that its active call with
	// peer has ended, whoever ended it.
	ConnectionClosed(peer string)
}
