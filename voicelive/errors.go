package voicelive

import "errors"

var (
	// ErrAlreadyOpen is returned by Open when the client already holds a
	// connection. A client is single-shot; reconnection needs a new instance.
	ErrAlreadyOpen = errors.New("voicelive: session already open")

	// ErrNotConnected is returned when an operation needs a live connection
	// and none exists.
	ErrNotConnected = errors.New("voicelive: session is not connected")

	// ErrAvatarAnswerTimeout is returned when no avatar answer event arrives
	// within the negotiation window.
	ErrAvatarAnswerTimeout = errors.New("voicelive: timed out waiting for avatar answer")
)

// ConnectError wraps a failure to establish the Voice Live connection.
type ConnectError struct {
	Cause error
}

func (e *ConnectError) Error() string {
	return "voicelive: connect failed: " + e.Cause.Error()
}

func (e *ConnectError) Unwrap() error {
	return e.Cause
}
