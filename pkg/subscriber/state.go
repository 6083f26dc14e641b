package subscriber

// State is the subscriber's position in its connect/subscribe/listen cycle.
type State int32

const (
	StateDisconnected State = iota
	StateConnected
	StateSubscribed
	StateListening
	StateReconnecting
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnected:
		return "Connected"
	case StateSubscribed:
		return "Subscribed"
	case StateListening:
		return "Listening"
	case StateReconnecting:
		return "Reconnecting"
	default:
		return "Unknown"
	}
}
