package domain

const (
	// DefaultConfirmationRounds bounds confirmation polling when the config
	// leaves it unset.
	DefaultConfirmationRounds uint64 = 4

	// DefaultMaxUploadBytes caps pitch uploads at the HTTP boundary.
	DefaultMaxUploadBytes int64 = 10 << 20

	// EventChannel is the redis channel confirmed registrations are
	// published on.
	EventChannel = "registrations"
)

// Attempt states, in the order a successful registration passes through
// them. Terminal failure states are represented by the error taxonomy in
// errors.go.
type AttemptState int

const (
	StateInitiated AttemptState = iota
	StateContentStored
	StateTxPrepared
	StateTxSubmitted
	StateConfirmed
	StateRecorded
)

func (s AttemptState) String() string {
	switch s {
	case StateInitiated:
		return "initiated"
	case StateContentStored:
		return "content_stored"
	case StateTxPrepared:
		return "tx_prepared"
	case StateTxSubmitted:
		return "tx_submitted"
	case StateConfirmed:
		return "confirmed"
	case StateRecorded:
		return "recorded"
	default:
		return "unknown"
	}
}
