package client

// TxState is the submission state machine of one reserved nonce:
//
//	Idle -> NonceReserved -> Sent -> {Confirmed, Rejected, TimedOut}
//
// TimedOut means the outcome is ambiguous: the nonce is possibly consumed and
// must never be reused. The caller resolves it with TxStatus.
type TxState uint8

const (
	StateIdle TxState = iota
	StateNonceReserved
	StateSent
	StateConfirmed
	StateRejected
	StateTimedOut
)

func (s TxState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateNonceReserved:
		return "NonceReserved"
	case StateSent:
		return "Sent"
	case StateConfirmed:
		return "Confirmed"
	case StateRejected:
		return "Rejected"
	case StateTimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// Terminal reports whether the state can no longer change.
func (s TxState) Terminal() bool {
	return s == StateConfirmed || s == StateRejected
}

// TxResult is the typed outcome of an accepted submission.
type TxResult struct {
	TxHash   string
	Nonce    int64
	State    TxState
	GroupID  uint64 // zero when ungrouped
	GroupPos uint8
}
