package txtypes

import "errors"

// Validation errors are detected locally, before any key material or network
// is touched. They are never retried; the caller fixes the request.
var (
	ErrUnknownTxType      = errors.New("unknown transaction type")
	ErrUnknownOrderType   = errors.New("unknown order type")
	ErrUnknownTimeInForce = errors.New("unknown time in force")
	ErrUnknownGrouping    = errors.New("unknown grouping type")

	ErrNonPositiveAmount       = errors.New("base amount must be positive")
	ErrNonPositivePrice        = errors.New("price must be positive")
	ErrNegativeClientIndex     = errors.New("client order index must not be negative")
	ErrNegativeOrderIndex      = errors.New("order index must not be negative")
	ErrMissingTriggerPrice     = errors.New("trigger order requires a trigger price")
	ErrUnexpectedTriggerPrice  = errors.New("trigger price set on non-trigger order type")
	ErrBadOrderExpiry          = errors.New("invalid order expiry")
	ErrIncompatibleTimeInForce = errors.New("time in force incompatible with order type")
	ErrAlreadyGrouped          = errors.New("order already belongs to a group")

	ErrInvalidGroupArity         = errors.New("invalid group arity")
	ErrCrossAccountGroup         = errors.New("group members reference different accounts")
	ErrDuplicateClientOrderIndex = errors.New("duplicate client order index in batch")
)

// Signing errors. ErrValueOverflow covers any field that does not fit its
// fixed-width wire representation at canonical-encoding time.
var (
	ErrValueOverflow = errors.New("field overflows canonical encoding")
	ErrNonceUnset    = errors.New("transaction nonce not reserved")
)
