package txtypes

// Enum values below are part of the signed wire encoding. They must stay
// stable across releases: renumbering an order type invalidates every
// signature produced by older clients.

// TxType identifies the transaction kind inside a signed envelope.
type TxType uint8

const (
	TxTypeCreateOrder         TxType = 14
	TxTypeCancelOrder         TxType = 15
	TxTypeCancelAllOrders     TxType = 16
	TxTypeModifyOrder         TxType = 17
	TxTypeCreateGroupedOrders TxType = 18
)

func (t TxType) Valid() bool {
	switch t {
	case TxTypeCreateOrder, TxTypeCancelOrder, TxTypeCancelAllOrders,
		TxTypeModifyOrder, TxTypeCreateGroupedOrders:
		return true
	}
	return false
}

func (t TxType) String() string {
	switch t {
	case TxTypeCreateOrder:
		return "createOrder"
	case TxTypeCancelOrder:
		return "cancelOrder"
	case TxTypeCancelAllOrders:
		return "cancelAllOrders"
	case TxTypeModifyOrder:
		return "modifyOrder"
	case TxTypeCreateGroupedOrders:
		return "createGroupedOrders"
	default:
		return "unknown"
	}
}

// OrderType enumerates how an order executes.
type OrderType uint8

const (
	OrderTypeLimit           OrderType = 0
	OrderTypeMarket          OrderType = 1
	OrderTypeStopLoss        OrderType = 2
	OrderTypeStopLossLimit   OrderType = 3
	OrderTypeTakeProfit      OrderType = 4
	OrderTypeTakeProfitLimit OrderType = 5
	OrderTypeTWAP            OrderType = 6
)

func (t OrderType) Valid() bool {
	return t <= OrderTypeTWAP
}

// IsTrigger reports whether the order only activates once its trigger price
// trades. Trigger orders require TriggerPrice > 0; all others must leave it
// at NilTriggerPrice.
func (t OrderType) IsTrigger() bool {
	switch t {
	case OrderTypeStopLoss, OrderTypeStopLossLimit, OrderTypeTakeProfit, OrderTypeTakeProfitLimit:
		return true
	}
	return false
}

// RequiresPrice reports whether the order carries a limit price that must be
// positive. Market and TWAP orders may use Price as an optional worst-price
// bound, so zero is allowed there.
func (t OrderType) RequiresPrice() bool {
	switch t {
	case OrderTypeLimit, OrderTypeStopLossLimit, OrderTypeTakeProfitLimit:
		return true
	}
	return false
}

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "limit"
	case OrderTypeMarket:
		return "market"
	case OrderTypeStopLoss:
		return "stopLoss"
	case OrderTypeStopLossLimit:
		return "stopLossLimit"
	case OrderTypeTakeProfit:
		return "takeProfit"
	case OrderTypeTakeProfitLimit:
		return "takeProfitLimit"
	case OrderTypeTWAP:
		return "twap"
	default:
		return "unknown"
	}
}

// TimeInForce enumerates how long an order stays on the book.
type TimeInForce uint8

const (
	TimeInForceImmediateOrCancel TimeInForce = 0
	TimeInForceGoodTillTime      TimeInForce = 1
	TimeInForcePostOnly          TimeInForce = 2
)

func (t TimeInForce) Valid() bool {
	return t <= TimeInForcePostOnly
}

func (t TimeInForce) String() string {
	switch t {
	case TimeInForceImmediateOrCancel:
		return "immediateOrCancel"
	case TimeInForceGoodTillTime:
		return "goodTillTime"
	case TimeInForcePostOnly:
		return "postOnly"
	default:
		return "unknown"
	}
}

// GroupingType enumerates the linkage semantics of an order group.
type GroupingType uint8

const (
	GroupingNone GroupingType = 0
	// GroupingOneCancelsTheOther: filling or triggering one member cancels
	// the others.
	GroupingOneCancelsTheOther GroupingType = 1
	// GroupingOneTriggersTheOther: the first member is the primary leg; the
	// second only enters the book once the primary fills.
	GroupingOneTriggersTheOther GroupingType = 2
)

func (g GroupingType) Valid() bool {
	return g <= GroupingOneTriggersTheOther
}

// Arity returns the exact member count the venue accepts for this grouping.
// Zero means the grouping does not form groups at all.
func (g GroupingType) Arity() int {
	switch g {
	case GroupingOneCancelsTheOther, GroupingOneTriggersTheOther:
		return 2
	default:
		return 0
	}
}

func (g GroupingType) String() string {
	switch g {
	case GroupingNone:
		return "none"
	case GroupingOneCancelsTheOther:
		return "oneCancelsTheOther"
	case GroupingOneTriggersTheOther:
		return "oneTriggersTheOther"
	default:
		return "unknown"
	}
}

const (
	// NilTriggerPrice marks a non-trigger order.
	NilTriggerPrice uint32 = 0

	// NilOrderExpiry keeps an order un-expiring (only valid for
	// immediate-or-cancel, which never rests).
	NilOrderExpiry int64 = 0

	// DefaultOrderExpiry asks the builder to substitute the venue default
	// resting time (28 days).
	DefaultOrderExpiry int64 = -1
)
