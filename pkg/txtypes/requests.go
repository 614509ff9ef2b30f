package txtypes

// Request structs carry caller intent into the builder. They are ephemeral:
// the builder validates and normalizes them into transactions and the caller
// never sees them again.

// CreateOrderReq describes one order. Prices and amounts are already in the
// venue's fixed-point integer units (see client.PriceToUnits for converting
// human decimals).
type CreateOrderReq struct {
	MarketIndex      uint8
	ClientOrderIndex int64 // caller-chosen correlation id, unique per account+market
	BaseAmount       int64 // lots
	Price            uint32
	IsAsk            bool
	Type             OrderType
	TimeInForce      TimeInForce
	ReduceOnly       bool
	TriggerPrice     uint32 // required iff Type.IsTrigger()
	OrderExpiry      int64  // unix ms; NilOrderExpiry or DefaultOrderExpiry sentinels
}

// CancelOrderReq cancels a single resting order by its order index.
type CancelOrderReq struct {
	MarketIndex uint8
	OrderIndex  int64
}

// CancelAllOrdersReq cancels every resting order for the account.
// Time == 0 cancels immediately; a future unix ms timestamp schedules the
// cancel (dead-man's-switch style).
type CancelAllOrdersReq struct {
	Time int64
}

// ModifyOrderReq amends a resting order in place.
type ModifyOrderReq struct {
	MarketIndex  uint8
	OrderIndex   int64
	BaseAmount   int64
	Price        uint32
	TriggerPrice uint32
}
