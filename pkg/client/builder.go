package client

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/strandex/strand-go/params"
	"github.com/strandex/strand-go/pkg/txtypes"
)

// OrderBuilder validates and normalizes order requests into canonical order
// transactions. Build is a pure transform: it touches no network and no key
// material, and only reads the clock to resolve expiry sentinels and stamp
// the transaction deadline.
//
// Trigger-price policy: a trigger price on a non-trigger order type is
// rejected, not silently dropped. Dropping it would let a caller believe a
// stop was armed when it was not.
type OrderBuilder struct {
	venue params.Venue
	now   func() time.Time
}

func NewOrderBuilder(venue params.Venue) *OrderBuilder {
	return &OrderBuilder{venue: venue, now: time.Now}
}

// Build validates req and produces an order transaction bound to the given
// account context. The nonce is left unreserved (-1); the submission client
// stamps it under the account sequencer just before signing.
func (b *OrderBuilder) Build(req txtypes.CreateOrderReq, accountIndex int64, apiKeyIndex uint8) (txtypes.OrderTx, error) {
	var zero txtypes.OrderTx

	if !req.Type.Valid() {
		return zero, fmt.Errorf("%w: %d", txtypes.ErrUnknownOrderType, req.Type)
	}
	if !req.TimeInForce.Valid() {
		return zero, fmt.Errorf("%w: %d", txtypes.ErrUnknownTimeInForce, req.TimeInForce)
	}
	if req.BaseAmount <= 0 {
		return zero, fmt.Errorf("%w: %d", txtypes.ErrNonPositiveAmount, req.BaseAmount)
	}
	if req.ClientOrderIndex < 0 {
		return zero, fmt.Errorf("%w: %d", txtypes.ErrNegativeClientIndex, req.ClientOrderIndex)
	}
	if req.Type.RequiresPrice() && req.Price == 0 {
		return zero, fmt.Errorf("%w: order type %s", txtypes.ErrNonPositivePrice, req.Type)
	}
	if req.Type.IsTrigger() && req.TriggerPrice == txtypes.NilTriggerPrice {
		return zero, fmt.Errorf("%w: order type %s", txtypes.ErrMissingTriggerPrice, req.Type)
	}
	if !req.Type.IsTrigger() && req.TriggerPrice != txtypes.NilTriggerPrice {
		return zero, fmt.Errorf("%w: order type %s", txtypes.ErrUnexpectedTriggerPrice, req.Type)
	}
	if req.Type == txtypes.OrderTypeMarket && req.TimeInForce != txtypes.TimeInForceImmediateOrCancel {
		return zero, fmt.Errorf("%w: market orders must be immediate-or-cancel", txtypes.ErrIncompatibleTimeInForce)
	}

	expiry, err := b.resolveExpiry(req)
	if err != nil {
		return zero, err
	}

	tx := txtypes.OrderTx{
		TxHeader: txtypes.TxHeader{
			AccountIndex: accountIndex,
			ApiKeyIndex:  apiKeyIndex,
			ChainID:      b.venue.ChainID,
			Nonce:        -1,
			ExpiredAt:    b.now().Add(b.venue.DefaultTxDeadline).UnixMilli(),
		},
		MarketIndex:      req.MarketIndex,
		ClientOrderIndex: req.ClientOrderIndex,
		BaseAmount:       req.BaseAmount,
		Price:            req.Price,
		IsAsk:            req.IsAsk,
		Type:             req.Type,
		TimeInForce:      req.TimeInForce,
		ReduceOnly:       req.ReduceOnly,
		TriggerPrice:     req.TriggerPrice,
		OrderExpiry:      expiry,
	}
	return tx, nil
}

func (b *OrderBuilder) resolveExpiry(req txtypes.CreateOrderReq) (int64, error) {
	switch {
	case req.OrderExpiry == txtypes.DefaultOrderExpiry:
		return b.now().Add(b.venue.DefaultOrderExpiry).UnixMilli(), nil
	case req.OrderExpiry == txtypes.NilOrderExpiry:
		// only immediate-or-cancel never rests, so only it may skip expiry
		if req.TimeInForce != txtypes.TimeInForceImmediateOrCancel {
			return 0, fmt.Errorf("%w: resting order without expiry", txtypes.ErrBadOrderExpiry)
		}
		return txtypes.NilOrderExpiry, nil
	case req.OrderExpiry < 0:
		return 0, fmt.Errorf("%w: %d", txtypes.ErrBadOrderExpiry, req.OrderExpiry)
	default:
		return req.OrderExpiry, nil
	}
}

// PriceToUnits converts a human decimal price into the venue's fixed-point
// price units for a market quoted with priceDecimals. The conversion must be
// exact: a price finer than the venue's grid is ErrNotRepresentable.
func PriceToUnits(price decimal.Decimal, priceDecimals int32) (uint32, error) {
	if price.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %s", txtypes.ErrNonPositivePrice, price)
	}
	units := price.Shift(priceDecimals)
	if !units.IsInteger() {
		return 0, fmt.Errorf("%w: price %s at %d decimals", ErrNotRepresentable, price, priceDecimals)
	}
	v := units.BigInt()
	if !v.IsUint64() || v.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("%w: price %s", txtypes.ErrValueOverflow, price)
	}
	return uint32(v.Uint64()), nil
}

// AmountToLots converts a human decimal base amount into lots for a market
// sized with sizeDecimals.
func AmountToLots(amount decimal.Decimal, sizeDecimals int32) (int64, error) {
	if amount.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %s", txtypes.ErrNonPositiveAmount, amount)
	}
	lots := amount.Shift(sizeDecimals)
	if !lots.IsInteger() {
		return 0, fmt.Errorf("%w: amount %s at %d decimals", ErrNotRepresentable, amount, sizeDecimals)
	}
	v := lots.BigInt()
	if !v.IsInt64() {
		return 0, fmt.Errorf("%w: amount %s", txtypes.ErrValueOverflow, amount)
	}
	return v.Int64(), nil
}
