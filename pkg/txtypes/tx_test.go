package txtypes

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// TestSignedTxEnvelopeRoundTrip verifies that a signed order survives the
// JSON wire envelope with every field intact.
func TestSignedTxEnvelopeRoundTrip(t *testing.T) {
	order := sampleOrder()
	order.GroupID = 42
	order.GroupPos = 1
	order.Grouping = GroupingOneCancelsTheOther

	signed := &SignedTx{
		Type:      TxTypeCreateOrder,
		Payload:   &order,
		Signature: []byte{0xde, 0xad, 0xbe, 0xef},
		PubKeyID:  "0xAA00000000000000000000000000000000000000",
	}

	raw, err := json.Marshal(signed)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	decoded, err := DecodeSignedTx(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.Type != TxTypeCreateOrder {
		t.Errorf("wrong type: got %d, want %d", decoded.Type, TxTypeCreateOrder)
	}
	got, ok := decoded.Payload.(*OrderTx)
	if !ok {
		t.Fatalf("payload decoded as %T, want *OrderTx", decoded.Payload)
	}
	if *got != order {
		t.Errorf("payload mismatch:\n got %+v\nwant %+v", *got, order)
	}
	if string(decoded.Signature) != string(signed.Signature) {
		t.Errorf("signature mismatch: got %x, want %x", decoded.Signature, signed.Signature)
	}
	if decoded.PubKeyID != signed.PubKeyID {
		t.Errorf("pubKeyId mismatch: got %s, want %s", decoded.PubKeyID, signed.PubKeyID)
	}
}

func TestDecodeSignedTxDispatch(t *testing.T) {
	hdr := TxHeader{AccountIndex: 1, ChainID: 300, Nonce: 5, ExpiredAt: 1}
	cases := []struct {
		tx   Tx
		want TxType
	}{
		{&CancelOrderTx{TxHeader: hdr, MarketIndex: 0, OrderIndex: 3}, TxTypeCancelOrder},
		{&CancelAllOrdersTx{TxHeader: hdr, Time: 0}, TxTypeCancelAllOrders},
		{&ModifyOrderTx{TxHeader: hdr, MarketIndex: 0, OrderIndex: 3, BaseAmount: 10, Price: 100}, TxTypeModifyOrder},
	}

	for _, tc := range cases {
		raw, err := json.Marshal(&SignedTx{Type: tc.tx.TxType(), Payload: tc.tx, Signature: []byte{1}})
		if err != nil {
			t.Fatalf("%s: marshal failed: %v", tc.want, err)
		}
		decoded, err := DecodeSignedTx(raw)
		if err != nil {
			t.Fatalf("%s: decode failed: %v", tc.want, err)
		}
		if decoded.Type != tc.want {
			t.Errorf("wrong type: got %d, want %d", decoded.Type, tc.want)
		}
		if decoded.Payload.Header() != hdr {
			t.Errorf("%s: header mismatch: got %+v", tc.want, decoded.Payload.Header())
		}
	}
}

func TestDecodeSignedTxUnknownType(t *testing.T) {
	raw := []byte(`{"type":99,"payload":{},"signature":"0x01"}`)
	if _, err := DecodeSignedTx(raw); !errors.Is(err, ErrUnknownTxType) {
		t.Errorf("expected ErrUnknownTxType, got %v", err)
	}
}

// TestSignedTxHashStable verifies the client-side hash is a pure function of
// digest and signature.
func TestSignedTxHashStable(t *testing.T) {
	order := sampleOrder()
	signed := &SignedTx{Type: TxTypeCreateOrder, Payload: &order, Signature: []byte{1, 2, 3}}

	h1, err := signed.Hash()
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	h2, err := signed.Hash()
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hash not stable: %s vs %s", h1, h2)
	}
	if !strings.HasPrefix(h1, "0x") || len(h1) != 66 {
		t.Errorf("unexpected hash format: %s", h1)
	}

	signed.Signature = []byte{4, 5, 6}
	h3, err := signed.Hash()
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if h1 == h3 {
		t.Error("hash ignores signature")
	}
}

func TestEnumValidity(t *testing.T) {
	if OrderType(7).Valid() {
		t.Error("order type 7 should be invalid")
	}
	if TimeInForce(3).Valid() {
		t.Error("time in force 3 should be invalid")
	}
	if GroupingType(3).Valid() {
		t.Error("grouping 3 should be invalid")
	}
	if !OrderTypeStopLossLimit.IsTrigger() || OrderTypeLimit.IsTrigger() {
		t.Error("trigger classification wrong")
	}
	if !OrderTypeLimit.RequiresPrice() || OrderTypeMarket.RequiresPrice() {
		t.Error("price requirement classification wrong")
	}
	if GroupingOneCancelsTheOther.Arity() != 2 || GroupingOneTriggersTheOther.Arity() != 2 {
		t.Error("paired groupings must have arity 2")
	}
	if GroupingNone.Arity() != 0 {
		t.Error("ungrouped arity must be 0")
	}
}
