package txtypes

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// TxHeader is the account context shared by every transaction kind. A header
// is complete once the submission client has reserved a nonce; until then
// Nonce stays at -1.
type TxHeader struct {
	AccountIndex int64  `json:"accountIndex"`
	ApiKeyIndex  uint8  `json:"apiKeyIndex"`
	ChainID      uint32 `json:"chainId"`
	Nonce        int64  `json:"nonce"`
	ExpiredAt    int64  `json:"expiredAt"` // unix ms deadline for venue inclusion
}

func (h *TxHeader) checkRanges() error {
	if h.AccountIndex < 0 {
		return fmt.Errorf("%w: account index %d", ErrValueOverflow, h.AccountIndex)
	}
	if h.Nonce < 0 {
		return ErrNonceUnset
	}
	if h.ExpiredAt < 0 {
		return fmt.Errorf("%w: expiredAt %d", ErrValueOverflow, h.ExpiredAt)
	}
	return nil
}

// Tx is a canonical, signable transaction payload.
type Tx interface {
	TxType() TxType
	Header() TxHeader
	// Digest returns the 32-byte canonical signing digest. Identical logical
	// content always yields an identical digest.
	Digest() ([32]byte, error)
}

// OrderTx is the canonical encoding of one order plus account context and,
// when grouped, its group linkage.
type OrderTx struct {
	TxHeader

	MarketIndex      uint8        `json:"marketIndex"`
	ClientOrderIndex int64        `json:"clientOrderIndex"`
	BaseAmount       int64        `json:"baseAmount"`
	Price            uint32       `json:"price"`
	IsAsk            bool         `json:"isAsk"`
	Type             OrderType    `json:"type"`
	TimeInForce      TimeInForce  `json:"timeInForce"`
	ReduceOnly       bool         `json:"reduceOnly"`
	TriggerPrice     uint32       `json:"triggerPrice"`
	OrderExpiry      int64        `json:"orderExpiry"`

	// Group linkage. GroupID == 0 means ungrouped; GroupPos is the member's
	// position within the group, meaningful for one-triggers-the-other.
	GroupID  uint64       `json:"groupId,omitempty"`
	GroupPos uint8        `json:"groupPos,omitempty"`
	Grouping GroupingType `json:"grouping,omitempty"`
}

func (tx *OrderTx) TxType() TxType   { return TxTypeCreateOrder }
func (tx *OrderTx) Header() TxHeader { return tx.TxHeader }

// CancelOrderTx cancels one resting order.
type CancelOrderTx struct {
	TxHeader

	MarketIndex uint8 `json:"marketIndex"`
	OrderIndex  int64 `json:"orderIndex"`
}

func (tx *CancelOrderTx) TxType() TxType   { return TxTypeCancelOrder }
func (tx *CancelOrderTx) Header() TxHeader { return tx.TxHeader }

// CancelAllOrdersTx cancels every resting order, immediately or at Time.
type CancelAllOrdersTx struct {
	TxHeader

	Time int64 `json:"time"`
}

func (tx *CancelAllOrdersTx) TxType() TxType   { return TxTypeCancelAllOrders }
func (tx *CancelAllOrdersTx) Header() TxHeader { return tx.TxHeader }

// ModifyOrderTx amends a resting order.
type ModifyOrderTx struct {
	TxHeader

	MarketIndex  uint8  `json:"marketIndex"`
	OrderIndex   int64  `json:"orderIndex"`
	BaseAmount   int64  `json:"baseAmount"`
	Price        uint32 `json:"price"`
	TriggerPrice uint32 `json:"triggerPrice"`
}

func (tx *ModifyOrderTx) TxType() TxType   { return TxTypeModifyOrder }
func (tx *ModifyOrderTx) Header() TxHeader { return tx.TxHeader }

// OrderGroup is a set of atomically-linked order transactions sharing one
// group id. Member order is preserved from the caller's input: position 0 is
// the primary leg where the grouping distinguishes legs.
type OrderGroup struct {
	ID       uint64       `json:"id"`
	Grouping GroupingType `json:"grouping"`
	Members  []OrderTx    `json:"members"`
}

// SignedTx is an immutable signed transaction: the canonical payload, a
// signature over its digest, and the public identifier of the signing key.
type SignedTx struct {
	Type      TxType
	Payload   Tx
	Signature []byte
	PubKeyID  string
}

// Hash returns the client-side transaction hash: keccak256 over the canonical
// digest and the signature. The venue reports the same value on acceptance.
func (s *SignedTx) Hash() (string, error) {
	digest, err := s.Payload.Digest()
	if err != nil {
		return "", err
	}
	sum := crypto.Keccak256(digest[:], s.Signature)
	return hexutil.Encode(sum), nil
}

// SignedGroup is an ordered sequence of signed member transactions sharing
// one group id. Member positions match the originating OrderGroup.
type SignedGroup struct {
	GroupID  uint64
	Grouping GroupingType
	Txs      []*SignedTx
}

type signedTxJSON struct {
	Type      TxType          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
	PubKeyID  string          `json:"pubKeyId"`
}

func (s *SignedTx) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(s.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(signedTxJSON{
		Type:      s.Type,
		Payload:   payload,
		Signature: hexutil.Encode(s.Signature),
		PubKeyID:  s.PubKeyID,
	})
}

// DecodeSignedTx parses a signed transaction envelope, dispatching the
// payload on the declared transaction type.
func DecodeSignedTx(data []byte) (*SignedTx, error) {
	var env signedTxJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signed tx: %w", err)
	}

	var payload Tx
	switch env.Type {
	case TxTypeCreateOrder:
		payload = new(OrderTx)
	case TxTypeCancelOrder:
		payload = new(CancelOrderTx)
	case TxTypeCancelAllOrders:
		payload = new(CancelAllOrdersTx)
	case TxTypeModifyOrder:
		payload = new(ModifyOrderTx)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownTxType, env.Type)
	}
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s payload: %w", env.Type, err)
	}

	sig, err := hexutil.Decode(env.Signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding: %w", err)
	}

	return &SignedTx{
		Type:      env.Type,
		Payload:   payload,
		Signature: sig,
		PubKeyID:  env.PubKeyID,
	}, nil
}
