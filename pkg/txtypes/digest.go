package txtypes

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Canonical signing digests use EIP-712 typed data. The type tables below fix
// the field order and field widths, and typed-data encoding carries no
// floating point, so identical logical content always hashes to the same
// digest. The transaction's ChainID enters through the domain separator,
// which also prevents cross-deployment replay.

const (
	domainName    = "Strand"
	domainVersion = "1"
)

var domainType = []apitypes.Type{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

var headerFields = []apitypes.Type{
	{Name: "accountIndex", Type: "uint64"},
	{Name: "apiKeyIndex", Type: "uint8"},
	{Name: "nonce", Type: "uint64"},
	{Name: "expiredAt", Type: "uint64"},
}

func domain(chainID uint32) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              domainName,
		Version:           domainVersion,
		ChainId:           (*math.HexOrDecimal256)(big.NewInt(int64(chainID))),
		VerifyingContract: (common.Address{}).Hex(), // off-chain signing
	}
}

func (h *TxHeader) message() (apitypes.TypedDataMessage, error) {
	if err := h.checkRanges(); err != nil {
		return nil, err
	}
	return apitypes.TypedDataMessage{
		"accountIndex": fmt.Sprintf("%d", h.AccountIndex),
		"apiKeyIndex":  fmt.Sprintf("%d", h.ApiKeyIndex),
		"nonce":        fmt.Sprintf("%d", h.Nonce),
		"expiredAt":    fmt.Sprintf("%d", h.ExpiredAt),
	}, nil
}

func boolWord(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// hashTypedData computes keccak256("\x19\x01" || domainSeparator || structHash).
func hashTypedData(chainID uint32, primary string, fields []apitypes.Type, msg apitypes.TypedDataMessage) ([32]byte, error) {
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": domainType,
			primary:        fields,
		},
		PrimaryType: primary,
		Domain:      domain(chainID),
		Message:     msg,
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to hash domain: %w", err)
	}
	structHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return [32]byte{}, fmt.Errorf("failed to hash message: %w", err)
	}

	raw := make([]byte, 0, 2+len(domainSeparator)+len(structHash))
	raw = append(raw, 0x19, 0x01)
	raw = append(raw, domainSeparator...)
	raw = append(raw, structHash...)
	return crypto.Keccak256Hash(raw), nil
}

func (tx *OrderTx) Digest() ([32]byte, error) {
	msg, err := tx.TxHeader.message()
	if err != nil {
		return [32]byte{}, err
	}
	if tx.ClientOrderIndex < 0 {
		return [32]byte{}, fmt.Errorf("%w: clientOrderIndex %d", ErrValueOverflow, tx.ClientOrderIndex)
	}
	if tx.BaseAmount < 0 {
		return [32]byte{}, fmt.Errorf("%w: baseAmount %d", ErrValueOverflow, tx.BaseAmount)
	}
	if tx.OrderExpiry < 0 {
		return [32]byte{}, fmt.Errorf("%w: orderExpiry %d", ErrValueOverflow, tx.OrderExpiry)
	}

	fields := append([]apitypes.Type{}, headerFields...)
	fields = append(fields,
		apitypes.Type{Name: "marketIndex", Type: "uint8"},
		apitypes.Type{Name: "clientOrderIndex", Type: "uint64"},
		apitypes.Type{Name: "baseAmount", Type: "uint64"},
		apitypes.Type{Name: "price", Type: "uint32"},
		apitypes.Type{Name: "isAsk", Type: "uint8"},
		apitypes.Type{Name: "orderType", Type: "uint8"},
		apitypes.Type{Name: "timeInForce", Type: "uint8"},
		apitypes.Type{Name: "reduceOnly", Type: "uint8"},
		apitypes.Type{Name: "triggerPrice", Type: "uint32"},
		apitypes.Type{Name: "orderExpiry", Type: "uint64"},
		apitypes.Type{Name: "groupId", Type: "uint64"},
		apitypes.Type{Name: "groupPos", Type: "uint8"},
		apitypes.Type{Name: "grouping", Type: "uint8"},
	)

	msg["marketIndex"] = fmt.Sprintf("%d", tx.MarketIndex)
	msg["clientOrderIndex"] = fmt.Sprintf("%d", tx.ClientOrderIndex)
	msg["baseAmount"] = fmt.Sprintf("%d", tx.BaseAmount)
	msg["price"] = fmt.Sprintf("%d", tx.Price)
	msg["isAsk"] = boolWord(tx.IsAsk)
	msg["orderType"] = fmt.Sprintf("%d", tx.Type)
	msg["timeInForce"] = fmt.Sprintf("%d", tx.TimeInForce)
	msg["reduceOnly"] = boolWord(tx.ReduceOnly)
	msg["triggerPrice"] = fmt.Sprintf("%d", tx.TriggerPrice)
	msg["orderExpiry"] = fmt.Sprintf("%d", tx.OrderExpiry)
	msg["groupId"] = fmt.Sprintf("%d", tx.GroupID)
	msg["groupPos"] = fmt.Sprintf("%d", tx.GroupPos)
	msg["grouping"] = fmt.Sprintf("%d", tx.Grouping)

	return hashTypedData(tx.ChainID, "Order", fields, msg)
}

func (tx *CancelOrderTx) Digest() ([32]byte, error) {
	msg, err := tx.TxHeader.message()
	if err != nil {
		return [32]byte{}, err
	}
	if tx.OrderIndex < 0 {
		return [32]byte{}, fmt.Errorf("%w: orderIndex %d", ErrValueOverflow, tx.OrderIndex)
	}

	fields := append([]apitypes.Type{}, headerFields...)
	fields = append(fields,
		apitypes.Type{Name: "marketIndex", Type: "uint8"},
		apitypes.Type{Name: "orderIndex", Type: "uint64"},
	)
	msg["marketIndex"] = fmt.Sprintf("%d", tx.MarketIndex)
	msg["orderIndex"] = fmt.Sprintf("%d", tx.OrderIndex)

	return hashTypedData(tx.ChainID, "CancelOrder", fields, msg)
}

func (tx *CancelAllOrdersTx) Digest() ([32]byte, error) {
	msg, err := tx.TxHeader.message()
	if err != nil {
		return [32]byte{}, err
	}
	if tx.Time < 0 {
		return [32]byte{}, fmt.Errorf("%w: time %d", ErrValueOverflow, tx.Time)
	}

	fields := append([]apitypes.Type{}, headerFields...)
	fields = append(fields, apitypes.Type{Name: "time", Type: "uint64"})
	msg["time"] = fmt.Sprintf("%d", tx.Time)

	return hashTypedData(tx.ChainID, "CancelAllOrders", fields, msg)
}

func (tx *ModifyOrderTx) Digest() ([32]byte, error) {
	msg, err := tx.TxHeader.message()
	if err != nil {
		return [32]byte{}, err
	}
	if tx.OrderIndex < 0 {
		return [32]byte{}, fmt.Errorf("%w: orderIndex %d", ErrValueOverflow, tx.OrderIndex)
	}
	if tx.BaseAmount < 0 {
		return [32]byte{}, fmt.Errorf("%w: baseAmount %d", ErrValueOverflow, tx.BaseAmount)
	}

	fields := append([]apitypes.Type{}, headerFields...)
	fields = append(fields,
		apitypes.Type{Name: "marketIndex", Type: "uint8"},
		apitypes.Type{Name: "orderIndex", Type: "uint64"},
		apitypes.Type{Name: "baseAmount", Type: "uint64"},
		apitypes.Type{Name: "price", Type: "uint32"},
		apitypes.Type{Name: "triggerPrice", Type: "uint32"},
	)
	msg["marketIndex"] = fmt.Sprintf("%d", tx.MarketIndex)
	msg["orderIndex"] = fmt.Sprintf("%d", tx.OrderIndex)
	msg["baseAmount"] = fmt.Sprintf("%d", tx.BaseAmount)
	msg["price"] = fmt.Sprintf("%d", tx.Price)
	msg["triggerPrice"] = fmt.Sprintf("%d", tx.TriggerPrice)

	return hashTypedData(tx.ChainID, "ModifyOrder", fields, msg)
}

// AuthTokenDigest is the digest signed to mint a venue auth token for the
// given (account, api key) pair with the given unix-second deadline.
func AuthTokenDigest(chainID uint32, accountIndex int64, apiKeyIndex uint8, deadline int64) ([32]byte, error) {
	if accountIndex < 0 || deadline < 0 {
		return [32]byte{}, ErrValueOverflow
	}
	fields := []apitypes.Type{
		{Name: "accountIndex", Type: "uint64"},
		{Name: "apiKeyIndex", Type: "uint8"},
		{Name: "deadline", Type: "uint64"},
	}
	msg := apitypes.TypedDataMessage{
		"accountIndex": fmt.Sprintf("%d", accountIndex),
		"apiKeyIndex":  fmt.Sprintf("%d", apiKeyIndex),
		"deadline":     fmt.Sprintf("%d", deadline),
	}
	return hashTypedData(chainID, "AuthToken", fields, msg)
}
