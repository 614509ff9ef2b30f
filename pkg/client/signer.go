package client

import (
	"fmt"

	"github.com/strandex/strand-go/pkg/crypto"
	"github.com/strandex/strand-go/pkg/txtypes"
)

// TxSigner turns canonical transactions into immutable signed transactions
// using the account's keystore. Signing is synchronous CPU work and never
// mutates its input.
type TxSigner struct {
	ks *crypto.Keystore
}

func NewTxSigner(ks *crypto.Keystore) *TxSigner {
	return &TxSigner{ks: ks}
}

// SignTx signs one transaction with the key in the slot the transaction's
// header references. Fails with crypto.ErrKeyUnavailable / ErrKeyRevoked if
// the slot cannot sign, and with txtypes.ErrValueOverflow if any field falls
// outside its fixed-width wire range.
func (s *TxSigner) SignTx(tx txtypes.Tx) (*txtypes.SignedTx, error) {
	hdr := tx.Header()
	km, err := s.ks.Key(hdr.ApiKeyIndex)
	if err != nil {
		return nil, err
	}

	digest, err := tx.Digest()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s tx: %w", tx.TxType(), err)
	}

	sig, err := km.Sign(digest[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s tx: %w", tx.TxType(), err)
	}

	return &txtypes.SignedTx{
		Type:      tx.TxType(),
		Payload:   tx,
		Signature: sig,
		PubKeyID:  km.PubKeyID(),
	}, nil
}

// SignGroup signs each member independently, in group position order. Each
// signed payload is a private copy of the member, so later mutation of the
// group cannot reach into a produced signature.
func (s *TxSigner) SignGroup(group *txtypes.OrderGroup) (*txtypes.SignedGroup, error) {
	txs := make([]*txtypes.SignedTx, len(group.Members))
	for i := range group.Members {
		member := group.Members[i]
		signed, err := s.SignTx(&member)
		if err != nil {
			return nil, fmt.Errorf("group member %d: %w", i, err)
		}
		txs[i] = signed
	}
	return &txtypes.SignedGroup{
		GroupID:  group.ID,
		Grouping: group.Grouping,
		Txs:      txs,
	}, nil
}
