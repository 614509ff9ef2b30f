package client

import (
	"context"

	"github.com/strandex/strand-go/pkg/txtypes"
)

// Transport is the narrow interface the submission client consumes from the
// venue. The default HTTP implementation lives in pkg/client/venuehttp;
// tests substitute fakes.
//
// Implementations classify their failures with TransportError and report
// venue rejections as VenueError.
type Transport interface {
	// GetNextNonce returns the next unused nonce for an (account, api key)
	// pair as known by the venue.
	GetNextNonce(ctx context.Context, accountIndex int64, apiKeyIndex uint8) (int64, error)

	// GetAPIKey returns the public key the venue has registered for the
	// slot, as uncompressed hex.
	GetAPIKey(ctx context.Context, accountIndex int64, apiKeyIndex uint8) (string, error)

	// SendTx submits one signed transaction and returns the venue-assigned
	// transaction hash on acceptance.
	SendTx(ctx context.Context, tx *txtypes.SignedTx) (string, error)

	// SendTxBatch atomically submits a signed group, returning one hash per
	// member in group position order. Only called when SupportsBatch is true.
	SendTxBatch(ctx context.Context, group *txtypes.SignedGroup) ([]string, error)

	// SupportsBatch reports whether the venue endpoint accepts atomic group
	// submission. When false, groups fall back to sequential member sends.
	SupportsBatch() bool

	// GetTxStatus resolves the state of a previously submitted transaction.
	GetTxStatus(ctx context.Context, txHash string) (TxState, error)
}
