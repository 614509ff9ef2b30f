// Package client builds, signs, and submits order transactions for one
// Strand account context. Building, linking, and signing are synchronous and
// side-effect free; the only suspension points are the network round-trips in
// submission and the initial nonce sync.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/strandex/strand-go/params"
	"github.com/strandex/strand-go/pkg/crypto"
	"github.com/strandex/strand-go/pkg/journal"
	"github.com/strandex/strand-go/pkg/txtypes"
	"github.com/strandex/strand-go/pkg/util"
)

// Options configures a TxClient. Transport and Keystore are required;
// Logger and Journal are optional.
type Options struct {
	Transport Transport
	Keystore  *crypto.Keystore
	Config    params.Config
	Logger    *zap.Logger
	Journal   *journal.Journal
}

// TxClient is the per-account submission client. It owns the account's nonce
// sequencer and keystore handle; there is no process-wide client state, so
// clients for different accounts operate fully independently.
type TxClient struct {
	cfg     params.Config
	tr      Transport
	ks      *crypto.Keystore
	builder *OrderBuilder
	signer  *TxSigner
	seq     nonceSequencer
	log     *zap.Logger
	jnl     *journal.Journal
	clock   util.Clock
}

func New(opts Options) (*TxClient, error) {
	if opts.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if opts.Keystore == nil {
		return nil, fmt.Errorf("keystore is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &TxClient{
		cfg:     opts.Config,
		tr:      opts.Transport,
		ks:      opts.Keystore,
		builder: NewOrderBuilder(opts.Config.Venue),
		signer:  NewTxSigner(opts.Keystore),
		log:     log,
		jnl:     opts.Journal,
		clock:   util.RealClock{},
	}, nil
}

func (c *TxClient) AccountIndex() int64 { return c.ks.AccountIndex() }

// TransactOpts overrides automatic per-call defaults. A nil TransactOpts (or
// nil field) means "fill in": nonce from the account sequencer, deadline from
// venue config. An explicit nonce bypasses the sequencer entirely; the caller
// then owns ordering.
type TransactOpts struct {
	Nonce     *int64
	ExpiredAt int64 // unix ms; 0 = venue default
}

// CreateOrder validates, signs, and submits one order. Validation and
// signing failures return before any network interaction; past that point the
// reserved nonce is burned whether or not the venue saw the transaction.
func (c *TxClient) CreateOrder(ctx context.Context, req txtypes.CreateOrderReq, opts *TransactOpts) (*TxResult, error) {
	apiKeyIndex, _, err := c.ks.Active()
	if err != nil {
		return nil, err
	}

	tx, err := c.builder.Build(req, c.ks.AccountIndex(), apiKeyIndex)
	if err != nil {
		return nil, err
	}
	c.applyDeadline(&tx.TxHeader, opts)

	if tx.Nonce, err = c.pickNonce(ctx, apiKeyIndex, opts); err != nil {
		return nil, err
	}
	c.journalPut(tx.TxHeader, tx.TxType(), StateNonceReserved, "", 0, 0)

	signed, err := c.signer.SignTx(&tx)
	if err != nil {
		return nil, err
	}
	return c.submitSigned(ctx, signed, 0, 0)
}

// CreateGroupedOrders validates, links, signs, and submits an atomically-
// linked order group. Every member gets its own nonce, reserved
// consecutively so no unrelated submission interleaves between legs. When
// the transport cannot submit atomically, members are sent in position order
// and a failure after the first acceptance surfaces as PartialGroupError.
func (c *TxClient) CreateGroupedOrders(ctx context.Context, grouping txtypes.GroupingType, reqs []txtypes.CreateOrderReq, opts *TransactOpts) ([]TxResult, error) {
	apiKeyIndex, _, err := c.ks.Active()
	if err != nil {
		return nil, err
	}

	orders := make([]txtypes.OrderTx, len(reqs))
	for i, req := range reqs {
		tx, err := c.builder.Build(req, c.ks.AccountIndex(), apiKeyIndex)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		c.applyDeadline(&tx.TxHeader, opts)
		orders[i] = tx
	}

	group, err := LinkOrders(grouping, orders)
	if err != nil {
		return nil, err
	}

	nonces, err := c.pickNonces(ctx, apiKeyIndex, len(group.Members), opts)
	if err != nil {
		return nil, err
	}
	for i := range group.Members {
		group.Members[i].Nonce = nonces[i]
		c.journalPut(group.Members[i].TxHeader, txtypes.TxTypeCreateOrder, StateNonceReserved, "", group.ID, uint8(i))
	}

	signedGroup, err := c.signer.SignGroup(group)
	if err != nil {
		return nil, err
	}

	if c.tr.SupportsBatch() {
		return c.submitGroupAtomic(ctx, signedGroup)
	}
	return c.submitGroupSequential(ctx, signedGroup)
}

// CancelOrder cancels one resting order by its venue order index.
func (c *TxClient) CancelOrder(ctx context.Context, req txtypes.CancelOrderReq, opts *TransactOpts) (*TxResult, error) {
	if req.OrderIndex < 0 {
		return nil, fmt.Errorf("%w: %d", txtypes.ErrNegativeOrderIndex, req.OrderIndex)
	}
	return c.signAndSubmit(ctx, opts, func(hdr txtypes.TxHeader) txtypes.Tx {
		return &txtypes.CancelOrderTx{TxHeader: hdr, MarketIndex: req.MarketIndex, OrderIndex: req.OrderIndex}
	})
}

// CancelAllOrders cancels every resting order, immediately (Time == 0) or at
// the scheduled unix ms timestamp.
func (c *TxClient) CancelAllOrders(ctx context.Context, req txtypes.CancelAllOrdersReq, opts *TransactOpts) (*TxResult, error) {
	if req.Time < 0 {
		return nil, fmt.Errorf("%w: time %d", txtypes.ErrBadOrderExpiry, req.Time)
	}
	return c.signAndSubmit(ctx, opts, func(hdr txtypes.TxHeader) txtypes.Tx {
		return &txtypes.CancelAllOrdersTx{TxHeader: hdr, Time: req.Time}
	})
}

// ModifyOrder amends a resting order's amount, price, or trigger price.
func (c *TxClient) ModifyOrder(ctx context.Context, req txtypes.ModifyOrderReq, opts *TransactOpts) (*TxResult, error) {
	if req.OrderIndex < 0 {
		return nil, fmt.Errorf("%w: %d", txtypes.ErrNegativeOrderIndex, req.OrderIndex)
	}
	if req.BaseAmount <= 0 {
		return nil, fmt.Errorf("%w: %d", txtypes.ErrNonPositiveAmount, req.BaseAmount)
	}
	if req.Price == 0 {
		return nil, fmt.Errorf("%w", txtypes.ErrNonPositivePrice)
	}
	return c.signAndSubmit(ctx, opts, func(hdr txtypes.TxHeader) txtypes.Tx {
		return &txtypes.ModifyOrderTx{
			TxHeader:     hdr,
			MarketIndex:  req.MarketIndex,
			OrderIndex:   req.OrderIndex,
			BaseAmount:   req.BaseAmount,
			Price:        req.Price,
			TriggerPrice: req.TriggerPrice,
		}
	})
}

// TxStatus resolves the current state of a submitted transaction. Callers
// use this to settle ambiguous outcomes (ErrSubmitTimedOut, partial groups)
// before deciding to resubmit.
func (c *TxClient) TxStatus(ctx context.Context, txHash string) (TxState, error) {
	return c.tr.GetTxStatus(ctx, txHash)
}

// Unresolved returns journal records whose outcome is still unknown. Only
// available when the client was configured with a journal.
func (c *TxClient) Unresolved() ([]journal.Record, error) {
	if c.jnl == nil {
		return nil, nil
	}
	return c.jnl.Unresolved(c.ks.AccountIndex())
}

// AuthToken mints a signed venue auth token for the active api key. A zero
// deadline, or one beyond the venue cap, is clamped to now + MaxAuthTokenTTL.
func (c *TxClient) AuthToken(deadline time.Time) (string, error) {
	apiKeyIndex, km, err := c.ks.Active()
	if err != nil {
		return "", err
	}

	latest := time.Now().Add(c.cfg.Venue.MaxAuthTokenTTL)
	if deadline.IsZero() || deadline.After(latest) {
		deadline = latest
	}

	digest, err := txtypes.AuthTokenDigest(c.cfg.Venue.ChainID, c.ks.AccountIndex(), apiKeyIndex, deadline.Unix())
	if err != nil {
		return "", err
	}
	sig, err := km.Sign(digest[:])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d:%d:%d:%s", deadline.Unix(), c.ks.AccountIndex(), apiKeyIndex, hexutil.Encode(sig)), nil
}

// CheckAPIKey verifies that the locally held active key matches the public
// key the venue has registered for the slot.
func (c *TxClient) CheckAPIKey(ctx context.Context) error {
	apiKeyIndex, km, err := c.ks.Active()
	if err != nil {
		return err
	}
	venuePub, err := c.tr.GetAPIKey(ctx, c.ks.AccountIndex(), apiKeyIndex)
	if err != nil {
		return fmt.Errorf("failed to fetch registered api key: %w", err)
	}

	switch km.Scheme() {
	case crypto.SchemeSecp256k1:
		raw, err := hexutil.Decode(ensureHexPrefix(venuePub))
		if err != nil {
			return fmt.Errorf("venue returned malformed public key: %w", err)
		}
		addr := crypto.AddressFromUncompressedPub(raw)
		if addr == "" || !strings.EqualFold(addr, km.PubKeyID()) {
			return fmt.Errorf("private key does not match registered slot %d: local %s, venue %s",
				apiKeyIndex, km.PubKeyID(), addr)
		}
	default:
		if !strings.EqualFold(ensureHexPrefix(venuePub), km.PubKeyID()) {
			return fmt.Errorf("private key does not match registered slot %d", apiKeyIndex)
		}
	}
	return nil
}

// AccountBatch pairs a client (one per account context) with the orders to
// submit through it.
type AccountBatch struct {
	Client *TxClient
	Orders []txtypes.CreateOrderReq
}

// SubmitAllOrders submits independent per-account batches concurrently.
// Accounts never share nonce state, so batches run in parallel; orders
// within a batch stay in caller order through that account's sequencer.
// results[i][j] is the outcome of batches[i].Orders[j].
func SubmitAllOrders(ctx context.Context, batches []AccountBatch) ([][]TxResult, error) {
	results := make([][]TxResult, len(batches))
	g, ctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			out := make([]TxResult, 0, len(batch.Orders))
			for _, req := range batch.Orders {
				res, err := batch.Client.CreateOrder(ctx, req, nil)
				if err != nil {
					return fmt.Errorf("account %d: %w", batch.Client.AccountIndex(), err)
				}
				out = append(out, *res)
			}
			results[i] = out
			return nil
		})
	}
	return results, g.Wait()
}

// === internals ===

func (c *TxClient) applyDeadline(hdr *txtypes.TxHeader, opts *TransactOpts) {
	if opts != nil && opts.ExpiredAt != 0 {
		hdr.ExpiredAt = opts.ExpiredAt
	}
}

func (c *TxClient) pickNonce(ctx context.Context, apiKeyIndex uint8, opts *TransactOpts) (int64, error) {
	if opts != nil && opts.Nonce != nil {
		return *opts.Nonce, nil
	}
	return c.seq.reserve(ctx, c.nonceFetcher(apiKeyIndex))
}

func (c *TxClient) pickNonces(ctx context.Context, apiKeyIndex uint8, count int, opts *TransactOpts) ([]int64, error) {
	if opts != nil && opts.Nonce != nil {
		out := make([]int64, count)
		for i := range out {
			out[i] = *opts.Nonce + int64(i)
		}
		return out, nil
	}
	return c.seq.reserveN(ctx, count, c.nonceFetcher(apiKeyIndex))
}

func (c *TxClient) nonceFetcher(apiKeyIndex uint8) func(ctx context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		return c.tr.GetNextNonce(ctx, c.ks.AccountIndex(), apiKeyIndex)
	}
}

func (c *TxClient) signAndSubmit(ctx context.Context, opts *TransactOpts, build func(txtypes.TxHeader) txtypes.Tx) (*TxResult, error) {
	apiKeyIndex, _, err := c.ks.Active()
	if err != nil {
		return nil, err
	}

	hdr := txtypes.TxHeader{
		AccountIndex: c.ks.AccountIndex(),
		ApiKeyIndex:  apiKeyIndex,
		ChainID:      c.cfg.Venue.ChainID,
		Nonce:        -1,
		ExpiredAt:    time.Now().Add(c.cfg.Venue.DefaultTxDeadline).UnixMilli(),
	}
	c.applyDeadline(&hdr, opts)

	if hdr.Nonce, err = c.pickNonce(ctx, apiKeyIndex, opts); err != nil {
		return nil, err
	}

	tx := build(hdr)
	c.journalPut(hdr, tx.TxType(), StateNonceReserved, "", 0, 0)

	signed, err := c.signer.SignTx(tx)
	if err != nil {
		return nil, err
	}
	return c.submitSigned(ctx, signed, 0, 0)
}

func (c *TxClient) submitSigned(ctx context.Context, signed *txtypes.SignedTx, groupID uint64, groupPos uint8) (*TxResult, error) {
	hdr := signed.Payload.Header()
	c.journalPut(hdr, signed.Type, StateSent, "", groupID, groupPos)

	hashes, err := c.sendWithRetry(ctx, func(ctx context.Context) ([]string, error) {
		hash, err := c.tr.SendTx(ctx, signed)
		if err != nil {
			return nil, err
		}
		return []string{hash}, nil
	})
	if err != nil {
		return nil, c.submissionFailure(hdr, signed.Type, groupID, groupPos, err)
	}

	txHash := hashes[0]
	c.journalPut(hdr, signed.Type, StateConfirmed, txHash, groupID, groupPos)
	c.log.Debug("transaction accepted",
		zap.Stringer("type", signed.Type),
		zap.Int64("nonce", hdr.Nonce),
		zap.String("txHash", txHash))

	return &TxResult{
		TxHash:   txHash,
		Nonce:    hdr.Nonce,
		State:    StateConfirmed,
		GroupID:  groupID,
		GroupPos: groupPos,
	}, nil
}

func (c *TxClient) submitGroupAtomic(ctx context.Context, sg *txtypes.SignedGroup) ([]TxResult, error) {
	for i, st := range sg.Txs {
		c.journalPut(st.Payload.Header(), st.Type, StateSent, "", sg.GroupID, uint8(i))
	}

	hashes, err := c.sendWithRetry(ctx, func(ctx context.Context) ([]string, error) {
		return c.tr.SendTxBatch(ctx, sg)
	})
	if err != nil {
		// atomic submission: the whole group shares one outcome
		var ferr error
		for i, st := range sg.Txs {
			ferr = c.submissionFailure(st.Payload.Header(), st.Type, sg.GroupID, uint8(i), err)
		}
		return nil, ferr
	}
	if len(hashes) != len(sg.Txs) {
		return nil, fmt.Errorf("venue returned %d hashes for %d group members", len(hashes), len(sg.Txs))
	}

	results := make([]TxResult, len(sg.Txs))
	for i, st := range sg.Txs {
		hdr := st.Payload.Header()
		c.journalPut(hdr, st.Type, StateConfirmed, hashes[i], sg.GroupID, uint8(i))
		results[i] = TxResult{
			TxHash:   hashes[i],
			Nonce:    hdr.Nonce,
			State:    StateConfirmed,
			GroupID:  sg.GroupID,
			GroupPos: uint8(i),
		}
	}
	c.log.Debug("group accepted", zap.Uint64("groupId", sg.GroupID), zap.Int("members", len(results)))
	return results, nil
}

func (c *TxClient) submitGroupSequential(ctx context.Context, sg *txtypes.SignedGroup) ([]TxResult, error) {
	accepted := make([]TxResult, 0, len(sg.Txs))
	for i, st := range sg.Txs {
		res, err := c.submitSigned(ctx, st, sg.GroupID, uint8(i))
		if err != nil {
			if len(accepted) > 0 {
				// accepted members cannot be revoked client-side
				return accepted, &PartialGroupError{
					GroupID:   sg.GroupID,
					Accepted:  append([]TxResult(nil), accepted...),
					FailedPos: i,
					Err:       err,
				}
			}
			return nil, err
		}
		accepted = append(accepted, *res)
	}
	return accepted, nil
}

// sendWithRetry retries only failures classified as retryable pre-send
// transport errors, with bounded exponential backoff. Anything observed (or
// possibly observed) by the venue is never resent.
func (c *TxClient) sendWithRetry(ctx context.Context, send func(ctx context.Context) ([]string, error)) ([]string, error) {
	backoff := c.cfg.Submission.BackoffBase
	attempts := c.cfg.Submission.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		hashes, err := send(ctx)
		if err == nil {
			return hashes, nil
		}
		lastErr = err

		var te *TransportError
		if !errors.As(err, &te) || !te.Retryable || te.Sent {
			return nil, err
		}
		if attempt == attempts {
			break
		}
		c.log.Warn("transient submission failure, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.clock.After(backoff):
		}
		backoff *= 2
	}
	return nil, lastErr
}

// submissionFailure maps a submission error to its final state, records it,
// and returns the error the caller sees.
func (c *TxClient) submissionFailure(hdr txtypes.TxHeader, txType txtypes.TxType, groupID uint64, groupPos uint8, err error) error {
	var ve *VenueError
	var te *TransportError
	switch {
	case errors.As(err, &ve):
		c.journalPut(hdr, txType, StateRejected, "", groupID, groupPos)
		c.log.Debug("transaction rejected", zap.Int64("nonce", hdr.Nonce), zap.String("code", ve.Code))
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled),
		errors.As(err, &te) && te.Sent:
		c.journalPut(hdr, txType, StateTimedOut, "", groupID, groupPos)
		return fmt.Errorf("%w (nonce %d): %v", ErrSubmitTimedOut, hdr.Nonce, err)
	default:
		// hard pre-send failure: the venue never saw the nonce, but it stays
		// burned to keep observed nonces strictly increasing
		c.journalPut(hdr, txType, StateNonceReserved, "", groupID, groupPos)
		return err
	}
}

func (c *TxClient) journalPut(hdr txtypes.TxHeader, txType txtypes.TxType, state TxState, txHash string, groupID uint64, groupPos uint8) {
	if c.jnl == nil {
		return
	}
	err := c.jnl.Put(journal.Record{
		AccountIndex: hdr.AccountIndex,
		Nonce:        hdr.Nonce,
		TxType:       uint8(txType),
		State:        state.String(),
		TxHash:       txHash,
		GroupID:      groupID,
		GroupPos:     groupPos,
		UpdatedAt:    time.Now().UnixMilli(),
	})
	if err != nil {
		c.log.Warn("failed to write submission journal", zap.Int64("nonce", hdr.Nonce), zap.Error(err))
	}
}

func ensureHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}
