// Package venuehttp is the default HTTP implementation of client.Transport.
// It speaks the venue's JSON gateway; everything above it is
// transport-agnostic.
package venuehttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/strandex/strand-go/pkg/client"
	"github.com/strandex/strand-go/pkg/txtypes"
)

type Client struct {
	baseURL string
	httpc   *http.Client
}

var _ client.Transport = (*Client)(nil)

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetNextNonce(ctx context.Context, accountIndex int64, apiKeyIndex uint8) (int64, error) {
	var out struct {
		Nonce int64 `json:"nonce"`
	}
	q := url.Values{
		"accountIndex": {strconv.FormatInt(accountIndex, 10)},
		"apiKeyIndex":  {strconv.Itoa(int(apiKeyIndex))},
	}
	if err := c.getJSON(ctx, "/api/v1/nextNonce", q, &out); err != nil {
		return 0, err
	}
	return out.Nonce, nil
}

func (c *Client) GetAPIKey(ctx context.Context, accountIndex int64, apiKeyIndex uint8) (string, error) {
	var out struct {
		PublicKey string `json:"publicKey"`
	}
	q := url.Values{
		"accountIndex": {strconv.FormatInt(accountIndex, 10)},
		"apiKeyIndex":  {strconv.Itoa(int(apiKeyIndex))},
	}
	if err := c.getJSON(ctx, "/api/v1/apiKey", q, &out); err != nil {
		return "", err
	}
	return out.PublicKey, nil
}

func (c *Client) SendTx(ctx context.Context, tx *txtypes.SignedTx) (string, error) {
	var out struct {
		TxHash string `json:"txHash"`
	}
	if err := c.postJSON(ctx, "/api/v1/sendTx", tx, &out); err != nil {
		return "", err
	}
	return out.TxHash, nil
}

func (c *Client) SendTxBatch(ctx context.Context, group *txtypes.SignedGroup) ([]string, error) {
	body := struct {
		GroupID  uint64               `json:"groupId"`
		Grouping txtypes.GroupingType `json:"grouping"`
		Txs      []*txtypes.SignedTx  `json:"txs"`
	}{group.GroupID, group.Grouping, group.Txs}

	var out struct {
		TxHashes []string `json:"txHashes"`
	}
	if err := c.postJSON(ctx, "/api/v1/sendTxBatch", body, &out); err != nil {
		return nil, err
	}
	return out.TxHashes, nil
}

func (c *Client) SupportsBatch() bool { return true }

func (c *Client) GetTxStatus(ctx context.Context, txHash string) (client.TxState, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/api/v1/tx", url.Values{"hash": {txHash}}, &out); err != nil {
		return client.StateIdle, err
	}
	switch out.Status {
	case "pending":
		return client.StateSent, nil
	case "confirmed":
		return client.StateConfirmed, nil
	case "rejected":
		return client.StateRejected, nil
	default:
		return client.StateIdle, fmt.Errorf("venue returned unknown tx status %q", out.Status)
	}
}

// === wire plumbing ===

type venueErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, false, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, true, out)
}

// do runs the request and classifies failures. mutating marks requests whose
// loss after going on the wire makes the outcome ambiguous (tx submission);
// for those, failures that may have reached the venue are flagged Sent so the
// submission client never resends them.
func (c *Client) do(req *http.Request, mutating bool, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return classifyNetErr(err, mutating)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &client.TransportError{Err: err, Sent: mutating}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.Unmarshal(raw, out); err != nil {
			return &client.TransportError{Err: fmt.Errorf("malformed venue response: %w", err), Sent: mutating}
		}
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		// rate limited before processing
		return &client.TransportError{Err: fmt.Errorf("venue rate limit (%d)", resp.StatusCode), Retryable: true}
	case resp.StatusCode >= 500:
		return &client.TransportError{Err: fmt.Errorf("venue unavailable (%d)", resp.StatusCode), Sent: mutating, Retryable: !mutating}
	default:
		var ve venueErrorBody
		if json.Unmarshal(raw, &ve) == nil && ve.Code != "" {
			return &client.VenueError{Code: ve.Code, Message: ve.Message}
		}
		return &client.VenueError{Code: strconv.Itoa(resp.StatusCode), Message: string(raw)}
	}
}

func classifyNetErr(err error, mutating bool) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		// never reached the venue
		return &client.TransportError{Err: err, Retryable: true}
	}
	return &client.TransportError{Err: err, Sent: mutating}
}
