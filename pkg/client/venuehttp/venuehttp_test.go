package venuehttp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/strandex/strand-go/pkg/client"
	"github.com/strandex/strand-go/pkg/txtypes"
)

func sampleSigned() *txtypes.SignedTx {
	return &txtypes.SignedTx{
		Type: txtypes.TxTypeCancelOrder,
		Payload: &txtypes.CancelOrderTx{
			TxHeader:    txtypes.TxHeader{AccountIndex: 7, ChainID: 300, Nonce: 40, ExpiredAt: 1},
			MarketIndex: 1,
			OrderIndex:  55,
		},
		Signature: []byte{1, 2, 3},
	}
}

func TestGetNextNonce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/nextNonce" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("accountIndex"); got != "7" {
			t.Errorf("wrong accountIndex: %s", got)
		}
		if got := r.URL.Query().Get("apiKeyIndex"); got != "2" {
			t.Errorf("wrong apiKeyIndex: %s", got)
		}
		w.Write([]byte(`{"nonce": 41}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	nonce, err := c.GetNextNonce(context.Background(), 7, 2)
	if err != nil {
		t.Fatalf("get nonce failed: %v", err)
	}
	if nonce != 41 {
		t.Errorf("nonce %d, want 41", nonce)
	}
}

func TestSendTx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/sendTx" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		env, err := txtypes.DecodeSignedTx(readAll(t, r))
		if err != nil {
			t.Errorf("venue could not decode envelope: %v", err)
		} else if env.Payload.Header().Nonce != 40 {
			t.Errorf("wrong nonce on wire: %d", env.Payload.Header().Nonce)
		}
		w.Write([]byte(`{"txHash": "0xfeed"}`))
	}))
	defer srv.Close()

	hash, err := New(srv.URL, time.Second).SendTx(context.Background(), sampleSigned())
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if hash != "0xfeed" {
		t.Errorf("hash %s, want 0xfeed", hash)
	}
}

func TestSendTxVenueRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code": "21120", "message": "invalid nonce"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).SendTx(context.Background(), sampleSigned())
	var ve *client.VenueError
	if !errors.As(err, &ve) {
		t.Fatalf("expected VenueError, got %v", err)
	}
	if ve.Code != "21120" || ve.Message != "invalid nonce" {
		t.Errorf("error body lost: %+v", ve)
	}
}

func TestSendTxRateLimitRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).SendTx(context.Background(), sampleSigned())
	var te *client.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !te.Retryable || te.Sent {
		t.Errorf("rate limit must be retryable and pre-send: %+v", te)
	}
}

// A 5xx on a submission is ambiguous: the venue may have processed the
// transaction before failing, so the client must not resend.
func TestSendTxServerErrorAmbiguous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).SendTx(context.Background(), sampleSigned())
	var te *client.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !te.Sent || te.Retryable {
		t.Errorf("submission 5xx must be flagged sent, not retryable: %+v", te)
	}
}

func TestSendTxConnectionRefusedRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	_, err := New(srv.URL, time.Second).SendTx(context.Background(), sampleSigned())
	var te *client.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !te.Retryable || te.Sent {
		t.Errorf("dial failure must be retryable pre-send: %+v", te)
	}
}

func TestGetTxStatus(t *testing.T) {
	cases := map[string]client.TxState{
		"pending":   client.StateSent,
		"confirmed": client.StateConfirmed,
		"rejected":  client.StateRejected,
	}
	for status, want := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": "` + status + `"}`))
		}))
		st, err := New(srv.URL, time.Second).GetTxStatus(context.Background(), "0xfeed")
		srv.Close()
		if err != nil {
			t.Fatalf("%s: status failed: %v", status, err)
		}
		if st != want {
			t.Errorf("%s: got %s, want %s", status, st, want)
		}
	}
}

func TestSendTxBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sendTxBatch" {
			t.Errorf("wrong path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"txHashes": ["0x01", "0x02"]}`))
	}))
	defer srv.Close()

	group := &txtypes.SignedGroup{
		GroupID:  9,
		Grouping: txtypes.GroupingOneCancelsTheOther,
		Txs:      []*txtypes.SignedTx{sampleSigned(), sampleSigned()},
	}
	hashes, err := New(srv.URL, time.Second).SendTxBatch(context.Background(), group)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(hashes) != 2 || hashes[0] != "0x01" || hashes[1] != "0x02" {
		t.Errorf("hashes %v", hashes)
	}
}

func readAll(t *testing.T, r *http.Request) []byte {
	t.Helper()
	buf, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return buf
}
