// Package journal persists one record per reserved nonce so a caller can
// reconcile ambiguous submission outcomes (timeouts, partial group failures)
// after a crash or disconnect. The journal is advisory: the venue remains the
// source of truth for what actually executed.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Record tracks the lifecycle of one reserved nonce. State holds the
// submission state machine value as a string (NonceReserved, Sent, Confirmed,
// Rejected, TimedOut).
type Record struct {
	AccountIndex int64  `json:"accountIndex"`
	Nonce        int64  `json:"nonce"`
	TxType       uint8  `json:"txType"`
	State        string `json:"state"`
	TxHash       string `json:"txHash,omitempty"`
	GroupID      uint64 `json:"groupId,omitempty"`
	GroupPos     uint8  `json:"groupPos,omitempty"`
	UpdatedAt    int64  `json:"updatedAt"` // unix ms
}

// Journal is a Pebble-backed submission journal. Safe for concurrent use;
// writes are synced so a crash never loses a possibly-sent nonce.
type Journal struct {
	db *pebble.DB
}

// Open opens (or creates) a journal database at path.
func Open(path string) (*Journal, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal db at %s: %w", path, err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error { return j.db.Close() }

// keys: n:<8-byte account><8-byte nonce>, big-endian so iteration follows
// nonce order within an account.
func recordKey(accountIndex, nonce int64) []byte {
	k := make([]byte, 1+1+16)
	k[0], k[1] = 'n', ':'
	binary.BigEndian.PutUint64(k[2:], uint64(accountIndex))
	binary.BigEndian.PutUint64(k[10:], uint64(nonce))
	return k
}

// Put writes a record, overwriting any previous state for the same nonce.
func (j *Journal) Put(rec Record) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal journal record: %w", err)
	}
	if err := j.db.Set(recordKey(rec.AccountIndex, rec.Nonce), val, pebble.Sync); err != nil {
		return fmt.Errorf("failed to write journal record: %w", err)
	}
	return nil
}

// Get loads the record for one nonce. The second return is false when no
// record exists.
func (j *Journal) Get(accountIndex, nonce int64) (Record, bool, error) {
	val, closer, err := j.db.Get(recordKey(accountIndex, nonce))
	if err == pebble.ErrNotFound {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to read journal record: %w", err)
	}
	defer closer.Close()

	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return Record{}, false, fmt.Errorf("failed to unmarshal journal record: %w", err)
	}
	return rec, true, nil
}

// Unresolved returns the account's records whose outcome is still unknown
// (anything not Confirmed or Rejected), in nonce order. These are the nonces
// a caller must reconcile against the venue before resubmitting.
func (j *Journal) Unresolved(accountIndex int64) ([]Record, error) {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: recordKey(accountIndex, 0),
		UpperBound: recordKey(accountIndex+1, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal iterator: %w", err)
	}
	defer iter.Close()

	var out []Record
	for iter.First(); iter.Valid(); iter.Next() {
		var rec Record
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal journal record: %w", err)
		}
		if rec.State == "Confirmed" || rec.State == "Rejected" {
			continue
		}
		out = append(out, rec)
	}
	return out, iter.Error()
}
