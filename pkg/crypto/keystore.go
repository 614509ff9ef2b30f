package crypto

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrKeyUnavailable: the referenced api-key slot was never registered.
	ErrKeyUnavailable = errors.New("api key unavailable")
	// ErrKeyRevoked: the slot existed but has been revoked.
	ErrKeyRevoked = errors.New("api key revoked")
)

// Keystore holds the api-key slots of one account. Slots are independently
// revocable; exactly one slot signs any given transaction. The keystore is
// safe for concurrent use.
type Keystore struct {
	mu           sync.RWMutex
	accountIndex int64
	slots        map[uint8]KeyManager
	revoked      map[uint8]bool
	active       uint8
}

// NewKeystore creates a keystore for an account with one initial slot, which
// becomes the active signing key.
func NewKeystore(accountIndex int64, apiKeyIndex uint8, km KeyManager) *Keystore {
	return &Keystore{
		accountIndex: accountIndex,
		slots:        map[uint8]KeyManager{apiKeyIndex: km},
		revoked:      make(map[uint8]bool),
		active:       apiKeyIndex,
	}
}

func (ks *Keystore) AccountIndex() int64 { return ks.accountIndex }

// AddKey registers a slot. Re-adding a revoked slot index re-arms it with the
// new key material.
func (ks *Keystore) AddKey(apiKeyIndex uint8, km KeyManager) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.slots[apiKeyIndex] = km
	delete(ks.revoked, apiKeyIndex)
}

// Revoke marks a slot unusable. Revoking the active slot leaves the keystore
// without a usable signer until SetActive selects another.
func (ks *Keystore) Revoke(apiKeyIndex uint8) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.revoked[apiKeyIndex] = true
}

// SetActive selects the slot used for signing.
func (ks *Keystore) SetActive(apiKeyIndex uint8) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if _, ok := ks.slots[apiKeyIndex]; !ok {
		return fmt.Errorf("%w: slot %d", ErrKeyUnavailable, apiKeyIndex)
	}
	if ks.revoked[apiKeyIndex] {
		return fmt.Errorf("%w: slot %d", ErrKeyRevoked, apiKeyIndex)
	}
	ks.active = apiKeyIndex
	return nil
}

// Active returns the active slot index and its key material.
func (ks *Keystore) Active() (uint8, KeyManager, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	km, err := ks.lookupLocked(ks.active)
	return ks.active, km, err
}

// Key returns the key material in a specific slot.
func (ks *Keystore) Key(apiKeyIndex uint8) (KeyManager, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return ks.lookupLocked(apiKeyIndex)
}

func (ks *Keystore) lookupLocked(apiKeyIndex uint8) (KeyManager, error) {
	km, ok := ks.slots[apiKeyIndex]
	if !ok {
		return nil, fmt.Errorf("%w: slot %d", ErrKeyUnavailable, apiKeyIndex)
	}
	if ks.revoked[apiKeyIndex] {
		return nil, fmt.Errorf("%w: slot %d", ErrKeyRevoked, apiKeyIndex)
	}
	return km, nil
}
