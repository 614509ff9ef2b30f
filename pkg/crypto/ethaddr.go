package crypto

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// AddressFromUncompressedPub derives the EIP-55 checksummed address from a
// 65-byte uncompressed secp256k1 public key (0x04 || X || Y). Used to check
// that a locally held key matches the public key the venue reports for an
// api-key slot, where only the raw pubkey hex is available.
func AddressFromUncompressedPub(pub []byte) string {
	if len(pub) != 65 || pub[0] != 0x04 {
		return ""
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(pub[1:])
	sum := h.Sum(nil)
	return checksumAddress(sum[12:]) // last 20 bytes
}

// checksumAddress renders a 20-byte address as EIP-55 checksummed hex.
func checksumAddress(addr20 []byte) string {
	hexaddr := hex.EncodeToString(addr20)
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(hexaddr))
	hash := h.Sum(nil)

	out := make([]byte, 2+len(hexaddr))
	copy(out, "0x")
	for i, c := range []byte(hexaddr) {
		if c >= '0' && c <= '9' {
			out[2+i] = c
			continue
		}
		// each hex char maps to a nibble of hash[i/2]; nibble >= 8 uppercases
		nibble := hash[i>>1] & 0x0f
		if i%2 == 0 {
			nibble = hash[i>>1] >> 4
		}
		if nibble >= 8 {
			out[2+i] = []byte(strings.ToUpper(string(c)))[0]
		} else {
			out[2+i] = c
		}
	}
	return string(out)
}
