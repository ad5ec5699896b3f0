// Package account defines the identity used to attribute contributions
// inside the funding ledger.
package account

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// ID represents an account id that identifies a contributor or the owner
// of the funding ledger.
type ID string

// ToID converts a hex-encoded string to an account id and validates the
// hex-encoded string is formatted correctly.
func ToID(hex string) (ID, error) {
	id := ID(hex)
	if !id.IsID() {
		return "", errors.New("invalid account format")
	}

	return id, nil
}

// PublicKeyToID converts the public key to an account id value.
func PublicKeyToID(pk ecdsa.PublicKey) ID {
	return ID(crypto.PubkeyToAddress(pk).String())
}

// IsID verifies whether the underlying data represents a valid
// hex-encoded account.
func (id ID) IsID() bool {
	const addressLength = 20

	if has0xPrefix(id) {
		id = id[2:]
	}

	return len(id) == 2*addressLength && isHex(id)
}

// =============================================================================

// has0xPrefix validates the account starts with a 0x.
func has0xPrefix(id ID) bool {
	return len(id) >= 2 && id[0] == '0' && (id[1] == 'x' || id[1] == 'X')
}

// isHex validates whether each byte is valid hexadecimal string.
func isHex(id ID) bool {
	if len(id)%2 != 0 {
		return false
	}

	for _, c := range []byte(id) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
