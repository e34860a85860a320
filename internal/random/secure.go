// Package random provides cryptographically secure randomization for DNS
// query identifiers, to resist cache-poisoning attacks that guess the
// transaction ID of an in-flight query.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// TransactionID generates a cryptographically random 16-bit transaction ID.
// NEVER use math/rand for DNS transaction IDs - it's predictable.
func TransactionID() uint16 {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Proceeding with a predictable ID is a worse failure mode than
		// crashing: panic is appropriate here.
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return binary.BigEndian.Uint16(buf[:])
}
