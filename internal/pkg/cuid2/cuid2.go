// Package cuid2 generates collision-resistant prefixed ids, used for
// idempotency keys on outbound service calls.
package cuid2

import (
	crypto_rand "crypto/rand"
	"strings"
	"time"
)

// Base62 alphabet: 0-9, A-Z, a-z (62 characters)
const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// EncodeTimestampBase62 encodes a Unix timestamp (seconds) as a 6-character
// base62 string. Output is lexicographically sortable by timestamp.
//
// Range: 0 to ~56 billion seconds (~1800 years from Unix epoch)
func EncodeTimestampBase62(timestampSeconds int64) string {
	n := timestampSeconds
	result := make([]byte, 6)
	for i := 5; i >= 0; i-- {
		result[i] = base62Alphabet[n%62]
		n /= 62
	}
	return string(result)
}

// randomBase62 generates a random base62 string using rejection sampling.
//
// Extracts 6 bits at a time (values 0-63) and rejects values >= 62 so the
// distribution over the alphabet stays uniform (~5.95 bits of entropy per
// character).
func randomBase62(length int) string {
	// Extra bytes cover the ~3% rejection rate
	buf := make([]byte, (length*6)/8+4)
	if _, err := crypto_rand.Read(buf); err != nil {
		panic("failed to read random bytes: " + err.Error())
	}

	var result strings.Builder
	bitBuffer := uint64(0)
	bitsInBuffer := uint(0)
	byteIndex := 0

	for result.Len() < length {
		for bitsInBuffer < 6 && byteIndex < len(buf) {
			bitBuffer = (bitBuffer << 8) | uint64(buf[byteIndex])
			bitsInBuffer += 8
			byteIndex++
		}

		value := (bitBuffer >> (bitsInBuffer - 6)) & 0x3f
		bitsInBuffer -= 6

		if value < 62 {
			result.WriteByte(base62Alphabet[value])
		}

		// Ran out of randomness before filling the id, get more
		if byteIndex >= len(buf) && result.Len() < length {
			if _, err := crypto_rand.Read(buf); err != nil {
				panic("failed to read random bytes: " + err.Error())
			}
			byteIndex = 0
			bitBuffer = 0
			bitsInBuffer = 0
		}
	}

	return result.String()
}

// PrefixedIdOptions for generating prefixed IDs.
type PrefixedIdOptions struct {
	// TimeSortable adds a 6-char base62 timestamp prefix for B-tree index
	// locality.
	TimeSortable bool
	// RandomLength of the random portion (default: 18 if TimeSortable,
	// 24 otherwise).
	RandomLength int
}

// GeneratePrefixedId generates a prefixed ID like "rsv_0CL2KwaB3cD5eF7gH9iJ1k".
func GeneratePrefixedId(prefix string, options PrefixedIdOptions) string {
	randomLength := options.RandomLength

	if options.TimeSortable {
		if randomLength == 0 {
			randomLength = 18
		}
		return prefix + "_" + EncodeTimestampBase62(time.Now().Unix()) + randomBase62(randomLength)
	}

	if randomLength == 0 {
		randomLength = 24
	}
	return prefix + "_" + randomBase62(randomLength)
}
