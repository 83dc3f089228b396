package random

import (
	"crypto/rand"
	"encoding/hex"
)

// String generates a hex string from n random bytes.
func String(n int) string {
	bytes := make([]byte, n)

	_, err := rand.Read(bytes)
	if err != nil {
		panic(err)
	}

	return hex.EncodeToString(bytes)
}
