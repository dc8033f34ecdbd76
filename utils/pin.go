package authUtils

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// GeneratePin returns a 4-digit verification pin in [1000, 9999]. The pin is
// the shared secret a worker must collect from the citizen to close a request.
func GeneratePin() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		return "1000"
	}
	return strconv.FormatInt(n.Int64()+1000, 10)
}
