package service

import (
	"crypto/rand"
	"math/big"
)

const suggestionCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const suggestionLength = 8

// SuggestPassword returns a random 8-character uppercase alphanumeric
// password, offered as the default when an operator resets an account
// credential. The operator may overwrite it before confirming.
func SuggestPassword() string {
	out := make([]byte, suggestionLength)
	max := big.NewInt(int64(len(suggestionCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing is unrecoverable for credential material
			panic("password suggestion: " + err.Error())
		}
		out[i] = suggestionCharset[n.Int64()]
	}
	return string(out)
}
