package service

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet omits easily confused characters (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const confirmationCodeLength = 6

// newConfirmationCode returns an opaque customer-facing code. Uniqueness
// is enforced by the database; collisions are retried by the caller.
func newConfirmationCode() (string, error) {
	return randomCode(confirmationCodeLength)
}

// newGiftCardCode returns a longer code for minted gift cards.
func newGiftCardCode() (string, error) {
	code, err := randomCode(12)
	if err != nil {
		return "", err
	}
	return "GC-" + code, nil
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating code: %s", err.Error())
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
