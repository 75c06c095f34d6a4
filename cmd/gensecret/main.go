// Generates a random key suitable for the SECRET_KEY setting of the accounts
// service when an HMAC token algorithm is used. Asymmetric algorithms take
// PEM encoded keys instead, generate those with openssl.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

const secretKeyBytes = 32

func main() {
	key := make([]byte, secretKeyBytes)

	if _, err := rand.Read(key); err != nil {
		fmt.Fprintf(os.Stderr, "can't generate SECRET_KEY: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(key))
}
