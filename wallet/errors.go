package wallet

import "errors"

var (
	// ErrIdentityNotFound means no key files exist for the node. Callers treat
	// it as "no identity configured", not as a fatal error.
	ErrIdentityNotFound = errors.New("identity not found")
	ErrMalformedKey     = errors.New("malformed key")
	ErrKeyGeneration    = errors.New("key generation failed")
	ErrNoPrivateKey     = errors.New("wallet has no private key")
)
