// Package wallet holds a node's signing identity: a Schnorr keypair on the
// Ed25519 curve whose hex-encoded public key doubles as the participant id
// used in transactions.
package wallet

import (
	"encoding/hex"
	"fmt"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/group/edwards25519"
	"go.dedis.ch/kyber/v4/sign/schnorr"

	"gocuria/blockchain"
)

var suite = edwards25519.NewBlakeSHA256Ed25519()

type Wallet struct {
	private kyber.Scalar
	public  kyber.Point

	PrivateKey string
	PublicKey  string
}

// Generate creates a fresh keypair.
func Generate() (w *Wallet, err error) {
	// kyber panics when its random stream fails.
	defer func() {
		if r := recover(); r != nil {
			w, err = nil, fmt.Errorf("%w: %v", ErrKeyGeneration, r)
		}
	}()

	private := suite.Scalar().Pick(suite.RandomStream())
	public := suite.Point().Mul(private, nil)
	return newWallet(private, public)
}

// FromKeys rebuilds a wallet from exported hex strings.
func FromKeys(privateKey, publicKey string) (*Wallet, error) {
	private, err := parseScalar(privateKey)
	if err != nil {
		return nil, err
	}
	public, err := ParsePublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	if !suite.Point().Mul(private, nil).Equal(public) {
		return nil, fmt.Errorf("%w: public key does not match private key", ErrMalformedKey)
	}
	return newWallet(private, public)
}

func newWallet(private kyber.Scalar, public kyber.Point) (*Wallet, error) {
	privBytes, err := private.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	pubBytes, err := public.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	return &Wallet{
		private:    private,
		public:     public,
		PrivateKey: hex.EncodeToString(privBytes),
		PublicKey:  hex.EncodeToString(pubBytes),
	}, nil
}

// Sign signs the canonical (sender, recipient, amount) tuple and returns the
// hex-encoded signature.
func (w *Wallet) Sign(sender, recipient string, amount float64) (string, error) {
	if w == nil || w.private == nil {
		return "", ErrNoPrivateKey
	}
	if err := blockchain.ValidateAmount(amount); err != nil {
		return "", err
	}
	sig, err := schnorr.Sign(suite, w.private, blockchain.CanonicalBytes(sender, recipient, amount))
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}
	return hex.EncodeToString(sig), nil
}

// Verify checks tx's signature against its sender, read as a public key. A
// well-formed but wrong signature yields false with no error; ErrMalformedKey
// is returned only when the sender is not a public key at all.
func Verify(tx blockchain.Transaction) (bool, error) {
	public, err := ParsePublicKey(tx.Sender)
	if err != nil {
		return false, err
	}
	sig, err := hex.DecodeString(tx.Signature)
	if err != nil {
		return false, nil
	}
	return schnorr.Verify(suite, public, tx.CanonicalBytes(), sig) == nil, nil
}

// ParsePublicKey decodes a hex public key.
func ParsePublicKey(s string) (kyber.Point, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: public key is not hex: %v", ErrMalformedKey, err)
	}
	p := suite.Point()
	if err := p.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	return p, nil
}

func parseScalar(s string) (kyber.Scalar, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: private key is not hex: %v", ErrMalformedKey, err)
	}
	sc := suite.Scalar()
	if err := sc.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	return sc, nil
}
