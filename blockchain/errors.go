package blockchain

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrValidation is wrapped by every error that rejects a transaction,
	// block or chain without touching state.
	ErrValidation = errors.New("validation failed")

	ErrInvalidSignature  = fmt.Errorf("%w: invalid transaction signature", ErrValidation)
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", ErrValidation)
	ErrInvalidProof      = fmt.Errorf("%w: proof of work is invalid", ErrValidation)
	ErrHashMismatch      = fmt.Errorf("%w: previous hash does not match", ErrValidation)
	ErrInvalidIndex      = fmt.Errorf("%w: block index is not sequential", ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be a finite number >= 0", ErrValidation)
	ErrInvalidChain      = fmt.Errorf("%w: chain is invalid", ErrValidation)
)

// ValidateAmount rejects negative, NaN and infinite amounts.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return fmt.Errorf("%w (got %v)", ErrInvalidAmount, amount)
	}
	return nil
}
