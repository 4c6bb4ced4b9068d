package common

import "github.com/nspcc-dev/neo-go/pkg/interop"

// BPDenominator is the basis point denominator, 10000 bp = 100%.
const BPDenominator = 10000

type (
	// Shareholder is a revenue share entry of an auction: a receiver
	// account and its weight in basis points of the distributable pool.
	Shareholder struct {
		Receiver interop.Hash160
		SharesBp int
	}

	// RoyaltyEntry is a royalty schedule entry: a receiver account and
	// its weight in basis points of the sale price.
	RoyaltyEntry struct {
		Receiver interop.Hash160
		SharesBp int
	}

	// RoyaltyShare is a resolved royalty payment: a receiver account and
	// an absolute amount computed from some sale price.
	RoyaltyShare struct {
		Receiver interop.Hash160
		Amount   int
	}
)

// BPShare returns the basis point fraction of the amount rounded down.
func BPShare(amount, bp int) int {
	return amount * bp / BPDenominator
}
