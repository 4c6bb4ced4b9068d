// Package relay is a test settlement front end. Once allowlisted, it
// forwards funds from its own balance to the payout contract and invokes
// the distribution entry points the way the auction contract does, and it
// can claim its own credit through the calling-contract identity path.
package relay

import (
	"github.com/nspcc-dev/marketplace-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// Distribute moves the price to the payout contract and triggers the
// distribution waterfall.
func Distribute(payout interop.Hash160, seller interop.Hash160, collection interop.Hash160, tokenId []byte, price int, shareholders []common.Shareholder, commissionBp int) {
	if !gas.Transfer(runtime.GetExecutingScriptHash(), payout, price, nil) {
		panic("failed to forward payment")
	}

	contract.Call(payout, "payout", contract.All,
		seller, collection, tokenId, price, shareholders, commissionBp)
}

// Deposit moves the amount to the payout contract and records it as a
// credit of the recipient.
func Deposit(payout interop.Hash160, recipient interop.Hash160, amount int) {
	if !gas.Transfer(runtime.GetExecutingScriptHash(), payout, amount, nil) {
		panic("failed to forward payment")
	}

	contract.Call(payout, "depositCredit", contract.All, recipient, amount)
}

// Claim withdraws the credit of the relay itself.
func Claim(payout interop.Hash160) {
	contract.Call(payout, "withdrawCredit", contract.All,
		runtime.GetExecutingScriptHash())
}

func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
}
