// Package sink is a test contract that cannot accept NEP-17 transfers: it
// has no receive handler, so any payment pushed to it must end up in the
// credit ledger instead. Claim lets it ask for its credit anyway, proving
// that a withdrawal with an undeliverable transfer aborts whole.
package sink

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// Claim withdraws the credit of the sink itself.
func Claim(payout interop.Hash160) {
	contract.Call(payout, "withdrawCredit", contract.All,
		runtime.GetExecutingScriptHash())
}
