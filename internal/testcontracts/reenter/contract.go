// Package reenter is a test payment recipient that calls back into the
// payout contract from its NEP-17 receive handler.
package reenter

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const payoutKey = "payout"

func _deploy(data interface{}, isUpdate bool) {
	if isUpdate {
		return
	}

	args := data.(struct {
		payout interop.Hash160
	})
	storage.Put(storage.GetContext(), payoutKey, args.payout)
}

// Claim withdraws the credit of the contract itself.
func Claim() {
	withdraw()
}

func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
	withdraw()
}

func withdraw() {
	payout := storage.Get(storage.GetReadOnlyContext(), payoutKey).(interop.Hash160)
	contract.Call(payout, "withdrawCredit", contract.All,
		runtime.GetExecutingScriptHash())
}
