// Package reject is a test payment recipient that throws from its NEP-17
// receive handler, trying to abort any settlement that pays it.
package reject

import "github.com/nspcc-dev/neo-go/pkg/interop"

func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
	panic("payment rejected")
}
