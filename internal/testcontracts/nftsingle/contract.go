// Package nftsingle is a test collection exposing only the aggregated
// single-receiver royalty view of the registry.
package nftsingle

import (
	"github.com/nspcc-dev/marketplace-contract/common"
	"github.com/nspcc-dev/marketplace-contract/internal/testcontracts/nft"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const registryKey = "registry"

func _deploy(data interface{}, isUpdate bool) {
	if isUpdate {
		return
	}

	args := data.(struct {
		registry interop.Hash160
	})
	storage.Put(storage.GetContext(), registryKey, args.registry)
}

func Symbol() string {
	return "SINGLE"
}

func Decimals() int {
	return 0
}

func Mint(to interop.Hash160, tokenId []byte) {
	nft.Mint(to, tokenId)
}

func OwnerOf(tokenId []byte) interop.Hash160 {
	return nft.OwnerOf(tokenId)
}

func Transfer(to interop.Hash160, tokenId []byte, data interface{}) bool {
	return nft.Transfer(to, tokenId, data)
}

// RoyaltyInfo resolves the aggregated royalty of the token through the
// registry.
func RoyaltyInfo(tokenId []byte, salePrice int) common.RoyaltyShare {
	return contract.Call(registry(), "royaltyInfo", contract.ReadOnly,
		runtime.GetExecutingScriptHash(), tokenId, salePrice).(common.RoyaltyShare)
}

func registry() interop.Hash160 {
	return storage.Get(storage.GetReadOnlyContext(), registryKey).(interop.Hash160)
}
