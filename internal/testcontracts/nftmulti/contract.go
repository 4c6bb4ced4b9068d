// Package nftmulti is a test collection resolving royalties through the
// registry contract with the multi-receiver breakdown.
package nftmulti

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
	return "MULTI"
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

// MultiRoyaltyInfo resolves the royalty breakdown of the token through the
// registry.
func MultiRoyaltyInfo(tokenId []byte, salePrice int) []common.RoyaltyShare {
	return contract.Call(registry(), "multiRoyaltyInfo", contract.ReadOnly,
		runtime.GetExecutingScriptHash(), tokenId, salePrice).([]common.RoyaltyShare)
}

// SetDefaultRoyalties replaces the default schedule of this collection in
// the registry, exercising the collection-managed access path.
func SetDefaultRoyalties(entries []common.RoyaltyEntry) {
	contract.Call(registry(), "setDefaultRoyalties", contract.All,
		runtime.GetExecutingScriptHash(), entries)
}

// SetTokenRoyalties replaces the per-token schedule of this collection in
// the registry.
func SetTokenRoyalties(tokenId []byte, entries []common.RoyaltyEntry) {
	contract.Call(registry(), "setTokenRoyalties", contract.All,
		runtime.GetExecutingScriptHash(), tokenId, entries)
}

func registry() interop.Hash160 {
	return storage.Get(storage.GetReadOnlyContext(), registryKey).(interop.Hash160)
}
