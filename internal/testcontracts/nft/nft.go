/*
Package nft holds the shared token plumbing of the test collections. It is
a deliberately minimal non-divisible NEP-11 subset: mint, ownership lookup
and transfer with the receive callback, enough to run auctions against.
*/
package nft

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

var tokenPrefix = []byte("t")

// Mint assigns the token to the account, overwriting any previous owner.
func Mint(to interop.Hash160, tokenId []byte) {
	if len(to) != interop.Hash160Len {
		panic("invalid owner")
	}

	storage.Put(storage.GetContext(), tokenKey(tokenId), to)
}

// OwnerOf returns the current owner of the token.
func OwnerOf(tokenId []byte) interop.Hash160 {
	data := storage.Get(storage.GetReadOnlyContext(), tokenKey(tokenId))
	if data == nil {
		panic("unknown token")
	}

	return data.(interop.Hash160)
}

// Transfer moves the token to the new owner on behalf of the current one
// and invokes the NEP-11 receive callback on contract recipients.
func Transfer(to interop.Hash160, tokenId []byte, data interface{}) bool {
	if len(to) != interop.Hash160Len {
		panic("invalid receiver")
	}

	ctx := storage.GetContext()
	key := tokenKey(tokenId)
	val := storage.Get(ctx, key)
	if val == nil {
		panic("unknown token")
	}

	from := val.(interop.Hash160)
	if !runtime.CheckWitness(from) {
		return false
	}

	storage.Put(ctx, key, to)
	runtime.Notify("Transfer", from, to, 1, tokenId)

	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP11Payment", contract.All, from, 1, tokenId, data)
	}

	return true
}

func tokenKey(tokenId []byte) []byte {
	return append(tokenPrefix, tokenId...)
}
