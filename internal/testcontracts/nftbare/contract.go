// Package nftbare is a test collection with no royalty support at all.
package nftbare

import (
	"github.com/nspcc-dev/marketplace-contract/internal/testcontracts/nft"
	"github.com/nspcc-dev/neo-go/pkg/interop"
)

func Symbol() string {
	return "BARE"
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
