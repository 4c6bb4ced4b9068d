// Package royalty contains RPC wrappers for the marketplace Royalty contract.
package royalty

import (
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
}

// Entry is a receiver/weight pair of a royalty schedule.
type Entry struct {
	Receiver util.Uint160
	SharesBp int64
}

// Share is a receiver/amount pair of a resolved royalty payment.
type Share struct {
	Receiver util.Uint160
	Amount   *big.Int
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
}

// NewReader creates an instance of ContractReader using provided contract
// hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the
// given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor}
}

// RoyaltyCap invokes `royaltyCap` method of contract.
func (c *ContractReader) RoyaltyCap() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "royaltyCap"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// DefaultRoyalties invokes `defaultRoyalties` method of contract.
func (c *ContractReader) DefaultRoyalties(collection util.Uint160) ([]Entry, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, "defaultRoyalties", collection))
	if err != nil {
		return nil, err
	}
	return entriesFromStackItem(item)
}

// TokenRoyalties invokes `tokenRoyalties` method of contract.
func (c *ContractReader) TokenRoyalties(collection util.Uint160, tokenID []byte) ([]Entry, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, "tokenRoyalties", collection, tokenID))
	if err != nil {
		return nil, err
	}
	return entriesFromStackItem(item)
}

// MultiRoyaltyInfo invokes `multiRoyaltyInfo` method of contract.
func (c *ContractReader) MultiRoyaltyInfo(collection util.Uint160, tokenID []byte, salePrice int64) ([]Share, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, "multiRoyaltyInfo", collection, tokenID, salePrice))
	if err != nil {
		return nil, err
	}

	items, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, fmt.Errorf("not an array")
	}

	shares := make([]Share, 0, len(items))
	for i := range items {
		var (
			s   Share
			err = s.fromStackItem(items[i])
		)
		if err != nil {
			return nil, fmt.Errorf("share #%d: %w", i, err)
		}
		shares = append(shares, s)
	}

	return shares, nil
}

// RoyaltyInfo invokes `royaltyInfo` method of contract. A collection without
// a canonical receiver or an applicable schedule yields a zero Share.
func (c *ContractReader) RoyaltyInfo(collection util.Uint160, tokenID []byte, salePrice int64) (*Share, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, "royaltyInfo", collection, tokenID, salePrice))
	if err != nil {
		return nil, err
	}

	var s Share
	err = s.fromStackItem(item)
	if err != nil {
		return nil, fmt.Errorf("decode share: %w", err)
	}

	return &s, nil
}

// SetDefaultRoyalties creates a transaction invoking `setDefaultRoyalties`
// method of the contract. This transaction is signed and immediately sent to
// the network. The values returned are its hash, ValidUntilBlock value and
// error if any.
func (c *Contract) SetDefaultRoyalties(collection util.Uint160, entries []Entry) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setDefaultRoyalties", collection, entryArgs(entries))
}

// SetTokenRoyalties creates a transaction invoking `setTokenRoyalties`
// method of the contract. This transaction is signed and immediately sent to
// the network. The values returned are its hash, ValidUntilBlock value and
// error if any.
func (c *Contract) SetTokenRoyalties(collection util.Uint160, tokenID []byte, entries []Entry) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setTokenRoyalties", collection, tokenID, entryArgs(entries))
}

// SetRoyaltyReceiver creates a transaction invoking `setRoyaltyReceiver`
// method of the contract. A zero receiver resets both the receiver and the
// default schedule of the collection. This transaction is signed and
// immediately sent to the network. The values returned are its hash,
// ValidUntilBlock value and error if any.
func (c *Contract) SetRoyaltyReceiver(collection util.Uint160, receiver util.Uint160) (util.Uint256, uint32, error) {
	if receiver.Equals(util.Uint160{}) {
		return c.actor.SendCall(c.hash, "setRoyaltyReceiver", collection, []byte{})
	}
	return c.actor.SendCall(c.hash, "setRoyaltyReceiver", collection, receiver)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network. The values
// returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

func entryArgs(entries []Entry) []any {
	args := make([]any, 0, len(entries))
	for i := range entries {
		args = append(args, []any{entries[i].Receiver, entries[i].SharesBp})
	}
	return args
}

func entriesFromStackItem(item stackitem.Item) ([]Entry, error) {
	items, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, fmt.Errorf("not an array")
	}

	entries := make([]Entry, 0, len(items))
	for i := range items {
		pair, ok := items[i].Value().([]stackitem.Item)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("invalid entry #%d", i)
		}

		var e Entry
		receiver, err := pair[0].TryBytes()
		if err != nil {
			return nil, fmt.Errorf("entry #%d: %w", i, err)
		}
		e.Receiver, err = util.Uint160DecodeBytesBE(receiver)
		if err != nil {
			return nil, fmt.Errorf("entry #%d: %w", i, err)
		}
		bp, err := pair[1].TryInteger()
		if err != nil {
			return nil, fmt.Errorf("entry #%d: %w", i, err)
		}
		e.SharesBp = bp.Int64()

		entries = append(entries, e)
	}

	return entries, nil
}

func (s *Share) fromStackItem(item stackitem.Item) error {
	pair, ok := item.Value().([]stackitem.Item)
	if !ok || len(pair) != 2 {
		return fmt.Errorf("not a two-field structure")
	}

	// A zero share carries no receiver at all.
	if _, isNull := pair[0].(stackitem.Null); !isNull {
		b, err := pair[0].TryBytes()
		if err != nil {
			return err
		}
		if len(b) > 0 {
			s.Receiver, err = util.Uint160DecodeBytesBE(b)
			if err != nil {
				return err
			}
		}
	}

	amount, err := pair[1].TryInteger()
	if err != nil {
		return err
	}
	s.Amount = amount

	return nil
}
