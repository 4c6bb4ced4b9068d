// Package auction contains RPC wrappers for the marketplace Auction contract.
package auction

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

// Shareholder is a receiver/weight pair of an auction revenue share list.
type Shareholder struct {
	Receiver util.Uint160
	SharesBp int64
}

// Auction is an on-chain Dutch auction record.
type Auction struct {
	Seller       util.Uint160
	StartPrice   *big.Int
	EndPrice     *big.Int
	StartTime    *big.Int
	Duration     *big.Int
	DropInterval *big.Int
	CommissionBp *big.Int
	Shareholders []Shareholder
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

// Price invokes `price` method of contract.
func (c *ContractReader) Price(collection util.Uint160, tokenID []byte) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "price", collection, tokenID))
}

// PriceAt invokes `priceAt` method of contract.
func (c *ContractReader) PriceAt(collection util.Uint160, tokenID []byte, at int64) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "priceAt", collection, tokenID, at))
}

// CommissionRate invokes `commissionRate` method of contract.
func (c *ContractReader) CommissionRate() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "commissionRate"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// GetAuction invokes `getAuction` method of contract. An auctioned token
// yields the filled record, any other one yields a record with a zero
// StartPrice.
func (c *ContractReader) GetAuction(collection util.Uint160, tokenID []byte) (*Auction, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, "getAuction", collection, tokenID))
	if err != nil {
		return nil, err
	}

	var a Auction
	err = a.FromStackItem(item)
	if err != nil {
		return nil, fmt.Errorf("decode auction record: %w", err)
	}

	return &a, nil
}

// CreateAuction creates a transaction invoking `createAuction` method of the
// contract. This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) CreateAuction(collection util.Uint160, tokenID []byte, seller util.Uint160, startPrice, endPrice, startTime, duration, dropInterval int64, shareholders []Shareholder) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "createAuction", collection, tokenID, seller,
		startPrice, endPrice, startTime, duration, dropInterval, shareholderArgs(shareholders))
}

// Bid creates a transaction invoking `bid` method of the contract. This
// transaction is signed and immediately sent to the network. The values
// returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Bid(collection util.Uint160, tokenID []byte, buyer util.Uint160, amount int64) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "bid", collection, tokenID, buyer, amount)
}

// Withdraw creates a transaction invoking `withdraw` method of the contract.
// This transaction is signed and immediately sent to the network. The values
// returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Withdraw(collection util.Uint160, tokenID []byte) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "withdraw", collection, tokenID)
}

// SetCommissionRate creates a transaction invoking `setCommissionRate` method
// of the contract. This transaction is signed and immediately sent to the
// network. The values returned are its hash, ValidUntilBlock value and error
// if any.
func (c *Contract) SetCommissionRate(commissionBp int64) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setCommissionRate", commissionBp)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network. The values
// returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

func shareholderArgs(shareholders []Shareholder) []any {
	args := make([]any, 0, len(shareholders))
	for i := range shareholders {
		args = append(args, []any{shareholders[i].Receiver, shareholders[i].SharesBp})
	}
	return args
}

// FromStackItem fills Auction from the given stack item.
func (a *Auction) FromStackItem(item stackitem.Item) error {
	fields, ok := item.Value().([]stackitem.Item)
	if !ok {
		return fmt.Errorf("not an array")
	}
	if len(fields) != 8 {
		return fmt.Errorf("unexpected number of fields: %d", len(fields))
	}

	var err error
	a.Seller, err = hash160FromItem(fields[0])
	if err != nil {
		return fmt.Errorf("field Seller: %w", err)
	}

	for i, dst := range []**big.Int{
		&a.StartPrice, &a.EndPrice, &a.StartTime,
		&a.Duration, &a.DropInterval, &a.CommissionBp,
	} {
		*dst, err = fields[i+1].TryInteger()
		if err != nil {
			return fmt.Errorf("field #%d: %w", i+1, err)
		}
	}

	if _, ok := fields[7].(stackitem.Null); ok {
		return nil
	}
	items, ok := fields[7].Value().([]stackitem.Item)
	if !ok {
		return fmt.Errorf("field Shareholders: not an array")
	}
	for i := range items {
		pair, ok := items[i].Value().([]stackitem.Item)
		if !ok || len(pair) != 2 {
			return fmt.Errorf("field Shareholders: invalid entry #%d", i)
		}

		var sh Shareholder
		sh.Receiver, err = hash160FromItem(pair[0])
		if err != nil {
			return fmt.Errorf("field Shareholders: entry #%d: %w", i, err)
		}
		bp, err := pair[1].TryInteger()
		if err != nil {
			return fmt.Errorf("field Shareholders: entry #%d: %w", i, err)
		}
		sh.SharesBp = bp.Int64()

		a.Shareholders = append(a.Shareholders, sh)
	}

	return nil
}

func hash160FromItem(item stackitem.Item) (util.Uint160, error) {
	if _, ok := item.(stackitem.Null); ok {
		return util.Uint160{}, nil
	}

	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	if len(b) == 0 {
		return util.Uint160{}, nil
	}

	return util.Uint160DecodeBytesBE(b)
}
