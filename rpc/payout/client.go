// Package payout contains RPC wrappers for the marketplace Payout contract.
package payout

import (
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
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

// CreditOf invokes `creditOf` method of contract.
func (c *ContractReader) CreditOf(recipient util.Uint160) (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "creditOf", recipient))
}

// AllowList invokes `allowList` method of contract.
func (c *ContractReader) AllowList() ([]util.Uint160, error) {
	return unwrap.ArrayOfUint160(c.invoker.Call(c.hash, "allowList"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// WithdrawCredit creates a transaction invoking `withdrawCredit` method of
// the contract. This transaction is signed and immediately sent to the
// network. The values returned are its hash, ValidUntilBlock value and error
// if any.
func (c *Contract) WithdrawCredit(recipient util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "withdrawCredit", recipient)
}

// AddToAllowList creates a transaction invoking `addToAllowList` method of
// the contract. This transaction is signed and immediately sent to the
// network. The values returned are its hash, ValidUntilBlock value and error
// if any.
func (c *Contract) AddToAllowList(member util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "addToAllowList", member)
}

// RemoveFromAllowList creates a transaction invoking `removeFromAllowList`
// method of the contract. This transaction is signed and immediately sent to
// the network. The values returned are its hash, ValidUntilBlock value and
// error if any.
func (c *Contract) RemoveFromAllowList(member util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "removeFromAllowList", member)
}

// SetCommissionReceiver creates a transaction invoking
// `setCommissionReceiver` method of the contract. This transaction is signed
// and immediately sent to the network. The values returned are its hash,
// ValidUntilBlock value and error if any.
func (c *Contract) SetCommissionReceiver(receiver util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setCommissionReceiver", receiver)
}

// SetTreasuryReceiver creates a transaction invoking `setTreasuryReceiver`
// method of the contract. A zero receiver disables the treasury split. This
// transaction is signed and immediately sent to the network. The values
// returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SetTreasuryReceiver(receiver util.Uint160) (util.Uint256, uint32, error) {
	if receiver.Equals(util.Uint160{}) {
		return c.actor.SendCall(c.hash, "setTreasuryReceiver", []byte{})
	}
	return c.actor.SendCall(c.hash, "setTreasuryReceiver", receiver)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network. The values
// returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}
