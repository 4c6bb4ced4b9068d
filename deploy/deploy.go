/*
Package deploy provides deployment routine of the marketplace contracts.
*/
package deploy

import (
	"context"
	"errors"
	"fmt"

	payoutrpc "github.com/nspcc-dev/marketplace-contract/rpc/payout"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services of a particular Neo blockchain network required
// for the marketplace deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to
	// the blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by
	// its address. GetContractStateByHash returns an error with 'Unknown
	// contract' substring if the requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// CommonDeployPrm groups common deployment parameters of a smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// RoyaltyContractPrm groups deployment parameters of the Royalty contract.
type RoyaltyContractPrm struct {
	Common CommonDeployPrm

	// Schedule weight cap in basis points, the contract default when zero.
	CapBp int64
}

// PayoutContractPrm groups deployment parameters of the Payout contract.
type PayoutContractPrm struct {
	Common CommonDeployPrm

	CommissionReceiver util.Uint160

	// Zero treasury receiver disables the treasury split.
	TreasuryReceiver util.Uint160
	TreasuryRateBp   int64
}

// AuctionContractPrm groups deployment parameters of the Auction contract.
type AuctionContractPrm struct {
	Common CommonDeployPrm

	CommissionRateBp int64
}

// Prm groups all parameters of the marketplace deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance hosting the marketplace.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be
	// unlocked). It becomes the owner of all deployed contracts.
	LocalAccount *wallet.Account

	RoyaltyContract RoyaltyContractPrm
	PayoutContract  PayoutContractPrm
	AuctionContract AuctionContractPrm
}

// Addresses groups on-chain addresses of the deployed marketplace contracts.
type Addresses struct {
	Royalty util.Uint160
	Payout  util.Uint160
	Auction util.Uint160
}

// Deploy sets the marketplace suite up on the Neo network represented by
// given Prm.Blockchain: the Royalty registry, the Payout distributor and
// the Auction contract wired to it and allowlisted in it. Deploy is
// idempotent: contracts already present on the chain are left untouched, so
// an interrupted deployment can simply be re-run.
func Deploy(ctx context.Context, prm Prm) (*Addresses, error) {
	switch {
	case prm.Logger == nil:
		return nil, errors.New("missing logger")
	case prm.Blockchain == nil:
		return nil, errors.New("missing blockchain client")
	case prm.LocalAccount == nil:
		return nil, errors.New("missing local account")
	case prm.PayoutContract.CommissionReceiver.Equals(util.Uint160{}):
		return nil, errors.New("missing commission receiver")
	}

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return nil, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	d := deployer{
		ctx:   ctx,
		log:   prm.Logger,
		chain: prm.Blockchain,
		act:   act,
		mgmt:  management.New(act),
	}
	owner := prm.LocalAccount.ScriptHash()

	var res Addresses

	res.Royalty, err = d.syncContract(prm.RoyaltyContract.Common,
		royaltyDeployArgs(owner, prm.RoyaltyContract))
	if err != nil {
		return nil, fmt.Errorf("sync Royalty contract with the chain: %w", err)
	}

	res.Payout, err = d.syncContract(prm.PayoutContract.Common,
		payoutDeployArgs(owner, prm.PayoutContract))
	if err != nil {
		return nil, fmt.Errorf("sync Payout contract with the chain: %w", err)
	}

	res.Auction, err = d.syncContract(prm.AuctionContract.Common,
		auctionDeployArgs(owner, res.Payout, prm.AuctionContract))
	if err != nil {
		return nil, fmt.Errorf("sync Auction contract with the chain: %w", err)
	}

	err = d.syncAllowList(res.Payout, res.Auction)
	if err != nil {
		return nil, fmt.Errorf("allowlist Auction contract in the Payout contract: %w", err)
	}

	prm.Logger.Info("marketplace contracts are ready",
		zap.Stringer("royalty", res.Royalty),
		zap.Stringer("payout", res.Payout),
		zap.Stringer("auction", res.Auction))

	return &res, nil
}

func royaltyDeployArgs(owner util.Uint160, prm RoyaltyContractPrm) []any {
	return []any{owner, prm.CapBp}
}

func payoutDeployArgs(owner util.Uint160, prm PayoutContractPrm) []any {
	var treasury any = []byte{}
	if !prm.TreasuryReceiver.Equals(util.Uint160{}) {
		treasury = prm.TreasuryReceiver
	}

	return []any{owner, prm.CommissionReceiver, treasury, prm.TreasuryRateBp}
}

func auctionDeployArgs(owner util.Uint160, payout util.Uint160, prm AuctionContractPrm) []any {
	return []any{owner, payout, prm.CommissionRateBp}
}

type deployer struct {
	ctx   context.Context
	log   *zap.Logger
	chain Blockchain
	act   *actor.Actor
	mgmt  *management.Contract
}

// syncContract deploys the contract unless it is already on the chain. The
// address is a function of the deploying account and the contract itself, so
// the check is a simple state lookup.
func (d *deployer) syncContract(prm CommonDeployPrm, deployArgs []any) (util.Uint160, error) {
	if err := d.ctx.Err(); err != nil {
		return util.Uint160{}, err
	}

	addr := state.CreateContractHash(d.act.Sender(), prm.NEF.Checksum, prm.Manifest.Name)

	alreadyOnChain, err := d.chain.GetContractStateByHash(addr)
	if err == nil && alreadyOnChain != nil {
		d.log.Info("contract is already on the chain",
			zap.String("name", prm.Manifest.Name), zap.Stringer("address", addr))
		return addr, nil
	}

	d.log.Info("deploying contract...",
		zap.String("name", prm.Manifest.Name), zap.Stringer("address", addr))

	aer, err := d.act.Wait(d.mgmt.Deploy(&prm.NEF, &prm.Manifest, deployArgs))
	if err != nil {
		return util.Uint160{}, fmt.Errorf("deploy transaction: %w", err)
	}
	if aer.VMState != vmstate.Halt {
		return util.Uint160{}, fmt.Errorf("deploy transaction failed: %s", aer.FaultException)
	}

	d.log.Info("contract successfully deployed",
		zap.String("name", prm.Manifest.Name), zap.Stringer("address", addr))

	return addr, nil
}

// syncAllowList permits the auction contract to distribute payments through
// the payout contract, skipping the call if it is already allowlisted.
func (d *deployer) syncAllowList(payout, auction util.Uint160) error {
	if err := d.ctx.Err(); err != nil {
		return err
	}

	payoutContract := payoutrpc.New(d.act, payout)

	members, err := payoutContract.AllowList()
	if err != nil {
		return fmt.Errorf("read allow list: %w", err)
	}

	for i := range members {
		if members[i].Equals(auction) {
			d.log.Info("auction contract is already allowlisted")
			return nil
		}
	}

	aer, err := d.act.Wait(payoutContract.AddToAllowList(auction))
	if err != nil {
		return fmt.Errorf("addToAllowList transaction: %w", err)
	}
	if aer.VMState != vmstate.Halt {
		return fmt.Errorf("addToAllowList transaction failed: %s", aer.FaultException)
	}

	d.log.Info("auction contract successfully allowlisted")
	return nil
}
