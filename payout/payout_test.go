package payout_test

import (
	"math/rand"
	"path"
	"testing"

	"github.com/nspcc-dev/marketplace-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	payoutPath   = "."
	royaltyPath  = "../royalty"
	relayPath    = "../internal/testcontracts/relay"
	sinkPath     = "../internal/testcontracts/sink"
	rejectPath   = "../internal/testcontracts/reject"
	reenterPath  = "../internal/testcontracts/reenter"
	nftMultiPath = "../internal/testcontracts/nftmulti"
)

type payoutEnv struct {
	e *neotest.Executor
	// payout is a committee (owner) invoker of the payout contract.
	payout *neotest.ContractInvoker
	hash   util.Uint160
	// relay is an allowlisted settlement front end funded with GAS.
	relay     *neotest.ContractInvoker
	relayHash util.Uint160

	commission util.Uint160
	treasury   util.Uint160
}

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func randomHash() util.Uint160 {
	var h util.Uint160
	rand.Read(h[:]) //nolint:staticcheck // SA1019: rand.Read has been deprecated since Go 1.20
	return h
}

func deployContract(t *testing.T, e *neotest.Executor, ctrPath string, args []interface{}) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, ctrPath, path.Join(ctrPath, "config.yml"))
	e.DeployContract(t, c, args)
	return c.Hash
}

func newPayoutEnv(t *testing.T, withTreasury bool, treasuryBp int64) *payoutEnv {
	e := newExecutor(t)

	env := &payoutEnv{
		e:          e,
		commission: e.NewAccount(t).ScriptHash(),
	}

	args := make([]interface{}, 4)
	args[0] = e.CommitteeHash
	args[1] = env.commission
	args[2] = []byte{}
	args[3] = treasuryBp
	if withTreasury {
		env.treasury = e.NewAccount(t).ScriptHash()
		args[2] = env.treasury
	}

	env.hash = deployContract(t, e, payoutPath, args)
	env.payout = e.CommitteeInvoker(env.hash)

	env.relayHash = deployContract(t, e, relayPath, nil)
	env.relay = e.CommitteeInvoker(env.relayHash)
	env.payout.Invoke(t, stackitem.Null{}, "addToAllowList", env.relayHash)

	// The relay distributes from its own balance, give it some GAS.
	gasHash := e.NativeHash(t, nativenames.Gas)
	vc := e.CommitteeInvoker(gasHash).WithSigners(e.Validator)
	vc.Invoke(t, true, "transfer",
		e.Validator.ScriptHash(), env.relayHash, int64(1_0000_0000), nil)

	return env
}

func (env *payoutEnv) balance(h util.Uint160) int64 {
	return env.e.Chain.GetUtilityTokenBalance(h).Int64()
}

// deployScheduledCollection deploys the royalty registry together with a
// multi-receiver collection carrying the given default schedule.
func (env *payoutEnv) deployScheduledCollection(t *testing.T, entries []interface{}) util.Uint160 {
	registryHash := deployContract(t, env.e, royaltyPath, []interface{}{env.e.CommitteeHash, int64(0)})
	collectionHash := deployContract(t, env.e, nftMultiPath, []interface{}{registryHash})

	registry := env.e.CommitteeInvoker(registryHash)
	registry.Invoke(t, stackitem.Null{}, "setDefaultRoyalties", collectionHash, entries)
	return collectionHash
}

func payoutEvents(aer *state.AppExecResult, contract util.Uint160, name string) []state.NotificationEvent {
	var found []state.NotificationEvent
	for _, ev := range aer.Events {
		if ev.ScriptHash == contract && ev.Name == name {
			found = append(found, ev)
		}
	}
	return found
}

func TestPayoutAllowList(t *testing.T) {
	env := newPayoutEnv(t, false, 0)
	c := env.payout

	c.Invoke(t, common.Version, "version")

	// The entry script of a transaction is never allowlisted.
	c.InvokeFail(t, "caller is not allowed to distribute payments", "payout",
		randomHash(), randomHash(), []byte("token"), 100, []interface{}{}, 0)
	c.InvokeFail(t, "caller is not allowed to deposit credits", "depositCredit",
		randomHash(), 100)

	member := randomHash()
	cAcc := c.WithSigners(c.NewAccount(t))
	cAcc.InvokeFail(t, "only owner can change contract settings", "addToAllowList", member)

	c.Invoke(t, stackitem.Null{}, "addToAllowList", member)
	c.InvokeFail(t, "member is already in the allow list", "addToAllowList", member)

	// Find iterates in key order, so compare as a set.
	s, err := c.TestInvoke(t, "allowList")
	require.NoError(t, err)
	var members [][]byte
	for _, item := range s.Top().Item().Value().([]stackitem.Item) {
		b, err := item.TryBytes()
		require.NoError(t, err)
		members = append(members, b)
	}
	require.ElementsMatch(t, [][]byte{env.relayHash.BytesBE(), member.BytesBE()}, members)

	c.Invoke(t, stackitem.Null{}, "removeFromAllowList", member)
	c.InvokeFail(t, "member is not in the allow list", "removeFromAllowList", member)
}

func TestPayoutShares(t *testing.T) {
	env := newPayoutEnv(t, false, 0)

	seller := randomHash()
	sh1, sh2 := randomHash(), randomHash()
	shareholders := []interface{}{
		[]interface{}{sh1, 6000},
		[]interface{}{sh2, 4000},
	}

	// No contract behind the collection hash means no royalties at all.
	collection := randomHash()

	h := env.relay.Invoke(t, stackitem.Null{}, "distribute",
		env.hash, seller, collection, []byte("token"), 74, shareholders, 0)

	// 74 -> 44 + 29 and the rounding dust goes to the seller.
	require.EqualValues(t, 44, env.balance(sh1))
	require.EqualValues(t, 29, env.balance(sh2))
	require.EqualValues(t, 1, env.balance(seller))
	require.EqualValues(t, 0, env.balance(env.hash))

	aer := env.relay.CheckHalt(t, h)
	completed := payoutEvents(aer, env.hash, "PayoutCompleted")
	require.Len(t, completed, 1)
	require.Equal(t, stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(collection.BytesBE()),
		stackitem.NewByteArray([]byte("token")),
		stackitem.NewByteArray(seller.BytesBE()),
		stackitem.Make(74),
		stackitem.Make(1),
	}), completed[0].Item)
	require.Len(t, payoutEvents(aer, env.hash, "SharePaid"), 2)
}

func TestPayoutCommission(t *testing.T) {
	t.Run("without treasury", func(t *testing.T) {
		env := newPayoutEnv(t, false, 0)
		seller := randomHash()

		env.relay.Invoke(t, stackitem.Null{}, "distribute",
			env.hash, seller, randomHash(), []byte("token"), 10000, []interface{}{}, 250)

		require.EqualValues(t, 250, env.balance(env.commission)-100_0000_0000)
		require.EqualValues(t, 9750, env.balance(seller))
	})

	t.Run("with treasury", func(t *testing.T) {
		env := newPayoutEnv(t, true, 1000)
		seller := randomHash()

		env.relay.Invoke(t, stackitem.Null{}, "distribute",
			env.hash, seller, randomHash(), []byte("token"), 10000, []interface{}{}, 250)

		// The treasury cut is 10% of the 250 commission, not of the price.
		require.EqualValues(t, 25, env.balance(env.treasury)-100_0000_0000)
		require.EqualValues(t, 225, env.balance(env.commission)-100_0000_0000)
		require.EqualValues(t, 9750, env.balance(seller))
	})
}

func TestPayoutRoyalties(t *testing.T) {
	env := newPayoutEnv(t, false, 0)

	r1, r2 := randomHash(), randomHash()
	collection := env.deployScheduledCollection(t, []interface{}{
		[]interface{}{r1, 500},
		[]interface{}{r2, 300},
	})

	seller := randomHash()
	env.relay.Invoke(t, stackitem.Null{}, "distribute",
		env.hash, seller, collection, []byte("token"), 10000, []interface{}{}, 0)

	require.EqualValues(t, 500, env.balance(r1))
	require.EqualValues(t, 300, env.balance(r2))
	require.EqualValues(t, 9200, env.balance(seller))
}

func TestPayoutSelfRoyalty(t *testing.T) {
	env := newPayoutEnv(t, false, 0)

	seller, other := randomHash(), randomHash()
	collection := env.deployScheduledCollection(t, []interface{}{
		[]interface{}{seller, 500},
		[]interface{}{other, 300},
	})

	env.relay.Invoke(t, stackitem.Null{}, "distribute",
		env.hash, seller, collection, []byte("token"), 10000, []interface{}{}, 0)

	// The seller's own royalty entry is skipped, not paid twice.
	require.EqualValues(t, 300, env.balance(other))
	require.EqualValues(t, 9700, env.balance(seller))
}

func TestPayoutRoyaltyOverRemainder(t *testing.T) {
	env := newPayoutEnv(t, false, 0)

	collection := env.deployScheduledCollection(t, []interface{}{
		[]interface{}{randomHash(), 2500},
	})

	// 99% commission leaves less than the 25% royalty asks for.
	env.relay.InvokeFail(t, "royalty amount exceeds the sale remainder", "distribute",
		env.hash, randomHash(), collection, []byte("token"), 10000, []interface{}{}, 9900)
}

func TestPayoutCreditOnUndeliverable(t *testing.T) {
	env := newPayoutEnv(t, false, 0)

	sinkHash := deployContract(t, env.e, sinkPath, nil)
	collection := env.deployScheduledCollection(t, []interface{}{
		[]interface{}{sinkHash, 500},
	})

	seller := randomHash()
	h := env.relay.Invoke(t, stackitem.Null{}, "distribute",
		env.hash, seller, collection, []byte("token"), 10000, []interface{}{}, 0)

	// The sink cannot receive GAS, its royalty stays on the contract
	// balance as a credit while everyone else is paid out.
	env.payout.Invoke(t, 500, "creditOf", sinkHash)
	require.EqualValues(t, 500, env.balance(env.hash))
	require.EqualValues(t, 9500, env.balance(seller))

	aer := env.relay.CheckHalt(t, h)
	require.Len(t, payoutEvents(aer, env.hash, "TransferFailed"), 1)

	// The credited withdrawal is the only transfer allowed to fail hard:
	// it aborts and the ledger entry survives.
	sink := env.e.CommitteeInvoker(sinkHash)
	sink.InvokeFail(t, "method 'onNEP17Payment' not found", "claim", env.hash)
	env.payout.Invoke(t, 500, "creditOf", sinkHash)
}

// creditOf reads the ledger entry without asserting a particular value.
func (env *payoutEnv) creditOf(t *testing.T, recipient util.Uint160) int64 {
	s, err := env.payout.TestInvoke(t, "creditOf", recipient)
	require.NoError(t, err)
	credit, err := s.Top().Item().TryInteger()
	require.NoError(t, err)
	return credit.Int64()
}

func TestPayoutThrowingRecipient(t *testing.T) {
	env := newPayoutEnv(t, false, 0)

	rejectHash := deployContract(t, env.e, rejectPath, nil)
	collection := env.deployScheduledCollection(t, []interface{}{
		[]interface{}{rejectHash, 500},
	})

	seller := randomHash()
	h := env.relay.Invoke(t, stackitem.Null{}, "distribute",
		env.hash, seller, collection, []byte("token"), 10000, []interface{}{}, 0)

	// A receive handler throwing mid-settlement must not abort it: everyone
	// else is paid and the refused royalty is accounted exactly once, either
	// delivered by balance or held on the contract as a credit.
	require.EqualValues(t, 9500, env.balance(seller))

	credit := env.creditOf(t, rejectHash)
	require.EqualValues(t, 500, env.balance(rejectHash)+credit)
	require.EqualValues(t, credit, env.balance(env.hash))

	aer := env.relay.CheckHalt(t, h)
	require.Len(t, payoutEvents(aer, env.hash, "PayoutCompleted"), 1)
}

func TestPayoutReentrancyGuard(t *testing.T) {
	env := newPayoutEnv(t, false, 0)

	reenterHash := deployContract(t, env.e, reenterPath, []interface{}{env.hash})
	env.relay.Invoke(t, stackitem.Null{}, "deposit", env.hash, reenterHash, 300)

	// The withdrawal transfer calls the recipient's receive handler, which
	// immediately re-enters WithdrawCredit.
	reenter := env.e.CommitteeInvoker(reenterHash)
	reenter.InvokeFail(t, common.ErrReentrantCall, "claim")

	env.payout.Invoke(t, 300, "creditOf", reenterHash)
}

func TestPayoutReentrantRecipient(t *testing.T) {
	env := newPayoutEnv(t, false, 0)

	reenterHash := deployContract(t, env.e, reenterPath, []interface{}{env.hash})
	collection := env.deployScheduledCollection(t, []interface{}{
		[]interface{}{reenterHash, 500},
	})

	seller := randomHash()
	env.relay.Invoke(t, stackitem.Null{}, "distribute",
		env.hash, seller, collection, []byte("token"), 10000, []interface{}{}, 0)

	// The nested call is cut off by the guard and the failure is contained
	// like any other throwing recipient.
	require.EqualValues(t, 9500, env.balance(seller))
	require.EqualValues(t, 500, env.balance(reenterHash)+env.creditOf(t, reenterHash))
}

func TestPayoutCreditWithdraw(t *testing.T) {
	env := newPayoutEnv(t, false, 0)

	acc := env.e.NewAccount(t)
	accHash := acc.ScriptHash()

	env.relay.InvokeFail(t, "non-positive credit amount", "deposit", env.hash, accHash, 0)
	env.relay.Invoke(t, stackitem.Null{}, "deposit", env.hash, accHash, 300)
	env.payout.Invoke(t, 300, "creditOf", accHash)

	// Only the credited account itself may withdraw.
	stranger := env.payout.WithSigners(env.e.NewAccount(t))
	stranger.InvokeFail(t, common.ErrOwnerWitnessFailed, "withdrawCredit", accHash)

	cAcc := env.payout.WithSigners(acc)
	balanceBefore := env.balance(env.hash)
	cAcc.Invoke(t, stackitem.Null{}, "withdrawCredit", accHash)

	env.payout.Invoke(t, 0, "creditOf", accHash)
	require.EqualValues(t, balanceBefore-300, env.balance(env.hash))

	cAcc.InvokeFail(t, "no credit to withdraw", "withdrawCredit", accHash)
}

func TestPayoutCreditClaimByContract(t *testing.T) {
	env := newPayoutEnv(t, false, 0)

	env.relay.Invoke(t, stackitem.Null{}, "deposit", env.hash, env.relayHash, 400)
	env.payout.Invoke(t, 400, "creditOf", env.relayHash)

	relayBalance := env.balance(env.relayHash)
	env.relay.Invoke(t, stackitem.Null{}, "claim", env.hash)

	env.payout.Invoke(t, 0, "creditOf", env.relayHash)
	require.EqualValues(t, relayBalance+400, env.balance(env.relayHash))
}

func TestPayoutSetReceivers(t *testing.T) {
	env := newPayoutEnv(t, true, 1000)
	c := env.payout

	cAcc := c.WithSigners(c.NewAccount(t))
	cAcc.InvokeFail(t, "only owner can change contract settings",
		"setCommissionReceiver", randomHash())
	cAcc.InvokeFail(t, "only owner can change contract settings",
		"setTreasuryReceiver", randomHash())

	newCommission := randomHash()
	c.Invoke(t, stackitem.Null{}, "setCommissionReceiver", newCommission)

	// Both treasury update flavors notify the receiver as a byte string.
	newTreasury := randomHash()
	h := c.Invoke(t, stackitem.Null{}, "setTreasuryReceiver", newTreasury)
	aer := c.CheckHalt(t, h)
	updated := payoutEvents(aer, env.hash, "TreasuryReceiverUpdated")
	require.Len(t, updated, 1)
	require.Equal(t, stackitem.NewArray([]stackitem.Item{
		stackitem.NewByteArray(newTreasury.BytesBE()),
	}), updated[0].Item)

	// An empty treasury receiver disables the split entirely.
	c.Invoke(t, stackitem.Null{}, "setTreasuryReceiver", []byte{})

	seller := randomHash()
	env.relay.Invoke(t, stackitem.Null{}, "distribute",
		env.hash, seller, randomHash(), []byte("token"), 10000, []interface{}{}, 250)

	require.EqualValues(t, 250, env.balance(newCommission))
	require.EqualValues(t, 100_0000_0000, env.balance(env.treasury))
}
