package payout

import (
	"github.com/nspcc-dev/marketplace-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	ownerKey              = "owner"
	commissionReceiverKey = "commissionReceiver"
	treasuryReceiverKey   = "treasuryReceiver"
	treasuryRateKey       = "treasuryRate"

	// maxShareholders bounds the revenue share list of a single payout.
	maxShareholders = 10
	// maxRoyaltyReceivers bounds the royalty breakdown a collection may
	// impose on a single payout.
	maxRoyaltyReceivers = 6
)

const (
	royaltyNone = iota
	royaltySingle
	royaltyMulti
)

var (
	allowPrefix  = []byte("l")
	creditPrefix = []byte("d")
)

func _deploy(data interface{}, isUpdate bool) {
	if isUpdate {
		args := data.([]interface{})
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		owner              interop.Hash160
		commissionReceiver interop.Hash160
		treasuryReceiver   interop.Hash160
		treasuryBp         int
	})

	if len(args.owner) != interop.Hash160Len {
		panic("incorrect length of owner script hash")
	}
	if len(args.commissionReceiver) != interop.Hash160Len {
		panic("incorrect length of commission receiver script hash")
	}
	if len(args.treasuryReceiver) != 0 && len(args.treasuryReceiver) != interop.Hash160Len {
		panic("incorrect length of treasury receiver script hash")
	}
	if args.treasuryBp < 0 || args.treasuryBp > common.BPDenominator {
		panic("treasury rate out of range")
	}

	ctx := storage.GetContext()
	storage.Put(ctx, ownerKey, args.owner)
	storage.Put(ctx, commissionReceiverKey, args.commissionReceiver)
	if len(args.treasuryReceiver) == interop.Hash160Len {
		storage.Put(ctx, treasuryReceiverKey, args.treasuryReceiver)
	}
	storage.Put(ctx, treasuryRateKey, args.treasuryBp)

	runtime.Log("payout contract initialized")
}

// Update method updates contract source code and manifest. Can be invoked
// only by the contract owner.
func Update(script []byte, manifest []byte, data interface{}) {
	ctx := storage.GetReadOnlyContext()
	if !runtime.CheckWitness(contractOwner(ctx)) {
		panic("only owner can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("payout contract updated")
}

// Payout distributes a sale payment that already sits on the contract
// balance. The waterfall deducts the marketplace commission (with an
// optional treasury cut peeled off the commission), then royalties
// resolved from the collection, then the revenue shares, and sends
// whatever remains to the seller. Can be invoked only by allowlisted
// contracts.
//
// Every outgoing transfer is best-effort: an amount that cannot be
// delivered is credited to the recipient in the credit ledger and the
// distribution continues, so a single broken recipient cannot block the
// settlement for everyone else.
//
// Produces CommissionTaken, RoyaltyPaid, SharePaid, TransferFailed and
// PayoutCompleted notifications.
func Payout(seller interop.Hash160, collection interop.Hash160, tokenId []byte, price int, shareholders []common.Shareholder, commissionBp int) {
	ctx := storage.GetContext()
	common.LockGuard(ctx)

	caller := runtime.GetCallingScriptHash()
	if !isAllowed(ctx, caller) {
		panic("caller is not allowed to distribute payments")
	}

	if len(seller) != interop.Hash160Len {
		panic("incorrect length of seller script hash")
	}
	if price <= 0 {
		panic("non-positive payment amount")
	}
	if commissionBp < 0 || commissionBp > common.BPDenominator {
		panic("commission rate out of range")
	}
	if len(shareholders) > maxShareholders {
		panic("too many shareholders")
	}

	remainder := price

	if commissionBp > 0 {
		commission := common.BPShare(price, commissionBp)
		if commission > 0 {
			treasuryCut := 0
			treasury := treasuryReceiver(ctx)
			// The treasury share is a fraction of the commission
			// already taken, not of the full price.
			if len(treasury) == interop.Hash160Len {
				treasuryCut = common.BPShare(commission, storage.Get(ctx, treasuryRateKey).(int))
			}

			if treasuryCut > 0 {
				push(ctx, treasury, treasuryCut)
			}
			push(ctx, commissionReceiver(ctx), commission-treasuryCut)

			remainder -= commission
			runtime.Notify("CommissionTaken", collection, tokenId, commission-treasuryCut, treasuryCut)
		}
	}

	switch royaltyMode(collection) {
	case royaltyMulti:
		shares := contract.Call(collection, "multiRoyaltyInfo", contract.ReadOnly,
			tokenId, price).([]common.RoyaltyShare)

		count := len(shares)
		if count > maxRoyaltyReceivers {
			count = maxRoyaltyReceivers
		}

		for i := 0; i < count; i++ {
			s := shares[i]
			if len(s.Receiver) != interop.Hash160Len || s.Amount <= 0 {
				continue
			}
			// Royalties are never paid to the seller itself.
			if common.BytesEqual(s.Receiver, seller) {
				continue
			}
			if s.Amount > remainder {
				panic("royalty amount exceeds the sale remainder")
			}

			remainder -= s.Amount
			push(ctx, s.Receiver, s.Amount)
			runtime.Notify("RoyaltyPaid", collection, tokenId, s.Receiver, s.Amount)
		}
	case royaltySingle:
		s := contract.Call(collection, "royaltyInfo", contract.ReadOnly,
			tokenId, price).(common.RoyaltyShare)

		if len(s.Receiver) == interop.Hash160Len && s.Amount > 0 && !common.BytesEqual(s.Receiver, seller) {
			if s.Amount > remainder {
				panic("royalty amount exceeds the sale remainder")
			}

			remainder -= s.Amount
			push(ctx, s.Receiver, s.Amount)
			runtime.Notify("RoyaltyPaid", collection, tokenId, s.Receiver, s.Amount)
		}
	}

	if len(shareholders) > 0 {
		pool := remainder
		for i := 0; i < len(shareholders); i++ {
			sh := shareholders[i]
			if len(sh.Receiver) != interop.Hash160Len || sh.SharesBp <= 0 {
				continue
			}

			share := common.BPShare(pool, sh.SharesBp)
			if share <= 0 {
				continue
			}
			if share > remainder {
				panic("revenue share exceeds the sale remainder")
			}

			remainder -= share
			push(ctx, sh.Receiver, share)
			runtime.Notify("SharePaid", collection, tokenId, sh.Receiver, share)
		}
	}

	if remainder > 0 {
		push(ctx, seller, remainder)
	}

	runtime.Notify("PayoutCompleted", collection, tokenId, seller, price, remainder)
	common.UnlockGuard(ctx)
}

// DepositCredit adds the amount to the credit ledger entry of the
// recipient without attempting a transfer. It is used by allowlisted
// contracts that already know the transfer would fail; the funds must
// have been moved to this contract beforehand.
//
// Produces CreditDeposited notification.
func DepositCredit(recipient interop.Hash160, amount int) {
	ctx := storage.GetContext()

	if !isAllowed(ctx, runtime.GetCallingScriptHash()) {
		panic("caller is not allowed to deposit credits")
	}
	if len(recipient) != interop.Hash160Len {
		panic("incorrect length of recipient script hash")
	}
	if amount <= 0 {
		panic("non-positive credit amount")
	}

	addCredit(ctx, recipient, amount)
	runtime.Notify("CreditDeposited", recipient, amount)
}

// WithdrawCredit drains the whole credit ledger entry of the recipient and
// transfers it in a single payment. Can be invoked by the credited account
// itself (directly or as a calling contract). Unlike payouts, the final
// transfer here is allowed to fail hard: a failure aborts the call and the
// ledger entry stays intact.
//
// Produces CreditWithdrawn notification.
func WithdrawCredit(recipient interop.Hash160) {
	ctx := storage.GetContext()
	common.LockGuard(ctx)

	if !isUsableAddress(recipient) {
		panic(common.ErrOwnerWitnessFailed)
	}

	key := append(creditPrefix, recipient...)
	data := storage.Get(ctx, key)
	if data == nil {
		panic("no credit to withdraw")
	}
	amount := data.(int)

	storage.Delete(ctx, key)

	if !gas.Transfer(runtime.GetExecutingScriptHash(), recipient, amount, nil) {
		panic("failed to transfer credit, aborting")
	}

	runtime.Notify("CreditWithdrawn", recipient, amount)
	common.UnlockGuard(ctx)
}

// CreditOf returns the accumulated undelivered amount of the recipient.
func CreditOf(recipient interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, append(creditPrefix, recipient...))
	if data == nil {
		return 0
	}

	return data.(int)
}

// AddToAllowList permits the contract to invoke Payout and DepositCredit.
// Can be invoked only by the contract owner; adding a member twice is an
// error.
func AddToAllowList(member interop.Hash160) {
	ctx := storage.GetContext()
	checkOwnerAccess(ctx)

	if len(member) != interop.Hash160Len {
		panic("incorrect length of member script hash")
	}

	key := append(allowPrefix, member...)
	if storage.Get(ctx, key) != nil {
		panic("member is already in the allow list")
	}

	storage.Put(ctx, key, []byte{1})
	runtime.Notify("AllowListUpdated", member, true)
}

// RemoveFromAllowList removes the previously added member of the allow
// list. Can be invoked only by the contract owner; removing an absent
// member is an error.
func RemoveFromAllowList(member interop.Hash160) {
	ctx := storage.GetContext()
	checkOwnerAccess(ctx)

	key := append(allowPrefix, member...)
	if storage.Get(ctx, key) == nil {
		panic("member is not in the allow list")
	}

	storage.Delete(ctx, key)
	runtime.Notify("AllowListUpdated", member, false)
}

// AllowList returns script hashes of all allowlisted contracts.
func AllowList() []interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	result := []interop.Hash160{}

	it := storage.Find(ctx, allowPrefix, storage.KeysOnly|storage.RemovePrefix)
	for iterator.Next(it) {
		result = append(result, iterator.Value(it).(interop.Hash160))
	}

	return result
}

// SetCommissionReceiver updates the account receiving marketplace
// commissions. Can be invoked only by the contract owner.
func SetCommissionReceiver(receiver interop.Hash160) {
	ctx := storage.GetContext()
	checkOwnerAccess(ctx)

	if len(receiver) != interop.Hash160Len {
		panic("incorrect length of receiver script hash")
	}

	storage.Put(ctx, commissionReceiverKey, receiver)
	runtime.Notify("CommissionReceiverUpdated", receiver)
}

// SetTreasuryReceiver updates the account receiving the treasury cut of
// the commission. An empty receiver disables the treasury split. Can be
// invoked only by the contract owner.
func SetTreasuryReceiver(receiver interop.Hash160) {
	ctx := storage.GetContext()
	checkOwnerAccess(ctx)

	if len(receiver) == 0 {
		storage.Delete(ctx, treasuryReceiverKey)
		runtime.Notify("TreasuryReceiverUpdated", []byte{})
		return
	}

	if len(receiver) != interop.Hash160Len {
		panic("incorrect length of receiver script hash")
	}

	storage.Put(ctx, treasuryReceiverKey, receiver)
	runtime.Notify("TreasuryReceiverUpdated", []byte(receiver))
}

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// Sale proceeds arrive here from settlement front ends before their Payout
// invocation.
func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
	caller := runtime.GetCallingScriptHash()
	if !common.BytesEqual(caller, interop.Hash160(gas.Hash)) {
		panic("only GAS can be accepted")
	}
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func contractOwner(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, ownerKey).(interop.Hash160)
}

func checkOwnerAccess(ctx storage.Context) {
	if !runtime.CheckWitness(contractOwner(ctx)) {
		panic("only owner can change contract settings")
	}
}

func commissionReceiver(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, commissionReceiverKey).(interop.Hash160)
}

func treasuryReceiver(ctx storage.Context) interop.Hash160 {
	data := storage.Get(ctx, treasuryReceiverKey)
	if data == nil {
		return nil
	}

	return data.(interop.Hash160)
}

func isAllowed(ctx storage.Context, caller interop.Hash160) bool {
	if len(caller) != interop.Hash160Len {
		return false
	}

	return storage.Get(ctx, append(allowPrefix, caller...)) != nil
}

// isUsableAddress checks if the withdrawing account is either the signing
// wallet or the calling contract itself.
func isUsableAddress(addr interop.Hash160) bool {
	if len(addr) == interop.Hash160Len {
		if runtime.CheckWitness(addr) {
			return true
		}

		callingScriptHash := runtime.GetCallingScriptHash()
		if common.BytesEqual(callingScriptHash, addr) {
			return true
		}
	}

	return false
}

// push transfers the amount from the contract balance to the recipient if
// it can be delivered, otherwise records a credit ledger entry. A contract
// recipient without the NEP-17 receive handler is known to be undeliverable
// up front, so no transfer is attempted for it; an exception thrown by a
// receive handler is contained and cannot abort the distribution. Failed
// deliveries are never retried automatically; recovery goes through
// WithdrawCredit.
func push(ctx storage.Context, to interop.Hash160, amount int) {
	if deliverable(to) && tryTransfer(to, amount) {
		return
	}

	addCredit(ctx, to, amount)
	runtime.Notify("TransferFailed", to, amount)
}

// tryTransfer sends the amount to the recipient, containing any exception
// thrown by the recipient's receive handler. NEP-17 updates balances before
// the receive callback runs, so after a contained exception the balance
// delta tells whether the payment was actually delivered; crediting a
// delivered amount would pay it twice.
func tryTransfer(to interop.Hash160, amount int) (delivered bool) {
	self := runtime.GetExecutingScriptHash()
	before := gas.BalanceOf(self)

	defer func() {
		if recover() != nil {
			delivered = gas.BalanceOf(self) == before-amount
		}
	}()

	return gas.Transfer(self, to, amount, nil)
}

func deliverable(to interop.Hash160) bool {
	c := management.GetContract(to)
	if c == nil {
		return true
	}

	methods := c.Manifest.ABI.Methods
	for i := 0; i < len(methods); i++ {
		if methods[i].Name == "onNEP17Payment" {
			return true
		}
	}

	return false
}

func addCredit(ctx storage.Context, to interop.Hash160, amount int) {
	key := append(creditPrefix, to...)
	credit := 0
	if data := storage.Get(ctx, key); data != nil {
		credit = data.(int)
	}

	storage.Put(ctx, key, credit+amount)
}

// royaltyMode detects the royalty capability of the collection contract by
// its manifest: a multi-receiver breakdown, a single-receiver one or no
// royalty support at all.
func royaltyMode(collection interop.Hash160) int {
	c := management.GetContract(collection)
	if c == nil {
		return royaltyNone
	}

	mode := royaltyNone
	methods := c.Manifest.ABI.Methods
	for i := 0; i < len(methods); i++ {
		name := methods[i].Name
		if name == "multiRoyaltyInfo" {
			return royaltyMulti
		}
		if name == "royaltyInfo" {
			mode = royaltySingle
		}
	}

	return mode
}
