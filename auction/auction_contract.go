package auction

import (
	"github.com/nspcc-dev/marketplace-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Auction is a single Dutch auction record. The commission rate is
// snapshotted at creation, so later marketplace rate changes never affect
// live auctions.
type Auction struct {
	Seller       interop.Hash160
	StartPrice   int
	EndPrice     int
	StartTime    int
	Duration     int
	DropInterval int
	CommissionBp int
	Shareholders []common.Shareholder
}

const (
	ownerKey      = "owner"
	payoutKey     = "payoutScriptHash"
	commissionKey = "commissionRate"
	expectKey     = "custodyExpect"

	// maxDuration is 30 days in milliseconds.
	maxDuration = 30 * 24 * 60 * 60 * 1000
	// minDropInterval is the shortest allowed price step, 1 second.
	minDropInterval = 1000
	// minPrice is the global price floor.
	minPrice = 1
	// maxShareholders bounds the revenue share list of a single auction.
	maxShareholders = 10

	// maxTokenIDSize follows the NEP-11 token identifier limit.
	maxTokenIDSize = 64

	// paymentDetails marks GAS transfers initiated by the contract
	// itself, so the payment callback can tell them from stray deposits.
	paymentDetails = "auctionPayment"
)

var auctionPrefix = []byte("a")

func _deploy(data interface{}, isUpdate bool) {
	if isUpdate {
		args := data.([]interface{})
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		owner        interop.Hash160
		payout       interop.Hash160
		commissionBp int
	})

	if len(args.owner) != interop.Hash160Len {
		panic("incorrect length of owner script hash")
	}
	if len(args.payout) != interop.Hash160Len {
		panic("incorrect length of payout contract script hash")
	}
	if args.commissionBp < 0 || args.commissionBp > common.BPDenominator {
		panic("commission rate out of range")
	}

	ctx := storage.GetContext()
	storage.Put(ctx, ownerKey, args.owner)
	storage.Put(ctx, payoutKey, args.payout)
	storage.Put(ctx, commissionKey, args.commissionBp)

	runtime.Log("auction contract initialized")
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
	runtime.Log("auction contract updated")
}

// CreateAuction lists the token of the collection for sale at a price
// decaying from startPrice down to endPrice over the duration, stepped at
// dropInterval boundaries. The auction becomes active at startTime or
// right away if startTime is in the past. The seller must own the token;
// custody is taken by the contract until the auction is settled or
// withdrawn. Shareholder entries with a missing receiver or non-positive
// weight are dropped at write time.
//
// Can be invoked only by the seller. Produces AuctionCreated notification.
func CreateAuction(collection interop.Hash160, tokenId []byte, seller interop.Hash160, startPrice int, endPrice int, startTime int, duration int, dropInterval int, shareholders []common.Shareholder) {
	ctx := storage.GetContext()
	common.LockGuard(ctx)
	common.CheckOwnerWitness(seller)

	if len(collection) != interop.Hash160Len {
		panic("incorrect length of collection script hash")
	}
	if len(tokenId) == 0 || len(tokenId) > maxTokenIDSize {
		panic("invalid token id")
	}

	key := auctionKey(collection, tokenId)
	if storage.Get(ctx, key) != nil {
		panic("auction already exists for this token")
	}

	if duration > maxDuration {
		panic("duration above the limit")
	}
	if dropInterval < minDropInterval {
		panic("drop interval below the limit")
	}
	if duration <= dropInterval {
		panic("duration must exceed drop interval")
	}
	if endPrice < minPrice {
		panic("end price below the floor")
	}
	if startPrice <= endPrice {
		panic("start price must exceed end price")
	}

	list := filterShareholders(shareholders)

	now := runtime.GetTime()
	if startTime < now {
		startTime = now
	}

	a := Auction{
		Seller:       seller,
		StartPrice:   startPrice,
		EndPrice:     endPrice,
		StartTime:    startTime,
		Duration:     duration,
		DropInterval: dropInterval,
		CommissionBp: storage.Get(ctx, commissionKey).(int),
		Shareholders: list,
	}

	takeCustody(ctx, collection, tokenId, seller)
	common.SetSerialized(ctx, key, a)

	runtime.Notify("AuctionCreated", collection, tokenId, seller,
		startPrice, endPrice, startTime, duration, dropInterval)
	common.UnlockGuard(ctx)
}

// Price returns the current decayed price of the active auction.
func Price(collection interop.Hash160, tokenId []byte) int {
	return PriceAt(collection, tokenId, runtime.GetTime())
}

// PriceAt returns the decayed price of the active auction at the given
// millisecond timestamp. The decay is floor-stepped: the price drops by a
// fixed amount at every dropInterval boundary, stays at startPrice before
// the start and at endPrice after the full duration.
func PriceAt(collection interop.Hash160, tokenId []byte, at int) int {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, auctionKey(collection, tokenId))
	if data == nil {
		panic("no active auction for this token")
	}

	return currentPrice(std.Deserialize(data.([]byte)).(Auction), at)
}

// Bid settles the active auction: the bid amount is collected from the
// buyer, the decayed price is forwarded to the payout contract for
// distribution, the excess is refunded and the token custody moves to the
// buyer. The record is reset before any outbound transfer, so a reentrant
// call sees no active auction. A failed refund aborts the whole operation.
//
// Can be invoked by anyone but the seller; the bid amount must cover the
// current price. Produces AuctionBid notification.
func Bid(collection interop.Hash160, tokenId []byte, buyer interop.Hash160, amount int) {
	ctx := storage.GetContext()
	common.LockGuard(ctx)
	common.CheckWitness(buyer)

	key := auctionKey(collection, tokenId)
	data := storage.Get(ctx, key)
	if data == nil {
		panic("no active auction for this token")
	}
	a := std.Deserialize(data.([]byte)).(Auction)

	now := runtime.GetTime()
	if now < a.StartTime {
		panic("auction has not started yet")
	}
	if common.BytesEqual(buyer, a.Seller) {
		panic("seller cannot bid on own auction")
	}

	price := currentPrice(a, now)
	if amount < price {
		panic("bid amount below the current price")
	}

	storage.Delete(ctx, key)

	self := runtime.GetExecutingScriptHash()
	if !gas.Transfer(buyer, self, amount, []byte(paymentDetails)) {
		panic("failed to collect payment, aborting")
	}

	if price > 0 {
		payoutHash := storage.Get(ctx, payoutKey).(interop.Hash160)
		if !gas.Transfer(self, payoutHash, price, nil) {
			panic("failed to forward payment, aborting")
		}

		contract.Call(payoutHash, "payout", contract.All,
			a.Seller, collection, tokenId, price, a.Shareholders, a.CommissionBp)
	}

	if amount > price {
		if !gas.Transfer(self, buyer, amount-price, nil) {
			panic("failed to refund excess payment, aborting")
		}
	}

	transferToken(collection, tokenId, buyer)

	runtime.Notify("AuctionBid", collection, tokenId, a.Seller, buyer, price, amount)
	common.UnlockGuard(ctx)
}

// Withdraw cancels the fully decayed auction that got no bid and returns
// the token to the seller. Can be invoked only by the seller and only
// after the whole duration has elapsed.
//
// Produces AuctionWithdrawn notification.
func Withdraw(collection interop.Hash160, tokenId []byte) {
	ctx := storage.GetContext()
	common.LockGuard(ctx)

	key := auctionKey(collection, tokenId)
	data := storage.Get(ctx, key)
	if data == nil {
		panic("no active auction for this token")
	}
	a := std.Deserialize(data.([]byte)).(Auction)

	common.CheckOwnerWitness(a.Seller)

	if runtime.GetTime()-a.StartTime <= a.Duration {
		panic("auction is still running")
	}

	storage.Delete(ctx, key)
	transferToken(collection, tokenId, a.Seller)

	runtime.Notify("AuctionWithdrawn", collection, tokenId, a.Seller)
	common.UnlockGuard(ctx)
}

// GetAuction returns the active auction record of the token or an empty
// record if there is none.
func GetAuction(collection interop.Hash160, tokenId []byte) Auction {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, auctionKey(collection, tokenId))
	if data == nil {
		return Auction{}
	}

	return std.Deserialize(data.([]byte)).(Auction)
}

// CommissionRate returns the marketplace commission rate in basis points
// applied to auctions created from now on.
func CommissionRate() int {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, commissionKey).(int)
}

// SetCommissionRate updates the marketplace commission rate. Live auctions
// keep the rate snapshotted at their creation. Can be invoked only by the
// contract owner.
func SetCommissionRate(commissionBp int) {
	ctx := storage.GetContext()
	if !runtime.CheckWitness(contractOwner(ctx)) {
		panic("only owner can change contract settings")
	}
	if commissionBp < 0 || commissionBp > common.BPDenominator {
		panic("commission rate out of range")
	}

	storage.Put(ctx, commissionKey, commissionBp)
	runtime.Notify("CommissionRateUpdated", commissionBp)
}

// OnNEP11Payment is a callback for NEP-11 token transfers. Tokens are
// accepted only while the contract itself is pulling custody during
// CreateAuction; any other incoming token is rejected.
func OnNEP11Payment(from interop.Hash160, amount int, tokenId []byte, data interface{}) {
	ctx := storage.GetReadOnlyContext()
	expect := storage.Get(ctx, expectKey)
	if expect == nil || !common.BytesEqual(expect.([]byte), tokenId) {
		panic("unexpected token transfer")
	}
}

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// Only payments pulled by the contract itself during Bid are accepted.
func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
	caller := runtime.GetCallingScriptHash()
	if !common.BytesEqual(caller, interop.Hash160(gas.Hash)) {
		panic("only GAS can be accepted")
	}

	if data == nil || !common.BytesEqual(data.([]byte), []byte(paymentDetails)) {
		panic("direct deposits are not accepted")
	}
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func contractOwner(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, ownerKey).(interop.Hash160)
}

// currentPrice implements the floor-stepped linear decay. Integer division
// floors both the per-step drop and the number of elapsed steps, so the
// price path is a staircase ending at or slightly above endPrice on the
// final partial step.
func currentPrice(a Auction, at int) int {
	if at < a.StartTime {
		return a.StartPrice
	}

	elapsed := at - a.StartTime
	if elapsed > a.Duration {
		return a.EndPrice
	}

	stepCount := a.Duration / a.DropInterval
	perStepDrop := (a.StartPrice - a.EndPrice) / stepCount
	elapsedSteps := elapsed / a.DropInterval

	return a.StartPrice - elapsedSteps*perStepDrop
}

// filterShareholders drops unroutable entries and validates the remaining
// list: the receivers must fit the count limit and the weights must not
// give away more than the whole distributable pool.
func filterShareholders(shareholders []common.Shareholder) []common.Shareholder {
	filtered := []common.Shareholder{}
	total := 0

	for i := 0; i < len(shareholders); i++ {
		sh := shareholders[i]
		if len(sh.Receiver) != interop.Hash160Len || sh.SharesBp <= 0 {
			continue
		}

		total += sh.SharesBp
		filtered = append(filtered, sh)
	}

	if len(filtered) > maxShareholders {
		panic("too many shareholders")
	}
	if total > common.BPDenominator {
		panic("shareholder weights exceed 100%")
	}

	return filtered
}

// takeCustody pulls the token from the seller and verifies the contract
// ended up owning it, guarding against non-conforming collections.
func takeCustody(ctx storage.Context, collection interop.Hash160, tokenId []byte, seller interop.Hash160) {
	owner := contract.Call(collection, "ownerOf", contract.ReadOnly, tokenId).(interop.Hash160)
	if !common.BytesEqual(owner, seller) {
		panic("seller does not own the token")
	}

	self := runtime.GetExecutingScriptHash()

	storage.Put(ctx, expectKey, tokenId)
	ok := contract.Call(collection, "transfer", contract.All, self, tokenId, nil).(bool)
	storage.Delete(ctx, expectKey)

	if !ok {
		panic("failed to take token custody")
	}

	owner = contract.Call(collection, "ownerOf", contract.ReadOnly, tokenId).(interop.Hash160)
	if !common.BytesEqual(owner, self) {
		panic("failed to take token custody")
	}
}

func transferToken(collection interop.Hash160, tokenId []byte, to interop.Hash160) {
	ok := contract.Call(collection, "transfer", contract.All, to, tokenId, nil).(bool)
	if !ok {
		panic("token transfer failed, aborting")
	}
}

func auctionKey(collection interop.Hash160, tokenId []byte) []byte {
	return append(append(auctionPrefix, collection...), tokenId...)
}
