package royalty

import (
	"github.com/nspcc-dev/marketplace-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	ownerKey = "owner"
	capKey   = "royaltyCap"

	// defaultCapBp limits the total royalty weight of a schedule to 25%
	// of the sale price unless another cap is given at deploy.
	defaultCapBp = 2500
)

var (
	defaultPrefix  = []byte("d")
	tokenPrefix    = []byte("t")
	receiverPrefix = []byte("r")
)

func _deploy(data interface{}, isUpdate bool) {
	if isUpdate {
		args := data.([]interface{})
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		owner interop.Hash160
		capBp int
	})

	if len(args.owner) != interop.Hash160Len {
		panic("incorrect length of owner script hash")
	}

	capBp := args.capBp
	if capBp <= 0 {
		capBp = defaultCapBp
	}
	if capBp > common.BPDenominator {
		panic("royalty cap above 100%")
	}

	ctx := storage.GetContext()
	storage.Put(ctx, ownerKey, args.owner)
	storage.Put(ctx, capKey, capBp)

	runtime.Log("royalty contract initialized")
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
	runtime.Log("royalty contract updated")
}

// SetDefaultRoyalties replaces the royalty schedule applied to every token
// of the collection that has no per-token schedule. Entries with a missing
// receiver or non-positive weight are dropped; the remaining weights must
// not exceed the configured cap, otherwise nothing is written. An empty
// resulting schedule removes the default one.
//
// Can be invoked by the collection contract itself or by the contract
// owner. Produces RoyaltiesUpdated notification with the serialized
// schedules before and after the change.
func SetDefaultRoyalties(collection interop.Hash160, entries []common.RoyaltyEntry) {
	ctx := storage.GetContext()
	checkScheduleAccess(ctx, collection)

	filtered := filterEntries(ctx, entries)
	key := append(defaultPrefix, collection...)
	replaceSchedule(ctx, key, collection, []byte{}, filtered)
}

// SetTokenRoyalties replaces the royalty schedule of the exact token of the
// collection, shadowing the default schedule. The entry filtering and cap
// rules are the same as in SetDefaultRoyalties. An empty resulting schedule
// removes the override, re-enabling the default schedule.
func SetTokenRoyalties(collection interop.Hash160, tokenId []byte, entries []common.RoyaltyEntry) {
	ctx := storage.GetContext()
	checkScheduleAccess(ctx, collection)

	if len(tokenId) == 0 {
		panic("empty token id")
	}

	filtered := filterEntries(ctx, entries)
	key := tokenKey(collection, tokenId)
	replaceSchedule(ctx, key, collection, tokenId, filtered)
}

// SetRoyaltyReceiver sets the canonical account RoyaltyInfo attributes
// aggregated royalties to. Passing an empty receiver removes the canonical
// receiver together with the default schedule of the collection; it is an
// explicit reset signal, not an error. The schedule removal leaves the same
// RoyaltiesUpdated trail as an explicit replacement.
func SetRoyaltyReceiver(collection interop.Hash160, receiver interop.Hash160) {
	ctx := storage.GetContext()
	checkScheduleAccess(ctx, collection)

	key := append(receiverPrefix, collection...)
	if len(receiver) == 0 {
		storage.Delete(ctx, key)
		replaceSchedule(ctx, append(defaultPrefix, collection...), collection, []byte{}, nil)
		runtime.Notify("RoyaltyReceiverUpdated", collection, []byte{})
		return
	}

	if len(receiver) != interop.Hash160Len {
		panic("incorrect length of receiver script hash")
	}

	storage.Put(ctx, key, receiver)
	runtime.Notify("RoyaltyReceiverUpdated", collection, []byte(receiver))
}

// MultiRoyaltyInfo resolves the applicable schedule of the token (per-token
// if present, default otherwise) into a list of absolute royalty amounts:
// floor of salePrice * weight / 10000 per entry.
func MultiRoyaltyInfo(collection interop.Hash160, tokenId []byte, salePrice int) []common.RoyaltyShare {
	if salePrice < 0 {
		panic("negative sale price")
	}

	ctx := storage.GetReadOnlyContext()
	entries := applicableSchedule(ctx, collection, tokenId)

	result := []common.RoyaltyShare{}
	for i := 0; i < len(entries); i++ {
		e := entries[i]
		result = append(result, common.RoyaltyShare{
			Receiver: e.Receiver,
			Amount:   common.BPShare(salePrice, e.SharesBp),
		})
	}

	return result
}

// RoyaltyInfo aggregates the applicable schedule of the token into a single
// payment attributed to the canonical receiver of the collection, for
// counterparties that cannot consume a multi-receiver breakdown. Returns an
// empty receiver and zero amount if the total schedule weight is zero or no
// canonical receiver is set.
func RoyaltyInfo(collection interop.Hash160, tokenId []byte, salePrice int) common.RoyaltyShare {
	if salePrice < 0 {
		panic("negative sale price")
	}

	ctx := storage.GetReadOnlyContext()
	entries := applicableSchedule(ctx, collection, tokenId)

	total := 0
	for i := 0; i < len(entries); i++ {
		total += entries[i].SharesBp
	}

	receiver := storage.Get(ctx, append(receiverPrefix, collection...))
	if total == 0 || receiver == nil {
		return common.RoyaltyShare{Receiver: nil, Amount: 0}
	}

	return common.RoyaltyShare{
		Receiver: receiver.(interop.Hash160),
		Amount:   common.BPShare(salePrice, total),
	}
}

// DefaultRoyalties returns the default royalty schedule of the collection.
func DefaultRoyalties(collection interop.Hash160) []common.RoyaltyEntry {
	ctx := storage.GetReadOnlyContext()
	return getSchedule(ctx, append(defaultPrefix, collection...))
}

// TokenRoyalties returns the per-token royalty schedule of the token, empty
// if only the default one applies.
func TokenRoyalties(collection interop.Hash160, tokenId []byte) []common.RoyaltyEntry {
	ctx := storage.GetReadOnlyContext()
	return getSchedule(ctx, tokenKey(collection, tokenId))
}

// RoyaltyCap returns the maximum total schedule weight in basis points.
func RoyaltyCap() int {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, capKey).(int)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func contractOwner(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, ownerKey).(interop.Hash160)
}

// checkScheduleAccess lets a collection contract manage its own schedules
// and keeps the contract owner able to manage any of them.
func checkScheduleAccess(ctx storage.Context, collection interop.Hash160) {
	if len(collection) != interop.Hash160Len {
		panic("incorrect length of collection script hash")
	}

	if common.BytesEqual(runtime.GetCallingScriptHash(), collection) {
		return
	}

	if !runtime.CheckWitness(contractOwner(ctx)) {
		panic("schedule can be changed only by the collection or the contract owner")
	}
}

// filterEntries drops unroutable entries and checks the cap over the
// remaining total weight.
func filterEntries(ctx storage.Context, entries []common.RoyaltyEntry) []common.RoyaltyEntry {
	filtered := []common.RoyaltyEntry{}
	total := 0

	for i := 0; i < len(entries); i++ {
		e := entries[i]
		if len(e.Receiver) != interop.Hash160Len || e.SharesBp <= 0 {
			continue
		}

		total += e.SharesBp
		filtered = append(filtered, e)
	}

	if total > storage.Get(ctx, capKey).(int) {
		panic("royalty weights exceed the cap")
	}

	return filtered
}

func replaceSchedule(ctx storage.Context, key []byte, collection interop.Hash160, tokenId []byte, entries []common.RoyaltyEntry) {
	var before []byte
	if old := storage.Get(ctx, key); old != nil {
		before = old.([]byte)
	} else {
		before = []byte{}
	}

	if len(entries) == 0 {
		storage.Delete(ctx, key)
		runtime.Notify("RoyaltiesUpdated", collection, tokenId, before, []byte{})
		return
	}

	after := std.Serialize(entries)
	storage.Put(ctx, key, after)
	runtime.Notify("RoyaltiesUpdated", collection, tokenId, before, after)
}

func getSchedule(ctx storage.Context, key []byte) []common.RoyaltyEntry {
	data := storage.Get(ctx, key)
	if data != nil {
		return std.Deserialize(data.([]byte)).([]common.RoyaltyEntry)
	}

	return []common.RoyaltyEntry{}
}

// applicableSchedule prefers a non-empty per-token schedule over the
// default one.
func applicableSchedule(ctx storage.Context, collection interop.Hash160, tokenId []byte) []common.RoyaltyEntry {
	entries := getSchedule(ctx, tokenKey(collection, tokenId))
	if len(entries) != 0 {
		return entries
	}

	return getSchedule(ctx, append(defaultPrefix, collection...))
}

func tokenKey(collection interop.Hash160, tokenId []byte) []byte {
	return append(append(tokenPrefix, collection...), tokenId...)
}
