/*
Package royalty implements the Royalty contract of the marketplace suite.

Royalty contract is a schedule registry collections delegate their royalty
resolution to. A collection keeps a default schedule applied to all of its
tokens and optional per-token schedules shadowing the default one. Every
schedule is a list of receiver/weight pairs with the total weight limited
by a cap configured at deploy (25% by default).

Two resolution views are exposed: MultiRoyaltyInfo returns the full
breakdown, RoyaltyInfo aggregates all weights into a single payment to the
canonical receiver of the collection for counterparties that support only
one royalty receiver.

Schedules are managed by the collection contract itself or by the registry
owner. Writes are atomic: a schedule exceeding the cap is rejected as a
whole.

# Contract notifications

RoyaltiesUpdated notification. This notification is produced when a
schedule is replaced and carries serialized snapshots of the schedule
before and after the change. The tokenId field is empty for default
schedule updates.

	RoyaltiesUpdated:
	  - name: collection
	    type: Hash160
	  - name: tokenId
	    type: ByteArray
	  - name: before
	    type: ByteArray
	  - name: after
	    type: ByteArray

RoyaltyReceiverUpdated notification. This notification is produced when
the canonical single receiver of a collection changes; an empty receiver
means the reset of both the receiver and the default schedule.

	RoyaltyReceiverUpdated:
	  - name: collection
	    type: Hash160
	  - name: receiver
	    type: ByteArray
*/
package royalty

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'owner' -> interop.Hash160
   contract owner account
 - 'royaltyCap' -> int
   maximum total schedule weight in basis points
 - d<collection> -> std.Serialize([]common.RoyaltyEntry)
   default royalty schedule of the collection
 - t<collection><tokenId> -> std.Serialize([]common.RoyaltyEntry)
   per-token schedule shadowing the default one
 - r<collection> -> interop.Hash160
   canonical receiver of aggregated single-receiver royalties

# Schedules
A schedule is stored already filtered: entries with a missing receiver or
non-positive weight never reach storage.
*/
