/*
Package auction implements the Auction contract of the marketplace suite.

Auction contract runs Dutch auctions over NEP-11 tokens: a seller lists a
token at a price that decays from a start price down to an end price in
fixed steps, and the first buyer whose bid covers the current price wins.
The contract takes custody of the token for the whole auction lifetime,
collects the winning payment in native GAS and forwards the sale price to
the Payout contract for distribution, refunding any excess to the buyer.

The marketplace commission rate is copied into every auction record at
creation, so changing the global rate never affects auctions already
running. An auction that fully decayed without a bid can be withdrawn by
the seller, returning the token.

# Contract notifications

AuctionCreated notification. This notification is produced when a seller
lists a token.

	AuctionCreated:
	  - name: collection
	    type: Hash160
	  - name: tokenId
	    type: ByteArray
	  - name: seller
	    type: Hash160
	  - name: startPrice
	    type: Integer
	  - name: endPrice
	    type: Integer
	  - name: startTime
	    type: Integer
	  - name: duration
	    type: Integer
	  - name: dropInterval
	    type: Integer

AuctionBid notification. This notification is produced when an auction is
settled by a buyer. The price field carries the decayed price actually
paid, the amount field the full collected bid.

	AuctionBid:
	  - name: collection
	    type: Hash160
	  - name: tokenId
	    type: ByteArray
	  - name: seller
	    type: Hash160
	  - name: buyer
	    type: Hash160
	  - name: price
	    type: Integer
	  - name: amount
	    type: Integer

AuctionWithdrawn notification. This notification is produced when a seller
takes an expired auction back.

	AuctionWithdrawn:
	  - name: collection
	    type: Hash160
	  - name: tokenId
	    type: ByteArray
	  - name: seller
	    type: Hash160

CommissionRateUpdated notification. This notification is produced when the
contract owner changes the marketplace commission rate.

	CommissionRateUpdated:
	  - name: commissionBp
	    type: Integer
*/
package auction

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'owner' -> interop.Hash160
   contract owner account
 - 'payoutScriptHash' -> interop.Hash160
   address of the Payout contract sale proceeds are distributed through
 - 'commissionRate' -> int
   marketplace commission in basis points applied to new auctions
 - 'custodyExpect' -> []byte
   token identifier expected by OnNEP11Payment, present only while
   CreateAuction pulls custody
 - 'inFlight' -> []byte
   reentrancy mark, present only while an operation is executed
 - a<collection><tokenId> -> std.Serialize(Auction)
   active auction records (here Auction is a structure defined in current
   package)

# Auctions
Contract stores one record per actively auctioned token. Records are
removed on settlement or withdrawal, an absent record means the token is
not on sale.
*/
