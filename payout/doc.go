/*
Package payout implements the Payout contract of the marketplace suite.

Payout contract turns a single sale payment into an ordered sequence of
outgoing GAS transfers: marketplace commission (optionally split with a
treasury account), royalties resolved from the sold token's collection,
revenue shares of the auction and the seller's remainder. The waterfall is
loss-free: every deducted amount is either delivered or recorded in the
credit ledger, and the amounts always sum up to the incoming price.

Outgoing transfers are best-effort. A recipient that cannot
accept GAS (a contract without the NEP-17 receive handler, a transfer
the GAS contract rejects, or a receive handler that throws) gets a
credit ledger entry instead, and the settlement completes for everyone
else. Credits are never retried
automatically; the credited account withdraws them itself with
WithdrawCredit, the only payment path allowed to fail hard.

Only allowlisted contracts (settlement front ends such as the Auction
contract) may invoke the distribution entry points.

# Contract notifications

CommissionTaken notification. This notification is produced once per
distribution when a non-zero commission is deducted.

	CommissionTaken:
	  - name: collection
	    type: Hash160
	  - name: tokenId
	    type: ByteArray
	  - name: commission
	    type: Integer
	  - name: treasuryCut
	    type: Integer

RoyaltyPaid notification. This notification is produced per royalty
receiver paid during a distribution.

	RoyaltyPaid:
	  - name: collection
	    type: Hash160
	  - name: tokenId
	    type: ByteArray
	  - name: receiver
	    type: Hash160
	  - name: amount
	    type: Integer

SharePaid notification. This notification is produced per revenue share
receiver paid during a distribution.

	SharePaid:
	  - name: collection
	    type: Hash160
	  - name: tokenId
	    type: ByteArray
	  - name: receiver
	    type: Hash160
	  - name: amount
	    type: Integer

TransferFailed notification. This notification is produced when an
outgoing transfer cannot be delivered and the amount is credited instead.

	TransferFailed:
	  - name: receiver
	    type: Hash160
	  - name: amount
	    type: Integer

PayoutCompleted notification. This notification is produced when the whole
waterfall has been executed; remainder is the amount sent to the seller
after all deductions.

	PayoutCompleted:
	  - name: collection
	    type: Hash160
	  - name: tokenId
	    type: ByteArray
	  - name: seller
	    type: Hash160
	  - name: price
	    type: Integer
	  - name: remainder
	    type: Integer

CreditDeposited notification. This notification is produced when an
allowlisted contract credits an account directly.

	CreditDeposited:
	  - name: recipient
	    type: Hash160
	  - name: amount
	    type: Integer

CreditWithdrawn notification. This notification is produced when a
credited account drains its ledger entry.

	CreditWithdrawn:
	  - name: recipient
	    type: Hash160
	  - name: amount
	    type: Integer

AllowListUpdated notification. This notification is produced when the
contract owner adds or removes an allow list member.

	AllowListUpdated:
	  - name: member
	    type: Hash160
	  - name: added
	    type: Boolean

CommissionReceiverUpdated and TreasuryReceiverUpdated notifications are
produced when the contract owner changes the corresponding receiver.
*/
package payout

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'owner' -> interop.Hash160
   contract owner account
 - 'commissionReceiver' -> interop.Hash160
   account receiving marketplace commissions
 - 'treasuryReceiver' -> interop.Hash160
   account receiving the treasury cut of commissions, absent when the
   treasury split is disabled
 - 'treasuryRate' -> int
   treasury cut in basis points of the commission
 - 'inFlight' -> []byte
   reentrancy mark, present only while an operation is executed
 - l<interop.Hash160> -> []byte{1}
   allow list membership of settlement front end contracts
 - d<interop.Hash160> -> int
   credit ledger: accumulated undelivered amount per recipient

# Credit ledger
Entries grow only through failed deliveries and explicit deposits and
shrink only through a full withdrawal by the credited account.
*/
