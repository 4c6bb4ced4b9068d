package common

import "github.com/nspcc-dev/neo-go/pkg/interop/storage"

// ErrReentrantCall appears when an externally callable method is invoked
// again while its previous invocation is still in flight.
const ErrReentrantCall = "reentrant call"

const guardKey = "inFlight"

// LockGuard marks the contract as busy with an in-flight operation. It
// panics with ErrReentrantCall if the mark is already set, so a callback
// from an outbound transfer cannot re-enter the contract and observe
// intermediate state.
func LockGuard(ctx storage.Context) {
	if storage.Get(ctx, guardKey) != nil {
		panic(ErrReentrantCall)
	}

	storage.Put(ctx, guardKey, []byte{1})
}

// UnlockGuard removes the in-flight mark set by LockGuard.
func UnlockGuard(ctx storage.Context) {
	storage.Delete(ctx, guardKey)
}
