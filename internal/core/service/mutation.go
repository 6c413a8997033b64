package service

import "errors"

// MutationStatus reports how far a store mutation got. A write that the
// server rejected never produces a status; the mutator returns an error.
type MutationStatus int

const (
	// MutationComplete means the write and every follow-up fetch succeeded.
	MutationComplete MutationStatus = iota
	// MutationRefreshFailed means the write succeeded but the cache or the
	// balance could not be re-fetched and may be stale.
	MutationRefreshFailed
)

func (s MutationStatus) String() string {
	if s == MutationRefreshFailed {
		return "refresh_failed"
	}
	return "complete"
}

// MutationResult is the outcome of a successful write.
type MutationResult[T any] struct {
	// Item is the server's copy of the written entity.
	Item T
	// RefreshErr is set when re-fetching the list failed.
	RefreshErr error
	// BalanceErr is set when re-fetching the token balance failed.
	BalanceErr error
}

func (r MutationResult[T]) Status() MutationStatus {
	if r.RefreshErr != nil || r.BalanceErr != nil {
		return MutationRefreshFailed
	}
	return MutationComplete
}

// Err joins the follow-up failures, or nil.
func (r MutationResult[T]) Err() error {
	return errors.Join(r.RefreshErr, r.BalanceErr)
}
