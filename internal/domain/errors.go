package domain

import "fmt"

// NotFoundError represents a missing resource. It is a signal, not a
// storage failure; callers use it to distinguish "doesn't exist" from
// "storage is broken".
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError rejects bad input before any side effect occurs.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

var ErrValidation = ValidationError{}

// StorageError means the content upload failed; nothing was pinned and no
// upstream state exists for the attempt.
type StorageError struct {
	Cause error
}

func (e StorageError) Error() string {
	if e.Cause == nil {
		return "content storage failed"
	}
	return fmt.Sprintf("content storage failed: %v", e.Cause)
}

func (e StorageError) Unwrap() error { return e.Cause }

func (e StorageError) Is(target error) bool {
	_, ok := target.(StorageError)
	if ok {
		return true
	}
	_, ok = target.(*StorageError)
	return ok
}

var ErrStorage = StorageError{}

// NetworkParameterError means the ledger node could not be reached while
// preparing a transaction. Retryable by the caller; content already pinned
// in the same attempt stays pinned.
type NetworkParameterError struct {
	Cause error
}

func (e NetworkParameterError) Error() string {
	if e.Cause == nil {
		return "ledger parameters unavailable"
	}
	return fmt.Sprintf("ledger parameters unavailable: %v", e.Cause)
}

func (e NetworkParameterError) Unwrap() error { return e.Cause }

func (e NetworkParameterError) Is(target error) bool {
	_, ok := target.(NetworkParameterError)
	if ok {
		return true
	}
	_, ok = target.(*NetworkParameterError)
	return ok
}

var ErrNetworkParameter = NetworkParameterError{}

// SubmissionError means the signed transaction was rejected by the network,
// including replays of stale validity windows.
type SubmissionError struct {
	Cause error
}

func (e SubmissionError) Error() string {
	if e.Cause == nil {
		return "transaction rejected"
	}
	return fmt.Sprintf("transaction rejected: %v", e.Cause)
}

func (e SubmissionError) Unwrap() error { return e.Cause }

func (e SubmissionError) Is(target error) bool {
	_, ok := target.(SubmissionError)
	if ok {
		return true
	}
	_, ok = target.(*SubmissionError)
	return ok
}

var ErrSubmission = SubmissionError{}

// ConfirmationTimeoutError means the transaction was submitted but did not
// confirm within the bounded number of rounds. Not necessarily a failure:
// the caller may re-poll with TxID.
type ConfirmationTimeoutError struct {
	TxID   string
	Rounds uint64
}

func (e ConfirmationTimeoutError) Error() string {
	return fmt.Sprintf("transaction %s not confirmed within %d rounds", e.TxID, e.Rounds)
}

func (e ConfirmationTimeoutError) Is(target error) bool {
	_, ok := target.(ConfirmationTimeoutError)
	if ok {
		return true
	}
	_, ok = target.(*ConfirmationTimeoutError)
	return ok
}

var ErrConfirmationTimeout = ConfirmationTimeoutError{}

// PersistenceError means the transaction IS confirmed on chain but the
// record write failed. It always carries the transaction id so an operator
// can reconcile manually; resubmitting the whole flow would mint a
// duplicate asset.
type PersistenceError struct {
	TxID  string
	Cause error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("record write failed for confirmed transaction %s: %v", e.TxID, e.Cause)
}

func (e PersistenceError) Unwrap() error { return e.Cause }

func (e PersistenceError) Is(target error) bool {
	_, ok := target.(PersistenceError)
	if ok {
		return true
	}
	_, ok = target.(*PersistenceError)
	return ok
}

var ErrPersistence = PersistenceError{}
