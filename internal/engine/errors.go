package engine

import (
	"errors"
	"fmt"
)

// businessError marks errors produced by ledger rules acting on well-formed
// input. Invariant violations are panics, never businessErrors.
type businessError interface {
	businessRule()
}

// IsBusinessError reports whether err (or anything it wraps) is a recoverable
// business-rule violation, as opposed to an ingestion failure or a bug.
func IsBusinessError(err error) bool {
	var be businessError
	return errors.As(err, &be)
}

// InsufficientFundsError is returned when a withdrawal exceeds the available
// balance.
type InsufficientFundsError struct {
	Client    ClientID
	Tx        TransactionID
	Available float64
	Requested float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for client %d on tx %d: available %v, requested %v",
		e.Client, e.Tx, e.Available, e.Requested)
}

func (e *InsufficientFundsError) businessRule() {}

// TransactionNotFoundError is returned when a dispute, resolve or chargeback
// references a transaction the account never retained.
type TransactionNotFoundError struct {
	Client    ClientID
	Tx        TransactionID
	Operation TransactionType
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("%s for client %d references unknown tx %d", e.Operation, e.Client, e.Tx)
}

func (e *TransactionNotFoundError) businessRule() {}

// NotDisputedError is returned when a resolve or chargeback references a
// transaction that is not currently under dispute.
type NotDisputedError struct {
	Client    ClientID
	Tx        TransactionID
	Operation TransactionType
}

func (e *NotDisputedError) Error() string {
	return fmt.Sprintf("%s for client %d references undisputed tx %d", e.Operation, e.Client, e.Tx)
}

func (e *NotDisputedError) businessRule() {}

// MissingAmountError is returned for a funding event without an amount when
// the missing-amount policy is MissingAmountReject.
type MissingAmountError struct {
	Client    ClientID
	Tx        TransactionID
	Operation TransactionType
}

func (e *MissingAmountError) Error() string {
	return fmt.Sprintf("%s for client %d on tx %d has no amount", e.Operation, e.Client, e.Tx)
}

func (e *MissingAmountError) businessRule() {}

// AccountLockedError is returned for any event against a locked account when
// the locked-account policy is LockedAccountsReject.
type AccountLockedError struct {
	Client ClientID
	Tx     TransactionID
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account %d is locked, rejecting tx %d", e.Client, e.Tx)
}

func (e *AccountLockedError) businessRule() {}
