package engine

import (
	"fmt"
	"strings"
)

// ClientID identifies a client account.
type ClientID uint16

// TransactionID identifies a transaction. IDs are unique across the whole
// input stream, not just per client.
type TransactionID uint32

// TransactionType is the kind of ledger event a transaction describes.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeDispute    TransactionType = "dispute"
	TypeResolve    TransactionType = "resolve"
	TypeChargeback TransactionType = "chargeback"
)

// ParseTransactionType parses a wire-format type name. Names are matched
// case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(s)); t {
	case TypeDeposit, TypeWithdrawal, TypeDispute, TypeResolve, TypeChargeback:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// IsFunding reports whether the type carries an amount and is retained by the
// owning account for later reference.
func (t TransactionType) IsFunding() bool {
	return t == TypeDeposit || t == TypeWithdrawal
}

// IsReference reports whether the type refers to a prior funding transaction.
func (t TransactionType) IsReference() bool {
	return t == TypeDispute || t == TypeResolve || t == TypeChargeback
}

// Transaction is a single ledger event. For funding events Tx is the event's
// own identifier; for reference events Tx names the funding transaction being
// disputed, resolved or charged back.
//
// Disputed starts false and is flipped only by the account that retains the
// transaction. It is the only field mutated after creation.
type Transaction struct {
	Type     TransactionType
	Client   ClientID
	Tx       TransactionID
	Amount   *float64
	Disputed bool
}
