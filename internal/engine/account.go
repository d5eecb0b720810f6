package engine

import "fmt"

// MissingAmountPolicy decides what a funding event without an amount does.
type MissingAmountPolicy string

const (
	// MissingAmountZero applies the event as if its amount were 0.
	MissingAmountZero MissingAmountPolicy = "zero"
	// MissingAmountReject fails the event with a MissingAmountError.
	MissingAmountReject MissingAmountPolicy = "reject"
)

// LockedAccountPolicy decides whether a locked account keeps accepting events.
type LockedAccountPolicy string

const (
	// LockedAccountsAllow keeps applying events after a chargeback froze the
	// account.
	LockedAccountsAllow LockedAccountPolicy = "allow"
	// LockedAccountsReject fails every further event against a locked account
	// with an AccountLockedError.
	LockedAccountsReject LockedAccountPolicy = "reject"
)

// Policies are the configurable edge-case behaviors of an account.
type Policies struct {
	MissingAmount  MissingAmountPolicy
	LockedAccounts LockedAccountPolicy
}

// DefaultPolicies returns the reference behavior: missing amounts apply as
// zero and locked accounts keep processing.
func DefaultPolicies() Policies {
	return Policies{
		MissingAmount:  MissingAmountZero,
		LockedAccounts: LockedAccountsAllow,
	}
}

// Account holds one client's balances and the funding transactions that remain
// addressable by later dispute, resolve and chargeback events.
//
// Invariant: Total == Available + Held after every successful Apply.
type Account struct {
	Client    ClientID
	Available float64
	Held      float64
	Total     float64
	Locked    bool

	retained map[TransactionID]*Transaction
	policies Policies
}

// NewAccount creates an empty, unlocked account for client.
func NewAccount(client ClientID, policies Policies) *Account {
	return &Account{
		Client:   client,
		retained: make(map[TransactionID]*Transaction),
		policies: policies,
	}
}

// Apply mutates the account according to one event. Business-rule failures
// return a typed error and leave the account untouched; every check happens
// before the first mutation. Routing a transaction for a different client here
// is a bug in the caller and panics.
func (a *Account) Apply(tx *Transaction) error {
	if tx.Client != a.Client {
		panic(fmt.Sprintf("engine: tx %d for client %d routed to account %d", tx.Tx, tx.Client, a.Client))
	}

	if a.Locked && a.policies.LockedAccounts == LockedAccountsReject {
		return &AccountLockedError{Client: a.Client, Tx: tx.Tx}
	}

	switch tx.Type {
	case TypeDeposit:
		return a.deposit(tx)
	case TypeWithdrawal:
		return a.withdraw(tx)
	case TypeDispute:
		return a.dispute(tx)
	case TypeResolve:
		return a.resolve(tx)
	case TypeChargeback:
		return a.chargeback(tx)
	default:
		panic(fmt.Sprintf("engine: tx %d has impossible type %q", tx.Tx, tx.Type))
	}
}

func (a *Account) fundingAmount(tx *Transaction) (float64, error) {
	if tx.Amount == nil {
		if a.policies.MissingAmount == MissingAmountReject {
			return 0, &MissingAmountError{Client: a.Client, Tx: tx.Tx, Operation: tx.Type}
		}
		return 0, nil
	}
	return *tx.Amount, nil
}

func (a *Account) deposit(tx *Transaction) error {
	amount, err := a.fundingAmount(tx)
	if err != nil {
		return err
	}

	a.Available += amount
	a.Total += amount
	a.retained[tx.Tx] = tx
	return nil
}

func (a *Account) withdraw(tx *Transaction) error {
	amount, err := a.fundingAmount(tx)
	if err != nil {
		return err
	}

	if a.Available < amount {
		return &InsufficientFundsError{
			Client:    a.Client,
			Tx:        tx.Tx,
			Available: a.Available,
			Requested: amount,
		}
	}

	a.Available -= amount
	a.Total -= amount
	a.retained[tx.Tx] = tx
	return nil
}

// dispute provisionally freezes the referenced funds. For a deposit the amount
// moves from available to held. For a withdrawal the client is asserting the
// funds were never withdrawable, so the amount is restored to held and total
// without touching available.
func (a *Account) dispute(ref *Transaction) error {
	tx, ok := a.retained[ref.Tx]
	if !ok {
		return &TransactionNotFoundError{Client: a.Client, Tx: ref.Tx, Operation: TypeDispute}
	}

	amount := a.retainedAmount(tx)
	switch tx.Type {
	case TypeDeposit:
		a.Available -= amount
		a.Held += amount
	case TypeWithdrawal:
		a.Held += amount
		a.Total += amount
	default:
		panic(fmt.Sprintf("engine: retained tx %d for client %d has reference type %q", tx.Tx, a.Client, tx.Type))
	}

	tx.Disputed = true
	return nil
}

// resolve releases a dispute in favor of the original transaction: a disputed
// deposit becomes available again, a disputed withdrawal stands and its
// provisional restoration is removed.
func (a *Account) resolve(ref *Transaction) error {
	tx, ok := a.retained[ref.Tx]
	if !ok {
		return &TransactionNotFoundError{Client: a.Client, Tx: ref.Tx, Operation: TypeResolve}
	}
	if !tx.Disputed {
		return &NotDisputedError{Client: a.Client, Tx: ref.Tx, Operation: TypeResolve}
	}

	amount := a.retainedAmount(tx)
	switch tx.Type {
	case TypeDeposit:
		a.Available += amount
		a.Held -= amount
	case TypeWithdrawal:
		a.Held -= amount
		a.Total -= amount
	default:
		panic(fmt.Sprintf("engine: retained tx %d for client %d has reference type %q", tx.Tx, a.Client, tx.Type))
	}

	tx.Disputed = false
	return nil
}

// chargeback reverses the disputed transaction and freezes the account. A
// charged-back deposit leaves the ledger entirely; a charged-back withdrawal
// is undone, returning the held amount to available.
func (a *Account) chargeback(ref *Transaction) error {
	tx, ok := a.retained[ref.Tx]
	if !ok {
		return &TransactionNotFoundError{Client: a.Client, Tx: ref.Tx, Operation: TypeChargeback}
	}
	if !tx.Disputed {
		return &NotDisputedError{Client: a.Client, Tx: ref.Tx, Operation: TypeChargeback}
	}

	amount := a.retainedAmount(tx)
	switch tx.Type {
	case TypeDeposit:
		a.Held -= amount
		a.Total -= amount
	case TypeWithdrawal:
		a.Available += amount
		a.Held -= amount
	default:
		panic(fmt.Sprintf("engine: retained tx %d for client %d has reference type %q", tx.Tx, a.Client, tx.Type))
	}

	tx.Disputed = false
	a.Locked = true
	return nil
}

// retainedAmount reads the amount of a stored funding transaction. A nil
// amount can only have been stored under MissingAmountZero, so it reads as 0.
func (a *Account) retainedAmount(tx *Transaction) float64 {
	if tx.Amount == nil {
		return 0
	}
	return *tx.Amount
}

// Retained returns the stored funding transaction with the given id, if any.
func (a *Account) Retained(id TransactionID) (*Transaction, bool) {
	tx, ok := a.retained[id]
	return tx, ok
}
