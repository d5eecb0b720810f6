package engine

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/example/tx-engine/pkg/audit"
)

// EventSource yields parsed transactions in input order. Next returns io.EOF
// when the source is exhausted; any other error is an ingestion failure and is
// always fatal to the fold.
type EventSource interface {
	Next() (*Transaction, error)
}

// Options configure a Build run.
type Options struct {
	// Strict aborts the fold on the first business-rule violation instead of
	// skipping the offending event.
	Strict   bool
	Policies Policies

	// Logger receives one warn entry per skipped event. Nil means no logging.
	Logger *zap.Logger
	// Audit, when set, records every skipped event in the rejection journal.
	Audit *audit.Chain
}

// Book is the registry of accounts produced by folding a transaction stream.
// It is process-scoped owned state, passed explicitly through the call chain.
type Book struct {
	accounts map[ClientID]*Account
	opts     Options
}

// Build consumes events in order, routing each transaction to its owning
// account (created lazily on first sight) and applying it.
//
// Ingestion errors abort regardless of Options.Strict. Business-rule errors
// abort under Strict; otherwise the event is skipped with zero effect on
// state, after being logged and journaled.
func Build(events EventSource, opts Options) (*Book, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	book := &Book{
		accounts: make(map[ClientID]*Account),
		opts:     opts,
	}

	for {
		tx, err := events.Next()
		if errors.Is(err, io.EOF) {
			return book, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read transaction: %w", err)
		}

		if err := book.apply(tx); err != nil {
			if opts.Strict || !IsBusinessError(err) {
				return nil, err
			}

			opts.Logger.Warn("skipping transaction",
				zap.Uint16("client", uint16(tx.Client)),
				zap.Uint32("tx", uint32(tx.Tx)),
				zap.String("type", string(tx.Type)),
				zap.String("reason", err.Error()),
			)
			if opts.Audit != nil {
				opts.Audit.Append(audit.RejectedEvent{
					Client: uint16(tx.Client),
					Tx:     uint32(tx.Tx),
					Type:   string(tx.Type),
					Reason: err.Error(),
				})
			}
		}
	}
}

func (b *Book) apply(tx *Transaction) error {
	account, ok := b.accounts[tx.Client]
	if !ok {
		account = NewAccount(tx.Client, b.opts.Policies)
		b.accounts[tx.Client] = account
	}
	return account.Apply(tx)
}

// Account returns the account for client, if one was ever referenced.
func (b *Book) Account(client ClientID) (*Account, bool) {
	account, ok := b.accounts[client]
	return account, ok
}

// Accounts returns every account ordered by client id. Map iteration order is
// not stable across runs, so the report sorts for determinism.
func (b *Book) Accounts() []*Account {
	accounts := make([]*Account, 0, len(b.accounts))
	for _, account := range b.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Client < accounts[j].Client
	})
	return accounts
}
