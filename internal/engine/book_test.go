package engine

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tx-engine/pkg/audit"
)

// stubSource implements EventSource over a slice, optionally failing with an
// ingestion error once the slice is drained.
type stubSource struct {
	events []*Transaction
	err    error
}

func (s *stubSource) Next() (*Transaction, error) {
	if len(s.events) == 0 {
		if s.err != nil {
			err := s.err
			s.err = nil
			return nil, err
		}
		return nil, io.EOF
	}
	tx := s.events[0]
	s.events = s.events[1:]
	return tx, nil
}

func TestBuildNonStrictSkipsBusinessErrors(t *testing.T) {
	chain := audit.NewChain()
	source := &stubSource{events: []*Transaction{
		withdrawal(1, 1, 5.0), // overdraws an empty account
		deposit(1, 2, 3.0),
	}}

	book, err := Build(source, Options{Policies: DefaultPolicies(), Audit: chain})
	require.NoError(t, err)

	account, ok := book.Account(1)
	require.True(t, ok)
	assert.Equal(t, 3.0, account.Available)
	assert.Equal(t, 3.0, account.Total)

	// The skipped event lands in the rejection journal.
	require.Equal(t, 1, chain.Len())
	entries := chain.Entries()
	assert.Equal(t, uint32(1), entries[0].Event.Tx)
	assert.Equal(t, "withdrawal", entries[0].Event.Type)
	assert.True(t, audit.VerifyChain(entries))
}

func TestBuildStrictAbortsOnBusinessError(t *testing.T) {
	source := &stubSource{events: []*Transaction{
		withdrawal(1, 1, 5.0),
		deposit(1, 2, 3.0),
	}}

	book, err := Build(source, Options{Strict: true, Policies: DefaultPolicies()})

	require.Error(t, err)
	var insufficient *InsufficientFundsError
	assert.ErrorAs(t, err, &insufficient)
	assert.Nil(t, book)
}

func TestBuildIngestionErrorIsAlwaysFatal(t *testing.T) {
	broken := errors.New("malformed record")
	source := &stubSource{
		events: []*Transaction{deposit(1, 1, 1.0)},
		err:    broken,
	}

	book, err := Build(source, Options{Strict: false, Policies: DefaultPolicies()})

	require.Error(t, err)
	assert.ErrorIs(t, err, broken)
	assert.Nil(t, book)
}

func TestBuildCreatesAccountOnFirstSight(t *testing.T) {
	// A dispute for a never-seen client still creates its account; the bad
	// event itself is skipped.
	source := &stubSource{events: []*Transaction{
		reference(TypeDispute, 7, 42),
	}}

	book, err := Build(source, Options{Policies: DefaultPolicies()})
	require.NoError(t, err)

	account, ok := book.Account(7)
	require.True(t, ok)
	assert.Equal(t, 0.0, account.Available)
	assert.Equal(t, 0.0, account.Held)
	assert.Equal(t, 0.0, account.Total)
	assert.False(t, account.Locked)
}

func TestAccountsSortedByClient(t *testing.T) {
	source := &stubSource{events: []*Transaction{
		deposit(30, 1, 1.0),
		deposit(2, 2, 1.0),
		deposit(117, 3, 1.0),
	}}

	book, err := Build(source, Options{Policies: DefaultPolicies()})
	require.NoError(t, err)

	accounts := book.Accounts()
	require.Len(t, accounts, 3)
	assert.Equal(t, ClientID(2), accounts[0].Client)
	assert.Equal(t, ClientID(30), accounts[1].Client)
	assert.Equal(t, ClientID(117), accounts[2].Client)
}

func TestBuildEmptySource(t *testing.T) {
	book, err := Build(&stubSource{}, Options{Policies: DefaultPolicies()})
	require.NoError(t, err)
	assert.Empty(t, book.Accounts())
}

func TestBuildRoutesAcrossClients(t *testing.T) {
	source := &stubSource{events: []*Transaction{
		deposit(1, 1, 1.0),
		deposit(2, 2, 2.0),
		deposit(1, 3, 2.0),
		withdrawal(1, 4, 1.5),
		// Client 2 disputing tx 1 fails: tx 1 belongs to client 1's account.
		reference(TypeDispute, 2, 1),
	}}

	book, err := Build(source, Options{Policies: DefaultPolicies()})
	require.NoError(t, err)

	one, _ := book.Account(1)
	assert.Equal(t, 1.5, one.Available)
	assert.Equal(t, 1.5, one.Total)

	two, _ := book.Account(2)
	assert.Equal(t, 2.0, two.Available)
	assert.Equal(t, 2.0, two.Total)
}
