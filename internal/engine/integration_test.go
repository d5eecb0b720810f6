package engine_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tx-engine/internal/engine"
	"github.com/example/tx-engine/internal/ingest"
	"github.com/example/tx-engine/internal/report"
	"github.com/example/tx-engine/pkg/audit"
)

// run pushes a CSV stream through the full pipeline and returns the report.
func run(t *testing.T, input string, opts engine.Options) string {
	t.Helper()

	reader, err := ingest.NewReader(strings.NewReader(input))
	require.NoError(t, err)

	book, err := engine.Build(reader, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, book.Accounts()))
	return buf.String()
}

func TestEndToEnd(t *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 1.0\n" +
		"deposit, 2, 2, 2.0\n" +
		"deposit, 1, 3, 2.0\n" +
		"withdrawal, 1, 4, 1.5\n" +
		"withdrawal, 2, 5, 3.0\n"

	got := run(t, input, engine.Options{Policies: engine.DefaultPolicies()})

	expected := "client,available,held,total,locked\n" +
		"1,1.5,0.0,1.5,false\n" +
		"2,2.0,0.0,2.0,false\n"
	assert.Equal(t, expected, got)
}

func TestEndToEndDisputeLifecycle(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,10.0\n" +
		"deposit,1,2,1.5\n" +
		"dispute,1,2,\n" +
		"chargeback,1,2,\n" +
		"deposit,2,3,5.0\n" +
		"dispute,2,3,\n" +
		"resolve,2,3,\n" +
		"deposit,3,4,1.11223344\n"

	got := run(t, input, engine.Options{Policies: engine.DefaultPolicies()})

	expected := "client,available,held,total,locked\n" +
		"1,10.0,0.0,10.0,true\n" +
		"2,5.0,0.0,5.0,false\n" +
		"3,1.1122,0.0,1.1122,false\n"
	assert.Equal(t, expected, got)
}

func TestEndToEndSkippedEventsAreJournaled(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"withdrawal,1,1,5.0\n" +
		"deposit,1,2,3.0\n" +
		"resolve,1,2,\n"

	chain := audit.NewChain()
	got := run(t, input, engine.Options{Policies: engine.DefaultPolicies(), Audit: chain})

	expected := "client,available,held,total,locked\n" +
		"1,3.0,0.0,3.0,false\n"
	assert.Equal(t, expected, got)

	require.Equal(t, 2, chain.Len())
	assert.True(t, audit.VerifyChain(chain.Entries()))
}

func TestEndToEndStrictModeSurfacesError(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"withdrawal,1,1,5.0\n"

	reader, err := ingest.NewReader(strings.NewReader(input))
	require.NoError(t, err)

	_, err = engine.Build(reader, engine.Options{Strict: true, Policies: engine.DefaultPolicies()})

	var insufficient *engine.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
}

func TestEndToEndParseFailureIsFatal(t *testing.T) {
	input := "type,client,tx,amount\n" +
		"deposit,1,1,2.0\n" +
		"deposit,one,2,2.0\n"

	reader, err := ingest.NewReader(strings.NewReader(input))
	require.NoError(t, err)

	_, err = engine.Build(reader, engine.Options{Policies: engine.DefaultPolicies()})

	var parseErr *ingest.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 3, parseErr.Line)
}
