package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedika/amlgen/internal/ledger"
)

func sampleLog() []ledger.Transaction {
	return []ledger.Transaction{
		{Step: 0, Type: "TRANSFER", Amount: 10, Origin: "a", Destination: "b", AlertID: -1},
		{Step: 1, Type: "WIRE", Amount: 20, Origin: "b", Destination: "c", IsFraud: true, AlertID: 4},
		{Step: 2, Type: "TRANSFER", Amount: 5, Origin: "a", Destination: "c", AlertID: -1},
	}
}

func TestExportMergesAccountsAndRelationships(t *testing.T) {
	client := NewMemoryClient()
	exp := NewExporter(client, 2)

	require.NoError(t, exp.Export(context.Background(), sampleLog()))

	calls := client.WriteCalls()
	// 3 distinct accounts + 3 transactions.
	require.Len(t, calls, 6)

	accounts := map[string]bool{}
	var transfers int
	for _, call := range calls {
		switch call.Query {
		case mergeAccountCypher:
			accounts[call.Params["id"].(string)] = true
		case createTransferCypher:
			transfers++
		default:
			t.Fatalf("unexpected query %q", call.Query)
		}
	}
	assert.Len(t, accounts, 3)
	assert.Equal(t, 3, transfers)
}

func TestExportCollectsWriteErrors(t *testing.T) {
	boom := errors.New("boom")
	client := NewMemoryClient().WithError(boom)
	exp := NewExporter(client, 2)

	err := exp.Export(context.Background(), sampleLog())
	require.Error(t, err)

	var exportErr *ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.NotEmpty(t, exportErr.Errors)
}

func TestExportEmptyLogIsNoop(t *testing.T) {
	client := NewMemoryClient()
	exp := NewExporter(client, 2)
	require.NoError(t, exp.Export(context.Background(), nil))
	assert.Empty(t, client.WriteCalls())
}
