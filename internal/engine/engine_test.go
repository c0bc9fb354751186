package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedika/amlgen/internal/config"
	"github.com/vedika/amlgen/internal/ledger"
	"github.com/vedika/amlgen/internal/loader"
)

func baseProps() config.Properties {
	return config.Properties{
		General: config.General{
			SimulationName: "test",
			RandomSeed:     42,
			TotalSteps:     100,
		},
		Simulator: config.Simulator{TransactionInterval: 10},
		Defaults: config.Defaults{
			MinBalance:  100,
			MaxBalance:  1000,
			AmountRatio: 0.5,
			Model:       "single",
		},
	}
}

func smallPopulation() Inputs {
	return Inputs{
		Accounts: []loader.AccountRow{
			{ID: "a", Balance: 1000, Model: "forward", Interval: 10, Start: 0, End: 99},
			{ID: "b", Balance: 500, Model: "fanout", Interval: 20, Start: loader.Unset, End: loader.Unset},
			{ID: "c", Balance: -1, Model: "", Interval: 0, Start: loader.Unset, End: loader.Unset},
		},
		Edges: []loader.EdgeRow{
			{Src: "a", Dst: "b"},
			{Src: "a", Dst: "c"},
			{Src: "b", Dst: "a"},
			{Src: "b", Dst: "c"},
			{Src: "c", Dst: "a"},
		},
		Alerts: []loader.AlertRow{
			{AlertID: 7, AccountID: "b", IsMain: true},
		},
		Types: []loader.TypeRow{
			{Label: "WIRE", Count: 3},
			{Label: "CHECK", Count: 1},
		},
	}
}

type loggedTx struct {
	step    int64
	txType  string
	amount  float64
	orig    string
	dest    string
	fraud   bool
	alertID int64
}

func runOnce(t *testing.T, props config.Properties, in Inputs) []loggedTx {
	t.Helper()
	led := ledger.New(ledger.NewMemoryStore(), nil)
	sim, err := Build(props, in, led, nil)
	require.NoError(t, err)

	summary, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, props.General.TotalSteps, summary.Steps)

	txs, err := led.Transactions()
	require.NoError(t, err)
	out := make([]loggedTx, 0, len(txs))
	for _, tx := range txs {
		out = append(out, loggedTx{
			step:    tx.Step,
			txType:  tx.Type,
			amount:  tx.Amount,
			orig:    tx.Origin,
			dest:    tx.Destination,
			fraud:   tx.IsFraud,
			alertID: tx.AlertID,
		})
	}
	return out
}

func TestRunIsDeterministicUnderFixedSeed(t *testing.T) {
	first := runOnce(t, baseProps(), smallPopulation())
	second := runOnce(t, baseProps(), smallPopulation())

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestDifferentSeedsDiverge(t *testing.T) {
	first := runOnce(t, baseProps(), smallPopulation())

	props := baseProps()
	props.General.RandomSeed = 43
	second := runOnce(t, props, smallPopulation())

	assert.NotEqual(t, first, second)
}

func TestAlertMembersProduceLabeledCommits(t *testing.T) {
	txs := runOnce(t, baseProps(), smallPopulation())

	var fraud, licit int
	for _, tx := range txs {
		if tx.fraud {
			fraud++
			assert.Equal(t, "b", tx.orig)
			assert.Equal(t, int64(7), tx.alertID)
		} else {
			licit++
			assert.Equal(t, int64(-1), tx.alertID)
		}
	}
	assert.Positive(t, fraud)
	assert.Positive(t, licit)
}

func TestCommitsStayInsideHorizon(t *testing.T) {
	txs := runOnce(t, baseProps(), smallPopulation())
	for _, tx := range txs {
		assert.GreaterOrEqual(t, tx.step, int64(0))
		assert.Less(t, tx.step, int64(100))
		assert.Positive(t, tx.amount)
	}
}

func TestBuildRejectsZeroTransactionInterval(t *testing.T) {
	in := smallPopulation()
	in.Accounts[0].Interval = 200 // exceeds the 100-step horizon

	led := ledger.New(ledger.NewMemoryStore(), nil)
	_, err := Build(baseProps(), in, led, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero transactions")
}

func TestBuildRejectsUnknownModel(t *testing.T) {
	in := smallPopulation()
	in.Accounts[1].Model = "teleport"

	_, err := Build(baseProps(), in, ledger.New(ledger.NewMemoryStore(), nil), nil)
	assert.Error(t, err)
}

func TestBuildRejectsUnknownEdgeEndpoint(t *testing.T) {
	in := smallPopulation()
	in.Edges = append(in.Edges, loader.EdgeRow{Src: "a", Dst: "ghost"})

	_, err := Build(baseProps(), in, ledger.New(ledger.NewMemoryStore(), nil), nil)
	assert.Error(t, err)
}

func TestBuildRejectsEndStepOutsideHorizon(t *testing.T) {
	in := smallPopulation()
	in.Accounts[0].End = 100

	_, err := Build(baseProps(), in, ledger.New(ledger.NewMemoryStore(), nil), nil)
	assert.Error(t, err)
}

func TestCashChannelsRouteThroughBranches(t *testing.T) {
	props := baseProps()
	props.Simulator.NumBranches = 2
	props.Defaults.CashIn = config.CashBounds{
		NormalInterval: 10, FraudInterval: 5,
		NormalMinAmount: 10, NormalMaxAmount: 20,
		FraudMinAmount: 1000, FraudMaxAmount: 2000,
	}

	txs := runOnce(t, props, smallPopulation())

	var cashIn int
	for _, tx := range txs {
		if tx.txType != "CASH-IN" {
			continue
		}
		cashIn++
		assert.Contains(t, tx.orig, "branch-")
		// Account "b" is an alert member; its cash channel uses fraud bounds.
		if tx.dest == "b" {
			assert.GreaterOrEqual(t, tx.amount, 1000.0)
		} else {
			assert.LessOrEqual(t, tx.amount, 20.0)
		}
	}
	assert.Positive(t, cashIn)
}

func TestCashChannelsRequireBranches(t *testing.T) {
	props := baseProps()
	props.Defaults.CashOut = config.CashBounds{
		NormalInterval: 10, FraudInterval: 10,
		NormalMinAmount: 1, NormalMaxAmount: 2,
		FraudMinAmount: 1, FraudMaxAmount: 2,
	}

	_, err := Build(props, smallPopulation(), ledger.New(ledger.NewMemoryStore(), nil), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "num_branches")
}

func TestRunHonorsCancellation(t *testing.T) {
	led := ledger.New(ledger.NewMemoryStore(), nil)
	sim, err := Build(baseProps(), smallPopulation(), led, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
