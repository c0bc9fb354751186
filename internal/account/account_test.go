package account

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedika/amlgen/internal/model"
)

type countingModel struct {
	steps   []int64
	alertID int64
}

func (m *countingModel) Type() string { return "stub" }

func (m *countingModel) SetAccount(model.Host) {}

func (m *countingModel) SetParameters(model.Params) {}

func (m *countingModel) MarkAlert(id int64) { m.alertID = id }

func (m *countingModel) SendTransaction(step int64) { m.steps = append(m.steps, step) }

func (m *countingModel) NumberOfTransactions() int { return 1 }

func TestStepConsultsMainAndCashModels(t *testing.T) {
	acct := New("acct-1", 1000, nil)
	main := &countingModel{}
	cash := &countingModel{}
	acct.SetModel(main)
	acct.AddCashModel(cash)

	acct.Step(0)
	acct.Step(1)

	assert.Equal(t, []int64{0, 1}, main.steps)
	assert.Equal(t, []int64{0, 1}, cash.steps)
}

func TestMarkAlertPropagatesToModel(t *testing.T) {
	acct := New("acct-1", 1000, nil)
	main := &countingModel{alertID: -1}
	acct.SetModel(main)

	acct.MarkAlert(42)

	assert.True(t, acct.IsFraud())
	assert.Equal(t, int64(42), acct.AlertID())
	assert.Equal(t, int64(42), main.alertID)
}

func TestBranchAccountsAreInert(t *testing.T) {
	branch := NewBranch("branch-1")
	require.True(t, branch.IsBranch())
	require.Nil(t, branch.Model())
	branch.Step(0) // must not panic
}

func TestTypeTableRespectsWeights(t *testing.T) {
	table := NewTypeTable([]TypeCount{
		{Label: "WIRE", Count: 9},
		{Label: "CHECK", Count: 1},
	}, rand.New(rand.NewSource(5)))
	require.NotNil(t, table)

	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		counts[table.Pick()]++
	}
	assert.Greater(t, counts["WIRE"], counts["CHECK"])
	assert.Greater(t, counts["CHECK"], 500) // expected around 1000
}

func TestTypeTableEmptyRows(t *testing.T) {
	assert.Nil(t, NewTypeTable(nil, rand.New(rand.NewSource(1))))

	acct := New("acct-1", 100, nil)
	dest := New("acct-2", 100, nil)
	acct.AddDestination(dest)
	assert.Equal(t, "TRANSFER", acct.TransactionType(dest))
}

func TestDestinationOrderIsStable(t *testing.T) {
	acct := New("acct-1", 100, nil)
	for _, id := range []string{"b", "c", "a"} {
		acct.AddDestination(New(id, 0, nil))
	}
	dests := acct.Destinations()
	require.Len(t, dests, 3)
	assert.Equal(t, "b", dests[0].ID())
	assert.Equal(t, "c", dests[1].ID())
	assert.Equal(t, "a", dests[2].ID())
}
