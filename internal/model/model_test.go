package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock int64

func (c fixedClock) TotalSteps() int64 { return int64(c) }

// recordedTx captures one commit observed by the stub sink.
type recordedTx struct {
	step    int64
	txType  string
	amount  float64
	orig    string
	dest    string
	fraud   bool
	alertID int64
}

type recordingSink struct {
	commits []recordedTx
}

func (s *recordingSink) Commit(step int64, txType string, amount float64, orig, dest Host, fraud bool, alertID int64) {
	s.commits = append(s.commits, recordedTx{
		step:    step,
		txType:  txType,
		amount:  amount,
		orig:    orig.ID(),
		dest:    dest.ID(),
		fraud:   fraud,
		alertID: alertID,
	})
}

type stubAccount struct {
	id     string
	dests  []Host
	branch Host
}

func (a *stubAccount) ID() string { return a.id }

func (a *stubAccount) Destinations() []Host { return a.dests }

func (a *stubAccount) TransactionType(dest Host) string { return "TRANSFER" }

func (a *stubAccount) Branch() Host { return a.branch }

func newTestModel(t *testing.T, kind Kind, clock fixedClock, sink Sink, seed int64) Model {
	t.Helper()
	m, err := New(kind, clock, sink, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return m
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("forward")
	require.NoError(t, err)
	assert.Equal(t, Forward, kind)

	kind, err = ParseKind("4")
	require.NoError(t, err)
	assert.Equal(t, Forward, kind)

	_, err = ParseKind("teleport")
	assert.Error(t, err)
}

func TestTransactionBudgetScenario(t *testing.T) {
	sink := &recordingSink{}
	m := newTestModel(t, Forward, fixedClock(100), sink, 1)
	m.SetParameters(Params{Interval: 10, Balance: 1000, Start: 0, End: 99, AmountRatio: 0.5})

	require.Equal(t, 10, m.NumberOfTransactions())

	fwd := m.(*forwardModel)
	assert.InDelta(t, 50.0, fwd.TransactionAmount(), 1e-9)
}

func TestBudgetBoundsTotalSpend(t *testing.T) {
	sink := &recordingSink{}
	for _, interval := range []int{1, 3, 7, 30} {
		m := newTestModel(t, Forward, fixedClock(720), sink, 7)
		m.SetParameters(Params{Interval: interval, Balance: 4321.5, Start: 0, End: 719, AmountRatio: 0.25})
		fwd := m.(*forwardModel)
		n := fwd.NumberOfTransactions()
		require.Positive(t, n)
		assert.InDelta(t, 4321.5*0.25, float64(n)*fwd.TransactionAmount(), 1e-6)
	}
}

func TestStepRangeUnbounded(t *testing.T) {
	m := newTestModel(t, Forward, fixedClock(720), &recordingSink{}, 1)
	fwd := m.(*forwardModel)
	assert.Equal(t, int64(721), fwd.StepRange())
}

func TestStepRangeResolvedWindow(t *testing.T) {
	m := newTestModel(t, Forward, fixedClock(720), &recordingSink{}, 1)
	m.SetParameters(Params{Interval: 5, Balance: 100, Start: 10, End: 19})
	fwd := m.(*forwardModel)
	assert.Equal(t, int64(10), fwd.StepRange())
}

func TestGenerateDiffBounds(t *testing.T) {
	b := base{rng: rand.New(rand.NewSource(42))}
	seen := map[int64]int{}
	for i := 0; i < 5000; i++ {
		d := b.generateDiff()
		require.GreaterOrEqual(t, d, int64(-2))
		require.LessOrEqual(t, d, int64(2))
		seen[d]++
	}
	// All five outcomes must occur; with 5000 draws each bucket is expected
	// around 1000, so a loose lower bound is enough to catch bias.
	for d := int64(-2); d <= 2; d++ {
		assert.Greater(t, seen[d], 700, "outcome %d under-represented", d)
	}
}

func TestGenerateStartStepBounds(t *testing.T) {
	b := base{rng: rand.New(rand.NewSource(42))}
	for i := 0; i < 1000; i++ {
		s := b.generateStartStep(30)
		require.GreaterOrEqual(t, s, int64(0))
		require.Less(t, s, int64(30))
	}
	for i := 0; i < 100; i++ {
		assert.Equal(t, int64(0), b.generateStartStep(1))
	}
}

func TestCadenceGateSkipsOffRhythmSteps(t *testing.T) {
	sink := &recordingSink{}
	acct := &stubAccount{id: "acct-1"}
	dest := &stubAccount{id: "acct-2"}
	acct.dests = []Host{dest}

	m := newTestModel(t, Forward, fixedClock(100), sink, 1)
	m.SetAccount(acct)
	m.SetParameters(Params{Interval: 7, Balance: 1000, Start: 4, End: 60})

	for step := int64(0); step < 100; step++ {
		m.SendTransaction(step)
	}

	require.NotEmpty(t, sink.commits)
	for _, tx := range sink.commits {
		assert.Zero(t, (tx.step-4)%7, "commit off cadence at step %d", tx.step)
		assert.GreaterOrEqual(t, tx.step, int64(4))
		assert.LessOrEqual(t, tx.step, int64(60))
	}
}

func TestNonPositiveAmountNeverReachesSink(t *testing.T) {
	sink := &recordingSink{}
	acct := &stubAccount{id: "acct-1"}
	acct.dests = []Host{&stubAccount{id: "acct-2"}}

	// Zero balance makes every computed amount zero.
	m := newTestModel(t, Forward, fixedClock(100), sink, 1)
	m.SetAccount(acct)
	m.SetParameters(Params{Interval: 10, Balance: 0, Start: 0, End: 99})

	for step := int64(0); step < 100; step++ {
		m.SendTransaction(step)
	}
	assert.Empty(t, sink.commits)
}

func TestMarkAlertLabelsCommits(t *testing.T) {
	sink := &recordingSink{}
	acct := &stubAccount{id: "acct-1"}
	acct.dests = []Host{&stubAccount{id: "acct-2"}}

	m := newTestModel(t, Forward, fixedClock(100), sink, 1)
	m.SetAccount(acct)
	m.SetParameters(Params{Interval: 10, Balance: 500, Start: 0, End: 99})
	m.MarkAlert(17)

	for step := int64(0); step < 100; step++ {
		m.SendTransaction(step)
	}

	require.NotEmpty(t, sink.commits)
	for _, tx := range sink.commits {
		assert.True(t, tx.fraud)
		assert.Equal(t, int64(17), tx.alertID)
	}
}

func TestUnsetStartStepIsDecentralized(t *testing.T) {
	starts := map[int64]bool{}
	for seed := int64(0); seed < 50; seed++ {
		m := newTestModel(t, Forward, fixedClock(100), &recordingSink{}, seed)
		m.SetParameters(Params{Interval: 20, Balance: 100, Start: -1, End: -1})
		fwd := m.(*forwardModel)
		require.GreaterOrEqual(t, fwd.startStep, int64(0))
		require.Less(t, fwd.startStep, int64(20))
		starts[fwd.startStep] = true
	}
	assert.Greater(t, len(starts), 1, "start steps should spread across the interval")
}
