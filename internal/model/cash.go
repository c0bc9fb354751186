package model

import "math/rand"

// Cash type labels are fixed by the channel rather than resolved through the
// host's labeling table.
const (
	CashInType  = "CASH-IN"
	CashOutType = "CASH-OUT"
)

// CashConfig bounds an auxiliary cash channel. Amounts are drawn uniformly
// from [MinAmount, MaxAmount] on each eligible tick.
type CashConfig struct {
	Interval  int
	MinAmount float64
	MaxAmount float64
}

// cashModel moves cash between an account and its branch: cash-in deposits
// branch money into the account, cash-out withdraws to the branch. Accounts
// without a branch never act.
type cashModel struct {
	base
	in  bool
	min float64
	max float64
}

// NewCashIn builds a deposit model for the given bounds.
func NewCashIn(clock Clock, sink Sink, rng *rand.Rand, cfg CashConfig) Model {
	return newCash(clock, sink, rng, cfg, true)
}

// NewCashOut builds a withdrawal model for the given bounds.
func NewCashOut(clock Clock, sink Sink, rng *rand.Rand, cfg CashConfig) Model {
	return newCash(clock, sink, rng, cfg, false)
}

func newCash(clock Clock, sink Sink, rng *rand.Rand, cfg CashConfig, in bool) Model {
	m := &cashModel{
		base: base{
			clock:       clock,
			sink:        sink,
			rng:         rng,
			interval:    1,
			startStep:   unsetStep,
			endStep:     unsetStep,
			amountRatio: defaultAmountRatio,
			alertID:     noAlert,
		},
		in:  in,
		min: cfg.MinAmount,
		max: cfg.MaxAmount,
	}
	if cfg.Interval > 0 {
		m.interval = cfg.Interval
	}
	m.startStep = m.generateStartStep(int64(m.interval))
	return m
}

func (m *cashModel) Type() string {
	if m.in {
		return CashInType
	}
	return CashOutType
}

func (m *cashModel) SendTransaction(step int64) {
	branch := m.host.Branch()
	if branch == nil {
		return
	}
	if !m.eligible(step) {
		return
	}
	amount := m.min + m.rng.Float64()*(m.max-m.min)
	if m.in {
		m.submitTyped(step, amount, branch, m.host, CashInType)
		return
	}
	m.submitTyped(step, amount, m.host, branch, CashOutType)
}
