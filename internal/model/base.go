package model

import "math/rand"

const (
	unsetStep = int64(-1)
	noAlert   = int64(-1)

	// defaultAmountRatio bounds total expected spend to half the balance
	// snapshot over the run unless the account row overrides it.
	defaultAmountRatio = 0.5

	// stepFluctuation bounds the jitter applied to scheduled steps so account
	// populations sharing an interval do not produce perfectly periodic
	// signatures.
	stepFluctuation = 2
)

// base carries the state and derived-quantity math shared by every variant.
// The balance field is a fixed snapshot captured at initialization for amount
// math, not a live decremented ledger.
type base struct {
	host        Host
	clock       Clock
	sink        Sink
	rng         *rand.Rand
	interval    int
	balance     float64
	startStep   int64
	endStep     int64
	amountRatio float64
	alertID     int64
	fraud       bool
}

func (b *base) SetAccount(host Host) {
	b.host = host
}

// SetParameters is the single initializer collapsing the interval and
// no-interval forms: a zero Interval keeps whatever the variant chose before
// delegating here. An unset start step is decentralized over one interval so
// accounts sharing a cadence do not all fire on the same step.
func (b *base) SetParameters(p Params) {
	if p.Interval > 0 {
		b.interval = p.Interval
	}
	b.balance = p.Balance
	b.startStep = p.Start
	b.endStep = p.End
	if p.AmountRatio > 0 {
		b.amountRatio = p.AmountRatio
	}
	if b.startStep < 0 {
		b.startStep = b.generateStartStep(int64(b.interval))
	}
}

// MarkAlert flags every subsequent commit from this model as part of the
// labeled alert subgraph.
func (b *base) MarkAlert(alertID int64) {
	b.alertID = alertID
	b.fraud = true
}

// NumberOfTransactions is the assumed transaction count over the whole run.
// It deliberately uses the simulation's total step count, not this account's
// own window, so the per-tick amount stays stable across accounts regardless
// of how their windows are clipped.
func (b *base) NumberOfTransactions() int {
	return int(b.clock.TotalSteps()) / b.interval
}

// TransactionAmount is the budgeted amount of a single tick. Callers must
// guard NumberOfTransactions() > 0; a zero count is a configuration error
// caught at startup, not a runtime condition.
func (b *base) TransactionAmount() float64 {
	available := b.balance * b.amountRatio
	return available / float64(b.NumberOfTransactions())
}

// StepRange is the number of steps this model is valid for, resolving unset
// bounds to the widest window.
func (b *base) StepRange() int64 {
	st := b.startStep
	if st < 0 {
		st = 0
	}
	ed := b.endStep
	if ed <= 0 {
		ed = b.clock.TotalSteps()
	}
	return ed - st + 1
}

// eligible is the canonical cadence gate: act only when the start step is
// resolved, the step falls inside [startStep, endStep] and lands on the
// account's rhythm. A missed tick is never deferred or retried.
func (b *base) eligible(step int64) bool {
	if b.startStep < 0 || step < b.startStep {
		return false
	}
	end := b.endStep
	if end < 0 {
		end = b.clock.TotalSteps() - 1
	}
	if step > end {
		return false
	}
	return (step-b.startStep)%int64(b.interval) == 0
}

// generateDiff returns a step offset in [-stepFluctuation, stepFluctuation],
// uniform over the five outcomes.
func (b *base) generateDiff() int64 {
	return int64(b.rng.Intn(stepFluctuation*2+1)) - stepFluctuation
}

// generateStartStep returns a uniform step in [0, rangeSteps), decentralizing
// first activity across accounts that share an interval.
func (b *base) generateStartStep(rangeSteps int64) int64 {
	return b.rng.Int63n(rangeSteps)
}

// submit commits amount from the owning account to dest. Non-positive amounts
// are dropped silently; that is the deliberate no-op policy for degenerate
// amounts, not an error path.
func (b *base) submit(step int64, amount float64, dest Host) {
	b.submitFrom(step, amount, b.host, dest)
}

func (b *base) submitFrom(step int64, amount float64, orig, dest Host) {
	if amount <= 0 {
		return
	}
	ttype := orig.TransactionType(dest)
	b.sink.Commit(step, ttype, amount, orig, dest, b.fraud, b.alertID)
}

// submitTyped commits with an explicit type label, bypassing host labeling.
// Used by the cash models where the label is fixed by the channel.
func (b *base) submitTyped(step int64, amount float64, orig, dest Host, ttype string) {
	if amount <= 0 {
		return
	}
	b.sink.Commit(step, ttype, amount, orig, dest, false, noAlert)
}
