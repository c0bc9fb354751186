// Package engine owns the simulation clock and the step loop. It builds the
// account population from loaded input rows, resolves per-account parameters
// against the configured defaults, validates the configuration fail-fast and
// then advances every account once per discrete step.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/vedika/amlgen/internal/account"
	"github.com/vedika/amlgen/internal/config"
	"github.com/vedika/amlgen/internal/loader"
	"github.com/vedika/amlgen/internal/model"
)

// clock is the shared read-only horizon handed to every model.
type clock int64

func (c clock) TotalSteps() int64 { return int64(c) }

// Inputs bundles the loaded CSV rows describing the population.
type Inputs struct {
	Accounts []loader.AccountRow
	Edges    []loader.EdgeRow
	Alerts   []loader.AlertRow
	Types    []loader.TypeRow
}

// Summary reports what a finished run covered. Transaction counts live on the
// ledger, which is the only component that sees commits.
type Summary struct {
	Steps    int64
	Accounts int
	Branches int
	Duration time.Duration
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithStepObserver registers a callback invoked after each completed step,
// used for progress metrics.
func WithStepObserver(fn func(step int64)) Option {
	return func(s *Simulation) {
		s.onStep = fn
	}
}

// Simulation drives one run. A single logical thread advances the step
// counter; models never observe each other within a step, so the sweep order
// only matters for randomness, which is pinned by giving every model its own
// seed-derived stream at build time.
type Simulation struct {
	totalSteps int64
	accounts   []*account.Account
	branches   int
	logger     *slog.Logger
	onStep     func(step int64)
}

// Build constructs the population and wires every account's model. All
// configuration errors surface here, before any step executes.
func Build(props config.Properties, in Inputs, sink model.Sink, logger *slog.Logger, opts ...Option) (*Simulation, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := props.Validate(); err != nil {
		return nil, err
	}

	totalSteps := props.General.TotalSteps
	clk := clock(totalSteps)
	master := rand.New(rand.NewSource(props.General.RandomSeed))

	typeTable := account.NewTypeTable(typeCounts(in.Types), rand.New(rand.NewSource(master.Int63())))

	sim := &Simulation{
		totalSteps: totalSteps,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(sim)
	}

	byID := make(map[string]*account.Account, len(in.Accounts))
	for _, row := range in.Accounts {
		if _, dup := byID[row.ID]; dup {
			return nil, fmt.Errorf("account %s: duplicate id", row.ID)
		}
		acct, err := buildAccount(row, props, clk, sink, master, typeTable)
		if err != nil {
			return nil, err
		}
		byID[row.ID] = acct
		sim.accounts = append(sim.accounts, acct)
	}

	for _, edge := range in.Edges {
		src, ok := byID[edge.Src]
		if !ok {
			return nil, fmt.Errorf("edge %s -> %s: unknown source account", edge.Src, edge.Dst)
		}
		dst, ok := byID[edge.Dst]
		if !ok {
			return nil, fmt.Errorf("edge %s -> %s: unknown destination account", edge.Src, edge.Dst)
		}
		src.AddDestination(dst)
	}

	for _, alert := range in.Alerts {
		acct, ok := byID[alert.AccountID]
		if !ok {
			return nil, fmt.Errorf("alert %d: unknown account %s", alert.AlertID, alert.AccountID)
		}
		acct.MarkAlert(alert.AlertID)
	}

	if err := sim.attachCashChannels(props, clk, sink, master); err != nil {
		return nil, err
	}

	logger.Info("simulation built",
		"accounts", len(sim.accounts)-sim.branches,
		"branches", sim.branches,
		"edges", len(in.Edges),
		"alert_members", len(in.Alerts),
		"total_steps", totalSteps,
		"seed", props.General.RandomSeed)
	return sim, nil
}

func buildAccount(row loader.AccountRow, props config.Properties, clk model.Clock, sink model.Sink, master *rand.Rand, types *account.TypeTable) (*account.Account, error) {
	balance := row.Balance
	if balance < 0 {
		spread := props.Defaults.MaxBalance - props.Defaults.MinBalance
		balance = props.Defaults.MinBalance + master.Float64()*spread
	}

	name := row.Model
	if name == "" {
		name = props.Defaults.Model
	}
	kind, err := model.ParseKind(name)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", row.ID, err)
	}

	interval := row.Interval
	if interval <= 0 {
		interval = props.Simulator.TransactionInterval
	}
	if row.End >= props.General.TotalSteps {
		return nil, fmt.Errorf("account %s: end step %d outside [0,%d)", row.ID, row.End, props.General.TotalSteps)
	}
	if row.Start >= 0 && row.End >= 0 && row.Start > row.End {
		return nil, fmt.Errorf("account %s: start step %d after end step %d", row.ID, row.Start, row.End)
	}

	ratio := row.AmountRatio
	if ratio <= 0 {
		ratio = props.Defaults.AmountRatio
	}

	m, err := model.New(kind, clk, sink, rand.New(rand.NewSource(master.Int63())))
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", row.ID, err)
	}
	acct := account.New(row.ID, balance, types)
	acct.SetModel(m)
	m.SetParameters(model.Params{
		Interval:    interval,
		Balance:     balance,
		Start:       row.Start,
		End:         row.End,
		AmountRatio: ratio,
		Schedule:    row.Schedule,
	})

	// A model that can never fit a single transaction into the run is a
	// configuration error, not a runtime no-op.
	if m.NumberOfTransactions() == 0 {
		return nil, fmt.Errorf("account %s: interval %d yields zero transactions over %d steps",
			row.ID, interval, props.General.TotalSteps)
	}
	return acct, nil
}

// attachCashChannels creates the branch accounts and hangs cash-in/cash-out
// models off every ordinary account. Alert members use the fraud bounds, so
// this must run after alerts are marked.
func (s *Simulation) attachCashChannels(props config.Properties, clk model.Clock, sink model.Sink, master *rand.Rand) error {
	cashIn := props.Defaults.CashIn
	cashOut := props.Defaults.CashOut
	if !cashIn.Enabled() && !cashOut.Enabled() {
		return nil
	}
	numBranches := props.Simulator.NumBranches
	if numBranches <= 0 {
		return fmt.Errorf("cash channels configured but num_branches is %d", numBranches)
	}

	branches := make([]*account.Account, numBranches)
	for i := range branches {
		branches[i] = account.NewBranch(fmt.Sprintf("branch-%04d", i+1))
	}

	for i, acct := range s.accounts {
		acct.AssignBranch(branches[i%numBranches])
		fraud := acct.IsFraud()
		if cashIn.Enabled() {
			min, max := cashIn.AmountBounds(fraud)
			m := model.NewCashIn(clk, sink, rand.New(rand.NewSource(master.Int63())), model.CashConfig{
				Interval:  cashIn.Interval(fraud),
				MinAmount: min,
				MaxAmount: max,
			})
			acct.AddCashModel(m)
		}
		if cashOut.Enabled() {
			min, max := cashOut.AmountBounds(fraud)
			m := model.NewCashOut(clk, sink, rand.New(rand.NewSource(master.Int63())), model.CashConfig{
				Interval:  cashOut.Interval(fraud),
				MinAmount: min,
				MaxAmount: max,
			})
			acct.AddCashModel(m)
		}
	}

	for _, branch := range branches {
		s.accounts = append(s.accounts, branch)
	}
	s.branches = numBranches
	return nil
}

// TotalSteps exposes the configured horizon.
func (s *Simulation) TotalSteps() int64 { return s.totalSteps }

// Run advances the clock from 0 to totalSteps-1, consulting every account at
// each step. It honors context cancellation between steps; there is no other
// cancellation concept.
func (s *Simulation) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	for step := int64(0); step < s.totalSteps; step++ {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		for _, acct := range s.accounts {
			acct.Step(step)
		}
		if s.onStep != nil {
			s.onStep(step)
		}
	}
	return Summary{
		Steps:    s.totalSteps,
		Accounts: len(s.accounts) - s.branches,
		Branches: s.branches,
		Duration: time.Since(start),
	}, nil
}

func typeCounts(rows []loader.TypeRow) []account.TypeCount {
	out := make([]account.TypeCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, account.TypeCount{Label: row.Label, Count: row.Count})
	}
	return out
}
