// Package ledger is the sole commit point of the simulation: models hand it
// accepted transactions and it appends them to a store, keeps reporting
// aggregates and fans each commit out to registered observers. Transactions
// are never read back by a model.
package ledger

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vedika/amlgen/internal/model"
)

// Transaction is the append-only artifact of one accepted commit.
type Transaction struct {
	ID          string
	Step        int64
	Type        string
	Amount      float64
	Origin      string
	Destination string
	IsFraud     bool
	AlertID     int64
	CreatedAt   time.Time
}

// Observer receives every accepted transaction after it is stored. Observers
// must not block for long; they run on the commit path.
type Observer func(tx Transaction)

// Option configures a Ledger.
type Option func(*Ledger)

// WithObserver registers an observer called for every accepted transaction.
func WithObserver(obs Observer) Option {
	return func(l *Ledger) {
		l.observers = append(l.observers, obs)
	}
}

// WithLimit caps the number of accepted transactions; once reached, further
// commits are dropped silently. Zero means unlimited.
func WithLimit(limit int64) Option {
	return func(l *Ledger) {
		l.limit = limit
	}
}

// Ledger implements model.Sink. Commit exposes no error channel upward: a
// store failure is logged and the run continues, which from the model's side
// is indistinguishable from "never attempted".
type Ledger struct {
	store     Store
	logger    *slog.Logger
	observers []Observer
	limit     int64

	mu       sync.Mutex
	total    int64
	fraud    int64
	byType   map[string]int64
	netFlows map[string]decimal.Decimal
}

// New creates a ledger writing to the given store.
func New(store Store, logger *slog.Logger, opts ...Option) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Ledger{
		store:    store,
		logger:   logger,
		byType:   make(map[string]int64),
		netFlows: make(map[string]decimal.Decimal),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Commit accepts a transaction from a model. The serialization of the
// read-modify-write on the aggregates makes a parallel account sweep safe.
func (l *Ledger) Commit(step int64, txType string, amount float64, orig, dest model.Host, fraud bool, alertID int64) {
	tx := Transaction{
		ID:          uuid.NewString(),
		Step:        step,
		Type:        txType,
		Amount:      amount,
		Origin:      orig.ID(),
		Destination: dest.ID(),
		IsFraud:     fraud,
		AlertID:     alertID,
		CreatedAt:   time.Now().UTC(),
	}

	l.mu.Lock()
	if l.limit > 0 && l.total >= l.limit {
		l.mu.Unlock()
		return
	}
	l.total++
	if fraud {
		l.fraud++
	}
	l.byType[txType]++
	amt := decimal.NewFromFloat(amount)
	l.netFlows[tx.Origin] = l.netFlows[tx.Origin].Sub(amt)
	l.netFlows[tx.Destination] = l.netFlows[tx.Destination].Add(amt)
	l.mu.Unlock()

	if err := l.store.Save(tx); err != nil {
		l.logger.Error("ledger store rejected transaction",
			"error", err, "step", step, "origin", tx.Origin, "destination", tx.Destination)
		return
	}

	for _, obs := range l.observers {
		obs(tx)
	}
}

// Totals returns the accepted and fraud-labeled transaction counts.
func (l *Ledger) Totals() (total, fraud int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total, l.fraud
}

// CountsByType returns a copy of the per-type commit counts.
func (l *Ledger) CountsByType() map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int64, len(l.byType))
	for k, v := range l.byType {
		out[k] = v
	}
	return out
}

// NetFlow returns the aggregated inflow minus outflow for an account. This is
// reporting-only; models never observe it.
func (l *Ledger) NetFlow(accountID string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.netFlows[accountID]
}

// Transactions returns every stored transaction in commit order.
func (l *Ledger) Transactions() ([]Transaction, error) {
	return l.store.List()
}

var _ model.Sink = (*Ledger)(nil)
