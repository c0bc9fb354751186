// Package account implements the simulated account entities that own the
// transaction models. An account holds identity, a fixed balance snapshot, an
// ordered destination list and exactly one main model, plus optional cash
// channel models routed through its branch.
package account

import (
	"github.com/vedika/amlgen/internal/model"
)

// Account is the host side of the model contract. It is created once from an
// input row and never reassigned a model afterwards.
type Account struct {
	id       string
	balance  float64
	branch   *Account
	isBranch bool
	dests    []model.Host
	types    *TypeTable
	main     model.Model
	cash     []model.Model
	alertID  int64
	fraud    bool
}

// New creates an account with its fixed balance snapshot.
func New(id string, balance float64, types *TypeTable) *Account {
	return &Account{
		id:      id,
		balance: balance,
		types:   types,
		alertID: -1,
	}
}

// NewBranch creates a bank branch account. Branches never own a model; they
// only terminate cash-in/cash-out transactions.
func NewBranch(id string) *Account {
	a := New(id, 0, nil)
	a.isBranch = true
	return a
}

func (a *Account) ID() string       { return a.id }
func (a *Account) Balance() float64 { return a.balance }
func (a *Account) IsBranch() bool   { return a.isBranch }

// Destinations returns the ordered outgoing-neighbor list. Order is stable for
// the run; models index into it directly.
func (a *Account) Destinations() []model.Host { return a.dests }

// AddDestination appends an outgoing neighbor. Append order defines cursor
// order for the models.
func (a *Account) AddDestination(dest *Account) {
	a.dests = append(a.dests, dest)
}

// TransactionType resolves the type label for a transfer from this account to
// dest using the weighted type table. Accounts without a table fall back to a
// fixed label.
func (a *Account) TransactionType(dest model.Host) string {
	if a.types == nil {
		return "TRANSFER"
	}
	return a.types.Pick()
}

// Branch returns the branch this account deposits to and withdraws from, or
// nil when none is assigned.
func (a *Account) Branch() model.Host {
	if a.branch == nil {
		return nil
	}
	return a.branch
}

// AssignBranch binds the account to a branch for its cash channels.
func (a *Account) AssignBranch(branch *Account) {
	a.branch = branch
}

// SetModel attaches the account's single main model. Called exactly once
// during construction.
func (a *Account) SetModel(m model.Model) {
	a.main = m
	m.SetAccount(a)
}

// Model returns the main transaction model, nil for branches.
func (a *Account) Model() model.Model { return a.main }

// AddCashModel attaches an auxiliary cash-in or cash-out model.
func (a *Account) AddCashModel(m model.Model) {
	m.SetAccount(a)
	a.cash = append(a.cash, m)
}

// MarkAlert places the account in the labeled alert subgraph; all commits from
// its main model carry the alert ID and fraud flag from then on.
func (a *Account) MarkAlert(alertID int64) {
	a.alertID = alertID
	a.fraud = true
	if a.main != nil {
		a.main.MarkAlert(alertID)
	}
}

func (a *Account) AlertID() int64 { return a.alertID }
func (a *Account) IsFraud() bool  { return a.fraud }

// Step advances the account by one simulation step, consulting the main model
// and every cash model. Safe to call on branches, which own no models.
func (a *Account) Step(step int64) {
	if a.main != nil {
		a.main.SendTransaction(step)
	}
	for _, m := range a.cash {
		m.SendTransaction(step)
	}
}
