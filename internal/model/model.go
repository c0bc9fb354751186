// Package model implements the per-account transaction models that decide, at
// each discrete simulation step, whether an account sends money, to whom, and
// for how much. Both the licit and the illicit account populations run the same
// per-step contract; alert membership only changes the labels on the committed
// transactions, never the stepping mechanics.
package model

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Kind identifies one of the fixed behavioral variants. The set is closed:
// new behaviors are added here, not by open-ended embedding.
type Kind int

const (
	Single Kind = iota
	FanOut
	FanIn
	Mutual
	Forward
	Periodical
)

var kindNames = map[Kind]string{
	Single:     "Single",
	FanOut:     "FanOut",
	FanIn:      "FanIn",
	Mutual:     "Mutual",
	Forward:    "Forward",
	Periodical: "Periodical",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts either a variant name (case-insensitive) or its numeric ID
// as used in the account input files.
func ParseKind(s string) (Kind, error) {
	trimmed := strings.TrimSpace(s)
	for kind, name := range kindNames {
		if strings.EqualFold(name, trimmed) {
			return kind, nil
		}
	}
	if id, err := strconv.Atoi(trimmed); err == nil {
		k := Kind(id)
		if _, ok := kindNames[k]; ok {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction model %q", s)
}

// Host is the account owning a model. Destination order is significant and
// must be stable for the whole run (Forward's cursor depends on it).
type Host interface {
	ID() string
	Destinations() []Host
	TransactionType(dest Host) string
	Branch() Host
}

// Sink is the sole commit point for accepted transactions. Commits are assumed
// to always succeed from the model's perspective; no error channel is exposed
// upward.
type Sink interface {
	Commit(step int64, txType string, amount float64, orig, dest Host, fraud bool, alertID int64)
}

// Clock exposes the configured simulation horizon, shared read-only.
type Clock interface {
	TotalSteps() int64
}

// Params carries the per-account initialization values. Zero values mean
// "unset": a zero Interval keeps the variant's own default, a zero AmountRatio
// falls back to the package default, and negative Start/End leave the window
// open on that side.
type Params struct {
	Interval    int
	Balance     float64
	Start       int64
	End         int64
	AmountRatio float64
	Schedule    []float64
}

// Model is the per-step decision strategy owned 1:1 by an account.
// SetAccount and SetParameters are initialization-only and must be called
// before the first SendTransaction.
type Model interface {
	Type() string
	SetAccount(host Host)
	SetParameters(p Params)
	MarkAlert(alertID int64)
	SendTransaction(step int64)
	NumberOfTransactions() int
}

// New builds a model of the given kind. Each model owns its rand stream so a
// parallel sweep over accounts at a fixed step cannot contend on a shared
// generator or diverge based on processing order.
func New(kind Kind, clock Clock, sink Sink, rng *rand.Rand) (Model, error) {
	b := base{
		clock:       clock,
		sink:        sink,
		rng:         rng,
		interval:    1,
		startStep:   unsetStep,
		endStep:     unsetStep,
		amountRatio: defaultAmountRatio,
		alertID:     noAlert,
	}
	switch kind {
	case Single:
		return &singleModel{base: b}, nil
	case FanOut:
		return &fanOutModel{base: b}, nil
	case FanIn:
		return &fanInModel{base: b}, nil
	case Mutual:
		return &mutualModel{base: b}, nil
	case Forward:
		return &forwardModel{base: b}, nil
	case Periodical:
		return &periodicalModel{base: b, schedule: []float64{1.0}}, nil
	default:
		return nil, fmt.Errorf("unknown transaction model kind %d", int(kind))
	}
}
