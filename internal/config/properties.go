package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Properties is the immutable description of one simulation run, loaded once
// at startup from a JSON file. Validation is fail-fast: a malformed run
// description is unrecoverable mid-run, so nothing starts until it passes.
type Properties struct {
	General   General   `json:"general"`
	Simulator Simulator `json:"simulator"`
	Input     Input     `json:"input"`
	Output    Output    `json:"output"`
	Defaults  Defaults  `json:"default"`
}

// General holds run identity, seed and horizon.
type General struct {
	SimulationName string `json:"simulation_name"`
	RandomSeed     int64  `json:"random_seed"`
	TotalSteps     int64  `json:"total_steps"`
}

// Simulator tunes engine-level behavior.
type Simulator struct {
	TransactionLimit    int64 `json:"transaction_limit"`
	TransactionInterval int   `json:"transaction_interval"`
	NumBranches         int   `json:"num_branches"`
}

// Input names the CSV files describing the pre-built account population and
// its edge list. Building that population is upstream work; the simulator only
// loads it.
type Input struct {
	Directory        string `json:"directory"`
	Accounts         string `json:"accounts"`
	Transactions     string `json:"transactions"`
	AlertMembers     string `json:"alert_members"`
	TransactionTypes string `json:"transaction_types"`
}

// Output names the run artifacts.
type Output struct {
	Directory      string `json:"directory"`
	TransactionLog string `json:"transaction_log"`
}

// Defaults supplies per-account fallbacks and the cash channel bounds.
type Defaults struct {
	MinBalance  float64    `json:"min_balance"`
	MaxBalance  float64    `json:"max_balance"`
	AmountRatio float64    `json:"transaction_amount_ratio"`
	Model       string     `json:"transaction_model"`
	CashIn      CashBounds `json:"cash_in"`
	CashOut     CashBounds `json:"cash_out"`
}

// CashBounds distinguishes normal from fraud cadence and amount ranges for one
// cash direction.
type CashBounds struct {
	NormalInterval  int     `json:"normal_interval"`
	FraudInterval   int     `json:"fraud_interval"`
	NormalMinAmount float64 `json:"normal_min_amount"`
	NormalMaxAmount float64 `json:"normal_max_amount"`
	FraudMinAmount  float64 `json:"fraud_min_amount"`
	FraudMaxAmount  float64 `json:"fraud_max_amount"`
}

// LoadProperties reads and validates the simulation properties file.
func LoadProperties(path string) (Properties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Properties{}, fmt.Errorf("read properties %s: %w", path, err)
	}
	var props Properties
	if err := json.Unmarshal(data, &props); err != nil {
		return Properties{}, fmt.Errorf("parse properties %s: %w", path, err)
	}
	props.applyDefaults()
	if err := props.Validate(); err != nil {
		return Properties{}, fmt.Errorf("invalid properties %s: %w", path, err)
	}
	return props, nil
}

func (p *Properties) applyDefaults() {
	if p.Simulator.TransactionInterval <= 0 {
		p.Simulator.TransactionInterval = 1
	}
	if p.Defaults.AmountRatio == 0 {
		p.Defaults.AmountRatio = 0.5
	}
	if p.Output.TransactionLog == "" {
		p.Output.TransactionLog = "tx_log.csv"
	}
	if p.Defaults.Model == "" {
		p.Defaults.Model = "single"
	}
	if p.Output.Directory == "" {
		p.Output.Directory = "output"
	}
}

// Validate enforces the startup-time configuration invariants.
func (p Properties) Validate() error {
	if p.General.TotalSteps <= 0 {
		return fmt.Errorf("total_steps must be positive, got %d", p.General.TotalSteps)
	}
	if p.Simulator.TransactionInterval < 1 {
		return fmt.Errorf("transaction_interval must be >= 1, got %d", p.Simulator.TransactionInterval)
	}
	if int64(p.Simulator.TransactionInterval) > p.General.TotalSteps {
		return fmt.Errorf("transaction_interval %d exceeds total_steps %d: no transaction would ever fit",
			p.Simulator.TransactionInterval, p.General.TotalSteps)
	}
	if p.Defaults.AmountRatio <= 0 || p.Defaults.AmountRatio > 1 {
		return fmt.Errorf("transaction_amount_ratio must be in (0,1], got %g", p.Defaults.AmountRatio)
	}
	if p.Defaults.MinBalance < 0 || p.Defaults.MaxBalance < p.Defaults.MinBalance {
		return fmt.Errorf("balance bounds malformed: min %g max %g", p.Defaults.MinBalance, p.Defaults.MaxBalance)
	}
	if err := p.Defaults.CashIn.validate("cash_in"); err != nil {
		return err
	}
	if err := p.Defaults.CashOut.validate("cash_out"); err != nil {
		return err
	}
	return nil
}

func (b CashBounds) validate(name string) error {
	// A zeroed section disables the channel entirely.
	if b == (CashBounds{}) {
		return nil
	}
	if b.NormalInterval < 1 || b.FraudInterval < 1 {
		return fmt.Errorf("%s intervals must be >= 1", name)
	}
	if b.NormalMinAmount < 0 || b.NormalMaxAmount < b.NormalMinAmount {
		return fmt.Errorf("%s normal amount bounds malformed", name)
	}
	if b.FraudMinAmount < 0 || b.FraudMaxAmount < b.FraudMinAmount {
		return fmt.Errorf("%s fraud amount bounds malformed", name)
	}
	return nil
}

// Enabled reports whether the cash channel is configured.
func (b CashBounds) Enabled() bool {
	return b != (CashBounds{})
}

// Interval returns the cadence for the given population.
func (b CashBounds) Interval(fraud bool) int {
	if fraud {
		return b.FraudInterval
	}
	return b.NormalInterval
}

// AmountBounds returns the [min, max] amount range for the given population.
func (b CashBounds) AmountBounds(fraud bool) (float64, float64) {
	if fraud {
		return b.FraudMinAmount, b.FraudMaxAmount
	}
	return b.NormalMinAmount, b.NormalMaxAmount
}
