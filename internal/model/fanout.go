package model

// fanOutModel models a hub dispersing funds quickly: on each eligible tick it
// sends to every neighbor at once, splitting the tick budget across them so
// the total spend per tick matches the other variants.
type fanOutModel struct {
	base
}

func (m *fanOutModel) Type() string { return "FanOut" }

func (m *fanOutModel) SendTransaction(step int64) {
	dests := m.host.Destinations()
	if len(dests) == 0 {
		return
	}
	if !m.eligible(step) {
		return
	}
	amount := m.TransactionAmount() / float64(len(dests))
	for _, dest := range dests {
		m.submit(step, amount, dest)
	}
}
