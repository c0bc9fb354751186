package model

// forwardModel relays money onward to each destination in turn, keeping a
// circular cursor over the ordered destination list. It is the reference
// variant: the other variants share its cadence gate and budget math.
type forwardModel struct {
	base
	index int
}

func (m *forwardModel) Type() string { return "Forward" }

func (m *forwardModel) SendTransaction(step int64) {
	dests := m.host.Destinations()
	if len(dests) == 0 {
		return
	}
	if !m.eligible(step) {
		return
	}
	if m.index >= len(dests) {
		m.index = 0
	}
	m.submit(step, m.TransactionAmount(), dests[m.index])
	m.index++
}
