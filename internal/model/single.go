package model

// singleModel sends one transaction per eligible tick, cycling through the
// destination list one neighbor at a time. Unlike Forward it derives the
// cursor from the elapsed tick count instead of keeping mutable state.
type singleModel struct {
	base
}

func (m *singleModel) Type() string { return "Single" }

func (m *singleModel) SendTransaction(step int64) {
	dests := m.host.Destinations()
	if len(dests) == 0 {
		return
	}
	if !m.eligible(step) {
		return
	}
	tick := (step - m.startStep) / int64(m.interval)
	dest := dests[tick%int64(len(dests))]
	m.submit(step, m.TransactionAmount(), dest)
}
