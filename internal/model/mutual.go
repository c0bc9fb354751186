package model

// mutualModel pairs two accounts that send to each other in turns. Each side
// tracks its own local tick index and only acts on even ticks; combined with
// decentralized start steps this avoids both partners firing on the same step
// without any cross-account coordination.
type mutualModel struct {
	base
	tick int
}

func (m *mutualModel) Type() string { return "Mutual" }

func (m *mutualModel) SendTransaction(step int64) {
	dests := m.host.Destinations()
	if len(dests) == 0 {
		return
	}
	if !m.eligible(step) {
		return
	}
	if m.tick%2 == 0 {
		m.submit(step, m.TransactionAmount(), dests[0])
	}
	m.tick++
}
