package model

// fanInModel is the dual of fan-out: many origin accounts each run this model
// independently with their own cadence, all routing to one shared collector.
// By convention the collector is the first destination of every member.
type fanInModel struct {
	base
}

func (m *fanInModel) Type() string { return "FanIn" }

func (m *fanInModel) SendTransaction(step int64) {
	dests := m.host.Destinations()
	if len(dests) == 0 {
		return
	}
	if !m.eligible(step) {
		return
	}
	m.submit(step, m.TransactionAmount(), dests[0])
}
