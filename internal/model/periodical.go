package model

// periodicalModel keeps the shared cadence contract but varies the per-tick
// amount along a repeating multiplier schedule. The default schedule is the
// constant {1.0}, which makes it behave like Single; richer schedules are an
// extension point configured per account row.
type periodicalModel struct {
	base
	schedule []float64
	index    int
}

func (m *periodicalModel) Type() string { return "Periodical" }

func (m *periodicalModel) SetParameters(p Params) {
	m.base.SetParameters(p)
	if len(p.Schedule) > 0 {
		m.schedule = append([]float64(nil), p.Schedule...)
	}
}

func (m *periodicalModel) SendTransaction(step int64) {
	dests := m.host.Destinations()
	if len(dests) == 0 {
		return
	}
	if !m.eligible(step) {
		return
	}
	multiplier := m.schedule[m.index%len(m.schedule)]
	dest := dests[m.index%len(dests)]
	m.submit(step, m.TransactionAmount()*multiplier, dest)
	m.index++
}
