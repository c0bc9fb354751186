package account

import "math/rand"

// TypeCount is one row of the weighted transaction-type table: the label
// occurs Count times in the expanded pool.
type TypeCount struct {
	Label string
	Count int
}

// TypeTable picks transaction-type labels with frequencies proportional to the
// configured counts. It owns a dedicated rand stream so label draws stay
// deterministic regardless of how accounts are swept.
type TypeTable struct {
	labels []string
	rng    *rand.Rand
}

// NewTypeTable expands the weighted rows into a flat pool. Rows with a
// non-positive count are skipped.
func NewTypeTable(rows []TypeCount, rng *rand.Rand) *TypeTable {
	var labels []string
	for _, row := range rows {
		for i := 0; i < row.Count; i++ {
			labels = append(labels, row.Label)
		}
	}
	if len(labels) == 0 {
		return nil
	}
	return &TypeTable{labels: labels, rng: rng}
}

// Pick draws one label from the pool.
func (t *TypeTable) Pick() string {
	return t.labels[t.rng.Intn(len(t.labels))]
}
