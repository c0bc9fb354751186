// Package loader reads the CSV input files describing the pre-built account
// population: account rows, the directed edge list, alert memberships and the
// weighted transaction-type table. Rows starting with '#' are comments.
// Columns are resolved by header name so upstream generators can reorder or
// extend the files.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Unset marks an absent optional numeric field.
const Unset = int64(-1)

// AccountRow is one account definition. Optional fields keep their unset
// sentinels; the engine resolves them against the configured defaults.
type AccountRow struct {
	ID          string
	Balance     float64 // -1 when unset
	Model       string  // empty when unset
	Interval    int     // 0 when unset
	Start       int64   // -1 when unset
	End         int64   // -1 when unset
	AmountRatio float64 // 0 when unset
	Schedule    []float64
}

// EdgeRow is one directed edge of the account graph; file order defines the
// destination order the models cycle over.
type EdgeRow struct {
	Src string
	Dst string
}

// AlertRow assigns an account to a labeled alert subgraph.
type AlertRow struct {
	AlertID   int64
	AccountID string
	IsMain    bool
}

// TypeRow is one row of the weighted transaction-type table.
type TypeRow struct {
	Label string
	Count int
}

// LoadAccounts parses the account CSV. Required column: id.
func LoadAccounts(path string) ([]AccountRow, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idCol, ok := header["id"]
	if !ok {
		return nil, fmt.Errorf("%s: missing required column \"id\"", path)
	}

	rows := make([]AccountRow, 0, len(records))
	for i, record := range records {
		id := field(record, idCol)
		if id == "" {
			return nil, fmt.Errorf("%s: row %d has empty id", path, i+2)
		}
		row := AccountRow{
			ID:          id,
			Balance:     parseFloatField(record, header, "balance", -1),
			Model:       field(record, col(header, "model")),
			Interval:    int(parseIntField(record, header, "interval", 0)),
			Start:       parseIntField(record, header, "start", Unset),
			End:         parseIntField(record, header, "end", Unset),
			AmountRatio: parseFloatField(record, header, "ratio", 0),
		}
		if sched := field(record, col(header, "schedule")); sched != "" {
			row.Schedule, err = parseSchedule(sched)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d schedule: %w", path, i+2, err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadEdges parses the directed edge list. Required columns: src, dst.
func LoadEdges(path string) ([]EdgeRow, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	srcCol, srcOK := header["src"]
	dstCol, dstOK := header["dst"]
	if !srcOK || !dstOK {
		return nil, fmt.Errorf("%s: missing required columns \"src\" and \"dst\"", path)
	}

	edges := make([]EdgeRow, 0, len(records))
	for i, record := range records {
		src, dst := field(record, srcCol), field(record, dstCol)
		if src == "" || dst == "" {
			return nil, fmt.Errorf("%s: row %d has empty endpoint", path, i+2)
		}
		edges = append(edges, EdgeRow{Src: src, Dst: dst})
	}
	return edges, nil
}

// LoadAlertMembers parses the alert membership file. Required columns:
// alert_id, account_id.
func LoadAlertMembers(path string) ([]AlertRow, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	alertCol, alertOK := header["alert_id"]
	acctCol, acctOK := header["account_id"]
	if !alertOK || !acctOK {
		return nil, fmt.Errorf("%s: missing required columns \"alert_id\" and \"account_id\"", path)
	}

	rows := make([]AlertRow, 0, len(records))
	for i, record := range records {
		alertID, err := strconv.ParseInt(field(record, alertCol), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d alert_id: %w", path, i+2, err)
		}
		acctID := field(record, acctCol)
		if acctID == "" {
			return nil, fmt.Errorf("%s: row %d has empty account_id", path, i+2)
		}
		rows = append(rows, AlertRow{
			AlertID:   alertID,
			AccountID: acctID,
			IsMain:    parseFlag(field(record, col(header, "is_main"))),
		})
	}
	return rows, nil
}

// LoadTransactionTypes parses the weighted type table. Required columns:
// type, count.
func LoadTransactionTypes(path string) ([]TypeRow, error) {
	records, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	typeCol, typeOK := header["type"]
	countCol, countOK := header["count"]
	if !typeOK || !countOK {
		return nil, fmt.Errorf("%s: missing required columns \"type\" and \"count\"", path)
	}

	rows := make([]TypeRow, 0, len(records))
	for i, record := range records {
		count, err := strconv.Atoi(field(record, countCol))
		if err != nil {
			return nil, fmt.Errorf("%s: row %d count: %w", path, i+2, err)
		}
		rows = append(rows, TypeRow{Label: field(record, typeCol), Count: count})
	}
	return rows, nil
}

func readCSV(path string) ([][]string, map[string]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}

	header := make(map[string]int, len(all[0]))
	for i, name := range all[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var records [][]string
	for _, record := range all[1:] {
		if len(record) == 0 || strings.HasPrefix(record[0], "#") {
			continue
		}
		records = append(records, record)
	}
	return records, header, nil
}

func col(header map[string]int, name string) int {
	if idx, ok := header[name]; ok {
		return idx
	}
	return -1
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseIntField(record []string, header map[string]int, name string, fallback int64) int64 {
	v := field(record, col(header, name))
	if v == "" {
		return fallback
	}
	if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
		return parsed
	}
	return fallback
}

func parseFloatField(record []string, header map[string]int, name string, fallback float64) float64 {
	v := field(record, col(header, name))
	if v == "" {
		return fallback
	}
	if parsed, err := strconv.ParseFloat(v, 64); err == nil {
		return parsed
	}
	return fallback
}

func parseFlag(v string) bool {
	return strings.EqualFold(v, "true")
}

// parseSchedule parses a semicolon-separated multiplier list like "1.0;0.5".
func parseSchedule(v string) ([]float64, error) {
	parts := strings.Split(v, ";")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		m, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad multiplier %q", p)
		}
		out = append(out, m)
	}
	return out, nil
}
