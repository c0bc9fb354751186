package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var logHeader = []string{"step", "type", "amount", "orig", "dest", "is_fraud", "alert_id"}

// WriteLog serializes the transaction log as CSV under the provided directory
// and returns the written path.
func WriteLog(txs []Transaction, dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(logHeader); err != nil {
		return "", fmt.Errorf("write header for %s: %w", path, err)
	}
	for _, tx := range txs {
		record := []string{
			strconv.FormatInt(tx.Step, 10),
			tx.Type,
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.Origin,
			tx.Destination,
			strconv.FormatBool(tx.IsFraud),
			strconv.FormatInt(tx.AlertID, 10),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write record for %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, nil
}

// ReadLog parses a CSV transaction log written by WriteLog.
func ReadLog(path string) ([]Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	txs := make([]Transaction, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(logHeader) {
			return nil, fmt.Errorf("%s: row %d has %d fields, want %d", path, i+2, len(record), len(logHeader))
		}
		step, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d step: %w", path, i+2, err)
		}
		amount, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d amount: %w", path, i+2, err)
		}
		fraud, err := strconv.ParseBool(record[5])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d is_fraud: %w", path, i+2, err)
		}
		alertID, err := strconv.ParseInt(record[6], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d alert_id: %w", path, i+2, err)
		}
		txs = append(txs, Transaction{
			Step:        step,
			Type:        record[1],
			Amount:      amount,
			Origin:      record[3],
			Destination: record[4],
			IsFraud:     fraud,
			AlertID:     alertID,
		})
	}
	return txs, nil
}
