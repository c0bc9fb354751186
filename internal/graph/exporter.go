package graph

import (
	"context"
	"errors"
	"sync"

	"github.com/vedika/amlgen/internal/ledger"
)

// ExportError accumulates the individual failures of a bulk export.
type ExportError struct {
	Errors []error
}

func (e *ExportError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *ExportError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *ExportError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Exporter pushes a transaction log into the graph database using a bounded
// worker pool. Account nodes are merged first so relationship writes never
// race node creation.
type Exporter struct {
	client  Client
	workers int
}

// NewExporter creates an exporter with the provided concurrency.
func NewExporter(client Client, workers int) *Exporter {
	if workers <= 0 {
		workers = 4
	}
	return &Exporter{client: client, workers: workers}
}

const (
	mergeAccountCypher = `MERGE (a:Account {id: $id})`

	createTransferCypher = `MATCH (o:Account {id: $orig}), (d:Account {id: $dest})
CREATE (o)-[:SENT {step: $step, type: $type, amount: $amount, isFraud: $isFraud, alertId: $alertId}]->(d)`
)

// Export writes every distinct account node and one relationship per
// transaction.
func (e *Exporter) Export(ctx context.Context, txs []ledger.Transaction) error {
	ids := make(map[string]struct{}, len(txs)*2)
	var ordered []string
	for _, tx := range txs {
		for _, id := range []string{tx.Origin, tx.Destination} {
			if _, seen := ids[id]; !seen {
				ids[id] = struct{}{}
				ordered = append(ordered, id)
			}
		}
	}

	if err := e.run(ctx, len(ordered), func(idx int) error {
		return e.client.ExecuteWrite(ctx, mergeAccountCypher, map[string]any{"id": ordered[idx]})
	}); err != nil {
		return err
	}

	return e.run(ctx, len(txs), func(idx int) error {
		tx := txs[idx]
		return e.client.ExecuteWrite(ctx, createTransferCypher, map[string]any{
			"orig":    tx.Origin,
			"dest":    tx.Destination,
			"step":    tx.Step,
			"type":    tx.Type,
			"amount":  tx.Amount,
			"isFraud": tx.IsFraud,
			"alertId": tx.AlertID,
		})
	})
}

func (e *Exporter) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var exportErr ExportError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		exportErr.append(err)
	}
	return exportErr.asError()
}
