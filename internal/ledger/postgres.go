package ledger

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore persists transactions to a Postgres table so large runs can be
// queried with SQL instead of post-processing the CSV log.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects with the given DSN and ensures the schema exists.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := &PostgresStore{db: db}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) ensureSchema() error {
	const ddl = `CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		step BIGINT NOT NULL,
		tx_type TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		is_fraud BOOLEAN NOT NULL,
		alert_id BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("ensure transactions schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(tx Transaction) error {
	const query = `INSERT INTO transactions
		(id, step, tx_type, amount, origin, destination, is_fraud, alert_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.db.Exec(query,
		tx.ID, tx.Step, tx.Type, tx.Amount, tx.Origin, tx.Destination, tx.IsFraud, tx.AlertID, tx.CreatedAt)
	return err
}

func (s *PostgresStore) List() ([]Transaction, error) {
	const query = `SELECT id, step, tx_type, amount, origin, destination, is_fraud, alert_id, created_at
		FROM transactions ORDER BY step, created_at`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.Step, &tx.Type, &tx.Amount, &tx.Origin,
			&tx.Destination, &tx.IsFraud, &tx.AlertID, &tx.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

var _ Store = (*PostgresStore)(nil)
