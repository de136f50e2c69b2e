package db

import (
	"database/sql"
	"fmt"
	"regexp"
	"sync"

	"github.com/lib/pq"
)

const defaultPostgresTable = "jetton_kv"

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresProvider implements IterableProvider on a two-column bytea table
type PostgresProvider struct {
	once  sync.Once
	db    *sql.DB
	table string
}

// NewPostgresProvider connects with a lib/pq DSN and creates the key-value table if needed
func NewPostgresProvider(dsn, table string) (*PostgresProvider, error) {
	if table == "" {
		table = defaultPostgresTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (key BYTEA PRIMARY KEY, value BYTEA NOT NULL)`, pq.QuoteIdentifier(table))
	if _, err := db.Exec(create); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return &PostgresProvider{db: db, table: pq.QuoteIdentifier(table)}, nil
}

// Get retrieves a value by key
func (p *PostgresProvider) Get(key []byte) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, p.table), key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// GetBatch retrieves multiple values with a single ANY($1) query
func (p *PostgresProvider) GetBatch(keys [][]byte) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	rows, err := p.db.Query(fmt.Sprintf(`SELECT key, value FROM %s WHERE key = ANY($1)`, p.table), pq.ByteaArray(keys))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		result[string(k)] = v
	}
	return result, rows.Err()
}

// Put upserts a key-value pair
func (p *PostgresProvider) Put(key, value []byte) error {
	_, err := p.db.Exec(p.upsertSQL(), key, value)
	return err
}

// Delete removes a key-value pair
func (p *PostgresProvider) Delete(key []byte) error {
	_, err := p.db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, p.table), key)
	return err
}

// Has checks if a key exists
func (p *PostgresProvider) Has(key []byte) (bool, error) {
	var exists bool
	err := p.db.QueryRow(fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE key = $1)`, p.table), key).Scan(&exists)
	return exists, err
}

// Close closes the connection pool
func (p *PostgresProvider) Close() error {
	var err error
	p.once.Do(func() {
		err = p.db.Close()
	})
	return err
}

// IteratePrefix walks keys with the given prefix in byte order
func (p *PostgresProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	rows, err := p.db.Query(
		fmt.Sprintf(`SELECT key, value FROM %s WHERE substring(key from 1 for $2) = $1 ORDER BY key`, p.table),
		prefix, len(prefix))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		if !callback(k, v) {
			break
		}
	}
	return rows.Err()
}

// Batch returns a batch applied in one SQL transaction
func (p *PostgresProvider) Batch() DatabaseBatch {
	return &PostgresBatch{provider: p}
}

func (p *PostgresProvider) upsertSQL() string {
	return fmt.Sprintf(`INSERT INTO %s (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, p.table)
}

// PostgresBatch implements DatabaseBatch for postgres
type PostgresBatch struct {
	provider *PostgresProvider
	ops      []batchOp
}

// Put adds a key-value pair to the batch
func (b *PostgresBatch) Put(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: append([]byte{}, key...), value: append([]byte{}, value...)})
}

// Delete adds a deletion to the batch
func (b *PostgresBatch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{key: append([]byte{}, key...), delete: true})
}

// Write commits all operations in the batch
func (b *PostgresBatch) Write() error {
	tx, err := b.provider.db.Begin()
	if err != nil {
		return err
	}
	upsert := b.provider.upsertSQL()
	del := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, b.provider.table)
	for _, op := range b.ops {
		if op.delete {
			_, err = tx.Exec(del, op.key)
		} else {
			_, err = tx.Exec(upsert, op.key, op.value)
		}
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Reset clears the batch
func (b *PostgresBatch) Reset() {
	b.ops = b.ops[:0]
}

// Close releases batch resources
func (b *PostgresBatch) Close() {
	b.ops = nil
}
