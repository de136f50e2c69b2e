package store

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/db"
	"github.com/mezonai/jetton/jsonx"
	"github.com/mezonai/jetton/logx"
	"github.com/mezonai/jetton/types"
	"github.com/mezonai/jetton/utils"
)

// TxStore persists transaction receipts and a per-account index ordered by logical time
type TxStore interface {
	Store(tx *types.Transaction) error
	StoreBatch(txs []*types.Transaction) error
	PutBatch(batch db.DatabaseBatch, tx *types.Transaction) error
	GetByHash(txHash string) (*types.Transaction, error)
	GetBatch(txHashes []string) ([]*types.Transaction, error)
	// ListByAccount returns up to limit receipts of addr, oldest first; limit <= 0 means all
	ListByAccount(addr *address.Address, limit int) ([]*types.Transaction, error)
	MustClose()
}

// GenericTxStore provides transaction storage operations
type GenericTxStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

// NewGenericTxStore creates a new transaction store
func NewGenericTxStore(dbProvider db.DatabaseProvider) (*GenericTxStore, error) {
	if dbProvider == nil {
		return nil, errors.New("provider cannot be nil")
	}

	return &GenericTxStore{
		dbProvider: dbProvider,
	}, nil
}

// Store stores a transaction in the database
func (ts *GenericTxStore) Store(tx *types.Transaction) error {
	return ts.StoreBatch([]*types.Transaction{tx})
}

// StoreBatch stores a batch of transactions in the database
func (ts *GenericTxStore) StoreBatch(txs []*types.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	batch := ts.dbProvider.Batch()
	defer batch.Close()

	for _, tx := range txs {
		if err := ts.put(batch, tx); err != nil {
			return err
		}
	}

	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "failed to write transaction to database")
	}

	logx.Debug("TX_STORE", "StoreBatch: stored ", len(txs), " transactions")
	return nil
}

func (ts *GenericTxStore) PutBatch(batch db.DatabaseBatch, tx *types.Transaction) error {
	return ts.put(batch, tx)
}

func (ts *GenericTxStore) put(batch db.DatabaseBatch, tx *types.Transaction) error {
	txData, err := jsonx.Marshal(tx)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal transaction %s", tx.Hash)
	}
	batch.Put(ts.getDbKey(tx.Hash), txData)
	batch.Put(accountTxKey(tx.Account, tx.Lt), []byte(tx.Hash))
	return nil
}

// GetByHash retrieves a transaction by its hash, nil when unknown
func (ts *GenericTxStore) GetByHash(txHash string) (*types.Transaction, error) {
	data, err := ts.dbProvider.Get(ts.getDbKey(txHash))
	if err != nil {
		return nil, errors.Wrapf(err, "could not get transaction %s from db", txHash)
	}
	if data == nil {
		return nil, nil
	}

	var tx types.Transaction
	if err := jsonx.Unmarshal(data, &tx); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal transaction %s", txHash)
	}
	return &tx, nil
}

// GetBatch retrieves multiple transactions by their hashes, skipping unknown ones
func (ts *GenericTxStore) GetBatch(txHashes []string) ([]*types.Transaction, error) {
	if len(txHashes) == 0 {
		return []*types.Transaction{}, nil
	}

	ts.mu.RLock()
	defer ts.mu.RUnlock()

	transactions := make([]*types.Transaction, 0, len(txHashes))
	for _, txHash := range txHashes {
		data, err := ts.dbProvider.Get(ts.getDbKey(txHash))
		if err != nil {
			logx.Warn("TX_STORE", fmt.Sprintf("Could not get transaction %s from database: %s", utils.ShortHash(txHash), err.Error()))
			continue
		}
		if data == nil {
			continue
		}

		var tx types.Transaction
		if err := jsonx.Unmarshal(data, &tx); err != nil {
			logx.Warn("TX_STORE", fmt.Sprintf("Failed to unmarshal transaction %s: %s", utils.ShortHash(txHash), err.Error()))
			continue
		}
		transactions = append(transactions, &tx)
	}

	return transactions, nil
}

func (ts *GenericTxStore) ListByAccount(addr *address.Address, limit int) ([]*types.Transaction, error) {
	iterable, ok := ts.dbProvider.(db.IterableProvider)
	if !ok {
		return nil, errors.New("provider does not support iteration")
	}
	var hashes []string
	prefix := append([]byte(PrefixAccountTx), addr.Key()...)
	err := iterable.IteratePrefix(prefix, func(_, value []byte) bool {
		hashes = append(hashes, string(value))
		return limit <= 0 || len(hashes) < limit
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not list transactions of %s", addr)
	}
	return ts.GetBatch(hashes)
}

// MustClose closes the transaction store and related resources
func (ts *GenericTxStore) MustClose() {
	err := ts.dbProvider.Close()
	if err != nil {
		logx.Error("TX_STORE", "Failed to close provider")
	}
}

func (ts *GenericTxStore) getDbKey(txHash string) []byte {
	return []byte(PrefixTx + txHash)
}

func accountTxKey(addr *address.Address, lt uint64) []byte {
	key := append([]byte(PrefixAccountTx), addr.Key()...)
	var ltBytes [8]byte
	binary.BigEndian.PutUint64(ltBytes[:], lt)
	return append(key, ltBytes[:]...)
}
