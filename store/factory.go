package store

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mezonai/jetton/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// MemoryStoreType uses LevelDB over in-memory storage, nothing survives Close
	MemoryStoreType StoreType = "memory"

	// BoltStoreType uses a single bbolt file inside Directory
	BoltStoreType StoreType = "bolt"

	// PostgresStoreType keeps the key space in one postgres table
	PostgresStoreType StoreType = "postgres"

	// RedisStoreType uses the Redis implementation
	RedisStoreType StoreType = "redis"
)

const boltFileName = "jetton.db"

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	// Type specifies which store implementation to use
	Type StoreType `json:"type" yaml:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `json:"directory" yaml:"directory"`

	// DSN is the postgres connection string
	DSN   string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Table string `json:"table,omitempty" yaml:"table,omitempty"`

	RedisAddress string `json:"redis_address,omitempty" yaml:"redis_address,omitempty"`
	RedisDB      int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	switch sc.Type {
	case "":
		return errors.New("store type cannot be empty")
	case LevelDBStoreType, BoltStoreType:
		if sc.Directory == "" {
			return errors.New("directory cannot be empty")
		}
	case MemoryStoreType:
	case PostgresStoreType:
		if sc.DSN == "" {
			return errors.New("postgres store needs a dsn")
		}
	case RedisStoreType:
		if sc.RedisAddress == "" {
			return errors.New("redis store needs an address")
		}
	default:
		return errors.Errorf("unsupported store type: %s", sc.Type)
	}
	return nil
}

// Stores bundles the stores sharing one provider, plus the manager that commits across them atomically.
type Stores struct {
	Provider  db.DatabaseProvider
	Accounts  AccountStore
	Txs       TxStore
	Meta      StateMetaStore
	TxManager *db.DBTxManager
}

// Close closes the shared provider once.
func (s *Stores) Close() error {
	return s.Provider.Close()
}

// StoreFactory take responsibility to create store instances
type StoreFactory struct{}

// NewStoreFactory creates a new store factory
func NewStoreFactory() *StoreFactory {
	return &StoreFactory{}
}

// CreateStoreWithProvider creates store instances using the provider pattern
func (sf *StoreFactory) CreateStoreWithProvider(config *StoreConfig) (*Stores, error) {
	provider, err := sf.CreateProvider(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create provider")
	}
	stores, err := NewStores(provider)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}
	return stores, nil
}

// NewStores wires every store onto an existing provider.
func NewStores(provider db.DatabaseProvider) (*Stores, error) {
	accStore, err := NewGenericAccountStore(provider)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create account store")
	}

	txStore, err := NewGenericTxStore(provider)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create transaction store")
	}

	return &Stores{
		Provider:  provider,
		Accounts:  accStore,
		Txs:       txStore,
		Meta:      NewGenericStateMetaStore(provider),
		TxManager: db.NewDBTxManager(provider),
	}, nil
}

// CreateProvider creates a database provider based on the configuration
func (sf *StoreFactory) CreateProvider(config *StoreConfig) (db.DatabaseProvider, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	switch config.Type {
	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)

	case MemoryStoreType:
		return db.NewMemLevelDBProvider()

	case BoltStoreType:
		if err := os.MkdirAll(config.Directory, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", config.Directory)
		}
		return db.NewBoltProvider(filepath.Join(config.Directory, boltFileName))

	case PostgresStoreType:
		return db.NewPostgresProvider(config.DSN, config.Table)

	case RedisStoreType:
		return db.NewRedisProvider(config.RedisAddress, config.RedisDB)

	default:
		return nil, errors.Errorf("unsupported store type: %s", config.Type)
	}
}

// Global factory instance
var globalFactory = NewStoreFactory()

// CreateStore creates new store instances using the global factory
func CreateStore(config *StoreConfig) (*Stores, error) {
	return globalFactory.CreateStoreWithProvider(config)
}
