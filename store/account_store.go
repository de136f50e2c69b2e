package store

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/db"
	"github.com/mezonai/jetton/jsonx"
	"github.com/mezonai/jetton/logx"
	"github.com/mezonai/jetton/types"
)

type AccountStore interface {
	Store(account *types.Account) error
	StoreBatch(accounts []*types.Account) error
	// PutBatch stages the account into a batch owned by the caller
	PutBatch(batch db.DatabaseBatch, account *types.Account) error
	GetByAddr(addr *address.Address) (*types.Account, error)
	GetBatch(addrs []*address.Address) (map[string]*types.Account, error)
	ExistsByAddr(addr *address.Address) (bool, error)
	// Iterate visits every stored account; fn returns false to stop
	Iterate(fn func(*types.Account) bool) error
	MustClose()
}

type GenericAccountStore struct {
	mu         sync.RWMutex
	dbProvider db.DatabaseProvider
}

func NewGenericAccountStore(dbProvider db.DatabaseProvider) (*GenericAccountStore, error) {
	if dbProvider == nil {
		return nil, errors.New("provider cannot be nil")
	}

	return &GenericAccountStore{
		dbProvider: dbProvider,
	}, nil
}

func (as *GenericAccountStore) Store(account *types.Account) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	accountData, err := jsonx.Marshal(account)
	if err != nil {
		return errors.Wrap(err, "failed to marshal account")
	}

	if err := as.dbProvider.Put(as.getDbKey(account.Address), accountData); err != nil {
		return errors.Wrapf(err, "failed to write account %s to db", account.Address)
	}
	return nil
}

func (as *GenericAccountStore) StoreBatch(accounts []*types.Account) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	batch := as.dbProvider.Batch()
	defer batch.Close()

	for _, account := range accounts {
		if err := as.put(batch, account); err != nil {
			return err
		}
	}

	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "failed to write batch of accounts to database")
	}
	return nil
}

func (as *GenericAccountStore) PutBatch(batch db.DatabaseBatch, account *types.Account) error {
	return as.put(batch, account)
}

func (as *GenericAccountStore) put(batch db.DatabaseBatch, account *types.Account) error {
	if account == nil || account.Address == nil {
		return errors.New("account without address")
	}
	accountData, err := jsonx.Marshal(account)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal account %s", account.Address)
	}
	batch.Put(as.getDbKey(account.Address), accountData)
	return nil
}

// GetByAddr returns account instance from db, return both nil if not exist
func (as *GenericAccountStore) GetByAddr(addr *address.Address) (*types.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	data, err := as.dbProvider.Get(as.getDbKey(addr))
	if err != nil {
		return nil, errors.Wrapf(err, "could not get account %s from db", addr)
	}
	if data == nil {
		return nil, nil
	}
	return decodeAccount(addr, data)
}

// GetBatch retrieves multiple accounts keyed by their raw address form. Missing accounts return as nil entries.
func (as *GenericAccountStore) GetBatch(addrs []*address.Address) (map[string]*types.Account, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	keys := make([][]byte, 0, len(addrs))
	for _, addr := range addrs {
		if addr != nil {
			keys = append(keys, as.getDbKey(addr))
		}
	}
	raw, err := as.dbProvider.GetBatch(keys)
	if err != nil {
		return nil, errors.Wrap(err, "could not get accounts from db")
	}

	result := make(map[string]*types.Account, len(keys))
	for _, addr := range addrs {
		if addr == nil {
			continue
		}
		data, ok := raw[string(as.getDbKey(addr))]
		if !ok {
			result[addr.String()] = nil
			continue
		}
		acc, err := decodeAccount(addr, data)
		if err != nil {
			return nil, err
		}
		result[addr.String()] = acc
	}
	return result, nil
}

func (as *GenericAccountStore) ExistsByAddr(addr *address.Address) (bool, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.dbProvider.Has(as.getDbKey(addr))
}

func (as *GenericAccountStore) Iterate(fn func(*types.Account) bool) error {
	iterable, ok := as.dbProvider.(db.IterableProvider)
	if !ok {
		return errors.New("provider does not support iteration")
	}
	var decodeErr error
	err := iterable.IteratePrefix([]byte(PrefixAccount), func(_, value []byte) bool {
		var acc types.Account
		if err := jsonx.Unmarshal(value, &acc); err != nil {
			decodeErr = errors.Wrap(err, "failed to unmarshal account")
			return false
		}
		return fn(&acc)
	})
	if err != nil {
		return err
	}
	return decodeErr
}

func (as *GenericAccountStore) MustClose() {
	err := as.dbProvider.Close()
	if err != nil {
		logx.Error("ACCOUNT_STORE", "Failed to close db provider:", err.Error())
	}
}

func (as *GenericAccountStore) getDbKey(addr *address.Address) []byte {
	return append([]byte(PrefixAccount), addr.Key()...)
}

func decodeAccount(addr *address.Address, data []byte) (*types.Account, error) {
	var acc types.Account
	if err := jsonx.Unmarshal(data, &acc); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal account %s", addr)
	}
	return &acc, nil
}
