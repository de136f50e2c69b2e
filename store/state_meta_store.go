package store

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/mezonai/jetton/db"
	"github.com/mezonai/jetton/jsonx"
)

// ChainMeta is the ledger-wide counters that must survive restarts.
type ChainMeta struct {
	Lt            uint64       `json:"lt"`
	CollectedFees *uint256.Int `json:"collected_fees"`
	// Minted is the native value created by treasury funding, so conservation can be checked.
	Minted *uint256.Int `json:"minted"`
}

type StateMetaStore interface {
	Get() (*ChainMeta, error)
	Set(meta *ChainMeta) error
	PutBatch(batch db.DatabaseBatch, meta *ChainMeta) error
}

type GenericStateMetaStore struct {
	provider db.DatabaseProvider
}

func NewGenericStateMetaStore(provider db.DatabaseProvider) *GenericStateMetaStore {
	return &GenericStateMetaStore{provider: provider}
}

func (s *GenericStateMetaStore) key() []byte {
	return []byte(PrefixChainMeta + ChainMetaKeyMain)
}

// Get returns zeroed counters on a fresh store.
func (s *GenericStateMetaStore) Get() (*ChainMeta, error) {
	value, err := s.provider.Get(s.key())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain meta")
	}
	meta := &ChainMeta{}
	if len(value) > 0 {
		if err := jsonx.Unmarshal(value, meta); err != nil {
			return nil, errors.Wrap(err, "invalid chain meta")
		}
	}
	if meta.CollectedFees == nil {
		meta.CollectedFees = new(uint256.Int)
	}
	if meta.Minted == nil {
		meta.Minted = new(uint256.Int)
	}
	return meta, nil
}

func (s *GenericStateMetaStore) Set(meta *ChainMeta) error {
	value, err := jsonx.Marshal(meta)
	if err != nil {
		return errors.Wrap(err, "failed to marshal chain meta")
	}
	if err := s.provider.Put(s.key(), value); err != nil {
		return errors.Wrap(err, "failed to store chain meta")
	}
	return nil
}

func (s *GenericStateMetaStore) PutBatch(batch db.DatabaseBatch, meta *ChainMeta) error {
	value, err := jsonx.Marshal(meta)
	if err != nil {
		return errors.Wrap(err, "failed to marshal chain meta")
	}
	batch.Put(s.key(), value)
	return nil
}
