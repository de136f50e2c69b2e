package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/types"
)

// ComputeAccountsHash computes a deterministic hash over a set of accounts.
// Each record is encoded as: len(address)|address|status|balance(32B BE)|code hash|data hash|last lt(8B BE).
// Accounts are sorted by address for determinism.
func ComputeAccountsHash(accounts map[string]*types.Account) [32]byte {
	if len(accounts) == 0 {
		return [32]byte{}
	}
	h := sha256.New()

	addresses := make([]string, 0, len(accounts))
	for addr := range accounts {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	buf := make([]byte, 8)
	for _, addr := range addresses {
		acc := accounts[addr]
		binary.BigEndian.PutUint64(buf, uint64(len(addr)))
		h.Write(buf)
		h.Write([]byte(addr))
		h.Write([]byte(acc.Status))
		balance := acc.Balance
		if balance == nil {
			balance = new(uint256.Int)
		}
		b32 := balance.Bytes32()
		h.Write(b32[:])
		if acc.Code != nil {
			ch := acc.Code.Hash()
			h.Write(ch[:])
		}
		if acc.Data != nil {
			dh := acc.Data.Hash()
			h.Write(dh[:])
		}
		binary.BigEndian.PutUint64(buf, acc.LastLt)
		h.Write(buf)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// CombineStateHash combines the accounts hash with the logical time it was taken at.
// new = SHA256(lt || accounts). An empty arena hashes to zero.
func CombineStateHash(lt uint64, accounts [32]byte) [32]byte {
	if isZeroHash(accounts) {
		return accounts
	}
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], lt)
	h.Write(buf[:])
	h.Write(accounts[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func isZeroHash(h [32]byte) bool {
	for _, b := range h {
		if b != 0 {
			return false
		}
	}
	return true
}

// StateHash fingerprints every stored account at the current logical time. Two ledgers
// fed the same messages in the same order produce the same hash.
func (l *Ledger) StateHash() ([32]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts, err := l.snapshot()
	if err != nil {
		return [32]byte{}, err
	}
	return CombineStateHash(l.meta.Lt, ComputeAccountsHash(accounts)), nil
}

// TotalValue is the native value held by accounts plus value in flight plus fees
// collected. Without new treasury funding it never changes.
func (l *Ledger) TotalValue() (*uint256.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts, err := l.snapshot()
	if err != nil {
		return nil, err
	}
	total := new(uint256.Int).Set(l.meta.CollectedFees)
	for _, acc := range accounts {
		if acc.Balance != nil {
			total.Add(total, acc.Balance)
		}
	}
	for _, m := range l.queue {
		total.Add(total, m.Amount())
	}
	return total, nil
}

func (l *Ledger) snapshot() (map[string]*types.Account, error) {
	accounts := make(map[string]*types.Account)
	err := l.stores.Accounts.Iterate(func(acc *types.Account) bool {
		accounts[acc.Address.String()] = acc
		return true
	})
	return accounts, err
}
