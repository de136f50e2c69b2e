package types

import (
	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
)

type AccountStatus string

const (
	// AccountUninit has an address and possibly a balance, but no code yet.
	AccountUninit AccountStatus = "uninit"
	AccountActive AccountStatus = "active"
)

// Account is one entry of the actor arena.
type Account struct {
	Address *address.Address `json:"address"`
	Status  AccountStatus    `json:"status"`
	Balance *uint256.Int     `json:"balance"`
	Code    *cell.Cell       `json:"code,omitempty"`
	Data    *cell.Cell       `json:"data,omitempty"`
	LastLt  uint64           `json:"last_lt"`
}

// NewUninitAccount is the implicit state of every address never touched before.
func NewUninitAccount(addr *address.Address) *Account {
	return &Account{
		Address: addr,
		Status:  AccountUninit,
		Balance: new(uint256.Int),
	}
}

func (a *Account) IsActive() bool {
	return a.Status == AccountActive
}

// Clone copies the mutable parts; cells are immutable and shared.
func (a *Account) Clone() *Account {
	out := *a
	if a.Balance != nil {
		out.Balance = new(uint256.Int).Set(a.Balance)
	} else {
		out.Balance = new(uint256.Int)
	}
	return &out
}
