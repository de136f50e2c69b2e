package client

import (
	"context"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/ledger"
	"github.com/mezonai/jetton/message"
	"github.com/mezonai/jetton/types"
)

// Provider is the part of the ledger the wrappers drive. *ledger.Ledger implements it.
type Provider interface {
	Workchain() int32
	Fees() contract.Fees
	Send(ctx context.Context, from *address.Address, msg *message.Internal) (*ledger.SendResult, error)
	SendExternal(ctx context.Context, to *address.Address, body *cell.Cell, init *address.StateInit) (*ledger.SendResult, error)
	RunGetMethod(ctx context.Context, addr *address.Address, name string, args ...any) ([]any, error)
	GetAccount(addr *address.Address) (*types.Account, error)
}

var _ Provider = (*ledger.Ledger)(nil)
