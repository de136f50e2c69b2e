package contract

import (
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/errors"
	"github.com/mezonai/jetton/message"
)

// TreasuryCode is the code of funded test/operator accounts.
var TreasuryCode = NewCode("treasury", 1)

// Treasury accepts every internal message and cannot be driven externally; the ledger
// sends on its behalf.
type Treasury struct{}

func (Treasury) Name() string { return "treasury" }

func (Treasury) ReceiveInternal(*Context, *message.Internal) error {
	return nil
}

func (Treasury) ReceiveExternal(*Context, *cell.Cell) error {
	return errors.NewError(errors.ErrCodeUnauthorized, "treasury does not accept external messages")
}

func (Treasury) GetMethods() map[string]GetMethod {
	return map[string]GetMethod{
		"balance": func(q *Query, _ ...any) ([]any, error) {
			return []any{q.Balance}, nil
		},
	}
}

// TreasuryData names a treasury so that each name derives a distinct address.
func TreasuryData(name string) *cell.Cell {
	b := cell.NewBuilder()
	if err := b.StoreStringTail(name); err != nil {
		panic(err)
	}
	return b.EndCell()
}
