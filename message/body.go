package message

import (
	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
)

// Body is one of the operation records below. The set is closed.
type Body interface {
	Opcode() Opcode
	queryID() uint64
	storeFields(b *cell.Builder) error
}

// QueryID returns the correlation token of any body.
func QueryID(b Body) uint64 {
	return b.queryID()
}

type Mint struct {
	QueryID        uint64
	To             *address.Address
	TotalTonAmount *uint256.Int
	JettonAmount   *uint256.Int
	Inner          *InternalTransfer
}

type InternalTransfer struct {
	QueryID          uint64
	JettonAmount     *uint256.Int
	From             *address.Address
	ResponseAddress  *address.Address
	ForwardTonAmount *uint256.Int
	ForwardPayload   *cell.Cell
}

type Transfer struct {
	QueryID          uint64
	JettonAmount     *uint256.Int
	To               *address.Address
	ResponseAddress  *address.Address
	CustomPayload    *cell.Cell
	ForwardTonAmount *uint256.Int
	ForwardPayload   *cell.Cell
}

type Burn struct {
	QueryID         uint64
	JettonAmount    *uint256.Int
	ResponseAddress *address.Address
	CustomPayload   *cell.Cell
}

type ChangeAdmin struct {
	QueryID  uint64
	NewAdmin *address.Address
}

type ChangeContent struct {
	QueryID uint64
	Content *cell.Cell
}

// BurnNotification is sent by a wallet to its minter after a burn debit.
type BurnNotification struct {
	QueryID         uint64
	JettonAmount    *uint256.Int
	Owner           *address.Address
	ResponseAddress *address.Address
}

// TransferNotification tells a wallet owner that jettons arrived.
type TransferNotification struct {
	QueryID        uint64
	JettonAmount   *uint256.Int
	From           *address.Address
	ForwardPayload *cell.Cell
}

// Excesses returns unused attached value.
type Excesses struct {
	QueryID uint64
}

func (*Mint) Opcode() Opcode                 { return OpMint }
func (*InternalTransfer) Opcode() Opcode     { return OpInternalTransfer }
func (*Transfer) Opcode() Opcode             { return OpTransfer }
func (*Burn) Opcode() Opcode                 { return OpBurn }
func (*ChangeAdmin) Opcode() Opcode          { return OpChangeAdmin }
func (*ChangeContent) Opcode() Opcode        { return OpChangeContent }
func (*BurnNotification) Opcode() Opcode     { return OpBurnNotification }
func (*TransferNotification) Opcode() Opcode { return OpTransferNotification }
func (*Excesses) Opcode() Opcode             { return OpExcesses }

func (m *Mint) queryID() uint64                 { return m.QueryID }
func (m *InternalTransfer) queryID() uint64     { return m.QueryID }
func (m *Transfer) queryID() uint64             { return m.QueryID }
func (m *Burn) queryID() uint64                 { return m.QueryID }
func (m *ChangeAdmin) queryID() uint64          { return m.QueryID }
func (m *ChangeContent) queryID() uint64        { return m.QueryID }
func (m *BurnNotification) queryID() uint64     { return m.QueryID }
func (m *TransferNotification) queryID() uint64 { return m.QueryID }
func (m *Excesses) queryID() uint64             { return m.QueryID }

func (m *Mint) storeFields(b *cell.Builder) error {
	transfer := m.Inner
	if transfer == nil {
		transfer = &InternalTransfer{QueryID: m.QueryID, JettonAmount: m.JettonAmount}
	}
	inner, err := Encode(transfer)
	if err != nil {
		return err
	}
	return run(
		func() error { return address.Store(b, m.To) },
		func() error { return b.StoreCoins(m.TotalTonAmount) },
		func() error { return b.StoreCoins(m.JettonAmount) },
		func() error { return b.StoreRef(inner) },
	)
}

func (m *InternalTransfer) storeFields(b *cell.Builder) error {
	return run(
		func() error { return b.StoreCoins(m.JettonAmount) },
		func() error { return address.Store(b, m.From) },
		func() error { return address.Store(b, m.ResponseAddress) },
		func() error { return b.StoreCoins(m.ForwardTonAmount) },
		func() error { return b.StoreMaybeRef(m.ForwardPayload) },
	)
}

func (m *Transfer) storeFields(b *cell.Builder) error {
	return run(
		func() error { return b.StoreCoins(m.JettonAmount) },
		func() error { return address.Store(b, m.To) },
		func() error { return address.Store(b, m.ResponseAddress) },
		func() error { return b.StoreMaybeRef(m.CustomPayload) },
		func() error { return b.StoreCoins(m.ForwardTonAmount) },
		func() error { return b.StoreMaybeRef(m.ForwardPayload) },
	)
}

func (m *Burn) storeFields(b *cell.Builder) error {
	return run(
		func() error { return b.StoreCoins(m.JettonAmount) },
		func() error { return address.Store(b, m.ResponseAddress) },
		func() error { return b.StoreMaybeRef(m.CustomPayload) },
	)
}

func (m *ChangeAdmin) storeFields(b *cell.Builder) error {
	return address.Store(b, m.NewAdmin)
}

func (m *ChangeContent) storeFields(b *cell.Builder) error {
	content := m.Content
	if content == nil {
		content = cell.Empty()
	}
	return b.StoreRef(content)
}

func (m *BurnNotification) storeFields(b *cell.Builder) error {
	return run(
		func() error { return b.StoreCoins(m.JettonAmount) },
		func() error { return address.Store(b, m.Owner) },
		func() error { return address.Store(b, m.ResponseAddress) },
	)
}

func (m *TransferNotification) storeFields(b *cell.Builder) error {
	return run(
		func() error { return b.StoreCoins(m.JettonAmount) },
		func() error { return address.Store(b, m.From) },
		func() error { return b.StoreMaybeRef(m.ForwardPayload) },
	)
}

func (m *Excesses) storeFields(*cell.Builder) error {
	return nil
}

func run(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
