package jetton

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/contract"
)

var (
	// MinterCode and WalletCode identify the two implementations in this package.
	MinterCode = contract.NewCode("jetton-minter", 1)
	WalletCode = contract.NewCode("jetton-wallet", 1)
)

// MinterData is the minter storage: total_supply:Coins admin:MsgAddress ^content ^wallet_code.
type MinterData struct {
	TotalSupply *uint256.Int
	Admin       *address.Address
	Content     *cell.Cell
	WalletCode  *cell.Cell
}

func (d *MinterData) Cell() (*cell.Cell, error) {
	b := cell.NewBuilder()
	if err := b.StoreCoins(d.TotalSupply); err != nil {
		return nil, err
	}
	if err := address.Store(b, d.Admin); err != nil {
		return nil, err
	}
	content := d.Content
	if content == nil {
		content = cell.Empty()
	}
	if err := b.StoreRef(content); err != nil {
		return nil, err
	}
	if err := b.StoreRef(d.WalletCode); err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}

func LoadMinterData(c *cell.Cell) (*MinterData, error) {
	s := c.BeginParse()
	d := &MinterData{}
	var err error
	if d.TotalSupply, err = s.LoadCoins(); err != nil {
		return nil, fmt.Errorf("minter data: %w", err)
	}
	if d.Admin, err = address.Load(s); err != nil {
		return nil, fmt.Errorf("minter data: %w", err)
	}
	if d.Content, err = s.LoadRef(); err != nil {
		return nil, fmt.Errorf("minter data: %w", err)
	}
	if d.WalletCode, err = s.LoadRef(); err != nil {
		return nil, fmt.Errorf("minter data: %w", err)
	}
	return d, nil
}

// WalletData is the wallet storage: balance:Coins owner:MsgAddress minter:MsgAddress ^wallet_code.
type WalletData struct {
	Balance    *uint256.Int
	Owner      *address.Address
	Minter     *address.Address
	WalletCode *cell.Cell
}

func (d *WalletData) Cell() (*cell.Cell, error) {
	b := cell.NewBuilder()
	if err := b.StoreCoins(d.Balance); err != nil {
		return nil, err
	}
	if err := address.Store(b, d.Owner); err != nil {
		return nil, err
	}
	if err := address.Store(b, d.Minter); err != nil {
		return nil, err
	}
	if err := b.StoreRef(d.WalletCode); err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}

func LoadWalletData(c *cell.Cell) (*WalletData, error) {
	s := c.BeginParse()
	d := &WalletData{}
	var err error
	if d.Balance, err = s.LoadCoins(); err != nil {
		return nil, fmt.Errorf("wallet data: %w", err)
	}
	if d.Owner, err = address.Load(s); err != nil {
		return nil, fmt.Errorf("wallet data: %w", err)
	}
	if d.Minter, err = address.Load(s); err != nil {
		return nil, fmt.Errorf("wallet data: %w", err)
	}
	if d.WalletCode, err = s.LoadRef(); err != nil {
		return nil, fmt.Errorf("wallet data: %w", err)
	}
	return d, nil
}

// MinterStateInit is the deploy state of a minter with zero supply.
func MinterStateInit(admin *address.Address, content, walletCode *cell.Cell) (*address.StateInit, error) {
	data, err := (&MinterData{TotalSupply: new(uint256.Int), Admin: admin, Content: content, WalletCode: walletCode}).Cell()
	if err != nil {
		return nil, err
	}
	return &address.StateInit{Code: MinterCode, Data: data}, nil
}

// WalletStateInit is the state a wallet for (owner, minter) starts from. Its hash is the wallet address.
func WalletStateInit(owner, minter *address.Address, walletCode *cell.Cell) (*address.StateInit, error) {
	data, err := (&WalletData{Balance: new(uint256.Int), Owner: owner, Minter: minter, WalletCode: walletCode}).Cell()
	if err != nil {
		return nil, err
	}
	return &address.StateInit{Code: walletCode, Data: data}, nil
}

// WalletAddress derives the wallet of owner for minter without any lookup.
func WalletAddress(workchain int32, owner, minter *address.Address, walletCode *cell.Cell) (*address.Address, error) {
	si, err := WalletStateInit(owner, minter, walletCode)
	if err != nil {
		return nil, err
	}
	return si.Address(workchain)
}
