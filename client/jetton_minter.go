package client

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/jetton"
	"github.com/mezonai/jetton/ledger"
	"github.com/mezonai/jetton/message"
)

// MintOverhead is attached to a mint on top of the total value sent to the wallet.
var MintOverhead = uint256.NewInt(15_000_000)

// DefaultAdminValue funds ChangeAdmin and ChangeContent.
var DefaultAdminValue = uint256.NewInt(50_000_000)

type JettonMinterConfig struct {
	Admin      *address.Address
	Content    *cell.Cell
	WalletCode *cell.Cell
}

// JettonData is the result of get_jetton_data.
type JettonData struct {
	TotalSupply  *uint256.Int
	Mintable     bool
	AdminAddress *address.Address
	Content      *cell.Cell
	WalletCode   *cell.Cell
}

type JettonMinter struct {
	Address *address.Address
	Init    *address.StateInit
	p       Provider
}

func NewJettonMinterFromAddress(p Provider, addr *address.Address) *JettonMinter {
	return &JettonMinter{Address: addr, p: p}
}

// NewJettonMinterFromConfig computes the address a minter deployed with cfg and zero supply lives at.
func NewJettonMinterFromConfig(p Provider, cfg JettonMinterConfig) (*JettonMinter, error) {
	content := cfg.Content
	if content == nil {
		content = cell.Empty()
	}
	walletCode := cfg.WalletCode
	if walletCode == nil {
		walletCode = jetton.WalletCode
	}
	init, err := jetton.MinterStateInit(cfg.Admin, content, walletCode)
	if err != nil {
		return nil, err
	}
	addr, err := init.Address(p.Workchain())
	if err != nil {
		return nil, err
	}
	return &JettonMinter{Address: addr, Init: init, p: p}, nil
}

func (m *JettonMinter) SendDeploy(ctx context.Context, via *address.Address, value *uint256.Int) (*ledger.SendResult, error) {
	return m.p.Send(ctx, via, &message.Internal{Dest: m.Address, Value: value, Init: m.Init, Body: cell.Empty()})
}

// SendMint mints jettonAmount to the wallet of to. The inner transfer sends its excess back to the minter.
func (m *JettonMinter) SendMint(ctx context.Context, via, to *address.Address, jettonAmount, forwardTonAmount, totalTonAmount *uint256.Int) (*ledger.SendResult, error) {
	body, err := message.Encode(&message.Mint{
		To:             to,
		TotalTonAmount: totalTonAmount,
		JettonAmount:   jettonAmount,
		Inner: &message.InternalTransfer{
			JettonAmount:     jettonAmount,
			ResponseAddress:  m.Address,
			ForwardTonAmount: forwardTonAmount,
		},
	})
	if err != nil {
		return nil, err
	}
	value := new(uint256.Int).Add(totalTonAmount, MintOverhead)
	return m.p.Send(ctx, via, &message.Internal{Bounce: true, Dest: m.Address, Value: value, Body: body})
}

func (m *JettonMinter) SendChangeAdmin(ctx context.Context, via, newAdmin *address.Address) (*ledger.SendResult, error) {
	return m.sendBody(ctx, via, &message.ChangeAdmin{NewAdmin: newAdmin})
}

func (m *JettonMinter) SendChangeContent(ctx context.Context, via *address.Address, content *cell.Cell) (*ledger.SendResult, error) {
	return m.sendBody(ctx, via, &message.ChangeContent{Content: content})
}

func (m *JettonMinter) sendBody(ctx context.Context, via *address.Address, b message.Body) (*ledger.SendResult, error) {
	body, err := message.Encode(b)
	if err != nil {
		return nil, err
	}
	return m.p.Send(ctx, via, &message.Internal{Bounce: true, Dest: m.Address, Value: DefaultAdminValue, Body: body})
}

func (m *JettonMinter) GetJettonData(ctx context.Context) (*JettonData, error) {
	items, err := m.p.RunGetMethod(ctx, m.Address, "get_jetton_data")
	if err != nil {
		return nil, err
	}
	s := newStack(items)
	out := &JettonData{}
	if out.TotalSupply, err = s.readBigNumber(); err != nil {
		return nil, err
	}
	if out.Mintable, err = s.readBoolean(); err != nil {
		return nil, err
	}
	if out.AdminAddress, err = s.readAddress(); err != nil {
		return nil, err
	}
	if out.Content, err = s.readCell(); err != nil {
		return nil, err
	}
	if out.WalletCode, err = s.readCell(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *JettonMinter) GetTotalSupply(ctx context.Context) (*uint256.Int, error) {
	data, err := m.GetJettonData(ctx)
	if err != nil {
		return nil, err
	}
	return data.TotalSupply, nil
}

func (m *JettonMinter) GetAdminAddress(ctx context.Context) (*address.Address, error) {
	data, err := m.GetJettonData(ctx)
	if err != nil {
		return nil, err
	}
	return data.AdminAddress, nil
}

func (m *JettonMinter) GetContent(ctx context.Context) (*cell.Cell, error) {
	data, err := m.GetJettonData(ctx)
	if err != nil {
		return nil, err
	}
	return data.Content, nil
}

// GetWalletAddress asks the minter where owner's wallet lives; the owner goes in as an address slice.
func (m *JettonMinter) GetWalletAddress(ctx context.Context, owner *address.Address) (*address.Address, error) {
	arg, err := address.Cell(owner)
	if err != nil {
		return nil, err
	}
	items, err := m.p.RunGetMethod(ctx, m.Address, "get_wallet_address", arg)
	if err != nil {
		return nil, err
	}
	return newStack(items).readAddress()
}

// Wallet opens the jetton wallet of owner.
func (m *JettonMinter) Wallet(ctx context.Context, owner *address.Address) (*JettonWallet, error) {
	addr, err := m.GetWalletAddress(ctx, owner)
	if err != nil {
		return nil, err
	}
	return NewJettonWalletFromAddress(m.p, addr), nil
}

// MintCost is the smallest value a mint of totalTonAmount can be funded with.
func MintCost(fees contract.Fees, totalTonAmount *uint256.Int) *uint256.Int {
	return new(uint256.Int).Add(totalTonAmount, fees.Cost(1, 1))
}
