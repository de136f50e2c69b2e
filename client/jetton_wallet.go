package client

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/jetton"
	"github.com/mezonai/jetton/ledger"
	"github.com/mezonai/jetton/message"
)

type JettonWalletConfig struct {
	Owner      *address.Address
	Minter     *address.Address
	WalletCode *cell.Cell
}

// WalletData is the result of get_wallet_data.
type WalletData struct {
	Balance    *uint256.Int
	Owner      *address.Address
	Minter     *address.Address
	WalletCode *cell.Cell
}

type JettonWallet struct {
	Address *address.Address
	Init    *address.StateInit
	p       Provider
}

func NewJettonWalletFromAddress(p Provider, addr *address.Address) *JettonWallet {
	return &JettonWallet{Address: addr, p: p}
}

// NewJettonWalletFromConfig derives the wallet of cfg.Owner for cfg.Minter.
func NewJettonWalletFromConfig(p Provider, cfg JettonWalletConfig) (*JettonWallet, error) {
	walletCode := cfg.WalletCode
	if walletCode == nil {
		walletCode = jetton.WalletCode
	}
	init, err := jetton.WalletStateInit(cfg.Owner, cfg.Minter, walletCode)
	if err != nil {
		return nil, err
	}
	addr, err := init.Address(p.Workchain())
	if err != nil {
		return nil, err
	}
	return &JettonWallet{Address: addr, Init: init, p: p}, nil
}

func (w *JettonWallet) SendDeploy(ctx context.Context, via *address.Address, value *uint256.Int) (*ledger.SendResult, error) {
	return w.p.Send(ctx, via, &message.Internal{Dest: w.Address, Value: value, Init: w.Init, Body: cell.Empty()})
}

func (w *JettonWallet) SendTransfer(ctx context.Context, value *uint256.Int, via *address.Address, jettonAmount *uint256.Int, to, responseAddress *address.Address, customPayload *cell.Cell, forwardTonAmount *uint256.Int, forwardPayload *cell.Cell) (*ledger.SendResult, error) {
	body, err := message.Encode(&message.Transfer{
		JettonAmount:     jettonAmount,
		To:               to,
		ResponseAddress:  responseAddress,
		CustomPayload:    customPayload,
		ForwardTonAmount: forwardTonAmount,
		ForwardPayload:   forwardPayload,
	})
	if err != nil {
		return nil, err
	}
	return w.p.Send(ctx, via, &message.Internal{Bounce: true, Dest: w.Address, Value: value, Body: body})
}

func (w *JettonWallet) SendBurn(ctx context.Context, via *address.Address, value, jettonAmount *uint256.Int, responseAddress *address.Address, customPayload *cell.Cell) (*ledger.SendResult, error) {
	body, err := message.Encode(&message.Burn{
		JettonAmount:    jettonAmount,
		ResponseAddress: responseAddress,
		CustomPayload:   customPayload,
	})
	if err != nil {
		return nil, err
	}
	return w.p.Send(ctx, via, &message.Internal{Bounce: true, Dest: w.Address, Value: value, Body: body})
}

// GetJettonBalance is 0 for a wallet nobody has credited yet.
func (w *JettonWallet) GetJettonBalance(ctx context.Context) (*uint256.Int, error) {
	acc, err := w.p.GetAccount(w.Address)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive() {
		return new(uint256.Int), nil
	}
	data, err := w.GetWalletData(ctx)
	if err != nil {
		return nil, err
	}
	return data.Balance, nil
}

func (w *JettonWallet) GetWalletData(ctx context.Context) (*WalletData, error) {
	items, err := w.p.RunGetMethod(ctx, w.Address, "get_wallet_data")
	if err != nil {
		return nil, err
	}
	s := newStack(items)
	out := &WalletData{}
	if out.Balance, err = s.readBigNumber(); err != nil {
		return nil, err
	}
	if out.Owner, err = s.readAddress(); err != nil {
		return nil, err
	}
	if out.Minter, err = s.readAddress(); err != nil {
		return nil, err
	}
	if out.WalletCode, err = s.readCell(); err != nil {
		return nil, err
	}
	return out, nil
}
