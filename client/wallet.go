package client

import (
	"context"
	"crypto/ed25519"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/account"
	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/ledger"
	"github.com/mezonai/jetton/message"
)

type WalletConfig struct {
	Seqno     uint32
	PublicKey ed25519.PublicKey
}

// Wallet drives an account actor: deploy with value, then signed external commands.
type Wallet struct {
	Address *address.Address
	Init    *address.StateInit
	p       Provider
}

func NewWalletFromAddress(p Provider, addr *address.Address) *Wallet {
	return &Wallet{Address: addr, p: p}
}

func NewWalletFromConfig(p Provider, cfg WalletConfig) (*Wallet, error) {
	data, err := (&account.Data{Seqno: cfg.Seqno, PublicKey: cfg.PublicKey}).Cell()
	if err != nil {
		return nil, err
	}
	init := &address.StateInit{Code: account.Code, Data: data}
	addr, err := init.Address(p.Workchain())
	if err != nil {
		return nil, err
	}
	return &Wallet{Address: addr, Init: init, p: p}, nil
}

func (w *Wallet) SendDeploy(ctx context.Context, via *address.Address, value *uint256.Int) (*ledger.SendResult, error) {
	return w.p.Send(ctx, via, &message.Internal{Dest: w.Address, Value: value, Init: w.Init, Body: cell.Empty()})
}

// SendExternalSignedMessage submits a body built by RequestMessage or SignRequestWithMessage.
func (w *Wallet) SendExternalSignedMessage(ctx context.Context, body *cell.Cell) (*ledger.SendResult, error) {
	return w.p.SendExternal(ctx, w.Address, body, nil)
}

func (w *Wallet) GetPublicKey(ctx context.Context) (*uint256.Int, error) {
	items, err := w.p.RunGetMethod(ctx, w.Address, "get_public_key")
	if err != nil {
		return nil, err
	}
	return newStack(items).readBigNumber()
}

// GetSeqno is 0 until the account is deployed.
func (w *Wallet) GetSeqno(ctx context.Context) (uint32, error) {
	acc, err := w.p.GetAccount(w.Address)
	if err != nil {
		return 0, err
	}
	if !acc.IsActive() {
		return 0, nil
	}
	items, err := w.p.RunGetMethod(ctx, w.Address, "seqno")
	if err != nil {
		return 0, err
	}
	n, err := newStack(items).readBigNumber()
	if err != nil {
		return 0, err
	}
	return uint32(n.Uint64()), nil
}

func (w *Wallet) GetBalance(ctx context.Context) (*uint256.Int, error) {
	items, err := w.p.RunGetMethod(ctx, w.Address, "balance")
	if err != nil {
		return nil, err
	}
	return newStack(items).readBigNumber()
}

// RequestMessage is a command without messages: it only consumes seqno. A nil key leaves it unsigned.
func RequestMessage(validUntil, seqno uint32, key ed25519.PrivateKey) (*cell.Cell, error) {
	cmd := &message.Command{Seqno: seqno, ValidUntil: validUntil}
	if key == nil {
		return cmd.Cell()
	}
	return message.SignCommand(cmd, key)
}

// SignRequestWithMessage signs a command relaying msg with the given send mode.
func SignRequestWithMessage(validUntil, seqno uint32, mode contract.SendMode, msg *cell.Cell, key ed25519.PrivateKey) (*cell.Cell, error) {
	return message.SignCommand(&message.Command{
		Seqno:      seqno,
		ValidUntil: validUntil,
		Actions:    []message.RelayAction{{Mode: uint8(mode), Message: msg}},
	}, key)
}
