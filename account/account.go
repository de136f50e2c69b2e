// Package account implements the signature and seqno gated relay actor.
package account

import (
	"crypto/ed25519"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/errors"
	"github.com/mezonai/jetton/logx"
	"github.com/mezonai/jetton/message"
)

var Code = contract.NewCode("account", 1)

// Data is the account storage: seqno:32 public_key:256.
type Data struct {
	Seqno     uint32
	PublicKey ed25519.PublicKey
}

func (d *Data) Cell() (*cell.Cell, error) {
	if len(d.PublicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(d.PublicKey))
	}
	b := cell.NewBuilder()
	if err := b.StoreUint(uint64(d.Seqno), 32); err != nil {
		return nil, err
	}
	if err := b.StoreBytes(d.PublicKey); err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}

func LoadData(c *cell.Cell) (*Data, error) {
	s := c.BeginParse()
	seqno, err := s.LoadUint(32)
	if err != nil {
		return nil, fmt.Errorf("account data: %w", err)
	}
	key, err := s.LoadBytes(ed25519.PublicKeySize)
	if err != nil {
		return nil, fmt.Errorf("account data: %w", err)
	}
	return &Data{Seqno: uint32(seqno), PublicKey: key}, nil
}

// StateInit for a fresh account controlled by pub.
func StateInit(pub ed25519.PublicKey) (*address.StateInit, error) {
	data, err := (&Data{PublicKey: pub}).Cell()
	if err != nil {
		return nil, err
	}
	return &address.StateInit{Code: Code, Data: data}, nil
}

type Account struct{}

func (Account) Name() string { return "account" }

// ReceiveInternal accepts deploys and top-ups; the value stays on the balance.
func (Account) ReceiveInternal(*contract.Context, *message.Internal) error {
	return nil
}

// ReceiveExternal checks validity window, seqno and signature in that order, then
// consumes the seqno and relays each attached message.
func (Account) ReceiveExternal(ctx *contract.Context, body *cell.Cell) error {
	cmd, err := message.ParseCommand(body)
	if err != nil {
		return err
	}
	data, err := LoadData(ctx.Data)
	if err != nil {
		return errors.Errorf(errors.ErrCodeInternal, "%v", err)
	}

	if cmd.ValidUntil < ctx.Now {
		return errors.Errorf(errors.ErrCodeExpired, "valid until %d, now %d", cmd.ValidUntil, ctx.Now)
	}
	if cmd.Seqno != data.Seqno {
		return errors.Errorf(errors.ErrCodeInvalidSeqno, "command seqno %d, stored %d", cmd.Seqno, data.Seqno)
	}
	if !cmd.Verify(data.PublicKey) {
		return errors.ErrBadSignature
	}

	relays := make([]*message.Internal, 0, len(cmd.Actions))
	for _, a := range cmd.Actions {
		msg, err := message.ParseInternal(a.Message)
		if err != nil {
			return err
		}
		relays = append(relays, msg)
	}

	ctx.Accept()
	data.Seqno++
	updated, err := data.Cell()
	if err != nil {
		return errors.Errorf(errors.ErrCodeInternal, "%v", err)
	}
	ctx.SetData(updated)

	for i, msg := range relays {
		ctx.Send(contract.SendMode(cmd.Actions[i].Mode), msg)
	}
	logx.Info("ACCOUNT", "account ", ctx.Self, " accepted seqno ", cmd.Seqno, " with ", len(relays), " messages")
	return nil
}

func (Account) GetMethods() map[string]contract.GetMethod {
	return map[string]contract.GetMethod{
		"seqno": func(q *contract.Query, _ ...any) ([]any, error) {
			data, err := LoadData(q.Data)
			if err != nil {
				return nil, err
			}
			return []any{uint256.NewInt(uint64(data.Seqno))}, nil
		},
		"get_public_key": func(q *contract.Query, _ ...any) ([]any, error) {
			data, err := LoadData(q.Data)
			if err != nil {
				return nil, err
			}
			return []any{new(uint256.Int).SetBytes(data.PublicKey)}, nil
		},
		"balance": func(q *contract.Query, _ ...any) ([]any, error) {
			return []any{q.Balance}, nil
		},
	}
}

func Register(r *contract.Registry) {
	r.Register(Code, Account{})
}
