// Package jetton implements the fungible token actors: a single Minter holding the
// supply and admin rights, and one Wallet per owner whose address is derived from
// (wallet code, owner, minter).
package jetton

import (
	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/errors"
	"github.com/mezonai/jetton/logx"
	"github.com/mezonai/jetton/message"
)

type Minter struct{}

func (Minter) Name() string { return "jetton-minter" }

func (m Minter) ReceiveInternal(ctx *contract.Context, msg *message.Internal) error {
	data, err := LoadMinterData(ctx.Data)
	if err != nil {
		return errors.Errorf(errors.ErrCodeInternal, "%v", err)
	}
	if msg.Bounced {
		return m.onBounce(ctx, data, msg)
	}
	if message.IsEmpty(msg.Body) {
		return nil
	}

	body, err := message.Decode(msg.Body)
	if err != nil {
		return err
	}
	switch b := body.(type) {
	case *message.Mint:
		return m.mint(ctx, data, msg, b)
	case *message.BurnNotification:
		return m.burnNotification(ctx, data, msg, b)
	case *message.ChangeAdmin:
		if !msg.Src.Equal(data.Admin) {
			return errors.Errorf(errors.ErrCodeUnauthorized, "change admin from %s", msg.Src)
		}
		data.Admin = b.NewAdmin
		return storeMinter(ctx, data)
	case *message.ChangeContent:
		if !msg.Src.Equal(data.Admin) {
			return errors.Errorf(errors.ErrCodeUnauthorized, "change content from %s", msg.Src)
		}
		data.Content = b.Content
		return storeMinter(ctx, data)
	case *message.Excesses:
		return nil
	default:
		return errors.Errorf(errors.ErrCodeMalformedMessage, "minter does not handle %s", body.Opcode())
	}
}

func (Minter) ReceiveExternal(*contract.Context, *cell.Cell) error {
	return errors.NewError(errors.ErrCodeUnauthorized, "minter does not accept external messages")
}

func (Minter) mint(ctx *contract.Context, data *MinterData, msg *message.Internal, b *message.Mint) error {
	if !msg.Src.Equal(data.Admin) {
		return errors.Errorf(errors.ErrCodeUnauthorized, "mint from %s, admin is %s", msg.Src, data.Admin)
	}
	if b.To == nil {
		return errors.Errorf(errors.ErrCodeMalformedMessage, "mint destination is none")
	}
	if b.To.Workchain != ctx.Workchain() {
		return errors.Errorf(errors.ErrCodeWrongWorkchain, "destination workchain %d, minter workchain %d", b.To.Workchain, ctx.Workchain())
	}
	amount := amountOrZero(b.JettonAmount)
	if b.Inner == nil || !amountOrZero(b.Inner.JettonAmount).Eq(amount) {
		return errors.Errorf(errors.ErrCodeMalformedMessage, "inner transfer amount differs from mint amount %s", amount.Dec())
	}
	totalTon := amountOrZero(b.TotalTonAmount)
	// the new wallet must be able to pay for itself, otherwise the mint can neither
	// land nor bounce back
	forwardTon := amountOrZero(b.Inner.ForwardTonAmount)
	walletNeed := new(uint256.Int).Add(forwardTon, ctx.Fees.Compute)
	if !forwardTon.IsZero() {
		walletNeed.Add(walletNeed, ctx.Fees.Forward)
	}
	if totalTon.Lt(walletNeed) {
		return errors.Errorf(errors.ErrCodeInsufficientValue, "mint carries %s to the wallet, it needs %s", totalTon.Dec(), walletNeed.Dec())
	}
	need := new(uint256.Int).Add(totalTon, ctx.Fees.Cost(1, 1))
	if ctx.MsgValue.Lt(need) {
		return errors.Errorf(errors.ErrCodeInsufficientValue, "mint needs %s attached, have %s", need.Dec(), ctx.MsgValue.Dec())
	}

	wallet, err := WalletStateInit(b.To, ctx.Self, data.WalletCode)
	if err != nil {
		return errors.Malformed(err)
	}
	dest, err := wallet.Address(ctx.Workchain())
	if err != nil {
		return errors.Malformed(err)
	}

	data.TotalSupply = new(uint256.Int).Add(data.TotalSupply, amount)
	if err := storeMinter(ctx, data); err != nil {
		return err
	}
	logx.Info("JETTON", "minter ", ctx.Self, " mint ", amount.Dec(), " to ", b.To, " supply ", data.TotalSupply.Dec())
	return ctx.SendBody(contract.SendModePayFeesSeparately, dest, totalTon, true, wallet, b.Inner)
}

// burnNotification accepts a burn only from the wallet derived for the claimed owner.
func (Minter) burnNotification(ctx *contract.Context, data *MinterData, msg *message.Internal, b *message.BurnNotification) error {
	if b.Owner == nil {
		return errors.Errorf(errors.ErrCodeMalformedMessage, "burn notification without owner")
	}
	expected, err := WalletAddress(ctx.Workchain(), b.Owner, ctx.Self, data.WalletCode)
	if err != nil {
		return errors.Malformed(err)
	}
	if !msg.Src.Equal(expected) {
		return errors.Errorf(errors.ErrCodeAddressMismatch, "burn notification from %s, wallet of %s is %s", msg.Src, b.Owner, expected)
	}
	amount := amountOrZero(b.JettonAmount)
	if data.TotalSupply.Lt(amount) {
		return errors.Errorf(errors.ErrCodeInsufficientBalance, "burn %s exceeds supply %s", amount.Dec(), data.TotalSupply.Dec())
	}

	data.TotalSupply = new(uint256.Int).Sub(data.TotalSupply, amount)
	if err := storeMinter(ctx, data); err != nil {
		return err
	}
	logx.Info("JETTON", "minter ", ctx.Self, " burned ", amount.Dec(), " from ", b.Owner, " supply ", data.TotalSupply.Dec())

	if b.ResponseAddress == nil {
		return nil
	}
	return ctx.SendBody(contract.SendModeCarryRemainingValue|contract.SendModeIgnoreErrors, b.ResponseAddress, new(uint256.Int), false, nil, &message.Excesses{QueryID: b.QueryID})
}

// onBounce takes back supply minted into a wallet that rejected the credit.
func (Minter) onBounce(ctx *contract.Context, data *MinterData, msg *message.Internal) error {
	bounced, err := message.DecodeBounced(msg.Body)
	if err != nil || bounced.Opcode != message.OpInternalTransfer {
		return nil
	}
	amount := amountOrZero(bounced.JettonAmount)
	if data.TotalSupply.Lt(amount) {
		return errors.Errorf(errors.ErrCodeInternal, "bounced mint %s exceeds supply %s", amount.Dec(), data.TotalSupply.Dec())
	}
	data.TotalSupply = new(uint256.Int).Sub(data.TotalSupply, amount)
	logx.Info("JETTON", "minter ", ctx.Self, " reverted bounced mint of ", amount.Dec())
	return storeMinter(ctx, data)
}

func (Minter) GetMethods() map[string]contract.GetMethod {
	return map[string]contract.GetMethod{
		"get_jetton_data": func(q *contract.Query, _ ...any) ([]any, error) {
			data, err := LoadMinterData(q.Data)
			if err != nil {
				return nil, err
			}
			return []any{data.TotalSupply, true, data.Admin, data.Content, data.WalletCode}, nil
		},
		"get_wallet_address": func(q *contract.Query, args ...any) ([]any, error) {
			owner, err := contract.ArgAddress(args, 0)
			if err != nil {
				return nil, err
			}
			data, err := LoadMinterData(q.Data)
			if err != nil {
				return nil, err
			}
			wallet, err := WalletAddress(q.Self.Workchain, owner, q.Self, data.WalletCode)
			if err != nil {
				return nil, err
			}
			return []any{wallet}, nil
		},
	}
}

// Register binds the minter and wallet code cells to their implementations.
func Register(r *contract.Registry) {
	r.Register(MinterCode, Minter{})
	r.Register(WalletCode, Wallet{})
}

func storeMinter(ctx *contract.Context, data *MinterData) error {
	c, err := data.Cell()
	if err != nil {
		return errors.Errorf(errors.ErrCodeInternal, "store minter data: %v", err)
	}
	ctx.SetData(c)
	return nil
}

// MinterAddress is where a minter deployed with these parameters lives.
func MinterAddress(workchain int32, admin *address.Address, content, walletCode *cell.Cell) (*address.Address, error) {
	si, err := MinterStateInit(admin, content, walletCode)
	if err != nil {
		return nil, err
	}
	return si.Address(workchain)
}
