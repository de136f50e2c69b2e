package jetton

import (
	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/errors"
	"github.com/mezonai/jetton/logx"
	"github.com/mezonai/jetton/message"
)

// Wallet holds one owner's balance of one jetton.
type Wallet struct{}

func (Wallet) Name() string { return "jetton-wallet" }

func (w Wallet) ReceiveInternal(ctx *contract.Context, msg *message.Internal) error {
	data, err := LoadWalletData(ctx.Data)
	if err != nil {
		return errors.Errorf(errors.ErrCodeInternal, "%v", err)
	}
	if msg.Bounced {
		return w.onBounce(ctx, data, msg)
	}
	if message.IsEmpty(msg.Body) {
		return nil
	}

	body, err := message.Decode(msg.Body)
	if err != nil {
		return err
	}
	switch b := body.(type) {
	case *message.InternalTransfer:
		return w.receive(ctx, data, msg, b)
	case *message.Transfer:
		return w.transfer(ctx, data, msg, b)
	case *message.Burn:
		return w.burn(ctx, data, msg, b)
	default:
		return errors.Errorf(errors.ErrCodeMalformedMessage, "wallet does not handle %s", body.Opcode())
	}
}

func (Wallet) ReceiveExternal(*contract.Context, *cell.Cell) error {
	return errors.NewError(errors.ErrCodeUnauthorized, "wallet does not accept external messages")
}

// receive credits jettons sent by the minter or by a peer wallet of the same minter.
func (Wallet) receive(ctx *contract.Context, data *WalletData, msg *message.Internal, b *message.InternalTransfer) error {
	if !msg.Src.Equal(data.Minter) {
		if b.From == nil {
			return errors.Errorf(errors.ErrCodeAddressMismatch, "credit from %s is neither the minter nor a wallet", msg.Src)
		}
		peer, err := WalletAddress(ctx.Workchain(), b.From, data.Minter, data.WalletCode)
		if err != nil {
			return errors.Malformed(err)
		}
		if !msg.Src.Equal(peer) {
			return errors.Errorf(errors.ErrCodeAddressMismatch, "credit from %s, wallet of %s is %s", msg.Src, b.From, peer)
		}
	}

	forwardTon := amountOrZero(b.ForwardTonAmount)
	remaining := contract.Remaining(ctx.MsgValue, ctx.Fees.Compute)
	if !forwardTon.IsZero() {
		need := new(uint256.Int).Add(forwardTon, ctx.Fees.Forward)
		if remaining.Lt(need) {
			return errors.Errorf(errors.ErrCodeInsufficientValue, "forward amount %s needs %s attached, have %s", forwardTon.Dec(), need.Dec(), remaining.Dec())
		}
	}

	data.Balance = new(uint256.Int).Add(data.Balance, amountOrZero(b.JettonAmount))
	if err := storeWallet(ctx, data); err != nil {
		return err
	}

	if !forwardTon.IsZero() {
		err := ctx.SendBody(contract.SendModePayFeesSeparately, data.Owner, forwardTon, false, nil, &message.TransferNotification{
			QueryID:        b.QueryID,
			JettonAmount:   b.JettonAmount,
			From:           b.From,
			ForwardPayload: b.ForwardPayload,
		})
		if err != nil {
			return err
		}
		remaining = contract.Remaining(remaining, forwardTon, ctx.Fees.Forward)
	}

	if b.ResponseAddress != nil && remaining.Gt(ctx.Fees.Forward) {
		err := ctx.SendBody(contract.SendModeIgnoreErrors, b.ResponseAddress, remaining, false, nil, &message.Excesses{QueryID: b.QueryID})
		if err != nil {
			return err
		}
	}
	return nil
}

func (Wallet) transfer(ctx *contract.Context, data *WalletData, msg *message.Internal, b *message.Transfer) error {
	if !msg.Src.Equal(data.Owner) {
		return errors.Errorf(errors.ErrCodeUnauthorized, "transfer from %s, owner is %s", msg.Src, data.Owner)
	}
	if b.To == nil {
		return errors.Errorf(errors.ErrCodeMalformedMessage, "transfer destination is none")
	}
	if b.To.Workchain != ctx.Workchain() {
		return errors.Errorf(errors.ErrCodeWrongWorkchain, "destination workchain %d, wallet workchain %d", b.To.Workchain, ctx.Workchain())
	}
	amount := amountOrZero(b.JettonAmount)
	if data.Balance.Lt(amount) {
		return errors.Errorf(errors.ErrCodeInsufficientBalance, "transfer %s, balance %s", amount.Dec(), data.Balance.Dec())
	}
	forwardTon := amountOrZero(b.ForwardTonAmount)
	need := new(uint256.Int).Add(forwardTon, ctx.Fees.Cost(2, 3))
	if ctx.MsgValue.Lt(need) {
		return errors.Errorf(errors.ErrCodeInsufficientValue, "transfer needs %s attached, have %s", need.Dec(), ctx.MsgValue.Dec())
	}

	peer, err := WalletStateInit(b.To, data.Minter, data.WalletCode)
	if err != nil {
		return errors.Malformed(err)
	}
	dest, err := peer.Address(ctx.Workchain())
	if err != nil {
		return errors.Malformed(err)
	}

	data.Balance = new(uint256.Int).Sub(data.Balance, amount)
	if err := storeWallet(ctx, data); err != nil {
		return err
	}
	logx.Debug("JETTON", "wallet ", ctx.Self, " transfer ", amount.Dec(), " to ", dest)
	return ctx.SendBody(contract.SendModeCarryRemainingValue, dest, new(uint256.Int), true, peer, &message.InternalTransfer{
		QueryID:          b.QueryID,
		JettonAmount:     amount,
		From:             data.Owner,
		ResponseAddress:  b.ResponseAddress,
		ForwardTonAmount: forwardTon,
		ForwardPayload:   b.ForwardPayload,
	})
}

func (Wallet) burn(ctx *contract.Context, data *WalletData, msg *message.Internal, b *message.Burn) error {
	if !msg.Src.Equal(data.Owner) {
		return errors.Errorf(errors.ErrCodeUnauthorized, "burn from %s, owner is %s", msg.Src, data.Owner)
	}
	amount := amountOrZero(b.JettonAmount)
	if data.Balance.Lt(amount) {
		return errors.Errorf(errors.ErrCodeInsufficientBalance, "burn %s, balance %s", amount.Dec(), data.Balance.Dec())
	}
	need := ctx.Fees.Cost(2, 1)
	if ctx.MsgValue.Lt(need) {
		return errors.Errorf(errors.ErrCodeInsufficientValue, "burn needs %s attached, have %s", need.Dec(), ctx.MsgValue.Dec())
	}

	data.Balance = new(uint256.Int).Sub(data.Balance, amount)
	if err := storeWallet(ctx, data); err != nil {
		return err
	}
	return ctx.SendBody(contract.SendModeCarryRemainingValue, data.Minter, new(uint256.Int), true, nil, &message.BurnNotification{
		QueryID:         b.QueryID,
		JettonAmount:    amount,
		Owner:           data.Owner,
		ResponseAddress: b.ResponseAddress,
	})
}

// onBounce restores the debit of a transfer or burn whose follow-up message was rejected.
func (Wallet) onBounce(ctx *contract.Context, data *WalletData, msg *message.Internal) error {
	bounced, err := message.DecodeBounced(msg.Body)
	if err != nil {
		logx.Warn("JETTON", "wallet ", ctx.Self, " ignoring unreadable bounce: ", err)
		return nil
	}
	switch bounced.Opcode {
	case message.OpInternalTransfer, message.OpBurnNotification:
	default:
		return nil
	}
	data.Balance = new(uint256.Int).Add(data.Balance, amountOrZero(bounced.JettonAmount))
	logx.Info("JETTON", "wallet ", ctx.Self, " restored ", bounced.JettonAmount.Dec(), " after bounced ", bounced.Opcode)
	return storeWallet(ctx, data)
}

func (Wallet) GetMethods() map[string]contract.GetMethod {
	return map[string]contract.GetMethod{
		"get_wallet_data": func(q *contract.Query, _ ...any) ([]any, error) {
			data, err := LoadWalletData(q.Data)
			if err != nil {
				return nil, err
			}
			return []any{data.Balance, data.Owner, data.Minter, data.WalletCode}, nil
		},
	}
}

func storeWallet(ctx *contract.Context, data *WalletData) error {
	c, err := data.Cell()
	if err != nil {
		return errors.Errorf(errors.ErrCodeInternal, "store wallet data: %v", err)
	}
	ctx.SetData(c)
	return nil
}

func amountOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
