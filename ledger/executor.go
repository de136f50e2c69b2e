package ledger

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/db"
	"github.com/mezonai/jetton/errors"
	"github.com/mezonai/jetton/logx"
	"github.com/mezonai/jetton/message"
	"github.com/mezonai/jetton/monitoring"
	"github.com/mezonai/jetton/store"
	"github.com/mezonai/jetton/types"
	"github.com/mezonai/jetton/utils"
)

// execution carries the working copy of one transaction until it is committed.
type execution struct {
	l        *Ledger
	start    time.Time
	meta     *store.ChainMeta
	lt       uint64
	now      uint32
	before   *types.Account
	acc      *types.Account
	contract contract.Contract
	tx       *types.Transaction
	charged  *uint256.Int
	out      []*message.Internal
}

func (l *Ledger) newExecution(acc *types.Account) *execution {
	meta := l.cloneMeta()
	meta.Lt++
	return &execution{
		l:       l,
		start:   time.Now(),
		meta:    meta,
		lt:      meta.Lt,
		now:     l.now(),
		before:  acc.Clone(),
		acc:     acc,
		charged: new(uint256.Int),
	}
}

func (e *execution) contractName() string {
	if e.contract == nil {
		return "uninit"
	}
	return e.contract.Name()
}

// activate deploys init at the execution's account after checking that it derives that address.
func (e *execution) activate(init *address.StateInit) error {
	derived, err := init.Address(e.acc.Address.Workchain)
	if err != nil {
		return errors.Malformed(err)
	}
	if !derived.Equal(e.acc.Address) {
		return errors.Errorf(errors.ErrCodeAddressMismatch, "state init derives %s, not %s", derived, e.acc.Address)
	}
	if _, err := e.l.registry.Lookup(init.Code); err != nil {
		return errors.Errorf(errors.ErrCodeInternal, "deploy %s: %v", e.acc.Address, err)
	}
	e.acc.Status = types.AccountActive
	e.acc.Code = init.Code
	e.acc.Data = init.Data
	e.tx.Deployed = true
	return nil
}

func (e *execution) chargeCompute() error {
	compute := e.l.fees.Compute
	if e.acc.Balance.Lt(compute) {
		return errors.Errorf(errors.ErrCodeInsufficientFunds, "balance %s does not cover compute fee %s", e.acc.Balance.Dec(), compute.Dec())
	}
	e.acc.Balance.Sub(e.acc.Balance, compute)
	e.charged.Add(e.charged, compute)
	return nil
}

// invoke runs a handler, turning a panic into an Internal failure of this transaction.
func (e *execution) invoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.IncreasePanicCount()
			logx.Error("LEDGER", "panic in ", e.contractName(), " at ", e.acc.Address, ": ", r)
			err = errors.Errorf(errors.ErrCodeInternal, "%s panicked: %v", e.contractName(), r)
		}
	}()
	return fn()
}

// applyActions turns the handler's outbox into outgoing messages, debiting the account.
// remainingIn is what mode 64 may carry; it is used up by the first such message.
func (e *execution) applyActions(actions []contract.Action, remainingIn *uint256.Int) error {
	fwd := e.l.fees.Forward
	balance := new(uint256.Int).Set(e.acc.Balance)
	var out []*message.Internal
	fwdTotal := new(uint256.Int)

	for i, a := range actions {
		if a.Message == nil || a.Message.Dest == nil {
			if a.Mode.Has(contract.SendModeIgnoreErrors) {
				continue
			}
			return errors.Errorf(errors.ErrCodeMalformedMessage, "action %d has no destination", i)
		}
		var value *uint256.Int
		switch {
		case a.Mode.Has(contract.SendModeCarryAllBalance):
			value = new(uint256.Int).Set(balance)
		case a.Mode.Has(contract.SendModeCarryRemainingValue):
			value = new(uint256.Int).Add(a.Message.Amount(), remainingIn)
			remainingIn = new(uint256.Int)
		default:
			value = new(uint256.Int).Set(a.Message.Amount())
		}

		debit := new(uint256.Int).Set(value)
		ok := true
		if a.Mode.Has(contract.SendModePayFeesSeparately) && !a.Mode.Has(contract.SendModeCarryAllBalance) {
			debit.Add(debit, fwd)
		} else if value.Lt(fwd) {
			ok = false
		} else {
			value.Sub(value, fwd)
		}
		if ok && balance.Lt(debit) {
			ok = false
		}
		if !ok {
			if a.Mode.Has(contract.SendModeIgnoreErrors) {
				logx.Debug("LEDGER", fmt.Sprintf("%s skipped action %d (%s): balance %s", e.acc.Address, i, a.Mode, balance.Dec()))
				continue
			}
			return errors.Errorf(errors.ErrCodeInsufficientFunds, "action %d (%s) needs %s, balance %s", i, a.Mode, debit.Dec(), balance.Dec())
		}

		balance.Sub(balance, debit)
		fwdTotal.Add(fwdTotal, fwd)
		msg := *a.Message
		msg.Src = e.acc.Address
		msg.Bounced = false
		msg.Value = value
		msg.IHRFee = nil
		msg.FwdFee = new(uint256.Int).Set(fwd)
		msg.CreatedLt = e.lt
		msg.CreatedAt = e.now
		out = append(out, &msg)
	}

	e.acc.Balance = balance
	e.charged.Add(e.charged, fwdTotal)
	e.out = out
	return nil
}

// fail reverts the account to its state before the message, keeps what was charged, and
// returns the rest of the inbound value to the sender when bounce allows it.
func (e *execution) fail(err error, in *message.Internal) {
	e.acc = e.before.Clone()
	e.out = nil
	e.tx.Deployed = false
	e.tx.Aborted = true
	e.tx.Status = types.TxStatusFailed
	e.tx.ExitCode = errors.ExitCodeOf(err)
	e.tx.Error = err.Error()

	value := new(uint256.Int)
	if in != nil {
		value = in.Amount()
	}
	e.acc.Balance.Add(e.acc.Balance, value)
	if e.acc.Balance.Lt(e.charged) {
		e.charged = new(uint256.Int).Set(e.acc.Balance)
	}
	e.acc.Balance.Sub(e.acc.Balance, e.charged)

	if in == nil || !in.Bounce || in.Bounced || in.Src == nil {
		return
	}
	fwd := e.l.fees.Forward
	refund := contract.Remaining(value, e.charged, fwd)
	if refund.IsZero() {
		logx.Debug("LEDGER", "nothing left to bounce from ", e.acc.Address)
		return
	}
	e.acc.Balance.Sub(e.acc.Balance, new(uint256.Int).Add(refund, fwd))
	e.charged.Add(e.charged, fwd)
	e.out = []*message.Internal{{
		Bounced:   true,
		Src:       e.acc.Address,
		Dest:      in.Src,
		Value:     refund,
		FwdFee:    new(uint256.Int).Set(fwd),
		CreatedLt: e.lt,
		CreatedAt: e.now,
		Body:      message.BounceBody(in.Body),
	}}
}

// failActions drops the outbox of an accepted external message. Storage and the
// compute fee stay as the handler left them.
func (e *execution) failActions(err error) {
	e.out = nil
	e.tx.Aborted = true
	e.tx.Status = types.TxStatusFailed
	e.tx.ExitCode = errors.ExitCodeOf(err)
	e.tx.Error = err.Error()
}

func (e *execution) succeed() {
	e.tx.Status = types.TxStatusSuccess
}

// commit writes account, receipt and chain meta in one batch, then queues the outgoing messages.
func (e *execution) commit() (*types.Transaction, error) {
	l := e.l
	tx := e.tx
	tx.Now = e.now
	tx.TotalFees = new(uint256.Int).Set(e.charged)
	tx.BalanceAfter = new(uint256.Int).Set(e.acc.Balance)
	tx.OutMsgs = make([]*types.MessageInfo, 0, len(e.out))
	for _, m := range e.out {
		tx.OutMsgs = append(tx.OutMsgs, messageInfo(m))
	}
	e.acc.LastLt = e.lt
	e.meta.CollectedFees.Add(e.meta.CollectedFees, e.charged)

	err := l.stores.TxManager.WithBatch(func(batch db.DatabaseBatch) error {
		if err := l.stores.Accounts.PutBatch(batch, e.acc); err != nil {
			return err
		}
		if err := l.stores.Txs.PutBatch(batch, tx); err != nil {
			return err
		}
		return l.stores.Meta.PutBatch(batch, e.meta)
	})
	if err != nil {
		return nil, err
	}
	l.meta = e.meta
	l.queue = append(l.queue, e.out...)

	status := monitoring.TxCommitted
	if tx.Aborted {
		status = monitoring.TxAborted
	}
	monitoring.RecordTx(e.contractName(), status, time.Since(e.start))
	monitoring.AddOutMessages(len(e.out))
	monitoring.SetQueueSize(len(l.queue))
	monitoring.SetCollectedFees(l.meta.CollectedFees.Float64())
	for _, m := range e.out {
		if m.Bounced {
			monitoring.IncreaseBouncedCount()
		}
	}
	if tx.Deployed {
		monitoring.IncreaseDeployedCount(e.contractName())
	}
	if l.eventRouter != nil {
		l.eventRouter.PublishTransaction(tx)
	}

	if tx.Aborted {
		logx.Warn("LEDGER", fmt.Sprintf("tx %s at %s aborted with exit code %d: %s", utils.ShortHash(tx.Hash), tx.Account, tx.ExitCode, tx.Error))
	} else {
		logx.Debug("LEDGER", fmt.Sprintf("tx %s at %s lt=%d out=%d fees=%s", utils.ShortHash(tx.Hash), tx.Account, tx.Lt, len(e.out), tx.TotalFees.Dec()))
	}
	return tx, nil
}

func (l *Ledger) processInternal(msg *message.Internal) (*types.Transaction, error) {
	acc, err := l.loadAccount(msg.Dest)
	if err != nil {
		return nil, err
	}
	e := l.newExecution(acc)
	hashCell := msg.Body
	if c, err := msg.Cell(); err == nil {
		hashCell = c
	}
	e.tx = &types.Transaction{
		Hash:          types.ComputeHash(msg.Dest, e.lt, hashCell),
		Lt:            e.lt,
		Account:       msg.Dest,
		InMsg:         messageInfo(msg),
		BalanceBefore: new(uint256.Int).Set(acc.Balance),
	}
	if err := e.runInternal(msg); err != nil {
		e.fail(err, msg)
	} else {
		e.succeed()
	}
	return e.commit()
}

func (e *execution) runInternal(msg *message.Internal) error {
	value := msg.Amount()
	e.acc.Balance.Add(e.acc.Balance, value)

	if !e.acc.IsActive() && msg.Init != nil {
		if err := e.activate(msg.Init); err != nil {
			return err
		}
	}
	if !e.acc.IsActive() {
		if msg.Bounce && !msg.Bounced {
			return errors.Errorf(errors.ErrCodeAccountNotFound, "%s is not deployed", e.acc.Address)
		}
		// plain credit of an uninit address
		return nil
	}

	c, err := e.l.registry.Lookup(e.acc.Code)
	if err != nil {
		return errors.Errorf(errors.ErrCodeInternal, "%v", err)
	}
	e.contract = c
	if err := e.chargeCompute(); err != nil {
		e.charged = new(uint256.Int).Set(e.acc.Balance)
		return err
	}

	ctx := contract.NewContext(e.acc.Address, e.acc.Code, e.acc.Data,
		new(uint256.Int).Set(e.acc.Balance), new(uint256.Int).Set(value), e.now, e.lt, e.l.fees)
	if err := e.invoke(func() error { return c.ReceiveInternal(ctx, msg) }); err != nil {
		return err
	}
	if data := ctx.NewData(); data != nil {
		e.acc.Data = data
	}
	return e.applyActions(ctx.Actions(), contract.Remaining(value, e.l.fees.Compute))
}

// processExternal runs an inbound external message. An error return means the message
// was rejected before acceptance and nothing was written.
func (l *Ledger) processExternal(to *address.Address, body *cell.Cell, init *address.StateInit) (*types.Transaction, error) {
	acc, err := l.loadAccount(to)
	if err != nil {
		return nil, err
	}
	e := l.newExecution(acc)
	e.tx = &types.Transaction{
		Hash:    types.ComputeHash(to, e.lt, body),
		Lt:      e.lt,
		Account: to,
		InMsg: &types.MessageInfo{
			External: true,
			Dest:     to,
			Value:    new(uint256.Int),
			Deploy:   init != nil,
			Opcode:   opcodeLabel(body),
			Body:     body,
		},
		BalanceBefore: new(uint256.Int).Set(acc.Balance),
	}

	if !acc.IsActive() {
		if init == nil {
			return nil, errors.Errorf(errors.ErrCodeAccountNotFound, "%s is not deployed", to)
		}
		if err := e.activate(init); err != nil {
			return nil, err
		}
	}
	c, err := l.registry.Lookup(acc.Code)
	if err != nil {
		return nil, errors.Errorf(errors.ErrCodeInternal, "%v", err)
	}
	e.contract = c

	ctx := contract.NewContext(to, acc.Code, acc.Data, new(uint256.Int).Set(acc.Balance), nil, e.now, e.lt, l.fees)
	handlerErr := e.invoke(func() error { return c.ReceiveExternal(ctx, body) })
	if !ctx.Accepted() {
		if handlerErr == nil {
			handlerErr = errors.Errorf(errors.ErrCodeUnauthorized, "%s did not accept the message", c.Name())
		}
		return nil, handlerErr
	}
	if err := e.chargeCompute(); err != nil {
		return nil, err
	}

	if handlerErr != nil {
		e.fail(handlerErr, nil)
	} else {
		if data := ctx.NewData(); data != nil {
			acc.Data = data
		}
		// accepted storage stays committed so a signed command cannot be replayed
		if err := e.applyActions(ctx.Actions(), new(uint256.Int)); err != nil {
			e.failActions(err)
		} else {
			e.succeed()
		}
	}
	return e.commit()
}

// enqueueFromTreasury debits a treasury for msg and queues it; treasuries are the
// ledger's only source of native value.
func (l *Ledger) enqueueFromTreasury(from *address.Address, msg *message.Internal) (*types.Transaction, error) {
	if msg == nil || msg.Dest == nil {
		return nil, errors.Errorf(errors.ErrCodeMalformedMessage, "message without destination")
	}
	acc, err := l.loadAccount(from)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive() || acc.Code.Hash() != contract.TreasuryCode.Hash() {
		return nil, errors.Errorf(errors.ErrCodeUnauthorized, "%s is not a treasury", from)
	}
	e := l.newExecution(acc)
	e.contract = contract.Treasury{}
	e.tx = &types.Transaction{
		Lt:            e.lt,
		Account:       from,
		InMsg:         &types.MessageInfo{External: true, Dest: from, Value: new(uint256.Int)},
		BalanceBefore: new(uint256.Int).Set(acc.Balance),
	}
	if err := e.applyActions([]contract.Action{{Mode: contract.SendModePayFeesSeparately, Message: msg}}, new(uint256.Int)); err != nil {
		return nil, err
	}
	hashCell := msg.Body
	if c, err := e.out[0].Cell(); err == nil {
		hashCell = c
	}
	e.tx.Hash = types.ComputeHash(from, e.lt, hashCell)
	e.succeed()
	return e.commit()
}

func messageInfo(m *message.Internal) *types.MessageInfo {
	return &types.MessageInfo{
		Src:     m.Src,
		Dest:    m.Dest,
		Value:   new(uint256.Int).Set(m.Amount()),
		Bounce:  m.Bounce,
		Bounced: m.Bounced,
		Deploy:  m.Init != nil,
		Opcode:  opcodeLabel(m.Body),
		Body:    m.Body,
	}
}

// opcodeLabel names the operation a body carries, "" for plain transfers.
func opcodeLabel(body *cell.Cell) string {
	if message.IsEmpty(body) {
		return ""
	}
	if message.IsBouncedBody(body) {
		return "bounced"
	}
	op, err := message.PeekOpcode(body)
	if err != nil {
		return ""
	}
	return op.String()
}
