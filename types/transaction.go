package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
)

const (
	TxStatusFailed    = 0
	TxStatusSuccess   = 1
	TxStatusProcessed = 2
)

// MessageInfo summarizes a message on the receipt of the transaction that consumed or produced it.
type MessageInfo struct {
	External bool             `json:"external,omitempty"`
	Src      *address.Address `json:"src,omitempty"`
	Dest     *address.Address `json:"dest"`
	Value    *uint256.Int     `json:"value"`
	Bounce   bool             `json:"bounce"`
	Bounced  bool             `json:"bounced"`
	Deploy   bool             `json:"deploy,omitempty"`
	Opcode   string           `json:"opcode,omitempty"`
	Body     *cell.Cell       `json:"body,omitempty"`
}

// Transaction is the receipt of one message processed by one actor.
type Transaction struct {
	Hash     string           `json:"hash"`
	Lt       uint64           `json:"lt"`
	Now      uint32           `json:"now"`
	Account  *address.Address `json:"account"`
	InMsg    *MessageInfo     `json:"in_msg"`
	OutMsgs  []*MessageInfo   `json:"out_msgs"`
	Status   int32            `json:"status"`
	Deployed bool             `json:"deployed"`
	// Aborted is set when the handler or the action phase failed and state was reverted.
	Aborted       bool         `json:"aborted"`
	ExitCode      int          `json:"exit_code"`
	Error         string       `json:"error,omitempty"`
	TotalFees     *uint256.Int `json:"total_fees"`
	BalanceBefore *uint256.Int `json:"balance_before"`
	BalanceAfter  *uint256.Int `json:"balance_after"`
}

func (tx *Transaction) Success() bool {
	return tx.Status == TxStatusSuccess
}

// ComputeHash identifies the receipt by account, logical time and inbound message.
func ComputeHash(account *address.Address, lt uint64, inMsg *cell.Cell) string {
	h := sha256.New()
	h.Write(account.Key())
	var ltBytes [8]byte
	binary.BigEndian.PutUint64(ltBytes[:], lt)
	h.Write(ltBytes[:])
	if inMsg != nil {
		mh := inMsg.Hash()
		h.Write(mh[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
