package events

import (
	"time"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/types"
)

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventTransactionProcessed EventType = "TransactionProcessed"
	EventTransactionAborted   EventType = "TransactionAborted"
	EventMessageBounced       EventType = "MessageBounced"
	EventExternalRejected     EventType = "ExternalRejected"
)

// LedgerEvent represents anything that happens to an actor
type LedgerEvent interface {
	Type() EventType
	Timestamp() time.Time
	TxHash() string
	Account() *address.Address
}

// TransactionProcessed is published for every committed transaction, successful or aborted.
type TransactionProcessed struct {
	tx        *types.Transaction
	timestamp time.Time
}

func NewTransactionProcessed(tx *types.Transaction) *TransactionProcessed {
	return &TransactionProcessed{tx: tx, timestamp: time.Now()}
}

func (e *TransactionProcessed) Type() EventType {
	if e.tx.Aborted {
		return EventTransactionAborted
	}
	return EventTransactionProcessed
}

func (e *TransactionProcessed) Timestamp() time.Time {
	return e.timestamp
}

func (e *TransactionProcessed) TxHash() string {
	return e.tx.Hash
}

func (e *TransactionProcessed) Account() *address.Address {
	return e.tx.Account
}

func (e *TransactionProcessed) Transaction() *types.Transaction {
	return e.tx
}

// MessageBounced is published when an aborted transaction sends the value back to the sender.
type MessageBounced struct {
	txHash    string
	from      *address.Address
	to        *address.Address
	exitCode  int
	timestamp time.Time
}

func NewMessageBounced(txHash string, from, to *address.Address, exitCode int) *MessageBounced {
	return &MessageBounced{
		txHash:    txHash,
		from:      from,
		to:        to,
		exitCode:  exitCode,
		timestamp: time.Now(),
	}
}

func (e *MessageBounced) Type() EventType {
	return EventMessageBounced
}

func (e *MessageBounced) Timestamp() time.Time {
	return e.timestamp
}

func (e *MessageBounced) TxHash() string {
	return e.txHash
}

// Account is the actor that rejected the message.
func (e *MessageBounced) Account() *address.Address {
	return e.from
}

// To is the original sender receiving the bounce.
func (e *MessageBounced) To() *address.Address {
	return e.to
}

func (e *MessageBounced) ExitCode() int {
	return e.exitCode
}

// ExternalRejected is published when an external message fails before acceptance and leaves no transaction.
type ExternalRejected struct {
	account   *address.Address
	err       error
	timestamp time.Time
}

func NewExternalRejected(account *address.Address, err error) *ExternalRejected {
	return &ExternalRejected{account: account, err: err, timestamp: time.Now()}
}

func (e *ExternalRejected) Type() EventType {
	return EventExternalRejected
}

func (e *ExternalRejected) Timestamp() time.Time {
	return e.timestamp
}

func (e *ExternalRejected) TxHash() string {
	return ""
}

func (e *ExternalRejected) Account() *address.Address {
	return e.account
}

func (e *ExternalRejected) Error() error {
	return e.err
}
