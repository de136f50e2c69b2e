package contract

import (
	"strings"

	"github.com/mezonai/jetton/message"
)

// SendMode controls how the value of an outgoing message is computed and who pays fees.
type SendMode uint8

const (
	SendModeOrdinary SendMode = 0
	// SendModePayFeesSeparately charges the forward fee to the sender's balance instead of the message value.
	SendModePayFeesSeparately SendMode = 1
	// SendModeIgnoreErrors drops a message that cannot be sent instead of failing the action phase.
	SendModeIgnoreErrors SendMode = 2
	// SendModeCarryRemainingValue adds what is left of the inbound message value.
	SendModeCarryRemainingValue SendMode = 64
	// SendModeCarryAllBalance sends the whole remaining balance.
	SendModeCarryAllBalance SendMode = 128
)

func (m SendMode) Has(flag SendMode) bool {
	return m&flag == flag
}

func (m SendMode) String() string {
	var parts []string
	switch {
	case m.Has(SendModeCarryAllBalance):
		parts = append(parts, "carry_all_balance")
	case m.Has(SendModeCarryRemainingValue):
		parts = append(parts, "carry_remaining_value")
	default:
		parts = append(parts, "ordinary")
	}
	if m.Has(SendModePayFeesSeparately) {
		parts = append(parts, "pay_fees_separately")
	}
	if m.Has(SendModeIgnoreErrors) {
		parts = append(parts, "ignore_errors")
	}
	return strings.Join(parts, "+")
}

// Action is one entry of a handler's outbox.
type Action struct {
	Mode    SendMode
	Message *message.Internal
}
