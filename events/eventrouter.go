package events

import (
	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/types"
)

// EventRouter turns ledger results into bus events
type EventRouter struct {
	eventBus *EventBus
}

// NewEventRouter creates a new EventRouter instance
func NewEventRouter(eventBus *EventBus) *EventRouter {
	return &EventRouter{eventBus: eventBus}
}

func (er *EventRouter) Bus() *EventBus {
	return er.eventBus
}

// PublishTransaction publishes the receipt and, if the inbound value went back to its sender, a bounce.
func (er *EventRouter) PublishTransaction(tx *types.Transaction) {
	er.eventBus.Publish(NewTransactionProcessed(tx))
	for _, out := range tx.OutMsgs {
		if out.Bounced {
			er.eventBus.Publish(NewMessageBounced(tx.Hash, tx.Account, out.Dest, tx.ExitCode))
		}
	}
}

func (er *EventRouter) PublishExternalRejected(account *address.Address, err error) {
	er.eventBus.Publish(NewExternalRejected(account, err))
}
