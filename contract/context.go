package contract

import (
	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/message"
)

// Context is the view a handler gets of its own actor for one transaction. Handlers
// never touch other actors; everything they want to happen elsewhere goes through Send.
type Context struct {
	Self *address.Address
	Code *cell.Cell
	Data *cell.Cell
	// Balance is the native balance after the inbound value was credited and the compute fee charged.
	Balance *uint256.Int
	// MsgValue is the value attached to the inbound message, zero for external messages.
	MsgValue *uint256.Int
	Now      uint32
	Lt       uint64
	Fees     Fees

	newData  *cell.Cell
	actions  []Action
	accepted bool
}

func NewContext(self *address.Address, code, data *cell.Cell, balance, msgValue *uint256.Int, now uint32, lt uint64, fees Fees) *Context {
	if msgValue == nil {
		msgValue = new(uint256.Int)
	}
	return &Context{
		Self:     self,
		Code:     code,
		Data:     data,
		Balance:  balance,
		MsgValue: msgValue,
		Now:      now,
		Lt:       lt,
		Fees:     fees,
	}
}

// Workchain of the running actor.
func (c *Context) Workchain() int32 {
	return c.Self.Workchain
}

// SetData replaces the actor's persistent storage when the transaction commits.
func (c *Context) SetData(data *cell.Cell) {
	c.newData = data
}

// NewData returns the storage set by SetData, or nil when unchanged.
func (c *Context) NewData() *cell.Cell {
	return c.newData
}

// Send queues an outgoing message. The substrate fills in the source, logical time and
// value according to mode when the action phase runs.
func (c *Context) Send(mode SendMode, msg *message.Internal) {
	c.actions = append(c.actions, Action{Mode: mode, Message: msg})
}

// SendBody is Send for an operation body.
func (c *Context) SendBody(mode SendMode, dest *address.Address, value *uint256.Int, bounce bool, init *address.StateInit, body message.Body) error {
	encoded, err := message.Encode(body)
	if err != nil {
		return err
	}
	c.Send(mode, &message.Internal{
		Bounce: bounce,
		Dest:   dest,
		Value:  value,
		Init:   init,
		Body:   encoded,
	})
	return nil
}

func (c *Context) Actions() []Action {
	return c.actions
}

// Accept marks an external message as paid for by this actor. Failures before Accept leave no trace.
func (c *Context) Accept() {
	c.accepted = true
}

func (c *Context) Accepted() bool {
	return c.accepted
}
