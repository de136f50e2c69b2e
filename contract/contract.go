// Package contract defines what an actor implementation looks like to the ledger:
// handlers for internal and external messages, read-only get-methods, and the
// registry binding code cells to implementations.
package contract

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/message"
)

// Contract is the behaviour behind a code cell. Implementations are stateless; all
// state lives in the Context data cell.
type Contract interface {
	Name() string
	// ReceiveInternal handles a message from another actor. Bounced messages arrive here
	// too, with msg.Bounced set.
	ReceiveInternal(ctx *Context, msg *message.Internal) error
	// ReceiveExternal handles an inbound message from outside. It must call ctx.Accept
	// before anything it wants committed.
	ReceiveExternal(ctx *Context, body *cell.Cell) error
	GetMethods() map[string]GetMethod
}

// Query is the read-only state a get-method sees.
type Query struct {
	Self    *address.Address
	Balance *uint256.Int
	Code    *cell.Cell
	Data    *cell.Cell
	Now     uint32
}

// GetMethod returns a stack of values: *uint256.Int, bool, *address.Address, *cell.Cell or []byte.
type GetMethod func(q *Query, args ...any) ([]any, error)

// NewCode returns the code cell identifying an implementation by name and version.
func NewCode(name string, version uint32) *cell.Cell {
	b := cell.NewBuilder()
	_ = b.StoreUint(uint64(version), 32)
	if err := b.StoreStringTail(name); err != nil {
		panic(err)
	}
	return b.EndCell()
}

// Registry maps code hashes to implementations.
type Registry struct {
	mu     sync.RWMutex
	byHash map[[32]byte]Contract
}

func NewRegistry() *Registry {
	return &Registry{byHash: make(map[[32]byte]Contract)}
}

func (r *Registry) Register(code *cell.Cell, c Contract) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHash[code.Hash()] = c
}

func (r *Registry) Lookup(code *cell.Cell) (Contract, error) {
	if code == nil {
		return nil, fmt.Errorf("no code")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byHash[code.Hash()]
	if !ok {
		return nil, fmt.Errorf("no contract registered for code %s", code.HashHex())
	}
	return c, nil
}

// ArgAddress reads an address argument given either as *address.Address or as a cell holding one.
func ArgAddress(args []any, i int) (*address.Address, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("missing argument %d", i)
	}
	switch v := args[i].(type) {
	case *address.Address:
		return v, nil
	case *cell.Cell:
		return address.Load(v.BeginParse())
	default:
		return nil, fmt.Errorf("argument %d: expected address, got %T", i, args[i])
	}
}
