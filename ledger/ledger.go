// Package ledger is the execution substrate the actors run on: an arena of accounts keyed
// by derived address, a FIFO queue of in-flight internal messages, and one atomic
// transaction per delivered message.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/db"
	"github.com/mezonai/jetton/errors"
	"github.com/mezonai/jetton/events"
	"github.com/mezonai/jetton/logx"
	"github.com/mezonai/jetton/message"
	"github.com/mezonai/jetton/monitoring"
	"github.com/mezonai/jetton/store"
	"github.com/mezonai/jetton/types"
)

const (
	// DefaultMaxSteps bounds Run so a message loop between actors cannot spin forever.
	DefaultMaxSteps = 10_000
)

// DefaultTreasuryBalance funds a treasury created on first use: one million coins.
var DefaultTreasuryBalance = new(uint256.Int).Mul(uint256.NewInt(1_000_000), uint256.NewInt(1_000_000_000))

type Ledger struct {
	mu          sync.Mutex
	stores      *store.Stores
	registry    *contract.Registry
	fees        contract.Fees
	workchain   int32
	clock       func() time.Time
	eventRouter *events.EventRouter
	maxSteps    int

	meta  *store.ChainMeta
	queue []*message.Internal
}

type Option func(*Ledger)

func WithRegistry(r *contract.Registry) Option {
	return func(l *Ledger) { l.registry = r }
}

func WithFees(f contract.Fees) Option {
	return func(l *Ledger) { l.fees = f }
}

func WithWorkchain(wc int32) Option {
	return func(l *Ledger) { l.workchain = wc }
}

// WithClock replaces the wall clock used for message timestamps and validity checks.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

func WithEventRouter(er *events.EventRouter) Option {
	return func(l *Ledger) { l.eventRouter = er }
}

func WithMaxSteps(n int) Option {
	return func(l *Ledger) { l.maxSteps = n }
}

// NewLedger opens a ledger over stores. Unless overridden it runs the treasury, jetton
// and account contracts with the default fees on the base workchain.
func NewLedger(stores *store.Stores, opts ...Option) (*Ledger, error) {
	if stores == nil {
		return nil, fmt.Errorf("stores cannot be nil")
	}
	l := &Ledger{
		stores:    stores,
		fees:      contract.DefaultFees(),
		workchain: address.BasechainID,
		clock:     time.Now,
		maxSteps:  DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.registry == nil {
		l.registry = DefaultRegistry()
	}
	meta, err := stores.Meta.Get()
	if err != nil {
		return nil, err
	}
	l.meta = meta
	monitoring.InitMetrics()
	return l, nil
}

func (l *Ledger) Workchain() int32 {
	return l.workchain
}

func (l *Ledger) Fees() contract.Fees {
	return l.fees
}

func (l *Ledger) Registry() *contract.Registry {
	return l.registry
}

func (l *Ledger) now() uint32 {
	return uint32(l.clock().Unix())
}

// GetAccount returns the account at addr; an address never touched is reported as an empty uninit account.
func (l *Ledger) GetAccount(addr *address.Address) (*types.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadAccount(addr)
}

func (l *Ledger) loadAccount(addr *address.Address) (*types.Account, error) {
	acc, err := l.stores.Accounts.GetByAddr(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return types.NewUninitAccount(addr), nil
	}
	if acc.Balance == nil {
		acc.Balance = new(uint256.Int)
	}
	return acc, nil
}

// Balance returns the native balance at addr.
func (l *Ledger) Balance(addr *address.Address) (*uint256.Int, error) {
	acc, err := l.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return acc.Balance, nil
}

// CollectedFees is everything charged for compute and forwarding so far.
func (l *Ledger) CollectedFees() *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(uint256.Int).Set(l.meta.CollectedFees)
}

// Minted is the native value created by funding treasuries.
func (l *Ledger) Minted() *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(uint256.Int).Set(l.meta.Minted)
}

func (l *Ledger) Lt() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.meta.Lt
}

// Pending is the number of messages queued but not delivered yet.
func (l *Ledger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// InFlightValue sums the value carried by queued messages.
func (l *Ledger) InFlightValue() *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := new(uint256.Int)
	for _, m := range l.queue {
		total.Add(total, m.Amount())
	}
	return total
}

// Treasury returns the address of the named treasury, creating it with DefaultTreasuryBalance on first use.
func (l *Ledger) Treasury(name string) (*address.Address, error) {
	return l.TreasuryWithBalance(name, DefaultTreasuryBalance)
}

// TreasuryWithBalance is Treasury with an explicit initial balance; an existing treasury keeps its balance.
func (l *Ledger) TreasuryWithBalance(name string, balance *uint256.Int) (*address.Address, error) {
	data := contract.TreasuryData(name)
	addr, err := address.Derive(l.workchain, contract.TreasuryCode, data)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, err := l.loadAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc.IsActive() {
		return addr, nil
	}
	acc.Status = types.AccountActive
	acc.Code = contract.TreasuryCode
	acc.Data = data
	acc.Balance = new(uint256.Int).Add(acc.Balance, balance)

	meta := l.cloneMeta()
	meta.Minted.Add(meta.Minted, balance)
	err = l.stores.TxManager.WithBatch(func(batch db.DatabaseBatch) error {
		if err := l.stores.Accounts.PutBatch(batch, acc); err != nil {
			return err
		}
		return l.stores.Meta.PutBatch(batch, meta)
	})
	if err != nil {
		return nil, err
	}
	l.meta = meta
	logx.Info("LEDGER", "treasury ", name, " at ", addr, " funded with ", balance.Dec())
	return addr, nil
}

// Enqueue debits from (which must be a treasury) for msg.Value plus the forward fee and
// queues msg without delivering it. The returned receipt records the debit.
func (l *Ledger) Enqueue(from *address.Address, msg *message.Internal) (*types.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enqueueFromTreasury(from, msg)
}

// Step delivers the oldest queued message. It returns nil when the queue is empty.
func (l *Ledger) Step(ctx context.Context) (*types.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.step()
}

// Run delivers queued messages until the queue is empty and returns the receipts in delivery order.
func (l *Ledger) Run(ctx context.Context) ([]*types.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.run(ctx)
}

func (l *Ledger) run(ctx context.Context) ([]*types.Transaction, error) {
	var txs []*types.Transaction
	for steps := 0; len(l.queue) > 0; steps++ {
		if steps >= l.maxSteps {
			return txs, fmt.Errorf("message queue did not settle after %d steps", l.maxSteps)
		}
		if err := ctx.Err(); err != nil {
			return txs, err
		}
		tx, err := l.step()
		if err != nil {
			return txs, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (l *Ledger) step() (*types.Transaction, error) {
	if len(l.queue) == 0 {
		return nil, nil
	}
	msg := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	tx, err := l.processInternal(msg)
	if err != nil {
		// nothing was committed; keep the message and its value in flight
		l.queue = append([]*message.Internal{msg}, l.queue...)
		return nil, err
	}
	monitoring.SetQueueSize(len(l.queue))
	return tx, nil
}

// Send sends msg from a treasury and runs the ledger until every consequence has settled.
func (l *Ledger) Send(ctx context.Context, from *address.Address, msg *message.Internal) (*SendResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	first, err := l.enqueueFromTreasury(from, msg)
	if err != nil {
		return nil, err
	}
	txs, err := l.run(ctx)
	return &SendResult{Transactions: append([]*types.Transaction{first}, txs...)}, err
}

// SendExternal delivers an inbound external message to addr and runs the ledger until
// settled. A message rejected before the actor accepted it leaves no trace and is
// returned as the error; init deploys an uninit account on the way in.
func (l *Ledger) SendExternal(ctx context.Context, to *address.Address, body *cell.Cell, init *address.StateInit) (*SendResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	first, err := l.processExternal(to, body, init)
	if err != nil {
		if l.eventRouter != nil {
			l.eventRouter.PublishExternalRejected(to, err)
		}
		monitoring.RecordRejectedExternal(string(errors.CodeOf(err)))
		logx.Warn("LEDGER", "external message to ", to, " rejected: ", err)
		return nil, err
	}
	txs, err := l.run(ctx)
	return &SendResult{Transactions: append([]*types.Transaction{first}, txs...)}, err
}

// RunGetMethod calls a read-only method of the contract at addr.
func (l *Ledger) RunGetMethod(ctx context.Context, addr *address.Address, name string, args ...any) (result []any, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acc, err := l.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive() {
		return nil, errors.Errorf(errors.ErrCodeAccountNotFound, "%s is not active", addr)
	}
	c, err := l.registry.Lookup(acc.Code)
	if err != nil {
		return nil, errors.Errorf(errors.ErrCodeInternal, "%v", err)
	}
	method, ok := c.GetMethods()[name]
	if !ok {
		return nil, errors.Errorf(errors.ErrCodeUnknownGetMethod, "%s has no get-method %q", c.Name(), name)
	}
	defer func() {
		if r := recover(); r != nil {
			monitoring.IncreasePanicCount()
			err = errors.Errorf(errors.ErrCodeInternal, "get-method %s panicked: %v", name, r)
		}
	}()
	return method(&contract.Query{
		Self:    addr,
		Balance: acc.Balance,
		Code:    acc.Code,
		Data:    acc.Data,
		Now:     l.now(),
	}, args...)
}

// Transactions lists up to limit receipts of addr, oldest first.
func (l *Ledger) Transactions(addr *address.Address, limit int) ([]*types.Transaction, error) {
	return l.stores.Txs.ListByAccount(addr, limit)
}

func (l *Ledger) GetTransaction(hash string) (*types.Transaction, error) {
	return l.stores.Txs.GetByHash(hash)
}

func (l *Ledger) cloneMeta() *store.ChainMeta {
	return &store.ChainMeta{
		Lt:            l.meta.Lt,
		CollectedFees: new(uint256.Int).Set(l.meta.CollectedFees),
		Minted:        new(uint256.Int).Set(l.meta.Minted),
	}
}
