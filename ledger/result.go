package ledger

import (
	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/message"
	"github.com/mezonai/jetton/types"
)

// SendResult is every transaction caused by one Send or SendExternal, in delivery order.
type SendResult struct {
	Transactions []*types.Transaction
}

// TxMatcher selects transactions in Find and Filter.
type TxMatcher func(tx *types.Transaction) bool

// Find returns the first transaction matching all matchers, or nil.
func (r *SendResult) Find(matchers ...TxMatcher) *types.Transaction {
	for _, tx := range r.Transactions {
		if matchAll(tx, matchers) {
			return tx
		}
	}
	return nil
}

// Filter returns every transaction matching all matchers.
func (r *SendResult) Filter(matchers ...TxMatcher) []*types.Transaction {
	var out []*types.Transaction
	for _, tx := range r.Transactions {
		if matchAll(tx, matchers) {
			out = append(out, tx)
		}
	}
	return out
}

// Aborted lists the transactions that failed and were reverted.
func (r *SendResult) Aborted() []*types.Transaction {
	return r.Filter(func(tx *types.Transaction) bool { return tx.Aborted })
}

func matchAll(tx *types.Transaction, matchers []TxMatcher) bool {
	for _, m := range matchers {
		if !m(tx) {
			return false
		}
	}
	return true
}

func MatchFrom(addr *address.Address) TxMatcher {
	return func(tx *types.Transaction) bool {
		return tx.InMsg != nil && !tx.InMsg.External && addr.Equal(tx.InMsg.Src)
	}
}

func MatchTo(addr *address.Address) TxMatcher {
	return func(tx *types.Transaction) bool {
		return addr.Equal(tx.Account)
	}
}

func MatchSuccess(success bool) TxMatcher {
	return func(tx *types.Transaction) bool {
		return tx.Success() == success
	}
}

func MatchDeploy(deployed bool) TxMatcher {
	return func(tx *types.Transaction) bool {
		return tx.Deployed == deployed
	}
}

func MatchOpcode(op message.Opcode) TxMatcher {
	return func(tx *types.Transaction) bool {
		return tx.InMsg != nil && tx.InMsg.Opcode == op.String()
	}
}

// MatchBounced selects deliveries of bounced messages.
func MatchBounced() TxMatcher {
	return func(tx *types.Transaction) bool {
		return tx.InMsg != nil && tx.InMsg.Bounced
	}
}

func MatchExitCode(code int) TxMatcher {
	return func(tx *types.Transaction) bool {
		return tx.ExitCode == code
	}
}
