package ledger

import (
	"github.com/mezonai/jetton/account"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/jetton"
)

// DefaultRegistry knows the treasury, the jetton minter and wallet, and the account.
func DefaultRegistry() *contract.Registry {
	r := contract.NewRegistry()
	r.Register(contract.TreasuryCode, contract.Treasury{})
	jetton.Register(r)
	account.Register(r)
	return r
}
