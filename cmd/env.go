package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/holiman/uint256"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/config"
	"github.com/mezonai/jetton/jsonx"
	"github.com/mezonai/jetton/ledger"
	"github.com/mezonai/jetton/store"
	"github.com/mezonai/jetton/utils"
)

// commandTimeout bounds how long one command may spend settling the message queue.
const commandTimeout = 30 * time.Second

type chainEnv struct {
	cfg    *config.ChainConfig
	stores *store.Stores
	ledger *ledger.Ledger
}

func openChain() (*chainEnv, error) {
	cfg, err := config.LoadChainConfig(configPath)
	if err != nil {
		return nil, err
	}
	return openChainWith(cfg)
}

func openChainWith(cfg *config.ChainConfig) (*chainEnv, error) {
	fees, err := cfg.Fees()
	if err != nil {
		return nil, err
	}
	stores, err := store.CreateStore(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	l, err := ledger.NewLedger(stores, ledger.WithFees(fees), ledger.WithWorkchain(cfg.Workchain))
	if err != nil {
		stores.Close()
		return nil, err
	}
	return &chainEnv{cfg: cfg, stores: stores, ledger: l}, nil
}

func (e *chainEnv) Close() {
	_ = e.stores.Close()
}

func (e *chainEnv) treasury(name string) (*address.Address, error) {
	return e.ledger.Treasury(name)
}

// addressOrTreasury parses s as an address; an empty s selects the named treasury.
func (e *chainEnv) addressOrTreasury(s, treasury string) (*address.Address, error) {
	if s == "" {
		return e.treasury(treasury)
	}
	return address.Parse(s)
}

func (e *chainEnv) friendly(a *address.Address) string {
	return a.ToFriendly(true, e.cfg.Testnet)
}

func parseCoins(name, s string) (*uint256.Int, error) {
	v, err := utils.ToNano(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return v, nil
}

// offchainContent is a TEP-64 off-chain content cell pointing at uri.
func offchainContent(uri string) (*cell.Cell, error) {
	if uri == "" {
		return cell.Empty(), nil
	}
	b := cell.NewBuilder()
	if err := b.StoreUint(0x01, 8); err != nil {
		return nil, err
	}
	if err := b.StoreStringTail(uri); err != nil {
		return nil, err
	}
	return b.EndCell(), nil
}

func printJSON(v any) error {
	out, err := jsonx.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}

type sendReport struct {
	Transactions int    `json:"transactions"`
	Aborted      int    `json:"aborted"`
	Fees         string `json:"fees"`
	Receipts     any    `json:"receipts,omitempty"`
}

func reportSend(res *ledger.SendResult, verbose bool) error {
	fees := new(uint256.Int)
	for _, tx := range res.Transactions {
		if tx.TotalFees != nil {
			fees.Add(fees, tx.TotalFees)
		}
	}
	r := sendReport{
		Transactions: len(res.Transactions),
		Aborted:      len(res.Aborted()),
		Fees:         utils.FromNano(fees),
	}
	if verbose {
		r.Receipts = res.Transactions
	}
	return printJSON(r)
}
