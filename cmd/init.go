package cmd

import (
	"encoding/hex"
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/mezonai/jetton/config"
	"github.com/mezonai/jetton/logx"
	"github.com/mezonai/jetton/store"
	"github.com/mezonai/jetton/utils"
)

var (
	initWorkchain int32
	initStoreType string
	initStoreDir  string
	initTestnet   bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write chain.yml if missing and fund the configured treasuries",
	Long: `Initialize a ledger by:
- Writing a default chain.yml when the file does not exist yet
- Opening the configured store
- Creating and funding every treasury listed in the config

Running init again is safe: treasuries that already exist keep their balance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initializeChain()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Int32Var(&initWorkchain, "workchain", 0, "workchain of a newly written config")
	initCmd.Flags().StringVar(&initStoreType, "store", string(store.LevelDBStoreType), "store backend of a newly written config (leveldb, bolt, memory, postgres, redis)")
	initCmd.Flags().StringVar(&initStoreDir, "data-dir", config.DefaultStoreDir, "store directory of a newly written config")
	initCmd.Flags().BoolVar(&initTestnet, "testnet", false, "print testnet friendly addresses")
}

func initializeChain() error {
	cfg, err := config.LoadChainConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.DefaultChainConfig()
		cfg.Workchain = initWorkchain
		cfg.Testnet = initTestnet
		cfg.Store = store.StoreConfig{Type: store.StoreType(initStoreType), Directory: initStoreDir}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.SaveChainConfig(configPath, cfg); err != nil {
			return err
		}
		logx.Info("INIT", "wrote default config to ", configPath)
	} else if err != nil {
		return err
	}

	env, err := openChainWith(cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	funded := make(map[string]string, len(cfg.Treasuries))
	for _, t := range cfg.Treasuries {
		amount, err := utils.ToNano(t.Amount)
		if err != nil {
			return err
		}
		addr, err := env.ledger.TreasuryWithBalance(t.Name, amount)
		if err != nil {
			return err
		}
		funded[t.Name] = env.friendly(addr)
	}
	stateHash, err := env.ledger.StateHash()
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"config":     configPath,
		"workchain":  cfg.Workchain,
		"treasuries": funded,
		"state_hash": hex.EncodeToString(stateHash[:]),
	})
}
