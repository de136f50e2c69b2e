package config

const (
	DefaultConfigPath   = "config/chain.yml"
	DefaultTreasuryName = "deployer"
	DefaultStoreDir     = "data/jetton"
)

// DefaultChainConfig is used by `jetton init` when no file is given.
func DefaultChainConfig() *ChainConfig {
	return &ChainConfig{
		Workchain: 0,
		Store:     storeConfig(),
		Treasuries: []TreasuryConfig{
			{Name: DefaultTreasuryName, Amount: "1000000"},
		},
	}
}
