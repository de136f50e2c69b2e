package config

import "github.com/mezonai/jetton/store"

// TreasuryConfig funds a named treasury when the chain is initialized
type TreasuryConfig struct {
	Name string `yaml:"name"`
	// Amount in native coins, decimal ("1000", "0.5")
	Amount string `yaml:"amount"`
}

// ChainConfig holds the configuration from chain.yml
type ChainConfig struct {
	Workchain  int32             `yaml:"workchain"`
	Testnet    bool              `yaml:"testnet"`
	Store      store.StoreConfig `yaml:"store"`
	FeesPath   string            `yaml:"fees_path"`
	Treasuries []TreasuryConfig  `yaml:"treasuries"`
}

// ConfigFile is the top-level structure for chain.yml
type ConfigFile struct {
	Config ChainConfig `yaml:"config"`
}
