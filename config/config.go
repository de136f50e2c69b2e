package config

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"path/filepath"

	"github.com/holiman/uint256"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/mezonai/jetton/common"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/logx"
	"github.com/mezonai/jetton/store"
	"github.com/mezonai/jetton/utils"
)

// LoadChainConfig reads and parses the chain.yml file
func LoadChainConfig(path string) (*ChainConfig, error) {
	logx.Info("CONFIG", "LoadChainConfig called with path: ", path)
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	cfg := &cfgFile.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded chain config: workchain=%d store=%s treasuries=%d", cfg.Workchain, cfg.Store.Type, len(cfg.Treasuries)))
	return cfg, nil
}

// SaveChainConfig writes cfg under the top-level "config" key, creating parent directories.
func SaveChainConfig(path string, cfg *ChainConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := yaml.Marshal(&ConfigFile{Config: *cfg})
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func (c *ChainConfig) Validate() error {
	if c.Workchain < -128 || c.Workchain > 127 {
		return fmt.Errorf("workchain %d does not fit int8", c.Workchain)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	seen := make(map[string]bool, len(c.Treasuries))
	for _, t := range c.Treasuries {
		if t.Name == "" {
			return fmt.Errorf("treasury without name")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate treasury %q", t.Name)
		}
		seen[t.Name] = true
		if _, err := utils.ToNano(t.Amount); err != nil {
			return fmt.Errorf("treasury %s: %w", t.Name, err)
		}
	}
	return nil
}

// Fees loads the fee schedule from FeesPath, or the defaults when no file is configured.
func (c *ChainConfig) Fees() (contract.Fees, error) {
	if c.FeesPath == "" {
		return contract.DefaultFees(), nil
	}
	feesCfg, err := LoadFeesConfig(c.FeesPath)
	if err != nil {
		return contract.Fees{}, err
	}
	return feesCfg.ToFees(), nil
}

func storeConfig() store.StoreConfig {
	return store.StoreConfig{Type: store.LevelDBStoreType, Directory: DefaultStoreDir}
}

// FeesConfig is the [fees] section of fees.ini, in nano units
type FeesConfig struct {
	ComputeNano uint64 `ini:"compute_nano"`
	ForwardNano uint64 `ini:"forward_nano"`
}

func (f *FeesConfig) ToFees() contract.Fees {
	return contract.Fees{
		Compute: uint256.NewInt(f.ComputeNano),
		Forward: uint256.NewInt(f.ForwardNano),
	}
}

// LoadFeesConfig reads the fee schedule from an .ini file; missing keys keep their defaults
func LoadFeesConfig(path string) (*FeesConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	feesCfg := &FeesConfig{
		ComputeNano: contract.DefaultComputeFeeNano,
		ForwardNano: contract.DefaultForwardFeeNano,
	}
	if err := cfg.Section("fees").MapTo(feesCfg); err != nil {
		return nil, err
	}
	return feesCfg, nil
}

// LoadEd25519PrivKey loads an Ed25519 private key from a file (expects base58 of the 64-byte key)
func LoadEd25519PrivKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key, err := common.DecodePrivateKey(string(trimNewline(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return key, nil
}

// SaveEd25519PrivKey writes key in the format LoadEd25519PrivKey reads, readable by the owner only.
func SaveEd25519PrivKey(path string, key ed25519.PrivateKey) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(common.EncodeKey(key)+"\n"), 0o600)
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r' || b[len(b)-1] == ' ') {
		b = b[:len(b)-1]
	}
	return b
}
