package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mezonai/jetton/config"
	"github.com/mezonai/jetton/logx"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "jetton",
	Short: "Jetton ledger CLI",
	Long:  "Command line interface for deploying and driving jetton minters, jetton wallets and accounts on a local ledger.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "path to chain.yml")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
