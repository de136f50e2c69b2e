package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mezonai/jetton/utils"
)

var treasuryCmd = &cobra.Command{
	Use:   "treasury <name>",
	Short: "Show (and create on first use) a named treasury",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openChain()
		if err != nil {
			return err
		}
		defer env.Close()

		addr, err := env.treasury(args[0])
		if err != nil {
			return err
		}
		balance, err := env.ledger.Balance(addr)
		if err != nil {
			return err
		}
		return printJSON(map[string]string{
			"name":    args[0],
			"address": env.friendly(addr),
			"raw":     addr.String(),
			"balance": utils.FromNano(balance),
			"minted":  utils.FromNano(env.ledger.Minted()),
			"fees":    utils.FromNano(env.ledger.CollectedFees()),
		})
	},
}

func init() {
	rootCmd.AddCommand(treasuryCmd)
}
