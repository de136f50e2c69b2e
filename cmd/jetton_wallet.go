package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/client"
	"github.com/mezonai/jetton/config"
	"github.com/mezonai/jetton/utils"
)

type JettonWalletCmdConfig struct {
	Treasury   string
	Minter     string
	Owner      string
	To         string
	Response   string
	Amount     string
	Value      string
	ForwardTon string
	Verbose    bool
}

var jettonWalletConfig JettonWalletCmdConfig

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Transfer, burn and inspect jetton wallets",
	Long: `Jetton wallet commands. Transfers and burns are sent by a treasury, which is the owner
of the jetton wallet being debited.`,
}

var walletTransferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer jettons from the treasury's jetton wallet",
	Long: `Examples:
  jetton wallet transfer -m EQ... --to EQ... -a 10 --forward-ton 0.01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return transferJettons(jettonWalletConfig)
	},
}

var walletBurnCmd = &cobra.Command{
	Use:   "burn",
	Short: "Burn jettons from the treasury's jetton wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return burnJettons(jettonWalletConfig)
	},
}

var walletBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the jetton balance of an owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showJettonBalance(jettonWalletConfig)
	},
}

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletTransferCmd, walletBurnCmd, walletBalanceCmd)

	walletCmd.PersistentFlags().StringVarP(&jettonWalletConfig.Treasury, "treasury", "t", config.DefaultTreasuryName, "treasury owning the jetton wallet")
	walletCmd.PersistentFlags().StringVarP(&jettonWalletConfig.Minter, "minter", "m", "", "minter address")
	walletCmd.PersistentFlags().BoolVarP(&jettonWalletConfig.Verbose, "verbose", "v", false, "print every receipt")

	for _, c := range []*cobra.Command{walletTransferCmd, walletBurnCmd} {
		c.Flags().StringVarP(&jettonWalletConfig.Amount, "amount", "a", "", "jetton amount")
		c.Flags().StringVar(&jettonWalletConfig.Value, "value", "0.1", "value attached to the request")
		c.Flags().StringVar(&jettonWalletConfig.Response, "response", "", "receiver of the excess (default: the treasury)")
	}
	walletTransferCmd.Flags().StringVar(&jettonWalletConfig.To, "to", "", "new owner of the jettons")
	walletTransferCmd.Flags().StringVar(&jettonWalletConfig.ForwardTon, "forward-ton", "0", "value forwarded to the new owner with the notification")

	walletBalanceCmd.Flags().StringVar(&jettonWalletConfig.Owner, "owner", "", "owner address (default: the treasury)")
}

func transferJettons(cfg JettonWalletCmdConfig) error {
	if cfg.To == "" {
		return errors.New("--to is required")
	}
	env, err := openChain()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	owner, wallet, err := ownerWallet(ctx, env, cfg.Minter, "", cfg.Treasury)
	if err != nil {
		return err
	}
	to, err := address.Parse(cfg.To)
	if err != nil {
		return err
	}
	response, err := env.addressOrTreasury(cfg.Response, cfg.Treasury)
	if err != nil {
		return err
	}
	amount, err := parseCoins("amount", cfg.Amount)
	if err != nil {
		return err
	}
	value, err := parseCoins("value", cfg.Value)
	if err != nil {
		return err
	}
	forwardTon, err := parseCoins("forward-ton", cfg.ForwardTon)
	if err != nil {
		return err
	}

	res, err := wallet.SendTransfer(ctx, value, owner, amount, to, response, nil, forwardTon, nil)
	if err != nil {
		return err
	}
	return reportSend(res, cfg.Verbose)
}

func burnJettons(cfg JettonWalletCmdConfig) error {
	env, err := openChain()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	owner, wallet, err := ownerWallet(ctx, env, cfg.Minter, "", cfg.Treasury)
	if err != nil {
		return err
	}
	response, err := env.addressOrTreasury(cfg.Response, cfg.Treasury)
	if err != nil {
		return err
	}
	amount, err := parseCoins("amount", cfg.Amount)
	if err != nil {
		return err
	}
	value, err := parseCoins("value", cfg.Value)
	if err != nil {
		return err
	}

	res, err := wallet.SendBurn(ctx, owner, value, amount, response, nil)
	if err != nil {
		return err
	}
	return reportSend(res, cfg.Verbose)
}

func showJettonBalance(cfg JettonWalletCmdConfig) error {
	env, err := openChain()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	owner, wallet, err := ownerWallet(ctx, env, cfg.Minter, cfg.Owner, cfg.Treasury)
	if err != nil {
		return err
	}
	balance, err := wallet.GetJettonBalance(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"owner":   env.friendly(owner),
		"wallet":  env.friendly(wallet.Address),
		"balance": utils.FromNano(balance),
	})
}

// ownerWallet resolves the owner (default: the treasury) and derives its jetton wallet locally.
func ownerWallet(ctx context.Context, env *chainEnv, minterStr, ownerStr, treasury string) (*address.Address, *client.JettonWallet, error) {
	if minterStr == "" {
		return nil, nil, errors.New("--minter is required")
	}
	minterAddr, err := address.Parse(minterStr)
	if err != nil {
		return nil, nil, err
	}
	owner, err := env.addressOrTreasury(ownerStr, treasury)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	wallet, err := client.NewJettonWalletFromConfig(env.ledger, client.JettonWalletConfig{Owner: owner, Minter: minterAddr})
	if err != nil {
		return nil, nil, err
	}
	return owner, wallet, nil
}
