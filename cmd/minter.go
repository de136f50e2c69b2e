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

type MinterConfig struct {
	Treasury   string
	Minter     string
	Admin      string
	ContentURI string
	Value      string
	To         string
	Amount     string
	ForwardTon string
	TotalTon   string
	Verbose    bool
}

var minterConfig MinterConfig

var minterCmd = &cobra.Command{
	Use:   "minter",
	Short: "Deploy and drive a jetton minter",
}

var minterDeployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a jetton minter with zero supply",
	Long: `Deploy a jetton minter paid for by a treasury. The admin defaults to the paying treasury.

Examples:
  jetton minter deploy --treasury deployer --content https://example.org/jetton.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return deployMinter(minterConfig)
	},
}

var minterMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint jettons to an owner",
	Long: `Mint jettons from the admin treasury to an owner. The owner's jetton wallet is deployed on the way.

Examples:
  jetton minter mint -m EQ... --to EQ... --amount 100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mintJettons(minterConfig)
	},
}

var minterDataCmd = &cobra.Command{
	Use:   "data",
	Short: "Show get_jetton_data of a minter",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showMinterData(minterConfig)
	},
}

func init() {
	rootCmd.AddCommand(minterCmd)
	minterCmd.AddCommand(minterDeployCmd, minterMintCmd, minterDataCmd)

	minterCmd.PersistentFlags().StringVarP(&minterConfig.Treasury, "treasury", "t", config.DefaultTreasuryName, "treasury paying for the message")
	minterCmd.PersistentFlags().StringVarP(&minterConfig.Minter, "minter", "m", "", "minter address")
	minterCmd.PersistentFlags().BoolVarP(&minterConfig.Verbose, "verbose", "v", false, "print every receipt")

	minterDeployCmd.Flags().StringVar(&minterConfig.Admin, "admin", "", "admin address (default: the treasury)")
	minterDeployCmd.Flags().StringVar(&minterConfig.ContentURI, "content", "", "off-chain metadata URI")
	minterDeployCmd.Flags().StringVar(&minterConfig.Value, "value", "0.05", "value attached to the deploy message")

	minterMintCmd.Flags().StringVar(&minterConfig.To, "to", "", "owner receiving the jettons (default: the treasury)")
	minterMintCmd.Flags().StringVarP(&minterConfig.Amount, "amount", "a", "", "jetton amount")
	minterMintCmd.Flags().StringVar(&minterConfig.ForwardTon, "forward-ton", "0", "value forwarded to the owner with the transfer notification")
	minterMintCmd.Flags().StringVar(&minterConfig.TotalTon, "total-ton", "0.05", "value sent to the owner's jetton wallet")
}

func deployMinter(cfg MinterConfig) error {
	env, err := openChain()
	if err != nil {
		return err
	}
	defer env.Close()

	via, err := env.treasury(cfg.Treasury)
	if err != nil {
		return err
	}
	admin, err := env.addressOrTreasury(cfg.Admin, cfg.Treasury)
	if err != nil {
		return err
	}
	content, err := offchainContent(cfg.ContentURI)
	if err != nil {
		return err
	}
	value, err := parseCoins("value", cfg.Value)
	if err != nil {
		return err
	}
	minter, err := client.NewJettonMinterFromConfig(env.ledger, client.JettonMinterConfig{Admin: admin, Content: content})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	res, err := minter.SendDeploy(ctx, via, value)
	if err != nil {
		return err
	}
	if err := reportSend(res, cfg.Verbose); err != nil {
		return err
	}
	return printJSON(map[string]string{"minter": env.friendly(minter.Address)})
}

func mintJettons(cfg MinterConfig) error {
	if cfg.Minter == "" {
		return errors.New("--minter is required")
	}
	if cfg.Amount == "" {
		return errors.New("--amount is required")
	}
	env, err := openChain()
	if err != nil {
		return err
	}
	defer env.Close()

	via, err := env.treasury(cfg.Treasury)
	if err != nil {
		return err
	}
	minterAddr, err := address.Parse(cfg.Minter)
	if err != nil {
		return err
	}
	to, err := env.addressOrTreasury(cfg.To, cfg.Treasury)
	if err != nil {
		return err
	}
	amount, err := parseCoins("amount", cfg.Amount)
	if err != nil {
		return err
	}
	forwardTon, err := parseCoins("forward-ton", cfg.ForwardTon)
	if err != nil {
		return err
	}
	totalTon, err := parseCoins("total-ton", cfg.TotalTon)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	minter := client.NewJettonMinterFromAddress(env.ledger, minterAddr)
	res, err := minter.SendMint(ctx, via, to, amount, forwardTon, totalTon)
	if err != nil {
		return err
	}
	return reportSend(res, cfg.Verbose)
}

func showMinterData(cfg MinterConfig) error {
	if cfg.Minter == "" {
		return errors.New("--minter is required")
	}
	env, err := openChain()
	if err != nil {
		return err
	}
	defer env.Close()

	minterAddr, err := address.Parse(cfg.Minter)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	data, err := client.NewJettonMinterFromAddress(env.ledger, minterAddr).GetJettonData(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"total_supply": utils.FromNano(data.TotalSupply),
		"mintable":     data.Mintable,
		"admin":        data.AdminAddress,
		"content":      data.Content,
		"wallet_code":  data.WalletCode.HashHex(),
	})
}
