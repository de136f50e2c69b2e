package cmd

import (
	"context"
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/mezonai/jetton/address"
	"github.com/mezonai/jetton/cell"
	"github.com/mezonai/jetton/client"
	"github.com/mezonai/jetton/config"
	"github.com/mezonai/jetton/contract"
	"github.com/mezonai/jetton/message"
	"github.com/mezonai/jetton/utils"
)

type AccountConfig struct {
	PrivateKeyFile string
	Treasury       string
	To             string
	Value          string
	Mode           uint8
	Bounce         bool
	ValidFor       time.Duration
	Verbose        bool
}

var accountConfig AccountConfig

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Deploy and drive signature-gated accounts",
}

var accountDeployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the account controlled by a key, funded by a treasury",
	Long: `Examples:
  jetton keygen -o keys/alice.key
  jetton account deploy -f keys/alice.key --value 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return deployAccount(accountConfig)
	},
}

var accountSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and submit an external command relaying one message",
	Long: `Examples:
  # send 1 coin, paying forward fees separately
  jetton account send -f keys/alice.key --to EQ... --value 1 --mode 1

  # sweep the whole balance
  jetton account send -f keys/alice.key --to EQ... --value 0 --mode 128`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendFromAccount(accountConfig)
	},
}

var accountSeqnoCmd = &cobra.Command{
	Use:   "seqno",
	Short: "Show the seqno and balance of an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showAccount(accountConfig)
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountDeployCmd, accountSendCmd, accountSeqnoCmd)

	accountCmd.PersistentFlags().StringVarP(&accountConfig.PrivateKeyFile, "private-key-file", "f", "", "account private key file")
	accountCmd.PersistentFlags().BoolVarP(&accountConfig.Verbose, "verbose", "v", false, "print every receipt")

	accountDeployCmd.Flags().StringVarP(&accountConfig.Treasury, "treasury", "t", config.DefaultTreasuryName, "treasury paying for the deploy")
	accountDeployCmd.Flags().StringVar(&accountConfig.Value, "value", "1", "initial balance")

	accountSendCmd.Flags().StringVar(&accountConfig.To, "to", "", "destination address")
	accountSendCmd.Flags().StringVar(&accountConfig.Value, "value", "0", "value of the relayed message")
	accountSendCmd.Flags().Uint8Var(&accountConfig.Mode, "mode", uint8(contract.SendModePayFeesSeparately), "send mode of the relayed message")
	accountSendCmd.Flags().BoolVar(&accountConfig.Bounce, "bounce", true, "bounce the message back if the destination fails")
	accountSendCmd.Flags().DurationVar(&accountConfig.ValidFor, "valid-for", time.Minute, "validity window of the signed command")
}

func loadAccountKey(path string) (ed25519.PrivateKey, error) {
	if path == "" {
		return nil, errors.New("--private-key-file is required")
	}
	return config.LoadEd25519PrivKey(path)
}

func accountWallet(env *chainEnv, key ed25519.PrivateKey) (*client.Wallet, error) {
	return client.NewWalletFromConfig(env.ledger, client.WalletConfig{PublicKey: key.Public().(ed25519.PublicKey)})
}

func deployAccount(cfg AccountConfig) error {
	key, err := loadAccountKey(cfg.PrivateKeyFile)
	if err != nil {
		return err
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
	value, err := parseCoins("value", cfg.Value)
	if err != nil {
		return err
	}
	wallet, err := accountWallet(env, key)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	res, err := wallet.SendDeploy(ctx, via, value)
	if err != nil {
		return err
	}
	if err := reportSend(res, cfg.Verbose); err != nil {
		return err
	}
	return printJSON(map[string]string{"account": env.friendly(wallet.Address)})
}

func sendFromAccount(cfg AccountConfig) error {
	if cfg.To == "" {
		return errors.New("--to is required")
	}
	key, err := loadAccountKey(cfg.PrivateKeyFile)
	if err != nil {
		return err
	}
	env, err := openChain()
	if err != nil {
		return err
	}
	defer env.Close()

	to, err := address.Parse(cfg.To)
	if err != nil {
		return err
	}
	value, err := parseCoins("value", cfg.Value)
	if err != nil {
		return err
	}
	wallet, err := accountWallet(env, key)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	seqno, err := wallet.GetSeqno(ctx)
	if err != nil {
		return err
	}
	relay, err := (&message.Internal{Bounce: cfg.Bounce, Dest: to, Value: value, Body: cell.Empty()}).Cell()
	if err != nil {
		return err
	}
	validUntil := uint32(time.Now().Add(cfg.ValidFor).Unix())
	body, err := client.SignRequestWithMessage(validUntil, seqno, contract.SendMode(cfg.Mode), relay, key)
	if err != nil {
		return err
	}
	res, err := wallet.SendExternalSignedMessage(ctx, body)
	if err != nil {
		return err
	}
	return reportSend(res, cfg.Verbose)
}

func showAccount(cfg AccountConfig) error {
	key, err := loadAccountKey(cfg.PrivateKeyFile)
	if err != nil {
		return err
	}
	env, err := openChain()
	if err != nil {
		return err
	}
	defer env.Close()

	wallet, err := accountWallet(env, key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	seqno, err := wallet.GetSeqno(ctx)
	if err != nil {
		return err
	}
	balance, err := env.ledger.Balance(wallet.Address)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"account": env.friendly(wallet.Address),
		"seqno":   seqno,
		"balance": utils.FromNano(balance),
	})
}
