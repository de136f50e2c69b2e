package cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/mezonai/jetton/account"
	"github.com/mezonai/jetton/common"
	"github.com/mezonai/jetton/config"
	"github.com/mezonai/jetton/logx"
)

var (
	keygenOut       string
	keygenWorkchain int32
	keygenForce     bool
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an Ed25519 key controlling an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return generateKey()
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().StringVarP(&keygenOut, "out", "o", "privkey.txt", "file the private key is written to")
	keygenCmd.Flags().Int32Var(&keygenWorkchain, "workchain", 0, "workchain of the printed account address")
	keygenCmd.Flags().BoolVar(&keygenForce, "force", false, "overwrite an existing key file")
}

func generateKey() error {
	if _, err := os.Stat(keygenOut); err == nil && !keygenForce {
		return errors.New(keygenOut + " already exists, use --force to overwrite")
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}
	if err := config.SaveEd25519PrivKey(keygenOut, priv); err != nil {
		return err
	}
	logx.Info("KEYGEN", "private key written to ", keygenOut)

	si, err := account.StateInit(pub)
	if err != nil {
		return err
	}
	addr, err := si.Address(keygenWorkchain)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"public_key": common.EncodeKey(pub),
		"account":    addr.ToFriendly(true, false),
		"raw":        addr.String(),
	})
}
