package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	licensekit "github.com/licensekit/licensekit-go"
	"github.com/licensekit/licensekit-go/keys"
)

func newSealCmd(a *app) *cobra.Command {
	var recipient string
	cmd := &cobra.Command{
		Use:   "seal TOKEN|@FILE|-",
		Short: "Encrypt a signed license for one recipient",
		Long: `Encrypt a signed license token to the recipient's Ed25519 public key.
The result is a v4.local token carrying the sealed content key in its footer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.readInput(args[0])
			if err != nil {
				return err
			}
			pub, err := a.readPublicKey(recipient, keys.KindEd25519)
			if err != nil {
				return err
			}
			sealed, err := licensekit.SealedEncrypt(token, pub, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}
	cmd.Flags().StringVar(&recipient, "recipient", "", "recipient Ed25519 public key file")
	_ = cmd.MarkFlagRequired("recipient")
	return cmd
}

func newUnsealCmd(a *app) *cobra.Command {
	var key, issuer string
	cmd := &cobra.Command{
		Use:   "unseal TOKEN|@FILE|-",
		Short: "Decrypt a sealed license and verify it",
		Long: `Decrypt a sealed license with the recipient's private key, verify the
inner token against the issuer key and print its claims as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.readInput(args[0])
			if err != nil {
				return err
			}
			priv, err := a.readPrivateKey(key, keys.KindEd25519)
			if err != nil {
				return err
			}
			defer priv.Dispose()
			pub, err := a.readPublicKey(issuer, keys.KindEd25519)
			if err != nil {
				return err
			}

			lic, err := licensekit.OpenSealed(token, priv, pub)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(lic.Claims())
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "recipient Ed25519 private key file")
	cmd.Flags().StringVar(&issuer, "issuer", "licensekit.pub", "issuer Ed25519 public key file")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
