package main

import (
	"fmt"

	"github.com/spf13/cobra"

	licensekit "github.com/licensekit/licensekit-go"
	"github.com/licensekit/licensekit-go/storage"
)

func (a *app) licenseDir() (storage.Dir, error) {
	return storage.NewDir(a.env.LicenseDir)
}

func newInstallCmd(a *app) *cobra.Command {
	var f verifyFlags
	var force bool
	cmd := &cobra.Command{
		Use:   "install TOKEN|@FILE|-",
		Short: "Verify a license and store it for its application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.readInput(args[0])
			if err != nil {
				return err
			}
			v, err := a.newValidator(f)
			if err != nil {
				return err
			}
			st := v.Validate(token)
			if !st.Valid() && !(force && st.State == licensekit.StateExpired) {
				return fmt.Errorf("license is %s: %s", st.State, detail(st))
			}

			dir, err := a.licenseDir()
			if err != nil {
				return err
			}
			file := dir.File(a.Fs, st.License.AppID(), storage.WithLogger(a.log))
			if err := licensekit.NewStore(file, v).Save(st.License); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), file.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&f.key, "key", "licensekit.pub", "Ed25519 public key file")
	cmd.Flags().StringVar(&f.legacyKey, "legacy-key", "", "ECDSA or RSA public key file for legacy envelopes")
	cmd.Flags().StringVar(&f.schema, "schema", "", "YAML license schema file")
	cmd.Flags().BoolVar(&force, "force", false, "store expired licenses too")
	return cmd
}

func newUninstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall APP_ID",
		Short: "Remove the stored license of an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.licenseDir()
			if err != nil {
				return err
			}
			file := dir.File(a.Fs, args[0], storage.WithLogger(a.log))
			if !file.Exists() {
				return fmt.Errorf("no license stored for %s", args[0])
			}
			if !file.Delete() {
				return fmt.Errorf("remove %s: %w", file.Path(), licensekit.ErrStorage)
			}
			fmt.Fprintln(cmd.OutOrStdout(), file.Path())
			return nil
		},
	}
}
