package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/licensekit/licensekit-go/keys"
	"github.com/licensekit/licensekit-go/paserk"
)

var errNoPassword = errors.New("no password: set " + envPrefix + "_PASSWORD or use --with")

type wrapFlags struct {
	with  string
	out   string
	force bool
}

func newWrapCmd(a *app) *cobra.Command {
	var f wrapFlags
	cmd := &cobra.Command{
		Use:   "wrap KEYFILE",
		Short: "Protect a key with a password or another symmetric key",
		Long: `Wrap a symmetric or Ed25519 private key for storage.

Without --with the key is wrapped under $LICENSEKIT_PASSWORD using Argon2id
(k4.local-pw, k4.secret-pw) with the LICENSEKIT_WRAP_* cost parameters.
With --with it is wrapped under the given symmetric key (k4.local-wrap,
k4.secret-wrap).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.readKey(args[0], keys.KindSymmetric, keys.KindEd25519)
			if err != nil {
				return err
			}
			defer key.Dispose()

			var wrapped string
			if f.with != "" {
				wk, err := a.readSymmetricKey(f.with)
				if err != nil {
					return err
				}
				defer wk.Dispose()
				wrapped, err = paserk.Wrap(key, wk, nil)
				if err != nil {
					return err
				}
			} else {
				if a.env.Password == "" {
					return errNoPassword
				}
				wrapped, err = paserk.PasswordWrap(key, []byte(a.env.Password), a.passwordParams(), nil)
				if err != nil {
					return err
				}
			}
			return a.emit(cmd, wrapped, f)
		},
	}
	cmd.Flags().StringVar(&f.with, "with", "", "symmetric wrapping key file")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write to this file instead of standard output")
	cmd.Flags().BoolVar(&f.force, "force", false, "overwrite the output file")
	return cmd
}

func newUnwrapCmd(a *app) *cobra.Command {
	var f wrapFlags
	cmd := &cobra.Command{
		Use:   "unwrap WRAPPED|@FILE|-",
		Short: "Recover a wrapped key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wrapped, err := a.readInput(args[0])
			if err != nil {
				return err
			}
			t, err := paserk.TypeOf(wrapped)
			if err != nil {
				return err
			}

			var key keys.Key
			switch t {
			case paserk.TypeLocalPW, paserk.TypeSecretPW:
				if a.env.Password == "" {
					return errNoPassword
				}
				key, err = paserk.PasswordUnwrapWithin(wrapped, []byte(a.env.Password), a.passwordLimit())
			case paserk.TypeLocalWrap, paserk.TypeSecretWrap:
				if f.with == "" {
					return fmt.Errorf("%s needs --with", strings.TrimSuffix(t.Header(), "."))
				}
				wk, werr := a.readSymmetricKey(f.with)
				if werr != nil {
					return werr
				}
				defer wk.Dispose()
				key, err = paserk.Unwrap(wrapped, wk)
			default:
				return fmt.Errorf("%s is not a wrapped key", strings.TrimSuffix(t.Header(), "."))
			}
			if err != nil {
				return err
			}
			defer key.Dispose()

			encoded, err := paserk.Encode(key)
			if err != nil {
				return err
			}
			return a.emit(cmd, encoded, f)
		},
	}
	cmd.Flags().StringVar(&f.with, "with", "", "symmetric wrapping key file")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write to this file instead of standard output")
	cmd.Flags().BoolVar(&f.force, "force", false, "overwrite the output file")
	return cmd
}

func (a *app) passwordParams() paserk.PasswordParams {
	return paserk.PasswordParams{
		Memory:      a.env.WrapMemoryKiB * 1024,
		Iterations:  a.env.WrapIterations,
		Parallelism: a.env.WrapParallelism,
	}
}

// passwordLimit accepts the configured wrapping cost even when it is above
// the library default.
func (a *app) passwordLimit() paserk.PasswordParams {
	limit, p := paserk.DefaultPasswordLimit, a.passwordParams()
	limit.Memory = max(limit.Memory, p.Memory)
	limit.Iterations = max(limit.Iterations, p.Iterations)
	limit.Parallelism = max(limit.Parallelism, p.Parallelism)
	return limit
}

func (a *app) emit(cmd *cobra.Command, s string, f wrapFlags) error {
	if f.out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	}
	path, err := a.expand(f.out)
	if err != nil {
		return err
	}
	if err := a.writeFile(path, []byte(s+"\n"), privateKeyPerm, f.force); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
