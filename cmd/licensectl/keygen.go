package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/licensekit/licensekit-go/keys"
	"github.com/licensekit/licensekit-go/paserk"
)

type keygenFlags struct {
	kind   string
	curve  string
	bits   int
	name   string
	outDir string
	format string
	force  bool
}

func newKeygenCmd(a *app) *cobra.Command {
	var f keygenFlags
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key or key pair",
		Long: `Generate a key or key pair and write it to the key directory.

Asymmetric kinds write <name>.key (private, mode 0600) and <name>.pub.
Symmetric keys write <name>.key only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.keygen(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.kind, "kind", "ed25519", "key kind: ed25519, x25519, symmetric, ecdsa or rsa")
	cmd.Flags().StringVar(&f.curve, "curve", "", "ECDSA curve: P-256, P-384 or P-521")
	cmd.Flags().IntVar(&f.bits, "bits", 0, "RSA modulus size")
	cmd.Flags().StringVar(&f.name, "name", "licensekit", "base file name")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "output directory (default $LICENSEKIT_KEY_DIR)")
	cmd.Flags().StringVar(&f.format, "format", "pem", "encoding: pem or paserk")
	cmd.Flags().BoolVar(&f.force, "force", false, "overwrite existing files")
	return cmd
}

func parseKind(s string) (keys.Kind, error) {
	for _, k := range []keys.Kind{keys.KindSymmetric, keys.KindEd25519, keys.KindX25519, keys.KindECDSA, keys.KindRSA} {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown key kind %q", s)
}

func (a *app) keygen(cmd *cobra.Command, f keygenFlags) error {
	kind, err := parseKind(f.kind)
	if err != nil {
		return err
	}
	if f.format != "pem" && f.format != "paserk" {
		return fmt.Errorf("unknown format %q", f.format)
	}

	dir := f.outDir
	if dir == "" {
		dir = a.env.KeyDir
	}
	if dir, err = a.expand(dir); err != nil {
		return err
	}

	key, err := keys.Generate(nil, kind, keys.Params{Curve: keys.Curve(strings.ToUpper(f.curve)), Bits: f.bits})
	if err != nil {
		return err
	}
	defer key.Dispose()

	privPath := filepath.Join(dir, f.name+privateKeyExt)
	if err := a.writeKey(privPath, key, f.format, privateKeyPerm, f.force); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), privPath)

	idKey := key
	if priv, ok := key.(*keys.PrivateKey); ok {
		pubPath := filepath.Join(dir, f.name+publicKeyExt)
		if err := a.writeKey(pubPath, priv.Public(), f.format, publicKeyPerm, f.force); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pubPath)
		idKey = priv.Public()
	}

	// Only v4 kinds have a PASERK identifier.
	if id, err := paserk.ID(idKey); err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	a.log.WithField("kind", kind).WithField("dir", dir).Info("key generated")
	return nil
}

func (a *app) writeKey(path string, key keys.Key, format string, perm os.FileMode, force bool) error {
	var (
		text string
		err  error
	)
	if format == "paserk" {
		text, err = paserk.Encode(key)
	} else {
		text, err = keys.ExportText(key)
	}
	if err != nil {
		return fmt.Errorf("encode %s key: %w", key.Kind(), err)
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return a.writeFile(path, []byte(text), perm, force)
}
