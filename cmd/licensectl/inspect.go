package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	licensekit "github.com/licensekit/licensekit-go"
	"github.com/licensekit/licensekit-go/paserk"
	"github.com/licensekit/licensekit-go/paseto"
)

// ed25519SignatureSize trails the message in a v4.public body.
const ed25519SignatureSize = 64

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect TOKEN|FILE|-",
		Short: "Show the structure of a token, key or license file without verifying it",
		Long: `Show the structure of a license token, PASERK key string or license
container. Nothing is verified: the output must not be trusted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.inspectInput(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch {
			case strings.HasPrefix(text, paseto.Version+"."):
				return inspectToken(w, text)
			case strings.HasPrefix(text, paserk.Version+"."):
				return inspectPASERK(w, text)
			default:
				return fmt.Errorf("%w: neither a %s token nor a %s key", licensekit.ErrMalformedToken, paseto.Version, paserk.Version)
			}
		},
	}
}

func (a *app) inspectInput(arg string) (string, error) {
	if arg == "-" {
		return a.readInput(arg)
	}
	path, err := a.expand(arg)
	if err != nil {
		return "", err
	}
	if ok, _ := afero.Exists(a.Fs, path); !ok {
		return strings.TrimSpace(arg), nil
	}
	data, err := afero.ReadFile(a.Fs, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", arg, err)
	}
	return unpack(data)
}

func inspectToken(w io.Writer, token string) error {
	raw, err := licensekit.ParseUnverified(token)
	if err != nil {
		return err
	}
	tok, err := paseto.Parse(raw.String())
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "header:  %s\n", tok.Header())
	fmt.Fprintf(w, "footer:  %s\n", printable(raw.Footer()))

	if raw.Purpose() != paseto.PurposePublic || len(tok.Body) < ed25519SignatureSize {
		fmt.Fprintln(w, "payload: (encrypted)")
		return nil
	}
	payload := tok.Body[:len(tok.Body)-ed25519SignatureSize]
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		fmt.Fprintf(w, "payload: %s\n", printable(payload))
		return nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "payload (UNVERIFIED):\n%s\n", out)
	return nil
}

func inspectPASERK(w io.Writer, s string) error {
	t, err := paserk.TypeOf(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "type:    %s\n", t.Header())
	if id, err := paserk.IDOf(s); err == nil {
		fmt.Fprintf(w, "id:      %s\n", id)
	}
	return nil
}

func printable(b []byte) string {
	if len(b) == 0 {
		return "(none)"
	}
	return string(b)
}
