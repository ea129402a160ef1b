package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	licensekit "github.com/licensekit/licensekit-go"
	"github.com/licensekit/licensekit-go/keys"
	"github.com/licensekit/licensekit-go/schema"
)

// errInvalid is returned when at least one verified license is not active.
var errInvalid = errors.New("one or more licenses are not valid")

type verifyFlags struct {
	key       string
	legacyKey string
	schema    string
	footer    string
	assertion string
	app       string
}

type verifyResult struct {
	source string
	status licensekit.Status
}

func newVerifyCmd(a *app) *cobra.Command {
	var f verifyFlags
	cmd := &cobra.Command{
		Use:   "verify [TOKEN|FILE|-]...",
		Short: "Verify one or more licenses",
		Long: `Verify licenses given as tokens, license files or "-" for standard input
(one token per line). With --app, the license stored for that application in
$LICENSEKIT_LICENSE_DIR is verified as well.

The exit status is non-zero unless every license is active.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && f.app == "" {
				return errors.New("nothing to verify")
			}
			return a.verify(cmd, f, args)
		},
	}
	cmd.Flags().StringVar(&f.key, "key", "licensekit.pub", "Ed25519 public key file")
	cmd.Flags().StringVar(&f.legacyKey, "legacy-key", "", "ECDSA or RSA public key file for legacy envelopes")
	cmd.Flags().StringVar(&f.schema, "schema", "", "YAML license schema file")
	cmd.Flags().StringVar(&f.footer, "footer", "", "required token footer")
	cmd.Flags().StringVar(&f.assertion, "assertion", "", "implicit assertion the token was signed with")
	cmd.Flags().StringVar(&f.app, "app", "", "also verify the stored license of this application")
	return cmd
}

func (a *app) newValidator(f verifyFlags) (*licensekit.Validator, error) {
	opts := []licensekit.Option{licensekit.WithLogger(a.log)}

	var key *keys.PublicKey
	if f.key != "" {
		pub, err := a.readPublicKey(f.key, keys.KindEd25519)
		if err != nil {
			return nil, err
		}
		key = pub
	}
	if f.legacyKey != "" {
		pub, err := a.readPublicKey(f.legacyKey, keys.KindECDSA, keys.KindRSA)
		if err != nil {
			return nil, err
		}
		opts = append(opts, licensekit.WithLegacyKey(pub))
	}
	if f.schema != "" {
		path, err := a.expand(f.schema)
		if err != nil {
			return nil, err
		}
		s, err := schema.LoadFs(a.Fs, path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, licensekit.WithSchema(s))
	}
	if f.footer != "" {
		opts = append(opts, licensekit.WithFooter([]byte(f.footer)))
	}
	if f.assertion != "" {
		opts = append(opts, licensekit.WithImplicitAssertion([]byte(f.assertion)))
	}
	return licensekit.NewValidator(key, opts...)
}

func (a *app) verify(cmd *cobra.Command, f verifyFlags, args []string) error {
	v, err := a.newValidator(f)
	if err != nil {
		return err
	}

	inputs, err := a.collectTokens(args)
	if err != nil {
		return err
	}

	results := make([]verifyResult, len(inputs))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(a.env.Workers, 1))
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = verifyResult{source: in.source, status: v.Validate(in.token)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if f.app != "" {
		st, err := a.loadStored(f.app, v)
		if err != nil {
			return err
		}
		results = append(results, verifyResult{source: "app:" + f.app, status: st})
	}

	writeResults(cmd.OutOrStdout(), results)
	for _, r := range results {
		if !r.status.Valid() {
			return errInvalid
		}
	}
	return nil
}

type tokenInput struct {
	source string
	token  string
}

// collectTokens expands the arguments into tokens. An argument is a file
// when one exists at that path; license container files are unpacked.
func (a *app) collectTokens(args []string) ([]tokenInput, error) {
	var out []tokenInput
	for _, arg := range args {
		if arg == "-" {
			text, err := a.readInput(arg)
			if err != nil {
				return nil, err
			}
			for i, line := range strings.Split(text, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					out = append(out, tokenInput{source: fmt.Sprintf("stdin:%d", i+1), token: line})
				}
			}
			continue
		}

		path, err := a.expand(arg)
		if err != nil {
			return nil, err
		}
		if ok, _ := afero.Exists(a.Fs, path); !ok {
			out = append(out, tokenInput{source: fmt.Sprintf("arg:%d", len(out)+1), token: arg})
			continue
		}
		data, err := afero.ReadFile(a.Fs, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", arg, err)
		}
		token, err := unpack(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		out = append(out, tokenInput{source: arg, token: token})
	}
	return out, nil
}

// unpack returns the token or envelope inside a license container, or the
// file text when data is not a container.
func unpack(data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("LCSF")) {
		return strings.TrimSpace(string(data)), nil
	}
	c, err := licensekit.DecodeContainer(data)
	if err != nil {
		return "", err
	}
	return string(c.Data), nil
}

func (a *app) loadStored(appID string, v *licensekit.Validator) (licensekit.Status, error) {
	dir, err := a.licenseDir()
	if err != nil {
		return licensekit.Status{}, err
	}
	store := licensekit.NewStore(dir.File(a.Fs, appID), v)
	return store.Load(), nil
}

func writeResults(w io.Writer, results []verifyResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "SOURCE\tSTATE\tLICENSE\tEXPIRES\tDETAIL")
	for _, r := range results {
		id, expires := "-", "-"
		if l := r.status.License; l != nil {
			id = l.ID()
			expires = l.ExpiresAt().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.source, r.status.State, id, expires, detail(r.status))
	}
}

func detail(st licensekit.Status) string {
	if len(st.Errors) > 0 {
		fields := make([]string, 0, len(st.Errors))
		for f := range st.Errors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, f+": "+strings.Join(st.Errors[f], ", "))
		}
		return strings.Join(parts, "; ")
	}
	if st.Message != "" {
		return st.Message
	}
	if st.Err != nil {
		return st.Err.Error()
	}
	return "-"
}
