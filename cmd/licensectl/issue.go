package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	licensekit "github.com/licensekit/licensekit-go"
	"github.com/licensekit/licensekit-go/keys"
)

type issueFlags struct {
	key       string
	subject   string
	appID     string
	typ       string
	expires   string
	notBefore string
	trial     bool
	device    string
	features  []string
	metadata  []string
	footer    string
	assertion string
	out       string
	force     bool
}

func newIssueCmd(a *app) *cobra.Command {
	var f issueFlags
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed license token",
		Long: `Issue a signed v4.public license token.

Feature and metadata values are given as key=value. Values that parse as
JSON (numbers, booleans, arrays, objects, quoted strings) keep their JSON
type; anything else is a string.`,
		Example: `  licensectl issue --key issuer.key --app-id com.example.app --type pro \
    --expires 8760h --feature seats=10 --feature export=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.issue(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.key, "key", "licensekit.key", "Ed25519 private key file")
	cmd.Flags().StringVar(&f.subject, "sub", "", "license id (default: random UUID)")
	cmd.Flags().StringVar(&f.appID, "app-id", "", "application identifier")
	cmd.Flags().StringVar(&f.typ, "type", "standard", "license type")
	cmd.Flags().StringVar(&f.expires, "expires", "8760h", "expiry as RFC 3339 time or duration from now")
	cmd.Flags().StringVar(&f.notBefore, "not-before", "", "start of validity as RFC 3339 time or duration from now")
	cmd.Flags().BoolVar(&f.trial, "trial", false, "mark the license as a trial")
	cmd.Flags().StringVar(&f.device, "device", "", "bind the license to a device identifier")
	cmd.Flags().StringArrayVar(&f.features, "feature", nil, "feature as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&f.metadata, "meta", nil, "metadata as key=value (repeatable)")
	cmd.Flags().StringVar(&f.footer, "footer", "", "token footer")
	cmd.Flags().StringVar(&f.assertion, "assertion", "", "implicit assertion bound to the signature")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write a license container to this file instead of printing the token")
	cmd.Flags().BoolVar(&f.force, "force", false, "overwrite the output file")
	_ = cmd.MarkFlagRequired("app-id")
	return cmd
}

func (a *app) issue(cmd *cobra.Command, f issueFlags) error {
	now := time.Now().UTC()
	claims, err := f.claims(now)
	if err != nil {
		return err
	}

	priv, err := a.readPrivateKey(f.key, keys.KindEd25519)
	if err != nil {
		return err
	}
	defer priv.Dispose()

	opts := []licensekit.Option{licensekit.WithLogger(a.log)}
	if a.env.Issuer != "" {
		opts = append(opts, licensekit.WithIssuerName(a.env.Issuer))
	}
	if f.footer != "" {
		opts = append(opts, licensekit.WithFooter([]byte(f.footer)))
	}
	if f.assertion != "" {
		opts = append(opts, licensekit.WithImplicitAssertion([]byte(f.assertion)))
	}

	iss, err := licensekit.NewIssuer(priv, opts...)
	if err != nil {
		return err
	}
	token, err := iss.Issue(claims)
	if err != nil {
		return err
	}

	if f.out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	}
	data, err := licensekit.EncodeContainer(licensekit.ContainerToken, []byte(token))
	if err != nil {
		return err
	}
	path, err := a.expand(f.out)
	if err != nil {
		return err
	}
	if err := a.writeFile(path, data, privateKeyPerm, f.force); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func (f issueFlags) claims(now time.Time) (licensekit.Claims, error) {
	typ, err := licensekit.ParseType(f.typ)
	if err != nil {
		return licensekit.Claims{}, err
	}
	exp, err := parseTime(f.expires, now)
	if err != nil {
		return licensekit.Claims{}, fmt.Errorf("--expires: %w", err)
	}
	var nbf time.Time
	if f.notBefore != "" {
		if nbf, err = parseTime(f.notBefore, now); err != nil {
			return licensekit.Claims{}, fmt.Errorf("--not-before: %w", err)
		}
	}
	features, err := parseValues(f.features)
	if err != nil {
		return licensekit.Claims{}, fmt.Errorf("--feature: %w", err)
	}
	metadata, err := parseValues(f.metadata)
	if err != nil {
		return licensekit.Claims{}, fmt.Errorf("--meta: %w", err)
	}

	return licensekit.Claims{
		Subject:   f.subject,
		AppID:     f.appID,
		Type:      typ,
		ExpiresAt: exp,
		NotBefore: nbf,
		Trial:     f.trial,
		Device:    f.device,
		Features:  features,
		Metadata:  metadata,
	}, nil
}

// parseTime accepts an RFC 3339 timestamp or a duration relative to now.
func parseTime(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither an RFC 3339 time nor a duration", s)
	}
	return now.Add(d).Truncate(time.Second), nil
}

// parseValues turns key=value pairs into a map, decoding JSON values.
func parseValues(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%q is not key=value", p)
		}
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			out[k] = decoded
		} else {
			out[k] = v
		}
	}
	return out, nil
}
