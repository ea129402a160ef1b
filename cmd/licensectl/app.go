package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// envPrefix prefixes every environment variable read by licensectl.
const envPrefix = "LICENSEKIT"

// Env is the environment configuration, read after an optional .env file.
type Env struct {
	KeyDir     string `envconfig:"KEY_DIR" default:"~/.licensekit/keys"`
	LicenseDir string `envconfig:"LICENSE_DIR" default:"~/.licensekit"`
	Issuer     string `envconfig:"ISSUER"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"text"`
	Workers    int    `envconfig:"WORKERS" default:"4"`

	// Password-based key wrapping. Memory is in KiB.
	Password        string `envconfig:"PASSWORD"`
	WrapMemoryKiB   uint64 `envconfig:"WRAP_MEMORY_KIB" default:"65536"`
	WrapIterations  uint32 `envconfig:"WRAP_ITERATIONS" default:"2"`
	WrapParallelism uint32 `envconfig:"WRAP_PARALLELISM" default:"1"`
}

// Config holds the process resources the commands use, so tests can swap
// them out.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Fs     afero.Fs
}

// DefaultConfig returns a Config using the process's standard streams and
// the OS filesystem.
func DefaultConfig() Config {
	return Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Fs:     afero.NewOsFs(),
	}
}

type app struct {
	Config
	env     Env
	log     *log.Logger
	envFile string
}

func newApp(cfg Config) *app {
	l := log.New()
	l.SetOutput(cfg.Stderr)
	return &app{Config: cfg, log: l}
}

// load reads the .env file, the environment and sets up logging.
func (a *app) load() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}
	if err := envconfig.Process(envPrefix, &a.env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	level, err := log.ParseLevel(a.env.LogLevel)
	if err != nil {
		return fmt.Errorf("%s_LOG_LEVEL: %w", envPrefix, err)
	}
	a.log.SetLevel(level)
	switch a.env.LogFormat {
	case "json":
		a.log.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		a.log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	default:
		return fmt.Errorf("%s_LOG_FORMAT: unknown format %q", envPrefix, a.env.LogFormat)
	}
	return nil
}

func (a *app) expand(path string) (string, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return p, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "licensectl",
		Short:         "Issue, verify and inspect offline software licenses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.load()
		},
	}
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file read before the environment")

	root.AddCommand(
		newKeygenCmd(a),
		newIssueCmd(a),
		newVerifyCmd(a),
		newInstallCmd(a),
		newUninstallCmd(a),
		newSealCmd(a),
		newUnsealCmd(a),
		newInspectCmd(a),
		newWrapCmd(a),
		newUnwrapCmd(a),
	)
	return root
}

func run(args []string, cfg Config) error {
	root := newRootCmd(newApp(cfg))
	root.SetArgs(args)
	return root.Execute()
}
