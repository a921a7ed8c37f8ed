package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Strob0t/folio/internal/adapter/restclient"
	"github.com/Strob0t/folio/internal/config"
	"github.com/Strob0t/folio/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

// app carries the global flags and the state shared by subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	port       string
	logLevel   string
	dsn        string
	natsURL    string
	apiURL     string

	cfg       *config.Config
	closeLogs logger.Closer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "folio",
		Short: "Folio - portfolio section editor",
		Long: `Folio stores the editable sections of a portfolio site and lets an
operator create them from templates and edit their content.

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (FOLIO_*, DATABASE_URL, NATS_URL)
  3. Config file (folio.yaml)
  4. Defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.closeLogs != nil {
				a.closeLogs.Close()
			}
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultConfigFile, "config file")
	pf.StringVar(&a.port, "port", "", "HTTP port for serve")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&a.dsn, "dsn", "", "PostgreSQL connection string")
	pf.StringVar(&a.natsURL, "nats-url", "", "NATS server URL (empty disables events)")
	pf.StringVar(&a.apiURL, "api-url", "", "Folio server URL used by client commands")

	root.AddCommand(
		newServeCmd(a),
		newTemplatesCmd(a),
		newSectionsCmd(a),
		newCreateCmd(a),
		newEditCmd(a),
		newStylesCmd(a),
		newHashTokenCmd(a),
		newMigrateCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "folio", version)
			},
		},
	)
	return root
}

// setup loads the configuration and installs the default logger. Client
// commands log to stderr so their stdout stays machine readable.
func (a *app) setup(cmd *cobra.Command) error {
	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("port") {
		o.Port = &a.port
	}
	if flags.Changed("log-level") {
		o.LogLevel = &a.logLevel
	}
	if flags.Changed("dsn") {
		o.DSN = &a.dsn
	}
	if flags.Changed("nats-url") {
		o.NatsURL = &a.natsURL
	}
	if flags.Changed("api-url") {
		o.BaseURL = &a.apiURL
	}

	cfg, err := config.LoadWithOverrides(a.configPath, o)
	if err != nil {
		return err
	}
	a.cfg = cfg

	out := a.stderr
	if cmd.Name() == "serve" {
		out = a.stdout
	}
	log, closer := logger.NewWithWriter(cfg.Logging, out)
	slog.SetDefault(log)
	a.closeLogs = closer
	return nil
}

func (a *app) client() *restclient.Client {
	return restclient.NewClient(a.cfg.Client.BaseURL, a.cfg.Client.Token, a.cfg.Client.Timeout)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
