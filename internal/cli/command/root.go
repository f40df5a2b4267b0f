package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/config"
	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/cli/repl"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/infra/tlsroots"
	"github.com/yndnr/respkv/internal/server/redisserver"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "respkv-cli",
		Usage:     "respkv command-line client",
		UsageText: "respkv-cli [global options] [command [args...]]",
		Version:   buildinfo.String(),
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			StatusCommand(),
			ConfigCommand(),
		},
		Action: rootAction,
	}
}

// globalFlags returns the global CLI flags. None carries a default so that
// unset flags fall through to the config file.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file (default ~/.respkv/cli.yaml)",
			EnvVars: []string{"RESPKV_CLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server RESP address (e.g., 127.0.0.1:6379)",
		},
		&cli.StringFlag{
			Name:  "http",
			Usage: "server admin HTTP address (e.g., 127.0.0.1:9121)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "dial and request timeout",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: text, resp, json, yaml",
		},
		&cli.BoolFlag{
			Name:  "tls",
			Usage: "connect over TLS",
		},
		&cli.BoolFlag{
			Name:  "tls-insecure",
			Usage: "skip server certificate verification",
		},
		&cli.StringFlag{
			Name:  "tls-ca-file",
			Usage: "CA bundle used to verify the server",
		},
	}
}

// Settings loads the CLI configuration and applies the flags set on the
// command line.
func Settings(c *cli.Context) (*config.CLIConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load cli config: %w", err)
	}

	if c.IsSet("server") {
		cfg.Server = c.String("server")
	}
	if c.IsSet("http") {
		cfg.HTTP = c.String("http")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("tls") {
		cfg.TLS = c.Bool("tls")
	}
	if c.IsSet("tls-insecure") {
		cfg.TLSInsecure = c.Bool("tls-insecure")
	}
	if c.IsSet("tls-ca-file") {
		cfg.TLSCAFile = c.String("tls-ca-file")
	}
	return cfg, nil
}

// connOptions builds dial options from the settings.
func connOptions(cfg *config.CLIConfig) (connection.Options, error) {
	opts := connection.Options{Timeout: cfg.Timeout}
	if !cfg.TLS {
		return opts, nil
	}

	pool := tlsroots.NewPool()
	if cfg.TLSCAFile != "" {
		if err := pool.AddCertFile(cfg.TLSCAFile); err != nil {
			return opts, err
		}
	}
	opts.TLSConfig = pool.ClientConfig(cfg.TLSInsecure)
	return opts, nil
}

// rootAction runs the positional arguments as one command, or starts the
// REPL when there are none.
func rootAction(c *cli.Context) error {
	cfg, err := Settings(c)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	opts, err := connOptions(cfg)
	if err != nil {
		return err
	}

	mgr := connection.NewManager(cfg.Server, opts)
	defer mgr.Disconnect()
	formatter := output.NewFormatter(format)

	if c.Args().Present() {
		reply, err := mgr.Do(c.Context, c.Args().Slice()...)
		if err != nil {
			return err
		}
		return formatter.Format(c.App.Writer, reply)
	}

	r := repl.New(mgr, formatter, repl.NewCompleter(redisserver.CommandNames()),
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistory(repl.NewHistory(cfg.HistoryFile)),
	)
	return r.Run(c.Context)
}
