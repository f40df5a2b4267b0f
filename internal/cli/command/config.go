package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/infra/confloader"
	serverconfig "github.com/yndnr/respkv/internal/server/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration helpers",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective CLI configuration",
				Action: configShow,
			},
			{
				Name:      "test",
				Usage:     "Validate a server configuration file",
				ArgsUsage: "FILE",
				Action:    configTest,
			},
		},
	}
}

// settingsView is the printable form of the CLI settings.
type settingsView struct {
	Server      string `json:"server" yaml:"server"`
	HTTP        string `json:"http" yaml:"http"`
	Output      string `json:"output" yaml:"output"`
	Timeout     string `json:"timeout" yaml:"timeout"`
	TLS         bool   `json:"tls" yaml:"tls"`
	TLSInsecure bool   `json:"tls_insecure" yaml:"tls_insecure"`
	TLSCAFile   string `json:"tls_ca_file,omitempty" yaml:"tls_ca_file,omitempty"`
	HistoryFile string `json:"history_file" yaml:"history_file"`
}

func configShow(c *cli.Context) error {
	cfg, err := Settings(c)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	view := settingsView{
		Server:      cfg.Server,
		HTTP:        cfg.HTTP,
		Output:      cfg.Output,
		Timeout:     cfg.Timeout.String(),
		TLS:         cfg.TLS,
		TLSInsecure: cfg.TLSInsecure,
		TLSCAFile:   cfg.TLSCAFile,
		HistoryFile: cfg.HistoryFile,
	}

	table := &output.Table{}
	table.SetHeaders("KEY", "VALUE")
	table.AddRow("server", view.Server)
	table.AddRow("http", view.HTTP)
	table.AddRow("output", view.Output)
	table.AddRow("timeout", view.Timeout)
	table.AddRow("tls", strconv.FormatBool(view.TLS))
	table.AddRow("tls_insecure", strconv.FormatBool(view.TLSInsecure))
	table.AddRow("tls_ca_file", view.TLSCAFile)
	table.AddRow("history_file", view.HistoryFile)

	return output.Print(c.App.Writer, format, view, table)
}

func configTest(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("configuration file path required")
	}

	cfg := serverconfig.Default()
	if err := confloader.NewLoader(confloader.WithConfigFile(path)).Load(cfg); err != nil {
		return err
	}
	if err := serverconfig.Verify(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "configuration ok: %s\n", path)
	return nil
}
