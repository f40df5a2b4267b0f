package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/server/httpserver/handler"
)

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show server status from the admin HTTP endpoint",
		Action: statusAction,
	}
}

func statusAction(c *cli.Context) error {
	cfg, err := Settings(c)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	client := connection.NewHTTPClient(cfg.HTTP, cfg.Timeout)
	ctx, cancel := context.WithTimeout(c.Context, client.Timeout())
	defer cancel()

	resp, err := client.Get(ctx, "/admin/v1/status")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var st handler.StatusResponse
	if err := connection.ParseResponse(resp, &st); err != nil {
		return err
	}

	table := &output.Table{}
	table.SetHeaders("FIELD", "VALUE")
	table.AddRow("version", st.Version)
	table.AddRow("commit", st.Commit)
	table.AddRow("go_version", st.GoVersion)
	table.AddRow("uptime", (time.Duration(st.UptimeSeconds) * time.Second).String())
	table.AddRow("connected_clients", strconv.Itoa(st.ConnectedClients))
	table.AddRow("keys", strconv.Itoa(st.Keys))
	table.AddRow("keys.string", strconv.Itoa(st.KeysByType.Strings))
	table.AddRow("keys.hash", strconv.Itoa(st.KeysByType.Hashes))
	table.AddRow("keys.set", strconv.Itoa(st.KeysByType.Sets))

	return output.Print(c.App.Writer, format, st, table)
}
