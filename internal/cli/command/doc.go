// Package command provides the respkv-cli command definitions.
//
// It uses urfave/cli/v2 for command parsing:
//
//   - root.go: global flags, settings resolution, single-command and REPL mode
//   - status.go: server status from the admin HTTP endpoint
//   - config.go: effective CLI configuration
//
// Settings are resolved in order: defaults, the CLI config file,
// RESPKV_CLI_* environment variables, then command-line flags.
package command
