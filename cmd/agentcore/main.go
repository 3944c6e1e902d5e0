// Command agentcore is a thin local harness for exercising the
// orchestration core: run a single agentic-loop turn against a
// configured provider, or validate a configuration file. The core's true
// entry points are the in-process packages this binary wires together;
// this CLI exists for local exercising, not as the core's public
// contract.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI defines the command-line interface.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Validate ValidateCmd `cmd:"" help:"Validate a configuration file."`
	Run      RunCmd      `cmd:"" help:"Run a single agentic-loop turn against a configured provider."`

	Config    string `short:"c" help:"Path to config file (YAML)." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFormat string `help:"Log format (text or json)." default:"text"`
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("agentcore"),
		kong.Description("Agent orchestration core — local harness"),
		kong.UsageOnError(),
	)

	initLogger(cli.LogLevel, cli.LogFormat)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
