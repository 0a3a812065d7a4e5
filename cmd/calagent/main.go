package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// CLI represents the main CLI structure
type CLI struct {
	Config   string `short:"c" help:"Path to a config file (skips discovery)"`
	LogLevel string `default:"warn" help:"Log level"`
	Endpoint string `env:"AGENTS_ENDPOINT" help:"Agents backend endpoint"`
	APIKey   string `env:"AGENTS_API_KEY" help:"Agents backend API key"`

	Message  MessageCmd  `cmd:"" help:"Send a single message and print the reply"`
	Session  SessionCmd  `cmd:"" help:"Run one session action (message, reset, cleanup)"`
	Chat     ChatCmd     `cmd:"" help:"Interactive chat with approval notifications"`
	Callback CallbackCmd `cmd:"" help:"Run the approval callback server standalone"`
}

func main() {
	// A .env in the working directory is a dev convenience; absence is fine.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("calagent"),
		kong.Description("Calendar and leave assistant backed by the agents service"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
