package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/elee1766/calagent/src/session"
)

// SessionCmd runs one named session action and prints the structured
// response as JSON.
type SessionCmd struct {
	Action  string `help:"Session action" enum:"message,reset,cleanup" default:"message"`
	Message string `help:"Message text for the message action"`
	Thread  string `help:"Existing thread id to resume for the message action"`
}

func (c *SessionCmd) Run(ctx *kong.Context, cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	cctx := context.Background()
	resp, err := a.session.Perform(cctx, c.Action, c.Message, c.Thread)
	if err != nil {
		return err
	}
	if c.Action == session.ActionMessage {
		defer a.session.Cleanup(cctx)
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
