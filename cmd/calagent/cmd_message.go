package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
)

// MessageCmd sends a single message and prints the assistant's reply.
type MessageCmd struct {
	Text   []string `arg:"" help:"The message to send"`
	Thread string   `help:"Existing thread id to resume"`
	JSON   bool     `help:"Print the full response as JSON"`
}

func (c *MessageCmd) Run(ctx *kong.Context, cli *CLI) error {
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
	// Single-shot mode provisions a fresh agent; don't leave it behind.
	defer a.session.Cleanup(cctx)

	resp := a.session.ProcessMessageInThread(cctx, c.Thread, strings.Join(c.Text, " "))

	if c.JSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Println(resp.Message)
	}

	if resp.Status == "error" {
		return fmt.Errorf("turn failed: %s", resp.ErrorDetails)
	}
	return nil
}
