package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	agentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// ChatCmd is the interactive chat loop. It runs the approval callback
// ingress alongside the conversation so manager decisions arrive while the
// user is still typing.
type ChatCmd struct {
	NoCallback bool `help:"Do not start the embedded callback server"`
}

func (c *ChatCmd) Run(ctx *kong.Context, cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	// Log to a file so the conversation stays readable.
	logger := createFileLogger(cfg, cli.LogLevel)

	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	cctx := context.Background()

	if !c.NoCallback {
		if err := a.ingress.Start(cfg.Approvals.ListenAddr); err != nil {
			return fmt.Errorf("failed to start callback server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.ingress.Shutdown(shutdownCtx)
		}()
	}

	stop := make(chan struct{})
	defer close(stop)
	a.startSweeper(stop)

	defer a.session.Cleanup(cctx)

	fmt.Println(agentStyle.Render("Calendar assistant ready."))
	fmt.Println(dimStyle.Render("Type a message, 'reset' for a new conversation, 'exit' to quit."))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		c.showNotifications(a)

		fmt.Print(promptStyle.Render("You: "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			fmt.Println(dimStyle.Render("Goodbye."))
			return nil
		case line == "reset":
			resp := a.session.Reset(cctx)
			fmt.Println(noticeStyle.Render(resp.Message))
			continue
		}

		resp := a.session.ProcessMessage(cctx, line)
		if resp.Status == "error" {
			fmt.Println(errorStyle.Render("Error: " + resp.Message))
			if resp.ErrorDetails != "" {
				fmt.Println(dimStyle.Render(resp.ErrorDetails))
			}
			continue
		}
		fmt.Println(agentStyle.Render("Assistant: ") + resp.Message)
	}
}

// showNotifications prints any approval decisions that arrived since the
// last prompt.
func (c *ChatCmd) showNotifications(a *app) {
	notifications := a.tracker.Drain()
	if len(notifications) == 0 {
		return
	}
	for _, n := range notifications {
		fmt.Println(noticeStyle.Render("Notification: " + n.Message))
	}
	a.tracker.ClearShown()
}
