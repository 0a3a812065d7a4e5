package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/elee1766/calagent/src/aisdk"
	"github.com/elee1766/calagent/src/approval"
	"github.com/elee1766/calagent/src/calagent"
	"github.com/elee1766/calagent/src/calagent/toolsutil"
	"github.com/elee1766/calagent/src/config"
	"github.com/elee1766/calagent/src/flexhr"
	"github.com/elee1766/calagent/src/foundry"
	"github.com/elee1766/calagent/src/graph"
	"github.com/elee1766/calagent/src/logicapp"
	"github.com/elee1766/calagent/src/runner"
	"github.com/elee1766/calagent/src/session"
	"github.com/elee1766/calagent/src/sessionlog"
)

const sessionLogMaxLines = 1000

// app bundles the wired-up pieces a command needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	tracker *approval.Tracker
	session *session.Manager
	ingress *approval.Server
}

// loadConfig resolves the effective configuration: discovered (or explicit)
// config files merged with environment overrides, then the CLI flags on top.
func loadConfig(cli *CLI) (*config.Config, error) {
	precedence := config.GetConfigPaths()
	if cli.Config != "" {
		precedence = config.ConfigPrecedence{
			UserConfig:        cli.Config,
			EnvironmentPrefix: precedence.EnvironmentPrefix,
		}
	}

	cfg, err := config.NewLoader(precedence).Load()
	if err != nil {
		return nil, err
	}

	if cli.Endpoint != "" {
		cfg.Backend.Endpoint = cli.Endpoint
	}
	if cli.APIKey != "" {
		cfg.Backend.APIKey = cli.APIKey
	}
	return cfg, nil
}

// buildApp wires the backends, toolbox, runner, and session manager from the
// configuration.
func buildApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	if cfg.Backend.Endpoint == "" {
		return nil, fmt.Errorf("agents backend endpoint is not configured")
	}
	apiKey := cfg.Backend.ResolveAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("agents backend API key is not configured")
	}

	toolsutil.SetLogger(logger)

	service := foundry.NewClient(aisdk.ClientConfig{
		Endpoint:   cfg.Backend.Endpoint,
		APIKey:     apiKey,
		APIVersion: cfg.Backend.APIVersion,
		RetryCount: cfg.Backend.MaxRetries,
		RetryDelay: cfg.Backend.RetryDelay,
		Logger:     logger,
	})

	tracker := approval.NewTracker(approval.Config{
		CallbackBaseURL: cfg.Approvals.CallbackBaseURL,
		Retention:       time.Duration(cfg.Approvals.RetentionMinutes) * time.Minute,
		Logger:          logger,
	})

	backends := calagent.Backends{
		Tracker:            tracker,
		DefaultUserUPN:     cfg.Calendar.DefaultUser,
		DefaultEmployeeNum: cfg.HR.DefaultEmployeeNum,
	}

	if cfg.Calendar.Enabled {
		backends.Calendar = graph.NewClient(graph.Config{
			BaseURL: cfg.Calendar.BaseURL,
			TokenSource: graph.NewClientCredentialTokenSource(graph.ClientCredentialConfig{
				TenantID:     cfg.Calendar.TenantID,
				ClientID:     cfg.Calendar.ClientID,
				ClientSecret: cfg.Calendar.ResolveClientSecret(),
			}),
			DefaultUser:     cfg.Calendar.DefaultUser,
			DefaultTimezone: cfg.Calendar.DefaultTimezone,
			Logger:          logger,
		})
	}

	if cfg.HR.Enabled {
		backends.HR = flexhr.NewClient(flexhr.Config{
			BaseURL: cfg.HR.BaseURL,
			Credentials: map[string]flexhr.Credentials{
				flexhr.RoleSubmitter: {
					Login:    cfg.HR.Submitter.Login,
					Password: cfg.HR.Submitter.ResolvePassword(),
				},
				flexhr.RoleApprover: {
					Login:    cfg.HR.Approver.Login,
					Password: cfg.HR.Approver.ResolvePassword(),
				},
			},
			Logger: logger,
		})
	}

	if cfg.Approvals.WorkflowURL != "" {
		backends.Notifier = logicapp.NewClient(logicapp.Config{
			URL:    cfg.Approvals.WorkflowURL,
			Logger: logger,
		})
	}

	toolbox, err := calagent.BuildToolbox(backends)
	if err != nil {
		return nil, fmt.Errorf("failed to build toolset: %w", err)
	}

	instructions := cfg.Agent.Instructions
	if instructions == "" {
		instructions = calagent.BuildSystemPrompt(calagent.SystemPromptConfig{
			IncludeHR: cfg.HR.Enabled,
		})
	}
	agentName := cfg.Agent.Name
	if agentName == "" {
		agentName = calagent.DefaultAgentName
	}
	model := cfg.Agent.Model
	if model == "" {
		model = calagent.DefaultModel
	}

	turnRunner := runner.NewRunner(runner.Config{
		Service:       service,
		Toolbox:       toolbox,
		Logger:        logger,
		MaxIterations: cfg.Runner.MaxIterations,
		PollInterval:  cfg.Runner.PollInterval,
		SubmitPause:   cfg.Runner.SubmitPause,
	})

	sessionDir := cfg.Logging.SessionDir
	if sessionDir == "" {
		sessionDir = config.GetDefaultSessionLogDir()
	}
	audit, err := sessionlog.New(afero.NewOsFs(), sessionDir, sessionLogMaxLines)
	if err != nil {
		logger.Warn("session audit log unavailable", "dir", sessionDir, "error", err)
		audit = nil
	}

	mgr := session.NewManager(session.Config{
		Service:      service,
		Runner:       turnRunner,
		AgentName:    agentName,
		Model:        model,
		Instructions: instructions,
		Tools:        toolbox.Definitions(),
		Logger:       logger,
		Audit:        audit,
	})

	return &app{
		cfg:     cfg,
		logger:  logger,
		tracker: tracker,
		session: mgr,
		ingress: approval.NewServer(tracker, logger),
	}, nil
}

// startSweeper expires stale pending approvals in the background until stop
// is closed.
func (a *app) startSweeper(stop <-chan struct{}) {
	ttl := time.Duration(a.cfg.Approvals.PendingTTLMinutes) * time.Minute
	if ttl <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if n := a.tracker.SweepPending(ttl); n > 0 {
					a.logger.Info("expired stale approvals", "count", n)
				}
			}
		}
	}()
}
