// Command vulnera is the terminal client for the Vulnera scanning backend.
// It drives the same session, scan, and organization APIs the web console
// uses, keeping session state on disk (or in Redis) between invocations.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/bootstrap"
)

// buildVersion is stamped at release time via -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	App    *bootstrap.App
}

func main() {
	logger := bootstrap.InitLogger(slog.LevelInfo)

	contextName, args := splitContextFlag(os.Args[1:])
	if len(args) < 1 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := args[0]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig(contextName)
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	logger = bootstrap.InitLogger(cfg.Observability.Level())

	app, err := bootstrap.BuildApp(bootstrap.AppOptions{Config: cfg, Logger: logger})
	if err != nil {
		logger.ErrorContext(context.Background(), "build client", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal startup failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		App:    app,
	}
	runErr := cmd.run(cmdCtx, args[1:])

	// Close before exiting so the session mirror flushes even on failure.
	if closeErr := app.Close(); closeErr != nil {
		logger.Warn("client close failed", "error", closeErr)
	}
	if runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

// splitContextFlag strips the global --context flag from the argument list
// before command dispatch. No subcommand defines a flag of the same name, so
// the flag is honored anywhere on the line.
func splitContextFlag(args []string) (string, []string) {
	contextName := ""
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--context" || arg == "-context":
			if i+1 < len(args) {
				contextName = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--context="):
			contextName = strings.TrimPrefix(arg, "--context=")
		case strings.HasPrefix(arg, "-context="):
			contextName = strings.TrimPrefix(arg, "-context=")
		default:
			rest = append(rest, arg)
		}
	}
	return contextName, rest
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Authenticate with the backend (password or --sso)",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "End the backend session and clear local state",
			run:         runLogout,
		},
		"register": {
			name:        "register",
			description: "Create an account and start a session",
			run:         runRegister,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the currently authenticated user",
			run:         runWhoami,
		},
		"session": {
			name:        "session",
			description: "Inspect or clear locally stored session state",
			run:         runSessionGroup,
		},
		"token": {
			name:        "token",
			description: "Manage long-lived API tokens",
			run:         runTokenGroup,
		},
		"scan": {
			name:        "scan",
			description: "Submit and inspect vulnerability scans",
			run:         runScanGroup,
		},
		"org": {
			name:        "org",
			description: "Manage organizations and their members",
			run:         runOrgGroup,
		},
		"enrich": {
			name:        "enrich",
			description: "Look up CVE enrichment records",
			run:         runEnrich,
		},
		"explain": {
			name:        "explain",
			description: "Ask the LLM gateway about a finding",
			run:         runExplain,
		},
		"patch": {
			name:        "patch",
			description: "Bump vulnerable dependency pins from a scan report",
			run:         runPatch,
		},
		"health": {
			name:        "health",
			description: "Probe backend health",
			run:         runHealth,
		},
		"version": {
			name:        "version",
			description: "Show client and backend versions",
			run:         runVersion,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: vulnera [--context <name>] <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(os.Stdout, "  %-12s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

// runGroup dispatches two-level commands such as "scan submit".
func runGroup(cmdCtx *commandContext, groupName string, subs map[string]command, args []string) error {
	if len(args) < 1 {
		if err := printGroupUsage(groupName, subs); err != nil {
			return err
		}
		return fmt.Errorf("%s: subcommand is required", groupName)
	}
	sub, ok := subs[args[0]]
	if !ok {
		if err := printGroupUsage(groupName, subs); err != nil {
			return err
		}
		return fmt.Errorf("%s: unknown subcommand %q", groupName, args[0])
	}
	return sub.run(cmdCtx, args[1:])
}

func printGroupUsage(groupName string, subs map[string]command) error {
	if err := writef(os.Stderr, "Usage: vulnera %s <subcommand> [flags]\n\n", groupName); err != nil {
		return err
	}
	if err := writef(os.Stderr, "Available subcommands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(subs))
	for name := range subs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(os.Stderr, "  %-16s %s\n", name, subs[name].description); err != nil {
			return err
		}
	}
	return nil
}

func runHealth(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print the health probe response as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	status, err := cmdCtx.App.Health.Ping(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("health probe: %w", err)
	}

	if *asJSON {
		if err := printJSON(status); err != nil {
			return err
		}
	} else {
		if err := writef(os.Stdout, "Status: %s\n", status.Status); err != nil {
			return fmt.Errorf("print health status: %w", err)
		}
		if len(status.Checks) > 0 {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			names := make([]string, 0, len(status.Checks))
			for name := range status.Checks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if err := writef(w, "  %s\t%s\n", name, status.Checks[name]); err != nil {
					return fmt.Errorf("write health check row %q: %w", name, err)
				}
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("flush health checks: %w", err)
			}
		}
	}

	if !status.Healthy() {
		return fmt.Errorf("backend reports status %q", status.Status)
	}
	return nil
}

func runVersion(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print versions as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	info, err := cmdCtx.App.Health.Version(cmdCtx.Ctx)
	if err != nil {
		if writeErr := writef(os.Stdout, "Client: %s\n", buildVersion); writeErr != nil {
			return fmt.Errorf("print client version: %w", writeErr)
		}
		return fmt.Errorf("backend version: %w", err)
	}

	if *asJSON {
		return printJSON(map[string]any{
			"client":  buildVersion,
			"backend": info,
		})
	}

	if err := writef(os.Stdout, "Client:  %s\n", buildVersion); err != nil {
		return fmt.Errorf("print client version: %w", err)
	}
	backend := info.Version
	if info.Commit != "" {
		backend += " (" + info.Commit + ")"
	}
	if err := writef(os.Stdout, "Backend: %s\n", backend); err != nil {
		return fmt.Errorf("print backend version: %w", err)
	}
	if info.BuiltAt != "" {
		if err := writef(os.Stdout, "Built:   %s\n", info.BuiltAt); err != nil {
			return fmt.Errorf("print backend build time: %w", err)
		}
	}
	return nil
}

// confirm asks for interactive approval before a destructive action. A yes
// flag skips the prompt for scripted use.
func confirm(prompt string, yes bool) error {
	if yes {
		return nil
	}
	if err := writef(os.Stdout, "%s\nContinue? [y/N]: ", prompt); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	reader := bufio.NewReader(os.Stdin)
	resp, err := reader.ReadString('\n')
	if err != nil {
		if writeErr := writef(os.Stdout, "\nFailed to read confirmation input: %v\n", err); writeErr != nil {
			return fmt.Errorf("aborted by user: report write failed: %w", writeErr)
		}
		return errors.New("aborted by user")
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	if resp == "y" || resp == "yes" {
		return nil
	}
	return errors.New("aborted by user")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func write(w io.Writer, args ...any) error {
	_, err := fmt.Fprint(w, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, args...)
	return err
}
