package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	domainauth "github.com/k5602/Vulnera-Frontend-sub001/internal/domain/auth"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
)

type loginOptions struct {
	Email string
	SSO   bool
}

func parseLoginFlags(args []string) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "Email address for password login")
	fs.BoolVar(&opts.SSO, "sso", false, "Authenticate through the configured identity provider")

	if err := fs.Parse(args); err != nil {
		return loginOptions{}, err
	}
	if opts.SSO && opts.Email != "" {
		return loginOptions{}, errors.New("--email and --sso are mutually exclusive")
	}
	if !opts.SSO && opts.Email == "" {
		return loginOptions{}, errors.New("--email is required unless --sso is set")
	}
	return opts, nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args)
	if err != nil {
		return err
	}
	if opts.SSO {
		return loginSSO(cmdCtx)
	}
	return loginPassword(cmdCtx, opts.Email)
}

func loginPassword(cmdCtx *commandContext, email string) error {
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := cmdCtx.App.Auth.Login(cmdCtx.Ctx, domainauth.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return writef(os.Stdout, "Logged in as %s.\n", user.Email)
}

func loginSSO(cmdCtx *commandContext) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	flow, err := cmdCtx.App.Auth.BeginSSO(ctx)
	if err != nil {
		return fmt.Errorf("begin sso login: %w", err)
	}
	defer func() {
		if closeErr := flow.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("sso flow close failed", "error", closeErr)
		}
	}()

	if err := writef(os.Stdout, "Open this URL in your browser to sign in:\n\n  %s\n\nWaiting for the callback (Ctrl+C to abort)...\n", flow.AuthURL); err != nil {
		return fmt.Errorf("print sso url: %w", err)
	}

	user, err := flow.Complete(ctx)
	if err != nil {
		return fmt.Errorf("complete sso login: %w", err)
	}
	return writef(os.Stdout, "Logged in as %s.\n", user.Email)
}

// promptPassword reads a password without echo when stdin is a terminal.
// Piped input falls back to a plain line read so scripts keep working.
func promptPassword(prompt string) (string, error) {
	if err := write(os.Stderr, prompt); err != nil {
		return "", fmt.Errorf("print password prompt: %w", err)
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		if writeErr := writeln(os.Stderr); writeErr != nil {
			return "", fmt.Errorf("print prompt newline: %w", writeErr)
		}
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type registerOptions struct {
	Email string
	Name  string
}

func parseRegisterFlags(args []string) (registerOptions, error) {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts registerOptions
	fs.StringVar(&opts.Email, "email", "", "Email address for the new account")
	fs.StringVar(&opts.Name, "name", "", "Display name for the new account")

	if err := fs.Parse(args); err != nil {
		return registerOptions{}, err
	}
	if opts.Email == "" {
		return registerOptions{}, errors.New("--email is required")
	}
	return opts, nil
}

func runRegister(cmdCtx *commandContext, args []string) error {
	opts, err := parseRegisterFlags(args)
	if err != nil {
		return err
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirmed, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirmed {
		return errors.New("passwords do not match")
	}

	user, err := cmdCtx.App.Auth.Register(cmdCtx.Ctx, domainauth.RegisterRequest{
		Email:    opts.Email,
		Password: password,
		Name:     opts.Name,
	})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return writef(os.Stdout, "Registered and logged in as %s.\n", user.Email)
}

func runLogout(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := cmdCtx.App.Auth.Logout(cmdCtx.Ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return writeln(os.Stdout, "Logged out.")
}

func runWhoami(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print the user record as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := cmdCtx.App.Auth.CurrentUser(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("current user: %w", err)
	}

	if *asJSON {
		return printJSON(user)
	}
	if err := writef(os.Stdout, "Logged in as %s (id %d)\n", user.Email, user.ID); err != nil {
		return fmt.Errorf("print user identity: %w", err)
	}
	if user.Name != "" {
		if err := writef(os.Stdout, "Name:  %s\n", user.Name); err != nil {
			return fmt.Errorf("print user name: %w", err)
		}
	}
	if err := writef(os.Stdout, "Roles: %s\n", roleNames(user.Roles)); err != nil {
		return fmt.Errorf("print user roles: %w", err)
	}
	return nil
}

func roleNames(roles []domainauth.Role) string {
	if len(roles) == 0 {
		return "-"
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return strings.Join(names, ", ")
}

func runSessionGroup(cmdCtx *commandContext, args []string) error {
	return runGroup(cmdCtx, "session", map[string]command{
		"show": {
			name:        "show",
			description: "Show locally stored session state",
			run:         runSessionShow,
		},
		"clear": {
			name:        "clear",
			description: "Clear locally stored session state without calling the backend",
			run:         runSessionClear,
		},
	}, args)
}

func runSessionShow(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("session show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, user := cmdCtx.App.Store.Snapshot(cmdCtx.Ctx)

	authenticated := "no"
	if token != "" {
		authenticated = "yes"
	}
	if err := writef(os.Stdout, "Authenticated: %s\n", authenticated); err != nil {
		return fmt.Errorf("print session state: %w", err)
	}
	if user != nil {
		if err := writef(os.Stdout, "User:          %s (id %d)\n", user.Email, user.ID); err != nil {
			return fmt.Errorf("print session user: %w", err)
		}
	}
	if err := writef(os.Stdout, "Backend:       %s\n", cmdCtx.App.Config.Session.Backend); err != nil {
		return fmt.Errorf("print session backend: %w", err)
	}
	return nil
}

func runSessionClear(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("session clear", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmdCtx.App.Store.Clear(cmdCtx.Ctx)
	return writeln(os.Stdout, "Session state cleared.")
}

func runTokenGroup(cmdCtx *commandContext, args []string) error {
	return runGroup(cmdCtx, "token", map[string]command{
		"create": {
			name:        "create",
			description: "Create an API token (the secret is shown once)",
			run:         runTokenCreate,
		},
		"list": {
			name:        "list",
			description: "List API token metadata",
			run:         runTokenList,
		},
		"revoke": {
			name:        "revoke",
			description: "Revoke an API token by id",
			run:         runTokenRevoke,
		},
		"inspect": {
			name:        "inspect",
			description: "Decode a raw token's claims locally (no verification)",
			run:         runTokenInspect,
		},
	}, args)
}

type tokenCreateOptions struct {
	Name     string
	TTLHours int
}

func parseTokenCreateFlags(args []string) (tokenCreateOptions, error) {
	fs := flag.NewFlagSet("token create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts tokenCreateOptions
	fs.StringVar(&opts.Name, "name", "", "Human-readable token name")
	fs.IntVar(&opts.TTLHours, "ttl", 0, "Token lifetime in hours (0 means no expiry)")

	if err := fs.Parse(args); err != nil {
		return tokenCreateOptions{}, err
	}
	if opts.Name == "" {
		return tokenCreateOptions{}, errors.New("--name is required")
	}
	return opts, nil
}

func runTokenCreate(cmdCtx *commandContext, args []string) error {
	opts, err := parseTokenCreateFlags(args)
	if err != nil {
		return err
	}

	created, err := cmdCtx.App.Auth.CreateToken(cmdCtx.Ctx, model.CreateTokenRequest{
		Name:     opts.Name,
		TTLHours: opts.TTLHours,
	})
	if err != nil {
		return fmt.Errorf("create token: %w", err)
	}

	if err := writef(os.Stdout, "Token created. The secret below is shown once; store it now.\n\n  %s\n\n", created.Token); err != nil {
		return fmt.Errorf("print token secret: %w", err)
	}
	meta := created.APIToken
	if err := writef(os.Stdout, "ID:      %s\nName:    %s\nExpires: %s\n", meta.ID, meta.Name, formatTimePtr(meta.ExpiresAt)); err != nil {
		return fmt.Errorf("print token metadata: %w", err)
	}
	return nil
}

func runTokenList(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("token list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print tokens as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tokens, err := cmdCtx.App.Auth.ListTokens(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("list tokens: %w", err)
	}
	if *asJSON {
		return printJSON(tokens)
	}
	if len(tokens) == 0 {
		return writeln(os.Stdout, "No API tokens.")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "ID\tNAME\tPREFIX\tCREATED\tEXPIRES\tLAST USED"); err != nil {
		return fmt.Errorf("write token header: %w", err)
	}
	for _, t := range tokens {
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s",
			t.ID, t.Name, t.Prefix, formatTime(t.CreatedAt), formatTimePtr(t.ExpiresAt), formatTimePtr(t.LastUsed))
		if err := writeln(w, row); err != nil {
			return fmt.Errorf("write token row %q: %w", t.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush token table: %w", err)
	}
	return nil
}

func runTokenRevoke(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("token revoke", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id := fs.Arg(0)
	if id == "" {
		return errors.New("token id argument is required")
	}

	prompt := fmt.Sprintf("About to revoke token %s. Clients using it will stop working.", id)
	if err := confirm(prompt, *yes); err != nil {
		return err
	}
	if err := cmdCtx.App.Auth.RevokeToken(cmdCtx.Ctx, id); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return writef(os.Stdout, "Token %s revoked.\n", id)
}

func runTokenInspect(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("token inspect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	raw := fs.Arg(0)
	if raw == "" {
		return errors.New("token argument is required")
	}

	info, err := cmdCtx.App.Auth.InspectToken(raw)
	if err != nil {
		return fmt.Errorf("inspect token: %w", err)
	}

	expired := "no"
	if info.Expired {
		expired = "yes"
	}
	return writef(os.Stdout, "Subject: %s\nIssuer:  %s\nIssued:  %s\nExpires: %s\nExpired: %s\n",
		info.Subject, info.Issuer, formatTimePtr(info.IssuedAt), formatTimePtr(info.ExpiresAt), expired)
}
