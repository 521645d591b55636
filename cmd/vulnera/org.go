package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
)

func runOrgGroup(cmdCtx *commandContext, args []string) error {
	return runGroup(cmdCtx, "org", map[string]command{
		"list": {
			name:        "list",
			description: "List organizations the user belongs to",
			run:         runOrgList,
		},
		"show": {
			name:        "show",
			description: "Show one organization",
			run:         runOrgShow,
		},
		"create": {
			name:        "create",
			description: "Create an organization",
			run:         runOrgCreate,
		},
		"update": {
			name:        "update",
			description: "Rename an organization or change its plan",
			run:         runOrgUpdate,
		},
		"delete": {
			name:        "delete",
			description: "Delete an organization and all its scans",
			run:         runOrgDelete,
		},
		"members": {
			name:        "members",
			description: "List an organization's members",
			run:         runOrgMembers,
		},
		"invite": {
			name:        "invite",
			description: "Invite a member by email",
			run:         runOrgInvite,
		},
		"remove-member": {
			name:        "remove-member",
			description: "Remove a member from an organization",
			run:         runOrgRemoveMember,
		},
	}, args)
}

func runOrgList(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("org list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print organizations as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	orgs, err := cmdCtx.App.Organizations.List(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}
	if *asJSON {
		return printJSON(orgs)
	}
	if len(orgs) == 0 {
		return writeln(os.Stdout, "No organizations.")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "ID\tSLUG\tNAME\tPLAN\tCREATED"); err != nil {
		return fmt.Errorf("write organization header: %w", err)
	}
	for _, org := range orgs {
		plan := org.Plan
		if plan == "" {
			plan = "-"
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", org.ID, org.Slug, org.Name, plan, formatTime(org.CreatedAt))
		if err := writeln(w, row); err != nil {
			return fmt.Errorf("write organization row %q: %w", org.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush organization table: %w", err)
	}
	return nil
}

func runOrgShow(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("org show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print the organization as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id := fs.Arg(0)
	if id == "" {
		return errors.New("organization id argument is required")
	}

	org, err := cmdCtx.App.Organizations.Get(cmdCtx.Ctx, id)
	if err != nil {
		return fmt.Errorf("get organization: %w", err)
	}
	if *asJSON {
		return printJSON(org)
	}
	return printOrganization(org)
}

func printOrganization(org *model.Organization) error {
	plan := org.Plan
	if plan == "" {
		plan = "-"
	}
	return writef(os.Stdout, "ID:      %s\nSlug:    %s\nName:    %s\nPlan:    %s\nCreated: %s\nUpdated: %s\n",
		org.ID, org.Slug, org.Name, plan, formatTime(org.CreatedAt), formatTime(org.UpdatedAt))
}

type orgCreateOptions struct {
	Name string
	Slug string
}

func parseOrgCreateFlags(args []string) (orgCreateOptions, error) {
	fs := flag.NewFlagSet("org create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts orgCreateOptions
	fs.StringVar(&opts.Name, "name", "", "Organization display name")
	fs.StringVar(&opts.Slug, "slug", "", "URL slug (derived from the name when empty)")

	if err := fs.Parse(args); err != nil {
		return orgCreateOptions{}, err
	}
	if opts.Name == "" {
		return orgCreateOptions{}, errors.New("--name is required")
	}
	return opts, nil
}

func runOrgCreate(cmdCtx *commandContext, args []string) error {
	opts, err := parseOrgCreateFlags(args)
	if err != nil {
		return err
	}

	org, err := cmdCtx.App.Organizations.Create(cmdCtx.Ctx, model.CreateOrganizationRequest{
		Name: opts.Name,
		Slug: opts.Slug,
	})
	if err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	if err := writef(os.Stdout, "Organization %s created.\n", org.Slug); err != nil {
		return fmt.Errorf("print create result: %w", err)
	}
	return printOrganization(org)
}

type orgUpdateOptions struct {
	Name *string
	Plan *string
}

func parseOrgUpdateFlags(args []string) (orgUpdateOptions, []string, error) {
	fs := flag.NewFlagSet("org update", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	name := fs.String("name", "", "New display name")
	plan := fs.String("plan", "", "New subscription plan")

	if err := fs.Parse(args); err != nil {
		return orgUpdateOptions{}, nil, err
	}

	var opts orgUpdateOptions
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			opts.Name = name
		case "plan":
			opts.Plan = plan
		}
	})
	if opts.Name == nil && opts.Plan == nil {
		return orgUpdateOptions{}, nil, errors.New("at least one of --name or --plan is required")
	}
	return opts, fs.Args(), nil
}

func runOrgUpdate(cmdCtx *commandContext, args []string) error {
	opts, rest, err := parseOrgUpdateFlags(args)
	if err != nil {
		return err
	}
	if len(rest) < 1 {
		return errors.New("organization id argument is required")
	}

	org, err := cmdCtx.App.Organizations.Update(cmdCtx.Ctx, rest[0], model.UpdateOrganizationRequest{
		Name: opts.Name,
		Plan: opts.Plan,
	})
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}
	return printOrganization(org)
}

func runOrgDelete(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("org delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id := fs.Arg(0)
	if id == "" {
		return errors.New("organization id argument is required")
	}

	prompt := fmt.Sprintf("About to delete organization %s and all of its scans. This cannot be undone.", id)
	if err := confirm(prompt, *yes); err != nil {
		return err
	}
	if err := cmdCtx.App.Organizations.Delete(cmdCtx.Ctx, id); err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	return writef(os.Stdout, "Organization %s deleted.\n", id)
}

func runOrgMembers(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("org members", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print members as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id := fs.Arg(0)
	if id == "" {
		return errors.New("organization id argument is required")
	}

	members, err := cmdCtx.App.Organizations.Members(cmdCtx.Ctx, id)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	if *asJSON {
		return printJSON(members)
	}
	if len(members) == 0 {
		return writeln(os.Stdout, "No members.")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "USER\tEMAIL\tNAME\tROLE\tJOINED"); err != nil {
		return fmt.Errorf("write member header: %w", err)
	}
	for _, m := range members {
		name := m.Name
		if name == "" {
			name = "-"
		}
		row := fmt.Sprintf("%d\t%s\t%s\t%s\t%s", m.UserID, m.Email, name, m.Role, formatTime(m.JoinedAt))
		if err := writeln(w, row); err != nil {
			return fmt.Errorf("write member row %q: %w", m.Email, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush member table: %w", err)
	}
	return nil
}

type orgInviteOptions struct {
	Email string
	Role  string
}

func parseOrgInviteFlags(args []string) (orgInviteOptions, []string, error) {
	fs := flag.NewFlagSet("org invite", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts orgInviteOptions
	fs.StringVar(&opts.Email, "email", "", "Email address to invite")
	fs.StringVar(&opts.Role, "role", "", "Role granted to the member (backend default when empty)")

	if err := fs.Parse(args); err != nil {
		return orgInviteOptions{}, nil, err
	}
	if opts.Email == "" {
		return orgInviteOptions{}, nil, errors.New("--email is required")
	}
	return opts, fs.Args(), nil
}

func runOrgInvite(cmdCtx *commandContext, args []string) error {
	opts, rest, err := parseOrgInviteFlags(args)
	if err != nil {
		return err
	}
	if len(rest) < 1 {
		return errors.New("organization id argument is required")
	}

	member, err := cmdCtx.App.Organizations.Invite(cmdCtx.Ctx, rest[0], model.InviteMemberRequest{
		Email: opts.Email,
		Role:  opts.Role,
	})
	if err != nil {
		return fmt.Errorf("invite member: %w", err)
	}
	return writef(os.Stdout, "Invited %s as %s.\n", member.Email, member.Role)
}

type orgRemoveMemberOptions struct {
	UserID int64
	Yes    bool
}

func parseOrgRemoveMemberFlags(args []string) (orgRemoveMemberOptions, []string, error) {
	fs := flag.NewFlagSet("org remove-member", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts orgRemoveMemberOptions
	fs.Int64Var(&opts.UserID, "user", 0, "Numeric user id of the member to remove")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return orgRemoveMemberOptions{}, nil, err
	}
	if opts.UserID <= 0 {
		return orgRemoveMemberOptions{}, nil, errors.New("--user is required and must be positive")
	}
	return opts, fs.Args(), nil
}

func runOrgRemoveMember(cmdCtx *commandContext, args []string) error {
	opts, rest, err := parseOrgRemoveMemberFlags(args)
	if err != nil {
		return err
	}
	if len(rest) < 1 {
		return errors.New("organization id argument is required")
	}
	orgID := rest[0]

	prompt := fmt.Sprintf("About to remove user %d from organization %s.", opts.UserID, orgID)
	if err := confirm(prompt, opts.Yes); err != nil {
		return err
	}
	if err := cmdCtx.App.Organizations.RemoveMember(cmdCtx.Ctx, orgID, opts.UserID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return writef(os.Stdout, "Removed user %d from %s.\n", opts.UserID, orgID)
}
