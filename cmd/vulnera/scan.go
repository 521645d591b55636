package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	"github.com/k5602/Vulnera-Frontend-sub001/internal/service"
)

const (
	defaultWatchInterval = 2 * time.Second
	defaultWatchTimeout  = 15 * time.Minute
)

// stringList collects repeated -file flags.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func runScanGroup(cmdCtx *commandContext, args []string) error {
	return runGroup(cmdCtx, "scan", map[string]command{
		"submit": {
			name:        "submit",
			description: "Submit manifests or a repository URL for scanning",
			run:         runScanSubmit,
		},
		"status": {
			name:        "status",
			description: "Show one scan's current state",
			run:         runScanStatus,
		},
		"list": {
			name:        "list",
			description: "List scans with paging and filters",
			run:         runScanList,
		},
		"cancel": {
			name:        "cancel",
			description: "Cancel a pending or running scan",
			run:         runScanCancel,
		},
		"report": {
			name:        "report",
			description: "Fetch a completed scan's findings",
			run:         runScanReport,
		},
		"watch": {
			name:        "watch",
			description: "Poll a scan until it reaches a terminal state",
			run:         runScanWatch,
		},
	}, args)
}

type scanSubmitOptions struct {
	Repo    string
	Ref     string
	Org     string
	Files   stringList
	Wait    bool
	Timeout time.Duration
}

func parseScanSubmitFlags(args []string) (scanSubmitOptions, error) {
	fs := flag.NewFlagSet("scan submit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts scanSubmitOptions
	fs.StringVar(&opts.Repo, "repo", "", "Repository URL to scan")
	fs.StringVar(&opts.Ref, "ref", "", "Branch, tag, or commit to scan (with --repo)")
	fs.StringVar(&opts.Org, "org", "", "Organization id owning the scan")
	fs.Var(&opts.Files, "file", "Dependency manifest to upload (repeatable)")
	fs.BoolVar(&opts.Wait, "wait", false, "Block until the scan reaches a terminal state")
	fs.DurationVar(&opts.Timeout, "timeout", defaultWatchTimeout, "Maximum duration to wait (with --wait)")

	if err := fs.Parse(args); err != nil {
		return scanSubmitOptions{}, err
	}
	if opts.Repo == "" && len(opts.Files) == 0 {
		return scanSubmitOptions{}, errors.New("either --repo or at least one --file is required")
	}
	if opts.Repo != "" && len(opts.Files) > 0 {
		return scanSubmitOptions{}, errors.New("--repo and --file are mutually exclusive")
	}
	if opts.Wait && opts.Timeout <= 0 {
		return scanSubmitOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runScanSubmit(cmdCtx *commandContext, args []string) error {
	opts, err := parseScanSubmitFlags(args)
	if err != nil {
		return err
	}

	req := model.SubmitScanRequest{
		RepoURL:        opts.Repo,
		Ref:            opts.Ref,
		OrganizationID: opts.Org,
	}
	for _, path := range opts.Files {
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("read manifest %s: %w", path, readErr)
		}
		req.Files = append(req.Files, model.ManifestFile{
			Name:    filepath.Base(path),
			Content: content,
		})
	}

	scan, err := cmdCtx.App.Scans.Submit(cmdCtx.Ctx, req)
	if err != nil {
		return fmt.Errorf("submit scan: %w", err)
	}
	if err := writef(os.Stdout, "Scan %s submitted (%s).\n", scan.ID, scan.Status); err != nil {
		return fmt.Errorf("print scan id: %w", err)
	}

	if !opts.Wait {
		return nil
	}
	final, err := awaitScan(cmdCtx, scan.ID, defaultWatchInterval, opts.Timeout)
	if err != nil {
		return err
	}
	if err := printScan(final); err != nil {
		return err
	}
	return checkTerminalStatus(final)
}

func runScanStatus(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("scan status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print the scan as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id := fs.Arg(0)
	if id == "" {
		return errors.New("scan id argument is required")
	}

	scan, err := cmdCtx.App.Scans.Get(cmdCtx.Ctx, id)
	if err != nil {
		return fmt.Errorf("get scan: %w", err)
	}
	if *asJSON {
		return printJSON(scan)
	}
	return printScan(scan)
}

type scanListOptions struct {
	Limit  int
	Offset int
	Status string
	Org    string
	JSON   bool
}

func parseScanListFlags(args []string) (scanListOptions, error) {
	fs := flag.NewFlagSet("scan list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts scanListOptions
	fs.IntVar(&opts.Limit, "limit", 20, "Maximum number of scans to return")
	fs.IntVar(&opts.Offset, "offset", 0, "Number of scans to skip")
	fs.StringVar(&opts.Status, "status", "", "Filter by status (pending, running, completed, failed, cancelled)")
	fs.StringVar(&opts.Org, "org", "", "Filter by organization id")
	fs.BoolVar(&opts.JSON, "json", false, "Print the page as JSON")

	if err := fs.Parse(args); err != nil {
		return scanListOptions{}, err
	}
	if opts.Limit <= 0 {
		return scanListOptions{}, errors.New("--limit must be greater than zero")
	}
	if opts.Offset < 0 {
		return scanListOptions{}, errors.New("--offset cannot be negative")
	}
	return opts, nil
}

func runScanList(cmdCtx *commandContext, args []string) error {
	opts, err := parseScanListFlags(args)
	if err != nil {
		return err
	}

	listOpts := model.ScanListOptions{
		Limit:          opts.Limit,
		Offset:         opts.Offset,
		OrganizationID: opts.Org,
	}
	if opts.Status != "" {
		var status model.ScanStatus
		if err := status.UnmarshalText([]byte(opts.Status)); err != nil {
			return fmt.Errorf("parse --status: %w", err)
		}
		listOpts.Status = &status
	}

	page, err := cmdCtx.App.Scans.List(cmdCtx.Ctx, listOpts)
	if err != nil {
		return fmt.Errorf("list scans: %w", err)
	}
	if opts.JSON {
		return printJSON(page)
	}
	if len(page.Scans) == 0 {
		return writeln(os.Stdout, "No scans.")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "ID\tSTATUS\tSOURCE\tTARGET\tFINDINGS\tCRITICAL\tCREATED"); err != nil {
		return fmt.Errorf("write scan header: %w", err)
	}
	for _, s := range page.Scans {
		target := s.Target
		if target == "" {
			target = "-"
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%d\t%s",
			s.ID, s.Status, s.Source, target, s.FindingCount, s.CriticalCount, formatTime(s.CreatedAt))
		if err := writeln(w, row); err != nil {
			return fmt.Errorf("write scan row %q: %w", s.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush scan table: %w", err)
	}
	return writef(os.Stdout, "\nShowing %d of %d scans.\n", len(page.Scans), page.Total)
}

func runScanCancel(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("scan cancel", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id := fs.Arg(0)
	if id == "" {
		return errors.New("scan id argument is required")
	}

	if err := cmdCtx.App.Scans.Cancel(cmdCtx.Ctx, id); err != nil {
		return fmt.Errorf("cancel scan: %w", err)
	}
	return writef(os.Stdout, "Scan %s cancelled.\n", id)
}

type scanReportOptions struct {
	Query    string
	Severity string
	JSON     bool
}

func parseScanReportFlags(args []string) (scanReportOptions, []string, error) {
	fs := flag.NewFlagSet("scan report", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts scanReportOptions
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression evaluated against the raw report")
	fs.StringVar(&opts.Severity, "severity", "", "Minimum severity to show (low, medium, high, critical)")
	fs.BoolVar(&opts.JSON, "json", false, "Print the report as JSON")

	if err := fs.Parse(args); err != nil {
		return scanReportOptions{}, nil, err
	}
	if opts.Query != "" && opts.Severity != "" {
		return scanReportOptions{}, nil, errors.New("--query and --severity are mutually exclusive")
	}
	return opts, fs.Args(), nil
}

func runScanReport(cmdCtx *commandContext, args []string) error {
	opts, rest, err := parseScanReportFlags(args)
	if err != nil {
		return err
	}
	if len(rest) < 1 {
		return errors.New("scan id argument is required")
	}
	id := rest[0]

	if opts.Query != "" {
		result, err := cmdCtx.App.Scans.QueryReport(cmdCtx.Ctx, id, opts.Query)
		if err != nil {
			return fmt.Errorf("query report: %w", err)
		}
		return printJSON(result)
	}

	report, err := cmdCtx.App.Scans.Report(cmdCtx.Ctx, id)
	if err != nil {
		return fmt.Errorf("fetch report: %w", err)
	}

	findings := report.Findings
	if opts.Severity != "" {
		min, ok := model.ParseSeverity(opts.Severity)
		if !ok {
			return fmt.Errorf("invalid severity %q (valid options: low, medium, high, critical)", opts.Severity)
		}
		findings = report.FindingsAtLeast(min)
	}

	if opts.JSON {
		if opts.Severity != "" {
			filtered := *report
			filtered.Findings = findings
			return printJSON(&filtered)
		}
		return printJSON(report)
	}

	s := report.Summary
	if err := writef(os.Stdout, "Report for scan %s (generated %s)\n", report.ScanID, formatTime(report.GeneratedAt)); err != nil {
		return fmt.Errorf("print report header: %w", err)
	}
	if err := writef(os.Stdout, "Findings: %d total (%d critical, %d high, %d medium, %d low)\n\n",
		s.Total, s.Critical, s.High, s.Medium, s.Low); err != nil {
		return fmt.Errorf("print report summary: %w", err)
	}
	return printFindings(findings)
}

type scanWatchOptions struct {
	Interval time.Duration
	Timeout  time.Duration
}

func parseScanWatchFlags(args []string) (scanWatchOptions, []string, error) {
	fs := flag.NewFlagSet("scan watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts scanWatchOptions
	fs.DurationVar(&opts.Interval, "interval", defaultWatchInterval, "Delay between status polls")
	fs.DurationVar(&opts.Timeout, "timeout", defaultWatchTimeout, "Maximum duration to watch")

	if err := fs.Parse(args); err != nil {
		return scanWatchOptions{}, nil, err
	}
	if opts.Interval <= 0 {
		return scanWatchOptions{}, nil, errors.New("--interval must be greater than zero")
	}
	if opts.Timeout <= 0 {
		return scanWatchOptions{}, nil, errors.New("--timeout must be greater than zero")
	}
	return opts, fs.Args(), nil
}

func runScanWatch(cmdCtx *commandContext, args []string) error {
	opts, rest, err := parseScanWatchFlags(args)
	if err != nil {
		return err
	}
	if len(rest) < 1 {
		return errors.New("scan id argument is required")
	}

	final, err := awaitScan(cmdCtx, rest[0], opts.Interval, opts.Timeout)
	if err != nil {
		return err
	}
	if err := printScan(final); err != nil {
		return err
	}
	return checkTerminalStatus(final)
}

// awaitScan polls until the scan settles, echoing status transitions to
// stderr. Ctrl+C stops the poll, not the scan itself.
func awaitScan(cmdCtx *commandContext, id string, interval, timeout time.Duration) (*model.Scan, error) {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	last := model.ScanStatus("")
	final, err := cmdCtx.App.Scans.Wait(ctx, id, service.WaitOptions{
		Interval: interval,
		Timeout:  timeout,
		OnPoll: func(snapshot model.Scan) {
			if snapshot.Status == last {
				return
			}
			last = snapshot.Status
			if writeErr := writef(os.Stderr, "scan %s: %s\n", snapshot.ID, snapshot.Status); writeErr != nil {
				cmdCtx.Logger.Warn("progress write failed", "error", writeErr)
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wait for scan: %w", err)
	}
	return final, nil
}

func checkTerminalStatus(scan *model.Scan) error {
	switch scan.Status {
	case model.ScanStatusCompleted:
		return nil
	case model.ScanStatusFailed:
		if scan.Error != "" {
			return fmt.Errorf("scan failed: %s", scan.Error)
		}
		return errors.New("scan failed")
	case model.ScanStatusCancelled:
		return errors.New("scan was cancelled")
	default:
		return fmt.Errorf("scan ended in unexpected status %q", scan.Status)
	}
}

func printScan(scan *model.Scan) error {
	if err := writef(os.Stdout, "ID:       %s\nStatus:   %s\nSource:   %s\n", scan.ID, scan.Status, scan.Source); err != nil {
		return fmt.Errorf("print scan: %w", err)
	}
	if scan.Target != "" {
		if err := writef(os.Stdout, "Target:   %s\n", scan.Target); err != nil {
			return fmt.Errorf("print scan target: %w", err)
		}
	}
	if scan.OrganizationID != "" {
		if err := writef(os.Stdout, "Org:      %s\n", scan.OrganizationID); err != nil {
			return fmt.Errorf("print scan org: %w", err)
		}
	}
	if err := writef(os.Stdout, "Findings: %d (%d critical)\n", scan.FindingCount, scan.CriticalCount); err != nil {
		return fmt.Errorf("print scan counts: %w", err)
	}
	if err := writef(os.Stdout, "Created:  %s\n", formatTime(scan.CreatedAt)); err != nil {
		return fmt.Errorf("print scan created: %w", err)
	}
	if scan.StartedAt != nil {
		if err := writef(os.Stdout, "Started:  %s\n", formatTimePtr(scan.StartedAt)); err != nil {
			return fmt.Errorf("print scan started: %w", err)
		}
	}
	if scan.FinishedAt != nil {
		if err := writef(os.Stdout, "Finished: %s\n", formatTimePtr(scan.FinishedAt)); err != nil {
			return fmt.Errorf("print scan finished: %w", err)
		}
	}
	if scan.Error != "" {
		if err := writef(os.Stdout, "Error:    %s\n", scan.Error); err != nil {
			return fmt.Errorf("print scan error: %w", err)
		}
	}
	return nil
}

func printFindings(findings []model.Finding) error {
	if len(findings) == 0 {
		return writeln(os.Stdout, "No findings.")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "SEVERITY\tPACKAGE\tVERSION\tFIX\tCVE\tFILE"); err != nil {
		return fmt.Errorf("write finding header: %w", err)
	}
	for _, f := range findings {
		fix := f.FixVersion
		if fix == "" {
			fix = "-"
		}
		cves := strings.Join(f.CVEIDs, ",")
		if cves == "" {
			cves = "-"
		}
		file := f.File
		if file == "" {
			file = "-"
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s", f.Severity, f.Package, f.Version, fix, cves, file)
		if err := writeln(w, row); err != nil {
			return fmt.Errorf("write finding row %q: %w", f.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush finding table: %w", err)
	}
	return nil
}

type patchOptions struct {
	ScanID string
	Dir    string
	DryRun bool
	JSON   bool
}

func parsePatchFlags(args []string) (patchOptions, error) {
	fs := flag.NewFlagSet("patch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts patchOptions
	fs.StringVar(&opts.ScanID, "scan", "", "Scan whose report drives the pin bumps")
	fs.StringVar(&opts.Dir, "dir", ".", "Project directory holding the manifests")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Plan the edits without touching any file")
	fs.BoolVar(&opts.JSON, "json", false, "Print the edits as JSON")

	if err := fs.Parse(args); err != nil {
		return patchOptions{}, err
	}
	if opts.ScanID == "" {
		return patchOptions{}, errors.New("--scan is required")
	}
	return opts, nil
}

func runPatch(cmdCtx *commandContext, args []string) error {
	opts, err := parsePatchFlags(args)
	if err != nil {
		return err
	}

	report, err := cmdCtx.App.Scans.Report(cmdCtx.Ctx, opts.ScanID)
	if err != nil {
		return fmt.Errorf("fetch report: %w", err)
	}

	edits, err := cmdCtx.App.Patch.Apply(cmdCtx.Ctx, report, service.PatchOptions{
		Dir:    opts.Dir,
		DryRun: opts.DryRun,
	})
	if err != nil {
		return fmt.Errorf("patch manifests: %w", err)
	}

	if opts.JSON {
		return printJSON(edits)
	}
	if len(edits) == 0 {
		return writeln(os.Stdout, "No fixable pins matched the manifests.")
	}

	heading := fmt.Sprintf("Applied %d edit(s):", len(edits))
	if opts.DryRun {
		heading = fmt.Sprintf("Planned %d edit(s) (dry run):", len(edits))
	}
	if err := writeln(os.Stdout, heading); err != nil {
		return fmt.Errorf("print patch heading: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "FILE\tPACKAGE\tFROM\tTO"); err != nil {
		return fmt.Errorf("write edit header: %w", err)
	}
	for _, e := range edits {
		if err := writef(w, "%s\t%s\t%s\t%s\n", e.File, e.Package, e.From, e.To); err != nil {
			return fmt.Errorf("write edit row %q: %w", e.Package, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush edit table: %w", err)
	}
	return nil
}

func runEnrich(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("enrich", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print enrichment records as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids := fs.Args()
	if len(ids) == 0 {
		return errors.New("at least one CVE id argument is required")
	}

	if len(ids) == 1 {
		record, err := cmdCtx.App.Enrichment.CVE(cmdCtx.Ctx, ids[0])
		if err != nil {
			return fmt.Errorf("enrich cve: %w", err)
		}
		if *asJSON {
			return printJSON(record)
		}
		return printCVERecord(record)
	}

	resp, err := cmdCtx.App.Enrichment.Batch(cmdCtx.Ctx, ids)
	if err != nil {
		return fmt.Errorf("enrich cves: %w", err)
	}
	if *asJSON {
		return printJSON(resp)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "ID\tSEVERITY\tCVSS\tEPSS\tPUBLISHED"); err != nil {
		return fmt.Errorf("write enrichment header: %w", err)
	}
	for _, rec := range resp.Records {
		severity := string(rec.Severity)
		if severity == "" {
			severity = "-"
		}
		row := fmt.Sprintf("%s\t%s\t%.1f\t%.4f\t%s",
			rec.ID, severity, rec.CVSSScore, rec.EPSSScore, formatTimePtr(rec.PublishedAt))
		if err := writeln(w, row); err != nil {
			return fmt.Errorf("write enrichment row %q: %w", rec.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush enrichment table: %w", err)
	}
	if len(resp.Missing) > 0 {
		return writef(os.Stdout, "\nNot found: %s\n", strings.Join(resp.Missing, ", "))
	}
	return nil
}

func printCVERecord(rec *model.CVERecord) error {
	if err := writef(os.Stdout, "ID:        %s\n", rec.ID); err != nil {
		return fmt.Errorf("print cve id: %w", err)
	}
	if rec.Severity != "" {
		if err := writef(os.Stdout, "Severity:  %s\n", rec.Severity); err != nil {
			return fmt.Errorf("print cve severity: %w", err)
		}
	}
	if rec.CVSSScore > 0 {
		line := fmt.Sprintf("CVSS:      %.1f", rec.CVSSScore)
		if rec.CVSSVector != "" {
			line += " (" + rec.CVSSVector + ")"
		}
		if err := writeln(os.Stdout, line); err != nil {
			return fmt.Errorf("print cve cvss: %w", err)
		}
	}
	if rec.EPSSScore > 0 {
		if err := writef(os.Stdout, "EPSS:      %.4f\n", rec.EPSSScore); err != nil {
			return fmt.Errorf("print cve epss: %w", err)
		}
	}
	if rec.PublishedAt != nil {
		if err := writef(os.Stdout, "Published: %s\n", formatTimePtr(rec.PublishedAt)); err != nil {
			return fmt.Errorf("print cve published: %w", err)
		}
	}
	if rec.Summary != "" {
		if err := writef(os.Stdout, "\n%s\n", rec.Summary); err != nil {
			return fmt.Errorf("print cve summary: %w", err)
		}
	}
	if len(rec.References) > 0 {
		if err := writeln(os.Stdout, "\nReferences:"); err != nil {
			return fmt.Errorf("print cve reference header: %w", err)
		}
		for _, ref := range rec.References {
			if err := writef(os.Stdout, "  %s\n", ref); err != nil {
				return fmt.Errorf("print cve reference: %w", err)
			}
		}
	}
	return nil
}

type explainOptions struct {
	ScanID      string
	FindingID   string
	Question    string
	Ecosystem   string
	Remediation bool
	JSON        bool
}

func parseExplainFlags(args []string) (explainOptions, error) {
	fs := flag.NewFlagSet("explain", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts explainOptions
	fs.StringVar(&opts.ScanID, "scan", "", "Scan the finding belongs to")
	fs.StringVar(&opts.FindingID, "finding", "", "Finding to explain")
	fs.StringVar(&opts.Question, "question", "", "Narrow the explanation to a specific question")
	fs.StringVar(&opts.Ecosystem, "ecosystem", "", "Package ecosystem hint (with --remediation)")
	fs.BoolVar(&opts.Remediation, "remediation", false, "Ask for concrete remediation steps instead of an explanation")
	fs.BoolVar(&opts.JSON, "json", false, "Print the response as JSON")

	if err := fs.Parse(args); err != nil {
		return explainOptions{}, err
	}
	if opts.ScanID == "" {
		return explainOptions{}, errors.New("--scan is required")
	}
	if opts.FindingID == "" {
		return explainOptions{}, errors.New("--finding is required")
	}
	if opts.Remediation && opts.Question != "" {
		return explainOptions{}, errors.New("--question cannot be combined with --remediation")
	}
	return opts, nil
}

func runExplain(cmdCtx *commandContext, args []string) error {
	opts, err := parseExplainFlags(args)
	if err != nil {
		return err
	}

	if opts.Remediation {
		rem, err := cmdCtx.App.LLM.SuggestRemediation(cmdCtx.Ctx, model.RemediationRequest{
			ScanID:    opts.ScanID,
			FindingID: opts.FindingID,
			Ecosystem: opts.Ecosystem,
		})
		if err != nil {
			return fmt.Errorf("suggest remediation: %w", err)
		}
		if opts.JSON {
			return printJSON(rem)
		}
		if err := writef(os.Stdout, "Remediation for finding %s:\n", rem.FindingID); err != nil {
			return fmt.Errorf("print remediation header: %w", err)
		}
		for i, step := range rem.Steps {
			if err := writef(os.Stdout, "  %d. %s\n", i+1, step); err != nil {
				return fmt.Errorf("print remediation step: %w", err)
			}
		}
		if len(rem.Commands) > 0 {
			if err := writeln(os.Stdout, "\nCommands:"); err != nil {
				return fmt.Errorf("print command header: %w", err)
			}
			for _, cmd := range rem.Commands {
				if err := writef(os.Stdout, "  $ %s\n", cmd); err != nil {
					return fmt.Errorf("print command: %w", err)
				}
			}
		}
		if rem.Model != "" {
			return writef(os.Stdout, "\n(model: %s)\n", rem.Model)
		}
		return nil
	}

	explanation, err := cmdCtx.App.LLM.ExplainFinding(cmdCtx.Ctx, model.ExplainRequest{
		ScanID:    opts.ScanID,
		FindingID: opts.FindingID,
		Question:  opts.Question,
	})
	if err != nil {
		return fmt.Errorf("explain finding: %w", err)
	}
	if opts.JSON {
		return printJSON(explanation)
	}
	if err := writeln(os.Stdout, explanation.Text); err != nil {
		return fmt.Errorf("print explanation: %w", err)
	}
	if explanation.Model != "" {
		return writef(os.Stdout, "\n(model: %s)\n", explanation.Model)
	}
	return nil
}
