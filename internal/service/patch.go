package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	apperrors "github.com/k5602/Vulnera-Frontend-sub001/internal/errors"
)

// Supported manifest file names, keyed by finding ecosystem.
var manifestByEcosystem = map[string]string{
	"npm":  "package.json",
	"pypi": "requirements.txt",
	"go":   "go.mod",
}

// PatchServiceOptions groups dependencies for PatchService.
type PatchServiceOptions struct {
	Logger *slog.Logger
}

// PatchService rewrites dependency manifests on the local filesystem,
// bumping pins that a report flagged as vulnerable to their fix versions.
// It never talks to the backend.
type PatchService struct {
	logger *slog.Logger
}

// NewPatchService constructs a new PatchService.
func NewPatchService(opts PatchServiceOptions) *PatchService {
	return &PatchService{logger: resolveServiceLogger(opts.Logger)}
}

// PatchEdit is one planned pin bump.
type PatchEdit struct {
	// File is the manifest path relative to the patched directory.
	File    string `json:"file"`
	Package string `json:"package"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// PatchOptions controls where and how Apply operates.
type PatchOptions struct {
	// Dir is the project root holding the manifests. Defaults to ".".
	Dir string
	// DryRun plans the edits without touching any file.
	DryRun bool
}

// Apply bumps every fixable finding's pin in the supported manifests under
// opts.Dir. Only the vulnerable pins change; the rest of each file stays
// byte-identical. The returned edits reflect what was (or with DryRun,
// would be) rewritten. Findings without a fix version or whose package is
// not pinned in a manifest are skipped.
func (s *PatchService) Apply(ctx context.Context, report *model.Report, opts PatchOptions) ([]PatchEdit, error) {
	if report == nil {
		return nil, apperrors.Validation("report is required")
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, apperrors.Validationf("directory %q does not exist", dir)
	}

	byManifest := groupFindingsByManifest(report.Findings)

	var edits []PatchEdit
	// Iterate in a fixed order so the plan is deterministic.
	for _, name := range []string{"package.json", "requirements.txt", "go.mod"} {
		findings := byManifest[name]
		if len(findings) == 0 {
			continue
		}

		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "read manifest %s", name)
		}

		content := string(raw)
		var fileEdits []PatchEdit
		for _, f := range findings {
			next, changed := bumpPin(name, content, f)
			if changed {
				content = next
				fileEdits = append(fileEdits, PatchEdit{
					File:    name,
					Package: f.Package,
					From:    f.Version,
					To:      f.FixVersion,
				})
			}
		}
		if len(fileEdits) == 0 {
			continue
		}

		if !opts.DryRun {
			mode := os.FileMode(0o644)
			if info, err := os.Stat(path); err == nil {
				mode = info.Mode().Perm()
			}
			if err := os.WriteFile(path, []byte(content), mode); err != nil {
				return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "write manifest %s", name)
			}
			s.logger.InfoContext(ctx, "manifest patched", "file", name, "edits", len(fileEdits))
		}
		edits = append(edits, fileEdits...)
	}
	return edits, nil
}

// groupFindingsByManifest buckets fixable findings under the manifest file
// they should patch. The finding's own File wins when it names a supported
// manifest; otherwise the ecosystem decides.
func groupFindingsByManifest(findings []model.Finding) map[string][]model.Finding {
	out := make(map[string][]model.Finding)
	for _, f := range findings {
		if !f.Fixable() {
			continue
		}
		name := manifestByEcosystem[strings.ToLower(f.Ecosystem)]
		if base := filepath.Base(f.File); supportedManifest(base) {
			name = base
		}
		if name == "" {
			continue
		}
		out[name] = append(out[name], f)
	}
	return out
}

func supportedManifest(name string) bool {
	switch name {
	case "package.json", "requirements.txt", "go.mod":
		return true
	default:
		return false
	}
}

// bumpPin rewrites the pin for one finding in one manifest. The patterns
// anchor on both the package name and the currently pinned version, so a
// package already bumped past the vulnerable version is left alone.
func bumpPin(manifest, content string, f model.Finding) (string, bool) {
	var re *regexp.Regexp
	var replacement string

	switch manifest {
	case "package.json":
		// "lodash": "^4.17.19" keeps its range operator.
		re = regexp.MustCompile(
			`("` + regexp.QuoteMeta(f.Package) + `"\s*:\s*"[\^~]?)` + regexp.QuoteMeta(f.Version) + `(")`)
		replacement = "${1}" + f.FixVersion + "${2}"
	case "requirements.txt":
		// requests==2.0.0, optionally followed by a marker or comment.
		// PyPI treats - and _ as the same character in names.
		re = regexp.MustCompile(
			`(?im)^(` + pyPackagePattern(f.Package) + `\s*==\s*)` + regexp.QuoteMeta(f.Version) + `(\s*(?:[;#].*)?)$`)
		replacement = "${1}" + f.FixVersion + "${2}"
	case "go.mod":
		old := strings.TrimPrefix(f.Version, "v")
		fix := "v" + strings.TrimPrefix(f.FixVersion, "v")
		// Matches both block entries and single-line requires.
		re = regexp.MustCompile(
			`(?m)^((?:require\s+)?\s*` + regexp.QuoteMeta(f.Package) + `\s+)v` + regexp.QuoteMeta(old) + `(\s*(?://.*)?)$`)
		replacement = "${1}" + fix + "${2}"
	default:
		return content, false
	}

	next := re.ReplaceAllString(content, replacement)
	return next, next != content
}

// pyPackagePattern quotes a PyPI package name for regexp use, treating
// - and _ as interchangeable.
func pyPackagePattern(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '-' || r == '_' {
			b.WriteString(`[-_]`)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return b.String()
}
