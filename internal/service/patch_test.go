package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k5602/Vulnera-Frontend-sub001/internal/domain/model"
	apperrors "github.com/k5602/Vulnera-Frontend-sub001/internal/errors"
)

func newPatchService() *PatchService {
	return NewPatchService(PatchServiceOptions{Logger: discardLogger()})
}

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func reportWith(findings ...model.Finding) *model.Report {
	return &model.Report{
		ScanID:   "scan-1",
		Status:   model.ScanStatusCompleted,
		Findings: findings,
	}
}

func TestPatchService_BumpsNpmPinPreservingRange(t *testing.T) {
	dir := t.TempDir()
	original := `{
  "name": "demo",
  "dependencies": {
    "lodash": "^4.17.19",
    "debug": "2.6.8"
  }
}
`
	path := writeManifest(t, dir, "package.json", original)

	svc := newPatchService()
	edits, err := svc.Apply(context.Background(), reportWith(
		model.Finding{Package: "lodash", Version: "4.17.19", Ecosystem: "npm", FixVersion: "4.17.21"},
	), PatchOptions{Dir: dir})
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, PatchEdit{File: "package.json", Package: "lodash", From: "4.17.19", To: "4.17.21"}, edits[0])

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `{
  "name": "demo",
  "dependencies": {
    "lodash": "^4.17.21",
    "debug": "2.6.8"
  }
}
`
	assert.Equal(t, want, string(got), "only the vulnerable pin may change")
}

func TestPatchService_BumpsRequirementsPin(t *testing.T) {
	dir := t.TempDir()
	original := "flask==1.0.0\nPyYAML==5.3.1  # pinned for reasons\nrequests==2.31.0\n"
	path := writeManifest(t, dir, "requirements.txt", original)

	svc := newPatchService()
	// The finding reports the normalized name; the manifest spells it
	// with different casing.
	edits, err := svc.Apply(context.Background(), reportWith(
		model.Finding{Package: "pyyaml", Version: "5.3.1", Ecosystem: "pypi", FixVersion: "5.4"},
	), PatchOptions{Dir: dir})
	require.NoError(t, err)
	require.Len(t, edits, 1)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "flask==1.0.0\nPyYAML==5.4  # pinned for reasons\nrequests==2.31.0\n", string(got))
}

func TestPatchService_BumpsGoModPin(t *testing.T) {
	dir := t.TempDir()
	original := `module example.com/demo

go 1.22

require (
	github.com/gin-gonic/gin v1.9.0
	golang.org/x/text v0.3.7 // indirect
)
`
	path := writeManifest(t, dir, "go.mod", original)

	svc := newPatchService()
	edits, err := svc.Apply(context.Background(), reportWith(
		model.Finding{Package: "golang.org/x/text", Version: "v0.3.7", Ecosystem: "go", FixVersion: "0.3.8"},
	), PatchOptions{Dir: dir})
	require.NoError(t, err)
	require.Len(t, edits, 1)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `module example.com/demo

go 1.22

require (
	github.com/gin-gonic/gin v1.9.0
	golang.org/x/text v0.3.8 // indirect
)
`
	assert.Equal(t, want, string(got))
}

func TestPatchService_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	original := `{"dependencies": {"lodash": "4.17.19"}}`
	path := writeManifest(t, dir, "package.json", original)

	svc := newPatchService()
	edits, err := svc.Apply(context.Background(), reportWith(
		model.Finding{Package: "lodash", Version: "4.17.19", Ecosystem: "npm", FixVersion: "4.17.21"},
	), PatchOptions{Dir: dir, DryRun: true})
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "4.17.21", edits[0].To)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(got), "dry run must not modify the manifest")
}

func TestPatchService_SkipsAlreadyBumpedPin(t *testing.T) {
	dir := t.TempDir()
	original := `{"dependencies": {"lodash": "4.17.21"}}`
	writeManifest(t, dir, "package.json", original)

	svc := newPatchService()
	edits, err := svc.Apply(context.Background(), reportWith(
		model.Finding{Package: "lodash", Version: "4.17.19", Ecosystem: "npm", FixVersion: "4.17.21"},
	), PatchOptions{Dir: dir})
	require.NoError(t, err)
	assert.Empty(t, edits, "a pin not at the vulnerable version is left alone")
}

func TestPatchService_SkipsUnfixableAndUnknownEcosystems(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "package.json", `{"dependencies": {"lodash": "4.17.19"}}`)

	svc := newPatchService()
	edits, err := svc.Apply(context.Background(), reportWith(
		model.Finding{Package: "lodash", Version: "4.17.19", Ecosystem: "npm"},
		model.Finding{Package: "openssl", Version: "1.1.1", Ecosystem: "debian", FixVersion: "3.0.0"},
	), PatchOptions{Dir: dir})
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestPatchService_MissingManifestIsSkipped(t *testing.T) {
	dir := t.TempDir()

	svc := newPatchService()
	edits, err := svc.Apply(context.Background(), reportWith(
		model.Finding{Package: "lodash", Version: "4.17.19", Ecosystem: "npm", FixVersion: "4.17.21"},
	), PatchOptions{Dir: dir})
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestPatchService_FindingFileOverridesEcosystem(t *testing.T) {
	dir := t.TempDir()
	// Ecosystem is blank but the finding names the manifest it came from.
	writeManifest(t, dir, "requirements.txt", "django==3.2.0\n")

	svc := newPatchService()
	edits, err := svc.Apply(context.Background(), reportWith(
		model.Finding{Package: "django", Version: "3.2.0", FixVersion: "3.2.19", File: "requirements.txt"},
	), PatchOptions{Dir: dir})
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "requirements.txt", edits[0].File)
}

func TestPatchService_RejectsMissingDirAndNilReport(t *testing.T) {
	svc := newPatchService()

	_, err := svc.Apply(context.Background(), reportWith(), PatchOptions{Dir: "/does/not/exist"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Apply(context.Background(), nil, PatchOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPatchService_MultipleEditsAcrossManifests(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "package.json", `{"dependencies": {"lodash": "~4.17.19", "minimist": "1.2.5"}}`)
	writeManifest(t, dir, "requirements.txt", "requests==2.25.0\n")

	svc := newPatchService()
	edits, err := svc.Apply(context.Background(), reportWith(
		model.Finding{Package: "minimist", Version: "1.2.5", Ecosystem: "npm", FixVersion: "1.2.6"},
		model.Finding{Package: "lodash", Version: "4.17.19", Ecosystem: "npm", FixVersion: "4.17.21"},
		model.Finding{Package: "requests", Version: "2.25.0", Ecosystem: "pypi", FixVersion: "2.31.0"},
	), PatchOptions{Dir: dir})
	require.NoError(t, err)
	require.Len(t, edits, 3)

	// package.json edits come first regardless of finding order.
	assert.Equal(t, "package.json", edits[0].File)
	assert.Equal(t, "package.json", edits[1].File)
	assert.Equal(t, "requirements.txt", edits[2].File)

	pkg, err := os.ReadFile(filepath.Join(dir, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"dependencies": {"lodash": "~4.17.21", "minimist": "1.2.6"}}`, string(pkg))
}
