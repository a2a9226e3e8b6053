package scanner_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/openkraft/prodcheck/internal/adapters/outbound/scanner"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "/project"

func memProject(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(root, 0o755))
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func TestFileScanner_FindRootLevelPattern(t *testing.T) {
	fs := memProject(t, map[string]string{
		"Dockerfile":          "FROM golang:1.24",
		"services/Dockerfile": "FROM alpine:3.20",
	})
	s := scanner.NewWithFs(fs)

	got, err := s.Find(root, []string{"Dockerfile"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dockerfile"}, got)
}

func TestFileScanner_FindSuperAsterisk(t *testing.T) {
	fs := memProject(t, map[string]string{
		"k8s/deployment.yaml":         "kind: Deployment",
		"k8s/overlays/prod/svc.yml":   "kind: Service",
		"k8s/README.md":               "docs",
		".github/workflows/ci.yml":    "on: push",
		".github/workflows/notes.txt": "x",
	})
	s := scanner.NewWithFs(fs)

	got, err := s.Find(root, []string{"k8s/**.yml", "k8s/**.yaml"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"k8s/deployment.yaml", "k8s/overlays/prod/svc.yml"}, got)

	got, err = s.Find(root, []string{".github/workflows/*.yml"})
	require.NoError(t, err)
	assert.Equal(t, []string{".github/workflows/ci.yml"}, got)
}

func TestFileScanner_SkipsDependencyDirs(t *testing.T) {
	fs := memProject(t, map[string]string{
		"node_modules/pkg/package.json": "{}",
		"vendor/lib/go.mod":             "module lib",
		"package.json":                  "{}",
	})
	s := scanner.NewWithFs(fs)

	got, err := s.Find(root, []string{"**package.json", "**go.mod"})
	require.NoError(t, err)
	assert.Equal(t, []string{"package.json"}, got)
}

func TestFileScanner_FindInsideSkippedRoot(t *testing.T) {
	fs := memProject(t, map[string]string{"dist/app.min.js": "x"})
	s := scanner.NewWithFs(fs)

	got, err := s.Find(filepath.Join(root, "dist"), []string{"**.js"})
	require.NoError(t, err)
	assert.Equal(t, []string{"app.min.js"}, got)
}

func TestFileScanner_FindMissingRoot(t *testing.T) {
	s := scanner.NewWithFs(afero.NewMemMapFs())
	_, err := s.Find("/nowhere", []string{"*"})
	assert.Error(t, err)
}

func TestFileScanner_ReadHead(t *testing.T) {
	fs := memProject(t, map[string]string{"logs/app.log": "0123456789"})
	s := scanner.NewWithFs(fs)

	head, err := s.ReadHead(filepath.Join(root, "logs/app.log"), 4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(head))
}

func TestFileScanner_ExistsAndIsDir(t *testing.T) {
	fs := memProject(t, map[string]string{"static/site.css": "body{}"})
	s := scanner.NewWithFs(fs)

	assert.True(t, s.Exists(filepath.Join(root, "static/site.css")))
	assert.True(t, s.IsDir(filepath.Join(root, "static")))
	assert.False(t, s.IsDir(filepath.Join(root, "static/site.css")))
	assert.False(t, s.Exists(filepath.Join(root, "public")))
}

func TestFileScanner_ReadDir(t *testing.T) {
	fs := memProject(t, map[string]string{"logs/b.log": "b", "logs/a.log": "a"})
	now := time.Now()
	require.NoError(t, fs.Chtimes(filepath.Join(root, "logs/b.log"), now, now))
	s := scanner.NewWithFs(fs)

	entries, err := s.ReadDir(filepath.Join(root, "logs"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.log", entries[0].Name)
	assert.Equal(t, "b.log", entries[1].Name)
	assert.True(t, entries[1].ModTime.Equal(now))
}
