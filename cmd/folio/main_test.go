package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielmiguelok/golivefolio/internal/config"
	"github.com/gabrielmiguelok/golivefolio/internal/site"
	"github.com/gabrielmiguelok/golivefolio/pkg/content"
	"github.com/gabrielmiguelok/golivefolio/pkg/logging"
)

const testDoc = `{
  "profile": {
    "description": "Backend <b>developer</b>.",
    "skills_description": "Tools I use.",
    "contact_text": "Write to me@example.com"
  },
  "skills": [{"name": "Go"}, {"name": "Postgres"}],
  "projects": [
    {"title": "Ledger", "description": "Books.", "image": "/ledger.png", "tech": ["Go"], "links": {"repo": "https://example.com/ledger"}}
  ],
  "blog": [{"title": "On Go", "date": "2024-03-01", "excerpt": "Notes."}]
}`

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func testConfig(t *testing.T, source string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Content.Source = source
	cfg.Console.PrefsFile = filepath.Join(t.TempDir(), "prefs")
	cfg.Site.Owner = "Ada"
	return cfg
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "folio dev\n", out)
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o644))

	_, err := execute(t, "--config", path, "build", "--out", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug("hello", logging.String("k", "v"))
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)

	_, err = newLogger(config.LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	cfg := testConfig(t, writeDoc(t, testDoc))
	out := filepath.Join(t.TempDir(), "dist")

	require.NoError(t, build(context.Background(), cfg, out, true, logging.NopLogger{}))

	page, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `<html lang="en" class="dark">`)
	assert.Contains(t, string(page), "Ledger")
	assert.Contains(t, string(page), "Backend <b>developer</b>.")
	assert.NotContains(t, string(page), site.ClientScript)

	data, err := os.ReadFile(filepath.Join(out, "data.json"))
	require.NoError(t, err)
	assert.JSONEq(t, testDoc, string(data))
}

func TestBuild_MissingDocument(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.json"))

	err := build(context.Background(), cfg, t.TempDir(), false, logging.NopLogger{})
	assert.ErrorIs(t, err, content.ErrFetch)
}

func TestBuildCmd_EnvSource(t *testing.T) {
	t.Setenv("FOLIO_CONTENT_SOURCE", writeDoc(t, testDoc))
	dir := t.TempDir()

	out, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), "build", "--out", dir)
	require.NoError(t, err)
	assert.Equal(t, "Wrote "+filepath.Join(dir, "index.html")+"\n", out)
	assert.FileExists(t, filepath.Join(dir, "index.html"))
}

func TestInitCmd(t *testing.T) {
	t.Setenv("FOLIO_SITE_OWNER", "Ada")
	path := filepath.Join(t.TempDir(), "conf", "folio.yaml")

	out, err := execute(t, "--config", path, "init")
	require.NoError(t, err)
	assert.Equal(t, "Wrote "+path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "owner: Ada")

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada", loaded.Site.Owner)
	assert.Equal(t, config.DefaultConfig().Server.Addr, loaded.Server.Addr)
	assert.Equal(t, config.DefaultConfig().Server.MaxSessions, loaded.Server.MaxSessions)
}

func TestInitCmd_KeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site:\n  owner: Grace\n"), 0o644))

	_, err := execute(t, "--config", path, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "--config", path, "init", "--force")
	require.NoError(t, err)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Grace", loaded.Site.Owner)
	assert.Equal(t, ":8080", loaded.Server.Addr)
}
