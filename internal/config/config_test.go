package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/unload/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unload.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileValues(t *testing.T) {
	path := writeFile(t, `
listen_addr: ":9000"
timezone: Europe/Berlin
dedup_against_active: true
llm:
  provider: ollama
  model: llama3.2
jobs:
  clarity_enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.True(t, cfg.DedupAgainstActive)
	assert.True(t, cfg.Jobs.ClarityEnabled)
	assert.Equal(t, "0 6 * * *", cfg.Jobs.ClarityCron)
	assert.Equal(t, 20000, cfg.MaxDumpChars)

	lc := cfg.LLMConfig()
	assert.Equal(t, llm.ProviderOllama, lc.Provider)
	assert.Equal(t, llm.DefaultOllamaEndpoint, lc.Endpoint)
	assert.Equal(t, "llama3.2", lc.Model)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "listen_addr: \":9000\"\n")
	t.Setenv("UNLOAD_LISTEN_ADDR", ":7000")
	t.Setenv("UNLOAD_AUTH_JWT_SECRET", "shh")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, "shh", cfg.Auth.JWTSecret)
	assert.Equal(t, "sk-test", cfg.LLMConfig().APIKey)
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", cfg.Timezone)
	assert.False(t, cfg.Production())
	assert.Equal(t, llm.ProviderAnthropic, cfg.LLMConfig().Provider)
	sc, err := cfg.ServiceConfig()
	require.NoError(t, err)
	assert.False(t, sc.DedupAgainstActive)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLocation_Invalid(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	_, err := cfg.Location()
	assert.Error(t, err)
}
