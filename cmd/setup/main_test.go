package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitWritesEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"init", "--env-file", envFile})
	cmd.SetIn(strings.NewReader("my-shop.myshopify.com\nshpat_token\n\n\n"))
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(envFile)
	require.NoError(t, err)
	env := string(raw)
	require.Contains(t, env, "COMMERCE_STORE_DOMAIN=my-shop.myshopify.com")
	require.Contains(t, env, "COMMERCE_STOREFRONT_TOKEN=shpat_token")
	require.Contains(t, env, "COMMERCE_API_VERSION=2024-01")
	require.NotContains(t, env, "CONTENT_BASE_URL")
	require.NotContains(t, env, "DEMO_MODE")
}

func TestInitDefaultsToDemoMode(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"init", "--env-file", envFile})
	cmd.SetIn(strings.NewReader("\n\n"))
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(envFile)
	require.NoError(t, err)
	require.Contains(t, string(raw), "DEMO_MODE=true")
}

func TestCheckFailsWhenNothingConfigured(t *testing.T) {
	t.Setenv("COMMERCE_STORE_DOMAIN", "")
	t.Setenv("COMMERCE_STOREFRONT_TOKEN", "")
	t.Setenv("CONTENT_BASE_URL", "")
	t.Setenv("DEMO_MODE", "")

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"check"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	require.Error(t, cmd.Execute())
}
