// Command setup checks and bootstraps the storefront's backend
// configuration: an init wizard that writes an env file, and a check
// command that verifies the configured backends answer.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nextagencyio/decoupled-commerce/internal/commerce"
	"github.com/nextagencyio/decoupled-commerce/internal/config"
	"github.com/nextagencyio/decoupled-commerce/internal/content"
)

// RootOptions holds global flags shared by all subcommands.
type RootOptions struct {
	EnvFile string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure and verify the storefront backends",
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path of the env file the wizard writes")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))

	return cmd
}

// NewInitCommand creates the interactive wizard. It asks for the commerce
// and content credentials and writes them as an env file; empty answers
// leave a backend unconfigured.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "init",
		Short:        "Interactively write the storefront env file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	ask := func(prompt, def string) (string, error) {
		if def != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, def)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		line, err := in.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return def, nil
		}
		return line, nil
	}

	fmt.Fprintln(out, "Commerce backend (leave the domain empty to skip)")
	storeDomain, err := ask("  store domain (e.g. my-shop.myshopify.com)", "")
	if err != nil {
		return err
	}
	var storefrontToken, apiVersion string
	if storeDomain != "" {
		if storefrontToken, err = ask("  storefront access token", ""); err != nil {
			return err
		}
		if apiVersion, err = ask("  API version", "2024-01"); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "Content backend (leave the base URL empty to skip)")
	contentURL, err := ask("  CMS base URL (e.g. https://cms.example.com)", "")
	if err != nil {
		return err
	}
	var clientID, clientSecret string
	if contentURL != "" {
		if clientID, err = ask("  OAuth client id (empty for anonymous)", ""); err != nil {
			return err
		}
		if clientID != "" {
			if clientSecret, err = ask("  OAuth client secret", ""); err != nil {
				return err
			}
		}
	}

	demoMode := storeDomain == "" && contentURL == ""
	if demoMode {
		fmt.Fprintln(out, "No backends configured; enabling demo mode.")
	}

	var b strings.Builder
	writeVar := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s=%s\n", key, value)
		}
	}
	writeVar("COMMERCE_STORE_DOMAIN", storeDomain)
	writeVar("COMMERCE_STOREFRONT_TOKEN", storefrontToken)
	writeVar("COMMERCE_API_VERSION", apiVersion)
	writeVar("CONTENT_BASE_URL", contentURL)
	writeVar("CONTENT_CLIENT_ID", clientID)
	writeVar("CONTENT_CLIENT_SECRET", clientSecret)
	if demoMode {
		writeVar("DEMO_MODE", "true")
	}

	if err := os.WriteFile(opts.EnvFile, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", opts.EnvFile, err)
	}
	fmt.Fprintf(out, "Wrote %s\n", opts.EnvFile)
	return nil
}

// NewCheckCommand creates the check command. It reads configuration from the
// environment and pings every configured backend.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "check",
		Short:        "Verify the configured backends answer",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd)
		},
	}
}

func runCheck(cmd *cobra.Command) error {
	cfg := config.FromEnv()
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	checked := false
	var failed bool

	if cfg.CommerceConfigured() {
		checked = true
		client := commerce.New(cfg.CommerceStoreDomain, cfg.CommerceStorefrontToken, cfg.CommerceAPIVersion, nil)
		if err := client.Ping(ctx); err != nil {
			failed = true
			fmt.Fprintf(out, "commerce: FAIL (%v)\n", err)
		} else {
			fmt.Fprintf(out, "commerce: ok (%s)\n", cfg.CommerceStoreDomain)
		}
	} else {
		fmt.Fprintln(out, "commerce: not configured")
	}

	if cfg.ContentConfigured() {
		checked = true
		tokens := content.NewTokenCache(cfg.ContentBaseURL, cfg.ContentClientID, cfg.ContentClientSecret)
		client := content.New(cfg.ContentBaseURL, tokens, nil)
		if err := client.Ping(ctx); err != nil {
			failed = true
			fmt.Fprintf(out, "content: FAIL (%v)\n", err)
		} else {
			fmt.Fprintf(out, "content: ok (%s)\n", cfg.ContentBaseURL)
		}
	} else {
		fmt.Fprintln(out, "content: not configured")
	}

	if cfg.DemoMode {
		fmt.Fprintln(out, "demo mode: enabled")
	}
	if !checked && !cfg.DemoMode {
		return fmt.Errorf("no backend configured and demo mode is off; run `setup init` first")
	}
	if failed {
		return fmt.Errorf("one or more backends failed the check")
	}
	return nil
}

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
