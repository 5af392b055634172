package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/gh-labeler/internal/config"
	"github.com/Kavirubc/gh-labeler/internal/github"
	"github.com/Kavirubc/gh-labeler/internal/labels"
)

// loadConfig loads the config file. Commands that can run on defaults
// pass required=false.
func loadConfig(required bool) (*config.Config, error) {
	if required {
		cfgPath := config.FindConfigPath(cfgFile)
		if cfgPath == "" {
			return nil, fmt.Errorf("config file not found")
		}
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	cfg, _, err := config.LoadOptional(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func reportConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	for _, e := range errs {
		fmt.Printf("config error: %v\n", e)
	}
	return fmt.Errorf("invalid configuration")
}

// githubOptions builds client options from config and the --token flag
func githubOptions(cfg *config.Config) github.Options {
	labelRetries := cfg.LabelRetryPolicy()
	return github.Options{
		Token:             cfg.ResolveToken(token),
		Host:              cfg.GitHub.Host,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		MaxLabels:         cfg.Download.MaxLabels,
		MaxFiles:          cfg.Download.MaxFiles,
		LabelRetries:      &labelRetries,
	}
}

// filterFor builds the label filter for a repository. A non-empty
// override wins over the config.
func filterFor(cfg *config.Config, override, org, repo string) (*labels.Filter, error) {
	prefix := override
	if prefix == "" {
		prefix = cfg.GetLabelPrefix(org, repo)
	}
	f, err := labels.NewPrefixFilter(prefix)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w (use --label-prefix)", org, repo, err)
	}
	return f, nil
}

// splitList splits a comma separated flag value, dropping empty entries
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// signalContext is canceled on interrupt
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}
