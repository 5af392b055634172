package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/gh-labeler/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := config.FindConfigPath(cfgFile)
			if cfgPath == "" {
				return fmt.Errorf("config file not found")
			}
			cmd.SilenceUsage = true

			fmt.Printf("Validating config: %s\n", cfgPath)

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			errs := config.Validate(cfg)
			if len(errs) > 0 {
				fmt.Println("\nValidation errors:")
				for _, e := range errs {
					fmt.Printf("  - %v\n", e)
				}
				return fmt.Errorf("configuration is invalid")
			}

			fmt.Println("\nConfiguration is valid!")
			fmt.Printf("  - Label prefix: %q\n", cfg.Download.LabelPrefix)
			fmt.Printf("  - Page retries: %s s, label retries: %s s\n", cfg.RetryPolicy(), cfg.LabelRetryPolicy())
			fmt.Printf("  - Engine: %s (threshold %.2f)\n", cfg.Predictor.Engine, cfg.Predictor.Threshold)
			if cfg.Predictor.Engine == config.EngineVector {
				fmt.Printf("  - Qdrant URL: %s\n", cfg.Qdrant.URL)
				fmt.Printf("  - Primary embedding: %s (%s)\n", cfg.Embedding.Primary.Provider, cfg.Embedding.Primary.Model)
			} else {
				fmt.Printf("  - LLM: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
			}
			fmt.Printf("  - Repositories: %d configured, %d enabled\n", len(cfg.Repositories), len(cfg.EnabledRepositories()))

			return nil
		},
	}
}
