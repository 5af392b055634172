package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/gh-labeler/internal/config"
	"github.com/Kavirubc/gh-labeler/internal/github"
	"github.com/Kavirubc/gh-labeler/internal/processor"
)

func newSearchCmd() *cobra.Command {
	var (
		repo  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the labeled corpus (debugging/testing)",
		Long:  `Show the corpus records nearest to a free text query.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, name, err := github.ParseRepo(repo)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(true)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			if err := reportConfigErrors(config.ValidateIndex(cfg)); err != nil {
				return err
			}

			searcher, err := processor.NewSearcher(cfg)
			if err != nil {
				return fmt.Errorf("failed to create searcher: %w", err)
			}
			defer searcher.Close()

			results, err := searcher.Search(cmd.Context(), org, name, args[0], limit)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if len(results) == 0 {
				fmt.Println("No matching records found")
				return nil
			}

			fmt.Printf("Found %d records:\n\n", len(results))
			for i, r := range results {
				fmt.Printf("%d. [%s] %s\n", i+1, r.Label, r.Title)
				fmt.Printf("   Kind: %s | Similarity: %.1f%%\n\n", r.Kind, r.Score*100)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "repository collection to search (owner/repo)")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results to return")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}
