package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/gh-labeler/internal/config"
	"github.com/Kavirubc/gh-labeler/internal/github"
	"github.com/Kavirubc/gh-labeler/internal/processor"
)

func newIndexCmd() *cobra.Command {
	var (
		repo  string
		files []string
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Load downloaded TSV files into the vector database",
		Long: `Embed every record of the given corpus files into the repository's
label collection. The vector prediction engine votes over this collection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			org, name, err := github.ParseRepo(repo)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(true)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				files = corpusFiles(cfg)
			}
			if len(files) == 0 {
				return errors.New("--file is required when the config names no issue_data or pull_data")
			}
			cmd.SilenceUsage = true

			if err := reportConfigErrors(config.ValidateIndex(cfg)); err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()

			indexer, err := processor.NewIndexer(cfg, dryRun)
			if err != nil {
				return fmt.Errorf("failed to create indexer: %w", err)
			}
			defer indexer.Close()

			for _, path := range files {
				stats, err := indexer.IndexFile(ctx, path, org, name)
				if err != nil {
					return fmt.Errorf("indexing %s failed: %w", path, err)
				}

				fmt.Printf("%s: indexed %d/%d records (%d skipped, %d errors) in %dms\n",
					path, stats.Indexed, stats.TotalRecords, stats.Skipped, stats.Errors, stats.DurationMs)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "repository the corpus belongs to (owner/repo)")
	cmd.Flags().StringSliceVar(&files, "file", nil, "corpus TSV files (defaults to download.issue_data and download.pull_data)")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}

func corpusFiles(cfg *config.Config) []string {
	var files []string
	for _, p := range []string{cfg.Download.IssueData, cfg.Download.PullData} {
		if p != "" {
			files = append(files, p)
		}
	}
	return files
}
