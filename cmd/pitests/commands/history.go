package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/pitests/internal/db"
	"github.com/celestiaorg/pitests/internal/db/models"
	"github.com/celestiaorg/pitests/internal/db/repos"
	"github.com/celestiaorg/pitests/internal/logger"
)

// runSummary is the listing view of a check run
type runSummary struct {
	ID         uint   `json:"id"`
	Host       string `json:"host"`
	StartedAt  string `json:"started_at"`
	DurationMS int64  `json:"duration_ms"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
}

func (c *cli) withRepo(fn func(repo *repos.CheckRunRepository) error) error {
	database, err := c.openDB()
	if err != nil {
		return fmt.Errorf("failed to open check history: %w", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Warnf("failed to close check history: %v", err)
		}
	}()
	return fn(repos.NewCheckRunRepository(database))
}

func (c *cli) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded preliminary check runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, err := cmd.Flags().GetInt(flagLimit)
			if err != nil {
				return fmt.Errorf("error getting limit flag: %w", err)
			}
			host, err := cmd.Flags().GetString(flagHost)
			if err != nil {
				return fmt.Errorf("error getting host flag: %w", err)
			}

			return c.withRepo(func(repo *repos.CheckRunRepository) error {
				runs, err := repo.List(cmd.Context(), &models.ListOptions{Limit: limit, Host: host})
				if err != nil {
					return fmt.Errorf("error listing check runs: %w", err)
				}

				output := make([]runSummary, 0, len(runs))
				for _, run := range runs {
					output = append(output, runSummary{
						ID:         run.ID,
						Host:       run.Host,
						StartedAt:  run.StartedAt.Format(time.RFC3339),
						DurationMS: run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
						Passed:     run.Passed,
						Failed:     run.Failed,
						Skipped:    run.Skipped,
					})
				}
				return printJSON(cmd, output)
			})
		},
	}
	cmd.Flags().IntP(flagLimit, "l", 10, "Number of runs to list")
	cmd.Flags().String(flagHost, "", "Only list runs against this host")

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a recorded check run with its results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}
			return c.withRepo(func(repo *repos.CheckRunRepository) error {
				run, err := repo.Get(cmd.Context(), uint(id))
				if err != nil {
					return err
				}
				return printJSON(cmd, run)
			})
		},
	})
	return cmd
}
