package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/pitests/internal/checks"
	"github.com/celestiaorg/pitests/internal/constants"
	"github.com/celestiaorg/pitests/internal/db"
	"github.com/celestiaorg/pitests/internal/db/repos"
	"github.com/celestiaorg/pitests/internal/logger"
	"github.com/celestiaorg/pitests/internal/metrics"
)

func (c *cli) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the preliminary checks against the configured PI System",
		Long: `Run the preliminary checks: required settings, host resolution, the PI Web API home
page and configuration element, the AF Server and Data Archive, the analysis service,
PI Vision and the latest patch of every configured product. Exits non-zero when a
check fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			record, err := cmd.Flags().GetBool(flagRecord)
			if err != nil {
				return fmt.Errorf("error getting record flag: %w", err)
			}
			gateway, err := cmd.Flags().GetString(flagPushgateway)
			if err != nil {
				return fmt.Errorf("error getting pushgateway flag: %w", err)
			}
			if gateway == "" {
				gateway = os.Getenv(constants.EnvPushgateway)
			}

			metrics.Init()
			opts := []checks.Option{checks.WithTimeout(c.timeout)}
			if c.resolver != nil {
				opts = append(opts, checks.WithResolver(c.resolver))
			}
			if record {
				database, err := c.openDB()
				if err != nil {
					return fmt.Errorf("failed to open check history: %w", err)
				}
				defer func() {
					if err := db.Close(database); err != nil {
						logger.Warnf("failed to close check history: %v", err)
					}
				}()
				opts = append(opts, checks.WithRecorder(repos.NewCheckRunRepository(database)))
			}

			run, err := checks.NewRunner(c.settings, opts...).Run(cmd.Context())
			if run != nil {
				if printErr := printJSON(cmd, run); printErr != nil {
					return printErr
				}
			}
			if err != nil {
				return err
			}

			if gateway != "" {
				if err := metrics.Push(gateway, "pitests_check", run.Host); err != nil {
					return err
				}
			}
			if !run.Succeeded() {
				return fmt.Errorf("%d of %d preliminary checks failed", run.Failed, len(run.Results))
			}
			return nil
		},
	}

	cmd.Flags().Bool(flagRecord, false, "Store the run in the check history database (env: PITESTS_DB_*)")
	cmd.Flags().String(flagPushgateway, "", "Push check metrics to this Prometheus Pushgateway (env: "+constants.EnvPushgateway+")")
	return cmd
}
