package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/pitests/internal/fixtures"
	"github.com/celestiaorg/pitests/internal/skip"
)

// productVersion is one line of the versions report
type productVersion struct {
	Product   skip.Product `json:"product"`
	Installed string       `json:"installed,omitempty"`
	Current   string       `json:"current,omitempty"`
	Release   string       `json:"release,omitempty"`
	UpToDate  bool         `json:"up_to_date"`
	Error     string       `json:"error,omitempty"`
}

func (c *cli) versionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "Report the installed version of every configured product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := fixtures.NewEnvironment(c.settings, c.timeout)
			if err != nil {
				return err
			}
			evaluator := skip.NewEvaluator(c.settings.Store(), env, nil)

			var report []productVersion
			for _, th := range evaluator.Thresholds() {
				if !th.Current {
					continue
				}
				if evaluator.Setting(th.Setting, skip.KindString).Skipped() {
					continue
				}

				line := productVersion{Product: th.Product, Current: th.Minimum, Release: th.Label}
				installed, err := env.ProductVersion(cmd.Context(), th.Product)
				switch {
				case errors.Is(err, skip.ErrNoVersionSource):
					continue
				case err != nil:
					line.Error = err.Error()
				default:
					line.Installed = installed
					line.UpToDate = !evaluator.Feature(cmd.Context(), th.Feature, false).Skipped()
				}
				report = append(report, line)
			}
			return printJSON(cmd, report)
		},
	}
}
