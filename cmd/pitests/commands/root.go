// Package commands implements the pitests command line interface
package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/checks"
	"github.com/celestiaorg/pitests/internal/db"
)

// flag names
const (
	flagSettings    = "settings"
	flagTimeout     = "timeout"
	flagRecord      = "record"
	flagPushgateway = "pushgateway"
	flagKey         = "key"
	flagNewKey      = "new-key"
	flagLimit       = "limit"
	flagHost        = "host"
)

// defaultTimeout bounds each request to the PI System
const defaultTimeout = 30 * time.Second

// cli holds the state shared by the commands of one invocation
type cli struct {
	settingsPath string
	timeout      time.Duration
	settings     *config.Settings
	openDB       func() (*gorm.DB, error)
	resolver     checks.Resolver
}

// openHistoryDB connects to the check history database named by the PITESTS_DB_* variables
func openHistoryDB() (*gorm.DB, error) {
	opts, err := db.OptionsFromEnv()
	if err != nil {
		return nil, err
	}
	return db.New(opts)
}

// NewRootCmd builds the pitests command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(&cli{openDB: openHistoryDB})
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pitests",
		Short: "pitests - acceptance checks for a deployed PI System",
		Long: `pitests validates a deployed PI System (Data Archive, AF Server, Analysis, PI Vision and
PI Web API) through PI Web API. The acceptance tests run with "go test ./test/...";
this tool runs the preliminary checks, reports product versions and manages settings.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			store, err := config.Load(c.settingsPath)
			if err != nil {
				return err
			}
			c.settings = config.NewSettings(store)
			if c.timeout <= 0 {
				return fmt.Errorf("timeout must be positive, got %s", c.timeout)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.settingsPath, flagSettings, "",
		fmt.Sprintf("Settings file (env: %s, default %s)", config.SettingsFileEnv, config.DefaultSettingsFile))
	rootCmd.PersistentFlags().DurationVar(&c.timeout, flagTimeout, defaultTimeout, "Timeout of each request to the PI System")

	rootCmd.AddCommand(c.checkCmd())
	rootCmd.AddCommand(c.versionsCmd())
	rootCmd.AddCommand(c.encryptCmd())
	rootCmd.AddCommand(c.historyCmd())
	return rootCmd
}

// Execute runs the command tree against the process arguments
func Execute() error {
	return NewRootCmd().Execute()
}

// printJSON writes v as indented JSON to the command output
func printJSON(cmd *cobra.Command, v interface{}) error {
	prettyJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(prettyJSON))
	return err
}
