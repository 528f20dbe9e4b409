package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/constants"
)

// encryptOutput is the result of the encrypt command
type encryptOutput struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

func (c *cli) encryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt VALUE",
		Short: "Encrypt a credential for the settings file",
		Long: `Encrypt a credential such as PIWebAPIUser or PIWebAPIPassword. The key is read from
--key, then from the ` + constants.SettingEncryptionKey + ` setting; --new-key generates one
and prints it alongside the encrypted value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := cmd.Flags().GetString(flagKey)
			if err != nil {
				return fmt.Errorf("error getting key flag: %w", err)
			}
			newKey, err := cmd.Flags().GetBool(flagNewKey)
			if err != nil {
				return fmt.Errorf("error getting new-key flag: %w", err)
			}

			output := encryptOutput{}
			switch {
			case newKey:
				if key, err = config.NewKey(); err != nil {
					return err
				}
				output.Key = key
			case key == "":
				if key, _ = c.settings.Value(constants.SettingEncryptionKey, false); key == "" {
					return fmt.Errorf("no encryption key: pass --%s, --%s or set %s", flagKey, flagNewKey, constants.SettingEncryptionKey)
				}
			}

			output.Value, err = config.Encrypt(args[0], key)
			if err != nil {
				return err
			}
			return printJSON(cmd, output)
		},
	}

	cmd.Flags().String(flagKey, "", "Encryption key, dash separated hex")
	cmd.Flags().Bool(flagNewKey, false, "Generate a new encryption key")
	cmd.MarkFlagsMutuallyExclusive(flagKey, flagNewKey)
	return cmd
}
