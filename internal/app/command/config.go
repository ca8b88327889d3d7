package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	configFlag = "config"
)

func AddConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(configFlag, "", "YAML file with pack settings")
}

func GetConfigFile(cmd *cobra.Command) (string, error) {
	cfgFile, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return "", fmt.Errorf("get config flag: %w", err)
	}
	return cfgFile, nil
}
