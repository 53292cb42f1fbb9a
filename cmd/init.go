package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hudumalabs/districtbot/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize districtbot configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the WhatsApp credentials, language and knowledge sources, and writes a .districtbot.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
