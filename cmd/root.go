package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "districtbot",
	Short: "WhatsApp citizen services assistant for a district council",
	Long: `DistrictBot runs a WhatsApp assistant for district government services:
citizens check application statuses, submit complaints and questions, and
track their tickets, while officers answer from a web dashboard. Questions
are auto-answered from the district's official knowledge sources when
possible.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".districtbot.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
