package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var verbose bool
	log := logrus.New()
	log.SetOutput(os.Stderr)

	rootCmd := &cobra.Command{
		Use:           "pumpcalc",
		Short:         "Pumping-station hydraulics from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log intermediate values to stderr")

	rootCmd.AddCommand(calcCmd(log))
	rootCmd.AddCommand(reportCmd(log))
	rootCmd.AddCommand(templateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
