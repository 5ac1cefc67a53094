package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

var ephemeral bool

var rootCmd = &cobra.Command{
	Use:     "donatehub",
	Short:   "DonateHub donation companion: submit donations and follow their payment status",
	Version: Version,
	// errors are printed once below
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep donation references in memory only")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(donateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(refsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
