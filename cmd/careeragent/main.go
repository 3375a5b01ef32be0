// careeragent: resume-driven job discovery, scoring and outreach.
//
// Subcommands:
//   - serve         HTTP API + gRPC + daily scheduler
//   - score         one scoring pass over stored jobs
//   - search        fetch new listings, then score
//   - daily         search, score and send one application email
//   - list          coloured job table
//   - import-resume parse a PDF resume into the profile
//   - gmail-auth    one-time Gmail OAuth consent
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "careeragent",
	Short:         "Resume-driven job discovery, scoring and outreach",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
