package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Rescore every stored job against the current profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			n, err := a.runner.Score(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d jobs scored\n", color.GreenString("✓"), n)
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Fetch new listings from every source, then score",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			res, err := a.runner.Search(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Search complete. %d new jobs found, %d scored.\n",
				color.GreenString("✓"), res.NewJobs, res.Scored)
			return nil
		})
	},
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Run the daily pipeline once: search, score and send one email",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			res, err := a.runner.Daily(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d new jobs, %d scored\n", color.GreenString("✓"), res.NewJobs, res.Scored)
			if res.Email != nil {
				fmt.Fprintf(out, "%s Emailed %s about %s (%s)\n",
					color.GreenString("✓"), res.Email.Company, res.Email.Role, res.Email.To)
			} else {
				fmt.Fprintf(out, "%s No email sent\n", color.YellowString("⚠"))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd, searchCmd, dailyCmd)
}
