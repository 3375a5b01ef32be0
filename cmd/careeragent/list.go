package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"careeragent/internal/logger"
	"careeragent/internal/model"
	"careeragent/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print stored jobs, best match first",
	RunE:  runList,
}

func init() {
	listCmd.Flags().String("category", "", "Only jobs with this status (e.g. \"High Priority\")")
	listCmd.Flags().String("source", "", "Only jobs from this source (e.g. LinkedIn)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	category, _ := cmd.Flags().GetString("category")
	source, _ := cmd.Flags().GetString("source")

	return withApp(cmd.Context(), func(a *app) error {
		jobs, err := a.tracker.ListJobs(cmd.Context(), store.JobFilter{Status: category, Source: source})
		if err != nil {
			return err
		}
		printJobs(cmd.OutOrStdout(), jobs)
		return nil
	})
}

func printJobs(w io.Writer, jobs []model.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs found.")
		return
	}

	fmt.Fprintf(w, "%-5s %-20s %-30s %-7s %-14s %-10s\n", "ID", "Company", "Role", "Score", "Status", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 91))

	for _, j := range jobs {
		fmt.Fprintf(w, "%-5d %-20s %-30s %s %-14s %-10s\n",
			j.ID,
			logger.Truncate(j.Company, 17),
			logger.Truncate(j.Role, 27),
			scoreColor(j.ConfidenceScore),
			j.Status,
			j.Source,
		)
	}
}

// scoreColor pads before colouring so escape codes do not break alignment.
func scoreColor(score float64) string {
	s := fmt.Sprintf("%-7.2f", score)
	switch {
	case score >= 80:
		return color.GreenString("%s", s)
	case score >= 60:
		return color.YellowString("%s", s)
	default:
		return color.RedString("%s", s)
	}
}
