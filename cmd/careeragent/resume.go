package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"careeragent/internal/config"
	"careeragent/internal/outreach"
)

var importResumeCmd = &cobra.Command{
	Use:   "import-resume <file.pdf>",
	Short: "Parse a PDF resume and replace the stored profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read resume: %w", err)
		}
		return withApp(cmd.Context(), func(a *app) error {
			p, err := a.profiles.Upload(cmd.Context(), filepath.Base(args[0]), data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Resume parsed successfully.\n", color.GreenString("✓"))
			fmt.Fprintf(out, "  Skills:  %s\n", strings.Join(p.Skills, ", "))
			fmt.Fprintf(out, "  Domains: %s\n", strings.Join(p.Domains, ", "))
			fmt.Fprintf(out, "  Level:   %s\n", p.ExperienceLevel)
			fmt.Fprintf(out, "  Roles:   %s\n", strings.Join(p.PreferredRoles, ", "))
			if p.Contact.FullName != "" || p.Contact.Email != "" {
				fmt.Fprintf(out, "  Contact: %s <%s>\n", p.Contact.FullName, p.Contact.Email)
			}
			return nil
		})
	},
}

var gmailAuthCmd = &cobra.Command{
	Use:   "gmail-auth",
	Short: "Authorise Gmail sending and store the OAuth token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return outreach.Authorize(cmd.Context(), cfg.GmailCredentialsPath, cfg.GmailTokenPath,
			cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(importResumeCmd, gmailAuthCmd)
}
