package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mountarc/mountarc-api/config"
	"github.com/mountarc/mountarc-api/internal/templates"
)

var rootCmd = &cobra.Command{
	Use:   "mailpreview",
	Short: "Render MountArc transactional emails to HTML files",
	Long: `mailpreview renders the notification and confirmation emails with sample
submissions so template changes can be reviewed in a browser before deploying.

Brand details come from the same environment variables as the API.

Example:
  mailpreview render                          # every form type into ./previews
  mailpreview render --type discovery --out /tmp/mail`,
	SilenceUsage: true,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write preview HTML for one or all form types",
	RunE: func(cmd *cobra.Command, args []string) error {
		formType, _ := cmd.Flags().GetString("type") //nolint:errcheck
		outDir, _ := cmd.Flags().GetString("out")    //nolint:errcheck

		types, err := previewTypes(formType)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		location, err := time.LoadLocation(cfg.Brand.Timezone)
		if err != nil {
			return err
		}

		renderer, err := templates.NewRenderer(templates.Brand{
			CompanyName:  cfg.Brand.CompanyName,
			LegalName:    cfg.Brand.LegalName,
			WebsiteURL:   cfg.Brand.WebsiteURL,
			LinkedInURL:  cfg.Brand.LinkedInURL,
			ContactEmail: cfg.Brand.ContactEmail,
			Location:     location,
		})
		if err != nil {
			return err
		}

		written, err := writePreviews(renderer, types, outDir, time.Now())
		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return err
	},
}

func init() {
	renderCmd.Flags().String("type", "all", "form type to render: contact, discovery, newsletter or all")
	renderCmd.Flags().String("out", "previews", "directory to write HTML files into")
	rootCmd.AddCommand(renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
