package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Datenflix007/OCR-Extractor/internal/textsource"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/register"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/segment"
)

func newSegmentCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "segment FILE...",
		Short: "Print the year segments of the text as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textsource.Load(args...)
			if err != nil {
				return err
			}
			years := segment.Split(text)
			if years == nil {
				years = []segment.Year{}
			}
			return writeJSON(cmd.OutOrStdout(), years)
		},
	}
}

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect FILE...",
		Short: "Print the detected entities as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := a.components(cmd)
			if err != nil {
				return err
			}
			text, err := textsource.Load(args...)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), comp.Detector.Detect(cmd.Context(), text))
		},
	}
}

func newVerifyCmd(_ *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "verify WORKDIR",
		Short: "Check the links of a built work",
		Long: `Parses every page of the work and reports links to missing files and
register pages that their category index does not list. Exits non-zero
when anything is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := register.Verify(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				for _, b := range report.Broken {
					fmt.Fprintf(out, "broken\t%s\t%s\n", b.Page, b.Target)
				}
				for _, o := range report.Orphans {
					fmt.Fprintf(out, "orphan\t%s\n", o)
				}
				fmt.Fprintf(out, "%d pages, %d links\n", report.Pages, report.Links)
			}
			if !report.OK() {
				return fmt.Errorf("%d broken links, %d orphans", len(report.Broken), len(report.Orphans))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}
