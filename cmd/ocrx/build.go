package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Datenflix007/OCR-Extractor/internal/textsource"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/config"
)

type workFlags struct {
	docType string
	outDir  string
}

func (f *workFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.docType, "type", "t", "", "Document type: annals or other (defaults to settings doc_type)")
	cmd.Flags().StringVarP(&f.outDir, "out", "o", "", "Output directory (defaults to settings output_dir)")
}

// resolve merges the flags over the loaded settings.
func (f *workFlags) resolve(s config.Settings) (ocrx.DocType, string, error) {
	raw := s.DocType
	if f.docType != "" {
		raw = f.docType
	}
	docType, err := ocrx.ParseDocType(raw)
	if err != nil {
		return "", "", err
	}
	out := s.OutputDir
	if f.outDir != "" {
		out = f.outDir
	}
	return docType, out, nil
}

func newBuildCmd(a *app) *cobra.Command {
	var (
		name  string
		flags workFlags
	)
	cmd := &cobra.Command{
		Use:   "build [flags] FILE...",
		Short: "Build one work from text or hOCR files",
		Long: `Reads the files in order as the pages of one work, detects entities,
links their mentions and writes the work tree below the output directory.
An existing tree of the same name is replaced.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := a.components(cmd)
			if err != nil {
				return err
			}
			docType, out, err := flags.resolve(comp.Settings)
			if err != nil {
				return err
			}
			text, err := textsource.Load(args...)
			if err != nil {
				return err
			}
			if name == "" {
				name = stem(args[0])
			}

			engine, err := ocrx.New(ocrx.Options{OutputDir: out, Detector: comp.Detector, Logger: a.logger})
			if err != nil {
				return err
			}
			sum, err := engine.Build(cmd.Context(), ocrx.WorkRequest{Name: name, Text: text, Type: docType})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), sum)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Work name (defaults to the first file name)")
	flags.register(cmd)
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		workers int
		flags   workFlags
	)
	cmd := &cobra.Command{
		Use:   "batch [flags] DIR",
		Short: "Build one work per file in a directory",
		Long: `Every .txt, .html or .hocr file directly inside DIR becomes a work named
after the file. Works are built in parallel.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := a.components(cmd)
			if err != nil {
				return err
			}
			docType, out, err := flags.resolve(comp.Settings)
			if err != nil {
				return err
			}
			files, err := textsource.List(args[0])
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no input files in %s", args[0])
			}

			reqs := make([]ocrx.WorkRequest, 0, len(files))
			var loadErrs []error
			for _, f := range files {
				text, err := textsource.Load(f)
				if err != nil {
					a.logger.Warn("skipping input", "file", f, "err", err)
					loadErrs = append(loadErrs, err)
					continue
				}
				reqs = append(reqs, ocrx.WorkRequest{Name: stem(f), Text: text, Type: docType})
			}

			if !cmd.Flags().Changed("workers") {
				workers = comp.Settings.Workers
			}
			engine, err := ocrx.New(ocrx.Options{OutputDir: out, Detector: comp.Detector, Workers: workers, Logger: a.logger})
			if err != nil {
				return err
			}
			sums, err := engine.BuildAll(cmd.Context(), reqs)
			built := make([]*ocrx.Summary, 0, len(sums))
			for _, s := range sums {
				if s != nil {
					built = append(built, s)
				}
			}
			if werr := writeJSON(cmd.OutOrStdout(), built); werr != nil {
				return werr
			}
			return errors.Join(append(loadErrs, err)...)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Parallel works (defaults to settings workers, then CPU count)")
	flags.register(cmd)
	return cmd
}
