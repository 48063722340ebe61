package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/noah-isme/vgp-compliance-api/internal/dto"
	"github.com/noah-isme/vgp-compliance-api/internal/service"
	"github.com/noah-isme/vgp-compliance-api/pkg/datemath"
	"github.com/noah-isme/vgp-compliance-api/pkg/storage"
)

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <asset-id>",
		Short: "Show an asset's compliance status and the schedule that decided it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eval, err := a.compliance.Evaluate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), eval)
		},
	}
}

func newRentalCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rental-check <asset-id>",
		Short: "Tell whether an asset may be rented; exits 2 when blocked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decision, err := a.rentals.CheckRentalAllowed(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), decision); err != nil {
				return err
			}
			if !decision.Allowed {
				return errRentalBlocked
			}
			return nil
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	var (
		start  string
		end    string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute the compliance report for a window",
		Long: `Compute the compliance report numbers for an inclusive date window.
Without --format the report is printed as JSON. With --format csv or pdf the
rendered document is written to --out (or a default file name in the current
directory).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := dto.ComplianceReportQuery{Start: start, End: end, Format: format}
			if format == "" {
				report, err := a.reports.BuildReport(cmd.Context(), query)
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "compliance rate: %s %%\n", service.FormatRateFR(report.Summary.ComplianceRate))
				return nil
			}

			file, err := a.reports.Export(cmd.Context(), query)
			if err != nil {
				return err
			}
			dir, name := ".", file.Filename
			if out != "" {
				dir, name = filepath.Split(out)
			}
			store, err := storage.NewLocalStorage(dir)
			if err != nil {
				return err
			}
			path, err := store.Save(name, file.Data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(file.Data))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Window start, "+datemath.Layout+" (required)")
	cmd.Flags().StringVar(&end, "end", "", "Window end, "+datemath.Layout+" (required)")
	cmd.Flags().StringVar(&format, "format", "", "Render as csv or pdf instead of JSON")
	cmd.Flags().StringVar(&out, "out", "", "Output file for --format")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
