package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/go-jsonschema/normalize/internal/driver"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <unnormalized-dir> <normalized-dir>",
		Short: "Report blow-up statistics between original and normalized schemas",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := driver.Stats(args[0], args[1])
			if err != nil {
				return err
			}
			slog.Info("stats",
				"single_files", report.SingleFileCount, "distributed_files", report.DistributedFileCount,
				"avg_loc_single", report.AvgLoCSingleFile, "avg_loc_single_normalized", report.AvgLoCSingleFileNorm,
				"avg_loc_distributed", report.AvgLoCDistributedFile, "avg_loc_distributed_normalized", report.AvgLoCDistributedFileNorm,
				"blowup_single", report.BlowUpSingleFile, "blowup_distributed", report.BlowUpDistributedFile,
				"avg_loc_overall", report.AvgLoCOverall, "blowup_overall", report.BlowUpOverall)
			return nil
		},
	}
}
