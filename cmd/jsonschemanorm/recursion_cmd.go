package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/go-jsonschema/normalize/internal/driver"
)

func recursionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recursion <normalized-dir>",
		Short: "Classify recursion for every already-normalized schema in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metrics := driver.NewMetrics(prometheus.DefaultRegisterer)
			sum, err := driver.Classify(args[0], metrics, slog.Default())
			if err != nil {
				return err
			}
			slog.Info("recursion run complete",
				"total", sum.Total, "recursive", sum.Recursive,
				"unguarded_recursive", sum.UnguardedRecursive, "illegal_draft", sum.IllegalDraft)
			return nil
		},
	}
}
