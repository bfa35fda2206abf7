package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rushteam/filmtaste/dimension"
)

var (
	dimCategory string
	dimJSON     bool
)

var dimensionsCmd = &cobra.Command{
	Use:   "dimensions",
	Short: "List the taste dimensions",
	Args:  cobra.NoArgs,
	RunE:  runDimensions,
}

func init() {
	dimensionsCmd.Flags().StringVar(&dimCategory, "category", "", "only list one category")
	dimensionsCmd.Flags().BoolVar(&dimJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(dimensionsCmd)
}

func runDimensions(cmd *cobra.Command, _ []string) error {
	dims := dimension.All()
	if dimCategory != "" {
		dims = dimension.InCategory(dimension.Category(dimCategory))
		if len(dims) == 0 {
			return fmt.Errorf("unknown category %q", dimCategory)
		}
	}
	if dimJSON {
		return printJSON(cmd, dims)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tCATEGORY\t1\t7")
	for _, d := range dims {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", int(d.ID), d.Name, d.Category, d.Low, d.High)
	}
	return w.Flush()
}
