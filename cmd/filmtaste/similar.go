package main

import (
	"github.com/spf13/cobra"

	"github.com/rushteam/filmtaste/core"
)

var (
	similarK    int
	similarYear int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [films.json]",
	Short: "Score films and add them to the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var similarCmd = &cobra.Command{
	Use:   "similar [title]",
	Short: "Find indexed films closest to a film",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

func init() {
	similarCmd.Flags().IntVarP(&similarK, "limit", "n", 10, "number of neighbors")
	similarCmd.Flags().IntVar(&similarYear, "year", 0, "release year, used when the film must be analyzed first")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(similarCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	var films []*core.Film
	if err := readJSON(cmd, args[0], &films); err != nil {
		return err
	}
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	type result struct {
		Slug  string `json:"slug"`
		Added bool   `json:"added"`
		Error string `json:"error,omitempty"`
	}
	out := make([]result, 0, len(films))
	for _, f := range films {
		added, err := eng.AnalyzeAndStore(cmd.Context(), f)
		r := result{Slug: f.ID(), Added: added}
		if err != nil {
			r.Error = err.Error()
		}
		out = append(out, r)
	}
	return printJSON(cmd, out)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	film := core.NewFilm(args[0], similarYear)
	if _, err := eng.AnalyzeAndStore(cmd.Context(), film); err != nil {
		return err
	}
	recs, err := eng.FindSimilar(cmd.Context(), film, similarK)
	if err != nil {
		return err
	}
	return printJSON(cmd, recs)
}
