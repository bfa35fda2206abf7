package main

import (
	"github.com/spf13/cobra"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/recommend"
	"github.com/rushteam/filmtaste/store"
)

var fingerprintAnalyze bool

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint [films.json]",
	Short: "Build a taste fingerprint",
	Long: `Without --analyze, reads a JSON array of {"film": {...}, "dimensional_scores": {...}}
and aggregates the scores directly. With --analyze, reads a JSON array of films,
scores any film not yet in the index and caches the result.`,
	Args: cobra.ExactArgs(1),
	RunE: runFingerprint,
}

var profileCmd = &cobra.Command{
	Use:   "profile [films.json]",
	Short: "Aggregate the category profile of loved films",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

func init() {
	fingerprintCmd.Flags().BoolVar(&fingerprintAnalyze, "analyze", false, "score films through the configured scorer and index")
	rootCmd.AddCommand(fingerprintCmd)
	rootCmd.AddCommand(profileCmd)
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	if !fingerprintAnalyze {
		var scored []recommend.ScoredFilm
		if err := readJSON(cmd, args[0], &scored); err != nil {
			return err
		}
		eng := recommend.New(store.NewMemoryIndex())
		return printJSON(cmd, eng.BuildFingerprint(scored))
	}

	var films []*core.Film
	if err := readJSON(cmd, args[0], &films); err != nil {
		return err
	}
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	fp, err := eng.Fingerprint(cmd.Context(), films)
	if err != nil {
		return err
	}
	return printJSON(cmd, fp)
}

func runProfile(cmd *cobra.Command, args []string) error {
	var films []*core.Film
	if err := readJSON(cmd, args[0], &films); err != nil {
		return err
	}
	eng := recommend.New(store.NewMemoryIndex())
	return printJSON(cmd, eng.BuildTasteProfile(films))
}
