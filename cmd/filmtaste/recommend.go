package main

import (
	"github.com/spf13/cobra"

	"github.com/rushteam/filmtaste/core"
	"github.com/rushteam/filmtaste/recommend"
)

var (
	recLovedPath string
	recUserID    string
	recLimit     int
	recDiversity float64
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [rated.json]",
	Short: "Recommend films from a list of rated films",
	Long: `Reads a JSON array of rated films (title, year, user_rating, ...).
Films rated 4 or higher seed the recommendations unless --loved is given;
every rated film is excluded from the results.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recLovedPath, "loved", "", "JSON array of loved films (default: rated films with rating >= 4)")
	recommendCmd.Flags().StringVarP(&recUserID, "user", "u", "", "user id for cross-request rating history")
	recommendCmd.Flags().IntVarP(&recLimit, "limit", "n", 0, "number of recommendations (default from config)")
	recommendCmd.Flags().Float64Var(&recDiversity, "diversity", 0, "diversity factor in [0,1] (default from config)")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	var rated []*core.Film
	if err := readJSON(cmd, args[0], &rated); err != nil {
		return err
	}
	loved := recommend.LovedFilms(rated)
	if recLovedPath != "" {
		loved = nil
		if err := readJSON(cmd, recLovedPath, &loved); err != nil {
			return err
		}
	}

	req := &recommend.Request{
		UserID:             recUserID,
		Loved:              loved,
		Rated:              rated,
		NumRecommendations: recLimit,
	}
	if cmd.Flags().Changed("diversity") {
		req.DiversityFactor = recommend.Float(recDiversity)
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	resp, err := eng.GenerateRecommendations(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(cmd, resp)
}
