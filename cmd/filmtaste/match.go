package main

import (
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/filmtaste/recommend"
	"github.com/rushteam/filmtaste/store"
)

var matchCmd = &cobra.Command{
	Use:   "match [film.json] [user.json]",
	Short: "Match a film vector against a user taste vector",
	Long: `Each file holds either a JSON array of 62 normalized values
or a fingerprint object with a "taste_vector" field.`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

// vectorFile 接受裸数组或带 taste_vector 字段的对象。
type vectorFile []float64

func (v *vectorFile) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err == nil {
		*v = arr
		return nil
	}
	var obj struct {
		TasteVector []float64 `json:"taste_vector"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*v = obj.TasteVector
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	var film, user vectorFile
	if err := readJSON(cmd, args[0], &film); err != nil {
		return err
	}
	if err := readJSON(cmd, args[1], &user); err != nil {
		return err
	}
	eng := recommend.New(store.NewMemoryIndex())
	res, err := eng.MatchSlices(film, user)
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}
