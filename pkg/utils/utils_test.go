package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "The Godfather: Part II", want: "the-godfather-part-ii"},
		{in: "Amélie", want: "amlie"},
		{in: "  Yi   Yi  ", want: "yi-yi"},
		{in: "8½", want: "8"},
		{in: "Spider-Man", want: "spider-man"},
		{in: "a - b", want: "a---b"},
		{in: "!!!", want: ""},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}

func TestMergeLabel(t *testing.T) {
	a := Label{Value: "similar_to:stalker", Source: "recall"}
	b := Label{Value: "similar_to:ikiru", Source: "recall"}

	assert.Equal(t, b, MergeLabel(Label{}, b))
	assert.Equal(t, a, MergeLabel(a, Label{Source: "rank"}))

	merged := MergeLabel(a, b)
	assert.Equal(t, "similar_to:stalker|similar_to:ikiru", merged.Value)
	assert.Equal(t, "recall,recall", merged.Source)
	assert.Equal(t, []string{"similar_to:stalker", "similar_to:ikiru"}, merged.Values())

	assert.Equal(t, "recall", MergeLabel(Label{Value: "x"}, a).Source)
	assert.Nil(t, Label{}.Values())
}
