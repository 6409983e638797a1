package textfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		rating Rating
		input  string
		want   string
	}{
		{name: "clean text untouched", rating: RatingG, input: "The door creaks open.", want: "The door creaks open."},
		{name: "mild word at G", rating: RatingG, input: "Damn, it's locked.", want: "Dang, it's locked."},
		{name: "mild word allowed at PG", rating: RatingPG, input: "Damn, it's locked.", want: "Damn, it's locked."},
		{name: "moderate word at PG", rating: RatingPG, input: "You bastard!", want: "You jerk!"},
		{name: "moderate word allowed at PG13", rating: RatingPG13, input: "You bastard!", want: "You bastard!"},
		{name: "strong word at PG13", rating: RatingPG13, input: "Oh shit.", want: "Oh shoot."},
		{name: "nothing filtered at R", rating: RatingR, input: "Oh shit.", want: "Oh shit."},
		{name: "upper case", rating: RatingPG13, input: "WHAT THE FUCK", want: "WHAT THE FUDGE"},
		{name: "title case", rating: RatingPG, input: "Bastard!", want: "Jerk!"},
		{name: "mixed case", rating: RatingPG13, input: "sHiT", want: "sHoOt"},
		{name: "longest match wins", rating: RatingPG13, input: "motherfucker", want: "mother-trucker"},
		{name: "word boundaries respected", rating: RatingG, input: "Hello, assassin from the shell.", want: "Hello, assassin from the shell."},
		{name: "several words", rating: RatingG, input: "damn this crap", want: "dang this crud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.rating).Apply(tt.input))
		})
	}
}

func TestFilter_Contains(t *testing.T) {
	f := New(RatingPG)
	assert.True(t, f.Contains("what a jackass"))
	assert.False(t, f.Contains("what a damn shame"), "mild words are allowed at PG")
	assert.False(t, New(RatingR).Contains("anything goes, shit"))
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		in      string
		want    Rating
		wantErr bool
	}{
		{in: "G", want: RatingG},
		{in: "pg", want: RatingPG},
		{in: "PG-13", want: RatingPG13},
		{in: " pg13 ", want: RatingPG13},
		{in: "R", want: RatingR},
		{in: "NC-17", want: RatingR},
		{in: "X", want: RatingR},
		{in: "MA", want: RatingR, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRating(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForRating(t *testing.T) {
	fn, err := ForRating("R")
	require.NoError(t, err)
	assert.Nil(t, fn, "R needs no filter")

	fn, err = ForRating("G")
	require.NoError(t, err)
	require.NotNil(t, fn)
	assert.Equal(t, "heck no", fn("hell no"))

	_, err = ForRating("unrated")
	assert.Error(t, err)
}

func TestRating_String(t *testing.T) {
	assert.Equal(t, "PG13", RatingPG13.String())
	assert.Equal(t, "Rating(9)", Rating(9).String())
}
