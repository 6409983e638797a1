// Package textfilter softens dialogue lines to fit a content rating.
package textfilter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rating is a content rating, ordered from most to least restrictive.
type Rating int

const (
	RatingG Rating = iota
	RatingPG
	RatingPG13
	RatingR
)

var ratingNames = map[Rating]string{
	RatingG:    "G",
	RatingPG:   "PG",
	RatingPG13: "PG13",
	RatingR:    "R",
}

func (r Rating) String() string {
	if name, ok := ratingNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// ParseRating accepts G, PG, PG13 (or PG-13) and R, case-insensitively.
// "NC17" and "X" are treated as R.
func ParseRating(s string) (Rating, error) {
	switch strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "") {
	case "G":
		return RatingG, nil
	case "PG":
		return RatingPG, nil
	case "PG13":
		return RatingPG13, nil
	case "R", "NC17", "X":
		return RatingR, nil
	default:
		return RatingR, fmt.Errorf("unknown content rating %q", s)
	}
}

// A word is replaced when the rating is at or below its ceiling.
type word struct {
	replacement string
	ceiling     Rating
}

var lexicon = map[string]word{
	"damn":         {"dang", RatingG},
	"hell":         {"heck", RatingG},
	"crap":         {"crud", RatingG},
	"piss":         {"tick", RatingG},
	"ass":          {"butt", RatingPG},
	"bitch":        {"jerk", RatingPG},
	"bastard":      {"jerk", RatingPG},
	"goddamn":      {"gosh-dang", RatingPG},
	"jackass":      {"jerk", RatingPG},
	"dumbass":      {"dummy", RatingPG},
	"bullshit":     {"baloney", RatingPG13},
	"shit":         {"shoot", RatingPG13},
	"fuck":         {"fudge", RatingPG13},
	"fucking":      {"fudging", RatingPG13},
	"motherfucker": {"mother-trucker", RatingPG13},
	"asshole":      {"jerk", RatingPG13},
	"dickhead":     {"jerk", RatingPG13},
}

// Filter replaces words the rating does not allow with milder ones,
// keeping the original's capitalisation.
type Filter struct {
	rating Rating
	re     *regexp.Regexp
}

// New builds a filter for rating. For R and above nothing is replaced.
func New(rating Rating) *Filter {
	var words []string
	for w, entry := range lexicon {
		if rating <= entry.ceiling {
			words = append(words, regexp.QuoteMeta(w))
		}
	}
	f := &Filter{rating: rating}
	if len(words) == 0 {
		return f
	}

	// Longest first so "motherfucker" wins over "fuck".
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})
	f.re = regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`)
	return f
}

// ForRating parses rating and returns the filter's Apply, or nil when the
// rating needs no filtering.
func ForRating(rating string) (func(string) string, error) {
	r, err := ParseRating(rating)
	if err != nil {
		return nil, err
	}
	f := New(r)
	if f.re == nil {
		return nil, nil
	}
	return f.Apply, nil
}

func (f *Filter) Rating() Rating { return f.rating }

func (f *Filter) Apply(text string) string {
	if f.re == nil {
		return text
	}
	return f.re.ReplaceAllStringFunc(text, func(match string) string {
		return preserveCase(match, lexicon[strings.ToLower(match)].replacement)
	})
}

// Contains reports whether text has any word the rating does not allow.
func (f *Filter) Contains(text string) bool {
	return f.re != nil && f.re.MatchString(text)
}

// preserveCase applies the case pattern of the original word to the replacement
func preserveCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: copy the case rune by rune, lowercase past the original's end.
	orig := []rune(original)
	out := make([]rune, 0, len(replacement))
	for i, r := range []rune(replacement) {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
