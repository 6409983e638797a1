// Package directive decodes the tag annotations a narrative line carries into
// typed instructions for the dialogue controller.
package directive

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind identifies what a directive asks the controller to do.
type Kind int

const (
	Unknown Kind = iota
	Speaker
	Background
	Ambience
)

// Wire keys as authors write them in scripts.
const (
	KeySpeaker    = "SPEAKER"
	KeyBackground = "BACKGROUND"
	KeyAmbience   = "MOANS"

	speakerNone = "NONE"
	ambienceOn  = "ON"
	ambienceOff = "OFF"
)

var ErrInvalidAmbience = errors.New("invalid ambience value")

func (k Kind) String() string {
	switch k {
	case Speaker:
		return "speaker"
	case Background:
		return "background"
	case Ambience:
		return "ambience"
	default:
		return "unknown"
	}
}

// Directive is a decoded tag. Raw keeps the tag exactly as authored so
// diagnostics can quote it.
type Directive struct {
	Kind Kind
	Key  string
	Arg  string
	Raw  string
}

// Parse decodes a single tag. The whole tag is upper-cased before it is split,
// so keys and arguments are case-insensitive and speaker names come out in
// upper case.
func Parse(tag string) Directive {
	fields := strings.Fields(cases.Upper(language.Und).String(tag))
	d := Directive{Raw: tag}
	if len(fields) == 0 {
		return d
	}

	d.Key = fields[0]
	d.Arg = strings.Join(fields[1:], " ")

	switch d.Key {
	case KeySpeaker:
		d.Kind = Speaker
	case KeyBackground:
		d.Kind = Background
	case KeyAmbience:
		d.Kind = Ambience
	}
	return d
}

// ParseAll decodes every tag attached to a line, preserving order.
func ParseAll(tags []string) []Directive {
	out := make([]Directive, 0, len(tags))
	for _, t := range tags {
		out = append(out, Parse(t))
	}
	return out
}

// Speaker returns the speaker name, or "" when the directive clears it.
func (d Directive) Speaker() string {
	if d.Arg == speakerNone {
		return ""
	}
	return d.Arg
}

// Ambience reports whether the directive switches ambience on or off.
func (d Directive) Ambience() (bool, error) {
	switch d.Arg {
	case ambienceOn:
		return true, nil
	case ambienceOff:
		return false, nil
	default:
		return false, fmt.Errorf("%w %q", ErrInvalidAmbience, d.Arg)
	}
}

func (d Directive) String() string {
	if d.Arg == "" {
		return d.Key
	}
	return d.Key + " " + d.Arg
}
