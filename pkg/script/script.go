// Package script is a small interpreter for Ink-style dialogue scripts.
//
// A script is a sequence of content lines grouped into knots:
//
//	# SPEAKER ALICE
//	Hello there. # BACKGROUND
//	* [Open the door] -> inside
//	* [Walk away] -> END
//	=== inside ===
//	It is dark in here.
//	-> END
//
// Tags on their own line attach to the next content line; tags after the
// text attach to that line. Consecutive options form a choice point, and the
// story stops there until Choose is called.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCannotContinue   = errors.New("story cannot continue")
	ErrNoChoice         = errors.New("no choice is pending")
	ErrChoiceOutOfRange = errors.New("choice index out of range")
	ErrDivertLoop       = errors.New("divert loop without content")
	ErrUnknownDivert    = errors.New("unknown divert target")
	ErrDuplicateKnot    = errors.New("duplicate knot")
	ErrMalformedScript  = errors.New("malformed script")
)

const (
	rootKnot      = ""
	knotMarker    = "=="
	divertMarker  = "->"
	optionMarker  = "*"
	tagMarker     = "#"
	commentMarker = "//"
)

var endTargets = map[string]bool{"END": true, "DONE": true}

// Line is one unit of dialogue output.
type Line struct {
	Text string
	Tags []string
}

// Choice is an option offered at a choice point.
type Choice struct {
	Index  int
	Text   string
	Target string
}

// State is a comparable snapshot of where a story is.
type State struct {
	Knot  string
	Index int
	Done  bool
}

type opKind int

const (
	opLine opKind = iota
	opDivert
	opChoices
)

type op struct {
	kind    opKind
	line    Line
	target  string
	options []Choice
	lineNo  int
}

type knot struct {
	name string
	ops  []op
}

// Story is a running script. It is not safe for concurrent use.
type Story struct {
	name    string
	knots   map[string]*knot
	cur     *knot
	idx     int
	done    bool
	pending []Choice
	err     error
}

// Parse compiles src. name is only used in error messages.
func Parse(name, src string) (*Story, error) {
	root := &knot{name: rootKnot}
	knots := map[string]*knot{rootKnot: root}
	cur := root

	var pendingTags []string
	lastWasOption := false

	scanner := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		isOption := false

		switch {
		case line == "" || strings.HasPrefix(line, commentMarker):
			continue

		case strings.HasPrefix(line, knotMarker):
			knotName := strings.TrimSpace(strings.Trim(line, "= "))
			if knotName == "" {
				return nil, fmt.Errorf("%w: %s:%d: knot without a name", ErrMalformedScript, name, lineNo)
			}
			if _, exists := knots[knotName]; exists {
				return nil, fmt.Errorf("%w: %s:%d: %q", ErrDuplicateKnot, name, lineNo, knotName)
			}
			cur = &knot{name: knotName}
			knots[knotName] = cur

		case strings.HasPrefix(line, tagMarker):
			pendingTags = append(pendingTags, splitTags(line)...)

		case strings.HasPrefix(line, divertMarker):
			target := strings.TrimSpace(strings.TrimPrefix(line, divertMarker))
			if target == "" {
				return nil, fmt.Errorf("%w: %s:%d: divert without a target", ErrMalformedScript, name, lineNo)
			}
			cur.ops = append(cur.ops, op{kind: opDivert, target: target, lineNo: lineNo})

		case strings.HasPrefix(line, optionMarker):
			opt, err := parseOption(line)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: %v", ErrMalformedScript, name, lineNo, err)
			}
			isOption = true
			if lastWasOption {
				last := &cur.ops[len(cur.ops)-1]
				opt.Index = len(last.options)
				last.options = append(last.options, opt)
			} else {
				cur.ops = append(cur.ops, op{kind: opChoices, options: []Choice{opt}, lineNo: lineNo})
			}

		default:
			text, tags := splitInline(line)
			var target string
			if i := strings.Index(text, divertMarker); i >= 0 {
				target = strings.TrimSpace(text[i+len(divertMarker):])
				text = strings.TrimSpace(text[:i])
			}
			if text != "" {
				all := append(pendingTags, tags...)
				pendingTags = nil
				cur.ops = append(cur.ops, op{kind: opLine, line: Line{Text: text, Tags: all}, lineNo: lineNo})
			}
			if target != "" {
				cur.ops = append(cur.ops, op{kind: opDivert, target: target, lineNo: lineNo})
			}
		}
		lastWasOption = isOption
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", name, err)
	}

	for _, k := range knots {
		for _, o := range k.ops {
			targets := []string{o.target}
			for _, c := range o.options {
				targets = append(targets, c.Target)
			}
			for _, t := range targets {
				if t == "" || endTargets[t] {
					continue
				}
				if _, ok := knots[t]; !ok {
					return nil, fmt.Errorf("%w: %s:%d: %q", ErrUnknownDivert, name, o.lineNo, t)
				}
			}
		}
	}

	s := &Story{name: name, knots: knots, cur: root}
	s.settle()
	return s, nil
}

func parseOption(line string) (Choice, error) {
	body := strings.TrimSpace(strings.TrimPrefix(line, optionMarker))
	var c Choice
	if i := strings.Index(body, divertMarker); i >= 0 {
		c.Target = strings.TrimSpace(body[i+len(divertMarker):])
		body = body[:i]
		if c.Target == "" {
			return c, errors.New("option divert without a target")
		}
	}
	body = strings.NewReplacer("[", "", "]", "").Replace(body)
	c.Text = strings.Join(strings.Fields(body), " ")
	if c.Text == "" {
		return c, errors.New("option without text")
	}
	return c, nil
}

func splitInline(line string) (string, []string) {
	i := strings.Index(line, tagMarker)
	if i < 0 {
		return line, nil
	}
	return strings.TrimSpace(line[:i]), splitTags(line[i:])
}

func splitTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, tagMarker) {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// settle moves past diverts until the story rests on a line, a choice point
// or the end.
func (s *Story) settle() {
	jumps := 0
	for !s.done {
		if s.idx >= len(s.cur.ops) {
			s.done = true
			return
		}
		o := s.cur.ops[s.idx]
		switch o.kind {
		case opLine:
			return
		case opChoices:
			s.pending = o.options
			return
		case opDivert:
			jumps++
			if jumps > len(s.knots) {
				s.err = fmt.Errorf("%w: %s, knot %q", ErrDivertLoop, s.name, s.cur.name)
				s.done = true
				return
			}
			s.jump(o.target)
		}
	}
}

func (s *Story) jump(target string) {
	if endTargets[target] {
		s.done = true
		return
	}
	s.cur = s.knots[target]
	s.idx = 0
}

func (s *Story) Name() string { return s.name }

// CanContinue reports whether Continue will produce a line.
func (s *Story) CanContinue() bool {
	return !s.done && len(s.pending) == 0
}

func (s *Story) HasPendingChoice() bool {
	return len(s.pending) > 0
}

// Choices returns the options of the pending choice point, if any.
func (s *Story) Choices() []Choice {
	out := make([]Choice, len(s.pending))
	copy(out, s.pending)
	return out
}

// Continue returns the next line and advances past it.
func (s *Story) Continue() (Line, error) {
	if !s.CanContinue() {
		if s.err != nil {
			return Line{}, s.err
		}
		return Line{}, ErrCannotContinue
	}
	o := s.cur.ops[s.idx]
	s.idx++
	s.settle()

	line := Line{Text: o.line.Text, Tags: make([]string, len(o.line.Tags))}
	copy(line.Tags, o.line.Tags)
	return line, nil
}

// Choose resolves the pending choice point with option i.
func (s *Story) Choose(i int) error {
	if len(s.pending) == 0 {
		return ErrNoChoice
	}
	if i < 0 || i >= len(s.pending) {
		return fmt.Errorf("%w: %d of %d", ErrChoiceOutOfRange, i, len(s.pending))
	}
	c := s.pending[i]
	s.pending = nil
	s.idx++
	if c.Target != "" {
		s.jump(c.Target)
	}
	s.settle()
	return nil
}

// Err returns the error that ended the story early, if any.
func (s *Story) Err() error { return s.err }

func (s *Story) State() State {
	return State{Knot: s.cur.name, Index: s.idx, Done: s.done}
}

// Clone returns an independent copy positioned at the same place. Compiled
// knots are shared.
func (s *Story) Clone() *Story {
	c := *s
	c.pending = append([]Choice(nil), s.pending...)
	return &c
}
