package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/vn-engine/internal/dialogue"
	"github.com/jwebster45206/vn-engine/pkg/directive"
	"github.com/jwebster45206/vn-engine/pkg/scene"
	"github.com/jwebster45206/vn-engine/pkg/script"
)

// maxSteps bounds the walk over a script's branches.
const maxSteps = 10000

var errStepBudget = errors.New("script walk exceeded step budget")

// SceneValidator checks a scene file and every line its script can reach.
type SceneValidator struct {
	errors  []string
	reached int
}

func (v *SceneValidator) validateFile(filename string) error {
	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("scene file must have .json extension: %s", baseName)
	}
	if !isValidSceneFilename(strings.TrimSuffix(baseName, ".json")) {
		return fmt.Errorf("scene filename '%s' must be lowercase snake_case (e.g., house_front.json, not house-front.json or HouseFront.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil
	v.reached = 0

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var s scene.Scene
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&s); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}
	s.FileName = baseName

	if err := s.Validate(); err != nil {
		v.addError(err.Error())
	}
	v.validateIDFormat("script", s.Script)

	if s.Script != "" {
		v.validateScript(&s, scriptPath(filename, s.Script))
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

// scriptPath resolves a script name the way the file library does: scenes
// live in <data>/scenes and scripts in <data>/scripts.
func scriptPath(sceneFile, name string) string {
	dataDir := filepath.Dir(filepath.Dir(sceneFile))
	return filepath.Join(dataDir, "scripts", name+".ink")
}

func (v *SceneValidator) validateScript(s *scene.Scene, path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		v.addError(fmt.Sprintf("script %s: %v", s.Script, err))
		return
	}
	story, err := script.Parse(s.Script, string(src))
	if err != nil {
		v.addError(fmt.Sprintf("script %s: %v", s.Script, err))
		return
	}
	if err := v.walk(s, story); err != nil {
		v.addError(fmt.Sprintf("script %s: %v", s.Script, err))
	}
}

// branch is a point in the walk: where the story is and how many
// backgrounds it has advanced past on the way there.
type branch struct {
	story *script.Story
	bg    int
}

type visitKey struct {
	state script.State
	bg    int
}

// walk follows every path through story, taking each option at every choice
// point. A problem on a line is reported once even if several paths reach it.
func (v *SceneValidator) walk(s *scene.Scene, story *script.Story) error {
	seen := map[visitKey]bool{}
	reported := map[string]bool{}
	report := func(msg string) {
		if !reported[msg] {
			reported[msg] = true
			v.addError(msg)
		}
	}

	stack := []branch{{story: story}}
	steps := 0
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !v.follow(s, &b, seen, report, &steps) {
			continue
		}
		if err := b.story.Err(); err != nil {
			return err
		}
		if steps > maxSteps {
			return errStepBudget
		}
		if !b.story.HasPendingChoice() {
			continue
		}
		for i := range b.story.Choices() {
			next := b.story.Clone()
			if err := next.Choose(i); err != nil {
				return err
			}
			stack = append(stack, branch{story: next, bg: b.bg})
		}
	}
	return nil
}

// follow continues b up to its next choice point or the end of the story.
// It returns false when b reaches a state another path already covered.
func (v *SceneValidator) follow(s *scene.Scene, b *branch, seen map[visitKey]bool, report func(string), steps *int) bool {
	for *steps <= maxSteps {
		key := visitKey{state: b.story.State(), bg: b.bg}
		if seen[key] {
			return false
		}
		seen[key] = true

		if !b.story.CanContinue() {
			return true
		}
		*steps++
		line, err := b.story.Continue()
		if err != nil {
			return true
		}
		v.reached++
		b.bg = v.checkLine(s, line, b.bg, report)
	}
	return true
}

// checkLine reports the authoring errors the dialogue controller would
// diagnose on line and returns the background index after it.
func (v *SceneValidator) checkLine(s *scene.Scene, line script.Line, bg int, report func(string)) int {
	for _, d := range directive.ParseAll(line.Tags) {
		where := fmt.Sprintf("line %q, tag %q", line.Text, d.Raw)
		switch d.Kind {
		case directive.Speaker:
		case directive.Background:
			if bg+1 >= len(s.Backgrounds) {
				report(fmt.Sprintf("%s: background %d reached but scene has %d", where, bg+1, len(s.Backgrounds)))
				continue
			}
			bg++
		case directive.Ambience:
			on, err := d.Ambience()
			if err != nil {
				report(fmt.Sprintf("%s: %v", where, err))
				continue
			}
			if on && len(s.Ambience) == 0 {
				report(fmt.Sprintf("%s: scene has no ambience clips", where))
			}
		default:
			report(fmt.Sprintf("%s: %v %q", where, dialogue.ErrUnknownDirective, d.Key))
		}
	}
	return bg
}

func (v *SceneValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}
	if !validIDRegex.MatchString(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *SceneValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidSceneFilename(name string) bool {
	// Allow 'x.' prefix for experimental scenes
	name = strings.TrimPrefix(name, "x.")
	return validIDRegex.MatchString(name)
}
