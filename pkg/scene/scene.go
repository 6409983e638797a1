package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrBackgroundOutOfRange = errors.New("background index out of range")
	ErrInvalidScene         = errors.New("invalid scene")
)

// Scene is an immutable scene reference: the ordered backgrounds shown while
// its script plays, plus the audio that accompanies it.
type Scene struct {
	Name        string   `json:"name"`                  // Display name, also used by the scene picker
	FileName    string   `json:"file_name,omitempty"`   // Set on load from the file's base name
	Script      string   `json:"script"`                // Script name, resolved by the library
	Backgrounds []string `json:"backgrounds"`           // Images, shown in order; index 0 on entry
	BGM         string   `json:"bgm,omitempty"`         // Track played for the lifetime of a full scene
	Ambience    []Clip   `json:"ambience,omitempty"`    // Clips the ambience loop draws from
	Description string   `json:"description,omitempty"` // Shown by the scene picker
}

// Clip names an ambience clip and how long it plays.
type Clip struct {
	Name   string   `json:"name"`
	Length Duration `json:"length"`
}

// Duration unmarshals from a Go duration string ("1.5s") or a number of seconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		*d = Duration(val * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}

// Background returns the image at index i.
func (s *Scene) Background(i int) (string, error) {
	if i < 0 || i >= len(s.Backgrounds) {
		return "", fmt.Errorf("%w: index %d, scene %q has %d", ErrBackgroundOutOfRange, i, s.Name, len(s.Backgrounds))
	}
	return s.Backgrounds[i], nil
}

func (s *Scene) Validate() error {
	var problems []string
	if strings.TrimSpace(s.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(s.Script) == "" {
		problems = append(problems, "script is required")
	}
	if len(s.Backgrounds) == 0 {
		problems = append(problems, "at least one background is required")
	}
	for i, c := range s.Ambience {
		if c.Name == "" {
			problems = append(problems, fmt.Sprintf("ambience[%d]: name is required", i))
		}
		if c.Length <= 0 {
			problems = append(problems, fmt.Sprintf("ambience[%d]: length must be positive", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidScene, strings.Join(problems, "; "))
	}
	return nil
}

// Load reads a scene from a JSON file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scene: %w", err)
	}
	s.FileName = filepath.Base(path)
	return &s, nil
}
