package scene

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScene_Background(t *testing.T) {
	s := &Scene{Name: "Porch", Backgrounds: []string{"porch_day.png", "porch_night.png"}}

	img, err := s.Background(1)
	require.NoError(t, err)
	assert.Equal(t, "porch_night.png", img)

	for _, idx := range []int{-1, 2, 10} {
		_, err := s.Background(idx)
		if !errors.Is(err, ErrBackgroundOutOfRange) {
			t.Errorf("index %d: expected ErrBackgroundOutOfRange, got %v", idx, err)
		}
	}
}

func TestScene_Validate(t *testing.T) {
	tests := []struct {
		name    string
		scene   Scene
		wantErr bool
	}{
		{
			name:  "valid",
			scene: Scene{Name: "A", Script: "a", Backgrounds: []string{"a.png"}},
		},
		{
			name:    "missing script",
			scene:   Scene{Name: "A", Backgrounds: []string{"a.png"}},
			wantErr: true,
		},
		{
			name:    "no backgrounds",
			scene:   Scene{Name: "A", Script: "a"},
			wantErr: true,
		},
		{
			name: "zero length clip",
			scene: Scene{Name: "A", Script: "a", Backgrounds: []string{"a.png"},
				Ambience: []Clip{{Name: "rain"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scene.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidScene)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var clips []Clip
	err := json.Unmarshal([]byte(`[{"name":"a","length":"1.5s"},{"name":"b","length":2}]`), &clips)
	require.NoError(t, err)
	assert.Equal(t, Duration(1500*time.Millisecond), clips[0].Length)
	assert.Equal(t, Duration(2*time.Second), clips[1].Length)

	err = json.Unmarshal([]byte(`{"name":"c","length":"soon"}`), &Clip{})
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garden.json")
	body := `{"name":"Garden","script":"garden","backgrounds":["g1.png","g2.png"],"bgm":"garden_theme"}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Garden", s.Name)
	assert.Equal(t, "garden.json", s.FileName)
	assert.Equal(t, "garden_theme", s.BGM)
	assert.Len(t, s.Backgrounds, 2)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
