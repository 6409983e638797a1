package storage

import (
	"context"
	"errors"

	"github.com/jwebster45206/vn-engine/internal/dialogue"
	"github.com/jwebster45206/vn-engine/pkg/scene"
)

var (
	ErrSceneNotFound  = errors.New("scene not found")
	ErrScriptNotFound = errors.New("script not found")
)

// Storage is the read-only content library: scenes and the scripts they play.
type Storage interface {
	// ListScenes maps scene display names to file names.
	ListScenes(ctx context.Context) (map[string]string, error)

	// GetScene loads and validates a scene by file name.
	GetScene(ctx context.Context, filename string) (*scene.Scene, error)

	// GetScript loads a script by name, without extension.
	GetScript(ctx context.Context, name string) (dialogue.Script, error)
}
