package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/vn-engine/internal/dialogue"
	"github.com/jwebster45206/vn-engine/pkg/scene"
)

const (
	scenesDir       = "scenes"
	scriptsDir      = "scripts"
	scriptExtension = ".ink"
)

// FileStorage serves scenes from <dataDir>/scenes/*.json and scripts from
// <dataDir>/scripts/*.ink.
type FileStorage struct {
	logger  *slog.Logger
	dataDir string
}

var (
	_ Storage               = (*FileStorage)(nil)
	_ dialogue.ScriptSource = (*FileStorage)(nil)
)

func NewFileStorage(dataDir string, logger *slog.Logger) *FileStorage {
	if dataDir == "" {
		dataDir = "./data"
	}
	return &FileStorage{logger: logger, dataDir: dataDir}
}

func (f *FileStorage) ListScenes(ctx context.Context) (map[string]string, error) {
	dir := filepath.Join(f.dataDir, scenesDir)
	scenes := make(map[string]string)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		s, err := scene.Load(path)
		if err != nil {
			f.logger.Warn("Failed to load scene file", "path", path, "error", err)
			return nil
		}

		scenes[s.Name] = s.FileName
		return nil
	})

	if err != nil {
		f.logger.Error("Failed to walk scenes directory", "error", err)
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}

	return scenes, nil
}

func (f *FileStorage) GetScene(ctx context.Context, filename string) (*scene.Scene, error) {
	if err := checkName(filename); err != nil {
		return nil, err
	}
	path := filepath.Join(f.dataDir, scenesDir, filename)
	f.logger.Debug("Loading scene", "filename", filename, "full_path", path)

	s, err := scene.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSceneNotFound, filename)
		}
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", filename, err)
	}

	return s, nil
}

func (f *FileStorage) GetScript(ctx context.Context, name string) (dialogue.Script, error) {
	if err := checkName(name); err != nil {
		return dialogue.Script{}, err
	}
	path := filepath.Join(f.dataDir, scriptsDir, name+scriptExtension)

	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return dialogue.Script{}, fmt.Errorf("%w: %s", ErrScriptNotFound, name)
		}
		return dialogue.Script{}, fmt.Errorf("failed to read script file: %w", err)
	}

	f.logger.Debug("Script loaded", "name", name, "bytes", len(src))
	return dialogue.Script{Name: name, Source: string(src)}, nil
}

// checkName keeps lookups inside the data directory.
func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid content name %q", name)
	}
	return nil
}
