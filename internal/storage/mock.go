package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/jwebster45206/vn-engine/internal/dialogue"
	"github.com/jwebster45206/vn-engine/pkg/scene"
)

// MockStorage is an in-memory Storage for tests and headless runs
type MockStorage struct {
	mu      sync.RWMutex
	scenes  map[string]*scene.Scene
	scripts map[string]string
}

var (
	_ Storage               = (*MockStorage)(nil)
	_ dialogue.ScriptSource = (*MockStorage)(nil)
)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		scenes:  make(map[string]*scene.Scene),
		scripts: make(map[string]string),
	}
}

// AddScene registers s under filename.
func (m *MockStorage) AddScene(filename string, s *scene.Scene) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.FileName = filename
	m.scenes[filename] = s
}

func (m *MockStorage) AddScript(name, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[name] = source
}

func (m *MockStorage) ListScenes(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.scenes))
	for filename, s := range m.scenes {
		out[s.Name] = filename
	}
	return out, nil
}

func (m *MockStorage) GetScene(ctx context.Context, filename string) (*scene.Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.scenes[filename]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSceneNotFound, filename)
	}
	return s, nil
}

func (m *MockStorage) GetScript(ctx context.Context, name string) (dialogue.Script, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src, ok := m.scripts[name]
	if !ok {
		return dialogue.Script{}, fmt.Errorf("%w: %s", ErrScriptNotFound, name)
	}
	return dialogue.Script{Name: name, Source: src}, nil
}
