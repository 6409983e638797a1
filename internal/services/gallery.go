package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const galleryKeyPrefix = "gallery:unlocked:"

// Gallery records which scenes the player has finished, so they can be
// replayed later.
type Gallery struct {
	cache  Cache
	logger *slog.Logger
}

func NewGallery(cache Cache, logger *slog.Logger) *Gallery {
	return &Gallery{cache: cache, logger: logger}
}

func galleryKey(sceneFile string) string {
	return galleryKeyPrefix + sceneFile
}

// Unlock marks sceneFile as finished.
func (g *Gallery) Unlock(ctx context.Context, sceneFile string) error {
	if err := g.cache.Set(ctx, galleryKey(sceneFile), time.Now().UTC().Format(time.RFC3339), 0); err != nil {
		return fmt.Errorf("failed to unlock scene %s: %w", sceneFile, err)
	}
	g.logger.Info("Gallery scene unlocked", "scene", sceneFile)
	return nil
}

func (g *Gallery) IsUnlocked(ctx context.Context, sceneFile string) (bool, error) {
	ok, err := g.cache.Exists(ctx, galleryKey(sceneFile))
	if err != nil {
		return false, fmt.Errorf("failed to check scene %s: %w", sceneFile, err)
	}
	return ok, nil
}

// UnlockedAt returns when sceneFile was unlocked, or the zero time.
func (g *Gallery) UnlockedAt(ctx context.Context, sceneFile string) (time.Time, error) {
	v, err := g.cache.Get(ctx, galleryKey(sceneFile))
	if err != nil {
		return time.Time{}, err
	}
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt gallery entry for %s: %w", sceneFile, err)
	}
	return t, nil
}

// Filter returns the subset of sceneFiles that are unlocked, in order.
func (g *Gallery) Filter(ctx context.Context, sceneFiles []string) ([]string, error) {
	var out []string
	for _, f := range sceneFiles {
		ok, err := g.IsUnlocked(ctx, f)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// Reset locks the given scenes again.
func (g *Gallery) Reset(ctx context.Context, sceneFiles ...string) error {
	if len(sceneFiles) == 0 {
		return nil
	}
	keys := make([]string, len(sceneFiles))
	for i, f := range sceneFiles {
		keys[i] = galleryKey(f)
	}
	return g.cache.Del(ctx, keys...)
}
