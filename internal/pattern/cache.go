package pattern

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// cacheVersion is bumped whenever the file layout or the rendering changes.
const cacheVersion = 1

// CacheFileName is the file name used for the persisted table.
const CacheFileName = "ballPatterns.json"

type cacheFile struct {
	Version  int       `json:"version"`
	Key      Key       `json:"key"`
	Patterns []Pattern `json:"patterns"`
}

// cacheLibPath returns lib/ballPatterns.json next to the executable, or an
// empty string if it can't be determined.
func cacheLibPath() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), "..", "lib", CacheFileName)
}

// DefaultCachePath returns where the pattern table is persisted.
// Prefers lib/ballPatterns.json next to the executable when that directory
// exists; falls back to ~/.config/ball-perceptor/ballPatterns.json.
func DefaultCachePath() (string, error) {
	if libPath := cacheLibPath(); libPath != "" {
		if _, err := os.Stat(libPath); err == nil {
			return libPath, nil
		}
		if info, err := os.Stat(filepath.Dir(libPath)); err == nil && info.IsDir() {
			return libPath, nil
		}
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine config directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "ball-perceptor", CacheFileName), nil
}

// Load reads a persisted table. The stored key must equal want; any
// difference yields ErrKeyMismatch so the caller rebuilds instead of
// comparing incompatible patterns.
func Load(path string, want Key) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern cache: %w", err)
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse pattern cache: %w", err)
	}
	if cf.Version != cacheVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, cf.Version)
	}
	if cf.Key != want {
		return nil, ErrKeyMismatch
	}
	if len(cf.Patterns) == 0 {
		return nil, ErrEmptyCache
	}
	return NewTable(cf.Key, cf.Patterns)
}

// Save persists the table. The file is written next to its destination and
// renamed into place so readers never see a partial table.
func (t *Table) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.Marshal(cacheFile{Version: cacheVersion, Key: t.key, Patterns: t.Patterns()})
	if err != nil {
		return fmt.Errorf("failed to serialize pattern table: %w", err)
	}

	tmp, err := os.CreateTemp(dir, CacheFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write pattern table: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write pattern table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write pattern table: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write pattern table: %w", err)
	}
	return nil
}

// LoadOrBuild returns the table persisted at path if it was built with the
// same spec and texture, and otherwise builds it and writes it back. The
// boolean reports whether a build happened. An empty path disables the cache.
func LoadOrBuild(ctx context.Context, path string, tex *Texture, spec Spec, logger zerolog.Logger) (*Table, bool, error) {
	if err := spec.Validate(); err != nil {
		return nil, false, err
	}
	key := spec.Key(tex)

	if path != "" {
		table, err := Load(path, key)
		if err == nil {
			logger.Info().Str("path", path).Int("patterns", table.Len()).Msg("loaded ball pattern table")
			return table, false, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			logger.Info().Str("path", path).Msg("no cached ball pattern table")
		} else {
			logger.Warn().Err(err).Str("path", path).Msg("discarding cached ball pattern table")
		}
	}

	table, err := Build(ctx, tex, spec, logger)
	if err != nil {
		return nil, false, err
	}

	if path != "" {
		if err := table.Save(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("failed to persist ball pattern table")
		}
	}
	return table, true, nil
}
