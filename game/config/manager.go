package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/karel-grid/game/engine"
	"github.com/wricardo/karel-grid/game/loader"
)

var (
	ErrWorldNotFound   = errors.New("world not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// WorldInfo describes a world file in the catalog
type WorldInfo struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Walls    int    `json:"walls"`
	Piles    int    `json:"piles"`
}

// Manager handles world file and profile loading and caching
type Manager struct {
	worldsDir   string
	profilesDir string
	allowPaths  bool
	worlds      map[string]*loader.WorldFile
	profiles    map[string]*Profile
	mu          sync.RWMutex
}

// NewManager creates a manager over a worlds directory and a profiles directory.
// The profiles directory is optional. World names resolve only inside the
// worlds directory until AllowPaths is enabled.
func NewManager(worldsDir, profilesDir string) (*Manager, error) {
	if _, err := os.Stat(worldsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("worlds directory does not exist: %s", worldsDir)
	}

	return &Manager{
		worldsDir:   worldsDir,
		profilesDir: profilesDir,
		worlds:      make(map[string]*loader.WorldFile),
		profiles:    make(map[string]*Profile),
	}, nil
}

// AllowPaths lets LoadWorld fall back to treating a name as a file path.
// Local commands enable it; catalogs served to remote clients must not.
func (m *Manager) AllowPaths(allow bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowPaths = allow
}

// WorldsDir returns the directory searched for world files
func (m *Manager) WorldsDir() string {
	return m.worldsDir
}

// LoadWorld loads a world file by name. "hurdles" and "hurdles.wld" share a
// cache entry.
func (m *Manager) LoadWorld(name string) (*loader.WorldFile, error) {
	key := strings.TrimSuffix(name, loader.Extension)

	m.mu.RLock()
	if wf, exists := m.worlds[key]; exists {
		m.mu.RUnlock()
		return wf, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if wf, exists := m.worlds[key]; exists {
		return wf, nil
	}

	path, err := m.resolve(name, key)
	if err != nil {
		return nil, err
	}

	wf, err := loader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load world %s: %w", name, err)
	}

	m.worlds[key] = wf
	return wf, nil
}

// resolve finds the file for a world name. Callers hold m.mu.
func (m *Manager) resolve(name, key string) (string, error) {
	if validWorldName(key) {
		path := filepath.Join(m.worldsDir, key+loader.Extension)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	if m.allowPaths {
		if path, err := loader.Resolve(name, ""); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrWorldNotFound, name)
}

func validWorldName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// ListWorlds returns information about all world files in the worlds directory
func (m *Manager) ListWorlds() ([]*WorldInfo, error) {
	entries, err := os.ReadDir(m.worldsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read worlds directory: %w", err)
	}

	var worlds []*WorldInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), loader.Extension) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), loader.Extension)
		wf, err := m.LoadWorld(name)
		if err != nil {
			// Skip invalid world files
			continue
		}

		info := &WorldInfo{Name: name, Filename: entry.Name()}
		for _, d := range wf.Directives {
			if d.Beepers != nil {
				info.Piles++
			} else {
				info.Walls++
			}
		}
		worlds = append(worlds, info)
	}

	sort.Slice(worlds, func(i, j int) bool { return worlds[i].Name < worlds[j].Name })
	return worlds, nil
}

// SaveWorld writes the walls and piles of snap as <name>.wld and caches it
func (m *Manager) SaveWorld(name string, snap engine.Snapshot) error {
	name = strings.TrimSuffix(name, loader.Extension)
	if !validWorldName(name) {
		return fmt.Errorf("invalid world name %q", name)
	}

	path := filepath.Join(m.worldsDir, name+loader.Extension)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create world file: %w", err)
	}
	if err := loader.Write(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("failed to write world file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write world file: %w", err)
	}

	// Drop the cached copy so the next load sees the new file
	m.mu.Lock()
	delete(m.worlds, name)
	m.mu.Unlock()
	return nil
}

// LoadProfile loads <name>.yaml from the profiles directory
func (m *Manager) LoadProfile(name string) (*Profile, error) {
	m.mu.RLock()
	if p, exists := m.profiles[name]; exists {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	if m.profilesDir == "" {
		return nil, ErrProfileNotFound
	}

	filename := name
	if !strings.HasSuffix(filename, ".yaml") && !strings.HasSuffix(filename, ".yml") {
		filename = name + ".yaml"
	}

	p, err := LoadProfileFile(filepath.Join(m.profilesDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(name, filepath.Ext(filename))
	}

	m.mu.Lock()
	m.profiles[name] = p
	m.mu.Unlock()
	return p, nil
}

// GetDefault returns the "default" profile, or the built-in one when the
// profiles directory has none
func (m *Manager) GetDefault() *Profile {
	p, err := m.LoadProfile("default")
	if err != nil {
		return DefaultProfile()
	}
	return p
}

// RefreshCache drops all cached worlds and profiles
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.worlds = make(map[string]*loader.WorldFile)
	m.profiles = make(map[string]*Profile)
}
