// Package prefs persists steward's per-user preferences in
// ~/.config/steward/prefs.toml.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds the operator's choices that outlive a session.
type Prefs struct {
	Theme string `toml:"theme"`
	// PageSizes remembers the page size picked on each screen.
	PageSizes map[string]int `toml:"page_sizes,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/steward/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

func defaults() Prefs {
	return Prefs{Theme: defaultTheme}
}

// Load reads preferences from path. Any problem reading or parsing the file
// yields defaults; preferences are never worth refusing to start over.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return defaults(), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return defaults(), nil
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return defaults(), nil
	}

	p := defaults()
	if err := toml.Unmarshal(bytes, &p); err != nil {
		return defaults(), nil
	}

	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	for resource, size := range p.PageSizes {
		if size <= 0 {
			delete(p.PageSizes, resource)
		}
	}
	return p, nil
}

// PageSize returns the remembered page size for resource, or fallback.
func (p Prefs) PageSize(resource string, fallback int) int {
	if size, ok := p.PageSizes[resource]; ok && size > 0 {
		return size
	}
	return fallback
}

// WithPageSize returns a copy of p remembering size for resource.
func (p Prefs) WithPageSize(resource string, size int) Prefs {
	next := make(map[string]int, len(p.PageSizes)+1)
	for k, v := range p.PageSizes {
		next[k] = v
	}
	next[resource] = size
	p.PageSizes = next
	return p
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = defaultPrefsPath
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
