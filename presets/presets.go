// Package presets is the catalog of ready-made sounds: the built-in presets
// embedded in the binary and the user's own presets from a directory.
package presets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sfxgraph/sfxgraph"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

//go:embed presets/*
var builtinFS embed.FS

type (
	Preset struct {
		User  bool
		Sound sfxgraph.SoundDescription
	}

	// Presets is a catalog sorted by name, built-in presets first.
	Presets struct {
		Presets []Preset
	}
)

var ErrNotFound = errors.New("preset not found")

// DefaultUserDir is where user presets live unless configured otherwise.
func DefaultUserDir() string {
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "sfxgraph", "presets")
	}
	return ""
}

// Load reads the built-in presets and the user presets from userDir. A
// missing user directory is not an error; files that do not parse as sounds
// are skipped.
func Load(userDir string) *Presets {
	m := &Presets{}
	m.loadFromFS(builtinFS, "presets", false)
	if userDir != "" {
		m.loadFromFS(os.DirFS(userDir), ".", true)
	}
	sort.SliceStable(m.Presets, func(i, j int) bool {
		a, b := m.Presets[i], m.Presets[j]
		if a.User != b.User {
			return !a.User
		}
		return a.Sound.Name() < b.Sound.Name()
	})
	return m
}

func (m *Presets) loadFromFS(fsys fs.FS, root string, userDefined bool) {
	fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil
		}
		var sound sfxgraph.SoundDescription
		if yaml.UnmarshalStrict(data, &sound) == nil {
			name := filenameToName(strings.TrimSuffix(filepath.Base(path), ext))
			m.Presets = append(m.Presets, Preset{User: userDefined, Sound: sound.WithName(name)})
		}
		return nil
	})
}

// Names lists the names of all presets, in catalog order.
func (m *Presets) Names() []string {
	ret := make([]string, len(m.Presets))
	for i, p := range m.Presets {
		ret[i] = p.Sound.Name()
	}
	return ret
}

// Find looks a preset up by name, ignoring case. When a user preset has the
// same name as a built-in one, the user preset wins.
func (m *Presets) Find(name string) (Preset, error) {
	var ret Preset
	found := false
	for _, p := range m.Presets {
		if strings.EqualFold(p.Sound.Name(), name) {
			ret, found = p, true
		}
	}
	if !found {
		return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return ret, nil
}

// Save writes sound as a user preset into dir, named after the sound.
func Save(dir string, sound sfxgraph.SoundDescription) (string, error) {
	filename := NameToFilename(sound.Name())
	if filename == "" {
		return "", fmt.Errorf("cannot save a preset without a name")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create preset directory: %w", err)
	}
	path := filepath.Join(dir, filename+".yml")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create preset file: %w", err)
	}
	defer f.Close()
	if err := sound.Write(f, sfxgraph.YAML); err != nil {
		return "", err
	}
	return path, nil
}

func filenameToName(filename string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(filename, "_", " "))
}

var specialChars = regexp.MustCompile("[^a-zA-Z0-9 _]+")

// NameToFilename is the file name, without extension, used for a sound name:
// special characters are removed and spaces become underscores.
func NameToFilename(name string) string {
	name = specialChars.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
