package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sfxgraph/sfxgraph"
	"github.com/sfxgraph/sfxgraph/presets"
)

// source is a sound named on the command line, either a sound file or a
// preset. filename is empty for presets.
type source struct {
	filename string
	sound    sfxgraph.SoundDescription
}

var soundExtensions = []string{"*.yml", "*.yaml", "*.json"}

// expandArgs replaces directories with the sound files in them.
func expandArgs(args []string) []string {
	var ret []string
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			for _, pattern := range soundExtensions {
				files, _ := filepath.Glob(filepath.Join(arg, pattern))
				ret = append(ret, files...)
			}
			continue
		}
		ret = append(ret, arg)
	}
	return ret
}

// loadSource reads arg as a sound file, or looks it up as a preset name when
// no such file exists.
func loadSource(arg string, catalog *presets.Presets) (source, error) {
	if _, err := os.Stat(arg); err != nil {
		if p, perr := catalog.Find(arg); perr == nil {
			return source{sound: p.Sound}, nil
		}
		return source{}, fmt.Errorf("%v is neither a sound file nor a preset", arg)
	}
	sound, err := readSoundFile(arg)
	if err != nil {
		return source{}, err
	}
	return source{filename: arg, sound: sound}, nil
}

// baseName is the name output files are derived from: the input file name,
// or the sound name for presets.
func (s source) baseName() string {
	if s.filename != "" {
		return s.filename
	}
	if name := presets.NameToFilename(s.sound.Name()); name != "" {
		return name
	}
	return "sound"
}
