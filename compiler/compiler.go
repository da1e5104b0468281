// Package compiler generates Web Audio JavaScript that builds and renders a
// sound description in a browser.
package compiler

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/sfxgraph/sfxgraph"
)

type Compiler struct {
	Template   *template.Template
	SampleRate int
}

//go:embed templates/webaudio/*
var templateFS embed.FS

// Templates are executed in this order; the output is keyed by extension.
var templateNames = []string{"sound.js", "sound.html"}

// New returns a compiler using the built-in Web Audio templates.
func New(sampleRate int) (*Compiler, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/webaudio/*.*")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	return &Compiler{Template: tmpl, SampleRate: sampleRate}, nil
}

// NewFromTemplates returns a compiler using the templates in a directory,
// which must define the same template names as the built-in ones.
func NewFromTemplates(sampleRate int, templateDirectory string) (*Compiler, error) {
	globPtrn := filepath.Join(templateDirectory, "*.*")
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	return &Compiler{Template: tmpl, SampleRate: sampleRate}, nil
}

// Sound returns the generated files for a sound, keyed by file extension
// (".js" and ".html").
func (com *Compiler) Sound(sound sfxgraph.SoundDescription) (map[string]string, error) {
	macros := NewSoundMacros(sound, com.SampleRate)
	retmap := map[string]string{}
	for _, templateName := range templateNames {
		if com.Template.Lookup(templateName) == nil {
			continue
		}
		populatedTemplate, extension, err := com.compile(templateName, macros)
		if err != nil {
			return nil, fmt.Errorf(`could not execute template "%v": %v`, templateName, err)
		}
		retmap[extension] = populatedTemplate
	}
	if len(retmap) == 0 {
		return nil, fmt.Errorf("no templates found for %v", templateNames)
	}
	return retmap, nil
}

func (com *Compiler) compile(templateName string, data interface{}) (string, string, error) {
	result := bytes.NewBufferString("")
	err := com.Template.ExecuteTemplate(result, templateName, data)
	extension := filepath.Ext(templateName)
	return result.String(), extension, err
}
