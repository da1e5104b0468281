package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

// output decides where generated files go and writes them.
type output struct {
	safe   bool   // never overwrite existing files
	list   bool   // only list files that would change
	stdout bool   // write contents to stdout instead
	path   string // output directory or file name; extension is ignored
	dir    string // default directory when path has none
	w      io.Writer
}

func (o *output) addFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&o.safe, "no-overwrite", "n", false, "Never overwrite files; give an error if a file already exists.")
	fs.BoolVarP(&o.list, "list", "l", false, "Do not write files; just list files that would change instead.")
	fs.BoolVarP(&o.stdout, "stdout", "s", false, "Do not write files; write to standard output instead.")
	fs.StringVarP(&o.path, "output", "o", "", "Directory or filename where to write output. Extension is ignored. Directory and its parents are created if needed.")
}

// target is the file written for the input name with the given extension.
func (o *output) target(name, extension string) (string, error) {
	_, name = filepath.Split(name)
	dir := o.dir
	if o.path != "" {
		if info, err := os.Stat(o.path); err == nil && info.IsDir() {
			dir = o.path
		} else {
			outdir, outname := filepath.Split(o.path)
			if outdir != "" {
				dir = outdir
			}
			if outname != "" {
				name = outname
			}
		}
	}
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get working directory, specify the output directory explicitly: %w", err)
		}
	}
	name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
	return filepath.Join(dir, name), nil
}

func (o *output) write(name, extension string, contents []byte) error {
	if o.stdout {
		_, err := o.w.Write(contents)
		return err
	}
	f, err := o.target(name, extension)
	if err != nil {
		return err
	}
	if original, err := os.ReadFile(f); err == nil {
		if bytes.Equal(original, contents) {
			return nil
		}
		if !o.list && o.safe {
			return fmt.Errorf("file %v would be overwritten", f)
		}
	}
	if o.list {
		fmt.Fprintln(o.w, f)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f), 0755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}
	if err := os.WriteFile(f, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %w", f, err)
	}
	return nil
}
