package main

import (
	"fmt"
	"sort"

	"github.com/sfxgraph/sfxgraph/compiler"
	"github.com/sfxgraph/sfxgraph/presets"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var out output
	var tmplDir string
	var extensions []string
	cmd := &cobra.Command{
		Use:   "export [flags] FILE|DIR|PRESET...",
		Short: "Generate Web Audio JavaScript for sounds",
		Long: `Generate a JavaScript module that builds and renders each sound with the
Web Audio API, and an HTML page to try it out.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out.dir = a.cfg.OutputDir
			out.w = cmd.OutOrStdout()
			var com *compiler.Compiler
			var err error
			if tmplDir != "" {
				com, err = compiler.NewFromTemplates(a.cfg.SampleRate, tmplDir)
			} else {
				com, err = compiler.New(a.cfg.SampleRate)
			}
			if err != nil {
				return fmt.Errorf("error creating compiler: %w", err)
			}
			catalog := a.presets()
			failed := 0
			for _, arg := range expandArgs(args) {
				if err := exportOne(com, catalog, arg, &out, extensions); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d sound(s) failed", failed)
			}
			return nil
		},
	}
	out.addFlags(cmd.Flags())
	cmd.Flags().StringVarP(&tmplDir, "templates", "t", "", "Use the templates in this directory instead of the standard templates.")
	cmd.Flags().StringSliceVarP(&extensions, "extensions", "e", nil, "Output only the files with these comma separated extensions. For example: js")
	return cmd
}

func exportOne(com *compiler.Compiler, catalog *presets.Presets, arg string, out *output, extensions []string) error {
	src, err := loadSource(arg, catalog)
	if err != nil {
		return err
	}
	files, err := com.Sound(src.sound)
	if err != nil {
		return fmt.Errorf("compiling %v failed: %w", arg, err)
	}
	if len(extensions) > 0 {
		files = filterExtensions(files, extensions)
	}
	exts := make([]string, 0, len(files))
	for ext := range files {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		if err := out.write(src.baseName(), ext, []byte(files[ext])); err != nil {
			return fmt.Errorf("error outputting %v file: %w", ext, err)
		}
	}
	return nil
}

func filterExtensions(input map[string]string, extensions []string) map[string]string {
	ret := map[string]string{}
	for _, ext := range extensions {
		extWithDot := "." + ext
		if inputVal, ok := input[extWithDot]; ok {
			ret[extWithDot] = inputVal
		}
	}
	return ret
}
