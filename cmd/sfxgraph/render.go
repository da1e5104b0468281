package main

import (
	"context"
	"fmt"

	"github.com/sfxgraph/sfxgraph/analysis"
	"github.com/sfxgraph/sfxgraph/presets"
	"github.com/sfxgraph/sfxgraph/render"
	"github.com/spf13/cobra"
)

func newRenderCmd(a *app) *cobra.Command {
	var out output
	var raw, quiet bool
	cmd := &cobra.Command{
		Use:   "render [flags] FILE|DIR|PRESET...",
		Short: "Render sounds to .wav files",
		Long: `Render sound files, every sound file in a directory, or presets by name.
Output files are named after the input file, or after the sound for presets.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out.dir = a.cfg.OutputDir
			out.w = cmd.OutOrStdout()
			r := a.renderer()
			catalog := a.presets()
			failed := 0
			for _, arg := range expandArgs(args) {
				if err := renderOne(cmd.Context(), r, catalog, arg, &out, raw, quiet); err != nil {
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
	cmd.Flags().BoolVarP(&raw, "raw", "r", false, "Output raw 16-bit PCM (.raw) instead of .wav.")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the analysis of each sound.")
	return cmd
}

func renderOne(ctx context.Context, r render.Renderer, catalog *presets.Presets, arg string, out *output, raw, quiet bool) error {
	src, err := loadSource(arg, catalog)
	if err != nil {
		return err
	}
	buffer, err := r.Render(ctx, src.sound)
	if err != nil {
		return fmt.Errorf("rendering %v failed: %w", arg, err)
	}
	ext, contents := ".wav", []byte(nil)
	if raw {
		ext = ".raw"
		contents, err = buffer.Raw(true)
	} else {
		contents, err = buffer.Wav()
	}
	if err != nil {
		return fmt.Errorf("encoding %v failed: %w", arg, err)
	}
	if err := out.write(src.baseName(), ext, contents); err != nil {
		return fmt.Errorf("error outputting %v file: %w", ext, err)
	}
	if !quiet && !out.stdout {
		report, err := analysis.Analyze(buffer)
		if err != nil {
			return err
		}
		fmt.Fprintf(out.w, "%v: %v\n", src.sound.Name(), report)
	}
	return nil
}
