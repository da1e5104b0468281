package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sfxgraph/sfxgraph"
	"github.com/sfxgraph/sfxgraph/analysis"
	"github.com/sfxgraph/sfxgraph/oto"
	"github.com/sfxgraph/sfxgraph/render"
	"github.com/sfxgraph/sfxgraph/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var wavPath string
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-render a sound file every time it is saved",
		Long: `Watch a sound file and re-render it whenever it changes. Edits that arrive
while a render is running cancel it; only the newest version is played.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			w, err := watch.New(watch.Config{Path: path, Debounce: a.cfg.Watch.Debounce})
			if err != nil {
				return err
			}
			defer w.Stop()
			w.Start()

			r := a.renderer()
			latest := render.NewLatest(r)
			defer latest.Close()

			var audio *oto.Context
			if a.cfg.Play.Autoplay {
				if audio, err = oto.NewContext(r.SampleRate); err != nil {
					return fmt.Errorf("could not open audio output: %w", err)
				}
				defer audio.Close()
			}

			submit := func() {
				sound, err := readSoundFile(path)
				if err != nil {
					log.Println(err)
					return
				}
				latest.Submit(ctx, sound)
			}
			submit()
			log.Printf("watching %v", path)
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-w.Changes():
					submit()
				case err := <-w.Errors():
					log.Printf("watch: %v", err)
				case res := <-latest.Results():
					if res.Err != nil {
						log.Printf("rendering %v failed: %v", res.Description.Name(), res.Err)
						continue
					}
					if report, err := analysis.Analyze(res.Buffer); err == nil {
						fmt.Fprintf(cmd.OutOrStdout(), "%v: %v\n", res.Description.Name(), report)
					}
					if wavPath != "" {
						if err := writeWav(wavPath, res.Buffer); err != nil {
							log.Println(err)
						}
					}
					if audio != nil {
						if _, err := audio.Play(res.Buffer); err != nil {
							log.Printf("playing failed: %v", err)
						}
					}
				}
			}
		},
	}
	f := cmd.Flags()
	f.StringVarP(&wavPath, "output", "o", "", "Also write every render to this .wav file.")
	f.Duration("debounce", watch.DefaultDebounce, "How long the file must stay unchanged before re-rendering.")
	f.Bool("autoplay", true, "Play each new render, stopping the previous one.")
	a.bind("watch.debounce", f.Lookup("debounce"))
	a.bind("play.autoplay", f.Lookup("autoplay"))
	return cmd
}

func readSoundFile(path string) (sfxgraph.SoundDescription, error) {
	f, err := os.Open(path)
	if err != nil {
		return sfxgraph.SoundDescription{}, fmt.Errorf("could not read file %v: %w", path, err)
	}
	defer f.Close()
	sound, err := sfxgraph.ReadSoundDescription(f)
	if err != nil {
		return sfxgraph.SoundDescription{}, fmt.Errorf("%v: %w", path, err)
	}
	return sound, nil
}

func writeWav(path string, buffer sfxgraph.AudioBuffer) error {
	b, err := buffer.Wav()
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

