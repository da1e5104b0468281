package main

import (
	"fmt"

	"github.com/sfxgraph/sfxgraph/oto"
	"github.com/spf13/cobra"
)

func newPlayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "play FILE|PRESET...",
		Short: "Render sounds and play them one after another",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := a.renderer()
			catalog := a.presets()
			audio, err := oto.NewContext(r.SampleRate)
			if err != nil {
				return fmt.Errorf("could not open audio output: %w", err)
			}
			defer audio.Close()
			for _, arg := range expandArgs(args) {
				src, err := loadSource(arg, catalog)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
					continue
				}
				buffer, err := r.Render(cmd.Context(), src.sound)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "rendering %v failed: %v\n", arg, err)
					continue
				}
				p, err := audio.Play(buffer)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "playing %v\n", src.sound.Name())
				select {
				case <-waitChan(p):
				case <-cmd.Context().Done():
					p.Close()
					return cmd.Context().Err()
				}
			}
			return nil
		},
	}
}

func waitChan(w interface{ Wait() }) <-chan struct{} {
	c := make(chan struct{})
	go func() {
		w.Wait()
		close(c)
	}()
	return c
}
