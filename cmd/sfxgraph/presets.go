package main

import (
	"fmt"

	"github.com/sfxgraph/sfxgraph"
	"github.com/sfxgraph/sfxgraph/presets"
	"github.com/spf13/cobra"
)

func newPresetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List, show and save presets",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List built-in and user presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range a.presets().Presets {
				origin := "built-in"
				if p.User {
					origin = "user"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-8s %.3f s\n", p.Sound.Name(), origin, p.Sound.Duration())
			}
		},
	}
	var asJSON bool
	show := &cobra.Command{
		Use:   "show NAME",
		Short: "Print a preset as a sound file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.presets().Find(args[0])
			if err != nil {
				return err
			}
			format := sfxgraph.YAML
			if asJSON {
				format = sfxgraph.JSON
			}
			return p.Sound.Write(cmd.OutOrStdout(), format)
		},
	}
	show.Flags().BoolVarP(&asJSON, "json", "j", false, "Print JSON instead of YAML.")
	var name string
	save := &cobra.Command{
		Use:   "save FILE",
		Short: "Save a sound file as a user preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sound, err := readSoundFile(args[0])
			if err != nil {
				return err
			}
			if name != "" {
				sound = sound.WithName(name)
			}
			path, err := presets.Save(a.cfg.PresetsDir, sound)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %v\n", path)
			return nil
		},
	}
	save.Flags().StringVar(&name, "name", "", "Preset name (default: the name in the file)")
	cmd.AddCommand(list, show, save)
	return cmd
}
