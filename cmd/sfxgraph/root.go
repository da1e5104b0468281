package main

import (
	"fmt"
	"log"

	"github.com/sfxgraph/sfxgraph/config"
	"github.com/sfxgraph/sfxgraph/engine"
	"github.com/sfxgraph/sfxgraph/presets"
	"github.com/sfxgraph/sfxgraph/render"
	"github.com/sfxgraph/sfxgraph/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app is the state shared by the subcommands once the configuration has been
// read.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New("")}
	root := &cobra.Command{
		Use:           "sfxgraph",
		Short:         "Design, render and export procedural sound effects",
		Long:          "sfxgraph renders sound effects described as small graphs of oscillators, noise and gains with automated parameters.",
		Version:       version.Read().String(),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.cfgFile != "" {
				a.v.SetConfigFile(a.cfgFile)
			}
			cfg, err := config.Read(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	log.SetFlags(0)
	log.SetPrefix("sfxgraph: ")

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default: sfxgraph.yaml in the working directory or the user config directory)")
	pf.Int("sample-rate", render.DefaultSampleRate, "Sample rate to render at")
	pf.String("presets-dir", presets.DefaultUserDir(), "Directory of user presets")
	a.bind("sample_rate", pf.Lookup("sample-rate"))
	a.bind("presets_dir", pf.Lookup("presets-dir"))

	root.AddCommand(
		newRenderCmd(a),
		newPlayCmd(a),
		newWatchCmd(a),
		newPresetsCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) bind(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag.Name, err))
	}
}

func (a *app) renderer() render.Renderer {
	return render.New(engine.New(), a.cfg.SampleRate)
}

func (a *app) presets() *presets.Presets {
	return presets.Load(a.cfg.PresetsDir)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Read()
			fmt.Fprintf(cmd.OutOrStdout(), "sfxgraph %v (%s)\n", info, info.GoVersion)
		},
	}
}
