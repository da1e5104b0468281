package main

import (
	"log/slog"
	"os"

	"github.com/sfxgraph/sfxgraph/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var jsonLogs bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendering, presets and export over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var handler slog.Handler = slog.NewTextHandler(os.Stderr, nil)
			if jsonLogs {
				handler = slog.NewJSONHandler(os.Stderr, nil)
			}
			s, err := server.New(server.Config{
				Addr:       a.cfg.Server.Addr,
				SampleRate: a.cfg.SampleRate,
				PresetsDir: a.cfg.PresetsDir,
			}, slog.New(handler))
			if err != nil {
				return err
			}
			return s.Run(cmd.Context())
		},
	}
	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().BoolVar(&jsonLogs, "json-logs", false, "Log as JSON")
	a.bind("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
