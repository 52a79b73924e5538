package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backlog/pkg/config"
	"tableflip.dev/backlog/pkg/logging"
	"tableflip.dev/backlog/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	s := &serve.Serve{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an in-memory backlog server for demos and tests.",
		Long: `Serve a demo backlog, or the one described by --fixture, over the same
HTTP routes and push channel the client talks to. Nothing is persisted.`,
		Example: `
backlog serve --addr :8080
backlog serve --fixture ./team.yaml
backlog --server http://localhost:8080/backlogtool --area demo get
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closer := logging.New(logging.Options{
				File:  v.GetString(config.KeyLogFile),
				Level: v.GetString(config.KeyLogLevel),
			})
			defer closer.Close()

			s.Area = v.GetString(config.KeyArea)
			if s.Area == "" {
				s.Area = "demo"
			}
			s.Logger = logger
			s.Out = cmd.OutOrStdout()
			return s.Do(cmdContext(cmd))
		},
	}

	cmd.Flags().StringVar(&s.Addr, "addr", "localhost:8080", "Address to listen on.")
	cmd.Flags().StringVar(&s.Prefix, "prefix", "/backlogtool", "Path prefix of every route.")
	cmd.Flags().StringVar(&s.Fixture, "fixture", "", "YAML file describing the backlog to serve.")

	topLevel.AddCommand(cmd)
}
