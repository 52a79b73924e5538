// Package commands is the cobra command tree of the backlog CLI.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/backlog/pkg/app"
	"tableflip.dev/backlog/pkg/commands/options"
	"tableflip.dev/backlog/pkg/config"
	"tableflip.dev/backlog/pkg/snake"
)

// v holds the configuration of the tree built by the last call to New.
var v = viper.New()

func New() *cobra.Command {
	v = viper.New()
	i := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "backlog",
		Short: base.Wrap80("Browse and reorganize a theme, epic, story and task backlog from the command line."),
		Long: base.Wrap80("backlog keeps a local picture of one view of a backlog area in sync with the server. " +
			"Every command loads the view, restores the stored selection, performs one change and prints the result."),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if i.Interactive {
				return snake.PromptNext(cmd, args)
			}
			return cmd.Help()
		},
	}
	options.AddGlobalArgs(cmd, v)
	options.InteractiveArgs(cmd, i)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addGet(topLevel)
	addSelect(topLevel)
	addCreate(topLevel)
	addEdit(topLevel)
	addClone(topLevel)
	addDelete(topLevel)
	addMove(topLevel)
	addWatch(topLevel)
	addServe(topLevel)
	addSuggest(topLevel)
	addInfo(topLevel)
	addKey(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// Execute runs the tree until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return New().ExecuteContext(ctx)
}

// loadConfig resolves flags, BACKLOG_* variables and .backlog.yaml.
func loadConfig() (*config.Config, error) {
	return config.Load(v)
}

func newService(opts app.Options) (*app.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, opts)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withService builds a service for one command run and closes it after fn.
func withService(oo *options.OutputOptions, opts app.Options, fn func(*app.Service) error) error {
	s, err := newService(opts)
	if err != nil {
		return oo.HandleError(err)
	}
	err = fn(s)
	if cerr := s.Close(); err == nil && cerr != nil {
		err = cerr
	}
	return oo.HandleError(err)
}
