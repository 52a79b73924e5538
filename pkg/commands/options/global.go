// Package options defines shared flag helpers for CLI commands.
package options

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tableflip.dev/backlog/pkg/config"
	"tableflip.dev/backlog/pkg/item"
)

// AddGlobalArgs registers the persistent connection flags on the root
// command and binds them to v, so flags beat the config file and BACKLOG_*
// variables.
func AddGlobalArgs(cmd *cobra.Command, v *viper.Viper) {
	views := make([]string, 0, 3)
	for _, view := range item.AllViews() {
		views = append(views, string(view))
	}

	fs := cmd.PersistentFlags()
	fs.String("server", "", "Base URL of the backlog server, e.g. http://localhost:8080/backlogtool.")
	fs.StringP("area", "a", "", "Backlog area.")
	fs.String("view", "", "View mode. One of "+strings.Join(views, ", ")+".")
	fs.String("order", "", `Sort order. Rows can only be moved under "prio".`)
	fs.String("path", "", "Directory of the local store.")
	fs.String("log-file", "", "Write JSON logs to this file instead of stderr.")
	fs.String("log-level", "", "Log level: debug, info, warn or error.")
	fs.Duration("timeout", 0, "Timeout of one server round trip.")

	for key, flag := range map[string]string{
		config.KeyServer:   "server",
		config.KeyArea:     "area",
		config.KeyView:     "view",
		config.KeyOrder:    "order",
		config.KeyPath:     "path",
		config.KeyLogFile:  "log-file",
		config.KeyLogLevel: "log-level",
		config.KeyTimeout:  "timeout",
	} {
		_ = v.BindPFlag(key, fs.Lookup(flag))
	}

	_ = cmd.RegisterFlagCompletionFunc("view", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return views, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("order", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"prio", "title", "id", "added"}, cobra.ShellCompDirectiveNoFileComp
	})
}
