// Package config loads backlog settings from .backlog.yaml, BACKLOG_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/backlog/pkg/item"
	"tableflip.dev/backlog/pkg/store"
)

// Keys understood by Load.
const (
	KeyServer       = "server"
	KeyArea         = "area"
	KeyView         = "view"
	KeyOrder        = "order"
	KeyPath         = "path"
	KeyLogFile      = "log.file"
	KeyLogLevel     = "log.level"
	KeySelectionTTL = "selection.ttl"
	KeyTimeout      = "timeout"
)

// Config is the resolved configuration of one invocation.
type Config struct {
	Server       string        `json:"server" yaml:"server"`
	Area         string        `json:"area" yaml:"area"`
	View         item.View     `json:"view" yaml:"view"`
	Order        string        `json:"order" yaml:"order"`
	Path         string        `json:"path" yaml:"path"`
	LogFile      string        `json:"logFile,omitempty" yaml:"logFile,omitempty"`
	LogLevel     string        `json:"logLevel" yaml:"logLevel"`
	SelectionTTL time.Duration `json:"selectionTTL" yaml:"selectionTTL"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
}

var _ store.Config = (*Config)(nil)

// BasePath is the directory of the local store.
func (c *Config) BasePath() string {
	return c.Path
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServer, "http://localhost:8080/backlogtool")
	v.SetDefault(KeyView, string(item.ViewStoryTask))
	v.SetDefault(KeyOrder, "prio")
	v.SetDefault(KeyPath, "~/.backlog.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeySelectionTTL, store.SelectionTTL)
	v.SetDefault(KeyTimeout, 30*time.Second)
}

// Load reads the config file (if any) into v and resolves the result. Flags
// bound to v beforehand take precedence over file and environment.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)
	v.SetConfigName(".backlog") // .yaml is implicit
	v.SetEnvPrefix("BACKLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("BACKLOG_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return Resolve(v)
}

// Resolve builds a Config from the values already present in v.
func Resolve(v *viper.Viper) (*Config, error) {
	view, err := item.ParseView(v.GetString(KeyView))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	path, err := homedir.Expand(v.GetString(KeyPath))
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}
	logFile := v.GetString(KeyLogFile)
	if logFile != "" {
		if logFile, err = homedir.Expand(logFile); err != nil {
			return nil, fmt.Errorf("config: expand log file: %w", err)
		}
	}
	c := &Config{
		Server:       strings.TrimRight(strings.TrimSpace(v.GetString(KeyServer)), "/"),
		Area:         strings.TrimSpace(v.GetString(KeyArea)),
		View:         view,
		Order:        strings.TrimSpace(v.GetString(KeyOrder)),
		Path:         path,
		LogFile:      logFile,
		LogLevel:     v.GetString(KeyLogLevel),
		SelectionTTL: v.GetDuration(KeySelectionTTL),
		Timeout:      v.GetDuration(KeyTimeout),
	}
	return c, c.Validate()
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	if c.Server == "" {
		return errors.New("config: server is required")
	}
	if c.Area == "" {
		return errors.New("config: area is required (--area or BACKLOG_AREA)")
	}
	if c.Order == "" {
		c.Order = "prio"
	}
	return nil
}
