package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"subseg/internal/config"
	"subseg/internal/logging"
)

const (
	defaultEnvFile = ".env"
	skipConfigKey  = "skipConfigLoad"
)

// session carries global flag values and the configuration loaded for one
// invocation.
type session struct {
	configFlag string
	envFlag    string

	loaded   bool
	cfg      *config.Config
	cfgPath  string
	cfgFound bool
	cfgErr   error
}

// loadEnv applies an env file without overriding variables already set. Only
// an explicitly named file has to exist.
func (s *session) loadEnv() error {
	path := strings.TrimSpace(s.envFlag)
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}
	err := godotenv.Load(path)
	switch {
	case err == nil:
		return nil
	case !explicit && errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("load env file %s: %w", path, err)
	}
}

// load reads the configuration once and memoizes the outcome.
func (s *session) load() (*config.Config, error) {
	if !s.loaded {
		s.loaded = true
		s.cfg, s.cfgPath, s.cfgFound, s.cfgErr = config.Load(strings.TrimSpace(s.configFlag))
	}
	return s.cfg, s.cfgErr
}

func (s *session) logger(cfg *config.Config, component string) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logging.NewComponentLogger(logger, component), nil
}

// skipsConfig reports whether cmd or a parent opted out of config loading.
func skipsConfig(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		if cmd.Annotations[skipConfigKey] == "true" {
			return true
		}
	}
	return false
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
