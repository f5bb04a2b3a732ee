// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package session loads the run configuration into the command context.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dacolabs/jsonschema-validate/internal/config"
)

var (
	// ErrConfigNotFound indicates an explicitly requested config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidConfig indicates the config file exists but is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// contextKey is used to store Context in context.Context.
type contextKey struct{}

// Context holds the resolved configuration for one invocation.
type Context struct {
	// Config has paths resolved against the config file directory and
	// environment overrides applied.
	Config *config.Config

	// Path is the config file that was read, empty when none was.
	Path string
}

// Load reads the configuration and returns a new context.Context with the
// session Context stored in it. When path is empty, validate.yaml in the
// working directory is used if present; otherwise defaults apply. getenv
// supplies environment overrides and may be nil.
func Load(ctx context.Context, path string, getenv func(string) string) (context.Context, error) {
	explicit := path != ""
	if !explicit {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, config.FileName)
	}

	sess := &Context{Config: config.Default()}
	if _, statErr := os.Stat(path); statErr == nil {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
		cfg.ResolvePaths(filepath.Dir(path))
		sess.Config = cfg
		sess.Path = path
	} else if explicit {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	sess.Config.ApplyEnv(getenv)
	return context.WithValue(ctx, contextKey{}, sess), nil
}

// From extracts the session Context from a context.Context.
// Returns nil if no Context is stored.
func From(ctx context.Context) *Context {
	if s, ok := ctx.Value(contextKey{}).(*Context); ok {
		return s
	}
	return nil
}

// FromCommand extracts the session Context from a cobra.Command's context.
// Returns nil if no Context is stored.
func FromCommand(cmd *cobra.Command) *Context {
	if cmd.Context() == nil {
		return nil
	}
	return From(cmd.Context())
}

// RequireFromCommand extracts the session Context from a cobra.Command's
// context, returning an error if not found.
func RequireFromCommand(cmd *cobra.Command) (*Context, error) {
	s := FromCommand(cmd)
	if s == nil {
		return nil, errors.New("configuration not loaded")
	}
	return s, nil
}
