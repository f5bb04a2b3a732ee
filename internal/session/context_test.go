// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dacolabs/jsonschema-validate/internal/config"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, config.FileName)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		content    string // written to validate.yaml when non-empty
		wantErr    error
		wantSchema string // relative to the config dir, only checked if wantErr is nil
	}{
		{
			name:    "explicit file missing",
			wantErr: ErrConfigNotFound,
		},
		{
			name:    "invalid yaml",
			content: "version: [",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "unsupported version",
			content: "version: 2\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:       "valid",
			content:    "version: 1\nschema: schemas/person.json\ninput: data\nreport: report.json\n",
			wantSchema: filepath.Join("schemas", "person.json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, config.FileName)
			if tt.content != "" {
				writeConfig(t, dir, tt.content)
			}

			ctx, err := Load(context.Background(), path, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			s := From(ctx)
			require.NotNil(t, s)
			assert.Equal(t, path, s.Path)
			assert.Equal(t, filepath.Join(dir, tt.wantSchema), s.Config.Schema)
		})
	}
}

func TestLoad_DefaultWithoutFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(origDir) }()
	require.NoError(t, os.Chdir(dir))

	env := map[string]string{config.EnvInput: "from-env"}
	ctx, err := Load(context.Background(), "", func(k string) string { return env[k] })
	require.NoError(t, err)

	s := From(ctx)
	require.NotNil(t, s)
	assert.Empty(t, s.Path)
	assert.Equal(t, config.CurrentConfigVersion, s.Config.Version)
	assert.Equal(t, "from-env", s.Config.Input)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "version: 1\nschema: a.json\nreport: r.json\n")

	env := map[string]string{config.EnvSchema: "/abs/b.json"}
	ctx, err := Load(context.Background(), path, func(k string) string { return env[k] })
	require.NoError(t, err)

	s := From(ctx)
	assert.Equal(t, "/abs/b.json", s.Config.Schema)
	assert.Equal(t, filepath.Join(dir, "r.json"), s.Config.Report)
}

func TestFromCommand(t *testing.T) {
	cmd := &cobra.Command{}
	assert.Nil(t, FromCommand(cmd))

	cmd.SetContext(context.Background())
	assert.Nil(t, FromCommand(cmd))
	_, err := RequireFromCommand(cmd)
	assert.Error(t, err)

	ctx, err := Load(context.Background(), writeConfig(t, t.TempDir(), "version: 1\n"), nil)
	require.NoError(t, err)
	cmd.SetContext(ctx)

	s, err := RequireFromCommand(cmd)
	require.NoError(t, err)
	assert.Equal(t, config.CurrentConfigVersion, s.Config.Version)
}
